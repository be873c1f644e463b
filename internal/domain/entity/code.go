package entity

import (
	"crypto/rand"
	"fmt"
)

// CodeLength is the fixed length of every voucher code.
const CodeLength = 14

// codeAlphabet is the 36-character set voucher codes are drawn from.
const codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GenerateCode produces a random voucher code of CodeLength characters
// drawn uniformly from A-Z and 0-9. Uniqueness is NOT guaranteed here;
// the store enforces it with a database constraint and callers retry on
// collision.
func GenerateCode() string {
	// 252 is the largest multiple of 36 below 256; rejecting bytes at or
	// above it keeps the distribution uniform across the alphabet.
	const rejectAbove = 252

	code := make([]byte, 0, CodeLength)
	buf := make([]byte, CodeLength)
	for len(code) < CodeLength {
		if _, err := rand.Read(buf); err != nil {
			// crypto/rand never fails on supported platforms
			panic(fmt.Sprintf("voucher code generation: %v", err))
		}
		for _, b := range buf {
			if b >= rejectAbove {
				continue
			}
			code = append(code, codeAlphabet[int(b)%len(codeAlphabet)])
			if len(code) == CodeLength {
				break
			}
		}
	}
	return string(code)
}

// ValidateCode checks the code invariant: exactly CodeLength characters,
// each one an uppercase letter or digit.
func ValidateCode(code string) error {
	if len(code) != CodeLength {
		return &ValidationError{
			Field:  "code",
			Reason: fmt.Sprintf("must be exactly %d characters", CodeLength),
		}
	}
	for _, c := range code {
		if (c < 'A' || c > 'Z') && (c < '0' || c > '9') {
			return &ValidationError{
				Field:  "code",
				Reason: "must contain only uppercase letters and digits",
			}
		}
	}
	return nil
}
