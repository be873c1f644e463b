package entity

import (
	"errors"
	"fmt"
)

// Sentinel errors surfaced by the voucher store and redemption path.
var (
	// ErrDuplicateCode means the code already exists on another voucher.
	// Manual creation surfaces it to the admin; bulk issuance regenerates
	// the code and retries internally.
	ErrDuplicateCode = errors.New("voucher code already exists")

	// ErrVoucherNotFound means no voucher carries the given id or code.
	ErrVoucherNotFound = errors.New("voucher not found")

	// ErrVoucherInactive means the voucher was deactivated by an admin.
	ErrVoucherInactive = errors.New("voucher is not active")

	// ErrVoucherExpired means the voucher's expiry has passed.
	ErrVoucherExpired = errors.New("voucher has expired")

	// ErrVoucherExhausted means the redemption cap has been reached.
	ErrVoucherExhausted = errors.New("voucher redemption limit reached")
)

// ValidationError reports malformed input. It is raised before any
// persistence happens, so a validation failure never leaves partial state.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
