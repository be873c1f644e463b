package entity

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateCode(t *testing.T) {
	t.Run("length and charset", func(t *testing.T) {
		for i := 0; i < 500; i++ {
			code := GenerateCode()
			require.Len(t, code, CodeLength)
			for _, c := range code {
				assert.True(t, (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9'),
					"unexpected character %q in code %s", c, code)
			}
		}
	})

	t.Run("codes vary", func(t *testing.T) {
		seen := make(map[string]bool)
		for i := 0; i < 100; i++ {
			seen[GenerateCode()] = true
		}
		// 36^14 combinations; 100 draws colliding would mean a broken generator
		assert.Len(t, seen, 100)
	})
}

func TestValidateCode(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		wantErr bool
	}{
		{"valid code", "ABCDEF12345678", false},
		{"all digits", "01234567890123", false},
		{"all letters", "ABCDEFGHIJKLMN", false},
		{"too short", "ABC123", true},
		{"too long", strings.Repeat("A", 15), true},
		{"empty", "", true},
		{"lowercase", "abcdef12345678", true},
		{"special characters", "ABCDEF12345-78", true},
		{"whitespace", "ABCDEF 1234567", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCode(tt.code)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, IsValidation(err))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
