package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// VoucherStatus is the read-time classification of a voucher.
type VoucherStatus string

const (
	StatusActive   VoucherStatus = "active"
	StatusExpired  VoucherStatus = "expired"
	StatusUsed     VoucherStatus = "used"
	StatusInactive VoucherStatus = "inactive"
)

// Voucher represents a redeemable store-credit code
type Voucher struct {
	ID                 int64           `json:"id"`
	Code               string          `json:"code"`
	Amount             decimal.Decimal `json:"amount"`
	Description        string          `json:"description,omitempty"`
	MaxRedemptions     *int            `json:"max_redemptions,omitempty"`
	CurrentRedemptions int             `json:"current_redemptions"`
	ExpiresAt          *time.Time      `json:"expires_at,omitempty"`
	IsActive           bool            `json:"is_active"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

// IsExpired reports whether the voucher's expiry has passed.
func (v *Voucher) IsExpired(now time.Time) bool {
	return v.ExpiresAt != nil && v.ExpiresAt.Before(now)
}

// IsFullyUsed reports whether the redemption cap has been reached.
func (v *Voucher) IsFullyUsed() bool {
	return v.MaxRedemptions != nil && v.CurrentRedemptions >= *v.MaxRedemptions
}

// IsRedeemable reports whether the voucher can still be redeemed:
// active flag set, not expired, not at the redemption cap.
func (v *Voucher) IsRedeemable(now time.Time) bool {
	return v.IsActive && !v.IsExpired(now) && !v.IsFullyUsed()
}

// Status classifies the voucher for the admin UI. Expiry wins over the
// active flag: an expired voucher is reported as expired even when the
// admin never deactivated it.
func (v *Voucher) Status(now time.Time) VoucherStatus {
	switch {
	case v.IsExpired(now):
		return StatusExpired
	case v.IsFullyUsed():
		return StatusUsed
	case !v.IsActive:
		return StatusInactive
	default:
		return StatusActive
	}
}

// NormalizeAmount rounds the amount to 2 decimal places before persistence.
func (v *Voucher) NormalizeAmount() {
	v.Amount = v.Amount.Round(2)
}

// Validate checks the creation invariants of a voucher.
func (v *Voucher) Validate() error {
	if err := ValidateCode(v.Code); err != nil {
		return err
	}
	if !v.Amount.IsPositive() {
		return &ValidationError{Field: "amount", Reason: "must be positive"}
	}
	if v.MaxRedemptions != nil && *v.MaxRedemptions <= 0 {
		return &ValidationError{Field: "max_redemptions", Reason: "must be positive when set"}
	}
	return nil
}
