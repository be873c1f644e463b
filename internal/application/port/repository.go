package port

import (
	"context"
	"time"

	"github.com/learnhub/backoffice/internal/domain/entity"
)

// VoucherRepository defines persistence operations for Voucher.
//
// Code uniqueness is enforced here with a storage-level constraint, never
// by trusting the randomness of generated codes. Uniqueness applies to
// currently-existing rows: a hard-deleted voucher frees its code.
type VoucherRepository interface {
	// Create inserts a new voucher and fills in its ID and timestamps.
	// Returns entity.ErrDuplicateCode when the code is already taken.
	Create(ctx context.Context, voucher *entity.Voucher) error

	// GetByID retrieves a voucher by id, or entity.ErrVoucherNotFound.
	GetByID(ctx context.Context, id int64) (*entity.Voucher, error)

	// GetByCode retrieves a voucher by code, or entity.ErrVoucherNotFound.
	GetByCode(ctx context.Context, code string) (*entity.Voucher, error)

	// List returns all vouchers, newest first.
	List(ctx context.Context) ([]*entity.Voucher, error)

	// Delete hard-deletes a voucher. Deleting a missing id is a no-op
	// success so admin bulk deletes stay simple.
	Delete(ctx context.Context, id int64) error

	// DeleteAll removes every voucher and returns how many were deleted.
	DeleteAll(ctx context.Context) (int64, error)

	// Redeem atomically checks redeemability as of now and increments the
	// redemption counter. The check and increment happen in one conditional
	// update so concurrent redeemers can never push the counter past the
	// cap. On refusal it returns one of ErrVoucherNotFound,
	// ErrVoucherInactive, ErrVoucherExpired or ErrVoucherExhausted.
	Redeem(ctx context.Context, code string, now time.Time) (*entity.Voucher, error)

	// Deactivate turns off a voucher without deleting it.
	Deactivate(ctx context.Context, id int64) error
}

// TransactionManager executes a function within a database transaction.
// The transaction travels in the context so repositories can join it.
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
