package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	sqlite3 "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/learnhub/backoffice/internal/application/port"
	"github.com/learnhub/backoffice/internal/domain/entity"
	"github.com/learnhub/backoffice/internal/infrastructure/persistence/sqlite"
)

// VoucherRepository implements port.VoucherRepository on sqlite
type VoucherRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewVoucherRepository creates a new voucher repository
func NewVoucherRepository(db *sql.DB, logger *zap.Logger) port.VoucherRepository {
	return &VoucherRepository{
		db:     db,
		logger: logger,
	}
}

const voucherColumns = `id, code, amount, description, max_redemptions,
	current_redemptions, expires_at, is_active, created_at, updated_at`

// Create inserts a new voucher record. The UNIQUE constraint on code is
// the uniqueness authority; collisions map to entity.ErrDuplicateCode.
func (r *VoucherRepository) Create(ctx context.Context, voucher *entity.Voucher) error {
	if err := voucher.Validate(); err != nil {
		return err
	}

	now := time.Now().UTC()
	var expiresAt interface{}
	if voucher.ExpiresAt != nil {
		expiresAt = voucher.ExpiresAt.UTC()
	}

	query := `
		INSERT INTO vouchers (
			code, amount, description, max_redemptions, current_redemptions,
			expires_at, is_active, created_at, updated_at
		) VALUES (?, ?, ?, ?, 0, ?, ?, ?, ?)
	`
	result, err := sqlite.ExecutorFromContext(ctx, r.db).ExecContext(ctx, query,
		voucher.Code,
		voucher.Amount.StringFixed(2),
		voucher.Description,
		voucher.MaxRedemptions,
		expiresAt,
		voucher.IsActive,
		now,
		now,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return entity.ErrDuplicateCode
		}
		r.logger.Error("Failed to create voucher", zap.String("code", voucher.Code), zap.Error(err))
		return fmt.Errorf("create voucher: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("get last insert id: %w", err)
	}

	voucher.ID = id
	voucher.CurrentRedemptions = 0
	voucher.CreatedAt = now
	voucher.UpdatedAt = now
	return nil
}

// GetByID retrieves a voucher by id
func (r *VoucherRepository) GetByID(ctx context.Context, id int64) (*entity.Voucher, error) {
	query := fmt.Sprintf(`SELECT %s FROM vouchers WHERE id = ?`, voucherColumns)
	row := sqlite.ExecutorFromContext(ctx, r.db).QueryRowContext(ctx, query, id)
	return r.scanVoucher(row)
}

// GetByCode retrieves a voucher by code
func (r *VoucherRepository) GetByCode(ctx context.Context, code string) (*entity.Voucher, error) {
	query := fmt.Sprintf(`SELECT %s FROM vouchers WHERE code = ?`, voucherColumns)
	row := sqlite.ExecutorFromContext(ctx, r.db).QueryRowContext(ctx, query, code)
	return r.scanVoucher(row)
}

// List returns all vouchers, newest first
func (r *VoucherRepository) List(ctx context.Context) ([]*entity.Voucher, error) {
	query := fmt.Sprintf(`SELECT %s FROM vouchers ORDER BY created_at DESC, id DESC`, voucherColumns)
	rows, err := sqlite.ExecutorFromContext(ctx, r.db).QueryContext(ctx, query)
	if err != nil {
		r.logger.Error("Failed to list vouchers", zap.Error(err))
		return nil, fmt.Errorf("list vouchers: %w", err)
	}
	defer rows.Close()

	vouchers := make([]*entity.Voucher, 0)
	for rows.Next() {
		voucher, err := r.scanVoucher(rows)
		if err != nil {
			return nil, err
		}
		vouchers = append(vouchers, voucher)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list vouchers: %w", err)
	}
	return vouchers, nil
}

// Delete hard-deletes a voucher. A missing id is a no-op success so the
// admin bulk-delete flow never trips over rows already gone.
func (r *VoucherRepository) Delete(ctx context.Context, id int64) error {
	query := `DELETE FROM vouchers WHERE id = ?`
	if _, err := sqlite.ExecutorFromContext(ctx, r.db).ExecContext(ctx, query, id); err != nil {
		r.logger.Error("Failed to delete voucher", zap.Int64("id", id), zap.Error(err))
		return fmt.Errorf("delete voucher: %w", err)
	}
	return nil
}

// DeleteAll removes every voucher and returns the count deleted
func (r *VoucherRepository) DeleteAll(ctx context.Context) (int64, error) {
	result, err := sqlite.ExecutorFromContext(ctx, r.db).ExecContext(ctx, `DELETE FROM vouchers`)
	if err != nil {
		r.logger.Error("Failed to delete all vouchers", zap.Error(err))
		return 0, fmt.Errorf("delete all vouchers: %w", err)
	}
	count, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete all vouchers: %w", err)
	}
	return count, nil
}

// Redeem checks redeemability and increments the counter in a single
// conditional UPDATE. Concurrent redeemers race on the same statement,
// so the counter can never pass max_redemptions regardless of timing;
// a read-then-write here would be a race.
func (r *VoucherRepository) Redeem(ctx context.Context, code string, now time.Time) (*entity.Voucher, error) {
	nowUTC := now.UTC()
	query := `
		UPDATE vouchers
		SET current_redemptions = current_redemptions + 1, updated_at = ?
		WHERE code = ?
		  AND is_active = 1
		  AND (expires_at IS NULL OR expires_at > ?)
		  AND (max_redemptions IS NULL OR current_redemptions < max_redemptions)
	`
	result, err := sqlite.ExecutorFromContext(ctx, r.db).ExecContext(ctx, query, nowUTC, code, nowUTC)
	if err != nil {
		r.logger.Error("Failed to redeem voucher", zap.String("code", code), zap.Error(err))
		return nil, fmt.Errorf("redeem voucher: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("redeem voucher: %w", err)
	}
	if affected == 0 {
		return nil, r.redeemRefusal(ctx, code, nowUTC)
	}

	return r.GetByCode(ctx, code)
}

// redeemRefusal re-reads the row to explain why the conditional update
// matched nothing.
func (r *VoucherRepository) redeemRefusal(ctx context.Context, code string, now time.Time) error {
	voucher, err := r.GetByCode(ctx, code)
	if err != nil {
		return err
	}
	switch {
	case !voucher.IsActive:
		return entity.ErrVoucherInactive
	case voucher.IsExpired(now):
		return entity.ErrVoucherExpired
	case voucher.IsFullyUsed():
		return entity.ErrVoucherExhausted
	default:
		// the voucher became redeemable again between UPDATE and read
		return fmt.Errorf("voucher %s could not be redeemed", code)
	}
}

// Deactivate turns off a voucher without deleting it
func (r *VoucherRepository) Deactivate(ctx context.Context, id int64) error {
	query := `UPDATE vouchers SET is_active = 0, updated_at = ? WHERE id = ?`
	result, err := sqlite.ExecutorFromContext(ctx, r.db).ExecContext(ctx, query, time.Now().UTC(), id)
	if err != nil {
		r.logger.Error("Failed to deactivate voucher", zap.Int64("id", id), zap.Error(err))
		return fmt.Errorf("deactivate voucher: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("deactivate voucher: %w", err)
	}
	if affected == 0 {
		return entity.ErrVoucherNotFound
	}
	return nil
}

// scanner covers *sql.Row and *sql.Rows
type scanner interface {
	Scan(dest ...interface{}) error
}

func (r *VoucherRepository) scanVoucher(row scanner) (*entity.Voucher, error) {
	var voucher entity.Voucher
	var amount string
	var maxRedemptions sql.NullInt64
	var expiresAt sql.NullTime

	err := row.Scan(
		&voucher.ID,
		&voucher.Code,
		&amount,
		&voucher.Description,
		&maxRedemptions,
		&voucher.CurrentRedemptions,
		&expiresAt,
		&voucher.IsActive,
		&voucher.CreatedAt,
		&voucher.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, entity.ErrVoucherNotFound
	}
	if err != nil {
		r.logger.Error("Failed to scan voucher", zap.Error(err))
		return nil, fmt.Errorf("scan voucher: %w", err)
	}

	voucher.Amount, err = decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("parse voucher amount %q: %w", amount, err)
	}
	if maxRedemptions.Valid {
		n := int(maxRedemptions.Int64)
		voucher.MaxRedemptions = &n
	}
	if expiresAt.Valid {
		t := expiresAt.Time
		voucher.ExpiresAt = &t
	}
	return &voucher, nil
}

// isUniqueViolation reports whether err is the sqlite UNIQUE constraint
// failure on the code column.
func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique &&
			strings.Contains(sqliteErr.Error(), "vouchers.code")
	}
	return false
}

// Verify interface compliance
var _ port.VoucherRepository = (*VoucherRepository)(nil)
