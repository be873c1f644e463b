package repository

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/learnhub/backoffice/internal/application/port"
	"github.com/learnhub/backoffice/internal/domain/entity"
	"github.com/learnhub/backoffice/internal/infrastructure/persistence/sqlite"
)

const testSchema = `
CREATE TABLE vouchers (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    code TEXT NOT NULL UNIQUE CHECK (length(code) = 14),
    amount TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    max_redemptions INTEGER,
    current_redemptions INTEGER NOT NULL DEFAULT 0,
    expires_at DATETIME,
    is_active INTEGER NOT NULL DEFAULT 1,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    CHECK (max_redemptions IS NULL OR current_redemptions <= max_redemptions)
);
`

func newTestRepo(t *testing.T) (port.VoucherRepository, *sql.DB) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "vouchers.db")
	dsn := fmt.Sprintf("file:%s?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on", path)
	db, err := sql.Open("sqlite3", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(testSchema)
	require.NoError(t, err)

	return NewVoucherRepository(db, zap.NewNop()), db
}

func newVoucher(code string) *entity.Voucher {
	return &entity.Voucher{
		Code:     code,
		Amount:   decimal.RequireFromString("20.00"),
		IsActive: true,
	}
}

func intPtr(n int) *int { return &n }

func timePtr(t time.Time) *time.Time { return &t }

func TestVoucherRepository_Create(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	t.Run("assigns id and timestamps", func(t *testing.T) {
		v := newVoucher("CREATETEST0001")
		require.NoError(t, repo.Create(ctx, v))
		assert.NotZero(t, v.ID)
		assert.False(t, v.CreatedAt.IsZero())
	})

	t.Run("duplicate code rejected by the store", func(t *testing.T) {
		v := newVoucher("DUPLICATED0001")
		require.NoError(t, repo.Create(ctx, v))

		dup := newVoucher("DUPLICATED0001")
		err := repo.Create(ctx, dup)
		assert.ErrorIs(t, err, entity.ErrDuplicateCode)
	})

	t.Run("invalid code rejected before insert", func(t *testing.T) {
		v := newVoucher("bad")
		err := repo.Create(ctx, v)
		assert.True(t, entity.IsValidation(err))
	})

	t.Run("deleted code can be reissued", func(t *testing.T) {
		// uniqueness holds among currently-existing rows only
		v := newVoucher("REISSUEDCODE01")
		require.NoError(t, repo.Create(ctx, v))
		require.NoError(t, repo.Delete(ctx, v.ID))
		assert.NoError(t, repo.Create(ctx, newVoucher("REISSUEDCODE01")))
	})
}

func TestVoucherRepository_GetByCode(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	expiry := time.Now().Add(24 * time.Hour).UTC().Truncate(time.Second)
	v := newVoucher("ROUNDTRIP00001")
	v.Description = "spring promo"
	v.MaxRedemptions = intPtr(3)
	v.ExpiresAt = &expiry
	require.NoError(t, repo.Create(ctx, v))

	got, err := repo.GetByCode(ctx, "ROUNDTRIP00001")
	require.NoError(t, err)
	assert.Equal(t, v.ID, got.ID)
	assert.Equal(t, "20.00", got.Amount.StringFixed(2))
	assert.Equal(t, "spring promo", got.Description)
	require.NotNil(t, got.MaxRedemptions)
	assert.Equal(t, 3, *got.MaxRedemptions)
	require.NotNil(t, got.ExpiresAt)
	assert.True(t, got.ExpiresAt.Equal(expiry))

	_, err = repo.GetByCode(ctx, "NOSUCHCODE0001")
	assert.ErrorIs(t, err, entity.ErrVoucherNotFound)
}

func TestVoucherRepository_Delete(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	v := newVoucher("DELETEMENOW001")
	require.NoError(t, repo.Create(ctx, v))

	require.NoError(t, repo.Delete(ctx, v.ID))
	_, err := repo.GetByID(ctx, v.ID)
	assert.ErrorIs(t, err, entity.ErrVoucherNotFound)

	// idempotent: a missing id is a no-op success
	assert.NoError(t, repo.Delete(ctx, v.ID))
	assert.NoError(t, repo.Delete(ctx, 99999))
}

func TestVoucherRepository_DeleteAll(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	for i := 0; i < 6; i++ {
		require.NoError(t, repo.Create(ctx, newVoucher(fmt.Sprintf("DELETEALL%05d", i))))
	}

	count, err := repo.DeleteAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(6), count)

	vouchers, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, vouchers)

	count, err = repo.DeleteAll(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestVoucherRepository_Redeem(t *testing.T) {
	ctx := context.Background()

	t.Run("increments counter", func(t *testing.T) {
		repo, _ := newTestRepo(t)
		v := newVoucher("REDEEMABLE0001")
		v.MaxRedemptions = intPtr(2)
		require.NoError(t, repo.Create(ctx, v))

		got, err := repo.Redeem(ctx, v.Code, time.Now())
		require.NoError(t, err)
		assert.Equal(t, 1, got.CurrentRedemptions)

		got, err = repo.Redeem(ctx, v.Code, time.Now())
		require.NoError(t, err)
		assert.Equal(t, 2, got.CurrentRedemptions)

		_, err = repo.Redeem(ctx, v.Code, time.Now())
		assert.ErrorIs(t, err, entity.ErrVoucherExhausted)
	})

	t.Run("unknown code", func(t *testing.T) {
		repo, _ := newTestRepo(t)
		_, err := repo.Redeem(ctx, "UNKNOWNCODE001", time.Now())
		assert.ErrorIs(t, err, entity.ErrVoucherNotFound)
	})

	t.Run("expired voucher", func(t *testing.T) {
		repo, _ := newTestRepo(t)
		v := newVoucher("EXPIREDCODE001")
		v.ExpiresAt = timePtr(time.Now().Add(-time.Hour))
		require.NoError(t, repo.Create(ctx, v))

		_, err := repo.Redeem(ctx, v.Code, time.Now())
		assert.ErrorIs(t, err, entity.ErrVoucherExpired)
	})

	t.Run("deactivated voucher", func(t *testing.T) {
		repo, _ := newTestRepo(t)
		v := newVoucher("DEACTIVATED001")
		require.NoError(t, repo.Create(ctx, v))
		require.NoError(t, repo.Deactivate(ctx, v.ID))

		_, err := repo.Redeem(ctx, v.Code, time.Now())
		assert.ErrorIs(t, err, entity.ErrVoucherInactive)
	})
}

// TestVoucherRepository_ConcurrentRedeem hammers one capped voucher with
// parallel redeemers and checks the counter never passes the cap.
func TestVoucherRepository_ConcurrentRedeem(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	const maxUses = 10
	const redeemers = 50

	v := newVoucher("CONCURRENT0001")
	v.MaxRedemptions = intPtr(maxUses)
	require.NoError(t, repo.Create(ctx, v))

	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0

	for i := 0; i < redeemers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := repo.Redeem(ctx, "CONCURRENT0001", time.Now()); err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, maxUses, succeeded, "exactly the cap may succeed")

	got, err := repo.GetByCode(ctx, "CONCURRENT0001")
	require.NoError(t, err)
	assert.Equal(t, maxUses, got.CurrentRedemptions)
}

func TestVoucherRepository_TransactionRollback(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tx.db")
	dsn := fmt.Sprintf("file:%s?_journal_mode=WAL&_busy_timeout=5000", path)
	db, err := sql.Open("sqlite3", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	_, err = db.Exec(testSchema)
	require.NoError(t, err)

	repo := NewVoucherRepository(db, zap.NewNop())
	txManager := sqlite.NewDB(db, zap.NewNop())
	ctx := context.Background()

	err = txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := repo.Create(txCtx, newVoucher("ROLLBACKME0001")); err != nil {
			return err
		}
		if err := repo.Create(txCtx, newVoucher("ROLLBACKME0002")); err != nil {
			return err
		}
		// second insert of the same code forces a rollback of the batch
		return repo.Create(txCtx, newVoucher("ROLLBACKME0001"))
	})
	require.ErrorIs(t, err, entity.ErrDuplicateCode)

	vouchers, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, vouchers, "aborted batch leaves nothing half-created")
}
