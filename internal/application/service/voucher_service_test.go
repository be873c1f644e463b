package service

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/learnhub/backoffice/internal/domain/entity"
)

func intPtr(n int) *int { return &n }

func timePtr(t time.Time) *time.Time { return &t }

func TestVoucherService_Create(t *testing.T) {
	t.Run("valid manual code", func(t *testing.T) {
		repo := &mockVoucherRepo{}
		svc := NewVoucherService(repo, nopLogger{})

		voucher, err := svc.Create(context.Background(), CreateVoucherInput{
			Code:   "summer24credit",
			Amount: decimal.RequireFromString("49.999"),
		})

		require.NoError(t, err)
		assert.Equal(t, "SUMMER24CREDIT", voucher.Code, "codes are upper-cased")
		assert.Equal(t, "50.00", voucher.Amount.StringFixed(2), "amounts round to 2 places")
		assert.True(t, voucher.IsActive)
		assert.Equal(t, 1, repo.createdCount())
	})

	t.Run("invalid code rejected before persistence", func(t *testing.T) {
		repo := &mockVoucherRepo{}
		svc := NewVoucherService(repo, nopLogger{})

		_, err := svc.Create(context.Background(), CreateVoucherInput{
			Code:   "TOO-SHORT",
			Amount: decimal.RequireFromString("10"),
		})

		require.Error(t, err)
		assert.True(t, entity.IsValidation(err))
		assert.Zero(t, repo.createdCount())
	})

	t.Run("duplicate code surfaces to caller", func(t *testing.T) {
		repo := &mockVoucherRepo{createFunc: func(ctx context.Context, v *entity.Voucher) error {
			return entity.ErrDuplicateCode
		}}
		svc := NewVoucherService(repo, nopLogger{})

		_, err := svc.Create(context.Background(), CreateVoucherInput{
			Code:   "ABCDEF12345678",
			Amount: decimal.RequireFromString("10"),
		})

		assert.ErrorIs(t, err, entity.ErrDuplicateCode)
	})
}

func TestVoucherService_List(t *testing.T) {
	now := time.Now()
	repo := &mockVoucherRepo{listFunc: func(ctx context.Context) ([]*entity.Voucher, error) {
		return []*entity.Voucher{
			{ID: 1, Code: "ACTIVEACTIVE01", IsActive: true},
			{ID: 2, Code: "EXPIREDEXPIRE2", IsActive: true, ExpiresAt: timePtr(now.Add(-time.Hour))},
			{ID: 3, Code: "USEDUPUSEDUP03", IsActive: true, MaxRedemptions: intPtr(1), CurrentRedemptions: 1},
			{ID: 4, Code: "INACTIVEOFF004", IsActive: false},
			{ID: 5, Code: "ACTIVEACTIVE05", IsActive: true, ExpiresAt: timePtr(now.Add(time.Hour))},
		}, nil
	}}
	svc := NewVoucherService(repo, nopLogger{})

	list, err := svc.List(context.Background())

	require.NoError(t, err)
	assert.Len(t, list.Vouchers, 5)
	assert.Equal(t, StatusCounts{Active: 2, Expired: 1, Used: 1, Inactive: 1}, list.Counts)
	assert.Equal(t, entity.StatusExpired, list.Vouchers[1].Status,
		"past expiry classifies as expired even while active and unused")
}

func TestVoucherService_Redeem(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		repo := &mockVoucherRepo{redeemFunc: func(ctx context.Context, code string, now time.Time) (*entity.Voucher, error) {
			return &entity.Voucher{ID: 9, Code: code, CurrentRedemptions: 1, IsActive: true}, nil
		}}
		svc := NewVoucherService(repo, nopLogger{})

		voucher, err := svc.Redeem(context.Background(), " abcdef12345678 ")

		require.NoError(t, err)
		assert.Equal(t, "ABCDEF12345678", voucher.Code, "input is trimmed and upper-cased")
		assert.Equal(t, 1, voucher.CurrentRedemptions)
	})

	t.Run("exhausted voucher", func(t *testing.T) {
		repo := &mockVoucherRepo{redeemFunc: func(ctx context.Context, code string, now time.Time) (*entity.Voucher, error) {
			return nil, entity.ErrVoucherExhausted
		}}
		svc := NewVoucherService(repo, nopLogger{})

		_, err := svc.Redeem(context.Background(), "ABCDEF12345678")
		assert.ErrorIs(t, err, entity.ErrVoucherExhausted)
	})

	t.Run("malformed code rejected without repository call", func(t *testing.T) {
		svc := NewVoucherService(&mockVoucherRepo{}, nopLogger{})

		_, err := svc.Redeem(context.Background(), "nope")
		assert.True(t, entity.IsValidation(err))
	})
}

func TestVoucherService_DeleteAll(t *testing.T) {
	repo := &mockVoucherRepo{deleteAllFunc: func(ctx context.Context) (int64, error) {
		return 12, nil
	}}
	svc := NewVoucherService(repo, nopLogger{})

	count, err := svc.DeleteAll(context.Background())

	require.NoError(t, err)
	assert.Equal(t, int64(12), count)
}
