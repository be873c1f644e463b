package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/learnhub/backoffice/internal/domain/entity"
)

func TestExport(t *testing.T) {
	exporter := NewExcelExporter(zap.NewNop())

	t.Run("writes one row per voucher plus header", func(t *testing.T) {
		max := 5
		expires := time.Date(2027, 1, 31, 0, 0, 0, 0, time.UTC)
		vouchers := []*entity.Voucher{
			{
				ID:        1,
				Code:      "ABCDEF12345678",
				Amount:    decimal.NewFromInt(50),
				IsActive:  true,
				CreatedAt: time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC),
			},
			{
				ID:                 2,
				Code:               "ZYXWVU98765432",
				Amount:             decimal.RequireFromString("19.90"),
				Description:        "Back to school",
				MaxRedemptions:     &max,
				CurrentRedemptions: 2,
				ExpiresAt:          &expires,
				IsActive:           true,
				CreatedAt:          time.Date(2026, 8, 2, 10, 0, 0, 0, time.UTC),
			},
		}

		data, err := exporter.Export(vouchers)
		require.NoError(t, err)

		f, err := excelize.OpenReader(bytes.NewReader(data))
		require.NoError(t, err)
		defer f.Close()

		rows, err := f.GetRows("Vouchers")
		require.NoError(t, err)
		require.Len(t, rows, 3)

		assert.Equal(t, "Code", rows[0][1])
		assert.Equal(t, "ABCDEF12345678", rows[1][1])
		assert.Equal(t, "50.00", rows[1][2])
		assert.Equal(t, "unlimited", rows[1][6])
		assert.Equal(t, "ZYXWVU98765432", rows[2][1])
		assert.Equal(t, "19.90", rows[2][2])
		assert.Equal(t, "5", rows[2][6])
		assert.Equal(t, "2027-01-31", rows[2][7])
	})

	t.Run("empty list still produces a readable workbook", func(t *testing.T) {
		data, err := exporter.Export(nil)
		require.NoError(t, err)

		f, err := excelize.OpenReader(bytes.NewReader(data))
		require.NoError(t, err)
		defer f.Close()

		rows, err := f.GetRows("Vouchers")
		require.NoError(t, err)
		require.Len(t, rows, 1)
	})
}
