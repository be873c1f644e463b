package export

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/learnhub/backoffice/internal/application/port"
	"github.com/learnhub/backoffice/internal/domain/entity"
)

const sheetName = "Vouchers"

var headerRow = []string{
	"ID", "Code", "Amount", "Description", "Status",
	"Redemptions", "Max Redemptions", "Expires At", "Created At",
}

// ExcelExporter writes the voucher list to an xlsx workbook for
// back-office download.
type ExcelExporter struct {
	logger *zap.Logger
}

// NewExcelExporter creates a new Excel exporter.
func NewExcelExporter(logger *zap.Logger) *ExcelExporter {
	return &ExcelExporter{logger: logger}
}

// Export builds a workbook with one row per voucher and returns the
// serialized xlsx bytes.
func (e *ExcelExporter) Export(vouchers []*entity.Voucher) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		e.logger.Warn("Failed to remove default sheet", zap.Error(err))
	}

	for col, title := range headerRow {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		e.setCell(f, cell, title)
	}

	now := time.Now()
	for i, v := range vouchers {
		row := i + 2
		e.setCell(f, e.cell(1, row), v.ID)
		e.setCell(f, e.cell(2, row), v.Code)
		e.setCell(f, e.cell(3, row), v.Amount.StringFixed(2))
		e.setCell(f, e.cell(4, row), v.Description)
		e.setCell(f, e.cell(5, row), string(v.Status(now)))
		e.setCell(f, e.cell(6, row), v.CurrentRedemptions)
		if v.MaxRedemptions != nil {
			e.setCell(f, e.cell(7, row), *v.MaxRedemptions)
		} else {
			e.setCell(f, e.cell(7, row), "unlimited")
		}
		if v.ExpiresAt != nil {
			e.setCell(f, e.cell(8, row), v.ExpiresAt.Format("2006-01-02"))
		}
		e.setCell(f, e.cell(9, row), v.CreatedAt.Format("2006-01-02 15:04:05"))
	}

	if err := f.SetColWidth(sheetName, "B", "B", 22); err != nil {
		e.logger.Warn("Failed to set column width", zap.Error(err))
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize workbook: %w", err)
	}

	e.logger.Info("Exported voucher workbook", zap.Int("vouchers", len(vouchers)))
	return buf.Bytes(), nil
}

// cell converts 1-based coordinates to a cell name, ignoring errors that
// cannot occur for positive coordinates.
func (e *ExcelExporter) cell(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}

// setCell sets a cell value in the workbook
func (e *ExcelExporter) setCell(f *excelize.File, cell string, value interface{}) {
	if err := f.SetCellValue(sheetName, cell, value); err != nil {
		e.logger.Warn("Failed to set cell value",
			zap.String("cell", cell),
			zap.Error(err))
	}
}

// Verify interface compliance
var _ port.VoucherExporter = (*ExcelExporter)(nil)
