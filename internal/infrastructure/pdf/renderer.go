package pdf

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
	"go.uber.org/zap"

	"github.com/learnhub/backoffice/internal/application/port"
	"github.com/learnhub/backoffice/internal/domain/entity"
)

// Renderer produces printable voucher documents with gofpdf.
type Renderer struct {
	companyName string
	logger      *zap.Logger
}

// NewRenderer creates a new PDF renderer.
func NewRenderer(companyName string, logger *zap.Logger) *Renderer {
	if companyName == "" {
		companyName = "LearnHub"
	}
	return &Renderer{companyName: companyName, logger: logger}
}

// RenderVoucher renders a single voucher as a one-page A4 document.
func (r *Renderer) RenderVoucher(voucher *entity.Voucher) ([]byte, error) {
	doc := gofpdf.New("P", "mm", "A4", "")
	doc.AddPage()
	r.header(doc, "Gift Voucher")

	doc.Ln(10)
	doc.SetFont("Helvetica", "", 14)
	doc.CellFormat(0, 10, fmt.Sprintf("Value: %s", voucher.Amount.StringFixed(2)), "", 1, "C", false, 0, "")

	doc.Ln(6)
	doc.SetFont("Courier", "B", 26)
	doc.SetDrawColor(15, 76, 129)
	doc.CellFormat(0, 18, voucher.Code, "1", 1, "C", false, 0, "")

	doc.Ln(4)
	doc.SetFont("Helvetica", "", 11)
	if voucher.Description != "" {
		doc.CellFormat(0, 8, voucher.Description, "", 1, "C", false, 0, "")
	}
	if voucher.ExpiresAt != nil {
		doc.CellFormat(0, 8, fmt.Sprintf("Valid until %s", voucher.ExpiresAt.Format("January 2, 2006")), "", 1, "C", false, 0, "")
	}
	if voucher.MaxRedemptions != nil {
		doc.CellFormat(0, 8, fmt.Sprintf("Redeemable %d time(s)", *voucher.MaxRedemptions), "", 1, "C", false, 0, "")
	}

	r.footer(doc)
	return r.output(doc)
}

// RenderBatch renders all vouchers of a wholesale batch as one document
// with a code table.
func (r *Renderer) RenderBatch(vouchers []*entity.Voucher) ([]byte, error) {
	doc := gofpdf.New("P", "mm", "A4", "")
	doc.AddPage()
	r.header(doc, fmt.Sprintf("Voucher Batch (%d codes)", len(vouchers)))

	doc.Ln(8)
	doc.SetFont("Helvetica", "B", 11)
	doc.SetFillColor(241, 245, 249)
	doc.CellFormat(20, 9, "#", "1", 0, "C", true, 0, "")
	doc.CellFormat(100, 9, "Code", "1", 0, "C", true, 0, "")
	doc.CellFormat(40, 9, "Amount", "1", 1, "C", true, 0, "")

	for i, v := range vouchers {
		if doc.GetY() > 265 {
			doc.AddPage()
		}
		doc.SetFont("Helvetica", "", 10)
		doc.CellFormat(20, 8, fmt.Sprintf("%d", i+1), "1", 0, "C", false, 0, "")
		doc.SetFont("Courier", "B", 12)
		doc.CellFormat(100, 8, v.Code, "1", 0, "C", false, 0, "")
		doc.SetFont("Helvetica", "", 10)
		doc.CellFormat(40, 8, v.Amount.StringFixed(2), "1", 1, "R", false, 0, "")
	}

	r.footer(doc)
	return r.output(doc)
}

func (r *Renderer) header(doc *gofpdf.Fpdf, title string) {
	doc.SetFont("Helvetica", "B", 22)
	doc.SetTextColor(15, 76, 129)
	doc.CellFormat(0, 14, r.companyName, "", 1, "C", false, 0, "")
	doc.SetTextColor(31, 41, 51)
	doc.SetFont("Helvetica", "", 16)
	doc.CellFormat(0, 10, title, "", 1, "C", false, 0, "")
}

func (r *Renderer) footer(doc *gofpdf.Fpdf) {
	doc.SetY(-30)
	doc.SetFont("Helvetica", "I", 9)
	doc.SetTextColor(156, 163, 175)
	doc.CellFormat(0, 6, fmt.Sprintf("Issued %s", time.Now().Format("2006-01-02")), "", 1, "C", false, 0, "")
	doc.CellFormat(0, 6, "Redeem at checkout to apply this credit to any course.", "", 1, "C", false, 0, "")
}

func (r *Renderer) output(doc *gofpdf.Fpdf) ([]byte, error) {
	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		r.logger.Error("Failed to render voucher PDF", zap.Error(err))
		return nil, fmt.Errorf("render voucher pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// Verify interface compliance
var _ port.VoucherRenderer = (*Renderer)(nil)
