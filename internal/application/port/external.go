package port

import (
	"context"

	"github.com/learnhub/backoffice/internal/domain/entity"
)

// VoucherEmail is one outbound voucher notification.
type VoucherEmail struct {
	RecipientName  string
	RecipientEmail string
	Vouchers       []*entity.Voucher
	Attachment     *Attachment
}

// Attachment is a rendered document attached to an email.
type Attachment struct {
	Filename string
	MIMEType string
	Content  []byte
}

// Mailer delivers voucher notifications. Implementations must respect the
// context deadline so one slow SMTP connection cannot stall a batch.
type Mailer interface {
	SendVoucherEmail(ctx context.Context, email VoucherEmail) error
}

// VoucherRenderer produces the PDF document attached to voucher emails.
type VoucherRenderer interface {
	// RenderVoucher renders a single-voucher document.
	RenderVoucher(voucher *entity.Voucher) ([]byte, error)

	// RenderBatch renders one document listing every voucher in a batch,
	// used when a wholesale buyer receives all codes in one email.
	RenderBatch(vouchers []*entity.Voucher) ([]byte, error)
}

// VoucherExporter produces an admin spreadsheet of all vouchers.
type VoucherExporter interface {
	Export(vouchers []*entity.Voucher) ([]byte, error)
}
