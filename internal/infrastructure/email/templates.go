package email

import (
	"fmt"
	"strings"

	"github.com/learnhub/backoffice/internal/application/port"
)

// voucherSubject builds the subject line for a voucher email.
func voucherSubject(email port.VoucherEmail) string {
	if len(email.Vouchers) == 1 {
		return fmt.Sprintf("Your LearnHub voucher – %s", email.Vouchers[0].Amount.StringFixed(2))
	}
	return fmt.Sprintf("Your %d LearnHub vouchers", len(email.Vouchers))
}

// buildBody composes the HTML body. One voucher renders as a highlighted
// code block; a wholesale batch renders as a code table. The attached
// PDF carries the printable version either way.
func (m *SMTPMailer) buildBody(email port.VoucherEmail) string {
	name := email.RecipientName
	if name == "" {
		name = "there"
	}

	var b strings.Builder
	b.WriteString(`<div style="font-family:Arial,sans-serif;max-width:600px;margin:0 auto;color:#1f2933;">`)
	fmt.Fprintf(&b, `<h2 style="color:#0f4c81;">Hi %s,</h2>`, name)

	if len(email.Vouchers) == 1 {
		v := email.Vouchers[0]
		fmt.Fprintf(&b, `<p>You have received a LearnHub voucher worth <strong>%s</strong>.</p>`,
			v.Amount.StringFixed(2))
		fmt.Fprintf(&b, `<div style="background:#f1f5f9;border:2px dashed #0f4c81;border-radius:8px;padding:16px;text-align:center;font-size:24px;letter-spacing:3px;font-weight:bold;">%s</div>`,
			v.Code)
		if v.ExpiresAt != nil {
			fmt.Fprintf(&b, `<p style="color:#6b7280;">Valid until %s.</p>`,
				v.ExpiresAt.Format("January 2, 2006"))
		}
	} else {
		fmt.Fprintf(&b, `<p>You have received <strong>%d</strong> LearnHub vouchers:</p>`,
			len(email.Vouchers))
		b.WriteString(`<table style="width:100%;border-collapse:collapse;">`)
		b.WriteString(`<tr><th style="text-align:left;border-bottom:1px solid #d1d5db;padding:8px;">Code</th><th style="text-align:right;border-bottom:1px solid #d1d5db;padding:8px;">Amount</th></tr>`)
		for _, v := range email.Vouchers {
			fmt.Fprintf(&b, `<tr><td style="padding:8px;font-family:monospace;letter-spacing:2px;">%s</td><td style="padding:8px;text-align:right;">%s</td></tr>`,
				v.Code, v.Amount.StringFixed(2))
		}
		b.WriteString(`</table>`)
	}

	b.WriteString(`<p>Redeem your code at checkout to apply the credit to any course.</p>`)
	b.WriteString(`<p style="color:#6b7280;">A printable PDF copy is attached to this email.</p>`)
	b.WriteString(m.footer())
	b.WriteString(`</div>`)
	return b.String()
}

func (m *SMTPMailer) footer() string {
	var b strings.Builder
	b.WriteString(`<hr style="border:none;border-top:1px solid #e5e7eb;margin:24px 0;">`)
	b.WriteString(`<p style="color:#9ca3af;font-size:12px;">This email was sent automatically by LearnHub. Please do not reply.</p>`)

	if m.links == nil {
		return b.String()
	}
	links := m.links.Get()
	parts := make([]string, 0, 4)
	for _, l := range []struct{ label, url string }{
		{"Facebook", links.Facebook},
		{"Instagram", links.Instagram},
		{"Twitter", links.Twitter},
		{"YouTube", links.YouTube},
	} {
		if l.url != "" {
			parts = append(parts, fmt.Sprintf(`<a href="%s" style="color:#0f4c81;">%s</a>`, l.url, l.label))
		}
	}
	if len(parts) > 0 {
		fmt.Fprintf(&b, `<p style="font-size:12px;">%s</p>`, strings.Join(parts, " · "))
	}
	return b.String()
}
