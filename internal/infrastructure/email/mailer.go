package email

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"
	gomail "gopkg.in/gomail.v2"

	"github.com/learnhub/backoffice/internal/application/port"
)

// Transport sends a composed message. *gomail.Dialer satisfies it; tests
// substitute fakes.
type Transport interface {
	DialAndSend(m ...*gomail.Message) error
}

// Config holds the mailer's sender identity.
type Config struct {
	// Sender is the From address voucher mail goes out under. It must
	// have a transport registered in the transport map.
	Sender     string
	SenderName string
}

// SMTPMailer delivers voucher emails over SMTP. Transports are a
// strategy map keyed by sender address, injected at construction so
// tests can swap in fakes and so no transport is ever built from
// ambient environment reads.
type SMTPMailer struct {
	config     Config
	transports map[string]Transport
	links      *LinkCache
	logger     *zap.Logger
}

// NewSMTPMailer creates a new SMTPMailer.
func NewSMTPMailer(config Config, transports map[string]Transport, links *LinkCache, logger *zap.Logger) (*SMTPMailer, error) {
	if _, ok := transports[config.Sender]; !ok {
		return nil, fmt.Errorf("no transport registered for sender %q", config.Sender)
	}
	return &SMTPMailer{
		config:     config,
		transports: transports,
		links:      links,
		logger:     logger,
	}, nil
}

// NewDialerMap builds a transport map with one SMTP dialer for a single
// sender address, the common production setup.
func NewDialerMap(sender, host string, portNum int, username, password string) map[string]Transport {
	return map[string]Transport{
		sender: gomail.NewDialer(host, portNum, username, password),
	}
}

// SendVoucherEmail implements port.Mailer. The context deadline bounds
// the whole dial-and-send; a timeout counts as the recipient's failure.
func (m *SMTPMailer) SendVoucherEmail(ctx context.Context, email port.VoucherEmail) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", msg.FormatAddress(m.config.Sender, m.config.SenderName))
	msg.SetHeader("To", email.RecipientEmail)
	msg.SetHeader("Subject", voucherSubject(email))
	msg.SetBody("text/html", m.buildBody(email))

	if att := email.Attachment; att != nil {
		content := att.Content
		msg.Attach(att.Filename,
			gomail.SetCopyFunc(func(w io.Writer) error {
				_, err := w.Write(content)
				return err
			}),
			gomail.SetHeader(map[string][]string{"Content-Type": {att.MIMEType}}),
		)
	}

	transport := m.transports[m.config.Sender]

	// gomail has no context support; run the send aside and race it
	// against the deadline.
	errCh := make(chan error, 1)
	go func() {
		errCh <- transport.DialAndSend(msg)
	}()

	select {
	case <-ctx.Done():
		m.logger.Error("Voucher email send timed out",
			zap.String("recipient", email.RecipientEmail))
		return fmt.Errorf("send voucher email to %s: %w", email.RecipientEmail, ctx.Err())
	case err := <-errCh:
		if err != nil {
			m.logger.Error("Failed to send voucher email",
				zap.String("recipient", email.RecipientEmail),
				zap.Error(err))
			return fmt.Errorf("send voucher email to %s: %w", email.RecipientEmail, err)
		}
	}

	m.logger.Info("Voucher email sent",
		zap.String("recipient", email.RecipientEmail),
		zap.Int("vouchers", len(email.Vouchers)))
	return nil
}

// Verify interface compliance
var _ port.Mailer = (*SMTPMailer)(nil)

// DisabledMailer is installed when no SMTP host is configured. Every
// send fails, which surfaces as a per-recipient delivery failure rather
// than blocking voucher creation.
type DisabledMailer struct{}

// SendVoucherEmail implements port.Mailer.
func (DisabledMailer) SendVoucherEmail(ctx context.Context, email port.VoucherEmail) error {
	return fmt.Errorf("email delivery is not configured")
}

var _ port.Mailer = DisabledMailer{}
