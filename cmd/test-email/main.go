package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/learnhub/backoffice/internal/application/port"
	"github.com/learnhub/backoffice/internal/config"
	"github.com/learnhub/backoffice/internal/domain/entity"
	"github.com/learnhub/backoffice/internal/infrastructure/email"
	"github.com/learnhub/backoffice/internal/infrastructure/pdf"
)

// Isolated SMTP smoke test. Sends one voucher email with a PDF
// attachment to the given address, bypassing the HTTP layer and the
// database.
func main() {
	fmt.Println("=== Voucher Email Delivery Test ===")
	fmt.Println("This tool sends a test voucher email via the configured SMTP server")
	fmt.Println()

	if len(os.Args) < 2 {
		log.Fatalf("Usage: %s <recipient-email> [config-path]", os.Args[0])
	}
	recipient := os.Args[1]

	configPath := "configs/config.yaml"
	if len(os.Args) > 2 {
		configPath = os.Args[2]
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if cfg.Email.Host == "" {
		log.Fatal("No SMTP host configured; set SMTP_HOST and SMTP_SENDER")
	}

	fmt.Printf("SMTP server: %s:%d\n", cfg.Email.Host, cfg.Email.Port)
	fmt.Printf("Sender: %s <%s>\n", cfg.Email.SenderName, cfg.Email.Sender)
	fmt.Printf("Recipient: %s\n", recipient)

	logger := zap.NewNop()

	fmt.Println("\n[Step 1] Rendering test voucher PDF...")
	expires := time.Now().AddDate(0, 1, 0)
	voucher := &entity.Voucher{
		Code:      entity.GenerateCode(),
		Amount:    decimal.RequireFromString("25.00"),
		ExpiresAt: &expires,
		IsActive:  true,
	}

	renderer := pdf.NewRenderer(cfg.Voucher.CompanyName, logger)
	attachment, err := renderer.RenderVoucher(voucher)
	if err != nil {
		log.Fatalf("Failed to render PDF: %v", err)
	}
	fmt.Printf("✓ Rendered %d bytes\n", len(attachment))

	fmt.Println("\n[Step 2] Sending email...")
	transports := email.NewDialerMap(
		cfg.Email.Sender, cfg.Email.Host, cfg.Email.Port,
		cfg.Email.Username, cfg.Email.Password)

	mailer, err := email.NewSMTPMailer(email.Config{
		Sender:     cfg.Email.Sender,
		SenderName: cfg.Email.SenderName,
	}, transports, nil, logger)
	if err != nil {
		log.Fatalf("Failed to build mailer: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Email.SendTimeout)
	defer cancel()

	err = mailer.SendVoucherEmail(ctx, port.VoucherEmail{
		RecipientEmail: recipient,
		Vouchers:       []*entity.Voucher{voucher},
		Attachment: &port.Attachment{
			Filename: "voucher.pdf",
			MIMEType: "application/pdf",
			Content:  attachment,
		},
	})
	if err != nil {
		log.Fatalf("Failed to send email: %v", err)
	}

	fmt.Printf("✓ Sent voucher %s to %s\n", voucher.Code, recipient)
}
