package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/learnhub/backoffice/internal/application/port"
	"github.com/learnhub/backoffice/internal/domain/entity"
	"github.com/learnhub/backoffice/pkg/utils"
)

// DistributionMode selects how a bulk batch is emailed out.
type DistributionMode string

const (
	// DistributionSingle sends every code of the batch to one recipient
	// in a single email with a multi-voucher PDF attached.
	DistributionSingle DistributionMode = "single"

	// DistributionIndividual sends voucher i to recipient i, one email
	// and one single-voucher PDF per recipient.
	DistributionIndividual DistributionMode = "individual"
)

// Bulk issuance limits.
const (
	// MaxBulkCount bounds batch sizes so one request cannot create an
	// unbounded number of vouchers.
	MaxBulkCount = 100

	// maxCodeRetries bounds regeneration attempts after a code collision.
	// At 36^14 combinations a single collision is already extraordinary.
	maxCodeRetries = 5
)

// Recipient identifies one email destination of a bulk batch.
type Recipient struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email"`
}

// BulkIssueRequest describes one bulk voucher batch.
type BulkIssueRequest struct {
	Count            int
	Amount           decimal.Decimal
	Description      string
	MaxRedemptions   *int
	ExpiresAt        *time.Time
	Recipients       []Recipient
	SendEmail        bool
	DistributionMode DistributionMode
}

// EmailResult records one email dispatch attempt.
type EmailResult struct {
	Recipient string `json:"recipient"`
	Success   bool   `json:"success"`
	Error     string `json:"error,omitempty"`
}

// BulkIssueResult is the outcome of a bulk issuance: the persisted
// vouchers plus the per-recipient delivery record and its summary.
type BulkIssueResult struct {
	BatchID      string            `json:"batch_id"`
	Vouchers     []*entity.Voucher `json:"vouchers"`
	EmailResults []EmailResult     `json:"email_results"`
	Summary      string            `json:"summary"`
}

// BulkIssuer creates voucher batches and distributes them by email.
//
// Vouchers are considered issued once persisted: delivery failures are
// recorded per recipient and surfaced in the result, never returned as
// an error. A mail outage must not invalidate already-valid codes.
type BulkIssuer interface {
	Issue(ctx context.Context, req BulkIssueRequest) (*BulkIssueResult, error)
}

type bulkIssuerImpl struct {
	repo        port.VoucherRepository
	txManager   port.TransactionManager
	mailer      port.Mailer
	renderer    port.VoucherRenderer
	sendTimeout time.Duration
	logger      Logger
}

// NewBulkIssuer creates a new BulkIssuer. sendTimeout bounds each email
// dispatch attempt; a timed-out send counts as that recipient's failure.
func NewBulkIssuer(
	repo port.VoucherRepository,
	txManager port.TransactionManager,
	mailer port.Mailer,
	renderer port.VoucherRenderer,
	sendTimeout time.Duration,
	logger Logger,
) BulkIssuer {
	if sendTimeout <= 0 {
		sendTimeout = 30 * time.Second
	}
	return &bulkIssuerImpl{
		repo:        repo,
		txManager:   txManager,
		mailer:      mailer,
		renderer:    renderer,
		sendTimeout: sendTimeout,
		logger:      logger,
	}
}

// Issue validates the request, persists the whole batch in one
// transaction, and then dispatches emails per distribution mode.
func (s *bulkIssuerImpl) Issue(ctx context.Context, req BulkIssueRequest) (*BulkIssueResult, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}

	batchID := uuid.NewString()
	s.logger.Info("Issuing voucher batch",
		"batch_id", batchID,
		"count", req.Count,
		"send_email", req.SendEmail,
		"mode", string(req.DistributionMode))

	vouchers, err := s.createBatch(ctx, req)
	if err != nil {
		s.logger.Error("Voucher batch creation failed", "batch_id", batchID, "error", err)
		return nil, err
	}

	result := &BulkIssueResult{BatchID: batchID, Vouchers: vouchers}
	if req.SendEmail {
		result.EmailResults = s.dispatch(ctx, req, vouchers)
	}

	report := DeliveryReport{Created: len(vouchers), Results: result.EmailResults}
	result.Summary = report.Summary()

	s.logger.Info("Voucher batch issued",
		"batch_id", batchID,
		"created", len(vouchers),
		"emails_sent", report.SentCount(),
		"emails_failed", report.FailedCount())
	return result, nil
}

// validate applies all caller-facing checks before anything is persisted.
func (s *bulkIssuerImpl) validate(req BulkIssueRequest) error {
	if req.Count < 1 || req.Count > MaxBulkCount {
		return &entity.ValidationError{
			Field:  "count",
			Reason: fmt.Sprintf("must be between 1 and %d", MaxBulkCount),
		}
	}
	if !req.Amount.IsPositive() {
		return &entity.ValidationError{Field: "amount", Reason: "must be positive"}
	}
	if req.MaxRedemptions != nil && *req.MaxRedemptions <= 0 {
		return &entity.ValidationError{Field: "max_redemptions", Reason: "must be positive when set"}
	}

	if !req.SendEmail {
		return nil
	}

	switch req.DistributionMode {
	case DistributionSingle:
		if len(req.Recipients) == 0 || utils.ValidateEmail(strings.TrimSpace(req.Recipients[0].Email)) != nil {
			return &entity.ValidationError{
				Field:  "recipients",
				Reason: "single distribution requires one valid recipient email",
			}
		}
	case DistributionIndividual:
		populated := 0
		for _, r := range req.Recipients {
			if utils.ValidateEmail(strings.TrimSpace(r.Email)) == nil {
				populated++
			}
		}
		if populated < req.Count {
			return &entity.ValidationError{
				Field: "recipients",
				Reason: fmt.Sprintf(
					"individual distribution requires %d recipient emails, got %d",
					req.Count, populated),
			}
		}
	default:
		return &entity.ValidationError{
			Field:  "email_distribution_mode",
			Reason: "must be \"single\" or \"individual\"",
		}
	}
	return nil
}

// createBatch persists Count vouchers inside one transaction. Any
// persistence failure rolls the whole batch back so nothing is left
// half-created. Code collisions are retried with fresh codes.
func (s *bulkIssuerImpl) createBatch(ctx context.Context, req BulkIssueRequest) ([]*entity.Voucher, error) {
	amount := req.Amount.Round(2)
	vouchers := make([]*entity.Voucher, 0, req.Count)

	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		for i := 0; i < req.Count; i++ {
			voucher, err := s.createOne(txCtx, amount, req)
			if err != nil {
				return err
			}
			vouchers = append(vouchers, voucher)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("create voucher batch: %w", err)
	}
	return vouchers, nil
}

func (s *bulkIssuerImpl) createOne(ctx context.Context, amount decimal.Decimal, req BulkIssueRequest) (*entity.Voucher, error) {
	for attempt := 0; attempt < maxCodeRetries; attempt++ {
		voucher := &entity.Voucher{
			Code:           entity.GenerateCode(),
			Amount:         amount,
			Description:    utils.SanitizeString(req.Description),
			MaxRedemptions: req.MaxRedemptions,
			ExpiresAt:      req.ExpiresAt,
			IsActive:       true,
		}
		err := s.repo.Create(ctx, voucher)
		if err == nil {
			return voucher, nil
		}
		if errors.Is(err, entity.ErrDuplicateCode) {
			s.logger.Info("Voucher code collision, regenerating", "attempt", attempt+1)
			continue
		}
		return nil, err
	}
	return nil, fmt.Errorf("could not generate a unique voucher code after %d attempts", maxCodeRetries)
}

// dispatch sends the batch per distribution mode. Every attempt is
// recorded independently; one recipient's failure never blocks or
// cancels the others.
func (s *bulkIssuerImpl) dispatch(ctx context.Context, req BulkIssueRequest, vouchers []*entity.Voucher) []EmailResult {
	if req.DistributionMode == DistributionSingle {
		return []EmailResult{s.sendSingle(ctx, req.Recipients[0], vouchers)}
	}
	return s.sendIndividual(ctx, req.Recipients, vouchers)
}

// sendSingle delivers all codes of the batch in one email.
func (s *bulkIssuerImpl) sendSingle(ctx context.Context, recipient Recipient, vouchers []*entity.Voucher) EmailResult {
	pdf, err := s.renderer.RenderBatch(vouchers)
	if err != nil {
		s.logger.Error("Failed to render batch voucher PDF", "error", err)
		return EmailResult{Recipient: recipient.Email, Error: err.Error()}
	}
	return s.send(ctx, port.VoucherEmail{
		RecipientName:  recipient.Name,
		RecipientEmail: recipient.Email,
		Vouchers:       vouchers,
		Attachment: &port.Attachment{
			Filename: "vouchers.pdf",
			MIMEType: "application/pdf",
			Content:  pdf,
		},
	})
}

// sendIndividual fans out one email per recipient concurrently, with
// results index-correlated back to the originating voucher.
func (s *bulkIssuerImpl) sendIndividual(ctx context.Context, recipients []Recipient, vouchers []*entity.Voucher) []EmailResult {
	results := make([]EmailResult, len(vouchers))

	var wg sync.WaitGroup
	for i := range vouchers {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			voucher := vouchers[i]
			recipient := recipients[i]

			pdf, err := s.renderer.RenderVoucher(voucher)
			if err != nil {
				s.logger.Error("Failed to render voucher PDF",
					"voucher_id", voucher.ID, "error", err)
				results[i] = EmailResult{Recipient: recipient.Email, Error: err.Error()}
				return
			}

			results[i] = s.send(ctx, port.VoucherEmail{
				RecipientName:  recipient.Name,
				RecipientEmail: recipient.Email,
				Vouchers:       []*entity.Voucher{voucher},
				Attachment: &port.Attachment{
					Filename: fmt.Sprintf("voucher-%s.pdf", voucher.Code),
					MIMEType: "application/pdf",
					Content:  pdf,
				},
			})
		}(i)
	}
	wg.Wait()

	return results
}

func (s *bulkIssuerImpl) send(ctx context.Context, email port.VoucherEmail) EmailResult {
	sendCtx, cancel := context.WithTimeout(ctx, s.sendTimeout)
	defer cancel()

	if err := s.mailer.SendVoucherEmail(sendCtx, email); err != nil {
		s.logger.Error("Failed to send voucher email",
			"recipient", email.RecipientEmail, "error", err)
		return EmailResult{Recipient: email.RecipientEmail, Error: err.Error()}
	}
	return EmailResult{Recipient: email.RecipientEmail, Success: true}
}
