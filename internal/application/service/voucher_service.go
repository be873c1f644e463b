package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/learnhub/backoffice/internal/application/port"
	"github.com/learnhub/backoffice/internal/domain/entity"
	"github.com/learnhub/backoffice/pkg/utils"
)

// Logger interface for minimal logging dependency
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// CreateVoucherInput carries the fields of a manual voucher creation.
// The code is caller-supplied in manual mode and validated server-side
// for length, charset and uniqueness.
type CreateVoucherInput struct {
	Code           string
	Amount         decimal.Decimal
	Description    string
	MaxRedemptions *int
	ExpiresAt      *time.Time
}

// VoucherView is a voucher plus its read-time classification.
type VoucherView struct {
	*entity.Voucher
	Status entity.VoucherStatus `json:"status"`
}

// VoucherList is the classified listing returned to the admin UI.
type VoucherList struct {
	Vouchers []VoucherView `json:"vouchers"`
	Counts   StatusCounts  `json:"counts"`
}

// StatusCounts buckets the listing by derived status.
type StatusCounts struct {
	Active   int `json:"active"`
	Expired  int `json:"expired"`
	Used     int `json:"used"`
	Inactive int `json:"inactive"`
}

// VoucherService manages the voucher lifecycle outside of bulk issuance.
type VoucherService interface {
	Create(ctx context.Context, input CreateVoucherInput) (*entity.Voucher, error)
	Get(ctx context.Context, id int64) (*VoucherView, error)
	List(ctx context.Context) (*VoucherList, error)
	Delete(ctx context.Context, id int64) error
	DeleteAll(ctx context.Context) (int64, error)
	Deactivate(ctx context.Context, id int64) error
	Redeem(ctx context.Context, code string) (*entity.Voucher, error)
}

type voucherServiceImpl struct {
	repo   port.VoucherRepository
	logger Logger
}

// NewVoucherService creates a new VoucherService
func NewVoucherService(repo port.VoucherRepository, logger Logger) VoucherService {
	return &voucherServiceImpl{repo: repo, logger: logger}
}

// Create validates and persists a single voucher with a caller-supplied code.
func (s *voucherServiceImpl) Create(ctx context.Context, input CreateVoucherInput) (*entity.Voucher, error) {
	voucher := &entity.Voucher{
		Code:           strings.ToUpper(strings.TrimSpace(input.Code)),
		Amount:         input.Amount,
		Description:    utils.SanitizeString(input.Description),
		MaxRedemptions: input.MaxRedemptions,
		ExpiresAt:      input.ExpiresAt,
		IsActive:       true,
	}
	voucher.NormalizeAmount()

	if err := voucher.Validate(); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, voucher); err != nil {
		s.logger.Error("Failed to create voucher", "code", voucher.Code, "error", err)
		return nil, err
	}

	s.logger.Info("Voucher created",
		"voucher_id", voucher.ID,
		"code", voucher.Code,
		"amount", voucher.Amount.StringFixed(2))
	return voucher, nil
}

// Get returns one voucher with its read-time classification.
func (s *voucherServiceImpl) Get(ctx context.Context, id int64) (*VoucherView, error) {
	voucher, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &VoucherView{Voucher: voucher, Status: voucher.Status(time.Now())}, nil
}

// List returns all vouchers classified into status buckets as of now.
func (s *voucherServiceImpl) List(ctx context.Context) (*VoucherList, error) {
	vouchers, err := s.repo.List(ctx)
	if err != nil {
		s.logger.Error("Failed to list vouchers", "error", err)
		return nil, err
	}

	now := time.Now()
	list := &VoucherList{Vouchers: make([]VoucherView, 0, len(vouchers))}
	for _, v := range vouchers {
		status := v.Status(now)
		list.Vouchers = append(list.Vouchers, VoucherView{Voucher: v, Status: status})
		switch status {
		case entity.StatusActive:
			list.Counts.Active++
		case entity.StatusExpired:
			list.Counts.Expired++
		case entity.StatusUsed:
			list.Counts.Used++
		case entity.StatusInactive:
			list.Counts.Inactive++
		}
	}
	return list, nil
}

// Delete hard-deletes one voucher. Missing ids succeed silently.
func (s *voucherServiceImpl) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		s.logger.Error("Failed to delete voucher", "voucher_id", id, "error", err)
		return err
	}
	s.logger.Info("Voucher deleted", "voucher_id", id)
	return nil
}

// DeleteAll removes every voucher and reports the count.
func (s *voucherServiceImpl) DeleteAll(ctx context.Context) (int64, error) {
	count, err := s.repo.DeleteAll(ctx)
	if err != nil {
		s.logger.Error("Failed to delete all vouchers", "error", err)
		return 0, err
	}
	s.logger.Info("All vouchers deleted", "count", count)
	return count, nil
}

// Deactivate turns a voucher off without deleting it.
func (s *voucherServiceImpl) Deactivate(ctx context.Context, id int64) error {
	if err := s.repo.Deactivate(ctx, id); err != nil {
		s.logger.Error("Failed to deactivate voucher", "voucher_id", id, "error", err)
		return err
	}
	s.logger.Info("Voucher deactivated", "voucher_id", id)
	return nil
}

// Redeem applies a voucher code once, incrementing its usage counter.
func (s *voucherServiceImpl) Redeem(ctx context.Context, code string) (*entity.Voucher, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if err := entity.ValidateCode(code); err != nil {
		return nil, err
	}

	voucher, err := s.repo.Redeem(ctx, code, time.Now())
	if err != nil {
		return nil, fmt.Errorf("redeem voucher %s: %w", code, err)
	}

	s.logger.Info("Voucher redeemed",
		"voucher_id", voucher.ID,
		"code", voucher.Code,
		"current_redemptions", voucher.CurrentRedemptions)
	return voucher, nil
}
