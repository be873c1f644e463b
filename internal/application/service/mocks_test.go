package service

import (
	"context"
	"sync"
	"time"

	"github.com/learnhub/backoffice/internal/application/port"
	"github.com/learnhub/backoffice/internal/domain/entity"
)

type nopLogger struct{}

func (nopLogger) Info(msg string, keysAndValues ...interface{})  {}
func (nopLogger) Error(msg string, keysAndValues ...interface{}) {}

type mockVoucherRepo struct {
	mu      sync.Mutex
	created []*entity.Voucher

	createFunc     func(ctx context.Context, voucher *entity.Voucher) error
	listFunc       func(ctx context.Context) ([]*entity.Voucher, error)
	deleteFunc     func(ctx context.Context, id int64) error
	deleteAllFunc  func(ctx context.Context) (int64, error)
	redeemFunc     func(ctx context.Context, code string, now time.Time) (*entity.Voucher, error)
	deactivateFunc func(ctx context.Context, id int64) error
}

func (m *mockVoucherRepo) Create(ctx context.Context, voucher *entity.Voucher) error {
	if m.createFunc != nil {
		if err := m.createFunc(ctx, voucher); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	voucher.ID = int64(len(m.created) + 1)
	voucher.CreatedAt = time.Now()
	voucher.UpdatedAt = voucher.CreatedAt
	m.created = append(m.created, voucher)
	return nil
}

func (m *mockVoucherRepo) GetByID(ctx context.Context, id int64) (*entity.Voucher, error) {
	return nil, entity.ErrVoucherNotFound
}

func (m *mockVoucherRepo) GetByCode(ctx context.Context, code string) (*entity.Voucher, error) {
	return nil, entity.ErrVoucherNotFound
}

func (m *mockVoucherRepo) List(ctx context.Context) ([]*entity.Voucher, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx)
	}
	return m.created, nil
}

func (m *mockVoucherRepo) Delete(ctx context.Context, id int64) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return nil
}

func (m *mockVoucherRepo) DeleteAll(ctx context.Context) (int64, error) {
	if m.deleteAllFunc != nil {
		return m.deleteAllFunc(ctx)
	}
	return int64(len(m.created)), nil
}

func (m *mockVoucherRepo) Redeem(ctx context.Context, code string, now time.Time) (*entity.Voucher, error) {
	if m.redeemFunc != nil {
		return m.redeemFunc(ctx, code, now)
	}
	return nil, entity.ErrVoucherNotFound
}

func (m *mockVoucherRepo) Deactivate(ctx context.Context, id int64) error {
	if m.deactivateFunc != nil {
		return m.deactivateFunc(ctx, id)
	}
	return nil
}

func (m *mockVoucherRepo) createdCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.created)
}

type mockTxManager struct {
	withTransactionFunc func(ctx context.Context, fn func(ctx context.Context) error) error
}

func (m *mockTxManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if m.withTransactionFunc != nil {
		return m.withTransactionFunc(ctx, fn)
	}
	return fn(ctx)
}

type mockMailer struct {
	mu    sync.Mutex
	sent  []port.VoucherEmail
	fails map[string]bool

	sendFunc func(ctx context.Context, email port.VoucherEmail) error
}

func (m *mockMailer) SendVoucherEmail(ctx context.Context, email port.VoucherEmail) error {
	m.mu.Lock()
	m.sent = append(m.sent, email)
	m.mu.Unlock()

	if m.sendFunc != nil {
		return m.sendFunc(ctx, email)
	}
	if m.fails[email.RecipientEmail] {
		return context.DeadlineExceeded
	}
	return nil
}

func (m *mockMailer) sentCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

type mockRenderer struct {
	renderVoucherFunc func(voucher *entity.Voucher) ([]byte, error)
	renderBatchFunc   func(vouchers []*entity.Voucher) ([]byte, error)
}

func (m *mockRenderer) RenderVoucher(voucher *entity.Voucher) ([]byte, error) {
	if m.renderVoucherFunc != nil {
		return m.renderVoucherFunc(voucher)
	}
	return []byte("%PDF-1.4 voucher"), nil
}

func (m *mockRenderer) RenderBatch(vouchers []*entity.Voucher) ([]byte, error) {
	if m.renderBatchFunc != nil {
		return m.renderBatchFunc(vouchers)
	}
	return []byte("%PDF-1.4 batch"), nil
}

var (
	_ port.VoucherRepository = (*mockVoucherRepo)(nil)
	_ port.TransactionManager = (*mockTxManager)(nil)
	_ port.Mailer            = (*mockMailer)(nil)
	_ port.VoucherRenderer   = (*mockRenderer)(nil)
)
