//go:build !integration

package web

import (
	"context"
	"sync"
	"time"

	"github.com/jackc/pgx/v4"

	"scouting-backend/internal/domain"
	"scouting-backend/internal/domain/model"
	"scouting-backend/internal/domain/ports/repository"
)

// --- Mock repositories (ports) ---

type mockPaymentRepo struct {
	repository.PaymentRepository // Embed interface for forward compatibility
	mu                           sync.Mutex
	payments                     map[string]*model.Payment // by transaction id
}

func newMockPaymentRepo() *mockPaymentRepo {
	return &mockPaymentRepo{payments: make(map[string]*model.Payment)}
}

func (m *mockPaymentRepo) Save(ctx context.Context, tx repository.Tx, p *model.Payment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *p
	m.payments[p.TransactionID] = &cp
	return nil
}

func (m *mockPaymentRepo) FindByTransactionID(ctx context.Context, tx repository.Tx, transactionID string) (*model.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.payments[transactionID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *mockPaymentRepo) ListByUser(ctx context.Context, tx repository.Tx, userID string, limit int) ([]*model.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Payment
	for _, p := range m.payments {
		if p.UserID == userID {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *mockPaymentRepo) UpdateStatusIfPending(ctx context.Context, tx repository.Tx, transactionID string, status model.PaymentStatus, gatewayResponse map[string]interface{}, completedAt *time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.payments[transactionID]
	if !ok || p.Status != model.PaymentStatusPending {
		return false, nil
	}
	p.Status = status
	if gatewayResponse != nil {
		p.GatewayResponse = gatewayResponse
	}
	p.CompletedAt = completedAt
	return true, nil
}

func (m *mockPaymentRepo) MarkRefunded(ctx context.Context, tx repository.Tx, transactionID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.payments[transactionID]
	if !ok {
		return false, domain.ErrNotFound
	}
	if p.Status != model.PaymentStatusCompleted {
		return false, nil
	}
	p.Status = model.PaymentStatusRefunded
	return true, nil
}

func (m *mockPaymentRepo) SetSubscriptionID(ctx context.Context, tx repository.Tx, paymentID, subscriptionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.payments {
		if p.ID == paymentID {
			p.SubscriptionID = &subscriptionID
			return nil
		}
	}
	return domain.ErrNotFound
}

func (m *mockPaymentRepo) SumByPeriod(ctx context.Context, tx repository.Tx, period string) (int64, error) {
	switch period {
	case "day", "week", "month", "year":
		return 5000, nil
	}
	return 0, domain.ErrInvalidArgument
}

type mockInvoiceRepo struct {
	repository.InvoiceRepository // Embed interface
	mu                           sync.Mutex
	seq                          int64
	invoices                     []*model.Invoice
}

func (m *mockInvoiceRepo) NextNumber(ctx context.Context, tx repository.Tx) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	return m.seq, nil
}

func (m *mockInvoiceRepo) Save(ctx context.Context, tx repository.Tx, inv *model.Invoice) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *inv
	m.invoices = append(m.invoices, &cp)
	return nil
}

func (m *mockInvoiceRepo) Count(ctx context.Context, tx repository.Tx) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.invoices), nil
}

func (m *mockInvoiceRepo) ListByUser(ctx context.Context, tx repository.Tx, userID string, limit int) ([]*model.Invoice, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Invoice
	for _, inv := range m.invoices {
		if inv.UserID == userID {
			cp := *inv
			out = append(out, &cp)
		}
	}
	return out, nil
}

type mockSubRepo struct {
	repository.SubscriptionRepository // Embed interface
	mu                                sync.Mutex
	subs                              []*model.Subscription
}

func (m *mockSubRepo) Save(ctx context.Context, tx repository.Tx, s *model.Subscription) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, existing := range m.subs {
		if existing.ID == s.ID {
			cp := *s
			m.subs[i] = &cp
			return nil
		}
	}
	cp := *s
	m.subs = append(m.subs, &cp)
	return nil
}

func (m *mockSubRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.subs {
		if s.ID == id {
			cp := *s
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockSubRepo) FindLatestByUser(ctx context.Context, tx repository.Tx, userID string) (*model.Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var latest *model.Subscription
	for _, s := range m.subs {
		if s.UserID != userID {
			continue
		}
		if latest == nil || s.CreatedAt.After(latest.CreatedAt) {
			latest = s
		}
	}
	if latest == nil {
		return nil, domain.ErrNotFound
	}
	cp := *latest
	return &cp, nil
}

func (m *mockSubRepo) CountByStatus(ctx context.Context, tx repository.Tx) (map[model.SubscriptionStatus]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[model.SubscriptionStatus]int)
	for _, s := range m.subs {
		out[s.Status]++
	}
	return out, nil
}

type mockUserRepo struct {
	repository.UserRepository // Embed interface
	mu                        sync.Mutex
	users                     map[string]*model.User
	roles                     map[string][]model.Role
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{
		users: make(map[string]*model.User),
		roles: make(map[string][]model.Role),
	}
}

func (m *mockUserRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *mockUserRepo) AssignRole(ctx context.Context, tx repository.Tx, userID string, role model.Role, assignedBy *string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.roles[userID] {
		if r == role {
			return nil
		}
	}
	m.roles[userID] = append(m.roles[userID], role)
	return nil
}

func (m *mockUserRepo) RolesByUser(ctx context.Context, tx repository.Tx, userID string) ([]model.Role, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.Role(nil), m.roles[userID]...), nil
}

type mockAuditRepo struct {
	repository.AuditLogRepository // Embed interface
	mu                            sync.Mutex
	entries                       []*model.AuditLog
}

func (m *mockAuditRepo) Append(ctx context.Context, tx repository.Tx, entry *model.AuditLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *entry
	m.entries = append(m.entries, &cp)
	return nil
}

func (m *mockAuditRepo) ListRecent(ctx context.Context, tx repository.Tx, limit, offset int) ([]*model.AuditLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*model.AuditLog, 0, len(m.entries))
	for i := len(m.entries) - 1; i >= 0; i-- {
		out = append(out, m.entries[i])
	}
	if offset > len(out) {
		offset = len(out)
	}
	out = out[offset:]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (m *mockAuditRepo) hasAction(action string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.entries {
		if e.Action == action {
			return true
		}
	}
	return false
}

type mockPlayerRepo struct {
	repository.PlayerRepository // Embed interface
	mu                          sync.Mutex
	players                     []*model.Player
}

func (m *mockPlayerRepo) Search(ctx context.Context, tx repository.Tx, query string, offset, limit int) ([]*model.Player, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*model.Player(nil), m.players...), nil
}

func (m *mockPlayerRepo) FindByUserID(ctx context.Context, tx repository.Tx, userID string) (*model.Player, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.players {
		if p.UserID != nil && *p.UserID == userID {
			return p, nil
		}
	}
	return nil, domain.ErrNotFound
}

type mockTeamRepo struct {
	repository.TeamRepository // Embed interface
}

func (mockTeamRepo) List(ctx context.Context, tx repository.Tx, offset, limit int) ([]*model.Team, error) {
	return []*model.Team{}, nil
}

type mockTxManager struct{}

func (mockTxManager) WithTx(ctx context.Context, opts pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	return fn(ctx, repository.NoTX)
}
