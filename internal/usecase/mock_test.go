//go:build !integration

package usecase_test

import (
	"context"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"scouting-backend/internal/domain"
	"scouting-backend/internal/domain/model"
	"scouting-backend/internal/domain/ports/adapter"
	"scouting-backend/internal/domain/ports/repository"
)

// newTestLogger creates a silent zerolog.Logger for use in tests.
func newTestLogger() *zerolog.Logger {
	logger := zerolog.New(io.Discard)
	return &logger
}

// =============================
// Adapters
// =============================

// ---- Mock PaymentGateway ----

// MockGateway implements adapter.PaymentGateway with overridable behavior.
// Defaults: every signature verifies, bodies are ignored, status maps via a
// CinetPay-like table, no server-side confirmation.
type MockGateway struct {
	NameVal         string
	SupportsConfirm bool

	VerifySignatureFunc    func(body []byte, signature string) bool
	ParseNotificationFunc  func(body []byte) (*adapter.Notification, error)
	MapStatusFunc          func(providerStatus string) model.PaymentStatus
	ConfirmTransactionFunc func(ctx context.Context, invoiceToken string) (*adapter.Confirmation, error)

	mu           sync.Mutex
	ConfirmCalls int
}

var _ adapter.PaymentGateway = (*MockGateway)(nil)

func (m *MockGateway) Name() string {
	if m.NameVal == "" {
		return "mockpay"
	}
	return m.NameVal
}

func (m *MockGateway) VerifySignature(body []byte, signature string) bool {
	if m.VerifySignatureFunc != nil {
		return m.VerifySignatureFunc(body, signature)
	}
	return true
}

func (m *MockGateway) ParseNotification(body []byte) (*adapter.Notification, error) {
	if m.ParseNotificationFunc != nil {
		return m.ParseNotificationFunc(body)
	}
	return &adapter.Notification{TransactionID: "TXN-test", ProviderStatus: "ACCEPTED", Raw: map[string]interface{}{}}, nil
}

func (m *MockGateway) MapStatus(providerStatus string) model.PaymentStatus {
	if m.MapStatusFunc != nil {
		return m.MapStatusFunc(providerStatus)
	}
	switch strings.ToUpper(providerStatus) {
	case "ACCEPTED":
		return model.PaymentStatusCompleted
	case "REFUSED":
		return model.PaymentStatusFailed
	case "CANCELLED":
		return model.PaymentStatusCancelled
	default:
		return model.PaymentStatusPending
	}
}

func (m *MockGateway) SupportsConfirmation() bool { return m.SupportsConfirm }

func (m *MockGateway) ConfirmTransaction(ctx context.Context, invoiceToken string) (*adapter.Confirmation, error) {
	m.mu.Lock()
	m.ConfirmCalls++
	m.mu.Unlock()
	if m.ConfirmTransactionFunc != nil {
		return m.ConfirmTransactionFunc(ctx, invoiceToken)
	}
	return nil, domain.ErrConfirmNotSupported
}

// ---- Mock NotificationSender ----

type MockNotifier struct {
	mu   sync.Mutex
	Sent []string // emails

	SendFunc func(ctx context.Context, email string, expiresAt time.Time) error
}

var _ adapter.NotificationSender = (*MockNotifier)(nil)

func (m *MockNotifier) SendSubscriptionActivated(ctx context.Context, email string, expiresAt time.Time) error {
	if m.SendFunc != nil {
		return m.SendFunc(ctx, email, expiresAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Sent = append(m.Sent, email)
	return nil
}

// ---- Inline task runner ----

// inlineRunner executes submitted tasks synchronously so tests can assert on
// their side effects without sleeping.
type inlineRunner struct {
	RejectErr error
}

func (r *inlineRunner) Submit(task func(ctx context.Context) error) error {
	if r.RejectErr != nil {
		return r.RejectErr
	}
	_ = task(context.Background())
	return nil
}

// =============================
// Repositories
// =============================

// ---- Mock PaymentRepository ----

type MockPaymentRepo struct {
	mu    sync.Mutex
	data  map[string]*model.Payment // by id
	byTxn map[string]string         // transaction id -> id

	SaveFunc                  func(ctx context.Context, tx repository.Tx, p *model.Payment) error
	UpdateStatusIfPendingFunc func(ctx context.Context, tx repository.Tx, transactionID string, status model.PaymentStatus, gatewayResponse map[string]interface{}, completedAt *time.Time) (bool, error)
	FindByTransactionIDFunc   func(ctx context.Context, tx repository.Tx, transactionID string) (*model.Payment, error)
}

var _ repository.PaymentRepository = (*MockPaymentRepo)(nil)

func NewMockPaymentRepo() *MockPaymentRepo {
	return &MockPaymentRepo{data: map[string]*model.Payment{}, byTxn: map[string]string{}}
}

func (r *MockPaymentRepo) Save(ctx context.Context, tx repository.Tx, p *model.Payment) error {
	if r.SaveFunc != nil {
		return r.SaveFunc(ctx, tx, p)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *p
	r.data[p.ID] = &cp
	r.byTxn[p.TransactionID] = p.ID
	return nil
}

func (r *MockPaymentRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.data[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *MockPaymentRepo) FindByTransactionID(ctx context.Context, tx repository.Tx, transactionID string) (*model.Payment, error) {
	if r.FindByTransactionIDFunc != nil {
		return r.FindByTransactionIDFunc(ctx, tx, transactionID)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.byTxn[transactionID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *r.data[id]
	return &cp, nil
}

func (r *MockPaymentRepo) ListByUser(ctx context.Context, tx repository.Tx, userID string, limit int) ([]*model.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Payment
	for _, p := range r.data {
		if p.UserID == userID {
			cp := *p
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// UpdateStatusIfPending mirrors the production conditional update: the check
// and the write happen under one lock, so concurrent callers serialize and
// exactly one wins.
func (r *MockPaymentRepo) UpdateStatusIfPending(ctx context.Context, tx repository.Tx, transactionID string, status model.PaymentStatus, gatewayResponse map[string]interface{}, completedAt *time.Time) (bool, error) {
	if r.UpdateStatusIfPendingFunc != nil {
		return r.UpdateStatusIfPendingFunc(ctx, tx, transactionID, status, gatewayResponse, completedAt)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.byTxn[transactionID]
	if !ok {
		return false, domain.ErrNotFound
	}
	p := r.data[id]
	if p.Status != model.PaymentStatusPending {
		return false, nil
	}
	p.Status = status
	p.GatewayResponse = gatewayResponse
	p.CompletedAt = completedAt
	p.UpdatedAt = time.Now()
	return true, nil
}

func (r *MockPaymentRepo) MarkRefunded(ctx context.Context, tx repository.Tx, transactionID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.byTxn[transactionID]
	if !ok {
		return false, domain.ErrNotFound
	}
	p := r.data[id]
	if p.Status != model.PaymentStatusCompleted {
		return false, nil
	}
	p.Status = model.PaymentStatusRefunded
	p.UpdatedAt = time.Now()
	return true, nil
}

func (r *MockPaymentRepo) SetSubscriptionID(ctx context.Context, tx repository.Tx, paymentID, subscriptionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.data[paymentID]
	if !ok {
		return domain.ErrNotFound
	}
	p.SubscriptionID = &subscriptionID
	return nil
}

func (r *MockPaymentRepo) ListCompletedUnlinked(ctx context.Context, tx repository.Tx, limit int) ([]*model.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Payment
	for _, p := range r.data {
		if p.Status == model.PaymentStatusCompleted && p.SubscriptionID == nil {
			cp := *p
			out = append(out, &cp)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *MockPaymentRepo) SumByPeriod(ctx context.Context, tx repository.Tx, period string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var sum int64
	for _, p := range r.data {
		if p.Status == model.PaymentStatusCompleted {
			sum += p.Amount
		}
	}
	return sum, nil
}

// ---- Mock InvoiceRepository ----

type MockInvoiceRepo struct {
	mu       sync.Mutex
	seq      int64
	invoices []*model.Invoice
}

var _ repository.InvoiceRepository = (*MockInvoiceRepo)(nil)

func NewMockInvoiceRepo() *MockInvoiceRepo { return &MockInvoiceRepo{} }

func (r *MockInvoiceRepo) Save(ctx context.Context, tx repository.Tx, inv *model.Invoice) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *inv
	r.invoices = append(r.invoices, &cp)
	return nil
}

func (r *MockInvoiceRepo) Count(ctx context.Context, tx repository.Tx) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.invoices), nil
}

// NextNumber mirrors a database sequence: values advance regardless of what
// happens to the surrounding transaction.
func (r *MockInvoiceRepo) NextNumber(ctx context.Context, tx repository.Tx) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	return r.seq, nil
}

func (r *MockInvoiceRepo) ListByUser(ctx context.Context, tx repository.Tx, userID string, limit int) ([]*model.Invoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Invoice
	for _, inv := range r.invoices {
		if inv.UserID == userID {
			cp := *inv
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *MockInvoiceRepo) All() []*model.Invoice {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*model.Invoice, len(r.invoices))
	copy(out, r.invoices)
	return out
}

// ---- Mock SubscriptionRepository ----

type MockSubscriptionRepo struct {
	mu   sync.Mutex
	subs map[string]*model.Subscription // by id
}

var _ repository.SubscriptionRepository = (*MockSubscriptionRepo)(nil)

func NewMockSubscriptionRepo() *MockSubscriptionRepo {
	return &MockSubscriptionRepo{subs: map[string]*model.Subscription{}}
}

func (r *MockSubscriptionRepo) Save(ctx context.Context, tx repository.Tx, s *model.Subscription) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *s
	r.subs[s.ID] = &cp
	return nil
}

func (r *MockSubscriptionRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Subscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.subs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (r *MockSubscriptionRepo) FindLatestByUser(ctx context.Context, tx repository.Tx, userID string) (*model.Subscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var latest *model.Subscription
	for _, s := range r.subs {
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

func (r *MockSubscriptionRepo) ExpireDue(ctx context.Context, tx repository.Tx, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, s := range r.subs {
		if s.Status == model.SubscriptionStatusActive && s.ExpiresAt != nil && s.ExpiresAt.Before(now) {
			s.Status = model.SubscriptionStatusExpired
			s.UpdatedBy = model.ActorSystem
			s.UpdatedAt = now
			n++
		}
	}
	return n, nil
}

func (r *MockSubscriptionRepo) CountByStatus(ctx context.Context, tx repository.Tx) (map[model.SubscriptionStatus]int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := map[model.SubscriptionStatus]int{}
	for _, s := range r.subs {
		out[s.Status]++
	}
	return out, nil
}

// ---- Mock UserRepository ----

type MockUserRepo struct {
	mu    sync.Mutex
	users map[string]*model.User
	roles map[string][]model.Role // userID -> roles

	AssignRoleFunc func(ctx context.Context, tx repository.Tx, userID string, role model.Role, assignedBy *string) error
}

var _ repository.UserRepository = (*MockUserRepo)(nil)

func NewMockUserRepo() *MockUserRepo {
	return &MockUserRepo{users: map[string]*model.User{}, roles: map[string][]model.Role{}}
}

func (r *MockUserRepo) Save(ctx context.Context, tx repository.Tx, u *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *MockUserRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *MockUserRepo) FindByEmail(ctx context.Context, tx repository.Tx, email string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *MockUserRepo) AssignRole(ctx context.Context, tx repository.Tx, userID string, role model.Role, assignedBy *string) error {
	if r.AssignRoleFunc != nil {
		return r.AssignRoleFunc(ctx, tx, userID, role, assignedBy)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.roles[userID] {
		if existing == role {
			return nil
		}
	}
	r.roles[userID] = append(r.roles[userID], role)
	return nil
}

func (r *MockUserRepo) RolesByUser(ctx context.Context, tx repository.Tx, userID string) ([]model.Role, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.Role, len(r.roles[userID]))
	copy(out, r.roles[userID])
	return out, nil
}

// ---- Mock AuditLogRepository ----

type MockAuditRepo struct {
	mu      sync.Mutex
	entries []*model.AuditLog

	AppendFunc func(ctx context.Context, tx repository.Tx, entry *model.AuditLog) error
}

var _ repository.AuditLogRepository = (*MockAuditRepo)(nil)

func NewMockAuditRepo() *MockAuditRepo { return &MockAuditRepo{} }

func (r *MockAuditRepo) Append(ctx context.Context, tx repository.Tx, entry *model.AuditLog) error {
	if r.AppendFunc != nil {
		return r.AppendFunc(ctx, tx, entry)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *entry
	r.entries = append(r.entries, &cp)
	return nil
}

func (r *MockAuditRepo) ListByUser(ctx context.Context, tx repository.Tx, userID string, limit int) ([]*model.AuditLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.AuditLog
	for _, e := range r.entries {
		if e.UserID != nil && *e.UserID == userID {
			cp := *e
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *MockAuditRepo) ListByAction(ctx context.Context, tx repository.Tx, action string, limit int) ([]*model.AuditLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.AuditLog
	for _, e := range r.entries {
		if e.Action == action {
			cp := *e
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *MockAuditRepo) ListRange(ctx context.Context, tx repository.Tx, from, to time.Time, limit int) ([]*model.AuditLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.AuditLog
	for _, e := range r.entries {
		if !e.CreatedAt.Before(from) && !e.CreatedAt.After(to) {
			cp := *e
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *MockAuditRepo) ListRecent(ctx context.Context, tx repository.Tx, limit, offset int) ([]*model.AuditLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*model.AuditLog, 0, len(r.entries))
	for i := len(r.entries) - 1; i >= 0; i-- {
		cp := *r.entries[i]
		out = append(out, &cp)
	}
	return out, nil
}

// Actions returns the recorded action names in append order.
func (r *MockAuditRepo) Actions() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e.Action)
	}
	return out
}

// HasAction reports whether an entry with the action was appended.
func (r *MockAuditRepo) HasAction(action string) bool {
	for _, a := range r.Actions() {
		if a == action {
			return true
		}
	}
	return false
}

// ---- Mock TransactionManager ----

type MockTxManager struct {
	WithTxFunc func(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error
}

var _ repository.TransactionManager = (*MockTxManager)(nil)

func NewMockTxManager() *MockTxManager { return &MockTxManager{} }

// WithTx runs the function immediately with NoTX unless a test overrides it.
func (m *MockTxManager) WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	if m.WithTxFunc != nil {
		return m.WithTxFunc(ctx, txOpt, fn)
	}
	return fn(ctx, repository.NoTX)
}
