// File: internal/usecase/payment_uc.go
package usecase

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"scouting-backend/internal/domain"
	"scouting-backend/internal/domain/model"
	"scouting-backend/internal/domain/ports/repository"
)

// Compile-time check
var _ PaymentUseCase = (*paymentUC)(nil)

// InitiationData is handed to the frontend to drive the gateway redirect.
type InitiationData struct {
	TransactionID string `json:"transaction_id"`
	Amount        int64  `json:"amount"`
	Currency      string `json:"currency"`
	Provider      string `json:"provider"`
	NotifyURL     string `json:"notify_url"`
	ReturnURL     string `json:"return_url"`
	CancelURL     string `json:"cancel_url"`
}

type PaymentUseCase interface {
	// Initiate creates the pending ledger row before any gateway redirect and
	// returns the redirect configuration.
	Initiate(ctx context.Context, userID string, amount int64, currency, provider string) (*model.Payment, *InitiationData, error)
	FindByTransactionID(ctx context.Context, transactionID string) (*model.Payment, error)
	ListByUser(ctx context.Context, userID string, limit int) ([]*model.Payment, error)
	// Refund is the administrative completed -> refunded transition; it is not
	// reachable from the webhook path.
	Refund(ctx context.Context, transactionID, actor string) (*model.Payment, error)
	ListInvoices(ctx context.Context, userID string, limit int) ([]*model.Invoice, error)
	SumByPeriod(ctx context.Context, period string) (int64, error)
}

type paymentUC struct {
	payments repository.PaymentRepository
	invoices repository.InvoiceRepository
	audit    repository.AuditLogRepository
	log      *zerolog.Logger
	now      func() time.Time

	backendURL  string
	frontendURL string
}

func NewPaymentUseCase(
	payments repository.PaymentRepository,
	invoices repository.InvoiceRepository,
	audit repository.AuditLogRepository,
	backendURL, frontendURL string,
	logger *zerolog.Logger,
) *paymentUC {
	ucLog := logger.With().Str("component", "PaymentUC").Logger()
	return &paymentUC{
		payments:    payments,
		invoices:    invoices,
		audit:       audit,
		log:         &ucLog,
		now:         time.Now,
		backendURL:  backendURL,
		frontendURL: frontendURL,
	}
}

// newTransactionID builds the externally visible ledger identity, unique and
// immutable after creation.
func newTransactionID(now time.Time) string {
	b := make([]byte, 4)
	_, _ = rand.Read(b)
	return fmt.Sprintf("TXN-%d-%s", now.UnixMilli(), hex.EncodeToString(b))
}

func (u *paymentUC) Initiate(ctx context.Context, userID string, amount int64, currency, provider string) (*model.Payment, *InitiationData, error) {
	if userID == "" || amount <= 0 || len(currency) != 3 {
		return nil, nil, domain.ErrInvalidArgument
	}
	switch provider {
	case "cinetpay", "paydunya":
	default:
		return nil, nil, domain.ErrInvalidArgument
	}

	now := u.now()
	p := &model.Payment{
		ID:            uuid.NewString(),
		UserID:        userID,
		TransactionID: newTransactionID(now),
		Amount:        amount,
		Currency:      currency,
		Status:        model.PaymentStatusPending,
		Provider:      provider,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := u.payments.Save(ctx, repository.NoTX, p); err != nil {
		return nil, nil, err
	}

	u.appendAudit(ctx, &p.UserID, "payment_initiated", map[string]interface{}{
		"transaction_id": p.TransactionID,
		"amount":         p.Amount,
		"currency":       p.Currency,
		"provider":       provider,
	})

	data := &InitiationData{
		TransactionID: p.TransactionID,
		Amount:        p.Amount,
		Currency:      p.Currency,
		Provider:      provider,
		NotifyURL:     fmt.Sprintf("%s/api/webhooks/%s", u.backendURL, provider),
		ReturnURL:     fmt.Sprintf("%s/payment/success", u.frontendURL),
		CancelURL:     fmt.Sprintf("%s/payment/cancel", u.frontendURL),
	}
	return p, data, nil
}

func (u *paymentUC) FindByTransactionID(ctx context.Context, transactionID string) (*model.Payment, error) {
	return u.payments.FindByTransactionID(ctx, repository.NoTX, transactionID)
}

func (u *paymentUC) ListByUser(ctx context.Context, userID string, limit int) ([]*model.Payment, error) {
	return u.payments.ListByUser(ctx, repository.NoTX, userID, limit)
}

func (u *paymentUC) Refund(ctx context.Context, transactionID, actor string) (*model.Payment, error) {
	ok, err := u.payments.MarkRefunded(ctx, repository.NoTX, transactionID)
	if err != nil {
		return nil, err
	}
	if !ok {
		// Refund is only legal from completed.
		return nil, domain.ErrInvalidArgument
	}
	p, err := u.payments.FindByTransactionID(ctx, repository.NoTX, transactionID)
	if err != nil {
		return nil, err
	}
	u.appendAudit(ctx, &p.UserID, "payment_refunded", map[string]interface{}{
		"transaction_id": transactionID,
		"actor":          actor,
		"amount":         p.Amount,
	})
	return p, nil
}

func (u *paymentUC) ListInvoices(ctx context.Context, userID string, limit int) ([]*model.Invoice, error) {
	return u.invoices.ListByUser(ctx, repository.NoTX, userID, limit)
}

func (u *paymentUC) SumByPeriod(ctx context.Context, period string) (int64, error) {
	return u.payments.SumByPeriod(ctx, repository.NoTX, period)
}

func (u *paymentUC) appendAudit(ctx context.Context, userID *string, action string, meta map[string]interface{}) {
	entry := &model.AuditLog{
		ID:        uuid.NewString(),
		UserID:    userID,
		Action:    action,
		Metadata:  meta,
		CreatedAt: u.now(),
	}
	if err := u.audit.Append(ctx, repository.NoTX, entry); err != nil {
		u.log.Error().Err(err).Str("action", action).Msg("audit append failed")
	}
}
