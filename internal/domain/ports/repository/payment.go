package repository

import (
	"context"
	"time"

	"scouting-backend/internal/domain/model"
)

// -----------------------------
// Payments (the ledger)
// -----------------------------

type PaymentRepository interface {
	Save(ctx context.Context, tx Tx, p *model.Payment) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.Payment, error)
	FindByTransactionID(ctx context.Context, tx Tx, transactionID string) (*model.Payment, error)
	ListByUser(ctx context.Context, tx Tx, userID string, limit int) ([]*model.Payment, error)

	// UpdateStatusIfPending is the idempotency gate: a single conditional update
	// that moves the row to `status` only while its current status is pending.
	// Returns false when the row was already terminal (the caller lost the race
	// or received a duplicate delivery). The raw provider payload and the
	// completion timestamp are stored in the same statement.
	UpdateStatusIfPending(ctx context.Context, tx Tx, transactionID string, status model.PaymentStatus, gatewayResponse map[string]interface{}, completedAt *time.Time) (bool, error)

	// MarkRefunded moves completed -> refunded (admin path only).
	MarkRefunded(ctx context.Context, tx Tx, transactionID string) (bool, error)

	// SetSubscriptionID links the granted subscription back onto the payment.
	SetSubscriptionID(ctx context.Context, tx Tx, paymentID, subscriptionID string) error

	// ListCompletedUnlinked returns completed payments with no linked
	// subscription; input to the repair pass.
	ListCompletedUnlinked(ctx context.Context, tx Tx, limit int) ([]*model.Payment, error)

	SumByPeriod(ctx context.Context, tx Tx, period string) (int64, error)
}

type InvoiceRepository interface {
	Save(ctx context.Context, tx Tx, inv *model.Invoice) error
	Count(ctx context.Context, tx Tx) (int, error)
	ListByUser(ctx context.Context, tx Tx, userID string, limit int) ([]*model.Invoice, error)

	// NextNumber reserves the next value of the invoice number sequence.
	// Reserved values are never reused, even when the surrounding transaction
	// rolls back, so numbering can gap but never collide.
	NextNumber(ctx context.Context, tx Tx) (int64, error)
}
