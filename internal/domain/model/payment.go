package model

import "time"

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"   // created before redirect; awaiting gateway notification
	PaymentStatusCompleted PaymentStatus = "completed" // settled at provider, subscription granted
	PaymentStatusFailed    PaymentStatus = "failed"    // provider refused the transaction
	PaymentStatusCancelled PaymentStatus = "cancelled" // abandoned/cancelled before settlement
	PaymentStatusRefunded  PaymentStatus = "refunded"  // admin refund of a completed payment
)

// IsTerminal reports whether the webhook path performs no further transition
// from this status. Refunded is reachable from completed only via the admin path.
func (s PaymentStatus) IsTerminal() bool {
	switch s {
	case PaymentStatusCompleted, PaymentStatusFailed, PaymentStatusCancelled, PaymentStatusRefunded:
		return true
	}
	return false
}

// Payment is the ledger record for one attempted transaction. TransactionID is
// generated before the gateway redirect and never changes; rows are never deleted.
type Payment struct {
	ID            string
	UserID        string
	TransactionID string // unique, externally visible (TXN-...)
	Amount        int64  // minor units of Currency
	Currency      string // 3-letter code, e.g. "XOF"
	Status        PaymentStatus
	PaymentMethod string
	Provider      string                 // "cinetpay" | "paydunya"
	GatewayResponse map[string]interface{} // last raw provider payload, kept verbatim for replay
	SubscriptionID  *string                // set if and only if Status == completed
	CreatedAt     time.Time
	UpdatedAt     time.Time
	CompletedAt   *time.Time
}

// Invoice is generated once per completed payment.
type Invoice struct {
	ID            string
	UserID        string
	PaymentID     string
	InvoiceNumber string // INV-<year>-<seq>
	Amount        int64
	Currency      string
	IssuedAt      time.Time
	PaidAt        *time.Time
}
