package adapter

import (
	"context"

	"scouting-backend/internal/domain/model"
)

// Notification is the provider-independent view of one webhook delivery.
type Notification struct {
	TransactionID  string
	ProviderStatus string
	Amount         int64
	Currency       string
	CustomerID     string
	InvoiceToken   string // confirmation token, for providers that support re-query
	Raw            map[string]interface{}
}

// Confirmation is the result of re-querying a transaction directly with the
// provider, independent of what the webhook body claims.
type Confirmation struct {
	Verified bool
	Status   string // provider vocabulary, mapped by the adapter afterwards
	Amount   int64
	Currency string
	Raw      map[string]interface{}
}

// PaymentGateway is the hex port for payment providers. Implementations are
// stateless: they verify authenticity and translate provider vocabulary.
type PaymentGateway interface {
	Name() string

	// VerifySignature checks the HMAC signature header against the raw body.
	// Constant-time comparison; a mismatch must reject before any state mutation.
	VerifySignature(body []byte, signature string) bool

	// ParseNotification extracts the canonical notification fields from a raw
	// webhook body. Returns domain.ErrMissingTransactionID when the payload
	// carries no transaction identity.
	ParseNotification(body []byte) (*Notification, error)

	// MapStatus translates the provider status vocabulary into the canonical
	// one. Unknown statuses map to pending, never to completed or failed.
	MapStatus(providerStatus string) model.PaymentStatus

	// SupportsConfirmation reports whether ConfirmTransaction is available.
	SupportsConfirmation() bool

	// ConfirmTransaction re-queries the transaction state with the provider
	// using the invoice/confirmation token. Implementations must apply their
	// own request timeout; a timeout is a verification failure, not a success.
	ConfirmTransaction(ctx context.Context, invoiceToken string) (*Confirmation, error)
}
