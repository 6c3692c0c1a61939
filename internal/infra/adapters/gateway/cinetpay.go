package gateway

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"

	"scouting-backend/internal/domain"
	"scouting-backend/internal/domain/model"
	"scouting-backend/internal/domain/ports/adapter"
)

var _ adapter.PaymentGateway = (*CinetPayGateway)(nil)

// CinetPayGateway verifies and translates CinetPay webhook notifications.
// CinetPay offers no server-side confirmation endpoint in this integration, so
// the signed webhook body is the source of truth.
type CinetPayGateway struct {
	secretKey string
}

func NewCinetPayGateway(secretKey string) *CinetPayGateway {
	return &CinetPayGateway{secretKey: secretKey}
}

func (g *CinetPayGateway) Name() string { return "cinetpay" }

// VerifySignature checks the x-cinetpay-signature header: HMAC-SHA256 over the
// raw JSON body, hex encoded.
func (g *CinetPayGateway) VerifySignature(body []byte, signature string) bool {
	if signature == "" || g.secretKey == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(g.secretKey))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(strings.ToLower(signature)), []byte(expected))
}

func (g *CinetPayGateway) ParseNotification(body []byte) (*adapter.Notification, error) {
	var raw map[string]interface{}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, domain.ErrInvalidArgument
	}
	n := &adapter.Notification{
		TransactionID:  stringField(raw, "transaction_id"),
		ProviderStatus: stringField(raw, "status"),
		Currency:       stringField(raw, "currency"),
		CustomerID:     stringField(raw, "customer_id"),
		Raw:            raw,
	}
	if n.TransactionID == "" {
		return nil, domain.ErrMissingTransactionID
	}
	if amt, ok := amountField(raw, "amount"); ok {
		n.Amount = amt
	}
	return n, nil
}

// MapStatus is the fixed CinetPay lookup table. Anything unknown maps to
// pending so an unrecognized status can neither grant nor deny access.
func (g *CinetPayGateway) MapStatus(providerStatus string) model.PaymentStatus {
	switch strings.ToUpper(strings.TrimSpace(providerStatus)) {
	case "ACCEPTED":
		return model.PaymentStatusCompleted
	case "REFUSED":
		return model.PaymentStatusFailed
	case "CANCELLED":
		return model.PaymentStatusCancelled
	case "PENDING", "WAITING_FOR_CUSTOMER":
		return model.PaymentStatusPending
	default:
		return model.PaymentStatusPending
	}
}

func (g *CinetPayGateway) SupportsConfirmation() bool { return false }

func (g *CinetPayGateway) ConfirmTransaction(ctx context.Context, invoiceToken string) (*adapter.Confirmation, error) {
	return nil, domain.ErrConfirmNotSupported
}
