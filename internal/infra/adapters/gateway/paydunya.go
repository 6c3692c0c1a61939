package gateway

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"scouting-backend/internal/domain"
	"scouting-backend/internal/domain/model"
	"scouting-backend/internal/domain/ports/adapter"
)

var _ adapter.PaymentGateway = (*PayDunyaGateway)(nil)

const payDunyaBaseURL = "https://app.paydunya.com/api/v1"

// PayDunyaGateway verifies PayDunya IPN deliveries and re-queries transactions
// with the PayDunya confirm API using the master key.
type PayDunyaGateway struct {
	secretKey string // webhook HMAC secret
	masterKey string // API key for server-side confirmation
	baseURL   string
	client    *http.Client
}

func NewPayDunyaGateway(secretKey, masterKey string) *PayDunyaGateway {
	return &PayDunyaGateway{
		secretKey: secretKey,
		masterKey: masterKey,
		baseURL:   payDunyaBaseURL,
		// A hung confirm call must fail the verification step, not the request.
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

// SetBaseURL overrides the confirm endpoint base (tests, sandbox).
func (g *PayDunyaGateway) SetBaseURL(u string) { g.baseURL = strings.TrimSuffix(u, "/") }

func (g *PayDunyaGateway) Name() string { return "paydunya" }

func (g *PayDunyaGateway) VerifySignature(body []byte, signature string) bool {
	if signature == "" || g.secretKey == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(g.secretKey))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(strings.ToLower(signature)), []byte(expected))
}

func (g *PayDunyaGateway) ParseNotification(body []byte) (*adapter.Notification, error) {
	var raw map[string]interface{}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, domain.ErrInvalidArgument
	}
	n := &adapter.Notification{
		TransactionID:  stringField(raw, "transaction_id"),
		ProviderStatus: stringField(raw, "status"),
		Currency:       stringField(raw, "currency"),
		CustomerID:     stringField(raw, "customer_id"),
		InvoiceToken:   extractInvoiceToken(raw),
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

// extractInvoiceToken handles the field-name drift across PayDunya payload
// versions: invoice_token, token, then invoice_id.
func extractInvoiceToken(raw map[string]interface{}) string {
	for _, key := range []string{"invoice_token", "token", "invoice_id"} {
		if v := stringField(raw, key); v != "" {
			return v
		}
	}
	return ""
}

func (g *PayDunyaGateway) MapStatus(providerStatus string) model.PaymentStatus {
	switch strings.ToLower(strings.TrimSpace(providerStatus)) {
	case "completed":
		return model.PaymentStatusCompleted
	case "failed":
		return model.PaymentStatusFailed
	case "cancelled":
		return model.PaymentStatusCancelled
	case "pending":
		return model.PaymentStatusPending
	default:
		return model.PaymentStatusPending
	}
}

func (g *PayDunyaGateway) SupportsConfirmation() bool { return true }

// ConfirmTransaction calls GET /checkout-invoice/confirm/{token} with the
// master key. Any transport error, timeout, or non-2xx response is a
// verification failure.
func (g *PayDunyaGateway) ConfirmTransaction(ctx context.Context, invoiceToken string) (*adapter.Confirmation, error) {
	if invoiceToken == "" {
		return nil, domain.ErrInvalidArgument
	}
	url := fmt.Sprintf("%s/checkout-invoice/confirm/%s", g.baseURL, invoiceToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("PAYDUNYA-MASTER-KEY", g.masterKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrVerificationFailed, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: confirm http %d", domain.ErrVerificationFailed, resp.StatusCode)
	}

	var out struct {
		Status  string `json:"status"`
		Invoice struct {
			TotalAmount interface{} `json:"total_amount"`
			Currency    string      `json:"currency"`
		} `json:"invoice"`
	}
	var raw map[string]interface{}
	dec := json.NewDecoder(resp.Body)
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: decode confirm response: %v", domain.ErrVerificationFailed, err)
	}
	b, _ := json.Marshal(raw)
	_ = json.Unmarshal(b, &out)

	conf := &adapter.Confirmation{
		Verified: true,
		Status:   out.Status,
		Currency: out.Invoice.Currency,
		Raw:      raw,
	}
	if amt, ok := toMinorUnits(out.Invoice.TotalAmount); ok {
		conf.Amount = amt
	}
	return conf, nil
}
