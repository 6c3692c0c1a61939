package web

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"scouting-backend/internal/domain"
	"scouting-backend/internal/domain/model"
	"scouting-backend/internal/domain/ports/adapter"
	"scouting-backend/internal/domain/ports/repository"
	"scouting-backend/internal/infra/metrics"
	"scouting-backend/internal/usecase"
)

const maxWebhookBody = 1 << 20 // 1 MiB

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]interface{}{"success": false, "message": msg})
}

func healthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

// ===== Webhooks =====

// webhookHandler acknowledges every well-formed, authentic delivery with 200
// regardless of business outcome; providers retry anything else. Only a bad
// signature (401) or an unparseable payload (400) break that rule.
func webhookHandler(webhookUC usecase.WebhookUseCase, gw adapter.PaymentGateway, sigHeader string, log *zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
		if err != nil {
			writeError(w, http.StatusBadRequest, "unreadable body")
			return
		}

		result, err := webhookUC.Handle(r.Context(), gw, body, r.Header.Get(sigHeader))
		metrics.ObserveWebhookDuration(gw.Name(), time.Since(start).Seconds())
		if err != nil {
			switch {
			case errors.Is(err, domain.ErrInvalidSignature):
				metrics.IncWebhook(gw.Name(), "rejected_signature")
				writeError(w, http.StatusUnauthorized, "invalid signature")
			case errors.Is(err, domain.ErrMissingTransactionID), errors.Is(err, domain.ErrInvalidArgument):
				metrics.IncWebhook(gw.Name(), "rejected_malformed")
				writeError(w, http.StatusBadRequest, "malformed payload")
			default:
				log.Error().Err(err).Str("provider", gw.Name()).Msg("webhook processing failed")
				metrics.IncWebhook(gw.Name(), "error")
				writeError(w, http.StatusInternalServerError, "processing failed")
			}
			return
		}

		metrics.IncWebhook(gw.Name(), result.Outcome)
		if result.Outcome == usecase.OutcomeCompleted {
			metrics.IncPayment(string(model.PaymentStatusCompleted))
			metrics.AddPaymentRevenue(result.Currency, result.Amount)
			metrics.IncSubscriptionActivated(gw.Name())
		}
		writeJSON(w, http.StatusOK, result)
	}
}

// testWebhookHandler signs the posted payload with the configured provider
// secret and feeds it through the real pipeline. Registered only when test
// endpoints are enabled.
func testWebhookHandler(webhookUC usecase.WebhookUseCase, gw adapter.PaymentGateway, secret string, log *zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
		if err != nil {
			writeError(w, http.StatusBadRequest, "unreadable body")
			return
		}
		mac := hmac.New(sha256.New, []byte(secret))
		mac.Write(body)
		sig := hex.EncodeToString(mac.Sum(nil))

		result, err := webhookUC.Handle(r.Context(), gw, body, sig)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		log.Info().Str("provider", gw.Name()).Str("outcome", result.Outcome).Msg("synthesized webhook processed")
		writeJSON(w, http.StatusOK, result)
	}
}

// ===== Payments =====

type paymentInitiateRequest struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Provider string `json:"provider"`
}

type paymentResponse struct {
	TransactionID string     `json:"transaction_id"`
	Amount        int64      `json:"amount"`
	Currency      string     `json:"currency"`
	Status        string     `json:"status"`
	Provider      string     `json:"provider"`
	CreatedAt     time.Time  `json:"created_at"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
}

func toPaymentResponse(p *model.Payment) paymentResponse {
	return paymentResponse{
		TransactionID: p.TransactionID,
		Amount:        p.Amount,
		Currency:      p.Currency,
		Status:        string(p.Status),
		Provider:      p.Provider,
		CreatedAt:     p.CreatedAt,
		CompletedAt:   p.CompletedAt,
	}
}

func paymentInitiateHandler(paymentUC usecase.PaymentUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := claimsFrom(r.Context())

		var req paymentInitiateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		payment, initiation, err := paymentUC.Initiate(r.Context(), claims.UserID(), req.Amount, req.Currency, req.Provider)
		if err != nil {
			if errors.Is(err, domain.ErrInvalidArgument) {
				writeError(w, http.StatusBadRequest, "invalid payment parameters")
				return
			}
			writeError(w, http.StatusInternalServerError, "failed to initiate payment")
			return
		}

		metrics.IncPayment(string(payment.Status))
		writeJSON(w, http.StatusCreated, map[string]interface{}{
			"success":    true,
			"payment":    toPaymentResponse(payment),
			"initiation": initiation,
		})
	}
}

func paymentListHandler(paymentUC usecase.PaymentUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := claimsFrom(r.Context())
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

		payments, err := paymentUC.ListByUser(r.Context(), claims.UserID(), limit)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to list payments")
			return
		}
		out := make([]paymentResponse, 0, len(payments))
		for _, p := range payments {
			out = append(out, toPaymentResponse(p))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func paymentStatusHandler(paymentUC usecase.PaymentUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := claimsFrom(r.Context())
		txnID := chi.URLParam(r, "transactionID")

		payment, err := paymentUC.FindByTransactionID(r.Context(), txnID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				writeError(w, http.StatusNotFound, "payment not found")
				return
			}
			writeError(w, http.StatusInternalServerError, "failed to fetch payment")
			return
		}
		// Owners and admins only; transaction ids are externally visible.
		if payment.UserID != claims.UserID() && !claims.HasAdminRole() {
			writeError(w, http.StatusNotFound, "payment not found")
			return
		}
		writeJSON(w, http.StatusOK, toPaymentResponse(payment))
	}
}

func paymentRefundHandler(paymentUC usecase.PaymentUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := claimsFrom(r.Context())
		txnID := chi.URLParam(r, "transactionID")

		payment, err := paymentUC.Refund(r.Context(), txnID, claims.UserID())
		if err != nil {
			switch {
			case errors.Is(err, domain.ErrNotFound):
				writeError(w, http.StatusNotFound, "payment not found")
			case errors.Is(err, domain.ErrInvalidArgument):
				writeError(w, http.StatusConflict, "only completed payments can be refunded")
			default:
				writeError(w, http.StatusInternalServerError, "refund failed")
			}
			return
		}
		metrics.IncPayment(string(payment.Status))
		writeJSON(w, http.StatusOK, toPaymentResponse(payment))
	}
}

func invoiceListHandler(paymentUC usecase.PaymentUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := claimsFrom(r.Context())
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

		invoices, err := paymentUC.ListInvoices(r.Context(), claims.UserID(), limit)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to list invoices")
			return
		}
		type invoiceResponse struct {
			InvoiceNumber string     `json:"invoice_number"`
			Amount        int64      `json:"amount"`
			Currency      string     `json:"currency"`
			IssuedAt      time.Time  `json:"issued_at"`
			PaidAt        *time.Time `json:"paid_at,omitempty"`
		}
		out := make([]invoiceResponse, 0, len(invoices))
		for _, inv := range invoices {
			out = append(out, invoiceResponse{
				InvoiceNumber: inv.InvoiceNumber,
				Amount:        inv.Amount,
				Currency:      inv.Currency,
				IssuedAt:      inv.IssuedAt,
				PaidAt:        inv.PaidAt,
			})
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func revenueHandler(paymentUC usecase.PaymentUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		period := r.URL.Query().Get("period")
		if period == "" {
			period = "month"
		}
		total, err := paymentUC.SumByPeriod(r.Context(), period)
		if err != nil {
			if errors.Is(err, domain.ErrInvalidArgument) {
				writeError(w, http.StatusBadRequest, "period must be day, week, month or year")
				return
			}
			writeError(w, http.StatusInternalServerError, "failed to compute revenue")
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"period": period, "total": total})
	}
}

// ===== Subscriptions =====

func subscriptionStatusHandler(subUC usecase.SubscriptionUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := claimsFrom(r.Context())

		info, err := subUC.Status(r.Context(), claims.UserID())
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to fetch subscription status")
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"status":     string(info.Status),
			"is_active":  info.IsActive,
			"expires_at": info.ExpiresAt,
		})
	}
}

func subscriptionCancelHandler(subUC usecase.SubscriptionUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := claimsFrom(r.Context())

		sub, err := subUC.EnsureForUser(r.Context(), repository.NoTX, claims.UserID())
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to fetch subscription")
			return
		}
		if sub.Status == model.SubscriptionStatusNone {
			writeError(w, http.StatusConflict, "no subscription to cancel")
			return
		}
		cancelled, err := subUC.Cancel(r.Context(), sub.ID, claims.UserID())
		if err != nil {
			writeError(w, http.StatusInternalServerError, "cancel failed")
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"status":  string(cancelled.Status),
		})
	}
}

func subscriptionCountsHandler(subUC usecase.SubscriptionUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		counts, err := subUC.Counts(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to count subscriptions")
			return
		}
		out := make(map[string]int, len(counts))
		for k, v := range counts {
			out[string(k)] = v
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// ===== Entitlements =====

func entitlementHandler(entUC usecase.EntitlementUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := claimsFrom(r.Context())

		decision, err := entUC.ValidateAccess(r.Context(), claims.UserID())
		if err != nil {
			writeError(w, http.StatusInternalServerError, "entitlement check failed")
			return
		}
		roles := make([]string, 0, len(decision.Roles))
		for _, role := range decision.Roles {
			roles = append(roles, string(role))
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"allowed":             decision.Allowed,
			"reason":              decision.Reason,
			"roles":               roles,
			"subscription_status": string(decision.SubStatus),
		})
	}
}

func capabilityHandler(entUC usecase.EntitlementUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := claimsFrom(r.Context())
		capability := chi.URLParam(r, "capability")

		allowed, err := entUC.CanUseCapability(r.Context(), claims.UserID(), capability)
		if err != nil {
			if errors.Is(err, domain.ErrInvalidArgument) {
				writeError(w, http.StatusBadRequest, "unknown capability")
				return
			}
			writeError(w, http.StatusInternalServerError, "entitlement check failed")
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"capability": capability,
			"allowed":    allowed,
		})
	}
}

// ===== Audit =====

// auditQueryHandler serves the admin audit queries: by user, by action, by
// time range, or most recent first when no filter is given.
func auditQueryHandler(auditUC usecase.AuditUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		limit, _ := strconv.Atoi(q.Get("limit"))

		var (
			entries []*model.AuditLog
			err     error
		)
		switch {
		case q.Get("user_id") != "":
			entries, err = auditUC.ListByUser(r.Context(), q.Get("user_id"), limit)
		case q.Get("action") != "":
			entries, err = auditUC.ListByAction(r.Context(), q.Get("action"), limit)
		case q.Get("from") != "" && q.Get("to") != "":
			var from, to time.Time
			if from, err = time.Parse(time.RFC3339, q.Get("from")); err != nil {
				writeError(w, http.StatusBadRequest, "from must be RFC3339")
				return
			}
			if to, err = time.Parse(time.RFC3339, q.Get("to")); err != nil {
				writeError(w, http.StatusBadRequest, "to must be RFC3339")
				return
			}
			entries, err = auditUC.ListRange(r.Context(), from, to, limit)
		default:
			offset, _ := strconv.Atoi(q.Get("offset"))
			entries, err = auditUC.ListRecent(r.Context(), limit, offset)
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to query audit trail")
			return
		}

		type auditResponse struct {
			ID           string                 `json:"id"`
			UserID       *string                `json:"user_id,omitempty"`
			Action       string                 `json:"action"`
			TargetUserID *string                `json:"target_user_id,omitempty"`
			Metadata     map[string]interface{} `json:"metadata,omitempty"`
			IPAddress    string                 `json:"ip_address,omitempty"`
			CreatedAt    time.Time              `json:"created_at"`
		}
		out := make([]auditResponse, 0, len(entries))
		for _, e := range entries {
			out = append(out, auditResponse{
				ID:           e.ID,
				UserID:       e.UserID,
				Action:       e.Action,
				TargetUserID: e.TargetUserID,
				Metadata:     e.Metadata,
				IPAddress:    e.IPAddress,
				CreatedAt:    e.CreatedAt,
			})
		}
		writeJSON(w, http.StatusOK, out)
	}
}
