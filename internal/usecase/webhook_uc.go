// File: internal/usecase/webhook_uc.go
package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"scouting-backend/internal/domain"
	"scouting-backend/internal/domain/model"
	"scouting-backend/internal/domain/ports/adapter"
	"scouting-backend/internal/domain/ports/repository"
)

// Compile-time check
var _ WebhookUseCase = (*webhookUC)(nil)

// amountTolerancePct is the allowed drift between the ledger amount and the
// provider-reported amount, to absorb rounding on the provider side.
const amountTolerancePct = 0.01

// WebhookResult is the acknowledgement returned to the provider. Outcome is a
// stable label for metrics and logs; Success=false acknowledges receipt while
// signalling the notification was not applied.
type WebhookResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Outcome string `json:"-"`

	// Settled amount, populated on a completed outcome for instrumentation.
	Amount   int64  `json:"-"`
	Currency string `json:"-"`
}

// Outcome labels.
const (
	OutcomeCompleted          = "completed"
	OutcomeFailed             = "failed"
	OutcomeCancelled          = "cancelled"
	OutcomePending            = "pending"
	OutcomeDuplicate          = "duplicate"
	OutcomeNotFound           = "not_found"
	OutcomeVerificationFailed = "verification_failed"
	OutcomeAmountMismatch     = "amount_mismatch"
)

// TaskRunner dispatches fire-and-forget work; failures must never affect the
// webhook acknowledgement.
type TaskRunner interface {
	Submit(task func(ctx context.Context) error) error
}

type WebhookUseCase interface {
	// Handle runs the shared notification protocol for one delivery. It returns
	// a non-nil result for every acknowledged delivery; an error is returned only
	// for the two non-200 conditions: domain.ErrInvalidSignature and a malformed
	// payload (domain.ErrInvalidArgument / domain.ErrMissingTransactionID).
	Handle(ctx context.Context, gw adapter.PaymentGateway, body []byte, signature string) (*WebhookResult, error)
}

type webhookUC struct {
	payments repository.PaymentRepository
	invoices repository.InvoiceRepository
	users    repository.UserRepository
	audit    repository.AuditLogRepository
	subs     SubscriptionUseCase
	txm      repository.TransactionManager
	runner   TaskRunner
	notifier adapter.NotificationSender
	log      *zerolog.Logger
	now      func() time.Time
}

func NewWebhookUseCase(
	payments repository.PaymentRepository,
	invoices repository.InvoiceRepository,
	users repository.UserRepository,
	audit repository.AuditLogRepository,
	subs SubscriptionUseCase,
	txm repository.TransactionManager,
	runner TaskRunner,
	notifier adapter.NotificationSender,
	logger *zerolog.Logger,
) *webhookUC {
	ucLog := logger.With().Str("component", "WebhookUC").Logger()
	return &webhookUC{
		payments: payments,
		invoices: invoices,
		users:    users,
		audit:    audit,
		subs:     subs,
		txm:      txm,
		runner:   runner,
		notifier: notifier,
		log:      &ucLog,
		now:      time.Now,
	}
}

// SetClock overrides the time source for tests.
func (u *webhookUC) SetClock(now func() time.Time) { u.now = now }

func (u *webhookUC) Handle(ctx context.Context, gw adapter.PaymentGateway, body []byte, signature string) (*WebhookResult, error) {
	log := u.log.With().Str("provider", gw.Name()).Logger()

	// Receipt is recorded before any validation; a delivery rejected further
	// down can still be replayed by hand from the stored payload.
	u.appendAudit(ctx, repository.NoTX, nil, gw.Name()+"_ipn_received", map[string]interface{}{
		"provider":      gw.Name(),
		"payload":       string(body),
		"has_signature": signature != "",
	})

	// Signature first, before the body is even parsed.
	if !gw.VerifySignature(body, signature) {
		u.appendAudit(ctx, repository.NoTX, nil, "webhook_rejected", map[string]interface{}{
			"provider": gw.Name(),
			"reason":   "invalid_signature",
		})
		log.Warn().Msg("webhook signature verification failed")
		return nil, domain.ErrInvalidSignature
	}

	n, err := gw.ParseNotification(body)
	if err != nil {
		log.Warn().Err(err).Msg("webhook payload rejected")
		return nil, err
	}
	log = log.With().Str("transaction_id", n.TransactionID).Logger()

	payment, err := u.payments.FindByTransactionID(ctx, repository.NoTX, n.TransactionID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			u.appendAudit(ctx, repository.NoTX, nil, "webhook_unknown_transaction", map[string]interface{}{
				"provider":       gw.Name(),
				"transaction_id": n.TransactionID,
			})
			log.Warn().Msg("webhook for unknown transaction")
			return &WebhookResult{Success: false, Message: "payment not found", Outcome: OutcomeNotFound}, nil
		}
		return nil, err
	}

	newStatus := gw.MapStatus(n.ProviderStatus)

	// Read-side duplicate short-circuit: a terminal row is never transitioned
	// again, whatever the delivery says.
	if payment.Status.IsTerminal() {
		u.appendAudit(ctx, repository.NoTX, &payment.UserID, "webhook_duplicate", map[string]interface{}{
			"provider":       gw.Name(),
			"transaction_id": n.TransactionID,
			"current_status": string(payment.Status),
		})
		log.Info().Str("status", string(payment.Status)).Msg("duplicate webhook delivery ignored")
		return &WebhookResult{Success: true, Message: "already processed", Outcome: OutcomeDuplicate}, nil
	}

	// A pending provider status carries no transition; acknowledge and wait for
	// the next delivery.
	if newStatus == model.PaymentStatusPending {
		log.Info().Str("provider_status", n.ProviderStatus).Msg("non-final webhook status, no transition")
		return &WebhookResult{Success: true, Message: "status noted", Outcome: OutcomePending}, nil
	}

	// Server-side confirmation, where the provider supports it, is the source of
	// truth for a completion claim.
	reportedAmount := n.Amount
	reportedCurrency := n.Currency
	if newStatus == model.PaymentStatusCompleted && gw.SupportsConfirmation() {
		conf, err := gw.ConfirmTransaction(ctx, n.InvoiceToken)
		if err != nil {
			u.appendAudit(ctx, repository.NoTX, &payment.UserID, "webhook_verification_failed", map[string]interface{}{
				"provider":       gw.Name(),
				"transaction_id": n.TransactionID,
				"error":          err.Error(),
			})
			log.Error().Err(err).Msg("server-side confirmation failed")
			return &WebhookResult{Success: false, Message: "verification failed", Outcome: OutcomeVerificationFailed}, nil
		}
		confirmed := gw.MapStatus(conf.Status)
		if confirmed != model.PaymentStatusCompleted {
			// The signed webhook claimed completion but the provider's own API
			// disagrees; the API wins.
			newStatus = confirmed
			log.Warn().Str("webhook_status", n.ProviderStatus).Str("confirmed_status", conf.Status).
				Msg("confirmation contradicts webhook status")
			if newStatus == model.PaymentStatusPending {
				return &WebhookResult{Success: true, Message: "status noted", Outcome: OutcomePending}, nil
			}
		}
		if conf.Amount > 0 {
			reportedAmount = conf.Amount
		}
		if conf.Currency != "" {
			reportedCurrency = conf.Currency
		}
	}

	// Amount validation guards completions only; a failed or cancelled payment
	// never granted anything to mis-grant.
	if newStatus == model.PaymentStatusCompleted {
		if err := validateAmount(payment, reportedAmount, reportedCurrency); err != nil {
			u.appendAudit(ctx, repository.NoTX, &payment.UserID, "webhook_amount_mismatch", map[string]interface{}{
				"provider":        gw.Name(),
				"transaction_id":  n.TransactionID,
				"expected_amount": payment.Amount,
				"reported_amount": reportedAmount,
				"expected_ccy":    payment.Currency,
				"reported_ccy":    reportedCurrency,
			})
			log.Error().Int64("expected", payment.Amount).Int64("reported", reportedAmount).
				Msg("amount validation failed; payment left pending for review")
			return &WebhookResult{Success: false, Message: "amount mismatch", Outcome: OutcomeAmountMismatch}, nil
		}
	}

	res, notifyUserID, err := u.commit(ctx, gw.Name(), payment, newStatus, n.Raw)
	if err != nil {
		return nil, err
	}
	if notifyUserID != "" {
		u.enqueueActivationNotice(notifyUserID)
	}
	log.Info().Str("outcome", res.Outcome).Msg("webhook processed")
	return res, nil
}

// commit applies the transition and, for completions, the subscription grant in
// one transaction. The conditional update runs first: of two concurrent
// deliveries for the same transaction exactly one sees rowsAffected=1, the
// other takes the duplicate path.
func (u *webhookUC) commit(ctx context.Context, provider string, payment *model.Payment, newStatus model.PaymentStatus, raw map[string]interface{}) (*WebhookResult, string, error) {
	var (
		res          *WebhookResult
		notifyUserID string
	)
	err := u.txm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		now := u.now()
		var completedAt *time.Time
		if newStatus == model.PaymentStatusCompleted {
			completedAt = &now
		}

		updated, err := u.payments.UpdateStatusIfPending(ctx, tx, payment.TransactionID, newStatus, raw, completedAt)
		if err != nil {
			return err
		}
		if !updated {
			u.appendAudit(ctx, tx, &payment.UserID, "webhook_duplicate", map[string]interface{}{
				"provider":       provider,
				"transaction_id": payment.TransactionID,
			})
			res = &WebhookResult{Success: true, Message: "already processed", Outcome: OutcomeDuplicate}
			return nil
		}

		switch newStatus {
		case model.PaymentStatusCompleted:
			sub, err := u.subs.EnsureForUser(ctx, tx, payment.UserID)
			if err != nil {
				return err
			}
			sub, err = u.subs.Activate(ctx, tx, sub.ID, model.DefaultDurationDays, provider)
			if err != nil {
				return err
			}
			if err := u.users.AssignRole(ctx, tx, payment.UserID, model.RoleSubscriber, nil); err != nil {
				return err
			}
			if err := u.issueInvoice(ctx, tx, payment, now); err != nil {
				return err
			}
			if err := u.payments.SetSubscriptionID(ctx, tx, payment.ID, sub.ID); err != nil {
				return err
			}
			u.appendAudit(ctx, tx, &payment.UserID, "payment_completed", map[string]interface{}{
				"provider":        provider,
				"transaction_id":  payment.TransactionID,
				"amount":          payment.Amount,
				"currency":        payment.Currency,
				"subscription_id": sub.ID,
				"expires_at":      sub.ExpiresAt,
			})
			notifyUserID = payment.UserID
			res = &WebhookResult{
				Success: true, Message: "payment completed", Outcome: OutcomeCompleted,
				Amount: payment.Amount, Currency: payment.Currency,
			}

		case model.PaymentStatusFailed:
			u.appendAudit(ctx, tx, &payment.UserID, "payment_failed", map[string]interface{}{
				"provider":       provider,
				"transaction_id": payment.TransactionID,
			})
			res = &WebhookResult{Success: true, Message: "payment failed", Outcome: OutcomeFailed}

		case model.PaymentStatusCancelled:
			u.appendAudit(ctx, tx, &payment.UserID, "payment_cancelled", map[string]interface{}{
				"provider":       provider,
				"transaction_id": payment.TransactionID,
			})
			res = &WebhookResult{Success: true, Message: "payment cancelled", Outcome: OutcomeCancelled}

		default:
			return fmt.Errorf("%w: unexpected transition to %s", domain.ErrOperationFailed, newStatus)
		}
		return nil
	})
	if err != nil {
		return nil, "", err
	}
	return res, notifyUserID, nil
}

func (u *webhookUC) issueInvoice(ctx context.Context, tx repository.Tx, payment *model.Payment, now time.Time) error {
	// The number comes from a dedicated sequence. A COUNT(*) here would let two
	// concurrent grants for different transactions compute the same number and
	// collide on the unique constraint, aborting one of them.
	seq, err := u.invoices.NextNumber(ctx, tx)
	if err != nil {
		return err
	}
	inv := &model.Invoice{
		ID:            uuid.NewString(),
		UserID:        payment.UserID,
		PaymentID:     payment.ID,
		InvoiceNumber: fmt.Sprintf("INV-%d-%06d", now.Year(), seq),
		Amount:        payment.Amount,
		Currency:      payment.Currency,
		IssuedAt:      now,
		PaidAt:        &now,
	}
	return u.invoices.Save(ctx, tx, inv)
}

// enqueueActivationNotice hands the confirmation email to the worker pool.
// A full queue or a send failure only logs; the webhook is already acknowledged.
func (u *webhookUC) enqueueActivationNotice(userID string) {
	if u.runner == nil || u.notifier == nil {
		return
	}
	err := u.runner.Submit(func(ctx context.Context) error {
		user, err := u.users.FindByID(ctx, repository.NoTX, userID)
		if err != nil {
			return err
		}
		status, err := u.subs.Status(ctx, userID)
		if err != nil {
			return err
		}
		var expires time.Time
		if status.ExpiresAt != nil {
			expires = *status.ExpiresAt
		}
		if err := u.notifier.SendSubscriptionActivated(ctx, user.Email, expires); err != nil {
			u.log.Warn().Err(err).Str("user_id", userID).Msg("activation notice failed")
		}
		return nil
	})
	if err != nil {
		u.log.Warn().Err(err).Str("user_id", userID).Msg("activation notice dropped")
	}
}

// validateAmount enforces the tolerance between the ledger and the provider
// report. Currency comparison is case-insensitive; an absent reported amount
// skips the check (some providers omit it on certain channels).
func validateAmount(payment *model.Payment, reportedAmount int64, reportedCurrency string) error {
	if reportedCurrency != "" && !strings.EqualFold(reportedCurrency, payment.Currency) {
		return domain.ErrAmountMismatch
	}
	if reportedAmount <= 0 {
		return nil
	}
	diff := reportedAmount - payment.Amount
	if diff < 0 {
		diff = -diff
	}
	if float64(diff) > float64(payment.Amount)*amountTolerancePct {
		return domain.ErrAmountMismatch
	}
	return nil
}

func (u *webhookUC) appendAudit(ctx context.Context, tx repository.Tx, userID *string, action string, meta map[string]interface{}) {
	entry := &model.AuditLog{
		ID:        uuid.NewString(),
		UserID:    userID,
		Action:    action,
		Metadata:  meta,
		CreatedAt: u.now(),
	}
	if err := u.audit.Append(ctx, tx, entry); err != nil {
		u.log.Error().Err(err).Str("action", action).Msg("audit append failed")
	}
}
