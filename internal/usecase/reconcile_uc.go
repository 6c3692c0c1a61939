// File: internal/usecase/reconcile_uc.go
package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"scouting-backend/internal/domain/model"
	"scouting-backend/internal/domain/ports/repository"
)

// Compile-time check
var _ ReconcileUseCase = (*reconcileUC)(nil)

// ReconcileUseCase is the repair pass for payments that settled but never got
// their grant: a crash between the ledger update and the subscription commit
// leaves a completed payment with no linked subscription. The pass replays the
// grant for such rows.
type ReconcileUseCase interface {
	// RepairUnlinked scans up to `limit` completed payments without a linked
	// subscription and applies the missing grant. Returns the number repaired.
	RepairUnlinked(ctx context.Context, limit int) (int, error)
}

type reconcileUC struct {
	payments repository.PaymentRepository
	invoices repository.InvoiceRepository
	users    repository.UserRepository
	audit    repository.AuditLogRepository
	subs     SubscriptionUseCase
	txm      repository.TransactionManager
	log      *zerolog.Logger
	now      func() time.Time
}

func NewReconcileUseCase(
	payments repository.PaymentRepository,
	invoices repository.InvoiceRepository,
	users repository.UserRepository,
	audit repository.AuditLogRepository,
	subs SubscriptionUseCase,
	txm repository.TransactionManager,
	logger *zerolog.Logger,
) *reconcileUC {
	ucLog := logger.With().Str("component", "ReconcileUC").Logger()
	return &reconcileUC{
		payments: payments,
		invoices: invoices,
		users:    users,
		audit:    audit,
		subs:     subs,
		txm:      txm,
		log:      &ucLog,
		now:      time.Now,
	}
}

func (u *reconcileUC) RepairUnlinked(ctx context.Context, limit int) (int, error) {
	if limit <= 0 {
		limit = 50
	}
	stranded, err := u.payments.ListCompletedUnlinked(ctx, repository.NoTX, limit)
	if err != nil {
		return 0, err
	}

	repaired := 0
	for _, p := range stranded {
		if err := u.repairOne(ctx, p); err != nil {
			// Keep going; a single bad row must not stall the whole pass.
			u.log.Error().Err(err).Str("transaction_id", p.TransactionID).Msg("repair failed")
			continue
		}
		repaired++
	}
	if repaired > 0 {
		u.log.Info().Int("repaired", repaired).Int("scanned", len(stranded)).Msg("repair pass applied grants")
	}
	return repaired, nil
}

func (u *reconcileUC) repairOne(ctx context.Context, p *model.Payment) error {
	return u.txm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		sub, err := u.subs.EnsureForUser(ctx, tx, p.UserID)
		if err != nil {
			return err
		}
		sub, err = u.subs.Activate(ctx, tx, sub.ID, model.DefaultDurationDays, model.ActorSystem)
		if err != nil {
			return err
		}
		if err := u.users.AssignRole(ctx, tx, p.UserID, model.RoleSubscriber, nil); err != nil {
			return err
		}
		seq, err := u.invoices.NextNumber(ctx, tx)
		if err != nil {
			return err
		}
		now := u.now()
		inv := &model.Invoice{
			ID:            uuid.NewString(),
			UserID:        p.UserID,
			PaymentID:     p.ID,
			InvoiceNumber: fmt.Sprintf("INV-%d-%06d", now.Year(), seq),
			Amount:        p.Amount,
			Currency:      p.Currency,
			IssuedAt:      now,
			PaidAt:        p.CompletedAt,
		}
		if err := u.invoices.Save(ctx, tx, inv); err != nil {
			return err
		}
		if err := u.payments.SetSubscriptionID(ctx, tx, p.ID, sub.ID); err != nil {
			return err
		}
		entry := &model.AuditLog{
			ID:     uuid.NewString(),
			UserID: &p.UserID,
			Action: "payment_repaired",
			Metadata: map[string]interface{}{
				"transaction_id":  p.TransactionID,
				"subscription_id": sub.ID,
			},
			CreatedAt: now,
		}
		return u.audit.Append(ctx, tx, entry)
	})
}
