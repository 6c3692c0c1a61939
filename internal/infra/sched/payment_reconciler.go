package sched

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"scouting-backend/internal/infra/metrics"
	"scouting-backend/internal/usecase"
)

// PaymentReconciler runs the repair pass on an interval: completed payments
// that never received their subscription grant (crash between the ledger
// update and the commit) get the grant replayed.
type PaymentReconciler struct {
	interval  time.Duration
	batchSize int
	recUC     usecase.ReconcileUseCase
	log       *zerolog.Logger
}

func NewPaymentReconciler(interval time.Duration, batchSize int, recUC usecase.ReconcileUseCase, logger *zerolog.Logger) *PaymentReconciler {
	recLog := logger.With().Str("component", "PaymentReconciler").Logger()
	return &PaymentReconciler{
		interval:  interval,
		batchSize: batchSize,
		recUC:     recUC,
		log:       &recLog,
	}
}

func (w *PaymentReconciler) Run(ctx context.Context) error {
	w.log.Info().Dur("interval", w.interval).Msg("Starting payment reconciler")
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Stopping payment reconciler")
			return ctx.Err()
		case <-ticker.C:
			n, err := w.recUC.RepairUnlinked(ctx, w.batchSize)
			if err != nil {
				w.log.Error().Err(err).Msg("repair pass error")
				continue
			}
			if n > 0 {
				metrics.IncPaymentsRepaired(n)
			}
		}
	}
}
