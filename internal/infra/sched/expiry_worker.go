package sched

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"scouting-backend/internal/infra/metrics"
	"scouting-backend/internal/usecase"
)

// ExpiryWorker periodically sweeps overdue subscriptions via the use case.
// Activations are event driven; only expiry needs a clock.
type ExpiryWorker struct {
	interval time.Duration
	subUC    usecase.SubscriptionUseCase
	log      *zerolog.Logger
}

func NewExpiryWorker(interval time.Duration, subUC usecase.SubscriptionUseCase, logger *zerolog.Logger) *ExpiryWorker {
	exprLog := logger.With().Str("component", "ExpiryWorker").Logger()
	return &ExpiryWorker{
		interval: interval,
		subUC:    subUC,
		log:      &exprLog,
	}
}

func (w *ExpiryWorker) Run(ctx context.Context) error {
	w.log.Info().Dur("interval", w.interval).Msg("Starting expiry worker")
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Stopping expiry worker")
			return ctx.Err()
		case <-ticker.C:
			n, err := w.subUC.ExpireDue(ctx)
			if err != nil {
				w.log.Error().Err(err).Msg("expiry sweep error")
				continue
			}
			if n > 0 {
				metrics.IncSubscriptionsExpired(n)
				w.log.Info().Int64("count", n).Msg("subscriptions expired")
			}
		}
	}
}
