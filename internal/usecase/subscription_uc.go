// File: internal/usecase/subscription_uc.go
package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"scouting-backend/internal/domain"
	"scouting-backend/internal/domain/model"
	"scouting-backend/internal/domain/ports/repository"
)

// Compile-time check
var _ SubscriptionUseCase = (*subscriptionUC)(nil)

// SubscriptionStatusInfo is the read-side view of a user's entitlement window.
type SubscriptionStatusInfo struct {
	Status    model.SubscriptionStatus
	ExpiresAt *time.Time
	IsActive  bool
}

type SubscriptionUseCase interface {
	// EnsureForUser returns the user's most recent subscription row, creating an
	// empty one (status none) when the user has never had a subscription.
	EnsureForUser(ctx context.Context, tx repository.Tx, userID string) (*model.Subscription, error)
	// Activate restarts the access window: starts_at = now, expires_at =
	// now + durationDays. A renewal before expiry discards the remaining time;
	// durations do not stack.
	Activate(ctx context.Context, tx repository.Tx, subscriptionID string, durationDays int, actor string) (*model.Subscription, error)
	// Cancel sets status cancelled and switches auto-renew off.
	Cancel(ctx context.Context, subscriptionID, actor string) (*model.Subscription, error)
	// Status recomputes the entitlement at read time from the latest row.
	Status(ctx context.Context, userID string) (*SubscriptionStatusInfo, error)
	// ExpireDue runs the time-based sweep: every active row whose expiry lies
	// before a single per-run snapshot of now becomes expired.
	ExpireDue(ctx context.Context) (int64, error)
	// Counts groups subscriptions by stored status for the admin dashboard.
	Counts(ctx context.Context) (map[model.SubscriptionStatus]int, error)
}

type subscriptionUC struct {
	subs repository.SubscriptionRepository
	log  *zerolog.Logger
	now  func() time.Time
}

func NewSubscriptionUseCase(subs repository.SubscriptionRepository, logger *zerolog.Logger) *subscriptionUC {
	ucLog := logger.With().Str("component", "SubscriptionUC").Logger()
	return &subscriptionUC{subs: subs, log: &ucLog, now: time.Now}
}

// SetClock overrides the time source; tests simulate expiry without waiting.
func (u *subscriptionUC) SetClock(now func() time.Time) { u.now = now }

func (u *subscriptionUC) EnsureForUser(ctx context.Context, tx repository.Tx, userID string) (*model.Subscription, error) {
	if userID == "" {
		return nil, domain.ErrInvalidArgument
	}
	sub, err := u.subs.FindLatestByUser(ctx, tx, userID)
	if err == nil {
		return sub, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	now := u.now()
	sub = &model.Subscription{
		ID:        uuid.NewString(),
		UserID:    userID,
		Status:    model.SubscriptionStatusNone,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := u.subs.Save(ctx, tx, sub); err != nil {
		return nil, err
	}
	return sub, nil
}

func (u *subscriptionUC) Activate(ctx context.Context, tx repository.Tx, subscriptionID string, durationDays int, actor string) (*model.Subscription, error) {
	if durationDays <= 0 {
		durationDays = model.DefaultDurationDays
	}
	sub, err := u.subs.FindByID(ctx, tx, subscriptionID)
	if err != nil {
		return nil, err
	}
	now := u.now()
	expires := now.Add(time.Duration(durationDays) * 24 * time.Hour)
	sub.Status = model.SubscriptionStatusActive
	sub.StartsAt = &now
	sub.ExpiresAt = &expires
	sub.UpdatedBy = actor
	sub.UpdatedAt = now
	if err := u.subs.Save(ctx, tx, sub); err != nil {
		return nil, err
	}
	u.log.Info().Str("subscription_id", sub.ID).Str("user_id", sub.UserID).
		Time("expires_at", expires).Str("actor", actor).Msg("subscription activated")
	return sub, nil
}

func (u *subscriptionUC) Cancel(ctx context.Context, subscriptionID, actor string) (*model.Subscription, error) {
	sub, err := u.subs.FindByID(ctx, repository.NoTX, subscriptionID)
	if err != nil {
		return nil, err
	}
	sub.Status = model.SubscriptionStatusCancelled
	sub.AutoRenew = false
	sub.UpdatedBy = actor
	sub.UpdatedAt = u.now()
	if err := u.subs.Save(ctx, repository.NoTX, sub); err != nil {
		return nil, err
	}
	u.log.Info().Str("subscription_id", sub.ID).Str("actor", actor).Msg("subscription cancelled")
	return sub, nil
}

func (u *subscriptionUC) Status(ctx context.Context, userID string) (*SubscriptionStatusInfo, error) {
	sub, err := u.subs.FindLatestByUser(ctx, repository.NoTX, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return &SubscriptionStatusInfo{Status: model.SubscriptionStatusNone}, nil
		}
		return nil, err
	}
	return &SubscriptionStatusInfo{
		Status:    sub.Status,
		ExpiresAt: sub.ExpiresAt,
		IsActive:  sub.IsActive(u.now()),
	}, nil
}

func (u *subscriptionUC) ExpireDue(ctx context.Context) (int64, error) {
	return u.subs.ExpireDue(ctx, repository.NoTX, u.now())
}

func (u *subscriptionUC) Counts(ctx context.Context) (map[model.SubscriptionStatus]int, error) {
	return u.subs.CountByStatus(ctx, repository.NoTX)
}
