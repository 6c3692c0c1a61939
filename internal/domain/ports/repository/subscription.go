package repository

import (
	"context"
	"time"

	"scouting-backend/internal/domain/model"
)

// SubscriptionRepository is the port for user subscriptions. History is kept by
// row insertion; FindLatestByUser returns the most recently created row.
type SubscriptionRepository interface {
	Save(ctx context.Context, tx Tx, s *model.Subscription) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.Subscription, error)
	FindLatestByUser(ctx context.Context, tx Tx, userID string) (*model.Subscription, error)

	// ExpireDue transitions every active row whose expires_at lies before `now`
	// to expired, tagged updated_by=system, in one conditional statement. The
	// snapshot `now` is taken once per sweep run so rows activated after the
	// sweep started are untouched. Returns the number of rows transitioned.
	ExpireDue(ctx context.Context, tx Tx, now time.Time) (int64, error)

	CountByStatus(ctx context.Context, tx Tx) (map[model.SubscriptionStatus]int, error)
}
