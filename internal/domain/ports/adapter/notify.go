package adapter

import (
	"context"
	"time"
)

// NotificationSender delivers user-facing messages. Best-effort: failures are
// logged by callers and never block or roll back a payment commit.
type NotificationSender interface {
	SendSubscriptionActivated(ctx context.Context, email string, expiresAt time.Time) error
}
