package model

import "time"

type SubscriptionStatus string

const (
	SubscriptionStatusNone      SubscriptionStatus = "none"
	SubscriptionStatusActive    SubscriptionStatus = "active"
	SubscriptionStatusExpired   SubscriptionStatus = "expired"
	SubscriptionStatusCancelled SubscriptionStatus = "cancelled"
)

// Actor provenance tags recorded in UpdatedBy.
const (
	ActorSystem = "system"
	ActorAdmin  = "admin"
	ActorUser   = "user"
)

// DefaultDurationDays is the access window granted per completed payment.
const DefaultDurationDays = 30

// Subscription is the access-granting record. History is kept by inserting new
// rows; readers always take the most recently created row per user.
type Subscription struct {
	ID        string
	UserID    string
	Status    SubscriptionStatus
	StartsAt  *time.Time
	ExpiresAt *time.Time
	AutoRenew bool
	UpdatedBy string // webhook name, "admin", "user", or "system"
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsActive recomputes the access decision at read time; the stored status alone
// is not trusted because the expiry sweep runs on an interval.
func (s *Subscription) IsActive(now time.Time) bool {
	return s.Status == SubscriptionStatusActive && s.ExpiresAt != nil && s.ExpiresAt.After(now)
}
