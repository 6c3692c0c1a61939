package model

import "time"

// AuditLog is an append-only record of every state-changing event in the
// payment/webhook path. Entries are never updated or deleted.
type AuditLog struct {
	ID           string
	UserID       *string // acting user, when known
	Action       string  // e.g. "paydunya_ipn_received", "webhook_duplicate"
	TargetUserID *string
	Metadata     map[string]interface{}
	IPAddress    string
	UserAgent    string
	CreatedAt    time.Time
}
