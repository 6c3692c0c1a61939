package repository

import (
	"context"
	"time"

	"scouting-backend/internal/domain/model"
)

// AuditLogRepository is the append-only audit sink. Append must be durable;
// entries are never updated or deleted.
type AuditLogRepository interface {
	Append(ctx context.Context, tx Tx, entry *model.AuditLog) error
	ListByUser(ctx context.Context, tx Tx, userID string, limit int) ([]*model.AuditLog, error)
	ListByAction(ctx context.Context, tx Tx, action string, limit int) ([]*model.AuditLog, error)
	ListRange(ctx context.Context, tx Tx, from, to time.Time, limit int) ([]*model.AuditLog, error)
	ListRecent(ctx context.Context, tx Tx, limit, offset int) ([]*model.AuditLog, error)
}
