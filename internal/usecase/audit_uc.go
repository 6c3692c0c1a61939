// File: internal/usecase/audit_uc.go
package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"scouting-backend/internal/domain"
	"scouting-backend/internal/domain/model"
	"scouting-backend/internal/domain/ports/repository"
)

// Compile-time check
var _ AuditUseCase = (*auditUC)(nil)

type AuditUseCase interface {
	// Record appends one entry. Errors are returned but callers on hot paths
	// typically log and continue; the audit trail is best-effort observability,
	// not a transaction participant unless the caller passes its tx.
	Record(ctx context.Context, entry *model.AuditLog) error

	ListByUser(ctx context.Context, userID string, limit int) ([]*model.AuditLog, error)
	ListByAction(ctx context.Context, action string, limit int) ([]*model.AuditLog, error)
	ListRange(ctx context.Context, from, to time.Time, limit int) ([]*model.AuditLog, error)
	ListRecent(ctx context.Context, limit, offset int) ([]*model.AuditLog, error)
}

type auditUC struct {
	audit repository.AuditLogRepository
	log   *zerolog.Logger
	now   func() time.Time
}

func NewAuditUseCase(audit repository.AuditLogRepository, logger *zerolog.Logger) *auditUC {
	ucLog := logger.With().Str("component", "AuditUC").Logger()
	return &auditUC{audit: audit, log: &ucLog, now: time.Now}
}

func (u *auditUC) Record(ctx context.Context, entry *model.AuditLog) error {
	if entry == nil || entry.Action == "" {
		return domain.ErrInvalidArgument
	}
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = u.now()
	}
	return u.audit.Append(ctx, repository.NoTX, entry)
}

func (u *auditUC) ListByUser(ctx context.Context, userID string, limit int) ([]*model.AuditLog, error) {
	if userID == "" {
		return nil, domain.ErrInvalidArgument
	}
	return u.audit.ListByUser(ctx, repository.NoTX, userID, clampLimit(limit))
}

func (u *auditUC) ListByAction(ctx context.Context, action string, limit int) ([]*model.AuditLog, error) {
	if action == "" {
		return nil, domain.ErrInvalidArgument
	}
	return u.audit.ListByAction(ctx, repository.NoTX, action, clampLimit(limit))
}

func (u *auditUC) ListRange(ctx context.Context, from, to time.Time, limit int) ([]*model.AuditLog, error) {
	if to.Before(from) {
		return nil, domain.ErrInvalidArgument
	}
	return u.audit.ListRange(ctx, repository.NoTX, from, to, clampLimit(limit))
}

func (u *auditUC) ListRecent(ctx context.Context, limit, offset int) ([]*model.AuditLog, error) {
	if offset < 0 {
		offset = 0
	}
	return u.audit.ListRecent(ctx, repository.NoTX, clampLimit(limit), offset)
}

func clampLimit(limit int) int {
	if limit <= 0 || limit > 500 {
		return 100
	}
	return limit
}
