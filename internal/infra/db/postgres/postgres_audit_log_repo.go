package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"scouting-backend/internal/domain"
	"scouting-backend/internal/domain/model"
	"scouting-backend/internal/domain/ports/repository"
)

var _ repository.AuditLogRepository = (*auditLogRepo)(nil)

const auditColumns = `id, user_id, action, target_user_id, metadata, ip_address, user_agent, created_at`

// auditLogRepo is append-only; there is deliberately no update or delete.
type auditLogRepo struct{ pool *pgxpool.Pool }

func NewAuditLogRepo(pool *pgxpool.Pool) *auditLogRepo {
	return &auditLogRepo{pool: pool}
}

func (r *auditLogRepo) Append(ctx context.Context, tx repository.Tx, entry *model.AuditLog) error {
	const q = `
INSERT INTO audit_logs (id, user_id, action, target_user_id, metadata, ip_address, user_agent, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8);`

	_, err := execSQL(ctx, r.pool, tx, q, entry.ID, entry.UserID, entry.Action, entry.TargetUserID, entry.Metadata, entry.IPAddress, entry.UserAgent, entry.CreatedAt)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *auditLogRepo) ListByUser(ctx context.Context, tx repository.Tx, userID string, limit int) ([]*model.AuditLog, error) {
	const q = `SELECT ` + auditColumns + ` FROM audit_logs WHERE user_id=$1 ORDER BY created_at DESC LIMIT $2;`
	return r.list(ctx, tx, q, userID, limit)
}

func (r *auditLogRepo) ListByAction(ctx context.Context, tx repository.Tx, action string, limit int) ([]*model.AuditLog, error) {
	const q = `SELECT ` + auditColumns + ` FROM audit_logs WHERE action=$1 ORDER BY created_at DESC LIMIT $2;`
	return r.list(ctx, tx, q, action, limit)
}

func (r *auditLogRepo) ListRange(ctx context.Context, tx repository.Tx, from, to time.Time, limit int) ([]*model.AuditLog, error) {
	const q = `SELECT ` + auditColumns + ` FROM audit_logs WHERE created_at BETWEEN $1 AND $2 ORDER BY created_at DESC LIMIT $3;`
	return r.list(ctx, tx, q, from, to, limit)
}

func (r *auditLogRepo) ListRecent(ctx context.Context, tx repository.Tx, limit, offset int) ([]*model.AuditLog, error) {
	const q = `SELECT ` + auditColumns + ` FROM audit_logs ORDER BY created_at DESC LIMIT $1 OFFSET $2;`
	return r.list(ctx, tx, q, limit, offset)
}

func (r *auditLogRepo) list(ctx context.Context, tx repository.Tx, q string, args ...interface{}) ([]*model.AuditLog, error) {
	rows, err := queryRows(ctx, r.pool, tx, q, args...)
	if err != nil {
		switch err {
		case domain.ErrInvalidArgument, domain.ErrInvalidExecContext:
			return nil, err
		default:
			return nil, domain.ErrOperationFailed
		}
	}
	defer rows.Close()
	return collectAuditLogs(rows)
}

func collectAuditLogs(rows pgx.Rows) ([]*model.AuditLog, error) {
	var out []*model.AuditLog
	for rows.Next() {
		e := new(model.AuditLog)
		if err := rows.Scan(&e.ID, &e.UserID, &e.Action, &e.TargetUserID, &e.Metadata, &e.IPAddress, &e.UserAgent, &e.CreatedAt); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, e)
	}
	return out, nil
}
