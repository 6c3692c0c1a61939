package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"scouting-backend/internal/domain"
	"scouting-backend/internal/domain/model"
	"scouting-backend/internal/domain/ports/repository"
)

var _ repository.PaymentRepository = (*paymentRepo)(nil)

const paymentColumns = `id, user_id, transaction_id, amount, currency, status, payment_method, provider, gateway_response, subscription_id, created_at, updated_at, completed_at`

type paymentRepo struct{ pool *pgxpool.Pool }

func NewPaymentRepo(pool *pgxpool.Pool) *paymentRepo {
	return &paymentRepo{pool: pool}
}

func scanPayment(row pgx.Row) (*model.Payment, error) {
	p := &model.Payment{}
	if err := row.Scan(&p.ID, &p.UserID, &p.TransactionID, &p.Amount, &p.Currency, &p.Status, &p.PaymentMethod, &p.Provider, &p.GatewayResponse, &p.SubscriptionID, &p.CreatedAt, &p.UpdatedAt, &p.CompletedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return p, nil
}

func (r *paymentRepo) Save(ctx context.Context, tx repository.Tx, p *model.Payment) error {
	const q = `
INSERT INTO payments (
  id, user_id, transaction_id, amount, currency, status, payment_method, provider, gateway_response, subscription_id, created_at, updated_at, completed_at
) VALUES (
  $1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13
) ON CONFLICT (id) DO UPDATE SET
  amount=$4, currency=$5, status=$6, payment_method=$7, provider=$8, gateway_response=$9, subscription_id=$10, updated_at=$12, completed_at=$13;`

	_, err := execSQL(ctx, r.pool, tx, q, p.ID, p.UserID, p.TransactionID, p.Amount, p.Currency, p.Status, p.PaymentMethod, p.Provider, p.GatewayResponse, p.SubscriptionID, p.CreatedAt, p.UpdatedAt, p.CompletedAt)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *paymentRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Payment, error) {
	q := `SELECT ` + paymentColumns + ` FROM payments WHERE id=$1`
	if _, ok := tx.(pgx.Tx); ok {
		q += " FOR UPDATE"
	}
	q += ";"
	row, err := pickRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, err
	}
	return scanPayment(row)
}

func (r *paymentRepo) FindByTransactionID(ctx context.Context, tx repository.Tx, transactionID string) (*model.Payment, error) {
	q := `SELECT ` + paymentColumns + ` FROM payments WHERE transaction_id=$1 LIMIT 1`
	if _, ok := tx.(pgx.Tx); ok {
		q += " FOR UPDATE"
	}
	q += ";"
	row, err := pickRow(ctx, r.pool, tx, q, transactionID)
	if err != nil {
		return nil, err
	}
	return scanPayment(row)
}

func (r *paymentRepo) ListByUser(ctx context.Context, tx repository.Tx, userID string, limit int) ([]*model.Payment, error) {
	if limit <= 0 {
		limit = 50
	}
	const q = `SELECT ` + paymentColumns + ` FROM payments WHERE user_id=$1 ORDER BY created_at DESC LIMIT $2;`
	rows, err := queryRows(ctx, r.pool, tx, q, userID, limit)
	if err != nil {
		switch err {
		case domain.ErrInvalidArgument, domain.ErrInvalidExecContext:
			return nil, err
		default:
			return nil, domain.ErrOperationFailed
		}
	}
	defer rows.Close()
	return collectPayments(rows)
}

// UpdateStatusIfPending is the single serialization point of the webhook path:
// a conditional update that only fires while the row is still pending. The raw
// provider payload and the completion timestamp land in the same statement.
func (r *paymentRepo) UpdateStatusIfPending(
	ctx context.Context, tx repository.Tx, transactionID string, status model.PaymentStatus, gatewayResponse map[string]interface{}, completedAt *time.Time,
) (bool, error) {
	const q = `
    UPDATE payments
       SET status = $2,
           gateway_response = COALESCE($3, gateway_response),
           completed_at = COALESCE($4, completed_at),
           updated_at = NOW()
     WHERE transaction_id = $1
       AND status = 'pending';`

	cmd, err := execSQL(ctx, r.pool, tx, q, transactionID, string(status), gatewayResponse, completedAt)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return false, err
		}
		return false, domain.ErrOperationFailed
	}
	return cmd.RowsAffected() >= 1, nil
}

func (r *paymentRepo) MarkRefunded(ctx context.Context, tx repository.Tx, transactionID string) (bool, error) {
	const q = `UPDATE payments SET status='refunded', updated_at=NOW() WHERE transaction_id=$1 AND status='completed';`
	cmd, err := execSQL(ctx, r.pool, tx, q, transactionID)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return false, err
		}
		return false, domain.ErrOperationFailed
	}
	return cmd.RowsAffected() >= 1, nil
}

func (r *paymentRepo) SetSubscriptionID(ctx context.Context, tx repository.Tx, paymentID, subscriptionID string) error {
	const q = `UPDATE payments SET subscription_id=$2, updated_at=NOW() WHERE id=$1;`
	_, err := execSQL(ctx, r.pool, tx, q, paymentID, subscriptionID)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *paymentRepo) ListCompletedUnlinked(ctx context.Context, tx repository.Tx, limit int) ([]*model.Payment, error) {
	if limit <= 0 {
		limit = 100
	}
	const q = `SELECT ` + paymentColumns + ` FROM payments WHERE status='completed' AND subscription_id IS NULL ORDER BY created_at ASC LIMIT $1;`
	rows, err := queryRows(ctx, r.pool, tx, q, limit)
	if err != nil {
		switch err {
		case domain.ErrInvalidArgument, domain.ErrInvalidExecContext:
			return nil, err
		default:
			return nil, domain.ErrOperationFailed
		}
	}
	defer rows.Close()
	return collectPayments(rows)
}

func (r *paymentRepo) SumByPeriod(ctx context.Context, tx repository.Tx, period string) (int64, error) {
	const q = `SELECT COALESCE(SUM(amount),0) FROM payments WHERE status='completed' AND completed_at >= DATE_TRUNC($1, NOW());`
	row, err := pickRow(ctx, r.pool, tx, q, period)
	if err != nil {
		return 0, err
	}
	var sum int64
	if err := row.Scan(&sum); err != nil {
		return 0, domain.ErrReadDatabaseRow
	}
	return sum, nil
}

func collectPayments(rows pgx.Rows) ([]*model.Payment, error) {
	var out []*model.Payment
	for rows.Next() {
		p := new(model.Payment)
		if err := rows.Scan(&p.ID, &p.UserID, &p.TransactionID, &p.Amount, &p.Currency, &p.Status, &p.PaymentMethod, &p.Provider, &p.GatewayResponse, &p.SubscriptionID, &p.CreatedAt, &p.UpdatedAt, &p.CompletedAt); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, p)
	}
	return out, nil
}
