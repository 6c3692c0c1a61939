package postgres

import (
	"context"

	"github.com/jackc/pgx/v4/pgxpool"

	"scouting-backend/internal/domain"
	"scouting-backend/internal/domain/model"
	"scouting-backend/internal/domain/ports/repository"
)

var _ repository.InvoiceRepository = (*invoiceRepo)(nil)

type invoiceRepo struct{ pool *pgxpool.Pool }

func NewInvoiceRepo(pool *pgxpool.Pool) *invoiceRepo {
	return &invoiceRepo{pool: pool}
}

func (r *invoiceRepo) Save(ctx context.Context, tx repository.Tx, inv *model.Invoice) error {
	const q = `
INSERT INTO invoices (id, user_id, payment_id, invoice_number, amount, currency, issued_at, paid_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8);`

	_, err := execSQL(ctx, r.pool, tx, q, inv.ID, inv.UserID, inv.PaymentID, inv.InvoiceNumber, inv.Amount, inv.Currency, inv.IssuedAt, inv.PaidAt)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *invoiceRepo) Count(ctx context.Context, tx repository.Tx) (int, error) {
	const q = `SELECT COUNT(*) FROM invoices;`
	row, err := pickRow(ctx, r.pool, tx, q)
	if err != nil {
		return 0, err
	}
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, domain.ErrReadDatabaseRow
	}
	return n, nil
}

func (r *invoiceRepo) NextNumber(ctx context.Context, tx repository.Tx) (int64, error) {
	const q = `SELECT nextval('invoice_number_seq');`
	row, err := pickRow(ctx, r.pool, tx, q)
	if err != nil {
		return 0, err
	}
	var n int64
	if err := row.Scan(&n); err != nil {
		return 0, domain.ErrReadDatabaseRow
	}
	return n, nil
}

func (r *invoiceRepo) ListByUser(ctx context.Context, tx repository.Tx, userID string, limit int) ([]*model.Invoice, error) {
	if limit <= 0 {
		limit = 50
	}
	const q = `SELECT id, user_id, payment_id, invoice_number, amount, currency, issued_at, paid_at FROM invoices WHERE user_id=$1 ORDER BY issued_at DESC LIMIT $2;`
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

	var out []*model.Invoice
	for rows.Next() {
		inv := new(model.Invoice)
		if err := rows.Scan(&inv.ID, &inv.UserID, &inv.PaymentID, &inv.InvoiceNumber, &inv.Amount, &inv.Currency, &inv.IssuedAt, &inv.PaidAt); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, inv)
	}
	return out, nil
}
