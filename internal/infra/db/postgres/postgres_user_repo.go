package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"scouting-backend/internal/domain"
	"scouting-backend/internal/domain/model"
	"scouting-backend/internal/domain/ports/repository"
)

var _ repository.UserRepository = (*userRepo)(nil)

type userRepo struct{ pool *pgxpool.Pool }

func NewUserRepo(pool *pgxpool.Pool) *userRepo {
	return &userRepo{pool: pool}
}

func scanUser(row pgx.Row) (*model.User, error) {
	u := &model.User{}
	if err := row.Scan(&u.ID, &u.Email, &u.FirstName, &u.LastName, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return u, nil
}

func (r *userRepo) Save(ctx context.Context, tx repository.Tx, u *model.User) error {
	const q = `
INSERT INTO users (id, email, first_name, last_name, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6)
ON CONFLICT (id) DO UPDATE SET email=$2, first_name=$3, last_name=$4, updated_at=$6;`

	_, err := execSQL(ctx, r.pool, tx, q, u.ID, u.Email, u.FirstName, u.LastName, u.CreatedAt, u.UpdatedAt)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *userRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.User, error) {
	const q = `SELECT id, email, first_name, last_name, created_at, updated_at FROM users WHERE id=$1;`
	row, err := pickRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, err
	}
	return scanUser(row)
}

func (r *userRepo) FindByEmail(ctx context.Context, tx repository.Tx, email string) (*model.User, error) {
	const q = `SELECT id, email, first_name, last_name, created_at, updated_at FROM users WHERE LOWER(email)=LOWER($1) LIMIT 1;`
	row, err := pickRow(ctx, r.pool, tx, q, email)
	if err != nil {
		return nil, err
	}
	return scanUser(row)
}

// AssignRole is idempotent: (user_id, role) carries a unique constraint and a
// repeat insert is swallowed by ON CONFLICT DO NOTHING.
func (r *userRepo) AssignRole(ctx context.Context, tx repository.Tx, userID string, role model.Role, assignedBy *string) error {
	const q = `
INSERT INTO user_roles (id, user_id, role, assigned_at, assigned_by)
VALUES ($1,$2,$3,NOW(),$4)
ON CONFLICT (user_id, role) DO NOTHING;`

	_, err := execSQL(ctx, r.pool, tx, q, uuid.NewString(), userID, role, assignedBy)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *userRepo) RolesByUser(ctx context.Context, tx repository.Tx, userID string) ([]model.Role, error) {
	const q = `SELECT role FROM user_roles WHERE user_id=$1 ORDER BY assigned_at ASC;`
	rows, err := queryRows(ctx, r.pool, tx, q, userID)
	if err != nil {
		switch err {
		case domain.ErrInvalidArgument, domain.ErrInvalidExecContext:
			return nil, err
		default:
			return nil, domain.ErrOperationFailed
		}
	}
	defer rows.Close()

	var out []model.Role
	for rows.Next() {
		var role model.Role
		if err := rows.Scan(&role); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, role)
	}
	return out, nil
}
