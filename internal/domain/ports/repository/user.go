package repository

import (
	"context"

	"scouting-backend/internal/domain/model"
)

// -----------------------------
// Users and roles
// -----------------------------

type UserRepository interface {
	Save(ctx context.Context, tx Tx, u *model.User) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.User, error)
	FindByEmail(ctx context.Context, tx Tx, email string) (*model.User, error)

	// AssignRole is idempotent: (user_id, role) is unique and a repeat insert
	// is a no-op.
	AssignRole(ctx context.Context, tx Tx, userID string, role model.Role, assignedBy *string) error
	RolesByUser(ctx context.Context, tx Tx, userID string) ([]model.Role, error)
}
