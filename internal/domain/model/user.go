package model

import "time"

type Role string

const (
	RoleSubscriber    Role = "subscriber"
	RoleLimitedUser   Role = "limited_user"
	RoleSuperAdmin    Role = "super_admin"
	RoleSupportAdmin  Role = "support_admin"
	RoleReadOnlyAdmin Role = "read_only_admin"
)

// IsAdmin reports whether the role belongs to the admin family.
func (r Role) IsAdmin() bool {
	switch r {
	case RoleSuperAdmin, RoleSupportAdmin, RoleReadOnlyAdmin:
		return true
	}
	return false
}

type User struct {
	ID        string
	Email     string
	FirstName string
	LastName  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// UserRole is one (user, role) assignment; unique per pair.
type UserRole struct {
	ID         string
	UserID     string
	Role       Role
	AssignedAt time.Time
	AssignedBy *string
}
