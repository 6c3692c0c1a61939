// File: internal/usecase/entitlement_uc.go
package usecase

import (
	"context"

	"github.com/rs/zerolog"

	"scouting-backend/internal/domain"
	"scouting-backend/internal/domain/model"
	"scouting-backend/internal/domain/ports/repository"
)

// Compile-time check
var _ EntitlementUseCase = (*entitlementUC)(nil)

// Capabilities gated by entitlement.
const (
	CapSearchPlayers   = "search_players"
	CapViewPlayerStats = "view_player_stats"
	CapViewMatches     = "view_matches"
	CapManageCatalog   = "manage_catalog"
	CapViewOwnProfile  = "view_own_profile"
)

// AccessDecision is the result of an entitlement check, recomputed on every
// call from the subscription row. It is never cached: a stale allow after
// expiry would grant access the user no longer paid for.
type AccessDecision struct {
	Allowed   bool
	Reason    string
	Roles     []model.Role
	SubStatus model.SubscriptionStatus
}

type EntitlementUseCase interface {
	// ValidateAccess decides whether the user may use subscriber features.
	// Admin roles and the limited role bypass the subscription check entirely.
	ValidateAccess(ctx context.Context, userID string) (*AccessDecision, error)
	// CanUseCapability narrows the decision to one capability. Limited users
	// keep access to their own profile regardless of subscription state.
	CanUseCapability(ctx context.Context, userID, capability string) (bool, error)
}

type entitlementUC struct {
	users repository.UserRepository
	subs  SubscriptionUseCase
	log   *zerolog.Logger
}

func NewEntitlementUseCase(users repository.UserRepository, subs SubscriptionUseCase, logger *zerolog.Logger) *entitlementUC {
	ucLog := logger.With().Str("component", "EntitlementUC").Logger()
	return &entitlementUC{users: users, subs: subs, log: &ucLog}
}

func (u *entitlementUC) ValidateAccess(ctx context.Context, userID string) (*AccessDecision, error) {
	if userID == "" {
		return nil, domain.ErrInvalidArgument
	}
	roles, err := u.users.RolesByUser(ctx, repository.NoTX, userID)
	if err != nil {
		return nil, err
	}
	for _, r := range roles {
		if r.IsAdmin() {
			return &AccessDecision{Allowed: true, Reason: "admin", Roles: roles}, nil
		}
	}
	// The limited role passes without a subscription; its restrictions are
	// applied per capability, not here.
	for _, r := range roles {
		if r == model.RoleLimitedUser {
			return &AccessDecision{Allowed: true, Reason: "limited_user", Roles: roles}, nil
		}
	}

	status, err := u.subs.Status(ctx, userID)
	if err != nil {
		return nil, err
	}
	if status.IsActive {
		return &AccessDecision{Allowed: true, Reason: "active_subscription", Roles: roles, SubStatus: status.Status}, nil
	}
	return &AccessDecision{Allowed: false, Reason: "no_active_subscription", Roles: roles, SubStatus: status.Status}, nil
}

func (u *entitlementUC) CanUseCapability(ctx context.Context, userID, capability string) (bool, error) {
	decision, err := u.ValidateAccess(ctx, userID)
	if err != nil {
		return false, err
	}

	switch capability {
	case CapManageCatalog:
		// Catalog writes are admin-only; a subscription does not unlock them.
		for _, r := range decision.Roles {
			if r.IsAdmin() {
				return true, nil
			}
		}
		return false, nil

	case CapViewOwnProfile:
		// Always available to any known user, entitled or not.
		return true, nil

	case CapSearchPlayers, CapViewPlayerStats, CapViewMatches:
		switch decision.Reason {
		case "admin", "active_subscription":
			return true, nil
		case "limited_user":
			// Limited access alone does not unlock premium data, but a limited
			// user may still hold a live subscription.
			status, err := u.subs.Status(ctx, userID)
			if err != nil {
				return false, err
			}
			return status.IsActive, nil
		default:
			return false, nil
		}

	default:
		return false, domain.ErrInvalidArgument
	}
}
