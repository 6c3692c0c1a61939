package repository

import (
	"context"

	"scouting-backend/internal/domain/model"
)

// CRUD ports for the scouting catalog. Plain persistence, no business rules.

type TeamRepository interface {
	Save(ctx context.Context, tx Tx, t *model.Team) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.Team, error)
	List(ctx context.Context, tx Tx, offset, limit int) ([]*model.Team, error)
	Delete(ctx context.Context, tx Tx, id string) error
}

type PlayerRepository interface {
	Save(ctx context.Context, tx Tx, p *model.Player) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.Player, error)
	FindByUserID(ctx context.Context, tx Tx, userID string) (*model.Player, error)
	Search(ctx context.Context, tx Tx, query string, offset, limit int) ([]*model.Player, error)
	Delete(ctx context.Context, tx Tx, id string) error
}

type MatchRepository interface {
	Save(ctx context.Context, tx Tx, m *model.Match) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.Match, error)
	ListByTeam(ctx context.Context, tx Tx, teamID string, limit int) ([]*model.Match, error)
}

type PlayerStatsRepository interface {
	Save(ctx context.Context, tx Tx, s *model.PlayerStats) error
	ListByPlayer(ctx context.Context, tx Tx, playerID string, limit int) ([]*model.PlayerStats, error)
	ListByMatch(ctx context.Context, tx Tx, matchID string) ([]*model.PlayerStats, error)
}
