// File: internal/usecase/catalog_uc.go
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
var _ CatalogUseCase = (*catalogUC)(nil)

// CatalogUseCase is the scouting data surface the entitlement layer protects.
// Reads require an active subscription (enforced in the web layer); writes
// require an admin role.
type CatalogUseCase interface {
	CreateTeam(ctx context.Context, t *model.Team) (*model.Team, error)
	GetTeam(ctx context.Context, id string) (*model.Team, error)
	UpdateTeam(ctx context.Context, t *model.Team) (*model.Team, error)
	ListTeams(ctx context.Context, offset, limit int) ([]*model.Team, error)
	DeleteTeam(ctx context.Context, id string) error

	CreatePlayer(ctx context.Context, p *model.Player) (*model.Player, error)
	GetPlayer(ctx context.Context, id string) (*model.Player, error)
	UpdatePlayer(ctx context.Context, p *model.Player) (*model.Player, error)
	GetOwnPlayerProfile(ctx context.Context, userID string) (*model.Player, error)
	SearchPlayers(ctx context.Context, query string, offset, limit int) ([]*model.Player, error)
	DeletePlayer(ctx context.Context, id string) error

	RecordMatch(ctx context.Context, m *model.Match) (*model.Match, error)
	ListMatchesByTeam(ctx context.Context, teamID string, limit int) ([]*model.Match, error)

	RecordPlayerStats(ctx context.Context, s *model.PlayerStats) (*model.PlayerStats, error)
	ListStatsByPlayer(ctx context.Context, playerID string, limit int) ([]*model.PlayerStats, error)
}

type catalogUC struct {
	teams   repository.TeamRepository
	players repository.PlayerRepository
	matches repository.MatchRepository
	stats   repository.PlayerStatsRepository
	log     *zerolog.Logger
	now     func() time.Time
}

func NewCatalogUseCase(
	teams repository.TeamRepository,
	players repository.PlayerRepository,
	matches repository.MatchRepository,
	stats repository.PlayerStatsRepository,
	logger *zerolog.Logger,
) *catalogUC {
	ucLog := logger.With().Str("component", "CatalogUC").Logger()
	return &catalogUC{teams: teams, players: players, matches: matches, stats: stats, log: &ucLog, now: time.Now}
}

func (u *catalogUC) CreateTeam(ctx context.Context, t *model.Team) (*model.Team, error) {
	if t == nil || t.Name == "" {
		return nil, domain.ErrInvalidArgument
	}
	now := u.now()
	t.ID = uuid.NewString()
	t.CreatedAt = now
	t.UpdatedAt = now
	if err := u.teams.Save(ctx, repository.NoTX, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (u *catalogUC) GetTeam(ctx context.Context, id string) (*model.Team, error) {
	return u.teams.FindByID(ctx, repository.NoTX, id)
}

func (u *catalogUC) UpdateTeam(ctx context.Context, t *model.Team) (*model.Team, error) {
	if t == nil || t.ID == "" || t.Name == "" {
		return nil, domain.ErrInvalidArgument
	}
	existing, err := u.teams.FindByID(ctx, repository.NoTX, t.ID)
	if err != nil {
		return nil, err
	}
	t.CreatedAt = existing.CreatedAt
	t.UpdatedAt = u.now()
	if err := u.teams.Save(ctx, repository.NoTX, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (u *catalogUC) ListTeams(ctx context.Context, offset, limit int) ([]*model.Team, error) {
	if offset < 0 {
		offset = 0
	}
	return u.teams.List(ctx, repository.NoTX, offset, clampLimit(limit))
}

func (u *catalogUC) DeleteTeam(ctx context.Context, id string) error {
	return u.teams.Delete(ctx, repository.NoTX, id)
}

func (u *catalogUC) CreatePlayer(ctx context.Context, p *model.Player) (*model.Player, error) {
	if p == nil || p.FirstName == "" || p.LastName == "" {
		return nil, domain.ErrInvalidArgument
	}
	now := u.now()
	p.ID = uuid.NewString()
	p.CreatedAt = now
	p.UpdatedAt = now
	if err := u.players.Save(ctx, repository.NoTX, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (u *catalogUC) GetPlayer(ctx context.Context, id string) (*model.Player, error) {
	return u.players.FindByID(ctx, repository.NoTX, id)
}

func (u *catalogUC) UpdatePlayer(ctx context.Context, p *model.Player) (*model.Player, error) {
	if p == nil || p.ID == "" || p.FirstName == "" || p.LastName == "" {
		return nil, domain.ErrInvalidArgument
	}
	existing, err := u.players.FindByID(ctx, repository.NoTX, p.ID)
	if err != nil {
		return nil, err
	}
	p.CreatedAt = existing.CreatedAt
	p.UpdatedAt = u.now()
	if err := u.players.Save(ctx, repository.NoTX, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (u *catalogUC) GetOwnPlayerProfile(ctx context.Context, userID string) (*model.Player, error) {
	if userID == "" {
		return nil, domain.ErrInvalidArgument
	}
	return u.players.FindByUserID(ctx, repository.NoTX, userID)
}

func (u *catalogUC) SearchPlayers(ctx context.Context, query string, offset, limit int) ([]*model.Player, error) {
	if offset < 0 {
		offset = 0
	}
	return u.players.Search(ctx, repository.NoTX, query, offset, clampLimit(limit))
}

func (u *catalogUC) DeletePlayer(ctx context.Context, id string) error {
	return u.players.Delete(ctx, repository.NoTX, id)
}

func (u *catalogUC) RecordMatch(ctx context.Context, m *model.Match) (*model.Match, error) {
	if m == nil || m.HomeTeamID == "" || m.AwayTeamID == "" || m.HomeTeamID == m.AwayTeamID {
		return nil, domain.ErrInvalidArgument
	}
	m.ID = uuid.NewString()
	m.CreatedAt = u.now()
	if err := u.matches.Save(ctx, repository.NoTX, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (u *catalogUC) ListMatchesByTeam(ctx context.Context, teamID string, limit int) ([]*model.Match, error) {
	if teamID == "" {
		return nil, domain.ErrInvalidArgument
	}
	return u.matches.ListByTeam(ctx, repository.NoTX, teamID, clampLimit(limit))
}

func (u *catalogUC) RecordPlayerStats(ctx context.Context, s *model.PlayerStats) (*model.PlayerStats, error) {
	if s == nil || s.PlayerID == "" || s.MatchID == "" {
		return nil, domain.ErrInvalidArgument
	}
	s.ID = uuid.NewString()
	s.CreatedAt = u.now()
	if err := u.stats.Save(ctx, repository.NoTX, s); err != nil {
		return nil, err
	}
	return s, nil
}

func (u *catalogUC) ListStatsByPlayer(ctx context.Context, playerID string, limit int) ([]*model.PlayerStats, error) {
	if playerID == "" {
		return nil, domain.ErrInvalidArgument
	}
	return u.stats.ListByPlayer(ctx, repository.NoTX, playerID, limit)
}
