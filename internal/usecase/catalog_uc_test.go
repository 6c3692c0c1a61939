//go:build !integration

package usecase_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"scouting-backend/internal/domain"
	"scouting-backend/internal/domain/model"
	"scouting-backend/internal/domain/ports/repository"
	"scouting-backend/internal/usecase"
)

type memTeamRepo struct {
	repository.TeamRepository
	mu    sync.Mutex
	teams map[string]*model.Team
}

func newMemTeamRepo() *memTeamRepo { return &memTeamRepo{teams: make(map[string]*model.Team)} }

func (m *memTeamRepo) Save(ctx context.Context, tx repository.Tx, t *model.Team) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *t
	m.teams[t.ID] = &cp
	return nil
}

func (m *memTeamRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Team, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.teams[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (m *memTeamRepo) Delete(ctx context.Context, tx repository.Tx, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.teams[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.teams, id)
	return nil
}

type memPlayerRepo struct {
	repository.PlayerRepository
	mu      sync.Mutex
	players map[string]*model.Player
}

func newMemPlayerRepo() *memPlayerRepo {
	return &memPlayerRepo{players: make(map[string]*model.Player)}
}

func (m *memPlayerRepo) Save(ctx context.Context, tx repository.Tx, p *model.Player) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *p
	m.players[p.ID] = &cp
	return nil
}

func (m *memPlayerRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Player, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.players[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

type memMatchRepo struct {
	repository.MatchRepository
	mu      sync.Mutex
	matches []*model.Match
}

func (m *memMatchRepo) Save(ctx context.Context, tx repository.Tx, match *model.Match) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *match
	m.matches = append(m.matches, &cp)
	return nil
}

func TestCatalogUseCase_Teams(t *testing.T) {
	ctx := context.Background()
	logger := newTestLogger()
	teams := newMemTeamRepo()
	uc := usecase.NewCatalogUseCase(teams, newMemPlayerRepo(), &memMatchRepo{}, nil, logger)

	t.Run("create rejects empty name", func(t *testing.T) {
		if _, err := uc.CreateTeam(ctx, &model.Team{Country: "SN"}); !errors.Is(err, domain.ErrInvalidArgument) {
			t.Fatalf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("create then update preserves creation time", func(t *testing.T) {
		created, err := uc.CreateTeam(ctx, &model.Team{Name: "ASC Jaraaf", Country: "SN", League: "Ligue 1"})
		if err != nil {
			t.Fatalf("CreateTeam failed: %v", err)
		}
		if created.ID == "" {
			t.Fatal("expected generated id")
		}

		time.Sleep(time.Millisecond)
		updated, err := uc.UpdateTeam(ctx, &model.Team{ID: created.ID, Name: "ASC Jaraaf", Country: "SN", League: "Ligue 1 Pro"})
		if err != nil {
			t.Fatalf("UpdateTeam failed: %v", err)
		}
		if !updated.CreatedAt.Equal(created.CreatedAt) {
			t.Fatalf("update must keep CreatedAt: %v vs %v", updated.CreatedAt, created.CreatedAt)
		}
		if !updated.UpdatedAt.After(created.UpdatedAt) {
			t.Fatal("update must advance UpdatedAt")
		}

		got, err := uc.GetTeam(ctx, created.ID)
		if err != nil || got.League != "Ligue 1 Pro" {
			t.Fatalf("expected persisted update, got %+v (%v)", got, err)
		}
	})

	t.Run("update of unknown team is not found", func(t *testing.T) {
		_, err := uc.UpdateTeam(ctx, &model.Team{ID: "ghost", Name: "X"})
		if !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("delete removes the row", func(t *testing.T) {
		created, _ := uc.CreateTeam(ctx, &model.Team{Name: "Casa Sports"})
		if err := uc.DeleteTeam(ctx, created.ID); err != nil {
			t.Fatalf("DeleteTeam failed: %v", err)
		}
		if _, err := uc.GetTeam(ctx, created.ID); !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("expected ErrNotFound after delete, got %v", err)
		}
	})
}

func TestCatalogUseCase_PlayersAndMatches(t *testing.T) {
	ctx := context.Background()
	logger := newTestLogger()
	players := newMemPlayerRepo()
	uc := usecase.NewCatalogUseCase(newMemTeamRepo(), players, &memMatchRepo{}, nil, logger)

	t.Run("player requires first and last name", func(t *testing.T) {
		if _, err := uc.CreatePlayer(ctx, &model.Player{FirstName: "Sadio"}); !errors.Is(err, domain.ErrInvalidArgument) {
			t.Fatalf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("update keeps identity fields honest", func(t *testing.T) {
		created, err := uc.CreatePlayer(ctx, &model.Player{FirstName: "Sadio", LastName: "Mane", Position: "LW"})
		if err != nil {
			t.Fatalf("CreatePlayer failed: %v", err)
		}
		updated, err := uc.UpdatePlayer(ctx, &model.Player{ID: created.ID, FirstName: "Sadio", LastName: "Mane", Position: "ST"})
		if err != nil {
			t.Fatalf("UpdatePlayer failed: %v", err)
		}
		if updated.Position != "ST" || !updated.CreatedAt.Equal(created.CreatedAt) {
			t.Fatalf("unexpected update result %+v", updated)
		}
	})

	t.Run("match rejects a team playing itself", func(t *testing.T) {
		_, err := uc.RecordMatch(ctx, &model.Match{HomeTeamID: "t1", AwayTeamID: "t1", PlayedAt: time.Now()})
		if !errors.Is(err, domain.ErrInvalidArgument) {
			t.Fatalf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("match records with generated id", func(t *testing.T) {
		m, err := uc.RecordMatch(ctx, &model.Match{HomeTeamID: "t1", AwayTeamID: "t2", PlayedAt: time.Now(), HomeScore: 2, AwayScore: 1})
		if err != nil || m.ID == "" {
			t.Fatalf("RecordMatch failed: %+v (%v)", m, err)
		}
	})
}
