package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"scouting-backend/internal/domain"
	"scouting-backend/internal/domain/model"
	"scouting-backend/internal/domain/ports/repository"
)

// Catalog repos. Plain CRUD, one type per aggregate.

var (
	_ repository.TeamRepository        = (*teamRepo)(nil)
	_ repository.PlayerRepository      = (*playerRepo)(nil)
	_ repository.MatchRepository       = (*matchRepo)(nil)
	_ repository.PlayerStatsRepository = (*playerStatsRepo)(nil)
)

// -----------------------------
// Teams
// -----------------------------

type teamRepo struct{ pool *pgxpool.Pool }

func NewTeamRepo(pool *pgxpool.Pool) *teamRepo { return &teamRepo{pool: pool} }

func (r *teamRepo) Save(ctx context.Context, tx repository.Tx, t *model.Team) error {
	const q = `
INSERT INTO teams (id, name, country, league, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6)
ON CONFLICT (id) DO UPDATE SET name=$2, country=$3, league=$4, updated_at=$6;`
	_, err := execSQL(ctx, r.pool, tx, q, t.ID, t.Name, t.Country, t.League, t.CreatedAt, t.UpdatedAt)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *teamRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Team, error) {
	const q = `SELECT id, name, country, league, created_at, updated_at FROM teams WHERE id=$1;`
	row, err := pickRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, err
	}
	t := &model.Team{}
	if err := row.Scan(&t.ID, &t.Name, &t.Country, &t.League, &t.CreatedAt, &t.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return t, nil
}

func (r *teamRepo) List(ctx context.Context, tx repository.Tx, offset, limit int) ([]*model.Team, error) {
	if limit <= 0 {
		limit = 50
	}
	const q = `SELECT id, name, country, league, created_at, updated_at FROM teams ORDER BY name ASC LIMIT $1 OFFSET $2;`
	rows, err := queryRows(ctx, r.pool, tx, q, limit, offset)
	if err != nil {
		return nil, domain.ErrOperationFailed
	}
	defer rows.Close()

	var out []*model.Team
	for rows.Next() {
		t := new(model.Team)
		if err := rows.Scan(&t.ID, &t.Name, &t.Country, &t.League, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, t)
	}
	return out, nil
}

func (r *teamRepo) Delete(ctx context.Context, tx repository.Tx, id string) error {
	const q = `DELETE FROM teams WHERE id=$1;`
	cmd, err := execSQL(ctx, r.pool, tx, q, id)
	if err != nil {
		return domain.ErrOperationFailed
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// -----------------------------
// Players
// -----------------------------

const playerColumns = `id, user_id, team_id, first_name, last_name, position, birth_date, nationality, created_at, updated_at`

type playerRepo struct{ pool *pgxpool.Pool }

func NewPlayerRepo(pool *pgxpool.Pool) *playerRepo { return &playerRepo{pool: pool} }

func scanPlayer(row pgx.Row) (*model.Player, error) {
	p := &model.Player{}
	if err := row.Scan(&p.ID, &p.UserID, &p.TeamID, &p.FirstName, &p.LastName, &p.Position, &p.BirthDate, &p.Nationality, &p.CreatedAt, &p.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return p, nil
}

func (r *playerRepo) Save(ctx context.Context, tx repository.Tx, p *model.Player) error {
	const q = `
INSERT INTO players (id, user_id, team_id, first_name, last_name, position, birth_date, nationality, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
ON CONFLICT (id) DO UPDATE SET team_id=$3, first_name=$4, last_name=$5, position=$6, birth_date=$7, nationality=$8, updated_at=$10;`
	_, err := execSQL(ctx, r.pool, tx, q, p.ID, p.UserID, p.TeamID, p.FirstName, p.LastName, p.Position, p.BirthDate, p.Nationality, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *playerRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Player, error) {
	const q = `SELECT ` + playerColumns + ` FROM players WHERE id=$1;`
	row, err := pickRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, err
	}
	return scanPlayer(row)
}

func (r *playerRepo) FindByUserID(ctx context.Context, tx repository.Tx, userID string) (*model.Player, error) {
	const q = `SELECT ` + playerColumns + ` FROM players WHERE user_id=$1 LIMIT 1;`
	row, err := pickRow(ctx, r.pool, tx, q, userID)
	if err != nil {
		return nil, err
	}
	return scanPlayer(row)
}

func (r *playerRepo) Search(ctx context.Context, tx repository.Tx, query string, offset, limit int) ([]*model.Player, error) {
	if limit <= 0 {
		limit = 50
	}
	const q = `
SELECT ` + playerColumns + ` FROM players
 WHERE first_name ILIKE '%' || $1 || '%'
    OR last_name ILIKE '%' || $1 || '%'
    OR nationality ILIKE '%' || $1 || '%'
 ORDER BY last_name ASC, first_name ASC
 LIMIT $2 OFFSET $3;`
	rows, err := queryRows(ctx, r.pool, tx, q, query, limit, offset)
	if err != nil {
		return nil, domain.ErrOperationFailed
	}
	defer rows.Close()

	var out []*model.Player
	for rows.Next() {
		p := new(model.Player)
		if err := rows.Scan(&p.ID, &p.UserID, &p.TeamID, &p.FirstName, &p.LastName, &p.Position, &p.BirthDate, &p.Nationality, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, p)
	}
	return out, nil
}

func (r *playerRepo) Delete(ctx context.Context, tx repository.Tx, id string) error {
	const q = `DELETE FROM players WHERE id=$1;`
	cmd, err := execSQL(ctx, r.pool, tx, q, id)
	if err != nil {
		return domain.ErrOperationFailed
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// -----------------------------
// Matches
// -----------------------------

type matchRepo struct{ pool *pgxpool.Pool }

func NewMatchRepo(pool *pgxpool.Pool) *matchRepo { return &matchRepo{pool: pool} }

func (r *matchRepo) Save(ctx context.Context, tx repository.Tx, m *model.Match) error {
	const q = `
INSERT INTO matches (id, home_team_id, away_team_id, played_at, home_score, away_score, venue, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
ON CONFLICT (id) DO UPDATE SET played_at=$4, home_score=$5, away_score=$6, venue=$7;`
	_, err := execSQL(ctx, r.pool, tx, q, m.ID, m.HomeTeamID, m.AwayTeamID, m.PlayedAt, m.HomeScore, m.AwayScore, m.Venue, m.CreatedAt)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *matchRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Match, error) {
	const q = `SELECT id, home_team_id, away_team_id, played_at, home_score, away_score, venue, created_at FROM matches WHERE id=$1;`
	row, err := pickRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, err
	}
	m := &model.Match{}
	if err := row.Scan(&m.ID, &m.HomeTeamID, &m.AwayTeamID, &m.PlayedAt, &m.HomeScore, &m.AwayScore, &m.Venue, &m.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return m, nil
}

func (r *matchRepo) ListByTeam(ctx context.Context, tx repository.Tx, teamID string, limit int) ([]*model.Match, error) {
	if limit <= 0 {
		limit = 50
	}
	const q = `SELECT id, home_team_id, away_team_id, played_at, home_score, away_score, venue, created_at FROM matches WHERE home_team_id=$1 OR away_team_id=$1 ORDER BY played_at DESC LIMIT $2;`
	rows, err := queryRows(ctx, r.pool, tx, q, teamID, limit)
	if err != nil {
		return nil, domain.ErrOperationFailed
	}
	defer rows.Close()

	var out []*model.Match
	for rows.Next() {
		m := new(model.Match)
		if err := rows.Scan(&m.ID, &m.HomeTeamID, &m.AwayTeamID, &m.PlayedAt, &m.HomeScore, &m.AwayScore, &m.Venue, &m.CreatedAt); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, m)
	}
	return out, nil
}

// -----------------------------
// Player stats
// -----------------------------

type playerStatsRepo struct{ pool *pgxpool.Pool }

func NewPlayerStatsRepo(pool *pgxpool.Pool) *playerStatsRepo { return &playerStatsRepo{pool: pool} }

func (r *playerStatsRepo) Save(ctx context.Context, tx repository.Tx, s *model.PlayerStats) error {
	const q = `
INSERT INTO player_stats (id, player_id, match_id, minutes_played, goals, assists, yellow_cards, red_cards, rating, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
ON CONFLICT (player_id, match_id) DO UPDATE SET minutes_played=$4, goals=$5, assists=$6, yellow_cards=$7, red_cards=$8, rating=$9;`
	_, err := execSQL(ctx, r.pool, tx, q, s.ID, s.PlayerID, s.MatchID, s.MinutesPlayed, s.Goals, s.Assists, s.YellowCards, s.RedCards, s.Rating, s.CreatedAt)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *playerStatsRepo) ListByPlayer(ctx context.Context, tx repository.Tx, playerID string, limit int) ([]*model.PlayerStats, error) {
	if limit <= 0 {
		limit = 50
	}
	const q = `SELECT id, player_id, match_id, minutes_played, goals, assists, yellow_cards, red_cards, rating, created_at FROM player_stats WHERE player_id=$1 ORDER BY created_at DESC LIMIT $2;`
	rows, err := queryRows(ctx, r.pool, tx, q, playerID, limit)
	if err != nil {
		return nil, domain.ErrOperationFailed
	}
	defer rows.Close()
	return collectStats(rows)
}

func (r *playerStatsRepo) ListByMatch(ctx context.Context, tx repository.Tx, matchID string) ([]*model.PlayerStats, error) {
	const q = `SELECT id, player_id, match_id, minutes_played, goals, assists, yellow_cards, red_cards, rating, created_at FROM player_stats WHERE match_id=$1;`
	rows, err := queryRows(ctx, r.pool, tx, q, matchID)
	if err != nil {
		return nil, domain.ErrOperationFailed
	}
	defer rows.Close()
	return collectStats(rows)
}

func collectStats(rows pgx.Rows) ([]*model.PlayerStats, error) {
	var out []*model.PlayerStats
	for rows.Next() {
		s := new(model.PlayerStats)
		if err := rows.Scan(&s.ID, &s.PlayerID, &s.MatchID, &s.MinutesPlayed, &s.Goals, &s.Assists, &s.YellowCards, &s.RedCards, &s.Rating, &s.CreatedAt); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, s)
	}
	return out, nil
}
