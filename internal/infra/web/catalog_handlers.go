package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"scouting-backend/internal/domain"
	"scouting-backend/internal/domain/model"
	"scouting-backend/internal/usecase"
)

// Handlers for the scouting catalog. Reads sit behind the entitlement
// middleware; writes behind the admin check.

type teamRequest struct {
	Name    string `json:"name"`
	Country string `json:"country"`
	League  string `json:"league"`
}

func teamCreateHandler(catalogUC usecase.CatalogUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req teamRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		team, err := catalogUC.CreateTeam(r.Context(), &model.Team{
			Name:    req.Name,
			Country: req.Country,
			League:  req.League,
		})
		if err != nil {
			if errors.Is(err, domain.ErrInvalidArgument) {
				writeError(w, http.StatusBadRequest, "invalid team")
				return
			}
			writeError(w, http.StatusInternalServerError, "failed to create team")
			return
		}
		writeJSON(w, http.StatusCreated, team)
	}
}

func teamUpdateHandler(catalogUC usecase.CatalogUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req teamRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		team, err := catalogUC.UpdateTeam(r.Context(), &model.Team{
			ID:      chi.URLParam(r, "id"),
			Name:    req.Name,
			Country: req.Country,
			League:  req.League,
		})
		if err != nil {
			switch {
			case errors.Is(err, domain.ErrInvalidArgument):
				writeError(w, http.StatusBadRequest, "invalid team")
			case errors.Is(err, domain.ErrNotFound):
				writeError(w, http.StatusNotFound, "team not found")
			default:
				writeError(w, http.StatusInternalServerError, "failed to update team")
			}
			return
		}
		writeJSON(w, http.StatusOK, team)
	}
}

func teamGetHandler(catalogUC usecase.CatalogUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		team, err := catalogUC.GetTeam(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				writeError(w, http.StatusNotFound, "team not found")
				return
			}
			writeError(w, http.StatusInternalServerError, "failed to fetch team")
			return
		}
		writeJSON(w, http.StatusOK, team)
	}
}

func teamListHandler(catalogUC usecase.CatalogUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		teams, err := catalogUC.ListTeams(r.Context(), offset, limit)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to list teams")
			return
		}
		writeJSON(w, http.StatusOK, teams)
	}
}

func teamDeleteHandler(catalogUC usecase.CatalogUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := catalogUC.DeleteTeam(r.Context(), chi.URLParam(r, "id")); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				writeError(w, http.StatusNotFound, "team not found")
				return
			}
			writeError(w, http.StatusInternalServerError, "failed to delete team")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

type playerRequest struct {
	UserID      *string    `json:"user_id"`
	TeamID      *string    `json:"team_id"`
	FirstName   string     `json:"first_name"`
	LastName    string     `json:"last_name"`
	Position    string     `json:"position"`
	BirthDate   *time.Time `json:"birth_date"`
	Nationality string     `json:"nationality"`
}

func playerCreateHandler(catalogUC usecase.CatalogUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req playerRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		player, err := catalogUC.CreatePlayer(r.Context(), &model.Player{
			UserID:      req.UserID,
			TeamID:      req.TeamID,
			FirstName:   req.FirstName,
			LastName:    req.LastName,
			Position:    req.Position,
			BirthDate:   req.BirthDate,
			Nationality: req.Nationality,
		})
		if err != nil {
			if errors.Is(err, domain.ErrInvalidArgument) {
				writeError(w, http.StatusBadRequest, "invalid player")
				return
			}
			writeError(w, http.StatusInternalServerError, "failed to create player")
			return
		}
		writeJSON(w, http.StatusCreated, player)
	}
}

func playerUpdateHandler(catalogUC usecase.CatalogUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req playerRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		player, err := catalogUC.UpdatePlayer(r.Context(), &model.Player{
			ID:          chi.URLParam(r, "id"),
			UserID:      req.UserID,
			TeamID:      req.TeamID,
			FirstName:   req.FirstName,
			LastName:    req.LastName,
			Position:    req.Position,
			BirthDate:   req.BirthDate,
			Nationality: req.Nationality,
		})
		if err != nil {
			switch {
			case errors.Is(err, domain.ErrInvalidArgument):
				writeError(w, http.StatusBadRequest, "invalid player")
			case errors.Is(err, domain.ErrNotFound):
				writeError(w, http.StatusNotFound, "player not found")
			default:
				writeError(w, http.StatusInternalServerError, "failed to update player")
			}
			return
		}
		writeJSON(w, http.StatusOK, player)
	}
}

func playerGetHandler(catalogUC usecase.CatalogUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		player, err := catalogUC.GetPlayer(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				writeError(w, http.StatusNotFound, "player not found")
				return
			}
			writeError(w, http.StatusInternalServerError, "failed to fetch player")
			return
		}
		writeJSON(w, http.StatusOK, player)
	}
}

// playerProfileHandler serves the caller's own player profile. Not gated by
// subscription: limited users keep access to their own data.
func playerProfileHandler(catalogUC usecase.CatalogUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := claimsFrom(r.Context())
		player, err := catalogUC.GetOwnPlayerProfile(r.Context(), claims.UserID())
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				writeError(w, http.StatusNotFound, "no player profile for this account")
				return
			}
			writeError(w, http.StatusInternalServerError, "failed to fetch profile")
			return
		}
		writeJSON(w, http.StatusOK, player)
	}
}

func playerSearchHandler(catalogUC usecase.CatalogUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		offset, _ := strconv.Atoi(q.Get("offset"))
		limit, _ := strconv.Atoi(q.Get("limit"))
		players, err := catalogUC.SearchPlayers(r.Context(), q.Get("q"), offset, limit)
		if err != nil {
			if errors.Is(err, domain.ErrInvalidArgument) {
				writeError(w, http.StatusBadRequest, "query is required")
				return
			}
			writeError(w, http.StatusInternalServerError, "search failed")
			return
		}
		writeJSON(w, http.StatusOK, players)
	}
}

func playerDeleteHandler(catalogUC usecase.CatalogUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := catalogUC.DeletePlayer(r.Context(), chi.URLParam(r, "id")); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				writeError(w, http.StatusNotFound, "player not found")
				return
			}
			writeError(w, http.StatusInternalServerError, "failed to delete player")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

type matchRequest struct {
	HomeTeamID string    `json:"home_team_id"`
	AwayTeamID string    `json:"away_team_id"`
	PlayedAt   time.Time `json:"played_at"`
	HomeScore  int       `json:"home_score"`
	AwayScore  int       `json:"away_score"`
	Venue      string    `json:"venue"`
}

func matchCreateHandler(catalogUC usecase.CatalogUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req matchRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		match, err := catalogUC.RecordMatch(r.Context(), &model.Match{
			HomeTeamID: req.HomeTeamID,
			AwayTeamID: req.AwayTeamID,
			PlayedAt:   req.PlayedAt,
			HomeScore:  req.HomeScore,
			AwayScore:  req.AwayScore,
			Venue:      req.Venue,
		})
		if err != nil {
			if errors.Is(err, domain.ErrInvalidArgument) {
				writeError(w, http.StatusBadRequest, "invalid match")
				return
			}
			writeError(w, http.StatusInternalServerError, "failed to record match")
			return
		}
		writeJSON(w, http.StatusCreated, match)
	}
}

func teamMatchesHandler(catalogUC usecase.CatalogUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		matches, err := catalogUC.ListMatchesByTeam(r.Context(), chi.URLParam(r, "id"), limit)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to list matches")
			return
		}
		writeJSON(w, http.StatusOK, matches)
	}
}

type playerStatsRequest struct {
	PlayerID      string  `json:"player_id"`
	MatchID       string  `json:"match_id"`
	MinutesPlayed int     `json:"minutes_played"`
	Goals         int     `json:"goals"`
	Assists       int     `json:"assists"`
	YellowCards   int     `json:"yellow_cards"`
	RedCards      int     `json:"red_cards"`
	Rating        float64 `json:"rating"`
}

func playerStatsCreateHandler(catalogUC usecase.CatalogUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req playerStatsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		stats, err := catalogUC.RecordPlayerStats(r.Context(), &model.PlayerStats{
			PlayerID:      req.PlayerID,
			MatchID:       req.MatchID,
			MinutesPlayed: req.MinutesPlayed,
			Goals:         req.Goals,
			Assists:       req.Assists,
			YellowCards:   req.YellowCards,
			RedCards:      req.RedCards,
			Rating:        req.Rating,
		})
		if err != nil {
			if errors.Is(err, domain.ErrInvalidArgument) {
				writeError(w, http.StatusBadRequest, "invalid stat line")
				return
			}
			writeError(w, http.StatusInternalServerError, "failed to record stats")
			return
		}
		writeJSON(w, http.StatusCreated, stats)
	}
}

func playerStatsHandler(catalogUC usecase.CatalogUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		stats, err := catalogUC.ListStatsByPlayer(r.Context(), chi.URLParam(r, "id"), limit)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to list stats")
			return
		}
		writeJSON(w, http.StatusOK, stats)
	}
}
