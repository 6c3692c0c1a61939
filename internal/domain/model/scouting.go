package model

import "time"

// Thin scouting entities behind the CRUD proxy layer. No invariants beyond
// uniqueness and foreign keys; the interesting state lives in payments and
// subscriptions.

type Team struct {
	ID        string
	Name      string
	Country   string
	League    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Player struct {
	ID          string
	UserID      *string // set when the player manages their own profile
	TeamID      *string
	FirstName   string
	LastName    string
	Position    string
	BirthDate   *time.Time
	Nationality string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type Match struct {
	ID         string
	HomeTeamID string
	AwayTeamID string
	PlayedAt   time.Time
	HomeScore  int
	AwayScore  int
	Venue      string
	CreatedAt  time.Time
}

type PlayerStats struct {
	ID            string
	PlayerID      string
	MatchID       string
	MinutesPlayed int
	Goals         int
	Assists       int
	YellowCards   int
	RedCards      int
	Rating        float64
	CreatedAt     time.Time
}
