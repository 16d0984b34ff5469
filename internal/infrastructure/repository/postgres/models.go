package postgres

import (
	"database/sql"
	"time"
)

type tournamentTableModel struct {
	ID           string    `db:"id"`
	Name         string    `db:"name"`
	Description  string    `db:"description"`
	TotalMatches int       `db:"total_matches"`
	CreatedAt    time.Time `db:"created_at"`
}

type teamTableModel struct {
	ID           string         `db:"id"`
	TournamentID string         `db:"tournament_id"`
	Name         string         `db:"name"`
	LogoKey      sql.NullString `db:"logo_key"`
	LogoURL      sql.NullString `db:"logo_url"`
	CreatedAt    time.Time      `db:"created_at"`
}

type screenshotTableModel struct {
	ID           string        `db:"id"`
	TeamID       string        `db:"team_id"`
	TournamentID string        `db:"tournament_id,readonly"`
	PlayerID     string        `db:"player_id"`
	Day          int           `db:"day"`
	ImageKey     string        `db:"image_key"`
	ImageURL     string        `db:"image_url"`
	Placement    sql.NullInt32 `db:"placement"`
	Kills        sql.NullInt32 `db:"kills"`
	Points       int           `db:"points"`
	CreatedAt    time.Time     `db:"created_at"`
}

type sessionTableModel struct {
	ID        string         `db:"id"`
	UserID    string         `db:"user_id"`
	Role      string         `db:"role"`
	TeamID    sql.NullString `db:"team_id"`
	CreatedAt time.Time      `db:"created_at"`
}

type accessCodeTableModel struct {
	ID        string         `db:"id"`
	Label     string         `db:"label"`
	CodeHash  string         `db:"code_hash"`
	Role      string         `db:"role"`
	TeamID    sql.NullString `db:"team_id"`
	Active    bool           `db:"active"`
	CreatedAt time.Time      `db:"created_at"`
}

type accessGrantRow struct {
	CodeID string         `db:"code_id"`
	Role   string         `db:"role"`
	TeamID sql.NullString `db:"team_id"`
}
