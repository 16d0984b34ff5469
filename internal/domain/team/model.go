package team

import (
	"fmt"
	"strings"
	"time"
)

// Team is a squad registered in one tournament.
type Team struct {
	ID           string
	TournamentID string
	Name         string
	LogoKey      string
	LogoURL      string
	CreatedAt    time.Time
}

func (t Team) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("team id is required")
	}
	if t.TournamentID == "" {
		return fmt.Errorf("team tournament id is required")
	}
	if strings.TrimSpace(t.Name) == "" {
		return fmt.Errorf("team name is required")
	}

	return nil
}

func (t Team) HasLogo() bool {
	return t.LogoKey != ""
}
