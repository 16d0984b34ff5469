package screenshot

import (
	"errors"
	"fmt"
	"time"
)

const (
	// MaxPerTeam caps accepted screenshots per team across all days.
	MaxPerTeam = 12

	MinDay = 1
	MaxDay = 3

	// Upper bounds for analyzer output and admin corrections.
	MaxPlacement = 100
	MaxKills     = 200
)

var (
	ErrInvalidDay   = errors.New("day must be 1, 2 or 3")
	ErrLimitReached = fmt.Errorf("team already has the maximum of %d screenshots", MaxPerTeam)
)

// Screenshot is one uploaded match result. Placement and Kills stay nil
// when the image could not be analyzed.
type Screenshot struct {
	ID           string
	TeamID       string
	TournamentID string
	PlayerID     string
	Day          int
	ImageKey     string
	ImageURL     string
	Placement    *int
	Kills        *int
	Points       int
	CreatedAt    time.Time
}

func ValidateDay(day int) error {
	if day < MinDay || day > MaxDay {
		return fmt.Errorf("%w: got %d", ErrInvalidDay, day)
	}
	return nil
}

func (s Screenshot) Validate() error {
	if s.ID == "" {
		return fmt.Errorf("screenshot id is required")
	}
	if s.TeamID == "" {
		return fmt.Errorf("screenshot team id is required")
	}
	if s.PlayerID == "" {
		return fmt.Errorf("screenshot player id is required")
	}
	if err := ValidateDay(s.Day); err != nil {
		return err
	}
	if s.ImageKey == "" {
		return fmt.Errorf("screenshot image key is required")
	}
	if s.Placement != nil && !ValidPlacement(*s.Placement) {
		return fmt.Errorf("screenshot placement must be between 1 and %d", MaxPlacement)
	}
	if s.Kills != nil && !ValidKills(*s.Kills) {
		return fmt.Errorf("screenshot kills must be between 0 and %d", MaxKills)
	}

	return nil
}

func ValidPlacement(v int) bool { return v >= 1 && v <= MaxPlacement }

func ValidKills(v int) bool { return v >= 0 && v <= MaxKills }

// Analyzed reports whether both placement and kills were extracted.
func (s Screenshot) Analyzed() bool {
	return s.Placement != nil && s.Kills != nil
}

// Filter narrows screenshot listings. Zero values match everything.
type Filter struct {
	TournamentID   string
	TeamID         string
	Day            int
	OnlyUnanalyzed bool
}

// RemainingSlots returns how many more screenshots a team with count rows may take.
func RemainingSlots(count int) int {
	if count >= MaxPerTeam {
		return 0
	}
	return MaxPerTeam - count
}
