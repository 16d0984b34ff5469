package tournament

import (
	"fmt"
	"strings"
	"time"
)

// DefaultTotalMatches is used when a tournament is created without a match count.
const DefaultTotalMatches = 12

// Tournament groups the teams competing across up to three match days.
type Tournament struct {
	ID           string
	Name         string
	Description  string
	TotalMatches int
	CreatedAt    time.Time
}

func (t Tournament) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("tournament id is required")
	}
	if strings.TrimSpace(t.Name) == "" {
		return fmt.Errorf("tournament name is required")
	}
	if t.TotalMatches < 1 {
		return fmt.Errorf("tournament total matches must be at least 1")
	}

	return nil
}
