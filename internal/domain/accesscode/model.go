package accesscode

import (
	"context"
	"fmt"
	"time"

	"github.com/riskibarqy/tournament-scoring/internal/domain/user"
)

// AccessCode is a shared secret handed to admins or team players. Only the
// bcrypt hash is stored.
type AccessCode struct {
	ID        string
	Label     string
	CodeHash  string
	Role      user.Role
	TeamID    string
	Active    bool
	CreatedAt time.Time
}

func (c AccessCode) Validate() error {
	if c.ID == "" {
		return fmt.Errorf("access code id is required")
	}
	if c.CodeHash == "" {
		return fmt.Errorf("access code hash is required")
	}
	if _, err := user.ParseRole(string(c.Role)); err != nil {
		return fmt.Errorf("access code role: %w", err)
	}
	if c.Role == user.RolePlayer && c.TeamID == "" {
		return fmt.Errorf("player access code requires a team")
	}

	return nil
}

// Grant is what a valid code unlocks.
type Grant struct {
	CodeID string
	Role   user.Role
	TeamID string
}

type Repository interface {
	// Validate resolves a plaintext code to its grant; ok is false for
	// unknown or inactive codes.
	Validate(ctx context.Context, code string) (grant Grant, ok bool, err error)
	Create(ctx context.Context, c AccessCode) error
}
