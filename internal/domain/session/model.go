package session

import (
	"context"
	"fmt"
	"time"

	"github.com/riskibarqy/tournament-scoring/internal/domain/user"
)

// Session is created once at login and removed at sign-out.
type Session struct {
	ID        string
	UserID    string
	Role      user.Role
	TeamID    string
	CreatedAt time.Time
}

func (s Session) Validate() error {
	if s.ID == "" {
		return fmt.Errorf("session id is required")
	}
	if s.UserID == "" {
		return fmt.Errorf("session user id is required")
	}
	if _, err := user.ParseRole(string(s.Role)); err != nil {
		return fmt.Errorf("session role: %w", err)
	}
	if s.Role == user.RolePlayer && s.TeamID == "" {
		return fmt.Errorf("player session requires a team")
	}

	return nil
}

func (s Session) Principal() user.Principal {
	return user.Principal{
		UserID:    s.UserID,
		SessionID: s.ID,
		Role:      s.Role,
		TeamID:    s.TeamID,
	}
}

type Repository interface {
	Create(ctx context.Context, s Session) error
	GetByID(ctx context.Context, id string) (Session, bool, error)
	Delete(ctx context.Context, id string) error
}
