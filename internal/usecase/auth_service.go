package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/tournament-scoring/internal/domain/accesscode"
	"github.com/riskibarqy/tournament-scoring/internal/domain/session"
	"github.com/riskibarqy/tournament-scoring/internal/domain/user"
	"github.com/riskibarqy/tournament-scoring/internal/platform/logging"
)

type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	Principal user.Principal
}

// AuthService exchanges access codes for sessions and resolves bearer
// tokens back to the caller.
type AuthService struct {
	codes    accesscode.Repository
	sessions session.Repository
	tokens   TokenIssuer
	ids      IDGenerator
	logger   *logging.Logger
	now      func() time.Time
}

func NewAuthService(
	codes accesscode.Repository,
	sessions session.Repository,
	tokens TokenIssuer,
	ids IDGenerator,
	logger *logging.Logger,
) *AuthService {
	if logger == nil {
		logger = logging.Default()
	}
	return &AuthService{
		codes:    codes,
		sessions: sessions,
		tokens:   tokens,
		ids:      ids,
		logger:   logger,
		now:      time.Now,
	}
}

func (s *AuthService) Login(ctx context.Context, code string) (LoginResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.AuthService.Login")
	defer span.End()

	code = strings.TrimSpace(code)
	if code == "" {
		return LoginResult{}, fmt.Errorf("%w: access code is required", ErrInvalidInput)
	}

	grant, ok, err := s.codes.Validate(ctx, code)
	if err != nil {
		return LoginResult{}, fmt.Errorf("validate access code: %w", err)
	}
	if !ok {
		s.logger.WarnContext(ctx, "rejected access code")
		return LoginResult{}, fmt.Errorf("%w: invalid access code", ErrUnauthorized)
	}

	sessionID, err := s.ids.NewID()
	if err != nil {
		return LoginResult{}, fmt.Errorf("generate session id: %w", err)
	}
	item := session.Session{
		ID:        sessionID,
		UserID:    grant.CodeID,
		Role:      grant.Role,
		TeamID:    grant.TeamID,
		CreatedAt: s.now().UTC(),
	}
	if item.Role == user.RoleAdmin {
		item.TeamID = ""
	}
	if err := item.Validate(); err != nil {
		return LoginResult{}, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}

	if err := s.sessions.Create(ctx, item); err != nil {
		return LoginResult{}, fmt.Errorf("create session: %w", err)
	}

	token, expiresAt, err := s.tokens.Issue(ctx, item)
	if err != nil {
		return LoginResult{}, fmt.Errorf("issue token: %w", err)
	}

	s.logger.InfoContext(ctx, "session started", "session_id", item.ID, "role", item.Role, "team_id", item.TeamID)
	return LoginResult{
		Token:     token,
		ExpiresAt: expiresAt,
		Principal: item.Principal(),
	}, nil
}

// VerifyAccessToken checks the token signature and expiry and that its
// session has not been torn down.
func (s *AuthService) VerifyAccessToken(ctx context.Context, token string) (user.Principal, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.AuthService.VerifyAccessToken")
	defer span.End()

	claims, err := s.tokens.Verify(ctx, token)
	if err != nil {
		return user.Principal{}, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}

	item, exists, err := s.sessions.GetByID(ctx, claims.SessionID)
	if err != nil {
		return user.Principal{}, fmt.Errorf("get session: %w", err)
	}
	if !exists {
		return user.Principal{}, fmt.Errorf("%w: session ended", ErrUnauthorized)
	}
	if item.UserID != claims.UserID || item.Role != claims.Role || item.TeamID != claims.TeamID {
		return user.Principal{}, fmt.Errorf("%w: token does not match session", ErrUnauthorized)
	}

	return item.Principal(), nil
}

func (s *AuthService) Logout(ctx context.Context, principal user.Principal) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.AuthService.Logout")
	defer span.End()

	if principal.SessionID == "" {
		return fmt.Errorf("%w: no session", ErrUnauthorized)
	}
	if err := s.sessions.Delete(ctx, principal.SessionID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}

	s.logger.InfoContext(ctx, "session ended", "session_id", principal.SessionID)
	return nil
}
