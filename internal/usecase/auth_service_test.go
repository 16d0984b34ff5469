package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/riskibarqy/tournament-scoring/internal/domain/accesscode"
	"github.com/riskibarqy/tournament-scoring/internal/domain/user"
	"github.com/riskibarqy/tournament-scoring/internal/infrastructure/account/codehash"
	"github.com/riskibarqy/tournament-scoring/internal/infrastructure/repository/memory"
)

func newAuthServiceForTest(t *testing.T) (*AuthService, *memory.Store) {
	t.Helper()

	store := memory.NewStore()
	codes := memory.NewAccessCodeRepository(store)
	seed := []struct {
		id     string
		code   string
		role   user.Role
		teamID string
		active bool
	}{
		{"code-admin", "admin-secret", user.RoleAdmin, "", true},
		{"code-alpha", "alpha-squad", user.RolePlayer, "team-alpha", true},
		{"code-retired", "retired-code", user.RolePlayer, "team-alpha", false},
	}
	for _, s := range seed {
		hash, err := codehash.Hash(s.code)
		if err != nil {
			t.Fatalf("hash code: %v", err)
		}
		if err := codes.Create(context.Background(), accesscode.AccessCode{
			ID:       s.id,
			CodeHash: hash,
			Role:     s.role,
			TeamID:   s.teamID,
			Active:   s.active,
		}); err != nil {
			t.Fatalf("seed code: %v", err)
		}
	}

	svc := NewAuthService(codes, memory.NewSessionRepository(store), newStubTokenIssuer(), &sequentialIDs{prefix: "sess"}, testLogger())
	return svc, store
}

func TestAuthService_LoginAndVerify(t *testing.T) {
	t.Parallel()

	svc, _ := newAuthServiceForTest(t)
	ctx := context.Background()

	login, err := svc.Login(ctx, " alpha-squad ")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if login.Principal.Role != user.RolePlayer || login.Principal.TeamID != "team-alpha" || login.Principal.UserID != "code-alpha" {
		t.Fatalf("unexpected principal: %+v", login.Principal)
	}

	principal, err := svc.VerifyAccessToken(ctx, login.Token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if principal != login.Principal {
		t.Fatalf("expected %+v, got %+v", login.Principal, principal)
	}
}

func TestAuthService_LoginRejectsUnknownAndInactiveCodes(t *testing.T) {
	t.Parallel()

	svc, _ := newAuthServiceForTest(t)
	ctx := context.Background()

	for _, code := range []string{"wrong-code", "retired-code"} {
		if _, err := svc.Login(ctx, code); !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("code %q: expected ErrUnauthorized, got %v", code, err)
		}
	}
	if _, err := svc.Login(ctx, "  "); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for blank code, got %v", err)
	}
}

func TestAuthService_AdminHasNoTeam(t *testing.T) {
	t.Parallel()

	svc, _ := newAuthServiceForTest(t)

	login, err := svc.Login(context.Background(), "admin-secret")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if !login.Principal.IsAdmin() || login.Principal.TeamID != "" {
		t.Fatalf("unexpected admin principal: %+v", login.Principal)
	}
}

func TestAuthService_LogoutEndsSession(t *testing.T) {
	t.Parallel()

	svc, _ := newAuthServiceForTest(t)
	ctx := context.Background()

	login, err := svc.Login(ctx, "admin-secret")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if err := svc.Logout(ctx, login.Principal); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, err := svc.VerifyAccessToken(ctx, login.Token); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized after logout, got %v", err)
	}
	if err := svc.Logout(ctx, user.Principal{}); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized without session, got %v", err)
	}
}

func TestAuthService_VerifyRejectsUnknownToken(t *testing.T) {
	t.Parallel()

	svc, _ := newAuthServiceForTest(t)
	if _, err := svc.VerifyAccessToken(context.Background(), "forged"); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}
