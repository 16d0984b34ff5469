package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/riskibarqy/tournament-scoring/internal/domain/accesscode"
	"github.com/riskibarqy/tournament-scoring/internal/domain/screenshot"
	"github.com/riskibarqy/tournament-scoring/internal/domain/session"
	"github.com/riskibarqy/tournament-scoring/internal/domain/team"
	"github.com/riskibarqy/tournament-scoring/internal/domain/user"
	accesscodemock "github.com/riskibarqy/tournament-scoring/internal/mocks/domain/accesscode"
	screenshotmock "github.com/riskibarqy/tournament-scoring/internal/mocks/domain/screenshot"
	sessionmock "github.com/riskibarqy/tournament-scoring/internal/mocks/domain/session"
	teammock "github.com/riskibarqy/tournament-scoring/internal/mocks/domain/team"
	"github.com/stretchr/testify/mock"
)

var errStorage = errors.New("storage offline")

func TestAuthService_LoginPropagatesRepositoryErrors(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	codes := accesscodemock.NewRepository(t)
	codes.On("Validate", mock.Anything, "alpha-code").Return(accesscode.Grant{}, false, errStorage).Once()
	svc := NewAuthService(codes, sessionmock.NewRepository(t), newStubTokenIssuer(), &sequentialIDs{prefix: "sess"}, testLogger())
	if _, err := svc.Login(ctx, "alpha-code"); !errors.Is(err, errStorage) {
		t.Fatalf("expected storage error from code validation, got %v", err)
	}

	codes = accesscodemock.NewRepository(t)
	codes.On("Validate", mock.Anything, "alpha-code").
		Return(accesscode.Grant{CodeID: "code-1", Role: user.RolePlayer, TeamID: "team-alpha"}, true, nil).Once()
	sessions := sessionmock.NewRepository(t)
	sessions.On("Create", mock.Anything, mock.Anything).Return(errStorage).Once()
	svc = NewAuthService(codes, sessions, newStubTokenIssuer(), &sequentialIDs{prefix: "sess"}, testLogger())
	if _, err := svc.Login(ctx, "alpha-code"); !errors.Is(err, errStorage) {
		t.Fatalf("expected storage error from session create, got %v", err)
	}
}

func TestAuthService_VerifyPropagatesSessionLookupError(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	codes := accesscodemock.NewRepository(t)
	codes.On("Validate", mock.Anything, "admin-code").
		Return(accesscode.Grant{CodeID: "code-admin", Role: user.RoleAdmin}, true, nil).Once()
	sessions := sessionmock.NewRepository(t)
	sessions.On("Create", mock.Anything, mock.Anything).Return(nil).Once()
	sessions.On("GetByID", mock.Anything, "sess-001").Return(session.Session{}, false, errStorage).Once()

	svc := NewAuthService(codes, sessions, newStubTokenIssuer(), &sequentialIDs{prefix: "sess"}, testLogger())
	login, err := svc.Login(ctx, "admin-code")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if _, err := svc.VerifyAccessToken(ctx, login.Token); !errors.Is(err, errStorage) {
		t.Fatalf("expected storage error, got %v", err)
	}
}

func TestTeamService_DeleteStopsWhenScreenshotListFails(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newFixture(t)
	teams := teammock.NewRepository(t)
	shots := screenshotmock.NewRepository(t)
	store := &stubObjectStore{}

	teams.On("GetByID", mock.Anything, "team-alpha").Return(f.alpha, true, nil).Once()
	shots.On("List", mock.Anything, screenshot.Filter{TournamentID: "tour-1", TeamID: "team-alpha"}).
		Return(nil, errStorage).Once()

	svc := NewTeamService(f.tournaments, teams, shots, store, &sequentialIDs{prefix: "team"}, nil, 0, testLogger())
	if err := svc.Delete(ctx, "team-alpha"); !errors.Is(err, errStorage) {
		t.Fatalf("expected storage error, got %v", err)
	}
	teams.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	if len(store.deletes) != 0 {
		t.Fatalf("no objects should be removed, got %v", store.deletes)
	}
}

func TestTeamService_DeleteReportsVanishedTeam(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newFixture(t)
	teams := teammock.NewRepository(t)
	shots := screenshotmock.NewRepository(t)

	teams.On("GetByID", mock.Anything, "team-alpha").Return(f.alpha, true, nil).Once()
	teams.On("Delete", mock.Anything, "team-alpha").Return(false, nil).Once()
	shots.On("List", mock.Anything, mock.Anything).Return([]screenshot.Screenshot{}, nil).Once()

	svc := NewTeamService(f.tournaments, teams, shots, &stubObjectStore{}, &sequentialIDs{prefix: "team"}, nil, 0, testLogger())
	if err := svc.Delete(ctx, "team-alpha"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestScreenshotService_UploadPropagatesCountError(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newFixture(t)
	teams := teammock.NewRepository(t)
	shots := screenshotmock.NewRepository(t)
	analyzer := &stubAnalyzer{}

	teams.On("GetByID", mock.Anything, "team-alpha").Return(f.alpha, true, nil).Once()
	shots.On("CountByTeam", mock.Anything, "team-alpha").Return(0, errStorage).Once()

	svc := NewScreenshotService(f.tournaments, teams, shots, &stubObjectStore{}, analyzer, &sequentialIDs{prefix: "shot"}, nil, 1<<20, testLogger())
	_, err := svc.Upload(ctx, UploadScreenshotsInput{
		Principal: playerOf("team-alpha"),
		TeamID:    "team-alpha",
		Day:       1,
		Files:     pngFiles(1),
	})
	if !errors.Is(err, errStorage) {
		t.Fatalf("expected storage error, got %v", err)
	}
	if len(analyzer.requests) != 0 {
		t.Fatalf("analyzer must not run, got %d calls", len(analyzer.requests))
	}
}

func TestScreenshotService_UploadLookupErrorIsNotForbidden(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	teams := teammock.NewRepository(t)
	teams.On("GetByID", mock.Anything, "team-bravo").Return(team.Team{}, false, errStorage).Once()

	svc := NewScreenshotService(f.tournaments, teams, screenshotmock.NewRepository(t), &stubObjectStore{}, &stubAnalyzer{}, &sequentialIDs{prefix: "shot"}, nil, 1<<20, testLogger())
	_, err := svc.Upload(context.Background(), UploadScreenshotsInput{
		Principal: playerOf("team-alpha"),
		TeamID:    "team-bravo",
		Day:       2,
		Files:     pngFiles(1),
	})
	if !errors.Is(err, errStorage) || errors.Is(err, ErrForbidden) {
		t.Fatalf("expected storage error only, got %v", err)
	}
}
