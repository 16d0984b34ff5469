package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/riskibarqy/tournament-scoring/internal/domain/session"
	"github.com/riskibarqy/tournament-scoring/internal/domain/team"
	"github.com/riskibarqy/tournament-scoring/internal/domain/tournament"
	"github.com/riskibarqy/tournament-scoring/internal/domain/user"
	"github.com/riskibarqy/tournament-scoring/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/tournament-scoring/internal/platform/logging"
)

type sequentialIDs struct {
	prefix string
	next   atomic.Int64
}

func (g *sequentialIDs) NewID() (string, error) {
	return fmt.Sprintf("%s-%03d", g.prefix, g.next.Add(1)), nil
}

type stubObjectStore struct {
	mu      sync.Mutex
	puts    []string
	deletes []string
	putErr  error
}

func (s *stubObjectStore) Put(_ context.Context, key string, body io.Reader, _ int64, _ string) (StoredObject, error) {
	if s.putErr != nil {
		return StoredObject{}, s.putErr
	}
	if _, err := io.Copy(io.Discard, body); err != nil {
		return StoredObject{}, err
	}
	s.mu.Lock()
	s.puts = append(s.puts, key)
	s.mu.Unlock()
	return StoredObject{Key: key, URL: "https://cdn.test/" + key}, nil
}

func (s *stubObjectStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	s.deletes = append(s.deletes, key)
	s.mu.Unlock()
	return nil
}

// stubAnalyzer answers with the same result for every image unless a
// per-url override exists.
type stubAnalyzer struct {
	mu       sync.Mutex
	result   AnalysisResult
	byURL    map[string]AnalysisResult
	err      error
	requests []string
}

func (a *stubAnalyzer) Analyze(_ context.Context, imageURL string) (AnalysisResult, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.requests = append(a.requests, imageURL)
	if a.err != nil {
		return AnalysisResult{}, a.err
	}
	if out, ok := a.byURL[imageURL]; ok {
		return out, nil
	}
	return a.result, nil
}

type recordingInvalidator struct {
	mu    sync.Mutex
	calls []string
}

func (r *recordingInvalidator) InvalidateStandings(tournamentID string) {
	r.mu.Lock()
	r.calls = append(r.calls, tournamentID)
	r.mu.Unlock()
}

func (r *recordingInvalidator) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

type stubTokenIssuer struct {
	issued map[string]TokenClaims
}

func newStubTokenIssuer() *stubTokenIssuer {
	return &stubTokenIssuer{issued: make(map[string]TokenClaims)}
}

func (s *stubTokenIssuer) Issue(_ context.Context, item session.Session) (string, time.Time, error) {
	expiresAt := time.Now().Add(time.Hour)
	token := "token-" + item.ID
	s.issued[token] = TokenClaims{
		SessionID: item.ID,
		UserID:    item.UserID,
		Role:      item.Role,
		TeamID:    item.TeamID,
		ExpiresAt: expiresAt,
	}
	return token, expiresAt, nil
}

func (s *stubTokenIssuer) Verify(_ context.Context, token string) (TokenClaims, error) {
	claims, ok := s.issued[token]
	if !ok {
		return TokenClaims{}, errors.New("unknown token")
	}
	return claims, nil
}

type fixture struct {
	store       *memory.Store
	tournaments *memory.TournamentRepository
	teams       *memory.TeamRepository
	screenshots *memory.ScreenshotRepository
	tournament  tournament.Tournament
	alpha       team.Team
	bravo       team.Team
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := memory.NewStore()
	f := &fixture{
		store:       store,
		tournaments: memory.NewTournamentRepository(store),
		teams:       memory.NewTeamRepository(store),
		screenshots: memory.NewScreenshotRepository(store),
	}

	ctx := context.Background()
	var err error
	f.tournament, err = f.tournaments.Create(ctx, tournament.Tournament{
		ID:           "tour-1",
		Name:         "Spring Cup",
		TotalMatches: tournament.DefaultTotalMatches,
		CreatedAt:    time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("seed tournament: %v", err)
	}
	f.alpha, err = f.teams.Create(ctx, team.Team{ID: "team-alpha", TournamentID: "tour-1", Name: "Alpha", CreatedAt: time.Now().UTC()})
	if err != nil {
		t.Fatalf("seed team alpha: %v", err)
	}
	f.bravo, err = f.teams.Create(ctx, team.Team{ID: "team-bravo", TournamentID: "tour-1", Name: "Bravo", CreatedAt: time.Now().UTC()})
	if err != nil {
		t.Fatalf("seed team bravo: %v", err)
	}
	return f
}

func playerOf(teamID string) user.Principal {
	return user.Principal{UserID: "code-" + teamID, SessionID: "sess-" + teamID, Role: user.RolePlayer, TeamID: teamID}
}

func adminPrincipal() user.Principal {
	return user.Principal{UserID: "code-admin", SessionID: "sess-admin", Role: user.RoleAdmin}
}

func pngFiles(n int) []FileUpload {
	files := make([]FileUpload, 0, n)
	for i := 0; i < n; i++ {
		files = append(files, FileUpload{
			Filename:    fmt.Sprintf("match-%02d.png", i+1),
			ContentType: "image/png",
			Size:        4,
			Body:        strings.NewReader("\x89PNG"),
		})
	}
	return files
}

func intPtr(v int) *int {
	return &v
}

func testLogger() *logging.Logger {
	return logging.NewNop()
}
