package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/riskibarqy/tournament-scoring/internal/domain/screenshot"
	"github.com/riskibarqy/tournament-scoring/internal/infrastructure/repository/memory"
)

// pausingScreenshotRepo holds the first List call after it has read rows
// until release is closed.
type pausingScreenshotRepo struct {
	*memory.ScreenshotRepository
	once    sync.Once
	listed  chan struct{}
	release chan struct{}
}

func (r *pausingScreenshotRepo) List(ctx context.Context, filter screenshot.Filter) ([]screenshot.Screenshot, error) {
	items, err := r.ScreenshotRepository.List(ctx, filter)
	r.once.Do(func() {
		close(r.listed)
		<-r.release
	})
	return items, err
}

func seedScreenshot(t *testing.T, f *fixture, id, teamID string, day int, placement, kills *int, points int) {
	t.Helper()

	_, err := f.screenshots.CreateWithinLimit(context.Background(), screenshot.Screenshot{
		ID:        id,
		TeamID:    teamID,
		PlayerID:  "code-" + teamID,
		Day:       day,
		ImageKey:  "screenshots/" + teamID + "/" + id + ".png",
		ImageURL:  "https://cdn.test/" + id + ".png",
		Placement: placement,
		Kills:     kills,
		Points:    points,
		CreatedAt: time.Now().UTC(),
	}, screenshot.MaxPerTeam)
	if err != nil {
		t.Fatalf("seed screenshot: %v", err)
	}
}

func TestStandingService_ListByTournamentAggregates(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	seedScreenshot(t, f, "s1", f.alpha.ID, 1, intPtr(1), intPtr(5), 15)
	seedScreenshot(t, f, "s2", f.alpha.ID, 2, intPtr(4), intPtr(2), 6)
	seedScreenshot(t, f, "s3", f.bravo.ID, 1, intPtr(1), intPtr(12), 22)
	seedScreenshot(t, f, "s4", f.bravo.ID, 1, nil, intPtr(3), 3)

	svc := NewStandingService(f.tournaments, f.teams, f.screenshots, time.Minute, testLogger())
	rows, err := svc.ListByTournament(context.Background(), f.tournament.ID)
	if err != nil {
		t.Fatalf("list standings: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected two rows, got %d", len(rows))
	}

	top := rows[0]
	if top.TeamID != f.bravo.ID || top.Position != 1 || top.TotalPoints != 25 || top.TotalKills != 15 || top.Wins != 1 || top.MatchesPlayed != 2 {
		t.Fatalf("unexpected leader: %+v", top)
	}
	second := rows[1]
	if second.TeamID != f.alpha.ID || second.Position != 2 || second.TotalPoints != 21 || second.TotalKills != 7 || second.Wins != 1 {
		t.Fatalf("unexpected second row: %+v", second)
	}
}

func TestStandingService_CachesUntilInvalidated(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	seedScreenshot(t, f, "s1", f.alpha.ID, 1, intPtr(2), intPtr(0), 6)

	svc := NewStandingService(f.tournaments, f.teams, f.screenshots, time.Hour, testLogger())
	ctx := context.Background()

	first, err := svc.ListByTournament(ctx, f.tournament.ID)
	if err != nil {
		t.Fatalf("list standings: %v", err)
	}
	if first[0].TotalPoints != 6 {
		t.Fatalf("unexpected first read: %+v", first[0])
	}

	seedScreenshot(t, f, "s2", f.alpha.ID, 1, intPtr(1), intPtr(0), 10)

	cached, err := svc.ListByTournament(ctx, f.tournament.ID)
	if err != nil {
		t.Fatalf("list standings: %v", err)
	}
	if cached[0].TotalPoints != 6 {
		t.Fatalf("expected cached read, got %+v", cached[0])
	}

	svc.InvalidateStandings(f.tournament.ID)
	fresh, err := svc.ListByTournament(ctx, f.tournament.ID)
	if err != nil {
		t.Fatalf("list standings: %v", err)
	}
	if fresh[0].TotalPoints != 16 || fresh[0].Wins != 1 {
		t.Fatalf("expected recomputed standings, got %+v", fresh[0])
	}
}

func TestStandingService_ReturnsCopies(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	svc := NewStandingService(f.tournaments, f.teams, f.screenshots, time.Hour, testLogger())
	ctx := context.Background()

	rows, err := svc.ListByTournament(ctx, f.tournament.ID)
	if err != nil {
		t.Fatalf("list standings: %v", err)
	}
	rows[0].TotalPoints = 999

	again, err := svc.ListByTournament(ctx, f.tournament.ID)
	if err != nil {
		t.Fatalf("list standings: %v", err)
	}
	if again[0].TotalPoints != 0 {
		t.Fatalf("cached rows were mutated: %+v", again[0])
	}
}

func TestStandingService_UnknownTournament(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	svc := NewStandingService(f.tournaments, f.teams, f.screenshots, time.Hour, testLogger())
	if _, err := svc.ListByTournament(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestStandingService_InvalidateDuringLoadIsNotCachedStale(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	repo := &pausingScreenshotRepo{
		ScreenshotRepository: f.screenshots,
		listed:               make(chan struct{}),
		release:              make(chan struct{}),
	}
	svc := NewStandingService(f.tournaments, f.teams, repo, time.Hour, testLogger())
	ctx := context.Background()

	done := make(chan error, 1)
	go func() {
		_, err := svc.ListByTournament(ctx, f.tournament.ID)
		done <- err
	}()

	<-repo.listed
	seedScreenshot(t, f, "s1", f.alpha.ID, 1, intPtr(1), intPtr(5), 15)
	svc.InvalidateStandings(f.tournament.ID)
	close(repo.release)
	if err := <-done; err != nil {
		t.Fatalf("list standings: %v", err)
	}

	rows, err := svc.ListByTournament(ctx, f.tournament.ID)
	if err != nil {
		t.Fatalf("list standings: %v", err)
	}
	for _, row := range rows {
		if row.TeamID == f.alpha.ID && row.TotalPoints != 15 {
			t.Fatalf("alpha total = %d, want 15", row.TotalPoints)
		}
	}
}
