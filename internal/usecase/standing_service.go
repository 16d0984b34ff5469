package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/riskibarqy/tournament-scoring/internal/domain/scoring"
	"github.com/riskibarqy/tournament-scoring/internal/domain/screenshot"
	"github.com/riskibarqy/tournament-scoring/internal/domain/team"
	"github.com/riskibarqy/tournament-scoring/internal/domain/tournament"
	"github.com/riskibarqy/tournament-scoring/internal/platform/cache"
	"github.com/riskibarqy/tournament-scoring/internal/platform/logging"
	"github.com/sourcegraph/conc/pool"
	"go.opentelemetry.io/otel/attribute"
)

const standingsCachePrefix = "standings:"

type StandingService struct {
	tournamentRepo tournament.Repository
	teamRepo       team.Repository
	screenshotRepo screenshot.Repository
	cache          *cache.Store[[]scoring.Standing]
	logger         *logging.Logger
}

func NewStandingService(
	tournamentRepo tournament.Repository,
	teamRepo team.Repository,
	screenshotRepo screenshot.Repository,
	ttl time.Duration,
	logger *logging.Logger,
) *StandingService {
	if logger == nil {
		logger = logging.Default()
	}
	return &StandingService{
		tournamentRepo: tournamentRepo,
		teamRepo:       teamRepo,
		screenshotRepo: screenshotRepo,
		cache:          cache.NewStore[[]scoring.Standing](ttl),
		logger:         logger,
	}
}

// ListByTournament returns the tournament table ordered by total points.
func (s *StandingService) ListByTournament(ctx context.Context, tournamentID string) ([]scoring.Standing, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.StandingService.ListByTournament", attribute.String("tournament_id", tournamentID))
	defer span.End()

	if _, err := requireTournament(ctx, s.tournamentRepo, tournamentID); err != nil {
		return nil, err
	}

	rows, err := s.cache.GetOrLoad(ctx, standingsCachePrefix+tournamentID, func(ctx context.Context) ([]scoring.Standing, error) {
		return s.compute(ctx, tournamentID)
	})
	if err != nil {
		return nil, err
	}

	out := make([]scoring.Standing, len(rows))
	copy(out, rows)
	return out, nil
}

func (s *StandingService) InvalidateStandings(tournamentID string) {
	if tournamentID == "" {
		s.cache.DeletePrefix(standingsCachePrefix)
		return
	}
	s.cache.Delete(standingsCachePrefix + tournamentID)
}

func (s *StandingService) compute(ctx context.Context, tournamentID string) ([]scoring.Standing, error) {
	var (
		teams []team.Team
		shots []screenshot.Screenshot
	)

	p := pool.New().WithContext(ctx).WithCancelOnError()
	p.Go(func(ctx context.Context) error {
		items, err := s.teamRepo.ListByTournament(ctx, tournamentID)
		if err != nil {
			return fmt.Errorf("list teams by tournament: %w", err)
		}
		teams = items
		return nil
	})
	p.Go(func(ctx context.Context) error {
		items, err := s.screenshotRepo.List(ctx, screenshot.Filter{TournamentID: tournamentID})
		if err != nil {
			return fmt.Errorf("list screenshots by tournament: %w", err)
		}
		shots = items
		return nil
	})
	if err := p.Wait(); err != nil {
		return nil, err
	}

	entries := make([]scoring.TeamEntry, 0, len(teams))
	for _, t := range teams {
		entries = append(entries, scoring.TeamEntry{ID: t.ID, Name: t.Name, LogoURL: t.LogoURL})
	}
	results := make([]scoring.MatchResult, 0, len(shots))
	for _, shot := range shots {
		results = append(results, scoring.MatchResult{
			TeamID:       shot.TeamID,
			Placement:    shot.Placement,
			Kills:        shot.Kills,
			StoredPoints: shot.Points,
		})
	}

	rows, mismatches := scoring.Aggregate(entries, results)
	for _, m := range mismatches {
		s.logger.WarnContext(ctx, "stored screenshot points differ from computed points",
			"tournament_id", tournamentID,
			"team_id", m.TeamID,
			"stored", m.Stored,
			"computed", m.Computed,
		)
	}
	return rows, nil
}
