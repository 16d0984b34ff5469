package usecase

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/panjf2000/ants/v2"
	"github.com/riskibarqy/tournament-scoring/internal/domain/scoring"
	"github.com/riskibarqy/tournament-scoring/internal/domain/screenshot"
	"github.com/riskibarqy/tournament-scoring/internal/domain/tournament"
	"github.com/riskibarqy/tournament-scoring/internal/platform/logging"
	"go.opentelemetry.io/otel/attribute"
)

const (
	reanalysisStatusUpdated   = "updated"
	reanalysisStatusUnchanged = "unchanged"
	reanalysisStatusFailed    = "failed"

	defaultReanalysisWorkers = 4
	maxReanalysisWorkers     = 16
)

type ReanalysisResult struct {
	Candidates     int                    `json:"candidates"`
	UpdatedCount   int                    `json:"updated_count"`
	UnchangedCount int                    `json:"unchanged_count"`
	FailedCount    int                    `json:"failed_count"`
	WorkerCount    int                    `json:"worker_count"`
	Items          []ReanalysisItemResult `json:"items"`
}

type ReanalysisItemResult struct {
	ScreenshotID string `json:"screenshot_id"`
	TeamID       string `json:"team_id"`
	Status       string `json:"status"`
	Points       int    `json:"points"`
	Message      string `json:"message,omitempty"`
}

// ReanalysisService retries image analysis for screenshots whose placement
// or kills could not be extracted at upload time.
type ReanalysisService struct {
	tournamentRepo tournament.Repository
	screenshotRepo screenshot.Repository
	analyzer       ScreenshotAnalyzer
	standings      StandingsInvalidator
	workers        int
	logger         *logging.Logger
}

func NewReanalysisService(
	tournamentRepo tournament.Repository,
	screenshotRepo screenshot.Repository,
	analyzer ScreenshotAnalyzer,
	standings StandingsInvalidator,
	workers int,
	logger *logging.Logger,
) *ReanalysisService {
	if logger == nil {
		logger = logging.Default()
	}
	if standings == nil {
		standings = noopInvalidator{}
	}
	return &ReanalysisService{
		tournamentRepo: tournamentRepo,
		screenshotRepo: screenshotRepo,
		analyzer:       analyzer,
		standings:      standings,
		workers:        workers,
		logger:         logger,
	}
}

func (s *ReanalysisService) Reanalyze(ctx context.Context, tournamentID string) (ReanalysisResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ReanalysisService.Reanalyze", attribute.String("tournament_id", tournamentID))
	defer span.End()

	if _, err := requireTournament(ctx, s.tournamentRepo, tournamentID); err != nil {
		return ReanalysisResult{}, err
	}

	candidates, err := s.screenshotRepo.List(ctx, screenshot.Filter{
		TournamentID:   tournamentID,
		OnlyUnanalyzed: true,
	})
	if err != nil {
		return ReanalysisResult{}, fmt.Errorf("list unanalyzed screenshots: %w", err)
	}

	workerCount := normalizeReanalysisWorkers(s.workers, len(candidates))
	result := ReanalysisResult{
		Candidates:  len(candidates),
		WorkerCount: workerCount,
		Items:       make([]ReanalysisItemResult, 0, len(candidates)),
	}
	if len(candidates) == 0 {
		return result, nil
	}

	pool, err := ants.NewPool(workerCount)
	if err != nil {
		return ReanalysisResult{}, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	results := make(chan ReanalysisItemResult, len(candidates))
	var updated, unchanged, failed atomic.Int32
	var workers sync.WaitGroup
	for _, item := range candidates {
		item := item
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()

			row := s.reanalyzeOne(ctx, item)
			switch row.Status {
			case reanalysisStatusUpdated:
				updated.Add(1)
			case reanalysisStatusUnchanged:
				unchanged.Add(1)
			default:
				failed.Add(1)
			}
			results <- row
		}); err != nil {
			workers.Done()
			return ReanalysisResult{}, fmt.Errorf("submit reanalysis task: %w", err)
		}
	}

	workers.Wait()
	close(results)
	for row := range results {
		result.Items = append(result.Items, row)
	}
	sort.Slice(result.Items, func(i, j int) bool {
		return result.Items[i].ScreenshotID < result.Items[j].ScreenshotID
	})

	result.UpdatedCount = int(updated.Load())
	result.UnchangedCount = int(unchanged.Load())
	result.FailedCount = int(failed.Load())
	if result.UpdatedCount > 0 {
		s.standings.InvalidateStandings(tournamentID)
	}

	s.logger.InfoContext(ctx, "reanalysis finished",
		"tournament_id", tournamentID,
		"candidates", result.Candidates,
		"updated", result.UpdatedCount,
		"unchanged", result.UnchangedCount,
		"failed", result.FailedCount,
	)
	return result, nil
}

func (s *ReanalysisService) reanalyzeOne(ctx context.Context, item screenshot.Screenshot) ReanalysisItemResult {
	row := ReanalysisItemResult{
		ScreenshotID: item.ID,
		TeamID:       item.TeamID,
		Points:       item.Points,
	}

	analysis, err := s.analyzer.Analyze(ctx, item.ImageURL)
	if err != nil {
		row.Status = reanalysisStatusFailed
		row.Message = err.Error()
		return row
	}

	placement, kills := item.Placement, item.Kills
	if placement == nil {
		placement = sanitizePlacement(analysis.Placement)
	}
	if kills == nil {
		kills = sanitizeKills(analysis.Kills)
	}
	if samePointer(placement, item.Placement) && samePointer(kills, item.Kills) {
		row.Status = reanalysisStatusUnchanged
		return row
	}

	points := scoring.Calculate(placement, kills)
	_, replaced, err := s.screenshotRepo.ReplaceResult(ctx, item.ID, item.Placement, item.Kills, placement, kills, points)
	if err != nil {
		row.Status = reanalysisStatusFailed
		row.Message = err.Error()
		return row
	}
	if !replaced {
		// Deleted or corrected by an admin while the analyzer ran.
		row.Status = reanalysisStatusUnchanged
		row.Message = "screenshot changed during reanalysis"
		return row
	}

	row.Status = reanalysisStatusUpdated
	row.Points = points
	return row
}

func samePointer(a, b *int) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func normalizeReanalysisWorkers(requested, tasks int) int {
	workers := requested
	if workers <= 0 {
		workers = defaultReanalysisWorkers
	}
	if workers > maxReanalysisWorkers {
		workers = maxReanalysisWorkers
	}
	if tasks > 0 && workers > tasks {
		workers = tasks
	}
	return workers
}
