package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/tournament-scoring/internal/domain/scoring"
	"github.com/riskibarqy/tournament-scoring/internal/domain/screenshot"
	"github.com/riskibarqy/tournament-scoring/internal/domain/team"
	"github.com/riskibarqy/tournament-scoring/internal/domain/tournament"
	"github.com/riskibarqy/tournament-scoring/internal/domain/user"
	"github.com/riskibarqy/tournament-scoring/internal/platform/logging"
	"go.opentelemetry.io/otel/attribute"
)

type UploadScreenshotsInput struct {
	Principal user.Principal
	TeamID    string
	Day       int
	Files     []FileUpload
}

// UploadOutcome reports one file of a batch. Exactly one of Screenshot and
// Err is set.
type UploadOutcome struct {
	Filename   string
	Screenshot *screenshot.Screenshot
	Err        error
}

type UploadScreenshotsResult struct {
	Outcomes []UploadOutcome
	Accepted int
	Failed   int
}

type CorrectScreenshotInput struct {
	ScreenshotID string
	Placement    *int
	Kills        *int
}

type ScreenshotService struct {
	tournamentRepo tournament.Repository
	teamRepo       team.Repository
	screenshotRepo screenshot.Repository
	store          ObjectStore
	analyzer       ScreenshotAnalyzer
	ids            IDGenerator
	standings      StandingsInvalidator
	maxUploadBytes int64
	logger         *logging.Logger
	now            func() time.Time
}

func NewScreenshotService(
	tournamentRepo tournament.Repository,
	teamRepo team.Repository,
	screenshotRepo screenshot.Repository,
	store ObjectStore,
	analyzer ScreenshotAnalyzer,
	ids IDGenerator,
	standings StandingsInvalidator,
	maxUploadBytes int64,
	logger *logging.Logger,
) *ScreenshotService {
	if logger == nil {
		logger = logging.Default()
	}
	if standings == nil {
		standings = noopInvalidator{}
	}
	return &ScreenshotService{
		tournamentRepo: tournamentRepo,
		teamRepo:       teamRepo,
		screenshotRepo: screenshotRepo,
		store:          store,
		analyzer:       analyzer,
		ids:            ids,
		standings:      standings,
		maxUploadBytes: maxUploadBytes,
		logger:         logger,
		now:            time.Now,
	}
}

// Upload stores, analyzes and records each file in order. A failure after
// the image was stored leaves the object in place and only fails that file.
func (s *ScreenshotService) Upload(ctx context.Context, input UploadScreenshotsInput) (UploadScreenshotsResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScreenshotService.Upload",
		attribute.String("team_id", input.TeamID),
		attribute.Int("day", input.Day),
		attribute.Int("files", len(input.Files)),
	)
	defer span.End()

	if err := screenshot.ValidateDay(input.Day); err != nil {
		return UploadScreenshotsResult{}, err
	}
	if len(input.Files) == 0 {
		return UploadScreenshotsResult{}, fmt.Errorf("%w: at least one file is required", ErrInvalidInput)
	}
	if input.Principal.UserID == "" {
		return UploadScreenshotsResult{}, fmt.Errorf("%w: missing caller", ErrUnauthorized)
	}

	teamItem, err := requireTeam(ctx, s.teamRepo, input.TeamID)
	if err != nil {
		return UploadScreenshotsResult{}, err
	}
	if !input.Principal.CanUploadFor(teamItem.ID) {
		return UploadScreenshotsResult{}, fmt.Errorf("%w: cannot upload for team=%s", ErrForbidden, teamItem.ID)
	}

	existing, err := s.screenshotRepo.CountByTeam(ctx, teamItem.ID)
	if err != nil {
		return UploadScreenshotsResult{}, fmt.Errorf("count team screenshots: %w", err)
	}
	if remaining := screenshot.RemainingSlots(existing); len(input.Files) > remaining {
		return UploadScreenshotsResult{}, fmt.Errorf("%w: team=%s has %d, batch of %d", screenshot.ErrLimitReached, teamItem.ID, existing, len(input.Files))
	}

	result := UploadScreenshotsResult{Outcomes: make([]UploadOutcome, 0, len(input.Files))}
	for _, file := range input.Files {
		outcome := UploadOutcome{Filename: file.Filename}
		shot, err := s.uploadOne(ctx, input.Principal, teamItem, input.Day, file)
		if err != nil {
			outcome.Err = err
			result.Failed++
			s.logger.WarnContext(ctx, "screenshot upload failed",
				"team_id", teamItem.ID,
				"day", input.Day,
				"filename", file.Filename,
				"error", err,
			)
		} else {
			outcome.Screenshot = &shot
			result.Accepted++
		}
		result.Outcomes = append(result.Outcomes, outcome)
	}

	if result.Accepted > 0 {
		s.standings.InvalidateStandings(teamItem.TournamentID)
	}
	s.logger.InfoContext(ctx, "screenshot batch processed",
		"team_id", teamItem.ID,
		"day", input.Day,
		"accepted", result.Accepted,
		"failed", result.Failed,
	)
	return result, nil
}

func (s *ScreenshotService) uploadOne(ctx context.Context, principal user.Principal, teamItem team.Team, day int, file FileUpload) (screenshot.Screenshot, error) {
	ext, ok := imageExtension(file)
	if !ok {
		return screenshot.Screenshot{}, fmt.Errorf("%w: %q is not an image", ErrInvalidInput, file.ContentType)
	}
	if file.Size <= 0 {
		return screenshot.Screenshot{}, fmt.Errorf("%w: file is empty", ErrInvalidInput)
	}
	if s.maxUploadBytes > 0 && file.Size > s.maxUploadBytes {
		return screenshot.Screenshot{}, fmt.Errorf("%w: file exceeds %d bytes", ErrInvalidInput, s.maxUploadBytes)
	}

	id, err := s.ids.NewID()
	if err != nil {
		return screenshot.Screenshot{}, fmt.Errorf("generate screenshot id: %w", err)
	}
	key := fmt.Sprintf("screenshots/%s/%d/%s%s", teamItem.ID, day, id, ext)

	stored, err := s.store.Put(ctx, key, file.Body, file.Size, file.ContentType)
	if err != nil {
		return screenshot.Screenshot{}, fmt.Errorf("%w: store screenshot: %v", ErrDependencyUnavailable, err)
	}

	analysis, err := s.analyzer.Analyze(ctx, stored.URL)
	if err != nil {
		return screenshot.Screenshot{}, fmt.Errorf("%w: analyze screenshot: %v", ErrDependencyUnavailable, err)
	}

	item := screenshot.Screenshot{
		ID:           id,
		TeamID:       teamItem.ID,
		TournamentID: teamItem.TournamentID,
		PlayerID:     principal.UserID,
		Day:          day,
		ImageKey:     stored.Key,
		ImageURL:     stored.URL,
		Placement:    sanitizePlacement(analysis.Placement),
		Kills:        sanitizeKills(analysis.Kills),
		CreatedAt:    s.now().UTC(),
	}
	item.Points = scoring.Calculate(item.Placement, item.Kills)
	if err := item.Validate(); err != nil {
		return screenshot.Screenshot{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	created, err := s.screenshotRepo.CreateWithinLimit(ctx, item, screenshot.MaxPerTeam)
	if err != nil {
		if errors.Is(err, screenshot.ErrLimitReached) {
			return screenshot.Screenshot{}, err
		}
		return screenshot.Screenshot{}, fmt.Errorf("create screenshot: %w", err)
	}
	return created, nil
}

// Correct overwrites the extracted values; fields left nil keep their current value.
func (s *ScreenshotService) Correct(ctx context.Context, input CorrectScreenshotInput) (screenshot.Screenshot, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScreenshotService.Correct", attribute.String("screenshot_id", input.ScreenshotID))
	defer span.End()

	if input.Placement == nil && input.Kills == nil {
		return screenshot.Screenshot{}, fmt.Errorf("%w: placement or kills is required", ErrInvalidInput)
	}
	if input.Placement != nil && !screenshot.ValidPlacement(*input.Placement) {
		return screenshot.Screenshot{}, fmt.Errorf("%w: placement must be between 1 and %d", ErrInvalidInput, screenshot.MaxPlacement)
	}
	if input.Kills != nil && !screenshot.ValidKills(*input.Kills) {
		return screenshot.Screenshot{}, fmt.Errorf("%w: kills must be between 0 and %d", ErrInvalidInput, screenshot.MaxKills)
	}

	current, err := s.requireScreenshot(ctx, input.ScreenshotID)
	if err != nil {
		return screenshot.Screenshot{}, err
	}

	placement, kills := current.Placement, current.Kills
	if input.Placement != nil {
		placement = input.Placement
	}
	if input.Kills != nil {
		kills = input.Kills
	}
	points := scoring.Calculate(placement, kills)

	updated, exists, err := s.screenshotRepo.UpdateResult(ctx, current.ID, placement, kills, points)
	if err != nil {
		return screenshot.Screenshot{}, fmt.Errorf("update screenshot result: %w", err)
	}
	if !exists {
		return screenshot.Screenshot{}, fmt.Errorf("%w: screenshot=%s", ErrNotFound, current.ID)
	}
	s.standings.InvalidateStandings(updated.TournamentID)

	s.logger.InfoContext(ctx, "screenshot corrected",
		"screenshot_id", updated.ID,
		"previous_points", current.Points,
		"points", updated.Points,
	)
	return updated, nil
}

func (s *ScreenshotService) Delete(ctx context.Context, screenshotID string) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScreenshotService.Delete")
	defer span.End()

	current, err := s.requireScreenshot(ctx, screenshotID)
	if err != nil {
		return err
	}

	deleted, err := s.screenshotRepo.Delete(ctx, current.ID)
	if err != nil {
		return fmt.Errorf("delete screenshot: %w", err)
	}
	if !deleted {
		return fmt.Errorf("%w: screenshot=%s", ErrNotFound, current.ID)
	}
	s.standings.InvalidateStandings(current.TournamentID)

	removeObjects(ctx, s.store, s.logger, []string{current.ImageKey})
	return nil
}

// List returns screenshots of a tournament, newest first.
func (s *ScreenshotService) List(ctx context.Context, filter screenshot.Filter) ([]screenshot.Screenshot, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScreenshotService.List")
	defer span.End()

	if _, err := requireTournament(ctx, s.tournamentRepo, filter.TournamentID); err != nil {
		return nil, err
	}
	if filter.Day != 0 {
		if err := screenshot.ValidateDay(filter.Day); err != nil {
			return nil, err
		}
	}
	filter.TeamID = strings.TrimSpace(filter.TeamID)

	items, err := s.screenshotRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list screenshots: %w", err)
	}
	return items, nil
}

func (s *ScreenshotService) Gallery(ctx context.Context, filter screenshot.Filter) ([]screenshot.TeamGroup, error) {
	items, err := s.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return screenshot.Group(items), nil
}

func (s *ScreenshotService) requireScreenshot(ctx context.Context, screenshotID string) (screenshot.Screenshot, error) {
	screenshotID = strings.TrimSpace(screenshotID)
	if screenshotID == "" {
		return screenshot.Screenshot{}, fmt.Errorf("%w: screenshot id is required", ErrInvalidInput)
	}

	item, exists, err := s.screenshotRepo.GetByID(ctx, screenshotID)
	if err != nil {
		return screenshot.Screenshot{}, fmt.Errorf("get screenshot: %w", err)
	}
	if !exists {
		return screenshot.Screenshot{}, fmt.Errorf("%w: screenshot=%s", ErrNotFound, screenshotID)
	}
	return item, nil
}

// Analyzer output outside the valid ranges is treated as not extracted.
func sanitizePlacement(v *int) *int {
	if v == nil || !screenshot.ValidPlacement(*v) {
		return nil
	}
	out := *v
	return &out
}

func sanitizeKills(v *int) *int {
	if v == nil || !screenshot.ValidKills(*v) {
		return nil
	}
	out := *v
	return &out
}
