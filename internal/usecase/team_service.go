package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/tournament-scoring/internal/domain/screenshot"
	"github.com/riskibarqy/tournament-scoring/internal/domain/team"
	"github.com/riskibarqy/tournament-scoring/internal/domain/tournament"
	"github.com/riskibarqy/tournament-scoring/internal/platform/logging"
)

type CreateTeamInput struct {
	TournamentID string
	Name         string
	// Logo is optional.
	Logo *FileUpload
}

type TeamService struct {
	tournamentRepo tournament.Repository
	teamRepo       team.Repository
	screenshotRepo screenshot.Repository
	store          ObjectStore
	ids            IDGenerator
	standings      StandingsInvalidator
	maxLogoBytes   int64
	logger         *logging.Logger
	now            func() time.Time
}

func NewTeamService(
	tournamentRepo tournament.Repository,
	teamRepo team.Repository,
	screenshotRepo screenshot.Repository,
	store ObjectStore,
	ids IDGenerator,
	standings StandingsInvalidator,
	maxLogoBytes int64,
	logger *logging.Logger,
) *TeamService {
	if logger == nil {
		logger = logging.Default()
	}
	if standings == nil {
		standings = noopInvalidator{}
	}
	return &TeamService{
		tournamentRepo: tournamentRepo,
		teamRepo:       teamRepo,
		screenshotRepo: screenshotRepo,
		store:          store,
		ids:            ids,
		standings:      standings,
		maxLogoBytes:   maxLogoBytes,
		logger:         logger,
		now:            time.Now,
	}
}

func (s *TeamService) ListByTournament(ctx context.Context, tournamentID string) ([]team.Team, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TeamService.ListByTournament")
	defer span.End()

	if _, err := requireTournament(ctx, s.tournamentRepo, tournamentID); err != nil {
		return nil, err
	}

	items, err := s.teamRepo.ListByTournament(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("list teams by tournament: %w", err)
	}
	return items, nil
}

func (s *TeamService) Get(ctx context.Context, teamID string) (team.Team, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TeamService.Get")
	defer span.End()

	return requireTeam(ctx, s.teamRepo, teamID)
}

func (s *TeamService) Create(ctx context.Context, input CreateTeamInput) (team.Team, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TeamService.Create")
	defer span.End()

	if _, err := requireTournament(ctx, s.tournamentRepo, input.TournamentID); err != nil {
		return team.Team{}, err
	}

	id, err := s.ids.NewID()
	if err != nil {
		return team.Team{}, fmt.Errorf("generate team id: %w", err)
	}
	item := team.Team{
		ID:           id,
		TournamentID: strings.TrimSpace(input.TournamentID),
		Name:         strings.TrimSpace(input.Name),
		CreatedAt:    s.now().UTC(),
	}
	if err := item.Validate(); err != nil {
		return team.Team{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	if input.Logo != nil {
		ext, ok := imageExtension(*input.Logo)
		if !ok {
			return team.Team{}, fmt.Errorf("%w: logo must be an image, got %q", ErrInvalidInput, input.Logo.ContentType)
		}
		if s.maxLogoBytes > 0 && input.Logo.Size > s.maxLogoBytes {
			return team.Team{}, fmt.Errorf("%w: logo exceeds %d bytes", ErrInvalidInput, s.maxLogoBytes)
		}

		key := fmt.Sprintf("logos/%s/%s%s", item.TournamentID, item.ID, ext)
		stored, err := s.store.Put(ctx, key, input.Logo.Body, input.Logo.Size, input.Logo.ContentType)
		if err != nil {
			return team.Team{}, fmt.Errorf("%w: store team logo: %v", ErrDependencyUnavailable, err)
		}
		item.LogoKey = stored.Key
		item.LogoURL = stored.URL
	}

	created, err := s.teamRepo.Create(ctx, item)
	if err != nil {
		return team.Team{}, fmt.Errorf("create team: %w", err)
	}
	s.standings.InvalidateStandings(created.TournamentID)

	s.logger.InfoContext(ctx, "team created", "team_id", created.ID, "tournament_id", created.TournamentID, "has_logo", created.HasLogo())
	return created, nil
}

// Delete removes the team and its screenshot rows; the logo and images are
// deleted best effort.
func (s *TeamService) Delete(ctx context.Context, teamID string) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.TeamService.Delete")
	defer span.End()

	item, err := requireTeam(ctx, s.teamRepo, teamID)
	if err != nil {
		return err
	}

	var keys []string
	if item.HasLogo() {
		keys = append(keys, item.LogoKey)
	}
	shots, err := s.screenshotRepo.List(ctx, screenshot.Filter{TournamentID: item.TournamentID, TeamID: item.ID})
	if err != nil {
		return fmt.Errorf("list screenshots for team delete: %w", err)
	}
	for _, shot := range shots {
		keys = append(keys, shot.ImageKey)
	}

	deleted, err := s.teamRepo.Delete(ctx, item.ID)
	if err != nil {
		return fmt.Errorf("delete team: %w", err)
	}
	if !deleted {
		return fmt.Errorf("%w: team=%s", ErrNotFound, item.ID)
	}
	s.standings.InvalidateStandings(item.TournamentID)

	removeObjects(ctx, s.store, s.logger, keys)
	s.logger.InfoContext(ctx, "team deleted", "team_id", item.ID, "tournament_id", item.TournamentID, "screenshots", len(shots))
	return nil
}
