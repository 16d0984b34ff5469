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

type CreateTournamentInput struct {
	Name         string
	Description  string
	TotalMatches int
}

type TournamentService struct {
	tournamentRepo tournament.Repository
	teamRepo       team.Repository
	screenshotRepo screenshot.Repository
	store          ObjectStore
	ids            IDGenerator
	standings      StandingsInvalidator
	logger         *logging.Logger
	now            func() time.Time
}

func NewTournamentService(
	tournamentRepo tournament.Repository,
	teamRepo team.Repository,
	screenshotRepo screenshot.Repository,
	store ObjectStore,
	ids IDGenerator,
	standings StandingsInvalidator,
	logger *logging.Logger,
) *TournamentService {
	if logger == nil {
		logger = logging.Default()
	}
	if standings == nil {
		standings = noopInvalidator{}
	}
	return &TournamentService{
		tournamentRepo: tournamentRepo,
		teamRepo:       teamRepo,
		screenshotRepo: screenshotRepo,
		store:          store,
		ids:            ids,
		standings:      standings,
		logger:         logger,
		now:            time.Now,
	}
}

func (s *TournamentService) List(ctx context.Context) ([]tournament.Tournament, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TournamentService.List")
	defer span.End()

	items, err := s.tournamentRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tournaments: %w", err)
	}
	return items, nil
}

func (s *TournamentService) Get(ctx context.Context, tournamentID string) (tournament.Tournament, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TournamentService.Get")
	defer span.End()

	return requireTournament(ctx, s.tournamentRepo, tournamentID)
}

func (s *TournamentService) Create(ctx context.Context, input CreateTournamentInput) (tournament.Tournament, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TournamentService.Create")
	defer span.End()

	totalMatches := input.TotalMatches
	if totalMatches == 0 {
		totalMatches = tournament.DefaultTotalMatches
	}

	id, err := s.ids.NewID()
	if err != nil {
		return tournament.Tournament{}, fmt.Errorf("generate tournament id: %w", err)
	}
	item := tournament.Tournament{
		ID:           id,
		Name:         strings.TrimSpace(input.Name),
		Description:  strings.TrimSpace(input.Description),
		TotalMatches: totalMatches,
		CreatedAt:    s.now().UTC(),
	}
	if err := item.Validate(); err != nil {
		return tournament.Tournament{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	created, err := s.tournamentRepo.Create(ctx, item)
	if err != nil {
		return tournament.Tournament{}, fmt.Errorf("create tournament: %w", err)
	}

	s.logger.InfoContext(ctx, "tournament created", "tournament_id", created.ID, "name", created.Name)
	return created, nil
}

// Delete removes the tournament rows and then, best effort, the stored
// logos and screenshots that belonged to it.
func (s *TournamentService) Delete(ctx context.Context, tournamentID string) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.TournamentService.Delete")
	defer span.End()

	if _, err := requireTournament(ctx, s.tournamentRepo, tournamentID); err != nil {
		return err
	}

	var keys []string
	teams, err := s.teamRepo.ListByTournament(ctx, tournamentID)
	if err != nil {
		return fmt.Errorf("list teams for tournament delete: %w", err)
	}
	for _, t := range teams {
		if t.HasLogo() {
			keys = append(keys, t.LogoKey)
		}
	}
	shots, err := s.screenshotRepo.List(ctx, screenshot.Filter{TournamentID: tournamentID})
	if err != nil {
		return fmt.Errorf("list screenshots for tournament delete: %w", err)
	}
	for _, shot := range shots {
		keys = append(keys, shot.ImageKey)
	}

	deleted, err := s.tournamentRepo.Delete(ctx, tournamentID)
	if err != nil {
		return fmt.Errorf("delete tournament: %w", err)
	}
	if !deleted {
		return fmt.Errorf("%w: tournament=%s", ErrNotFound, tournamentID)
	}
	s.standings.InvalidateStandings(tournamentID)

	removeObjects(ctx, s.store, s.logger, keys)
	s.logger.InfoContext(ctx, "tournament deleted", "tournament_id", tournamentID, "teams", len(teams), "screenshots", len(shots))
	return nil
}

func requireTournament(ctx context.Context, repo tournament.Repository, tournamentID string) (tournament.Tournament, error) {
	tournamentID = strings.TrimSpace(tournamentID)
	if tournamentID == "" {
		return tournament.Tournament{}, fmt.Errorf("%w: tournament id is required", ErrInvalidInput)
	}

	item, exists, err := repo.GetByID(ctx, tournamentID)
	if err != nil {
		return tournament.Tournament{}, fmt.Errorf("get tournament: %w", err)
	}
	if !exists {
		return tournament.Tournament{}, fmt.Errorf("%w: tournament=%s", ErrNotFound, tournamentID)
	}
	return item, nil
}

func requireTeam(ctx context.Context, repo team.Repository, teamID string) (team.Team, error) {
	teamID = strings.TrimSpace(teamID)
	if teamID == "" {
		return team.Team{}, fmt.Errorf("%w: team id is required", ErrInvalidInput)
	}

	item, exists, err := repo.GetByID(ctx, teamID)
	if err != nil {
		return team.Team{}, fmt.Errorf("get team: %w", err)
	}
	if !exists {
		return team.Team{}, fmt.Errorf("%w: team=%s", ErrNotFound, teamID)
	}
	return item, nil
}

// removeObjects deletes stored files without failing the caller; leftovers are logged.
func removeObjects(ctx context.Context, store ObjectStore, logger *logging.Logger, keys []string) {
	if store == nil {
		return
	}
	for _, key := range keys {
		if key == "" {
			continue
		}
		if err := store.Delete(ctx, key); err != nil {
			logger.WarnContext(ctx, "delete stored object failed", "key", key, "error", err)
		}
	}
}
