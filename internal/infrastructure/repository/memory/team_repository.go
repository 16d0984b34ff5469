package memory

import (
	"context"
	"fmt"

	"github.com/riskibarqy/tournament-scoring/internal/domain/team"
)

type TeamRepository struct {
	store *Store
}

func NewTeamRepository(store *Store) *TeamRepository {
	return &TeamRepository{store: store}
}

// ListByTournament returns teams in creation order.
func (r *TeamRepository) ListByTournament(_ context.Context, tournamentID string) ([]team.Team, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	out := make([]team.Team, 0)
	for _, item := range r.store.teams {
		if item.TournamentID == tournamentID {
			out = append(out, item)
		}
	}
	return out, nil
}

func (r *TeamRepository) GetByID(_ context.Context, teamID string) (team.Team, bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	if idx := r.store.teamIndex(teamID); idx >= 0 {
		return r.store.teams[idx], true, nil
	}
	return team.Team{}, false, nil
}

func (r *TeamRepository) Create(_ context.Context, item team.Team) (team.Team, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if r.store.tournamentIndex(item.TournamentID) < 0 {
		return team.Team{}, fmt.Errorf("tournament %s does not exist", item.TournamentID)
	}
	if r.store.teamIndex(item.ID) >= 0 {
		return team.Team{}, fmt.Errorf("team %s already exists", item.ID)
	}
	r.store.teams = append(r.store.teams, item)
	return item, nil
}

func (r *TeamRepository) Delete(_ context.Context, teamID string) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	removed := r.store.deleteTeamsWhere(func(t team.Team) bool { return t.ID == teamID })
	return removed > 0, nil
}

var _ team.Repository = (*TeamRepository)(nil)
