package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/riskibarqy/tournament-scoring/internal/domain/team"
	"github.com/riskibarqy/tournament-scoring/internal/domain/tournament"
)

type TournamentRepository struct {
	store *Store
}

func NewTournamentRepository(store *Store) *TournamentRepository {
	return &TournamentRepository{store: store}
}

func (r *TournamentRepository) List(_ context.Context) ([]tournament.Tournament, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	out := append([]tournament.Tournament(nil), r.store.tournaments...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *TournamentRepository) GetByID(_ context.Context, id string) (tournament.Tournament, bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	if idx := r.store.tournamentIndex(id); idx >= 0 {
		return r.store.tournaments[idx], true, nil
	}
	return tournament.Tournament{}, false, nil
}

func (r *TournamentRepository) Create(_ context.Context, item tournament.Tournament) (tournament.Tournament, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if r.store.tournamentIndex(item.ID) >= 0 {
		return tournament.Tournament{}, fmt.Errorf("tournament %s already exists", item.ID)
	}
	r.store.tournaments = append(r.store.tournaments, item)
	return item, nil
}

func (r *TournamentRepository) Delete(_ context.Context, id string) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	idx := r.store.tournamentIndex(id)
	if idx < 0 {
		return false, nil
	}
	r.store.tournaments = append(r.store.tournaments[:idx], r.store.tournaments[idx+1:]...)
	r.store.deleteTeamsWhere(func(t team.Team) bool { return t.TournamentID == id })
	return true, nil
}

var _ tournament.Repository = (*TournamentRepository)(nil)
