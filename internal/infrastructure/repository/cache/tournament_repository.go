package cache

import (
	"context"
	"time"

	"github.com/riskibarqy/tournament-scoring/internal/domain/tournament"
	basecache "github.com/riskibarqy/tournament-scoring/internal/platform/cache"
)

const (
	tournamentListKey   = "tournament:list"
	tournamentKeyPrefix = "tournament:id:"
)

type cachedTournament struct {
	value  tournament.Tournament
	exists bool
}

// TournamentRepository caches tournament reads, which every request under
// /v1/tournaments/{id} performs. Writes through this decorator evict.
type TournamentRepository struct {
	next  tournament.Repository
	list  *basecache.Store[[]tournament.Tournament]
	items *basecache.Store[cachedTournament]
}

func NewTournamentRepository(next tournament.Repository, ttl time.Duration) *TournamentRepository {
	return &TournamentRepository{
		next:  next,
		list:  basecache.NewStore[[]tournament.Tournament](ttl),
		items: basecache.NewStore[cachedTournament](ttl),
	}
}

func (r *TournamentRepository) List(ctx context.Context) ([]tournament.Tournament, error) {
	items, err := r.list.GetOrLoad(ctx, tournamentListKey, r.next.List)
	if err != nil {
		return nil, err
	}
	return append([]tournament.Tournament(nil), items...), nil
}

func (r *TournamentRepository) GetByID(ctx context.Context, id string) (tournament.Tournament, bool, error) {
	cached, err := r.items.GetOrLoad(ctx, tournamentKeyPrefix+id, func(ctx context.Context) (cachedTournament, error) {
		item, exists, err := r.next.GetByID(ctx, id)
		if err != nil {
			return cachedTournament{}, err
		}
		return cachedTournament{value: item, exists: exists}, nil
	})
	if err != nil {
		return tournament.Tournament{}, false, err
	}
	return cached.value, cached.exists, nil
}

func (r *TournamentRepository) Create(ctx context.Context, item tournament.Tournament) (tournament.Tournament, error) {
	created, err := r.next.Create(ctx, item)
	if err != nil {
		return tournament.Tournament{}, err
	}
	r.list.Delete(tournamentListKey)
	r.items.Delete(tournamentKeyPrefix + created.ID)
	return created, nil
}

func (r *TournamentRepository) Delete(ctx context.Context, id string) (bool, error) {
	deleted, err := r.next.Delete(ctx, id)
	r.list.Delete(tournamentListKey)
	r.items.Delete(tournamentKeyPrefix + id)
	return deleted, err
}

var _ tournament.Repository = (*TournamentRepository)(nil)
