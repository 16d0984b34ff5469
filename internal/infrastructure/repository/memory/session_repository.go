package memory

import (
	"context"
	"fmt"

	"github.com/riskibarqy/tournament-scoring/internal/domain/session"
)

type SessionRepository struct {
	store *Store
}

func NewSessionRepository(store *Store) *SessionRepository {
	return &SessionRepository{store: store}
}

func (r *SessionRepository) Create(_ context.Context, item session.Session) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, exists := r.store.sessions[item.ID]; exists {
		return fmt.Errorf("session %s already exists", item.ID)
	}
	r.store.sessions[item.ID] = item
	return nil
}

func (r *SessionRepository) GetByID(_ context.Context, id string) (session.Session, bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	item, ok := r.store.sessions[id]
	return item, ok, nil
}

func (r *SessionRepository) Delete(_ context.Context, id string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	delete(r.store.sessions, id)
	return nil
}

var _ session.Repository = (*SessionRepository)(nil)
