package cache

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

var ErrNilLoader = errors.New("cache loader is required")

type entry[V any] struct {
	value     V
	expiresAt time.Time
}

// Store is an in-process TTL cache keyed by string. Concurrent misses for
// the same key share a single load.
//
// Delete and DeletePrefix bump a generation; a load that started before the
// bump returns its value to its callers but does not cache it.
type Store[V any] struct {
	mu      sync.RWMutex
	entries map[string]entry[V]
	gens    map[string]uint64
	epoch   uint64
	ttl     time.Duration
	flight  singleflight.Group
	now     func() time.Time
}

type generation struct {
	epoch uint64
	key   uint64
}

// NewStore creates a store. A non-positive ttl keeps entries until deleted.
func NewStore[V any](ttl time.Duration) *Store[V] {
	return &Store[V]{
		entries: make(map[string]entry[V]),
		gens:    make(map[string]uint64),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (s *Store[V]) Get(key string) (V, bool) {
	var zero V
	if key == "" {
		return zero, false
	}

	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()
	if !ok {
		return zero, false
	}
	if !e.expiresAt.IsZero() && !e.expiresAt.After(s.now()) {
		s.mu.Lock()
		if cur, still := s.entries[key]; still && cur.expiresAt.Equal(e.expiresAt) {
			delete(s.entries, key)
		}
		s.mu.Unlock()
		return zero, false
	}
	return e.value, true
}

func (s *Store[V]) Set(key string, value V) {
	if key == "" {
		return
	}

	s.mu.Lock()
	s.entries[key] = entry[V]{value: value, expiresAt: s.expiry()}
	s.mu.Unlock()
}

func (s *Store[V]) expiry() time.Time {
	if s.ttl <= 0 {
		return time.Time{}
	}
	return s.now().Add(s.ttl)
}

func (s *Store[V]) generation(key string) generation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return generation{epoch: s.epoch, key: s.gens[key]}
}

// setIfCurrent caches value only when no delete touched key since gen was taken.
func (s *Store[V]) setIfCurrent(key string, value V, gen generation) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.epoch != gen.epoch || s.gens[key] != gen.key {
		return false
	}
	s.entries[key] = entry[V]{value: value, expiresAt: s.expiry()}
	return true
}

func (s *Store[V]) Delete(key string) {
	s.mu.Lock()
	delete(s.entries, key)
	s.gens[key]++
	s.mu.Unlock()
	s.flight.Forget(key)
}

// DeletePrefix drops every key starting with prefix, e.g. all views of one tournament.
func (s *Store[V]) DeletePrefix(prefix string) {
	if prefix == "" {
		return
	}

	s.mu.Lock()
	// In-flight loads for keys not yet cached are unknown here, so the
	// epoch bump invalidates every running load.
	s.epoch++
	var dropped []string
	for key := range s.entries {
		if strings.HasPrefix(key, prefix) {
			delete(s.entries, key)
			dropped = append(dropped, key)
		}
	}
	for key := range s.gens {
		if strings.HasPrefix(key, prefix) {
			dropped = append(dropped, key)
		}
	}
	s.mu.Unlock()
	for _, key := range dropped {
		s.flight.Forget(key)
	}
}

func (s *Store[V]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// GetOrLoad returns the cached value or runs loader once per key and caches
// a successful result. Errors are not cached.
func (s *Store[V]) GetOrLoad(ctx context.Context, key string, loader func(context.Context) (V, error)) (V, error) {
	var zero V
	if loader == nil {
		return zero, ErrNilLoader
	}
	if key == "" {
		return loader(ctx)
	}
	if value, ok := s.Get(key); ok {
		return value, nil
	}

	loaded, err, _ := s.flight.Do(key, func() (any, error) {
		if cached, ok := s.Get(key); ok {
			return cached, nil
		}
		gen := s.generation(key)
		value, loadErr := loader(ctx)
		if loadErr != nil {
			return nil, loadErr
		}
		s.setIfCurrent(key, value, gen)
		return value, nil
	})
	if err != nil {
		return zero, err
	}
	return loaded.(V), nil
}
