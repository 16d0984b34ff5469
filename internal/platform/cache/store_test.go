package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestStore_GetOrLoad_SharesConcurrentMisses(t *testing.T) {
	t.Parallel()

	store := NewStore[string](time.Minute)
	var calls atomic.Int32
	release := make(chan struct{})

	loader := func(context.Context) (string, error) {
		calls.Add(1)
		<-release
		return "value", nil
	}

	const workers = 16
	var wg sync.WaitGroup
	errCh := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := store.GetOrLoad(context.Background(), "standings:t1", loader)
			if err != nil {
				errCh <- err
				return
			}
			if v != "value" {
				errCh <- errors.New("unexpected value " + v)
			}
		}()
	}

	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()
	close(errCh)
	for err := range errCh {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := calls.Load(); got != 1 {
		t.Fatalf("loader called %d times, want 1", got)
	}
}

func TestStore_ExpiresAfterTTL(t *testing.T) {
	t.Parallel()

	store := NewStore[int](time.Minute)
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	store.Set("k", 7)
	if v, ok := store.Get("k"); !ok || v != 7 {
		t.Fatalf("expected cached value, got %d %v", v, ok)
	}

	now = now.Add(2 * time.Minute)
	if _, ok := store.Get("k"); ok {
		t.Fatalf("expected entry to expire")
	}
	if store.Len() != 0 {
		t.Fatalf("expected expired entry to be evicted")
	}
}

func TestStore_ErrorsAreNotCached(t *testing.T) {
	t.Parallel()

	store := NewStore[int](time.Minute)
	wantErr := errors.New("db down")
	calls := 0
	loader := func(context.Context) (int, error) {
		calls++
		if calls == 1 {
			return 0, wantErr
		}
		return 42, nil
	}

	if _, err := store.GetOrLoad(context.Background(), "k", loader); !errors.Is(err, wantErr) {
		t.Fatalf("expected loader error, got %v", err)
	}
	v, err := store.GetOrLoad(context.Background(), "k", loader)
	if err != nil || v != 42 {
		t.Fatalf("expected reload to succeed, got %d %v", v, err)
	}
}

func TestStore_DeletePrefix(t *testing.T) {
	t.Parallel()

	store := NewStore[string](0)
	store.Set("standings:t1", "a")
	store.Set("standings:t2", "b")
	store.Set("gallery:t1", "c")

	store.DeletePrefix("standings:")

	if _, ok := store.Get("standings:t1"); ok {
		t.Fatalf("expected standings:t1 removed")
	}
	if _, ok := store.Get("gallery:t1"); !ok {
		t.Fatalf("expected gallery:t1 kept")
	}
	if store.Len() != 1 {
		t.Fatalf("expected 1 entry left, got %d", store.Len())
	}
}

func TestStore_NilLoader(t *testing.T) {
	t.Parallel()

	store := NewStore[int](time.Minute)
	if _, err := store.GetOrLoad(context.Background(), "k", nil); !errors.Is(err, ErrNilLoader) {
		t.Fatalf("expected ErrNilLoader, got %v", err)
	}
}

func TestStore_GetOrLoad_DeleteDuringLoadSkipsCaching(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		invalidate func(store *Store[int])
	}{
		{name: "delete", invalidate: func(store *Store[int]) { store.Delete("standings:t1") }},
		{name: "delete prefix", invalidate: func(store *Store[int]) { store.DeletePrefix("standings:") }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			store := NewStore[int](0)
			started := make(chan struct{})
			release := make(chan struct{})
			done := make(chan int, 1)

			go func() {
				v, err := store.GetOrLoad(context.Background(), "standings:t1", func(context.Context) (int, error) {
					close(started)
					<-release
					return 0, nil
				})
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				done <- v
			}()

			<-started
			tc.invalidate(store)
			close(release)
			if got := <-done; got != 0 {
				t.Fatalf("in-flight caller got %d, want 0", got)
			}

			if _, ok := store.Get("standings:t1"); ok {
				t.Fatalf("stale value cached after invalidation")
			}
			v, err := store.GetOrLoad(context.Background(), "standings:t1", func(context.Context) (int, error) {
				return 15, nil
			})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if v != 15 {
				t.Fatalf("got %d, want 15", v)
			}
			if cached, ok := store.Get("standings:t1"); !ok || cached != 15 {
				t.Fatalf("fresh value not cached: %d %v", cached, ok)
			}
		})
	}
}
