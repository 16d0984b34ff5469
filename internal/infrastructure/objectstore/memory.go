package objectstore

import (
	"context"
	"io"
	"strings"
	"sync"

	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/tournament-scoring/internal/usecase"
)

type memoryObject struct {
	data        []byte
	contentType string
}

// MemoryStore keeps objects in process. Used by the memory storage driver
// and in tests.
type MemoryStore struct {
	mu            sync.RWMutex
	publicBaseURL string
	objects       map[string]memoryObject
}

var _ usecase.ObjectStore = (*MemoryStore)(nil)

func NewMemoryStore(publicBaseURL string) *MemoryStore {
	if strings.TrimSpace(publicBaseURL) == "" {
		publicBaseURL = "http://localhost/objects"
	}
	return &MemoryStore{
		publicBaseURL: strings.TrimSpace(publicBaseURL),
		objects:       make(map[string]memoryObject),
	}
}

func (s *MemoryStore) Put(_ context.Context, key string, body io.Reader, _ int64, contentType string) (usecase.StoredObject, error) {
	key = strings.TrimPrefix(strings.TrimSpace(key), "/")
	if key == "" {
		return usecase.StoredObject{}, crerr.New("object key is required")
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return usecase.StoredObject{}, crerr.Wrapf(err, "read object body key=%s", key)
	}
	publicURL, err := PublicURL(s.publicBaseURL, key)
	if err != nil {
		return usecase.StoredObject{}, err
	}

	s.mu.Lock()
	s.objects[key] = memoryObject{data: data, contentType: contentType}
	s.mu.Unlock()
	return usecase.StoredObject{Key: key, URL: publicURL}, nil
}

func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	delete(s.objects, strings.TrimPrefix(strings.TrimSpace(key), "/"))
	s.mu.Unlock()
	return nil
}

// Get returns a stored object's bytes and content type.
func (s *MemoryStore) Get(key string) ([]byte, string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	obj, ok := s.objects[key]
	if !ok {
		return nil, "", false
	}
	return append([]byte(nil), obj.data...), obj.contentType, true
}

func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.objects)
}
