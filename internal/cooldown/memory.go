package cooldown

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps timestamps in process. Entries are never evicted; age
// comparison in Guard makes stale ones harmless.
type MemoryStore struct {
	mu    sync.RWMutex
	times map[string]time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{times: make(map[string]time.Time)}
}

func (s *MemoryStore) Get(_ context.Context, key string) (time.Time, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.times[key]
	return t, ok, nil
}

func (s *MemoryStore) Set(_ context.Context, key string, at time.Time) error {
	s.mu.Lock()
	s.times[key] = at
	s.mu.Unlock()
	return nil
}

var _ Store = (*MemoryStore)(nil)
