package session

import (
	"context"
	"sync"
	"time"

	"github.com/komsit37/yqdash/pkg/yqdash/types"
)

// Store holds memoized query results for one session.
type Store interface {
	Get(ctx context.Context, key string) (types.QueryResult, bool, error)
	Set(ctx context.Context, key string, res types.QueryResult) error
	Clear(ctx context.Context) error
}

// StoreFactory creates the store for a new session.
type StoreFactory func(sessionID string) Store

// MemoryStore is a TTL+LRU bounded in-process store. Hits return the stored
// result itself.
type MemoryStore struct {
	ttl  time.Duration
	size int
	now  func() time.Time

	mu    sync.Mutex
	items map[string]memoEntry
	order []string // LRU order, oldest at index 0
}

type memoEntry struct {
	at  time.Time
	res types.QueryResult
}

// NewMemoryStore returns a store keeping at most size results for ttl. A zero
// ttl never expires and a zero size is unbounded.
func NewMemoryStore(ttl time.Duration, size int) *MemoryStore {
	return &MemoryStore{ttl: ttl, size: size, now: time.Now, items: make(map[string]memoEntry)}
}

func (s *MemoryStore) Get(_ context.Context, key string) (types.QueryResult, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ent, ok := s.items[key]
	if !ok {
		return types.QueryResult{}, false, nil
	}
	if s.ttl > 0 && s.now().Sub(ent.at) > s.ttl {
		delete(s.items, key)
		s.removeFromOrderLocked(key)
		return types.QueryResult{}, false, nil
	}
	s.touchLocked(key)
	return ent.res, true, nil
}

func (s *MemoryStore) Set(_ context.Context, key string, res types.QueryResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[key]; ok {
		s.removeFromOrderLocked(key)
	}
	s.items[key] = memoEntry{at: s.now(), res: res}
	s.order = append(s.order, key)
	for s.size > 0 && len(s.items) > s.size && len(s.order) > 0 {
		old := s.order[0]
		s.order = s.order[1:]
		delete(s.items, old)
	}
	return nil
}

func (s *MemoryStore) Clear(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = make(map[string]memoEntry)
	s.order = nil
	return nil
}

func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

func (s *MemoryStore) touchLocked(k string) {
	s.removeFromOrderLocked(k)
	s.order = append(s.order, k)
}

func (s *MemoryStore) removeFromOrderLocked(k string) {
	for i, v := range s.order {
		if v == k {
			s.order = append(s.order[:i], s.order[i+1:]...)
			return
		}
	}
}
