package session

import (
	"context"
	"sync"
	"time"

	"expenseledger/internal/cache"
	"expenseledger/internal/core"
)

// MemoryStore keeps sessions in process memory. Idle sessions expire after
// the configured TTL and the least recently used are evicted past maxSessions.
type MemoryStore struct {
	sessions *cache.LRUCache[*memoryState]
}

var (
	_ Store = (*MemoryStore)(nil)
	_ State = (*memoryState)(nil)
)

func NewMemoryStore(maxSessions int, ttl time.Duration) *MemoryStore {
	return &MemoryStore{sessions: cache.NewLRUCache[*memoryState](maxSessions, ttl)}
}

// Cleaner exposes the session cache for periodic expiry via cache.Manager.
func (s *MemoryStore) Cleaner() cache.Cleaner {
	return s.sessions
}

func (s *MemoryStore) Session(_ context.Context, id string) (State, error) {
	if id == "" {
		return nil, ErrEmptySessionID
	}
	return s.sessions.GetOrCreate(id, newMemoryState), nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.sessions.Delete(id)
	return nil
}

func (s *MemoryStore) Count(_ context.Context) (int, error) {
	return s.sessions.Size(), nil
}

type memoryState struct {
	mu     sync.Mutex
	values map[string][]core.Expense
}

func newMemoryState() *memoryState {
	return &memoryState{values: map[string][]core.Expense{}}
}

// Get returns a copy so callers cannot alias the stored slice.
func (m *memoryState) Get(_ context.Context, key string) ([]core.Expense, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	if !ok {
		return nil, false, nil
	}
	return append([]core.Expense(nil), v...), true, nil
}

func (m *memoryState) Set(_ context.Context, key string, expenses []core.Expense) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = append(make([]core.Expense, 0, len(expenses)), expenses...)
	return nil
}
