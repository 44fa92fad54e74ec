package baseline

import (
	"context"
	"errors"
	"sync"
)

// ErrNotFound is returned by a Store when the user has no baseline
var ErrNotFound = errors.New("baseline: not found")

// Store persists baselines by user id. Implementations must return copies
// so callers can mutate what they Get without affecting stored state.
type Store interface {
	Get(ctx context.Context, userID string) (*PersonalBaseline, error)
	Put(ctx context.Context, b *PersonalBaseline) error
}

// MemStore is an in-memory Store. Contents are lost when the process exits.
type MemStore struct {
	mu        sync.RWMutex
	baselines map[string]*PersonalBaseline
}

var _ Store = (*MemStore)(nil)

// NewMemStore creates an empty store
func NewMemStore() *MemStore {
	return &MemStore{baselines: make(map[string]*PersonalBaseline)}
}

// Get returns a copy of the user's baseline or ErrNotFound
func (s *MemStore) Get(ctx context.Context, userID string) (*PersonalBaseline, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.baselines[userID]
	if !ok {
		return nil, ErrNotFound
	}
	return b.Clone(), nil
}

// Put stores a copy of b under b.UserID
func (s *MemStore) Put(ctx context.Context, b *PersonalBaseline) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if b == nil || b.UserID == "" {
		return errors.New("baseline: put requires a user id")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.baselines[b.UserID] = b.Clone()
	return nil
}

// Users returns the ids with a stored baseline
func (s *MemStore) Users() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.baselines))
	for id := range s.baselines {
		ids = append(ids, id)
	}
	return ids
}
