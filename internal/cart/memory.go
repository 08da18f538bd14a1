package cart

import (
	"context"
	"sync"
)

// MemoryStore is an in-process Store for local development and tests.
type MemoryStore struct {
	mu    sync.Mutex
	carts map[string][]Item
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{carts: map[string][]Item{}}
}

func (s *MemoryStore) Get(ctx context.Context, userID string) ([]Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := make([]Item, len(s.carts[userID]))
	copy(items, s.carts[userID])
	return items, nil
}

func (s *MemoryStore) Put(ctx context.Context, userID string, items []Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.carts[userID] = append([]Item(nil), items...)
	return nil
}

func (s *MemoryStore) Clear(ctx context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, userID)
	return nil
}
