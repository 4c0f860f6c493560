package role

import (
	"context"
	"sync"
)

// MemoryStore is an in-process Store for tests and DSN-less development runs.
type MemoryStore struct {
	mu       sync.RWMutex
	bindings map[string]Binding
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{bindings: make(map[string]Binding)}
}

// Put registers or replaces the binding for an identity.
func (s *MemoryStore) Put(identityID string, b Binding) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bindings[identityID] = b
}

func (s *MemoryStore) GetRole(ctx context.Context, identityID string) (*Binding, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.bindings[identityID]
	if !ok {
		return nil, nil
	}
	out := b
	return &out, nil
}
