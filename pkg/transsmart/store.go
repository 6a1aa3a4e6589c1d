package transsmart

import (
	"context"
	"sync"
)

// TokenStore keeps the current token outside the client, so it can be shared between
// processes or survive a restart. Load returns a zero Token when nothing is stored.
type TokenStore interface {
	Load(ctx context.Context, key string) (Token, error)
	Save(ctx context.Context, key string, token Token) error
}

// MemoryStore is a process-local TokenStore. It is the default.
type MemoryStore struct {
	mu     sync.RWMutex
	tokens map[string]Token
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{tokens: make(map[string]Token)}
}

// Load returns the token saved under key.
func (s *MemoryStore) Load(_ context.Context, key string) (Token, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tokens[key], nil
}

// Save replaces the token under key.
func (s *MemoryStore) Save(_ context.Context, key string, token Token) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[key] = token
	return nil
}

var _ TokenStore = (*MemoryStore)(nil)
