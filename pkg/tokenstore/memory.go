package tokenstore

import (
	"maps"
	"sync"
)

// MemoryStore keeps tokens in process memory. Nothing survives a restart.
// It is safe for concurrent use and its zero value is an empty store.
type MemoryStore struct {
	mu     sync.Mutex
	tokens map[string]Token
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{tokens: make(map[string]Token)}
}

// Load returns a copy of all stored tokens.
func (s *MemoryStore) Load() (map[string]Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return maps.Clone(s.tokens), nil
}

// Save replaces the content with a copy of tokens.
func (s *MemoryStore) Save(tokens map[string]Token) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens = maps.Clone(tokens)
	if s.tokens == nil {
		s.tokens = make(map[string]Token)
	}
	return nil
}

// GetToken returns the record stored for the provider and client, or nil.
func (s *MemoryStore) GetToken(providerID, clientID string) (Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return maps.Clone(s.tokens[Key(providerID, clientID)]), nil
}

// SetToken stores tok, or deletes the entry when tok is empty.
func (s *MemoryStore) SetToken(providerID, clientID string, tok Token) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tokens == nil {
		s.tokens = make(map[string]Token)
	}
	applyToken(s.tokens, Key(providerID, clientID), maps.Clone(tok))
	return nil
}

// NoneStore never persists anything: every lookup misses and every write is dropped.
type NoneStore struct{}

// Load always returns an empty map.
func (NoneStore) Load() (map[string]Token, error) {
	return map[string]Token{}, nil
}

// Save discards tokens.
func (NoneStore) Save(map[string]Token) error {
	return nil
}

// GetToken always reports no token.
func (NoneStore) GetToken(string, string) (Token, error) {
	return nil, nil
}

// SetToken discards tok.
func (NoneStore) SetToken(string, string, Token) error {
	return nil
}

var (
	_ BulkStore = (*FileStore)(nil)
	_ BulkStore = (*MemoryStore)(nil)
	_ BulkStore = NoneStore{}
	_ Store     = (*KeyringStore)(nil)
)
