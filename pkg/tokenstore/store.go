package tokenstore

import (
	"fmt"
)

// Token is a stored token record. Stores treat it as an opaque JSON object;
// only the OAuth flow interprets its fields.
type Token map[string]any

// Key returns the storage key naming one credential slot.
func Key(providerID, clientID string) string {
	return providerID + "/" + clientID
}

// Store persists token records keyed by provider and client ID.
type Store interface {
	// GetToken returns the stored record, or nil when there is none.
	GetToken(providerID, clientID string) (Token, error)

	// SetToken stores tok under the key. A nil or empty tok deletes the entry.
	SetToken(providerID, clientID string, tok Token) error
}

// BulkStore is a Store whose whole content can be read and replaced at once.
// FileStore, MemoryStore and NoneStore implement it; KeyringStore does not,
// because OS credential vaults cannot enumerate entries.
type BulkStore interface {
	Store

	// Load returns every stored record keyed by Key(provider, client).
	Load() (map[string]Token, error)

	// Save replaces the stored content with tokens.
	Save(tokens map[string]Token) error
}

// StorageError is returned when a backend fails to read or write.
type StorageError struct {
	// Op is the failed operation: "load", "save", "get", "set" or "delete".
	Op string

	// Key is the token key involved, empty for whole-store operations.
	Key string

	Err error
}

// Error implements the error interface.
func (e *StorageError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("token storage %s %s: %v", e.Op, e.Key, e.Err)
	}
	return fmt.Sprintf("token storage %s: %v", e.Op, e.Err)
}

// Unwrap returns the backend error for error chain inspection.
func (e *StorageError) Unwrap() error {
	return e.Err
}

// applyToken sets or deletes key in tokens, following SetToken semantics.
// Returns false when nothing changed.
func applyToken(tokens map[string]Token, key string, tok Token) bool {
	if len(tok) == 0 {
		if _, ok := tokens[key]; !ok {
			return false
		}
		delete(tokens, key)
		return true
	}
	tokens[key] = tok
	return true
}
