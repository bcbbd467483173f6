package tokenstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/Zverik/cli-oauth2/pkg/logging"
)

const (
	// DefaultAppName is the per-application config directory name.
	DefaultAppName = "cli-oauth2"

	// DefaultFileName is the token file name inside the config directory.
	DefaultFileName = "tokens.json"
)

// userConfigDir is replaceable in tests.
var userConfigDir = os.UserConfigDir

// DefaultPath returns the OS-appropriate token file location for appName,
// e.g. ~/.config/cli-oauth2/tokens.json on Linux.
// An empty appName means DefaultAppName.
func DefaultPath(appName string) (string, error) {
	if appName == "" {
		appName = DefaultAppName
	}
	dir, err := userConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user config directory: %w", err)
	}
	return filepath.Join(dir, appName, DefaultFileName), nil
}

// FileStore keeps all tokens in a single JSON file.
//
// SECURITY: the file holds OAuth credentials. It is written with 0600
// permissions inside a 0700 directory, and token values are never logged.
//
// Every load-modify-save cycle runs under the store's mutex, so several flows
// sharing one FileStore do not lose each other's updates. Writes go through a
// temporary file and a rename, so readers never observe a half-written file.
type FileStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStore creates a store backed by the file at path.
// The file and its directory are created on first write.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the token file location.
func (s *FileStore) Path() string {
	return s.path
}

// Load reads all tokens. A missing file is an empty store.
func (s *FileStore) Load() (map[string]Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked()
}

// Save replaces the file content with tokens.
func (s *FileStore) Save(tokens map[string]Token) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked(tokens)
}

// GetToken returns the record stored for the provider and client, or nil.
func (s *FileStore) GetToken(providerID, clientID string) (Token, error) {
	key := Key(providerID, clientID)

	s.mu.Lock()
	defer s.mu.Unlock()

	tokens, err := s.loadLocked()
	if err != nil {
		return nil, &StorageError{Op: "get", Key: key, Err: errors.Unwrap(err)}
	}
	return tokens[key], nil
}

// SetToken stores tok, or deletes the entry when tok is empty.
// Deleting a key that is not present leaves the file untouched.
func (s *FileStore) SetToken(providerID, clientID string, tok Token) error {
	key := Key(providerID, clientID)

	s.mu.Lock()
	defer s.mu.Unlock()

	tokens, err := s.loadLocked()
	if err != nil {
		// A corrupt file is not overwritten: it may still hold other clients' tokens.
		return &StorageError{Op: "set", Key: key, Err: errors.Unwrap(err)}
	}

	if !applyToken(tokens, key, tok) {
		return nil
	}

	if err := s.saveLocked(tokens); err != nil {
		logging.Error("TokenStore", err, "Failed to persist token %s", key)
		return err
	}

	if len(tok) == 0 {
		logging.Debug("TokenStore", "Deleted token %s from %s", key, s.path)
	} else {
		logging.Debug("TokenStore", "Saved token %s to %s", key, s.path)
	}
	return nil
}

// ProviderCounts returns the number of stored tokens per provider ID.
func (s *FileStore) ProviderCounts() (map[string]int, error) {
	tokens, err := s.Load()
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int)
	for key := range tokens {
		provider, _, _ := strings.Cut(key, "/")
		counts[provider]++
	}
	return counts, nil
}

// Providers returns the provider IDs that have stored tokens, sorted.
func (s *FileStore) Providers() ([]string, error) {
	counts, err := s.ProviderCounts()
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// DeleteProvider removes every token of providerID and returns how many were removed.
func (s *FileStore) DeleteProvider(providerID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tokens, err := s.loadLocked()
	if err != nil {
		return 0, err
	}

	prefix := providerID + "/"
	removed := 0
	for key := range tokens {
		if strings.HasPrefix(key, prefix) {
			delete(tokens, key)
			removed++
		}
	}
	if removed == 0 {
		return 0, nil
	}

	if err := s.saveLocked(tokens); err != nil {
		return 0, err
	}

	logging.Info("TokenStore", "Deleted %d token(s) of provider %s", removed, providerID)
	return removed, nil
}

// Clear removes the token file entirely.
func (s *FileStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return &StorageError{Op: "delete", Err: err}
	}

	logging.Info("TokenStore", "Removed token file %s", s.path)
	return nil
}

// loadLocked reads the file. REQUIRES: s.mu held.
func (s *FileStore) loadLocked() (map[string]Token, error) {
	// #nosec G304 -- path is supplied by the application, not by remote input
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logging.Debug("TokenStore", "Token file %s does not exist", s.path)
			return make(map[string]Token), nil
		}
		return nil, &StorageError{Op: "load", Err: err}
	}

	tokens := make(map[string]Token)
	if len(data) == 0 {
		return tokens, nil
	}
	if err := json.Unmarshal(data, &tokens); err != nil {
		return nil, &StorageError{Op: "load", Err: fmt.Errorf("failed to parse %s: %w", s.path, err)}
	}
	return tokens, nil
}

// saveLocked writes tokens atomically. REQUIRES: s.mu held.
func (s *FileStore) saveLocked(tokens map[string]Token) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return &StorageError{Op: "save", Err: fmt.Errorf("failed to create token directory: %w", err)}
	}

	data, err := json.MarshalIndent(tokens, "", "  ")
	if err != nil {
		return &StorageError{Op: "save", Err: fmt.Errorf("failed to marshal tokens: %w", err)}
	}

	tmp, err := os.CreateTemp(dir, ".tokens-*.json")
	if err != nil {
		return &StorageError{Op: "save", Err: err}
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return &StorageError{Op: "save", Err: err}
	}
	if err := tmp.Chmod(0600); err != nil {
		tmp.Close()
		return &StorageError{Op: "save", Err: err}
	}
	if err := tmp.Close(); err != nil {
		return &StorageError{Op: "save", Err: err}
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return &StorageError{Op: "save", Err: err}
	}
	return nil
}
