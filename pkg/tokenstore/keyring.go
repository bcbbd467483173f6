package tokenstore

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"

	"github.com/Zverik/cli-oauth2/pkg/logging"
)

// DefaultKeyringService is the service name used for OS credential vault entries.
const DefaultKeyringService = "python-cli-oauth2"

// KeyringStore keeps each token as a separate entry in the OS credential
// vault (Secret Service, macOS Keychain, Windows Credential Manager).
// The entry's user name is Key(provider, client) and its secret is the
// JSON-encoded token record.
type KeyringStore struct {
	service string
}

// NewKeyringStore creates a vault-backed store. An empty service means DefaultKeyringService.
func NewKeyringStore(service string) *KeyringStore {
	if service == "" {
		service = DefaultKeyringService
	}
	return &KeyringStore{service: service}
}

// Service returns the vault service name.
func (s *KeyringStore) Service() string {
	return s.service
}

// GetToken returns the record stored for the provider and client, or nil.
func (s *KeyringStore) GetToken(providerID, clientID string) (Token, error) {
	key := Key(providerID, clientID)
	logging.Debug("TokenStore", "Get token %s from keyring service %s", key, s.service)

	raw, err := keyring.Get(s.service, key)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return nil, nil
		}
		return nil, &StorageError{Op: "get", Key: key, Err: err}
	}
	if raw == "" {
		return nil, nil
	}

	var tok Token
	if err := json.Unmarshal([]byte(raw), &tok); err != nil {
		return nil, &StorageError{Op: "get", Key: key, Err: fmt.Errorf("failed to parse keyring entry: %w", err)}
	}
	return tok, nil
}

// SetToken stores tok, or deletes the entry when tok is empty.
// Deleting an entry that does not exist is not an error.
func (s *KeyringStore) SetToken(providerID, clientID string, tok Token) error {
	key := Key(providerID, clientID)

	if len(tok) == 0 {
		logging.Debug("TokenStore", "Delete token %s from keyring service %s", key, s.service)
		if err := keyring.Delete(s.service, key); err != nil && !errors.Is(err, keyring.ErrNotFound) {
			return &StorageError{Op: "delete", Key: key, Err: err}
		}
		return nil
	}

	data, err := json.Marshal(tok)
	if err != nil {
		return &StorageError{Op: "set", Key: key, Err: fmt.Errorf("failed to marshal token: %w", err)}
	}

	logging.Debug("TokenStore", "Save token %s to keyring service %s", key, s.service)
	if err := keyring.Set(s.service, key, string(data)); err != nil {
		return &StorageError{Op: "set", Key: key, Err: err}
	}
	return nil
}
