package config

import (
	"fmt"
	"path/filepath"

	"github.com/Zverik/cli-oauth2/pkg/tokenstore"
)

// Storage backends selectable with the storage setting.
const (
	StorageFile    = "file"
	StorageKeyring = "keyring"
	StorageNone    = "none"
)

// Config is the CLI configuration loaded from config.yaml.
type Config struct {
	// Storage selects the token backend: file, keyring or none.
	Storage string `yaml:"storage"`

	// TokensFile overrides the token file location. Relative paths are
	// resolved against the configuration directory.
	TokensFile string `yaml:"tokens_file,omitempty"`

	// KeyringService is the service name used in the OS credential vault.
	KeyringService string `yaml:"keyring_service,omitempty"`

	// LogLevel is the default --log-level.
	LogLevel string `yaml:"log_level,omitempty"`

	// Clients holds registered OAuth clients, one per provider.
	Clients []ClientConfig `yaml:"clients,omitempty"`

	// Dir is the directory the configuration was loaded from.
	Dir string `yaml:"-"`
}

// ClientConfig is an OAuth client registered with a provider.
type ClientConfig struct {
	Provider     string   `yaml:"provider"`
	ClientID     string   `yaml:"client_id"`
	ClientSecret string   `yaml:"client_secret,omitempty"`
	Scopes       []string `yaml:"scopes,omitempty"`

	// URL is the server for self-hosted providers (OpenStreetMap, GitLab, Mastodon).
	URL string `yaml:"url,omitempty"`
}

// Default returns the configuration used when no config file exists.
func Default() Config {
	return Config{
		Storage:        StorageFile,
		KeyringService: tokenstore.DefaultKeyringService,
		LogLevel:       "info",
	}
}

// Validate checks the configuration for unknown values and incomplete clients.
func (c Config) Validate() error {
	switch c.Storage {
	case StorageFile, StorageKeyring, StorageNone:
	default:
		return fmt.Errorf("invalid storage %q: must be one of %s, %s, %s", c.Storage, StorageFile, StorageKeyring, StorageNone)
	}

	for i, client := range c.Clients {
		if client.Provider == "" {
			return fmt.Errorf("clients[%d]: provider is required", i)
		}
		if client.ClientID == "" {
			return fmt.Errorf("clients[%d] (%s): client_id is required", i, client.Provider)
		}
	}
	return nil
}

// Client returns the first registered client for provider.
func (c Config) Client(provider string) (ClientConfig, bool) {
	for _, client := range c.Clients {
		if client.Provider == provider {
			return client, true
		}
	}
	return ClientConfig{}, false
}

// TokensPath returns the token file location.
func (c Config) TokensPath() string {
	if c.TokensFile == "" {
		return filepath.Join(c.Dir, tokenstore.DefaultFileName)
	}
	if filepath.IsAbs(c.TokensFile) {
		return c.TokensFile
	}
	return filepath.Join(c.Dir, c.TokensFile)
}

// FileStore returns the token file store, regardless of the selected backend.
// The tokens and clean commands manage this file directly.
func (c Config) FileStore() *tokenstore.FileStore {
	return tokenstore.NewFileStore(c.TokensPath())
}

// OpenStore returns the selected token backend.
func (c Config) OpenStore() (tokenstore.Store, error) {
	switch c.Storage {
	case StorageFile, "":
		return c.FileStore(), nil
	case StorageKeyring:
		return tokenstore.NewKeyringStore(c.KeyringService), nil
	case StorageNone:
		return tokenstore.NoneStore{}, nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", c.Storage)
	}
}
