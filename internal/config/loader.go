package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/Zverik/cli-oauth2/pkg/logging"
	"github.com/Zverik/cli-oauth2/pkg/tokenstore"
)

const configFileName = "config.yaml"

// userConfigDir is replaced in tests.
var userConfigDir = os.UserConfigDir

// envOverrides are environment variables that take precedence over config.yaml.
type envOverrides struct {
	ConfigDir      string `env:"OAUTHCLI_CONFIG_DIR"`
	Storage        string `env:"OAUTHCLI_STORAGE"`
	TokensFile     string `env:"OAUTHCLI_TOKENS_FILE"`
	KeyringService string `env:"OAUTHCLI_KEYRING_SERVICE"`
	LogLevel       string `env:"OAUTHCLI_LOG_LEVEL"`
}

func parseEnv() (envOverrides, error) {
	var raw envOverrides
	if err := env.Parse(&raw); err != nil {
		return envOverrides{}, fmt.Errorf("parse env: %w", err)
	}
	return raw, nil
}

// DefaultDir returns the per-user configuration directory.
func DefaultDir() (string, error) {
	dir, err := userConfigDir()
	if err != nil {
		return "", fmt.Errorf("could not determine user config directory: %w", err)
	}
	return filepath.Join(dir, tokenstore.DefaultAppName), nil
}

// ResolveDir picks the configuration directory: the flag value, then
// OAUTHCLI_CONFIG_DIR, then DefaultDir.
func ResolveDir(flagDir string) (string, error) {
	if flagDir != "" {
		return flagDir, nil
	}
	raw, err := parseEnv()
	if err != nil {
		return "", err
	}
	if raw.ConfigDir != "" {
		return raw.ConfigDir, nil
	}
	return DefaultDir()
}

// LoadConfig loads config.yaml from configDir and applies environment
// overrides. A missing file yields the defaults.
func LoadConfig(configDir string) (Config, error) {
	config, err := loadFile(configDir)
	if err != nil {
		return Config{}, err
	}

	raw, err := parseEnv()
	if err != nil {
		return Config{}, err
	}
	applyEnv(&config, raw)

	return finish(config)
}

// LoadConfigFile loads config.yaml from configDir as written on disk,
// without environment overrides. Edits saved with SaveConfig start from it.
func LoadConfigFile(configDir string) (Config, error) {
	config, err := loadFile(configDir)
	if err != nil {
		return Config{}, err
	}
	return finish(config)
}

func loadFile(configDir string) (Config, error) {
	config := Default()
	configFilePath := filepath.Join(configDir, configFileName)

	data, err := os.ReadFile(configFilePath)
	switch {
	case errors.Is(err, os.ErrNotExist):
		logging.Debug("Config", "No config.yaml found at %s, using defaults", configFilePath)
	case err != nil:
		return Config{}, fmt.Errorf("error reading config from %s: %w", configFilePath, err)
	default:
		if err := yaml.Unmarshal(data, &config); err != nil {
			return Config{}, fmt.Errorf("error loading config from %s: %w", configFilePath, err)
		}
		logging.Debug("Config", "Loaded configuration from %s", configFilePath)
	}
	config.Dir = configDir
	return config, nil
}

// finish fills unset values and validates.
func finish(config Config) (Config, error) {
	if config.Storage == "" {
		config.Storage = StorageFile
	}
	if config.KeyringService == "" {
		config.KeyringService = tokenstore.DefaultKeyringService
	}
	if err := config.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid configuration in %s: %w", filepath.Join(config.Dir, configFileName), err)
	}
	return config, nil
}

func applyEnv(config *Config, raw envOverrides) {
	if raw.Storage != "" {
		config.Storage = raw.Storage
	}
	if raw.TokensFile != "" {
		config.TokensFile = raw.TokensFile
	}
	if raw.KeyringService != "" {
		config.KeyringService = raw.KeyringService
	}
	if raw.LogLevel != "" {
		config.LogLevel = raw.LogLevel
	}
}

// SaveConfig writes config to config.yaml in its directory.
func SaveConfig(config Config) error {
	if config.Dir == "" {
		return errors.New("configuration directory is not set")
	}
	if err := os.MkdirAll(config.Dir, 0o700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(&config)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	// Client secrets may be stored here, so keep it private.
	path := filepath.Join(config.Dir, configFileName)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config to %s: %w", path, err)
	}
	logging.Info("Config", "Saved configuration to %s", path)
	return nil
}

// SetClient adds or replaces the registered client for client.Provider.
func (c *Config) SetClient(client ClientConfig) {
	for i := range c.Clients {
		if c.Clients[i].Provider == client.Provider {
			c.Clients[i] = client
			return
		}
	}
	c.Clients = append(c.Clients, client)
}
