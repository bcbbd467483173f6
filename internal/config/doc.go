// Package config loads the oauthcli configuration.
//
// Configuration lives in a single directory, by default
// os.UserConfigDir()/cli-oauth2, which holds config.yaml and, for the file
// backend, tokens.json. The directory can be changed with --config-dir or
// OAUTHCLI_CONFIG_DIR.
//
// Example config.yaml:
//
//	storage: keyring
//	clients:
//	  - provider: openstreetmap
//	    client_id: abc123
//	    scopes: [read_prefs, write_api]
//	  - provider: mastodon
//	    client_id: def456
//	    client_secret: s3cret
//	    url: https://mastodon.social
//
// Environment variables OAUTHCLI_STORAGE, OAUTHCLI_TOKENS_FILE,
// OAUTHCLI_KEYRING_SERVICE and OAUTHCLI_LOG_LEVEL override the file.
package config
