// Package logging provides subsystem-tagged structured logging for oauthcli,
// built on Go's standard slog package.
//
// Every record carries a "subsystem" attribute (TokenStore, OAuthFlow,
// RedirectListener, ...) and, for warnings and errors, an optional "error"
// attribute. Token values must never be passed to this package; log the
// token key instead.
//
// # Usage
//
//	logging.InitForCLI(logging.LevelInfo, os.Stderr)
//
//	logging.Debug("TokenStore", "Loading tokens from %s", path)
//	logging.Warn("OAuthFlow", "Could not open browser")
//	logging.Error("TokenStore", err, "Failed to save token %s", key)
//
// When InitForCLI has not been called, records go to slog.Default(), so the
// library packages can be used without any logging setup.
package logging
