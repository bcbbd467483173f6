// Package oauth obtains OAuth2 tokens for command-line programs using the
// authorization code flow with PKCE (RFC 7636).
//
// # Core Components
//
//   - Flow: drives one authorization attempt and holds the resulting token
//   - Provider: authorization and token endpoints plus the API base URL
//   - PKCEChallenge: verifier and S256 challenge for one attempt
//   - RedirectListener: a one-shot local HTTP endpoint that captures the redirect
//   - FindOpenPort: picks the first free loopback port in a range
//
// Tokens are persisted through a tokenstore.Store keyed by provider and
// client ID. The token exchange itself is delegated to golang.org/x/oauth2.
//
// # Usage
//
//	flow := oauth.New(oauth.Config{
//		Provider: oauth.OpenStreetMap(""),
//		ClientID: clientID,
//		Store:    tokenstore.NewFileStore(path),
//	})
//	if err := flow.AuthServer(ctx, oauth.ServerOptions{Ports: &oauth.PortRange{}}); err != nil {
//		return err
//	}
//	resp, err := flow.Get(ctx, "user/details")
//
// AuthCode is the alternative for machines without a browser: the user
// opens the URL elsewhere and pastes the code.
//
// # Errors
//
// Failures are reported as *NoOpenPortError, *ListenerBindError,
// *RedirectTimeoutError, *AuthorizationDeniedError, *TokenExchangeError,
// ErrStateMismatch or ErrNoCode, and storage failures as
// *tokenstore.StorageError. All of them work with errors.Is and errors.As.
package oauth
