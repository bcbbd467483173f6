package oauth

import (
	"errors"
	"fmt"
	"time"

	"golang.org/x/oauth2"

	strs "github.com/Zverik/cli-oauth2/pkg/strings"
)

var (
	// ErrStateMismatch is returned when the redirect carries a state parameter
	// different from the one sent in the authorization request.
	ErrStateMismatch = errors.New("state mismatch - possible CSRF attack")

	// ErrNoCode is returned when manual code entry ends without a code (EOF on input).
	ErrNoCode = errors.New("no authorization code entered")
)

// NoOpenPortError is returned when every port of a scanned range is in use.
type NoOpenPortError struct {
	Start int
	Stop  int
}

// Error implements the error interface.
func (e *NoOpenPortError) Error() string {
	return fmt.Sprintf("could not find an open port in range [%d, %d)", e.Start, e.Stop)
}

// ListenerBindError is returned when the redirect listener cannot bind its address.
type ListenerBindError struct {
	Addr string
	Err  error
}

// Error implements the error interface.
func (e *ListenerBindError) Error() string {
	return fmt.Sprintf("failed to start redirect listener on %s: %v", e.Addr, e.Err)
}

// Unwrap returns the underlying network error.
func (e *ListenerBindError) Unwrap() error {
	return e.Err
}

// RedirectTimeoutError is returned when no redirect arrives before the deadline.
type RedirectTimeoutError struct {
	Timeout time.Duration
}

// Error implements the error interface.
func (e *RedirectTimeoutError) Error() string {
	return fmt.Sprintf("no authorization redirect received within %s", e.Timeout)
}

// AuthorizationDeniedError is returned when the authorization server redirects
// back with an error instead of a code.
type AuthorizationDeniedError struct {
	// Code is the OAuth error code, e.g. "access_denied".
	Code string

	// Description is the optional human-readable error_description.
	Description string
}

// Error implements the error interface.
func (e *AuthorizationDeniedError) Error() string {
	if e.Description != "" {
		return fmt.Sprintf("authorization failed: %s - %s", e.Code, e.Description)
	}
	return fmt.Sprintf("authorization failed: %s", e.Code)
}

// TokenExchangeError wraps a failed code-for-token or refresh request:
// a network failure, an undecodable response or an error status.
type TokenExchangeError struct {
	Err error
}

// Error implements the error interface.
func (e *TokenExchangeError) Error() string {
	// Token endpoints answer with multi-line JSON or HTML bodies.
	return "token exchange failed: " + strs.SingleLine(e.Err.Error(), strs.MaxDetailLen)
}

// Unwrap returns the transport or protocol error.
func (e *TokenExchangeError) Unwrap() error {
	return e.Err
}

// StatusCode returns the token endpoint's HTTP status, or 0 when the
// request never got a response.
func (e *TokenExchangeError) StatusCode() int {
	var retrieveErr *oauth2.RetrieveError
	if errors.As(e.Err, &retrieveErr) && retrieveErr.Response != nil {
		return retrieveErr.Response.StatusCode
	}
	return 0
}
