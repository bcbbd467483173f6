package cli

import (
	"crypto/x509"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
)

// ConnectionErrorType categorizes the type of connection error.
type ConnectionErrorType int

const (
	// ConnectionErrorUnknown indicates an unclassified connection error.
	ConnectionErrorUnknown ConnectionErrorType = iota
	// ConnectionErrorTLS indicates a TLS/certificate verification error.
	ConnectionErrorTLS
	// ConnectionErrorNetwork indicates a refused or unreachable connection.
	ConnectionErrorNetwork
	// ConnectionErrorTimeout indicates a connection timeout.
	ConnectionErrorTimeout
	// ConnectionErrorDNS indicates a DNS resolution failure.
	ConnectionErrorDNS
)

// String returns a human-readable name for the connection error type.
func (t ConnectionErrorType) String() string {
	switch t {
	case ConnectionErrorTLS:
		return "TLS certificate error"
	case ConnectionErrorNetwork:
		return "Network error"
	case ConnectionErrorTimeout:
		return "Connection timeout"
	case ConnectionErrorDNS:
		return "DNS resolution error"
	default:
		return "Connection error"
	}
}

// ConnectionError is a failure to reach a provider's token or API endpoint.
type ConnectionError struct {
	Endpoint string
	Type     ConnectionErrorType
	Reason   error
}

// Error implements the error interface.
func (e *ConnectionError) Error() string {
	return fmt.Sprintf("%s reaching %s: %v", e.Type, e.Endpoint, e.Reason)
}

// Unwrap returns the underlying error.
func (e *ConnectionError) Unwrap() error {
	return e.Reason
}

// ClassifyConnectionError wraps a transport error as a *ConnectionError.
// It returns nil for nil errors and for errors that are not about
// connectivity, such as OAuth protocol errors.
func ClassifyConnectionError(err error, endpoint string) *ConnectionError {
	if err == nil {
		return nil
	}

	var dnsErr *net.DNSError
	switch {
	case isTLSError(err):
		return &ConnectionError{Endpoint: endpoint, Type: ConnectionErrorTLS, Reason: err}
	case errors.As(err, &dnsErr):
		return &ConnectionError{Endpoint: endpoint, Type: ConnectionErrorDNS, Reason: err}
	case isTimeoutError(err):
		return &ConnectionError{Endpoint: endpoint, Type: ConnectionErrorTimeout, Reason: err}
	case isNetworkError(err):
		return &ConnectionError{Endpoint: endpoint, Type: ConnectionErrorNetwork, Reason: err}
	}
	return nil
}

func isTLSError(err error) bool {
	var certErr x509.CertificateInvalidError
	var hostErr x509.HostnameError
	var unknownAuthErr x509.UnknownAuthorityError
	var systemRootsErr x509.SystemRootsError
	if errors.As(err, &certErr) || errors.As(err, &hostErr) ||
		errors.As(err, &unknownAuthErr) || errors.As(err, &systemRootsErr) {
		return true
	}

	errStr := err.Error()
	for _, keyword := range []string{"x509:", "tls:", "TLS handshake"} {
		if strings.Contains(errStr, keyword) {
			return true
		}
	}
	return false
}

func isTimeoutError(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Timeout() {
		return true
	}
	return strings.Contains(err.Error(), "deadline exceeded")
}

func isNetworkError(err error) bool {
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}

	errStr := err.Error()
	for _, keyword := range []string{
		"connection refused",
		"connection reset",
		"network is unreachable",
		"no route to host",
	} {
		if strings.Contains(errStr, keyword) {
			return true
		}
	}
	return false
}

// AuthRequiredError is returned when a command needs a token that is not stored.
type AuthRequiredError struct {
	Provider string
	ClientID string
}

// Error returns the message together with the command that fixes it.
func (e *AuthRequiredError) Error() string {
	return fmt.Sprintf(`Not logged in to %s with client %s

To log in, run:
  oauthcli login %s --client-id %s`, e.Provider, e.ClientID, e.Provider, e.ClientID)
}

// Is allows errors.Is() to match any *AuthRequiredError.
func (e *AuthRequiredError) Is(target error) bool {
	_, ok := target.(*AuthRequiredError)
	return ok
}

// AuthExpiredError is returned when the provider rejects the stored token.
type AuthExpiredError struct {
	Provider string
	ClientID string

	// Detail is the provider's explanation, if any.
	Detail string
}

// Error returns the message together with the command that fixes it.
func (e *AuthExpiredError) Error() string {
	msg := fmt.Sprintf("The stored token for %s was rejected", e.Provider)
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return fmt.Sprintf(`%s

To log in again, run:
  oauthcli login %s --client-id %s --force`, msg, e.Provider, e.ClientID)
}

// Is allows errors.Is() to match any *AuthExpiredError.
func (e *AuthExpiredError) Is(target error) bool {
	_, ok := target.(*AuthExpiredError)
	return ok
}

// AuthFailedError is returned when logging in did not produce a token.
type AuthFailedError struct {
	Provider string
	Reason   error
}

// Error returns the message together with the command that retries.
func (e *AuthFailedError) Error() string {
	return fmt.Sprintf(`Login to %s failed: %v

To retry, run:
  oauthcli login %s`, e.Provider, e.Reason, e.Provider)
}

// Unwrap returns the underlying error.
func (e *AuthFailedError) Unwrap() error {
	return e.Reason
}
