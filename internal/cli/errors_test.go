package cli

import (
	"context"
	"crypto/x509"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
	"testing"
)

func TestAuthRequiredError(t *testing.T) {
	t.Run("error message includes provider and guidance", func(t *testing.T) {
		err := &AuthRequiredError{Provider: "openstreetmap", ClientID: "abc"}
		msg := err.Error()

		if !strings.Contains(msg, "openstreetmap") {
			t.Error("expected error message to contain provider")
		}
		if !strings.Contains(msg, "oauthcli login openstreetmap --client-id abc") {
			t.Error("expected error message to contain login command")
		}
	})

	t.Run("errors.Is works with wrapped error", func(t *testing.T) {
		authErr := &AuthRequiredError{Provider: "github", ClientID: "x"}
		wrappedErr := fmt.Errorf("wrapped: %w", authErr)

		if !errors.Is(wrappedErr, &AuthRequiredError{}) {
			t.Error("expected errors.Is to find wrapped AuthRequiredError")
		}
		if errors.Is(errors.New("some error"), &AuthRequiredError{}) {
			t.Error("expected errors.Is to return false for different type")
		}
	})
}

func TestAuthExpiredError(t *testing.T) {
	err := &AuthExpiredError{Provider: "github", ClientID: "abc", Detail: "Bearer invalid_token: expired"}
	msg := err.Error()

	if !strings.Contains(msg, "rejected: Bearer invalid_token: expired") {
		t.Errorf("expected detail in message, got %q", msg)
	}
	if !strings.Contains(msg, "oauthcli login github --client-id abc --force") {
		t.Error("expected error message to contain forced login command")
	}
	if !errors.Is(fmt.Errorf("x: %w", err), &AuthExpiredError{}) {
		t.Error("expected errors.Is to find wrapped AuthExpiredError")
	}
}

func TestAuthFailedError(t *testing.T) {
	reason := errors.New("access_denied")
	err := &AuthFailedError{Provider: "gitlab", Reason: reason}

	if !strings.Contains(err.Error(), "Login to gitlab failed: access_denied") {
		t.Errorf("unexpected message %q", err.Error())
	}
	if !strings.Contains(err.Error(), "oauthcli login gitlab") {
		t.Error("expected retry guidance")
	}
	if !errors.Is(err, reason) {
		t.Error("expected Unwrap to expose the reason")
	}
}

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestClassifyConnectionError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantType ConnectionErrorType
		wantNil  bool
	}{
		{name: "nil", err: nil, wantNil: true},
		{name: "protocol error", err: errors.New("oauth2: invalid_grant"), wantNil: true},
		{
			name:     "unknown authority",
			err:      &url.Error{Op: "Post", URL: "https://x", Err: x509.UnknownAuthorityError{}},
			wantType: ConnectionErrorTLS,
		},
		{
			name:     "tls message",
			err:      errors.New("remote error: tls: handshake failure"),
			wantType: ConnectionErrorTLS,
		},
		{
			name:     "dns",
			err:      &url.Error{Op: "Get", URL: "https://x", Err: &net.DNSError{Err: "no such host", Name: "x"}},
			wantType: ConnectionErrorDNS,
		},
		{
			name:     "timeout",
			err:      &url.Error{Op: "Get", URL: "https://x", Err: timeoutErr{}},
			wantType: ConnectionErrorTimeout,
		},
		{
			name:     "deadline",
			err:      fmt.Errorf("request: %w", context.DeadlineExceeded),
			wantType: ConnectionErrorTimeout,
		},
		{
			name:     "refused",
			err:      &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connect: connection refused")},
			wantType: ConnectionErrorNetwork,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifyConnectionError(tt.err, "https://provider.example/token")
			if tt.wantNil {
				if got != nil {
					t.Fatalf("expected nil, got %v", got)
				}
				return
			}
			if got == nil {
				t.Fatal("expected a connection error")
			}
			if got.Type != tt.wantType {
				t.Errorf("type = %s, want %s", got.Type, tt.wantType)
			}
			if !errors.Is(got, tt.err) {
				t.Error("expected the original error to be wrapped")
			}
			if !strings.Contains(got.Error(), "https://provider.example/token") {
				t.Errorf("expected endpoint in %q", got.Error())
			}
		})
	}
}

func TestConnectionErrorType_String(t *testing.T) {
	if ConnectionErrorTLS.String() != "TLS certificate error" {
		t.Error("unexpected TLS name")
	}
	if ConnectionErrorType(99).String() != "Connection error" {
		t.Error("unexpected fallback name")
	}
}
