package cmd

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zverik/cli-oauth2/internal/cli"
	"github.com/Zverik/cli-oauth2/pkg/tokenstore"
)

// newMastodonAPI accepts the bearer token T1 and echoes each request.
func newMastodonAPI(t *testing.T) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer T1" {
			w.Header().Set("WWW-Authenticate", `Bearer realm="api", error="invalid_token", error_description="The access token was revoked"`)
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		body, _ := io.ReadAll(r.Body)
		w.Header().Set("X-Test", "yes")
		fmt.Fprintf(w, "%s %s %s %s", r.Method, r.URL.Path, r.Header.Get("Content-Type"), body)
	}))
	t.Cleanup(server.Close)
	return server
}

func requestArgs(dir, serverURL string, extra ...string) []string {
	args := []string{"request", "mastodon", "accounts/verify_credentials",
		"--config-dir", dir, "--client-id", "abc", "--url", serverURL}
	return append(args, extra...)
}

func TestRequestCommand(t *testing.T) {
	server := newMastodonAPI(t)
	dir := t.TempDir()
	writeTokens(t, dir, map[string]tokenstore.Token{
		"mastodon/abc": {"access_token": "T1", "token_type": "bearer"},
	})

	tests := []struct {
		name  string
		stdin string
		extra []string
		want  string
	}{
		{
			name: "get",
			want: "GET /api/v1/accounts/verify_credentials  ",
		},
		{
			name:  "post form",
			extra: []string{"-X", "post", "-d", "status=hi"},
			want:  "POST /api/v1/accounts/verify_credentials application/x-www-form-urlencoded status=hi",
		},
		{
			name:  "put json from stdin",
			stdin: `{"a":1}`,
			extra: []string{"-X", "PUT", "-d", "-", "--content-type", "application/json"},
			want:  `PUT /api/v1/accounts/verify_credentials application/json {"a":1}`,
		},
		{
			name:  "delete",
			extra: []string{"-X", "DELETE"},
			want:  "DELETE /api/v1/accounts/verify_credentials",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _, err := runCLI(t, tt.stdin, requestArgs(dir, server.URL, tt.extra...)...)
			require.NoError(t, err)
			assert.Contains(t, out, tt.want)
		})
	}
}

func TestRequestCommandIncludeHeaders(t *testing.T) {
	server := newMastodonAPI(t)
	dir := t.TempDir()
	writeTokens(t, dir, map[string]tokenstore.Token{
		"mastodon/abc": {"access_token": "T1", "token_type": "bearer"},
	})

	out, _, err := runCLI(t, "", requestArgs(dir, server.URL, "-i")...)
	require.NoError(t, err)
	assert.Contains(t, out, "HTTP/1.1 200 OK")
	assert.Contains(t, out, "X-Test: yes")
}

func TestRequestCommandNotLoggedIn(t *testing.T) {
	server := newMastodonAPI(t)

	_, _, err := runCLI(t, "", requestArgs(t.TempDir(), server.URL)...)
	require.Error(t, err)

	var required *cli.AuthRequiredError
	require.ErrorAs(t, err, &required)
	assert.Equal(t, "mastodon", required.Provider)
	assert.Equal(t, ExitCodeAuthRequired, getExitCode(err))
}

func TestRequestCommandRejectedToken(t *testing.T) {
	server := newMastodonAPI(t)
	dir := t.TempDir()
	writeTokens(t, dir, map[string]tokenstore.Token{
		"mastodon/abc": {"access_token": "REVOKED", "token_type": "bearer"},
	})

	_, _, err := runCLI(t, "", requestArgs(dir, server.URL)...)
	require.Error(t, err)

	var expired *cli.AuthExpiredError
	require.ErrorAs(t, err, &expired)
	assert.Equal(t, "The access token was revoked", expired.Detail)
	assert.Contains(t, err.Error(), "--force")
	assert.Equal(t, ExitCodeAuthRequired, getExitCode(err))
}
