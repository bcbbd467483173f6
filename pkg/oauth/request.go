package oauth

import (
	"context"
	"errors"
	"io"
	"net/http"

	"golang.org/x/oauth2"

	"github.com/Zverik/cli-oauth2/pkg/logging"
)

// ErrNotAuthorized is returned by request helpers when the flow holds no token.
var ErrNotAuthorized = errors.New("not authorized: run the authorization flow first")

// persistingTokenSource stores every token the underlying source hands out
// for the first time, so refreshed tokens survive the process.
type persistingTokenSource struct {
	flow     *Flow
	base     oauth2.TokenSource
	recorder *tokenResponseRecorder
}

func (s *persistingTokenSource) Token() (*oauth2.Token, error) {
	tok, err := s.base.Token()
	if err != nil {
		return nil, &TokenExchangeError{Err: err}
	}

	f := s.flow
	f.mu.Lock()
	changed := f.token == nil || f.token.AccessToken != tok.AccessToken
	if changed {
		f.token = tok
	}
	f.mu.Unlock()

	if changed {
		logging.Info("OAuthFlow", "Refreshed token for %s", f.key())
		// A refreshed token that cannot be stored is still good for this process.
		_ = f.saveToken(tok, s.recorder.take())
	}
	return tok, nil
}

// Client returns an HTTP client that authorizes requests with the flow's
// token, refreshing it through the provider when it expires.
func (f *Flow) Client(ctx context.Context) *http.Client {
	ctx, recorder := f.recordingContext(ctx)
	base := f.oauthConfig(f.RedirectURI()).TokenSource(ctx, f.Token())
	return oauth2.NewClient(ctx, &persistingTokenSource{flow: f, base: base, recorder: recorder})
}

// Request sends an authorized request to api, a path relative to the
// provider's API base or an absolute URL.
func (f *Flow) Request(ctx context.Context, method, api string, body io.Reader) (*http.Response, error) {
	return f.requestWithBody(ctx, method, api, "", body)
}

// Get sends an authorized GET request.
func (f *Flow) Get(ctx context.Context, api string) (*http.Response, error) {
	return f.Request(ctx, http.MethodGet, api, nil)
}

// Post sends an authorized POST request. An empty contentType sends none.
func (f *Flow) Post(ctx context.Context, api, contentType string, body io.Reader) (*http.Response, error) {
	return f.requestWithBody(ctx, http.MethodPost, api, contentType, body)
}

// Put sends an authorized PUT request.
func (f *Flow) Put(ctx context.Context, api, contentType string, body io.Reader) (*http.Response, error) {
	return f.requestWithBody(ctx, http.MethodPut, api, contentType, body)
}

// Patch sends an authorized PATCH request.
func (f *Flow) Patch(ctx context.Context, api, contentType string, body io.Reader) (*http.Response, error) {
	return f.requestWithBody(ctx, http.MethodPatch, api, contentType, body)
}

// Head sends an authorized HEAD request.
func (f *Flow) Head(ctx context.Context, api string) (*http.Response, error) {
	return f.Request(ctx, http.MethodHead, api, nil)
}

// Options sends an authorized OPTIONS request.
func (f *Flow) Options(ctx context.Context, api string) (*http.Response, error) {
	return f.Request(ctx, http.MethodOptions, api, nil)
}

func (f *Flow) requestWithBody(ctx context.Context, method, api, contentType string, body io.Reader) (*http.Response, error) {
	if !f.Authorized() {
		return nil, ErrNotAuthorized
	}

	req, err := http.NewRequestWithContext(ctx, method, f.provider.APIURL(api), body)
	if err != nil {
		return nil, err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	logging.Debug("OAuthFlow", "%s %s", method, req.URL.Redacted())
	return f.Client(ctx).Do(req)
}

// Delete sends an authorized DELETE request.
func (f *Flow) Delete(ctx context.Context, api string) (*http.Response, error) {
	return f.Request(ctx, http.MethodDelete, api, nil)
}

// GetTokenTest returns a TokenTest that calls api with GET, for use with
// Options.TokenTest.
func GetTokenTest(api string) TokenTest {
	return func(ctx context.Context, f *Flow) (*http.Response, error) {
		return f.Get(ctx, api)
	}
}
