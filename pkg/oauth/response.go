package oauth

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"net/url"
	"sync"

	"golang.org/x/oauth2"
)

// maxTokenResponseSize matches the limit x/oauth2 applies to token responses.
const maxTokenResponseSize = 1 << 20

// tokenResponseRecorder keeps the decoded body of the last successful token
// endpoint response, so fields x/oauth2 does not model can be stored with
// the token. Other requests pass through untouched.
type tokenResponseRecorder struct {
	tokenURL *url.URL
	base     http.RoundTripper

	mu     sync.Mutex
	fields map[string]any
}

func (r *tokenResponseRecorder) RoundTrip(req *http.Request) (*http.Response, error) {
	base := r.base
	if base == nil {
		base = http.DefaultTransport
	}
	resp, err := base.RoundTrip(req)
	if err != nil || resp.StatusCode/100 != 2 || !r.isTokenRequest(req) {
		return resp, err
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxTokenResponseSize))
	resp.Body.Close()
	if err != nil {
		return nil, err
	}
	resp.Body = io.NopCloser(bytes.NewReader(body))

	if fields := decodeTokenResponse(resp.Header.Get("Content-Type"), body); fields != nil {
		r.mu.Lock()
		r.fields = fields
		r.mu.Unlock()
	}
	return resp, nil
}

func (r *tokenResponseRecorder) isTokenRequest(req *http.Request) bool {
	return r.tokenURL != nil && req.Method == http.MethodPost &&
		req.URL.Host == r.tokenURL.Host && req.URL.Path == r.tokenURL.Path
}

// take returns the recorded fields and forgets them.
func (r *tokenResponseRecorder) take() map[string]any {
	r.mu.Lock()
	defer r.mu.Unlock()
	fields := r.fields
	r.fields = nil
	return fields
}

// decodeTokenResponse parses a token response the way x/oauth2 does: form
// encoding for form and plain-text content types, JSON otherwise.
func decodeTokenResponse(contentType string, body []byte) map[string]any {
	mediaType, _, _ := mime.ParseMediaType(contentType)
	switch mediaType {
	case "application/x-www-form-urlencoded", "text/plain":
		values, err := url.ParseQuery(string(body))
		if err != nil {
			return nil
		}
		fields := make(map[string]any, len(values))
		for key := range values {
			fields[key] = values.Get(key)
		}
		return fields
	default:
		var fields map[string]any
		if err := json.Unmarshal(body, &fields); err != nil {
			return nil
		}
		return fields
	}
}

// recordingContext makes x/oauth2 use the flow's HTTP client with a recorder
// in front of its transport.
func (f *Flow) recordingContext(ctx context.Context) (context.Context, *tokenResponseRecorder) {
	base := f.httpClient
	if base == nil {
		base = http.DefaultClient
	}
	recorder := &tokenResponseRecorder{base: base.Transport}
	if u, err := url.Parse(f.provider.TokenURL); err == nil {
		recorder.tokenURL = u
	}

	client := *base
	client.Transport = recorder
	return context.WithValue(ctx, oauth2.HTTPClient, &client), recorder
}
