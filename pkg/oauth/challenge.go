package oauth

import (
	"fmt"
	"net/http"
	"regexp"
	"strings"
)

// BearerChallenge is a parsed WWW-Authenticate header (RFC 6750 section 3)
// from a provider API response.
type BearerChallenge struct {
	// Scheme is the authentication scheme, normally "Bearer".
	Scheme string

	Realm string

	// Scope lists the scopes the resource requires, space separated.
	Scope string

	// Error is "invalid_request", "invalid_token" or "insufficient_scope".
	Error string

	ErrorDescription string
}

var authParamRegex = regexp.MustCompile(`([\w-]+)\s*=\s*(?:"([^"]*)"|([^\s,]+))`)

// ParseBearerChallenge parses a WWW-Authenticate header value such as
//
//	Bearer realm="example", error="invalid_token", error_description="The access token expired"
func ParseBearerChallenge(header string) (*BearerChallenge, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return nil, fmt.Errorf("empty WWW-Authenticate header")
	}

	scheme, params, _ := strings.Cut(header, " ")
	challenge := &BearerChallenge{Scheme: scheme}

	for _, match := range authParamRegex.FindAllStringSubmatch(params, -1) {
		value := match[2]
		if value == "" {
			value = match[3]
		}
		switch strings.ToLower(match[1]) {
		case "realm":
			challenge.Realm = value
		case "scope":
			challenge.Scope = value
		case "error":
			challenge.Error = value
		case "error_description":
			challenge.ErrorDescription = value
		}
	}

	return challenge, nil
}

// ChallengeFromResponse returns the bearer challenge of a 401 or 403 API
// response, or nil when the response carries none.
func ChallengeFromResponse(resp *http.Response) *BearerChallenge {
	if resp == nil || (resp.StatusCode != http.StatusUnauthorized && resp.StatusCode != http.StatusForbidden) {
		return nil
	}

	challenge, err := ParseBearerChallenge(resp.Header.Get("WWW-Authenticate"))
	if err != nil {
		return nil
	}
	return challenge
}

// TokenRejected reports whether the challenge says the access token itself
// is no good, so that logging in again may help.
func (c *BearerChallenge) TokenRejected() bool {
	return c != nil && strings.EqualFold(c.Scheme, "Bearer") && c.Error == "invalid_token"
}

// String renders the challenge for error messages.
func (c *BearerChallenge) String() string {
	if c == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString(c.Scheme)
	if c.Error != "" {
		fmt.Fprintf(&b, " %s", c.Error)
	}
	if c.ErrorDescription != "" {
		fmt.Fprintf(&b, ": %s", c.ErrorDescription)
	}
	if c.Scope != "" {
		fmt.Fprintf(&b, " (scope %q)", c.Scope)
	}
	return b.String()
}
