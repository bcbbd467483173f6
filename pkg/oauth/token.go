package oauth

import (
	"encoding/json"
	"maps"
	"time"

	"golang.org/x/oauth2"

	"github.com/Zverik/cli-oauth2/pkg/tokenstore"
)

// Token record fields.
const (
	fieldAccessToken  = "access_token"
	fieldTokenType    = "token_type"
	fieldRefreshToken = "refresh_token"
	fieldExpiresIn    = "expires_in"
	fieldExpiresAt    = "expires_at"
	fieldScope        = "scope"
	fieldIDToken      = "id_token"
)

// TokenToRecord converts a token into the record persisted by a token store.
// response holds the decoded token endpoint response, if known; all of its
// fields are kept, with the token's own fields written over them. Only
// fields the server actually returned are written and the token type is
// kept as sent, not normalised.
func TokenToRecord(tok *oauth2.Token, response map[string]any) tokenstore.Token {
	if tok == nil {
		return nil
	}

	rec := make(tokenstore.Token, len(response)+1)
	maps.Copy(rec, response)
	rec[fieldAccessToken] = tok.AccessToken
	if tok.TokenType != "" {
		rec[fieldTokenType] = tok.TokenType
	}
	if tok.RefreshToken != "" {
		rec[fieldRefreshToken] = tok.RefreshToken
	}
	if tok.ExpiresIn > 0 {
		rec[fieldExpiresIn] = tok.ExpiresIn
	}
	if !tok.Expiry.IsZero() {
		rec[fieldExpiresAt] = tok.Expiry.Unix()
	}
	for _, field := range []string{fieldScope, fieldIDToken} {
		if v, ok := tok.Extra(field).(string); ok && v != "" {
			rec[field] = v
		}
	}
	return rec
}

// RecordToToken converts a stored record back into a token. The whole record
// stays reachable through Token.Extra.
func RecordToToken(rec tokenstore.Token) *oauth2.Token {
	if rec == nil {
		return nil
	}

	tok := &oauth2.Token{
		AccessToken:  stringField(rec, fieldAccessToken),
		TokenType:    stringField(rec, fieldTokenType),
		RefreshToken: stringField(rec, fieldRefreshToken),
	}
	if n, ok := intField(rec, fieldExpiresIn); ok {
		tok.ExpiresIn = n
	}
	if n, ok := intField(rec, fieldExpiresAt); ok && n > 0 {
		tok.Expiry = time.Unix(n, 0)
	}
	return tok.WithExtra(map[string]any(rec))
}

// expiredWithoutRefresh reports whether tok can no longer be used or renewed.
func expiredWithoutRefresh(tok *oauth2.Token, now time.Time) bool {
	return tok.RefreshToken == "" && !tok.Expiry.IsZero() && !tok.Expiry.After(now)
}

func stringField(rec tokenstore.Token, field string) string {
	s, _ := rec[field].(string)
	return s
}

// intField reads a number that may have been decoded from JSON as float64
// or json.Number, or set directly as an integer.
func intField(rec tokenstore.Token, field string) (int64, bool) {
	switch v := rec[field].(type) {
	case float64:
		return int64(v), true
	case int64:
		return v, true
	case int:
		return int64(v), true
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			f, ferr := v.Float64()
			if ferr != nil {
				return 0, false
			}
			return int64(f), true
		}
		return n, true
	default:
		return 0, false
	}
}
