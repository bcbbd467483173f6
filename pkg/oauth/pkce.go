package oauth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
)

const (
	// pkceVerifierLength is the code verifier length, the maximum RFC 7636 allows.
	pkceVerifierLength = 128

	// pkceVerifierCharset is the RFC 7636 unreserved character set.
	pkceVerifierCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-._~"

	// stateBytes is the number of random bytes for the OAuth state parameter.
	// 32 bytes encodes to 43 base64url characters.
	stateBytes = 32

	// CodeChallengeMethodS256 is the only challenge method this package sends.
	CodeChallengeMethodS256 = "S256"
)

// PKCEChallenge represents a PKCE (Proof Key for Code Exchange) challenge.
type PKCEChallenge struct {
	// CodeVerifier is the secret sent only with the token exchange.
	// It must never be persisted or shown to the browser.
	CodeVerifier string

	// CodeChallenge is the S256 hash of the verifier, sent in the authorization request.
	CodeChallenge string

	// CodeChallengeMethod is always "S256".
	CodeChallengeMethod string
}

// GeneratePKCE generates a fresh PKCE verifier and its S256 challenge.
// The verifier is 128 characters drawn uniformly from the unreserved
// character set using crypto/rand.
func GeneratePKCE() *PKCEChallenge {
	verifier := generateVerifier()
	return &PKCEChallenge{
		CodeVerifier:        verifier,
		CodeChallenge:       S256Challenge(verifier),
		CodeChallengeMethod: CodeChallengeMethodS256,
	}
}

// S256Challenge derives the code challenge: base64url(SHA256(verifier)) without padding.
func S256Challenge(verifier string) string {
	hash := sha256.Sum256([]byte(verifier))
	return base64.RawURLEncoding.EncodeToString(hash[:])
}

// generateVerifier draws characters by rejection sampling so that every
// character of the 66-symbol set is equally likely.
func generateVerifier() string {
	const n = len(pkceVerifierCharset)
	// Largest multiple of n that fits in a byte; bytes at or above it are discarded.
	const limit = 256 - 256%n

	out := make([]byte, 0, pkceVerifierLength)
	buf := make([]byte, pkceVerifierLength)
	for len(out) < pkceVerifierLength {
		// crypto/rand.Read never returns an error and always fills buf.
		_, _ = rand.Read(buf)
		for _, b := range buf {
			if int(b) >= limit {
				continue
			}
			out = append(out, pkceVerifierCharset[int(b)%n])
			if len(out) == pkceVerifierLength {
				break
			}
		}
	}
	return string(out)
}

// GenerateState generates a random state parameter for the authorization request.
// The state is used to prevent CSRF attacks and link the redirect back to the request.
func GenerateState() string {
	b := make([]byte, stateBytes)
	_, _ = rand.Read(b)
	return base64.RawURLEncoding.EncodeToString(b)
}
