// package auth implements the OAuth2 authorization code flow with PKCE for Spotify
package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
)

// GenerateState returns a cryptographically random anti-forgery token for one
// authorization attempt.
func GenerateState() (string, error) {
	return randomToken(32)
}

// GenerateVerifier returns a cryptographically random PKCE code verifier.
func GenerateVerifier() (string, error) {
	return randomToken(32)
}

// Challenge derives the S256 code challenge for a verifier.
//
// Deterministic: challenge = base64url(SHA-256(verifier)), unpadded.
func Challenge(verifier string) string {
	sum := sha256.Sum256([]byte(verifier))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

// randomToken reads n bytes from the system's secure random source and encodes them as unpadded base64url.
func randomToken(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
