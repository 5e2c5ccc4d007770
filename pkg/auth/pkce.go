package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
)

// verifierBytes is the number of random bytes behind the code verifier and the
// state token. 32 bytes encode to 43 url-safe characters, the RFC 7636 minimum.
const verifierBytes = 32

// PKCEChallenge holds the per-attempt PKCE material and the anti-CSRF state
// token. It lives only in memory for the duration of one login attempt.
type PKCEChallenge struct {
	CodeVerifier  string
	CodeChallenge string
	State         string
}

// GeneratePKCE produces a fresh code verifier, its S256 challenge and a state
// token from the system CSPRNG.
func GeneratePKCE() (PKCEChallenge, error) {
	verifier, err := randomToken(verifierBytes)
	if err != nil {
		return PKCEChallenge{}, err
	}
	state, err := randomToken(verifierBytes)
	if err != nil {
		return PKCEChallenge{}, err
	}
	sum := sha256.Sum256([]byte(verifier))
	return PKCEChallenge{
		CodeVerifier:  verifier,
		CodeChallenge: base64.RawURLEncoding.EncodeToString(sum[:]),
		State:         state,
	}, nil
}

func randomToken(length int) (string, error) {
	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate random token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(bytes), nil
}
