package auth

import (
	"crypto/sha256"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeneratePKCE(t *testing.T) {
	t.Run("produces url-safe material of sufficient length", func(t *testing.T) {
		pkce, err := GeneratePKCE()
		require.NoError(t, err)

		assert.GreaterOrEqual(t, len(pkce.CodeVerifier), 43)
		assert.NotEmpty(t, pkce.State)

		_, err = base64.RawURLEncoding.DecodeString(pkce.CodeVerifier)
		assert.NoError(t, err, "verifier must be base64url without padding")
		_, err = base64.RawURLEncoding.DecodeString(pkce.State)
		assert.NoError(t, err, "state must be base64url without padding")

		assert.NotContains(t, pkce.CodeVerifier, "+")
		assert.NotContains(t, pkce.CodeVerifier, "/")
		assert.NotContains(t, pkce.CodeVerifier, "=")
	})

	t.Run("challenge is the S256 of the verifier", func(t *testing.T) {
		pkce, err := GeneratePKCE()
		require.NoError(t, err)

		sum := sha256.Sum256([]byte(pkce.CodeVerifier))
		assert.Equal(t, base64.RawURLEncoding.EncodeToString(sum[:]), pkce.CodeChallenge)
	})

	t.Run("successive attempts never repeat", func(t *testing.T) {
		seen := map[string]bool{}
		for i := 0; i < 50; i++ {
			pkce, err := GeneratePKCE()
			require.NoError(t, err)
			require.False(t, seen[pkce.CodeVerifier], "verifier repeated")
			require.False(t, seen[pkce.State], "state repeated")
			seen[pkce.CodeVerifier] = true
			seen[pkce.State] = true
		}
	})

	t.Run("state and verifier are independent", func(t *testing.T) {
		pkce, err := GeneratePKCE()
		require.NoError(t, err)
		assert.NotEqual(t, pkce.CodeVerifier, pkce.State)
	})
}
