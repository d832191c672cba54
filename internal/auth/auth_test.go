package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssuer_RoundTrip(t *testing.T) {
	issuer := NewIssuer("test-secret", time.Hour)

	token, err := issuer.GenerateToken("01HZX", "kari@example.com", "Kari")
	require.NoError(t, err)

	claims, err := issuer.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "01HZX", claims.UserID)
	assert.Equal(t, "kari@example.com", claims.Email)
	assert.Equal(t, "Kari", claims.Name)
}

func TestIssuer_Rejects(t *testing.T) {
	issuer := NewIssuer("test-secret", time.Hour)
	other := NewIssuer("other-secret", time.Hour)

	foreign, err := other.GenerateToken("01HZX", "kari@example.com", "Kari")
	require.NoError(t, err)

	expired := NewIssuer("test-secret", time.Minute)
	expired.now = func() time.Time { return time.Now().Add(-time.Hour) }
	stale, err := expired.GenerateToken("01HZX", "kari@example.com", "Kari")
	require.NoError(t, err)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, JWTClaims{UserID: "01HZX"})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	for name, token := range map[string]string{
		"garbage":      "not-a-jwt",
		"wrong secret": foreign,
		"expired":      stale,
		"alg none":     unsigned,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := issuer.ValidateToken(token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestIssuer_NoSecret(t *testing.T) {
	issuer := NewIssuer("", time.Hour)
	_, err := issuer.GenerateToken("id", "e", "n")
	assert.ErrorIs(t, err, ErrSecretNotSet)
}

func TestPassword(t *testing.T) {
	hash, err := HashPassword("correct horse")
	require.NoError(t, err)

	assert.NoError(t, VerifyPassword("correct horse", hash))
	assert.Error(t, VerifyPassword("battery staple", hash))
}
