package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndVerify(t *testing.T) {
	issuer := NewTokenIssuer("s3cret", 0)
	assert.Equal(t, DefaultTTL, issuer.TTL())

	tok, err := issuer.Issue(Identity{Email: "fern@example.com"})
	require.NoError(t, err)

	claims, err := issuer.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, "fern@example.com", claims.Email)
	assert.WithinDuration(t, time.Now().Add(DefaultTTL), claims.ExpiresAt.Time, time.Minute)
}

func TestVerifyWrongSecret(t *testing.T) {
	tok, err := NewTokenIssuer("a", time.Hour).Issue(Identity{Email: "x@y.io"})
	require.NoError(t, err)

	_, err = NewTokenIssuer("b", time.Hour).Verify(tok)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestVerifyExpired(t *testing.T) {
	issuer := NewTokenIssuer("k", time.Hour)
	issuer.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	tok, err := issuer.Issue(Identity{Email: "old@example.com"})
	require.NoError(t, err)

	issuer.now = time.Now
	_, err = issuer.Verify(tok)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestVerifyRejectsNoneAlg(t *testing.T) {
	tok, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{Email: "x@y.io"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = NewTokenIssuer("k", time.Hour).Verify(tok)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestVerifyEmpty(t *testing.T) {
	_, err := NewTokenIssuer("k", time.Hour).Verify("")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}
