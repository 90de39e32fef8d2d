package jwthelper

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const ua = "Mozilla/5.0"

func TestIssuer_RoundTrip(t *testing.T) {
	issuer := NewIssuer([]byte("secret"), time.Minute, time.Hour)

	pair, err := issuer.GeneratePair(42, ua)
	require.NoError(t, err)
	assert.NotEqual(t, pair.Access, pair.Refresh)

	claims, err := issuer.Parse(pair.Access, AccessToken, ua)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "42", claims.Subject)
	assert.NotEmpty(t, claims.ID)

	claims, err = issuer.Parse(pair.Refresh, RefreshToken, ua)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
}

func TestIssuer_Rejects(t *testing.T) {
	issuer := NewIssuer([]byte("secret"), time.Minute, time.Hour)
	pair, err := issuer.GeneratePair(1, ua)
	require.NoError(t, err)

	_, err = issuer.Parse(pair.Refresh, AccessToken, ua)
	assert.ErrorIs(t, err, ErrWrongTokenType)

	_, err = issuer.Parse(pair.Access, AccessToken, "curl/8.0")
	assert.ErrorIs(t, err, ErrUserAgent)

	other := NewIssuer([]byte("other"), time.Minute, time.Hour)
	_, err = other.Parse(pair.Access, AccessToken, ua)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = issuer.Parse("not-a-token", AccessToken, ua)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestIssuer_Expired(t *testing.T) {
	issuer := NewIssuer([]byte("secret"), time.Minute, time.Hour)
	issuer.now = func() time.Time { return time.Now().Add(-2 * time.Minute) }

	token, err := issuer.GenerateAccess(1, ua)
	require.NoError(t, err)

	issuer.now = time.Now
	_, err = issuer.Parse(token, AccessToken, ua)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
