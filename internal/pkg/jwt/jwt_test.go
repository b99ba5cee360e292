package jwt

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccessToken_RoundTrip(t *testing.T) {
	svc := NewService("secret", time.Minute, time.Hour)
	id := uuid.New()

	token, err := svc.GenerateAccessToken(id, "vendor")
	require.NoError(t, err)

	claims, err := svc.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, id, claims.UserID)
	assert.Equal(t, "vendor", claims.Role)
}

func TestRefreshToken_NotAcceptedAsAccess(t *testing.T) {
	svc := NewService("secret", time.Minute, time.Hour)

	token, _, err := svc.GenerateRefreshToken(uuid.New())
	require.NoError(t, err)

	_, err = svc.ValidateAccessToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = svc.ValidateRefreshToken(token)
	assert.NoError(t, err)
}

func TestAccessToken_Expired(t *testing.T) {
	svc := NewService("secret", time.Minute, time.Hour)
	svc.now = func() time.Time { return time.Now().Add(-2 * time.Minute) }

	token, err := svc.GenerateAccessToken(uuid.New(), "viewer")
	require.NoError(t, err)

	_, err = svc.ValidateAccessToken(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestAccessToken_WrongSecret(t *testing.T) {
	token, err := NewService("one", time.Minute, time.Hour).GenerateAccessToken(uuid.New(), "viewer")
	require.NoError(t, err)

	_, err = NewService("two", time.Minute, time.Hour).ValidateAccessToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestOpaqueToken(t *testing.T) {
	a, err := GenerateOpaqueToken()
	require.NoError(t, err)
	b, err := GenerateOpaqueToken()
	require.NoError(t, err)

	assert.Len(t, a, 64)
	assert.NotEqual(t, a, b)
	assert.Equal(t, HashToken(a), HashToken(a))
	assert.NotEqual(t, a, HashToken(a))
}
