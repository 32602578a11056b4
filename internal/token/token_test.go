package token_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lonepengu/backend/internal/token"
)

func TestCodec_RoundTrip(t *testing.T) {
	codec := token.NewCodec("unit-test-secret")
	userID := uuid.New()

	tests := []struct {
		name    string
		purpose string
	}{
		{name: "access token with implicit purpose", purpose: token.PurposeAccess},
		{name: "refresh token", purpose: token.PurposeRefresh},
		{name: "unrecognized purpose is returned as-is", purpose: "totp"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			signed, err := codec.Issue(userID, "a@x.com", tt.purpose, time.Hour)
			require.NoError(t, err)
			require.NotEmpty(t, signed)

			claims, err := codec.Verify(signed)
			require.NoError(t, err)

			gotID, err := claims.UserID()
			require.NoError(t, err)
			assert.Equal(t, userID, gotID)
			assert.Equal(t, "a@x.com", claims.Email)
			assert.Equal(t, tt.purpose, claims.Purpose)
		})
	}
}

func TestCodec_Expired(t *testing.T) {
	codec := token.NewCodec("unit-test-secret")

	signed, err := codec.Issue(uuid.New(), "a@x.com", token.PurposeAccess, -time.Minute)
	require.NoError(t, err)

	claims, err := codec.Verify(signed)
	assert.Nil(t, claims)
	assert.ErrorIs(t, err, token.ErrExpired)
}

func TestCodec_Malformed(t *testing.T) {
	codec := token.NewCodec("unit-test-secret")
	other := token.NewCodec("a-different-secret")

	signedByOther, err := other.Issue(uuid.New(), "a@x.com", token.PurposeAccess, time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{name: "garbage", token: "not-a-token"},
		{name: "empty", token: ""},
		{name: "wrong signing key", token: signedByOther},
		{name: "truncated", token: signedByOther[:len(signedByOther)/2]},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := codec.Verify(tt.token)
			assert.Nil(t, claims)
			assert.ErrorIs(t, err, token.ErrMalformed)
		})
	}
}

func TestCodec_ExpiryMatchesTTL(t *testing.T) {
	codec := token.NewCodec("unit-test-secret")
	ttl := 30 * 24 * time.Hour

	signed, err := codec.Issue(uuid.New(), "a@x.com", token.PurposeAccess, ttl)
	require.NoError(t, err)

	claims, err := codec.Verify(signed)
	require.NoError(t, err)

	require.NotNil(t, claims.ExpiresAt)
	assert.WithinDuration(t, time.Now().Add(ttl), claims.ExpiresAt.Time, 5*time.Second)
}
