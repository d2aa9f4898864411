package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTokenCodec_RoundTrip(t *testing.T) {
	codec := NewTokenCodec("test-secret")
	expiresAt := time.Now().Add(7 * 24 * time.Hour)

	token, err := codec.Mint("user-123", expiresAt)
	assert.NoError(t, err)
	assert.True(t, IsCompact(token))

	claims, err := codec.Decode(token)
	assert.NoError(t, err)
	assert.Equal(t, "user-123", claims.Subject)
	assert.WithinDuration(t, expiresAt, claims.ExpiresAt.Time, time.Second)
}

func TestTokenCodec_WrongKey(t *testing.T) {
	codec := NewTokenCodec("test-secret")
	other := NewTokenCodec("another-secret")

	token, err := other.Mint("user-123", time.Now().Add(time.Hour))
	assert.NoError(t, err)

	claims, err := codec.Decode(token)
	assert.Nil(t, claims)
	assert.Equal(t, ErrInvalidToken, err)
}

func TestTokenCodec_Expired(t *testing.T) {
	codec := NewTokenCodec("test-secret")

	token, err := codec.Mint("user-123", time.Now().Add(-time.Minute))
	assert.NoError(t, err)

	claims, err := codec.Decode(token)
	assert.Nil(t, claims)
	assert.Equal(t, ErrInvalidToken, err)
}

func TestTokenCodec_Malformed(t *testing.T) {
	codec := NewTokenCodec("test-secret")

	for _, token := range []string{"", "garbage", "a.b", "a.b.c"} {
		claims, err := codec.Decode(token)
		assert.Nil(t, claims)
		assert.Equal(t, ErrInvalidToken, err)
	}
}

func TestIsCompact(t *testing.T) {
	assert.True(t, IsCompact("header.payload.signature"))
	assert.False(t, IsCompact("f6a7c2de-0b4f-4a2e-9a3e-0a1b2c3d4e5f"))
	assert.False(t, IsCompact("a.b"))
	assert.False(t, IsCompact(""))
}
