package service

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCancellationTokenFormat(t *testing.T) {
	t.Parallel()

	token, err := NewCancellationToken()
	require.NoError(t, err)

	// 32 random bytes, URL-safe and unpadded so the token drops straight
	// into a path segment.
	raw, err := base64.RawURLEncoding.DecodeString(token)
	require.NoError(t, err)
	assert.Len(t, raw, 32)
	assert.NotContains(t, token, "=")
	assert.NotContains(t, token, "/")
	assert.NotContains(t, token, "+")
}

func TestNewCancellationTokenUnique(t *testing.T) {
	t.Parallel()

	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		token, err := NewCancellationToken()
		require.NoError(t, err)
		if seen[token] {
			t.Fatalf("duplicate token after %d draws", i)
		}
		seen[token] = true
	}
}
