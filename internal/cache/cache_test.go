package cache

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chote-app/chote/internal/logger"
)

func newTestCache(t *testing.T) *RedirectCache {
	t.Helper()

	require.NoError(t, logger.Init("error"))

	server := miniredis.RunT(t)
	redirectCache, err := New(context.Background(), server.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { _ = redirectCache.Close() })

	return redirectCache
}

func TestGetMissThenHit(t *testing.T) {
	redirectCache := newTestCache(t)
	ctx := context.Background()

	_, found := redirectCache.Get(ctx, "abc123def0")
	assert.False(t, found)

	redirectCache.Set(ctx, "abc123def0", "http://x.com")

	longURL, found := redirectCache.Get(ctx, "abc123def0")
	require.True(t, found)
	assert.Equal(t, "http://x.com", longURL)
}

func TestNewFailsWithoutServer(t *testing.T) {
	require.NoError(t, logger.Init("error"))

	_, err := New(context.Background(), "127.0.0.1:1")
	assert.Error(t, err)
}
