package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheExpiry(t *testing.T) {
	c := NewCache()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "users:stats", []byte("v1"), time.Minute))
	got, ok, err := c.Get(ctx, "users:stats")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("v1"), got)

	now = now.Add(time.Minute)
	_, ok, err = c.Get(ctx, "users:stats")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCacheDeletePrefix(t *testing.T) {
	c := NewCache()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "users:a", []byte("1"), 0))
	require.NoError(t, c.Set(ctx, "users:b", []byte("2"), 0))
	require.NoError(t, c.Set(ctx, "books:a", []byte("3"), 0))

	require.NoError(t, c.DeletePrefix(ctx, "users:"))

	_, ok, _ := c.Get(ctx, "users:a")
	assert.False(t, ok)
	_, ok, _ = c.Get(ctx, "books:a")
	assert.True(t, ok)
}

func TestCacheReturnsCopies(t *testing.T) {
	c := NewCache()
	ctx := context.Background()

	val := []byte("abc")
	require.NoError(t, c.Set(ctx, "k", val, 0))
	val[0] = 'z'

	got, _, _ := c.Get(ctx, "k")
	assert.Equal(t, "abc", string(got))
}
