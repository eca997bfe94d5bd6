package client

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	f.mu.Unlock()
}

func newTestCache(gc time.Duration) (*QueryCache, *fakeClock) {
	clock := &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	q := NewQueryCache(gc, zerolog.Nop())
	q.now = clock.Now
	return q, clock
}

func counter(calls *atomic.Int32) Fetcher {
	return func(context.Context) (any, error) {
		return int(calls.Add(1)), nil
	}
}

func TestQueryCache_FreshHit(t *testing.T) {
	q, clock := newTestCache(time.Hour)
	var calls atomic.Int32

	v, err := q.Get(context.Background(), "k", time.Minute, counter(&calls))
	require.NoError(t, err)
	assert.Equal(t, 1, v)

	clock.Advance(30 * time.Second)
	v, err = q.Get(context.Background(), "k", time.Minute, counter(&calls))
	require.NoError(t, err)
	assert.Equal(t, 1, v)
	assert.Equal(t, int32(1), calls.Load())
}

func TestQueryCache_StaleServesAndRevalidates(t *testing.T) {
	q, clock := newTestCache(time.Hour)
	var calls atomic.Int32

	_, err := q.Get(context.Background(), "k", time.Minute, counter(&calls))
	require.NoError(t, err)

	clock.Advance(2 * time.Minute)
	v, err := q.Get(context.Background(), "k", time.Minute, counter(&calls))
	require.NoError(t, err)
	assert.Equal(t, 1, v, "stale value is served immediately")

	assert.Eventually(t, func() bool {
		v, _ := q.Get(context.Background(), "k", time.Minute, counter(&calls))
		return v == 2
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, int32(2), calls.Load())
}

func TestQueryCache_ExpiredEntryLoadsInForeground(t *testing.T) {
	q, clock := newTestCache(5 * time.Minute)
	var calls atomic.Int32

	_, err := q.Get(context.Background(), "k", time.Minute, counter(&calls))
	require.NoError(t, err)

	clock.Advance(6 * time.Minute)
	v, err := q.Get(context.Background(), "k", time.Minute, counter(&calls))
	require.NoError(t, err)
	assert.Equal(t, 2, v)
}

func TestQueryCache_ErrorsAreNotCached(t *testing.T) {
	q, _ := newTestCache(time.Hour)
	boom := errors.New("boom")

	_, err := q.Get(context.Background(), "k", time.Minute, func(context.Context) (any, error) { return nil, boom })
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, q.Len())
}

func TestQueryCache_ConcurrentLoadsShareOneFetch(t *testing.T) {
	q, _ := newTestCache(time.Hour)
	var calls atomic.Int32
	release := make(chan struct{})
	fetch := func(context.Context) (any, error) {
		calls.Add(1)
		<-release
		return "v", nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := q.Get(context.Background(), "k", time.Minute, fetch)
			assert.NoError(t, err)
			assert.Equal(t, "v", v)
		}()
	}
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
}

func TestQueryCache_InvalidatePrefixes(t *testing.T) {
	q, _ := newTestCache(time.Hour)
	var calls atomic.Int32
	ctx := context.Background()

	for _, key := range []string{OpUsers + "?page=1", OpUsers + "?page=2", OpStats, OpBooks + "?"} {
		_, err := q.Get(ctx, key, time.Minute, counter(&calls))
		require.NoError(t, err)
	}
	require.Equal(t, 4, q.Len())

	q.Invalidate(OpUsers, OpStats)
	assert.Equal(t, 1, q.Len())

	q.Clear()
	assert.Equal(t, 0, q.Len())
}

func TestQueryCache_LoadAcrossInvalidationIsNotStored(t *testing.T) {
	q, _ := newTestCache(time.Hour)
	started := make(chan struct{})
	release := make(chan struct{})

	done := make(chan any)
	go func() {
		v, _ := q.Get(context.Background(), "k", time.Minute, func(context.Context) (any, error) {
			close(started)
			<-release
			return "old", nil
		})
		done <- v
	}()

	<-started
	q.Invalidate("k")
	close(release)
	assert.Equal(t, "old", <-done)
	assert.Equal(t, 0, q.Len())

	v, err := q.Get(context.Background(), "k", time.Minute, func(context.Context) (any, error) { return "new", nil })
	require.NoError(t, err)
	assert.Equal(t, "new", v)
}
