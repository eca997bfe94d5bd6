package client

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// Fetcher loads the value for one cache key.
type Fetcher func(ctx context.Context) (any, error)

type cacheEntry struct {
	value     any
	fetchedAt time.Time
}

// QueryCache is a stale-while-revalidate cache for read operations.
//
// An entry younger than its stale time is served as is. An older entry is
// still served, but triggers one background refresh. Entries older than the
// GC time are dropped and fetched again in the foreground. Concurrent loads
// of the same key share a single request.
type QueryCache struct {
	gcTime            time.Duration
	revalidateTimeout time.Duration
	log               zerolog.Logger
	now               func() time.Time

	mu      sync.Mutex
	entries map[string]cacheEntry
	// epoch increases on every invalidation. Loads started under an older
	// epoch are returned to their caller but not stored.
	epoch uint64
	group singleflight.Group
}

// NewQueryCache returns an empty cache. gcTime <= 0 keeps entries forever.
func NewQueryCache(gcTime time.Duration, log zerolog.Logger) *QueryCache {
	return &QueryCache{
		gcTime:            gcTime,
		revalidateTimeout: 10 * time.Second,
		log:               log,
		now:               time.Now,
		entries:           make(map[string]cacheEntry),
	}
}

// Get returns the cached value for key, loading it with fetch when missing
// or expired.
func (q *QueryCache) Get(ctx context.Context, key string, staleTime time.Duration, fetch Fetcher) (any, error) {
	now := q.now()

	q.mu.Lock()
	e, ok := q.entries[key]
	epoch := q.epoch
	if ok && q.gcTime > 0 && now.Sub(e.fetchedAt) >= q.gcTime {
		delete(q.entries, key)
		ok = false
	}
	q.mu.Unlock()

	if !ok {
		return q.load(ctx, key, epoch, fetch)
	}
	if now.Sub(e.fetchedAt) >= staleTime {
		q.revalidate(key, epoch, fetch)
	}
	return e.value, nil
}

// Invalidate drops every entry whose key starts with one of the prefixes.
func (q *QueryCache) Invalidate(prefixes ...string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.epoch++
	for key := range q.entries {
		for _, p := range prefixes {
			if strings.HasPrefix(key, p) {
				delete(q.entries, key)
				break
			}
		}
	}
}

// Clear drops every entry.
func (q *QueryCache) Clear() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.epoch++
	clear(q.entries)
}

// Len reports the number of stored entries.
func (q *QueryCache) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.entries)
}

func (q *QueryCache) load(ctx context.Context, key string, epoch uint64, fetch Fetcher) (any, error) {
	v, err, _ := q.group.Do(flightKey(key, epoch), func() (any, error) {
		return q.fetchAndStore(ctx, key, epoch, fetch)
	})
	return v, err
}

func (q *QueryCache) revalidate(key string, epoch uint64, fetch Fetcher) {
	// The result channel is buffered, so nobody has to read it.
	q.group.DoChan(flightKey(key, epoch), func() (any, error) {
		ctx, cancel := context.WithTimeout(context.Background(), q.revalidateTimeout)
		defer cancel()
		v, err := q.fetchAndStore(ctx, key, epoch, fetch)
		if err != nil {
			q.log.Warn().Err(err).Str("key", key).Msg("background revalidation failed")
		}
		return v, err
	})
}

func (q *QueryCache) fetchAndStore(ctx context.Context, key string, epoch uint64, fetch Fetcher) (any, error) {
	v, err := fetch(ctx)
	if err != nil {
		return nil, err
	}
	q.mu.Lock()
	if q.epoch == epoch {
		q.entries[key] = cacheEntry{value: v, fetchedAt: q.now()}
	}
	q.mu.Unlock()
	return v, nil
}

func flightKey(key string, epoch uint64) string {
	return key + "#" + strconv.FormatUint(epoch, 10)
}
