package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/sirpyerre/user-management-api/internal/core/domain"
	"github.com/sirpyerre/user-management-api/internal/core/ports"
	"github.com/sirpyerre/user-management-api/internal/pkg/metrics"
	"github.com/sirpyerre/user-management-api/pkg/logger"
)

const (
	cachePrefix     = "users:"
	defaultCacheTTL = 30 * time.Second
)

// CachedUserService is a read-through cache over the list and stats reads.
// Every successful mutation drops all cached entries. A read that started
// before an invalidation is returned to its caller but never stored.
type CachedUserService struct {
	ports.UserService
	cache  ports.Cache
	ttl    time.Duration
	logger zerolog.Logger

	// mu orders stores against invalidations; gen counts invalidations.
	mu  sync.RWMutex
	gen uint64
}

func NewCachedUserService(next ports.UserService, cache ports.Cache, ttl time.Duration, logger zerolog.Logger) *CachedUserService {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &CachedUserService{UserService: next, cache: cache, ttl: ttl, logger: logger}
}

func (s *CachedUserService) ListUsers(ctx context.Context, in ports.ListUsersInput) (*ports.ListUsersResult, error) {
	key := fmt.Sprintf("%slist:p=%d:s=%d:q=%s:r=%s:by=%s:o=%s",
		cachePrefix, in.Page, in.PageSize, in.Search, in.Role, in.SortBy, in.SortOrder)

	var out ports.ListUsersResult
	if s.lookup(ctx, key, &out) {
		return &out, nil
	}
	gen := s.generation()
	res, err := s.UserService.ListUsers(ctx, in)
	if err != nil {
		return nil, err
	}
	s.store(ctx, gen, key, res)
	return res, nil
}

func (s *CachedUserService) Stats(ctx context.Context) (*domain.UserStats, error) {
	key := cachePrefix + "stats"

	var out domain.UserStats
	if s.lookup(ctx, key, &out) {
		return &out, nil
	}
	gen := s.generation()
	res, err := s.UserService.Stats(ctx)
	if err != nil {
		return nil, err
	}
	s.store(ctx, gen, key, res)
	return res, nil
}

func (s *CachedUserService) CreateUser(ctx context.Context, in ports.CreateUserInput) (*domain.User, error) {
	u, err := s.UserService.CreateUser(ctx, in)
	if err == nil {
		s.invalidate(ctx)
	}
	return u, err
}

func (s *CachedUserService) UpdateUser(ctx context.Context, id string, patch domain.UserPatch) (*domain.User, error) {
	u, err := s.UserService.UpdateUser(ctx, id, patch)
	if err == nil {
		s.invalidate(ctx)
	}
	return u, err
}

func (s *CachedUserService) DeleteUser(ctx context.Context, id string) error {
	err := s.UserService.DeleteUser(ctx, id)
	if err == nil {
		s.invalidate(ctx)
	}
	return err
}

func (s *CachedUserService) GenerateUsers(ctx context.Context, count int) ([]domain.User, error) {
	users, err := s.UserService.GenerateUsers(ctx, count)
	if err == nil {
		s.invalidate(ctx)
	}
	return users, err
}

// lookup decodes a cached value into dst. Cache failures count as misses.
func (s *CachedUserService) lookup(ctx context.Context, key string, dst any) bool {
	raw, ok, err := s.cache.Get(ctx, key)
	switch {
	case err != nil:
		metrics.CacheLookupsTotal.WithLabelValues("error").Inc()
		s.log(ctx).Warn().Err(err).Str("key", key).Msg("cache read failed, falling back to store")
		return false
	case !ok:
		metrics.CacheLookupsTotal.WithLabelValues("miss").Inc()
		return false
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		metrics.CacheLookupsTotal.WithLabelValues("error").Inc()
		s.log(ctx).Warn().Err(err).Str("key", key).Msg("cache entry undecodable")
		return false
	}
	metrics.CacheLookupsTotal.WithLabelValues("hit").Inc()
	return true
}

func (s *CachedUserService) generation() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.gen
}

// store writes v only if no invalidation happened since gen was read.
func (s *CachedUserService) store(ctx context.Context, gen uint64, key string, v any) {
	raw, err := json.Marshal(v)
	if err != nil {
		return
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.gen != gen {
		return
	}
	if err := s.cache.Set(ctx, key, raw, s.ttl); err != nil {
		s.log(ctx).Warn().Err(err).Str("key", key).Msg("cache write failed")
	}
}

// log prefers the request-scoped logger so cache warnings carry the request id.
func (s *CachedUserService) log(ctx context.Context) *zerolog.Logger {
	l := logger.FromContextOr(ctx, s.logger)
	return &l
}

func (s *CachedUserService) invalidate(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	if err := s.cache.DeletePrefix(ctx, cachePrefix); err != nil {
		s.log(ctx).Warn().Err(err).Msg("cache invalidation failed")
	}
}
