package service

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	appErrors "github.com/noah-isme/kbm-attendance-api/pkg/errors"
)

// CacheRepository abstracts persistence for cached payloads.
type CacheRepository interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) (int, error)
}

// CacheService wraps the cache repository with an on/off switch, a default TTL and metrics.
type CacheService struct {
	repo       CacheRepository
	metrics    *MetricsService
	defaultTTL time.Duration
	logger     *zap.Logger
	enabled    bool
	generation atomic.Uint64
}

// NewCacheService constructs a cache service.
func NewCacheService(repo CacheRepository, metrics *MetricsService, defaultTTL time.Duration, logger *zap.Logger, enabled bool) *CacheService {
	if defaultTTL <= 0 {
		defaultTTL = 5 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CacheService{repo: repo, metrics: metrics, defaultTTL: defaultTTL, logger: logger, enabled: enabled}
}

// Enabled indicates whether caching is active.
func (s *CacheService) Enabled() bool {
	return s != nil && s.enabled && s.repo != nil
}

// Get loads a cached entry into dest and reports whether it was a hit. Backend failures count as
// misses; the error is returned so callers may log it.
func (s *CacheService) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	if !s.Enabled() {
		return false, nil
	}
	start := time.Now()
	err := s.repo.Get(ctx, key, dest)
	s.metrics.RecordCacheLookup(err == nil, time.Since(start))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, appErrors.ErrCacheMiss) {
		return false, nil
	}
	s.logger.Warn("cache get failed", zap.String("key", key), zap.Error(err))
	return false, err
}

// Set stores value under key. A non-positive ttl uses the default.
func (s *CacheService) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if !s.Enabled() {
		return nil
	}
	if ttl <= 0 {
		ttl = s.defaultTTL
	}
	start := time.Now()
	err := s.repo.Set(ctx, key, value, ttl)
	s.metrics.ObserveCacheWrite(time.Since(start))
	if err != nil {
		s.logger.Warn("cache set failed", zap.String("key", key), zap.Error(err))
	}
	return err
}

// Generation returns a counter bumped by every invalidation. Snapshot it before reading the
// source of truth and hand it to SetIfCurrent.
func (s *CacheService) Generation() uint64 {
	if s == nil {
		return 0
	}
	return s.generation.Load()
}

// SetIfCurrent stores value only while no invalidation has happened since generation was taken.
// An invalidation that races the write removes the entry again.
func (s *CacheService) SetIfCurrent(ctx context.Context, key string, value interface{}, ttl time.Duration, generation uint64) error {
	if !s.Enabled() {
		return nil
	}
	if s.Generation() != generation {
		s.logger.Debug("cache write skipped after invalidation", zap.String("key", key))
		return nil
	}
	if err := s.Set(ctx, key, value, ttl); err != nil {
		return err
	}
	if s.Generation() != generation {
		if _, err := s.repo.DeleteByPattern(ctx, key); err != nil {
			s.logger.Warn("cache rollback failed", zap.String("key", key), zap.Error(err))
			return err
		}
	}
	return nil
}

// Invalidate removes cached values matching pattern.
func (s *CacheService) Invalidate(ctx context.Context, pattern string) error {
	if !s.Enabled() {
		return nil
	}
	s.generation.Add(1)
	removed, err := s.repo.DeleteByPattern(ctx, pattern)
	if err != nil {
		s.logger.Warn("cache invalidate failed", zap.String("pattern", pattern), zap.Error(err))
		return err
	}
	s.logger.Debug("cache invalidated", zap.String("pattern", pattern), zap.Int("removed", removed))
	return nil
}
