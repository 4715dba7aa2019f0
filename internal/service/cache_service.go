package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/meeting-planner-api/internal/availability"
	appErrors "github.com/noah-isme/meeting-planner-api/pkg/errors"
)

// CacheRepository abstracts the store behind the week state cache.
type CacheRepository interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	StateKey(meetingID string, weekStart int64) string
}

// CacheService fronts the state store. Cache failures never fail a request:
// they are logged, counted as misses and otherwise ignored.
type CacheService struct {
	repo    CacheRepository
	metrics *MetricsService
	ttl     time.Duration
	logger  *zap.Logger
	enabled bool
}

// NewCacheService constructs a cache service.
func NewCacheService(repo CacheRepository, metrics *MetricsService, ttl time.Duration, logger *zap.Logger, enabled bool) *CacheService {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CacheService{repo: repo, metrics: metrics, ttl: ttl, logger: logger, enabled: enabled}
}

// Enabled indicates whether caching is active.
func (s *CacheService) Enabled() bool {
	return s != nil && s.enabled && s.repo != nil
}

// LoadState returns the cached state and whether the lookup hit.
func (s *CacheService) LoadState(ctx context.Context, meetingID string, weekStart int64) (availability.Serialized, bool) {
	if !s.Enabled() {
		return nil, false
	}
	key := s.repo.StateKey(meetingID, weekStart)
	start := time.Now()
	var state availability.Serialized
	err := s.repo.Get(ctx, key, &state)
	s.metrics.RecordCacheOperation(err == nil, time.Since(start))
	if err != nil {
		if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("cache get failed", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}
	if state == nil {
		state = availability.Serialized{}
	}
	return state, true
}

// StoreState writes the state through to the cache.
func (s *CacheService) StoreState(ctx context.Context, meetingID string, weekStart int64, state availability.Serialized) {
	if !s.Enabled() {
		return
	}
	key := s.repo.StateKey(meetingID, weekStart)
	start := time.Now()
	err := s.repo.Set(ctx, key, state, s.ttl)
	s.metrics.ObserveCacheWrite(time.Since(start))
	if err == nil {
		return
	}
	s.logger.Warn("cache set failed", zap.String("key", key), zap.Error(err))
	// The store already holds the new state; an older cached copy must not survive.
	if err := s.repo.Delete(ctx, key); err != nil {
		s.logger.Warn("cache invalidate failed", zap.String("key", key), zap.Error(err))
	}
}

