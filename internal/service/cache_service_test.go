package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type failingCacheRepo struct{}

func (failingCacheRepo) Get(ctx context.Context, key string, dest interface{}) error {
	return errors.New("connection refused")
}

func (failingCacheRepo) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return errors.New("connection refused")
}

func (failingCacheRepo) DeleteByPattern(ctx context.Context, pattern string) error {
	return errors.New("connection refused")
}

func TestCacheServiceRoundTrip(t *testing.T) {
	metrics := NewMetricsService()
	svc := NewCacheService(newMemoryCacheRepo(), metrics, 0, zap.NewNop(), true)
	ctx := context.Background()

	var out map[string]int
	assert.False(t, svc.Get(ctx, "k", &out))
	svc.Set(ctx, "k", map[string]int{"a": 1}, 0)
	assert.True(t, svc.Get(ctx, "k", &out))
	assert.Equal(t, 1, out["a"])
	assert.InDelta(t, 0.5, metrics.Snapshot().CacheHitRatio, 0.001)
}

func TestCacheServiceDisabled(t *testing.T) {
	repo := newMemoryCacheRepo()
	svc := NewCacheService(repo, nil, time.Minute, zap.NewNop(), false)

	svc.Set(context.Background(), "k", 1, 0)
	assert.Empty(t, repo.entries)
	var out int
	assert.False(t, svc.Get(context.Background(), "k", &out))

	var nilSvc *CacheService
	assert.False(t, nilSvc.Enabled())
}

func TestCacheServiceDegradesOnErrors(t *testing.T) {
	svc := NewCacheService(failingCacheRepo{}, nil, time.Minute, zap.NewNop(), true)
	var out int
	assert.NotPanics(t, func() {
		assert.False(t, svc.Get(context.Background(), "k", &out))
		svc.Set(context.Background(), "k", 1, 0)
		svc.Invalidate(context.Background(), "*")
	})
}
