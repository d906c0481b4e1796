package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.uber.org/zap"
	"write-space.backend/internal/domain/entities"
	"write-space.backend/pkg/logger"
	"write-space.backend/pkg/metrics"
	"write-space.backend/pkg/redis"
)

const (
	// KeyTagCounts holds the sorted tag counts of all published posts
	KeyTagCounts = "writespace:cache:tag_counts"

	DefaultTagsTTL = 5 * time.Minute

	tagCacheName = "tags"
)

var (
	redisGet = redis.Get
	redisSet = redis.Set
)

// TagCache caches tag counts in Redis. Every failure degrades to a miss.
type TagCache struct {
	ttl time.Duration
}

// NewTagCache creates a tag cache; a non-positive ttl selects the default
func NewTagCache(ttl time.Duration) *TagCache {
	if ttl <= 0 {
		ttl = DefaultTagsTTL
	}
	return &TagCache{ttl: ttl}
}

// Get returns the cached counts, or false on a miss
func (c *TagCache) Get(ctx context.Context) ([]entities.TagCount, bool) {
	if !redis.Available() {
		return nil, false
	}

	raw, err := redisGet(ctx, KeyTagCounts)
	if err != nil {
		if !errors.Is(err, redis.ErrCacheMiss) {
			logger.Warn(ctx, "Tag cache read failed", zap.Error(err))
		}
		metrics.ObserveCacheLookup(tagCacheName, false)
		return nil, false
	}

	var tags []entities.TagCount
	if err := json.Unmarshal([]byte(raw), &tags); err != nil {
		logger.Warn(ctx, "Tag cache entry corrupt", zap.Error(err))
		metrics.ObserveCacheLookup(tagCacheName, false)
		return nil, false
	}

	metrics.ObserveCacheLookup(tagCacheName, true)
	return tags, true
}

// Set stores the counts for the configured ttl
func (c *TagCache) Set(ctx context.Context, tags []entities.TagCount) {
	if !redis.Available() {
		return
	}

	payload, err := json.Marshal(tags)
	if err != nil {
		logger.Warn(ctx, "Tag cache encode failed", zap.Error(err))
		return
	}
	if err := redisSet(ctx, KeyTagCounts, payload, c.ttl); err != nil {
		logger.Warn(ctx, "Tag cache write failed", zap.Error(err))
	}
}
