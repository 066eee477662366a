package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/corelord/corelord/internal/models"
)

// ForecastCacheStats tracks cache performance metrics
type ForecastCacheStats struct {
	Hits   int64 `json:"hits"`
	Misses int64 `json:"misses"`
	Sets   int64 `json:"sets"`
	mu     sync.RWMutex
}

// RedisForecastCache caches per-break forecast series in Redis.
type RedisForecastCache struct {
	redis  *redis.Client
	ttl    time.Duration
	stats  *ForecastCacheStats
	prefix string
}

// NewRedisForecastCache creates a new Redis-based forecast cache
func NewRedisForecastCache(redisClient *redis.Client, ttl time.Duration) *RedisForecastCache {
	return &RedisForecastCache{
		redis:  redisClient,
		ttl:    ttl,
		stats:  &ForecastCacheStats{},
		prefix: "forecast_cache:",
	}
}

// Get retrieves the cached forecast series for a break. A miss, a Redis
// error or a garbled entry all report (nil, false).
func (c *RedisForecastCache) Get(ctx context.Context, breakID int) (*models.ForecastSeries, bool) {
	cacheKey := c.key(breakID)

	data, err := c.redis.Get(ctx, cacheKey).Result()
	if err == redis.Nil {
		c.miss()
		return nil, false
	}
	if err != nil {
		logrus.WithError(err).WithField("break_id", breakID).Warn("Redis error getting forecast")
		c.miss()
		return nil, false
	}

	var series models.ForecastSeries
	if err := json.Unmarshal([]byte(data), &series); err != nil {
		logrus.WithError(err).WithField("break_id", breakID).Warn("Error deserializing cached forecast")
		c.miss()
		return nil, false
	}

	c.stats.mu.Lock()
	c.stats.Hits++
	c.stats.mu.Unlock()

	return &series, true
}

// Set stores a forecast series with the configured TTL.
func (c *RedisForecastCache) Set(ctx context.Context, series *models.ForecastSeries) {
	cacheKey := c.key(series.BreakID)

	data, err := json.Marshal(series)
	if err != nil {
		logrus.WithError(err).WithField("break_id", series.BreakID).Error("Error serializing forecast")
		return
	}

	if err := c.redis.Set(ctx, cacheKey, data, c.ttl).Err(); err != nil {
		logrus.WithError(err).WithField("break_id", series.BreakID).Warn("Redis error setting forecast")
		return
	}

	c.stats.mu.Lock()
	c.stats.Sets++
	c.stats.mu.Unlock()
}

// GetStats returns current cache statistics
func (c *RedisForecastCache) GetStats() ForecastCacheStats {
	c.stats.mu.RLock()
	defer c.stats.mu.RUnlock()
	return ForecastCacheStats{
		Hits:   c.stats.Hits,
		Misses: c.stats.Misses,
		Sets:   c.stats.Sets,
	}
}

// LogStats logs current cache performance statistics
func (c *RedisForecastCache) LogStats() {
	stats := c.GetStats()
	total := stats.Hits + stats.Misses
	hitRate := float64(0)
	if total > 0 {
		hitRate = float64(stats.Hits) / float64(total) * 100
	}

	logrus.Infof("Forecast cache stats - Hits: %d, Misses: %d, Sets: %d, Hit Rate: %.2f%%",
		stats.Hits, stats.Misses, stats.Sets, hitRate)
}

// Clear removes all cached forecasts.
func (c *RedisForecastCache) Clear(ctx context.Context) error {
	pattern := c.prefix + "*"

	var keys []string
	iter := c.redis.Scan(ctx, 0, pattern, 0).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("error scanning cache keys: %w", err)
	}

	if len(keys) == 0 {
		return nil
	}

	if err := c.redis.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("error clearing cache: %w", err)
	}

	logrus.Infof("Cleared %d forecast cache entries", len(keys))
	return nil
}

// CachedBreakIDs returns the break ids that currently have a cached
// forecast.
func (c *RedisForecastCache) CachedBreakIDs(ctx context.Context) ([]int, error) {
	pattern := c.prefix + "*"

	var ids []int
	iter := c.redis.Scan(ctx, 0, pattern, 0).Iterator()
	for iter.Next(ctx) {
		id, err := strconv.Atoi(iter.Val()[len(c.prefix):])
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("error scanning cache keys: %w", err)
	}

	return ids, nil
}

func (c *RedisForecastCache) key(breakID int) string {
	return c.prefix + strconv.Itoa(breakID)
}

func (c *RedisForecastCache) miss() {
	c.stats.mu.Lock()
	c.stats.Misses++
	c.stats.mu.Unlock()
}
