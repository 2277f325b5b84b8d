package marketdata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Alias1177/StockSignals/internal/model"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const cachePrefix = "stocksignals:bars"

// CachedProvider is a read-through Redis cache in front of another Provider.
// Redis failures are logged and fall back to the wrapped provider.
type CachedProvider struct {
	next   Provider
	rdb    redis.Cmdable
	ttl    time.Duration
	logger zerolog.Logger
}

// NewCachedProvider wraps next with a cache whose entries expire after ttl
func NewCachedProvider(next Provider, rdb redis.Cmdable, ttl time.Duration) *CachedProvider {
	return &CachedProvider{
		next:   next,
		rdb:    rdb,
		ttl:    ttl,
		logger: log.With().Str("component", "bar_cache").Logger(),
	}
}

// CacheKey is the Redis key for one symbol and window
func CacheKey(symbol string, from, to time.Time) string {
	return fmt.Sprintf("%s:%s:%s:%s", cachePrefix, symbol, from.Format(time.DateOnly), to.Format(time.DateOnly))
}

// Bars implements Provider
func (c *CachedProvider) Bars(ctx context.Context, symbol string, from, to time.Time) ([]model.PriceBar, error) {
	key := CacheKey(symbol, from, to)

	raw, err := c.rdb.Get(ctx, key).Result()
	switch {
	case err == nil:
		var bars []model.PriceBar
		if err := json.Unmarshal([]byte(raw), &bars); err == nil {
			c.logger.Debug().Str("symbol", symbol).Int("count", len(bars)).Msg("Cache hit")
			return bars, nil
		}
		c.logger.Warn().Str("key", key).Msg("Discarding undecodable cache entry")
	case errors.Is(err, redis.Nil):
	default:
		c.logger.Warn().Err(err).Str("symbol", symbol).Msg("Cache read failed")
	}

	bars, err := c.next.Bars(ctx, symbol, from, to)
	if err != nil {
		return nil, err
	}

	b, err := json.Marshal(bars)
	if err != nil {
		return bars, nil
	}
	if err := c.rdb.Set(ctx, key, string(b), c.ttl).Err(); err != nil {
		c.logger.Warn().Err(err).Str("symbol", symbol).Msg("Cache write failed")
	}
	return bars, nil
}
