// Package channels holds the channel-dashboard helpers that sit between the
// HTTP handlers and the aggregation repository.
package channels

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/clipstream/backend/internal/models"
)

// ErrProviderUnavailable indicates the stats provider is not configured.
var ErrProviderUnavailable = errors.New("channel stats provider unavailable")

// StatsProvider computes the dashboard rollup for a channel.
type StatsProvider interface {
	Stats(ctx context.Context, channelID string) (models.ChannelStats, error)
}

type cacheEntry struct {
	stats   models.ChannelStats
	expires time.Time
}

// CachingStatsProvider wraps another StatsProvider with a TTL-based
// in-memory cache, keeping repeat dashboard loads off the aggregation
// queries.
type CachingStatsProvider struct {
	base StatsProvider
	ttl  time.Duration

	mu    sync.RWMutex
	items map[string]cacheEntry
}

// NewCachingStatsProvider returns a StatsProvider that caches rollups for
// the provided TTL.
func NewCachingStatsProvider(base StatsProvider, ttl time.Duration) *CachingStatsProvider {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &CachingStatsProvider{
		base:  base,
		ttl:   ttl,
		items: make(map[string]cacheEntry),
	}
}

// Stats returns the cached rollup when fresh, otherwise it delegates to the
// underlying provider and stores the result.
func (c *CachingStatsProvider) Stats(ctx context.Context, channelID string) (models.ChannelStats, error) {
	if c == nil || c.base == nil {
		return models.ChannelStats{}, ErrProviderUnavailable
	}

	now := time.Now()

	c.mu.RLock()
	entry, ok := c.items[channelID]
	c.mu.RUnlock()
	if ok && now.Before(entry.expires) {
		return entry.stats, nil
	}

	stats, err := c.base.Stats(ctx, channelID)
	if err != nil {
		return models.ChannelStats{}, err
	}

	c.mu.Lock()
	c.items[channelID] = cacheEntry{stats: stats, expires: now.Add(c.ttl)}
	c.mu.Unlock()

	return stats, nil
}
