package embed

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Embedder resolves a URL into normalized embed data.
type Embedder interface {
	Embed(ctx context.Context, rawURL string) (*EmbedData, error)
}

// ErrEmbedderUnavailable indicates the embedder is not configured.
var ErrEmbedderUnavailable = errors.New("embed: embedder unavailable")

type cacheEntry struct {
	data    *EmbedData
	expires time.Time
}

// CachingEmbedder wraps another Embedder with a TTL-based in-memory cache.
// Concurrent misses for the same URL are collapsed into one resolution. When
// a result advertises its own CacheAge that age wins over the default TTL.
type CachingEmbedder struct {
	base Embedder
	ttl  time.Duration

	group singleflight.Group

	mu    sync.RWMutex
	items map[string]cacheEntry
}

// NewCachingEmbedder returns an Embedder that caches resolutions for the
// provided TTL.
func NewCachingEmbedder(base Embedder, ttl time.Duration) *CachingEmbedder {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &CachingEmbedder{
		base:  base,
		ttl:   ttl,
		items: make(map[string]cacheEntry),
	}
}

// Embed returns cached data when available, otherwise it delegates to the
// underlying embedder and stores the result.
func (c *CachingEmbedder) Embed(ctx context.Context, rawURL string) (*EmbedData, error) {
	if c == nil || c.base == nil {
		return nil, ErrEmbedderUnavailable
	}

	now := time.Now()

	c.mu.RLock()
	entry, ok := c.items[rawURL]
	c.mu.RUnlock()
	if ok && now.Before(entry.expires) {
		return entry.data, nil
	}

	v, err, _ := c.group.Do(rawURL, func() (any, error) {
		data, err := c.base.Embed(ctx, rawURL)
		if err != nil {
			return nil, err
		}

		ttl := c.ttl
		if data.CacheAge > 0 {
			ttl = time.Duration(data.CacheAge) * time.Second
		}

		c.mu.Lock()
		c.items[rawURL] = cacheEntry{data: data, expires: now.Add(ttl)}
		c.mu.Unlock()

		return data, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*EmbedData), nil
}
