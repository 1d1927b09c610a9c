package remote

import (
	"context"
	"fmt"

	"github.com/couchcryptid/case-map-service/internal/domain"
	"github.com/couchcryptid/case-map-service/internal/observability"
	lru "github.com/hashicorp/golang-lru/v2"
)

// CachedSource wraps a Source with an in-memory LRU keyed by URL.
type CachedSource struct {
	inner   domain.Source
	cache   *lru.Cache[string, []byte]
	metrics *observability.Metrics
}

// NewCachedSource creates a cache decorator around a source.
func NewCachedSource(inner domain.Source, maxEntries int, metrics *observability.Metrics) (*CachedSource, error) {
	cache, err := lru.New[string, []byte](maxEntries)
	if err != nil {
		return nil, fmt.Errorf("create slice cache: %w", err)
	}
	return &CachedSource{inner: inner, cache: cache, metrics: metrics}, nil
}

func (c *CachedSource) Get(ctx context.Context, url string) ([]byte, error) {
	if body, ok := c.cache.Get(url); ok {
		c.metrics.SliceCache.WithLabelValues("hit").Inc()
		return body, nil
	}
	c.metrics.SliceCache.WithLabelValues("miss").Inc()

	body, err := c.inner.Get(ctx, url)
	if err != nil {
		// Errors, including non-200s, are never cached so a later fetch can succeed.
		return nil, err
	}
	c.cache.Add(url, body)
	return body, nil
}

// Len reports the number of cached entries.
func (c *CachedSource) Len() int {
	return c.cache.Len()
}
