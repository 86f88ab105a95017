package geolib

import "context"

// CacheName is a name of any cache provider. It differs from a name of
// a delegate so nested caches produce different keys on each layer.
const CacheName = "cache"

// Cache memoizes lookups of a single delegate provider. It does not
// decide anything on its own: all decisions on hits and misses are made
// by a strategy.
type Cache struct {
	delegate Provider
	strategy CacheStrategy
}

func (c *Cache) Name() string {
	return CacheName
}

func (c *Cache) Geocode(ctx context.Context, query string) (Results, error) {
	return c.strategy.Invoke(ctx, c.GeocodeKey(query), func() (Results, error) {
		return c.delegate.Geocode(ctx, query)
	})
}

func (c *Cache) Reverse(ctx context.Context, lat, lng float64) (Results, error) {
	return c.strategy.Invoke(ctx, c.ReverseKey(lat, lng), func() (Results, error) {
		return c.delegate.Reverse(ctx, lat, lng)
	})
}

// GeocodeKey returns a key which is used for forward lookups.
func (c *Cache) GeocodeKey(query string) CacheKey {
	return NewGeocodeKey(c.delegate.Name(), query)
}

// ReverseKey returns a key which is used for reverse lookups.
func (c *Cache) ReverseKey(lat, lng float64) CacheKey {
	return NewReverseKey(c.delegate.Name(), lat, lng)
}

func (c *Cache) SetLimit(n int) error {
	return c.delegate.SetLimit(n)
}

func (c *Cache) Limit() int {
	return c.delegate.Limit()
}

// Delegate returns a wrapped provider.
func (c *Cache) Delegate() Provider {
	return c.delegate
}

// NewCache wraps a delegate with a given strategy.
func NewCache(strategy CacheStrategy, delegate Provider) *Cache {
	return &Cache{
		delegate: delegate,
		strategy: strategy,
	}
}
