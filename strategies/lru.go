package strategies

import (
	"context"
	"time"

	"github.com/9seconds/geocoder/geolib"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

// LRU keeps a bounded number of the most recently used lookups. Items
// expire after ttl; 0 ttl disables expiration.
type LRU struct {
	cache *expirable.LRU[geolib.CacheKey, geolib.Results]
}

func (l *LRU) Invoke(_ context.Context, key geolib.CacheKey, produce geolib.Producer) (geolib.Results, error) {
	if value, ok := l.cache.Get(key); ok {
		return value.Clone(), nil
	}

	results, err := produce()
	if err != nil {
		return nil, err
	}

	l.cache.Add(key, results.Clone())

	return results, nil
}

// Len returns a number of cached lookups.
func (l *LRU) Len() int {
	return l.cache.Len()
}

func NewLRU(size int, ttl time.Duration) *LRU {
	return &LRU{
		cache: expirable.NewLRU[geolib.CacheKey, geolib.Results](size, nil, ttl),
	}
}
