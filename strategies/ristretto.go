package strategies

import (
	"context"
	"fmt"
	"time"

	"github.com/9seconds/geocoder/geolib"
	"github.com/dgraph-io/ristretto"
)

// Ristretto keeps results in memory with TTL. Each item has a cost of
// 1 so capacity is a number of lookups.
type Ristretto struct {
	cache *ristretto.Cache
	ttl   time.Duration
}

func (r *Ristretto) Invoke(_ context.Context, key geolib.CacheKey, produce geolib.Producer) (geolib.Results, error) {
	cacheKey := key.String()

	if value, ok := r.cache.Get(cacheKey); ok {
		return value.(geolib.Results).Clone(), nil
	}

	results, err := produce()
	if err != nil {
		return nil, err
	}

	r.cache.SetWithTTL(cacheKey, results.Clone(), 1, r.ttl)

	// ristretto is eventually consistent
	r.cache.Wait()

	return results, nil
}

// Close stops background goroutines of the cache.
func (r *Ristretto) Close() {
	r.cache.Close()
}

func NewRistretto(itemsCount uint, ttl time.Duration) (*Ristretto, error) {
	cache, err := ristretto.NewCache(&ristretto.Config{
		MaxCost:            int64(itemsCount),
		NumCounters:        10 * int64(itemsCount),
		BufferItems:        64,
		IgnoreInternalCost: true,
	})
	if err != nil {
		return nil, fmt.Errorf("cannot create ristretto cache: %w", err)
	}

	return &Ristretto{
		cache: cache,
		ttl:   ttl,
	}, nil
}
