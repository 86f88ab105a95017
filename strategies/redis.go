package strategies

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/9seconds/geocoder/geolib"
	"github.com/redis/go-redis/v9"
)

// DefaultRedisPrefix is prepended to every key if no prefix is given.
const DefaultRedisPrefix = "geocoder:"

// Redis stores results as JSON in redis. Redis is treated as an
// optional accelerator: if it is unavailable, a producer is called and
// the problem is reported to a logger.
type Redis struct {
	client redis.UniversalClient
	ttl    time.Duration
	prefix string
	logger geolib.Logger
}

func (r *Redis) Invoke(ctx context.Context, key geolib.CacheKey, produce geolib.Producer) (geolib.Results, error) {
	cacheKey := r.prefix + key.String()

	if results, err := r.get(ctx, cacheKey); err == nil {
		return results, nil
	} else if !errors.Is(err, redis.Nil) {
		r.logger.CacheError(cacheKey, err)
	}

	results, err := produce()
	if err != nil {
		return nil, err
	}

	if err := r.set(ctx, cacheKey, results); err != nil {
		r.logger.CacheError(cacheKey, err)
	}

	return results, nil
}

func (r *Redis) get(ctx context.Context, key string) (geolib.Results, error) {
	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		return nil, err
	}

	results := geolib.Results{}
	if err := json.Unmarshal(data, &results); err != nil {
		return nil, fmt.Errorf("cannot decode cached value: %w", err)
	}

	if len(results) == 0 {
		return nil, fmt.Errorf("cached value is empty")
	}

	return results, nil
}

func (r *Redis) set(ctx context.Context, key string, results geolib.Results) error {
	data, err := json.Marshal(results)
	if err != nil {
		return fmt.Errorf("cannot encode a value: %w", err)
	}

	if err := r.client.Set(ctx, key, data, r.ttl).Err(); err != nil {
		return fmt.Errorf("cannot store a value: %w", err)
	}

	return nil
}

// NewRedis returns a strategy which uses a given client. Empty prefix
// means DefaultRedisPrefix, nil logger drops cache errors.
func NewRedis(client redis.UniversalClient, ttl time.Duration, prefix string, logger geolib.Logger) *Redis {
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}

	if logger == nil {
		logger = geolib.NoopLogger{}
	}

	return &Redis{
		client: client,
		ttl:    ttl,
		prefix: prefix,
		logger: logger,
	}
}
