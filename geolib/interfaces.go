package geolib

import (
	"context"
	"net/http"
)

// Provider is a contract of every geocoder: leaf backend, chain or
// cache.
//
// Geocode resolves an address or IP address. Reverse resolves
// coordinates. Both return a non-empty sequence on success; absence of
// results is reported by an error of KindNoResult.
//
// SetLimit and Limit are advisory rate limits in requests per second. 0
// means unlimited.
type Provider interface {
	Name() string
	Geocode(ctx context.Context, query string) (Results, error)
	Reverse(ctx context.Context, lat, lng float64) (Results, error)
	SetLimit(n int) error
	Limit() int
}

// Producer computes a fresh value for a cache strategy.
type Producer func() (Results, error)

// CacheStrategy decides if a value for a key should be taken from some
// storage or produced. Strategies own storage, expiration and
// synchronization. They must propagate producer errors unless they have
// an explicit policy of caching them.
type CacheStrategy interface {
	Invoke(ctx context.Context, key CacheKey, produce Producer) (Results, error)
}

// HTTPClient is a transport used by HTTP-based providers.
type HTTPClient interface {
	Do(*http.Request) (*http.Response, error)
}

// Logger receives events which are not errors of the caller but still
// worth to know about.
type Logger interface {
	LookupError(provider, query string, err error)
	CacheError(key string, err error)
}

// NoopLogger drops everything.
type NoopLogger struct{}

func (NoopLogger) LookupError(_, _ string, _ error) {}

func (NoopLogger) CacheError(_ string, _ error) {}
