package geolib

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/time/rate"
)

// LocalhostName is a value of locality, county, region and country
// fields of a result for loopback addresses.
const LocalhostName = "localhost"

// Base has a logic which is shared by all leaf providers. It is
// supposed to be embedded.
//
// Every provider which handles IP queries must call Localhost before
// doing any I/O: loopback addresses are resolved to a canned result.
type Base struct {
	name    string
	mutex   sync.RWMutex
	limit   int
	limiter *rate.Limiter
}

func (b *Base) Name() string {
	return b.name
}

// SetLimit sets a number of requests per second. 0 removes limits.
func (b *Base) SetLimit(n int) error {
	if n < 0 {
		return b.Fail(KindUnsupportedOperation, "",
			fmt.Errorf("incorrect limit %d", n))
	}

	b.mutex.Lock()
	defer b.mutex.Unlock()

	b.limit = n

	if n == 0 {
		b.limiter = nil
	} else {
		b.limiter = rate.NewLimiter(rate.Limit(n), n)
	}

	return nil
}

func (b *Base) Limit() int {
	b.mutex.RLock()
	defer b.mutex.RUnlock()

	return b.limit
}

// Wait blocks until rate limiter allows to make a request.
func (b *Base) Wait(ctx context.Context) error {
	b.mutex.RLock()
	limiter := b.limiter
	b.mutex.RUnlock()

	if limiter == nil {
		return nil
	}

	if err := limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter has rejected a request: %w", err)
	}

	return nil
}

// Localhost returns a canned result for loopback addresses. Second
// value is false if query is not a loopback address.
func (b *Base) Localhost(query string) (Results, bool) {
	if !IsLoopback(query) {
		return nil, false
	}

	return Results{
		{
			Locality:   String(LocalhostName),
			County:     String(LocalhostName),
			Region:     String(LocalhostName),
			Country:    String(LocalhostName),
			ProvidedBy: b.name,
		},
	}, true
}

func (b *Base) Fail(kind ErrorKind, query string, err error) error {
	return NewProviderError(kind, b.name, query, err)
}

func (b *Base) Unsupported(query string, reason string) error {
	return b.Fail(KindUnsupportedOperation, query, errors.New(reason))
}

func (b *Base) NoResult(query string) error {
	return b.Fail(KindNoResult, query, nil)
}

// ReverseQuery is a textual representation of coordinates for error
// messages.
func ReverseQuery(lat, lng float64) string {
	return formatCoordinates(lat, lng)
}

// NewBase returns a base with no rate limits.
func NewBase(name string) *Base {
	return &Base{
		name: name,
	}
}
