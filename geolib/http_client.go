package geolib

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/time/rate"
)

// HTTPClientOptions configure NewHTTPClient. Zero values are replaced
// with defaults.
type HTTPClientOptions struct {
	UserAgent string

	RateLimitInterval time.Duration
	RateLimitBurst    int

	CircuitBreakerOpenThreshold        uint32
	CircuitBreakerHalfOpenTimeout      time.Duration
	CircuitBreakerResetFailuresTimeout time.Duration

	Clock clockwork.Clock
}

const (
	DefaultUserAgent                          = "geocoder"
	DefaultRateLimitInterval                  = 100 * time.Millisecond
	DefaultRateLimitBurst                     = 10
	DefaultCircuitBreakerOpenThreshold        = 5
	DefaultCircuitBreakerHalfOpenTimeout      = time.Minute
	DefaultCircuitBreakerResetFailuresTimeout = 20 * time.Second
)

type httpClient struct {
	userAgent      string
	client         *http.Client
	rateLimiter    *rate.Limiter
	circuitBreaker *circuitBreaker
}

// Do sends a request. Responses with 5xx status codes are reported as
// errors and counted by circuit breaker. 4xx responses are returned
// as is: providers map them to error kinds on their own. Timeouts are
// managed by the wrapped client.
//
// User agent is set only if request has none.
func (h httpClient) Do(req *http.Request) (*http.Response, error) {
	ctx := req.Context()

	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", h.userAgent)
	}

	return h.circuitBreaker.Do(ctx, func(ctx context.Context) (*http.Response, error) {
		if err := h.rateLimiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCircuitBreakerIgnore, err)
		}

		resp, err := h.client.Do(req.WithContext(ctx))
		if err != nil {
			return nil, fmt.Errorf("cannot send a request: %w", err)
		}

		if resp.StatusCode >= http.StatusInternalServerError {
			flushResponse(resp.Body)

			return nil, fmt.Errorf("netloc has responded with %s", resp.Status)
		}

		return resp, nil
	})
}

func flushResponse(body io.ReadCloser) {
	io.Copy(io.Discard, body) // nolint: errcheck
	body.Close()
}

// NewHTTPClient wraps a client with a rate limiter and a circuit
// breaker, sets a user agent.
//
// Please see https://pkg.go.dev/golang.org/x/time/rate to get a meaning
// of rate limiter parameters.
//
// Circuit breaker opens after CircuitBreakerOpenThreshold consecutive
// failures and rejects all requests. After
// CircuitBreakerHalfOpenTimeout it lets a single request to pass: if it
// succeeds, circuit breaker is closed again. Failure counter of the
// closed circuit breaker is reset every
// CircuitBreakerResetFailuresTimeout.
func NewHTTPClient(client *http.Client, opts HTTPClientOptions) HTTPClient {
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}

	if opts.RateLimitInterval <= 0 {
		opts.RateLimitInterval = DefaultRateLimitInterval
	}

	if opts.RateLimitBurst <= 0 {
		opts.RateLimitBurst = DefaultRateLimitBurst
	}

	if opts.CircuitBreakerOpenThreshold == 0 {
		opts.CircuitBreakerOpenThreshold = DefaultCircuitBreakerOpenThreshold
	}

	if opts.CircuitBreakerHalfOpenTimeout <= 0 {
		opts.CircuitBreakerHalfOpenTimeout = DefaultCircuitBreakerHalfOpenTimeout
	}

	if opts.CircuitBreakerResetFailuresTimeout <= 0 {
		opts.CircuitBreakerResetFailuresTimeout = DefaultCircuitBreakerResetFailuresTimeout
	}

	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}

	return httpClient{
		userAgent:   opts.UserAgent,
		client:      client,
		rateLimiter: rate.NewLimiter(rate.Every(opts.RateLimitInterval), opts.RateLimitBurst),
		circuitBreaker: newCircuitBreaker(opts.Clock,
			opts.CircuitBreakerOpenThreshold,
			opts.CircuitBreakerHalfOpenTimeout,
			opts.CircuitBreakerResetFailuresTimeout),
	}
}
