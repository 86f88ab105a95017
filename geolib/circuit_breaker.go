package geolib

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

var (
	// ErrCircuitBreakerOpened is returned if circuit breaker does not
	// let a request to pass.
	ErrCircuitBreakerOpened = errors.New("circuit breaker is opened")

	// ErrCircuitBreakerIgnore is returned by callbacks if their failure
	// should not be counted.
	ErrCircuitBreakerIgnore = errors.New("circuit breaker ignores this error")
)

type circuitBreakerCallback func(context.Context) (*http.Response, error)

type circuitBreakerState uint8

const (
	circuitBreakerStateClosed circuitBreakerState = iota
	circuitBreakerStateHalfOpened
	circuitBreakerStateOpened
)

type circuitBreaker struct {
	clock clockwork.Clock
	mutex sync.Mutex

	state            circuitBreakerState
	failuresCount    uint32
	halfOpenInFlight bool

	halfOpenTimer        clockwork.Timer
	failuresCleanupTimer clockwork.Timer

	openThreshold        uint32
	halfOpenTimeout      time.Duration
	resetFailuresTimeout time.Duration
}

func (c *circuitBreaker) Do(ctx context.Context, callback circuitBreakerCallback) (*http.Response, error) {
	c.mutex.Lock()

	probe := false

	switch c.state {
	case circuitBreakerStateOpened:
		c.mutex.Unlock()

		return nil, ErrCircuitBreakerOpened
	case circuitBreakerStateHalfOpened:
		if c.halfOpenInFlight {
			c.mutex.Unlock()

			return nil, ErrCircuitBreakerOpened
		}

		c.halfOpenInFlight = true
		probe = true
	}

	c.mutex.Unlock()

	resp, err := callback(ctx)

	c.mutex.Lock()
	defer c.mutex.Unlock()

	if probe {
		c.halfOpenInFlight = false
	}

	switch {
	case errors.Is(err, ErrCircuitBreakerIgnore):
	case err == nil:
		c.switchState(circuitBreakerStateClosed)
	case probe:
		c.switchState(circuitBreakerStateOpened)
	case c.state == circuitBreakerStateClosed:
		c.failuresCount++

		if c.failuresCount > c.openThreshold {
			c.switchState(circuitBreakerStateOpened)
		}
	}

	return resp, err
}

func (c *circuitBreaker) currentState() (circuitBreakerState, uint32) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	return c.state, c.failuresCount
}

// switchState must be called under a mutex.
func (c *circuitBreaker) switchState(state circuitBreakerState) {
	switch state {
	case circuitBreakerStateClosed:
		c.stopTimer(&c.halfOpenTimer)
		c.ensureTimer(&c.failuresCleanupTimer, c.resetFailuresTimeout, c.resetFailures)
	case circuitBreakerStateHalfOpened:
		c.stopTimer(&c.failuresCleanupTimer)
		c.stopTimer(&c.halfOpenTimer)
	case circuitBreakerStateOpened:
		c.stopTimer(&c.failuresCleanupTimer)
		c.ensureTimer(&c.halfOpenTimer, c.halfOpenTimeout, c.tryHalfOpen)
	}

	c.failuresCount = 0
	c.state = state
}

func (c *circuitBreaker) resetFailures() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.failuresCleanupTimer = nil

	if c.state == circuitBreakerStateClosed {
		c.switchState(circuitBreakerStateClosed)
	}
}

func (c *circuitBreaker) tryHalfOpen() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.halfOpenTimer = nil

	if c.state == circuitBreakerStateOpened {
		c.switchState(circuitBreakerStateHalfOpened)
	}
}

func (c *circuitBreaker) stopTimer(timerRef *clockwork.Timer) {
	if *timerRef != nil {
		(*timerRef).Stop()
		*timerRef = nil
	}
}

func (c *circuitBreaker) ensureTimer(timerRef *clockwork.Timer, timeout time.Duration, callback func()) {
	if *timerRef == nil {
		*timerRef = c.clock.AfterFunc(timeout, callback)
	}
}

func (c *circuitBreaker) shutdown() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.stopTimer(&c.halfOpenTimer)
	c.stopTimer(&c.failuresCleanupTimer)
}

func newCircuitBreaker(clock clockwork.Clock,
	openThreshold uint32,
	halfOpenTimeout, resetFailuresTimeout time.Duration) *circuitBreaker {
	cb := &circuitBreaker{
		clock:                clock,
		openThreshold:        openThreshold,
		halfOpenTimeout:      halfOpenTimeout,
		resetFailuresTimeout: resetFailuresTimeout,
	}

	cb.mutex.Lock()
	cb.switchState(circuitBreakerStateClosed)
	cb.mutex.Unlock()

	return cb
}
