package geolib

import (
	"context"
	"errors"
	"sync"

	"github.com/jonboulle/clockwork"
)

// ChainName is a name of any chain provider.
const ChainName = "chain"

var (
	errChainLimit             = errors.New("chain has no single rate limit, set it on members")
	errEarlierMemberSucceeded = errors.New("earlier member of the chain has succeeded")
)

type chainMember struct {
	provider Provider
	stats    *UsageStats
}

type chainLookup func(context.Context, Provider) (Results, error)

type chainConfig struct {
	logger  Logger
	metrics *Metrics
	clock   clockwork.Clock
}

// ChainOption customizes a chain.
type ChainOption func(*chainConfig)

// WithChainLogger sets a logger which receives every member failure.
func WithChainLogger(logger Logger) ChainOption {
	return func(c *chainConfig) {
		c.logger = logger
	}
}

// WithChainMetrics makes chain to report member lookups.
func WithChainMetrics(metrics *Metrics) ChainOption {
	return func(c *chainConfig) {
		c.metrics = metrics
	}
}

// WithChainClock sets a clock for usage stats.
func WithChainClock(clock clockwork.Clock) ChainOption {
	return func(c *chainConfig) {
		c.clock = clock
	}
}

func newChainConfig(opts []ChainOption) chainConfig {
	conf := chainConfig{
		logger: NoopLogger{},
		clock:  clockwork.NewRealClock(),
	}

	for _, opt := range opts {
		opt(&conf)
	}

	return conf
}

// Chain tries members one by one in the order they were added. First
// success is returned and the rest of members are not touched. If all
// members fail, ChainError with every failure is returned.
//
// Members are tried strictly sequentially.
type Chain struct {
	chainConfig

	members []*chainMember
	mutex   sync.RWMutex
}

func (c *Chain) Name() string {
	return ChainName
}

// Add appends a new member to the end of the chain.
func (c *Chain) Add(provider Provider) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.members = append(c.members, &chainMember{
		provider: provider,
		stats:    NewUsageStats(provider.Name(), c.clock),
	})
}

// Providers returns current members in their order.
func (c *Chain) Providers() []Provider {
	members := c.snapshot()
	rv := make([]Provider, 0, len(members))

	for _, v := range members {
		rv = append(rv, v.provider)
	}

	return rv
}

// Stats returns usage stats of each member.
func (c *Chain) Stats() []*UsageStats {
	members := c.snapshot()
	rv := make([]*UsageStats, 0, len(members))

	for _, v := range members {
		rv = append(rv, v.stats)
	}

	return rv
}

func (c *Chain) Geocode(ctx context.Context, query string) (Results, error) {
	return c.run(ctx, OperationGeocode, query,
		func(ctx context.Context, p Provider) (Results, error) {
			return p.Geocode(ctx, query)
		})
}

func (c *Chain) Reverse(ctx context.Context, lat, lng float64) (Results, error) {
	return c.run(ctx, OperationReverse, ReverseQuery(lat, lng),
		func(ctx context.Context, p Provider) (Results, error) {
			return p.Reverse(ctx, lat, lng)
		})
}

// SetLimit is rejected: members are heterogeneous and there is no
// member which could be chosen to own a limit.
func (c *Chain) SetLimit(_ int) error {
	return NewProviderError(KindUnsupportedOperation, ChainName, "", errChainLimit)
}

// Limit is always 0 for chains.
func (c *Chain) Limit() int {
	return 0
}

func (c *Chain) run(ctx context.Context, op Operation, query string, lookup chainLookup) (Results, error) {
	members := c.snapshot()

	if len(members) == 0 {
		return nil, NewProviderError(KindNoResult, ChainName, query, errors.New("chain is empty"))
	}

	errs := make([]error, 0, len(members))

	for _, member := range members {
		results, err := c.try(ctx, member, op, query, lookup)
		if err == nil {
			return results, nil
		}

		errs = append(errs, err)
	}

	return nil, &ChainError{Errors: errs}
}

func (c *Chain) try(ctx context.Context,
	member *chainMember,
	op Operation,
	query string,
	lookup chainLookup) (Results, error) {
	started := c.clock.Now()
	results, err := lookup(ctx, member.provider)
	elapsed := c.clock.Since(started)

	if err == nil && len(results) == 0 {
		err = NewProviderError(KindNoResult, member.provider.Name(), query, nil)
	}

	member.stats.Used(err)

	if err != nil && errors.Is(context.Cause(ctx), errEarlierMemberSucceeded) {
		return results, err
	}

	c.metrics.observe(member.provider.Name(), op, elapsed, err)

	if err != nil {
		c.logger.LookupError(member.provider.Name(), query, err)
	}

	return results, err
}

func (c *Chain) snapshot() []*chainMember {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	rv := make([]*chainMember, len(c.members))
	copy(rv, c.members)

	return rv
}

// NewChain returns an empty chain. Providers given here are added in
// their order.
func NewChain(providers []Provider, opts ...ChainOption) *Chain {
	rv := &Chain{
		chainConfig: newChainConfig(opts),
	}

	for _, v := range providers {
		rv.Add(v)
	}

	return rv
}
