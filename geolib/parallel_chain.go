package geolib

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/panjf2000/ants/v2"
)

const (
	// ParallelChainName is a name of any parallel chain provider.
	ParallelChainName = "parallel_chain"

	DefaultWorkerPoolSize = 4096

	workerPoolExpireTime = time.Minute
)

type parallelOutcome struct {
	results Results
	err     error
}

// ParallelChain has the same semantics as Chain but asks all members
// at once using a worker pool. A result of the earliest member in the
// chain order wins, even if later members respond faster. When such
// result is known, requests of later members are cancelled.
type ParallelChain struct {
	Chain

	pool *ants.Pool
}

func (p *ParallelChain) Name() string {
	return ParallelChainName
}

func (p *ParallelChain) Geocode(ctx context.Context, query string) (Results, error) {
	return p.run(ctx, OperationGeocode, query,
		func(ctx context.Context, prov Provider) (Results, error) {
			return prov.Geocode(ctx, query)
		})
}

func (p *ParallelChain) Reverse(ctx context.Context, lat, lng float64) (Results, error) {
	return p.run(ctx, OperationReverse, ReverseQuery(lat, lng),
		func(ctx context.Context, prov Provider) (Results, error) {
			return prov.Reverse(ctx, lat, lng)
		})
}

func (p *ParallelChain) SetLimit(_ int) error {
	return NewProviderError(KindUnsupportedOperation, ParallelChainName, "", errChainLimit)
}

// Shutdown releases a worker pool. Chain is not usable after that.
func (p *ParallelChain) Shutdown() {
	p.pool.Release()
}

func (p *ParallelChain) run(ctx context.Context, op Operation, query string, lookup chainLookup) (Results, error) {
	members := p.snapshot()

	if len(members) == 0 {
		return nil, NewProviderError(KindNoResult, ParallelChainName, query, errors.New("chain is empty"))
	}

	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(errEarlierMemberSucceeded)

	channels := make([]chan parallelOutcome, len(members))

	for i, member := range members {
		channel := make(chan parallelOutcome, 1)
		channels[i] = channel

		err := p.pool.Submit(func() {
			results, err := p.try(ctx, member, op, query, lookup)
			channel <- parallelOutcome{results: results, err: err}
		})
		if err != nil {
			channel <- parallelOutcome{
				err: NewProviderError(KindUnknown, member.provider.Name(), query,
					fmt.Errorf("cannot schedule a task: %w", err)),
			}
		}
	}

	errs := make([]error, 0, len(members))

	for _, channel := range channels {
		outcome := <-channel
		if outcome.err == nil {
			return outcome.results, nil
		}

		errs = append(errs, outcome.err)
	}

	return nil, &ChainError{Errors: errs}
}

// NewParallelChain creates a chain with a worker pool of a given size.
// Non-positive size means DefaultWorkerPoolSize.
func NewParallelChain(providers []Provider, poolSize int, opts ...ChainOption) (*ParallelChain, error) {
	if poolSize <= 0 {
		poolSize = DefaultWorkerPoolSize
	}

	pool, err := ants.NewPool(poolSize, ants.WithExpiryDuration(workerPoolExpireTime))
	if err != nil {
		return nil, fmt.Errorf("cannot create a worker pool: %w", err)
	}

	rv := &ParallelChain{
		Chain: Chain{
			chainConfig: newChainConfig(opts),
		},
		pool: pool,
	}

	for _, v := range providers {
		rv.Add(v)
	}

	return rv, nil
}
