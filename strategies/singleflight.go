package strategies

import (
	"context"
	"errors"

	"github.com/9seconds/geocoder/geolib"
	"golang.org/x/sync/singleflight"
)

// SingleFlight makes sure that concurrent calls with the same key are
// collapsed into a single call of the wrapped strategy.
//
// A shared call is not bound to a context of the caller which has
// started it. Each caller waits only as long as its own context is
// alive. If a shared call has failed because a context of another
// caller was cancelled, the rest of callers start a new call with their
// own producers.
type SingleFlight struct {
	next  geolib.CacheStrategy
	group singleflight.Group
}

func (s *SingleFlight) Invoke(ctx context.Context, key geolib.CacheKey, produce geolib.Producer) (geolib.Results, error) {
	groupKey := key.String()

	for {
		executed := false
		resultChan := s.group.DoChan(groupKey, func() (interface{}, error) {
			executed = true

			return s.next.Invoke(context.WithoutCancel(ctx), key, produce)
		})

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case result := <-resultChan:
			if result.Err != nil {
				if !executed && ctx.Err() == nil && isContextError(result.Err) {
					continue
				}

				return nil, result.Err
			}

			results := result.Val.(geolib.Results)

			if result.Shared {
				return results.Clone(), nil
			}

			return results, nil
		}
	}
}

func isContextError(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

func NewSingleFlight(next geolib.CacheStrategy) *SingleFlight {
	return &SingleFlight{
		next: next,
	}
}
