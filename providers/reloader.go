package providers

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
)

// Reloadable is a provider which reads its data from files and can
// refresh it in place.
type Reloadable interface {
	Name() string
	Reload() error
}

// RunReloader reloads a target every given interval until context is
// closed. Reload errors are passed to a callback, a target keeps
// serving previous data.
func RunReloader(ctx context.Context,
	clock clockwork.Clock,
	target Reloadable,
	every time.Duration,
	onError func(name string, err error)) {
	ticker := clock.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			if err := target.Reload(); err != nil {
				onError(target.Name(), err)
			}
		}
	}
}
