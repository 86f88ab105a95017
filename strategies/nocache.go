package strategies

import (
	"context"

	"github.com/9seconds/geocoder/geolib"
)

// NoCache always calls a producer.
type NoCache struct{}

func (NoCache) Invoke(_ context.Context, _ geolib.CacheKey, produce geolib.Producer) (geolib.Results, error) {
	return produce()
}
