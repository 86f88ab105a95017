package geolib_test

import (
	"context"

	"github.com/9seconds/geocoder/geolib"
	"github.com/stretchr/testify/mock"
)

type ProviderMock struct {
	mock.Mock
}

func (m *ProviderMock) Name() string {
	return m.Called().String(0)
}

func (m *ProviderMock) Geocode(ctx context.Context, query string) (geolib.Results, error) {
	args := m.Called(ctx, query)

	return args.Get(0).(geolib.Results), args.Error(1)
}

func (m *ProviderMock) Reverse(ctx context.Context, lat, lng float64) (geolib.Results, error) {
	args := m.Called(ctx, lat, lng)

	return args.Get(0).(geolib.Results), args.Error(1)
}

func (m *ProviderMock) SetLimit(n int) error {
	return m.Called(n).Error(0)
}

func (m *ProviderMock) Limit() int {
	return m.Called().Int(0)
}

type StrategyMock struct {
	mock.Mock
}

func (m *StrategyMock) Invoke(ctx context.Context, key geolib.CacheKey, produce geolib.Producer) (geolib.Results, error) {
	args := m.Called(ctx, key, produce)

	return args.Get(0).(geolib.Results), args.Error(1)
}

type LoggerMock struct {
	mock.Mock
}

func (m *LoggerMock) LookupError(provider, query string, err error) {
	m.Called(provider, query, err)
}

func (m *LoggerMock) CacheError(key string, err error) {
	m.Called(key, err)
}

// memoryStrategy is a naive map-based strategy for tests.
type memoryStrategy struct {
	data map[geolib.CacheKey]geolib.Results
	keys []geolib.CacheKey
}

func (m *memoryStrategy) Invoke(_ context.Context, key geolib.CacheKey, produce geolib.Producer) (geolib.Results, error) {
	m.keys = append(m.keys, key)

	if value, ok := m.data[key]; ok {
		return value, nil
	}

	results, err := produce()
	if err != nil {
		return nil, err
	}

	m.data[key] = results

	return results, nil
}

func newMemoryStrategy() *memoryStrategy {
	return &memoryStrategy{
		data: map[geolib.CacheKey]geolib.Results{},
	}
}

func cityResults(provider, city string) geolib.Results {
	return geolib.Results{
		{
			Locality:   geolib.String(city),
			ProvidedBy: provider,
		},
	}
}
