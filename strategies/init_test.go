package strategies_test

import (
	"context"
	"io"
	"sync/atomic"

	"github.com/9seconds/geocoder/geolib"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type countingProducer struct {
	calls   int32
	results geolib.Results
	err     error
}

func (c *countingProducer) Produce() (geolib.Results, error) {
	atomic.AddInt32(&c.calls, 1)

	return c.results, c.err
}

func (c *countingProducer) Calls() int {
	return int(atomic.LoadInt32(&c.calls))
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

// StrategyTestSuite has checks which every storing strategy must pass.
type StrategyTestSuite struct {
	suite.Suite

	ctx      context.Context
	strategy geolib.CacheStrategy
	producer *countingProducer
	key      geolib.CacheKey
}

func (suite *StrategyTestSuite) SetupTest() {
	suite.ctx = context.Background()
	suite.key = geolib.NewGeocodeKey("nominatim", "Paris")
	suite.producer = &countingProducer{
		results: geolib.Results{{
			Latitude:   geolib.Float(48.8566),
			Longitude:  geolib.Float(2.3522),
			Locality:   geolib.String("Paris"),
			ProvidedBy: "nominatim",
		}},
	}
}

func (suite *StrategyTestSuite) TestHit() {
	for i := 0; i < 3; i++ {
		results, err := suite.strategy.Invoke(suite.ctx, suite.key, suite.producer.Produce)

		suite.NoError(err)
		suite.Equal(suite.producer.results, results)
	}

	suite.Equal(1, suite.producer.Calls())
}

func (suite *StrategyTestSuite) TestDifferentKeys() {
	_, err := suite.strategy.Invoke(suite.ctx, suite.key, suite.producer.Produce)

	suite.NoError(err)

	_, err = suite.strategy.Invoke(suite.ctx, geolib.NewGeocodeKey("nominatim", "Berlin"), suite.producer.Produce)

	suite.NoError(err)

	_, err = suite.strategy.Invoke(suite.ctx, geolib.NewGeocodeKey("mapbox", "Paris"), suite.producer.Produce)

	suite.NoError(err)
	suite.Equal(3, suite.producer.Calls())
}

func (suite *StrategyTestSuite) TestErrorsAreNotCached() {
	suite.producer.err = io.EOF

	for i := 0; i < 3; i++ {
		_, err := suite.strategy.Invoke(suite.ctx, suite.key, suite.producer.Produce)

		suite.ErrorIs(err, io.EOF)
	}

	suite.Equal(3, suite.producer.Calls())
}

func (suite *StrategyTestSuite) TestCallerOwnsResults() {
	results, err := suite.strategy.Invoke(suite.ctx, suite.key, suite.producer.Produce)

	suite.NoError(err)

	*results[0].Locality = "Berlin"

	results, err = suite.strategy.Invoke(suite.ctx, suite.key, suite.producer.Produce)

	suite.NoError(err)
	suite.Equal("Paris", *results[0].Locality)
}
