package geolib

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/suite"
)

type CircuitBreakerTestSuite struct {
	suite.Suite

	clock clockwork.FakeClock
	cb    *circuitBreaker
	ctx   context.Context
}

func (suite *CircuitBreakerTestSuite) SetupTest() {
	suite.clock = clockwork.NewFakeClock()
	suite.ctx = context.Background()
	suite.cb = newCircuitBreaker(suite.clock, 2, 200*time.Millisecond, 500*time.Millisecond)
}

func (suite *CircuitBreakerTestSuite) TearDownTest() {
	suite.cb.shutdown()
}

func (suite *CircuitBreakerTestSuite) CallbackOk(_ context.Context) (*http.Response, error) {
	rec := httptest.NewRecorder()

	rec.WriteHeader(http.StatusCreated)

	return rec.Result(), nil
}

func (suite *CircuitBreakerTestSuite) CallbackErr(_ context.Context) (*http.Response, error) {
	return nil, io.EOF
}

func (suite *CircuitBreakerTestSuite) CallbackIgnore(_ context.Context) (*http.Response, error) {
	return nil, ErrCircuitBreakerIgnore
}

func (suite *CircuitBreakerTestSuite) AssertState(expected circuitBreakerState) {
	suite.Eventually(func() bool {
		state, _ := suite.cb.currentState()

		return state == expected
	}, time.Second, 5*time.Millisecond)
}

func (suite *CircuitBreakerTestSuite) Open() {
	for i := 0; i < 3; i++ {
		_, err := suite.cb.Do(suite.ctx, suite.CallbackErr)

		suite.ErrorIs(err, io.EOF)
	}

	suite.AssertState(circuitBreakerStateOpened)
}

func (suite *CircuitBreakerTestSuite) TestManyExecuted() {
	wg := &sync.WaitGroup{}

	wg.Add(5)

	for i := 0; i < 5; i++ {
		go func() {
			defer wg.Done()

			resp, err := suite.cb.Do(suite.ctx, suite.CallbackOk)

			suite.NoError(err)
			suite.Equal(http.StatusCreated, resp.StatusCode)
		}()
	}

	wg.Wait()

	suite.AssertState(circuitBreakerStateClosed)
}

func (suite *CircuitBreakerTestSuite) TestSomeFailuresButStillWorks() {
	_, err := suite.cb.Do(suite.ctx, suite.CallbackErr)

	suite.ErrorIs(err, io.EOF)

	_, failures := suite.cb.currentState()

	suite.EqualValues(1, failures)

	resp, err := suite.cb.Do(suite.ctx, suite.CallbackOk)

	suite.NoError(err)
	suite.Equal(http.StatusCreated, resp.StatusCode)

	_, failures = suite.cb.currentState()

	suite.EqualValues(0, failures)
}

func (suite *CircuitBreakerTestSuite) TestIgnoredErrorsAreNotCounted() {
	for i := 0; i < 10; i++ {
		_, err := suite.cb.Do(suite.ctx, suite.CallbackIgnore)

		suite.ErrorIs(err, ErrCircuitBreakerIgnore)
	}

	state, failures := suite.cb.currentState()

	suite.Equal(circuitBreakerStateClosed, state)
	suite.EqualValues(0, failures)
}

func (suite *CircuitBreakerTestSuite) TestOpens() {
	suite.Open()

	_, err := suite.cb.Do(suite.ctx, suite.CallbackOk)

	suite.ErrorIs(err, ErrCircuitBreakerOpened)
}

func (suite *CircuitBreakerTestSuite) TestRecovers() {
	suite.Open()

	suite.clock.Advance(time.Second)
	suite.AssertState(circuitBreakerStateHalfOpened)

	resp, err := suite.cb.Do(suite.ctx, suite.CallbackOk)

	suite.NoError(err)
	suite.Equal(http.StatusCreated, resp.StatusCode)
	suite.AssertState(circuitBreakerStateClosed)
}

func (suite *CircuitBreakerTestSuite) TestFailedProbeReopens() {
	suite.Open()

	suite.clock.Advance(time.Second)
	suite.AssertState(circuitBreakerStateHalfOpened)

	_, err := suite.cb.Do(suite.ctx, suite.CallbackErr)

	suite.ErrorIs(err, io.EOF)
	suite.AssertState(circuitBreakerStateOpened)
}

func (suite *CircuitBreakerTestSuite) TestFailuresAreReset() {
	_, err := suite.cb.Do(suite.ctx, suite.CallbackErr)

	suite.ErrorIs(err, io.EOF)

	suite.clock.Advance(time.Second)
	suite.Eventually(func() bool {
		_, failures := suite.cb.currentState()

		return failures == 0
	}, time.Second, 5*time.Millisecond)
}

func TestCircuitBreaker(t *testing.T) {
	suite.Run(t, &CircuitBreakerTestSuite{})
}
