package providers_test

import (
	"context"
	"net/http"
	"time"

	"github.com/9seconds/geocoder/geolib"
	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/suite"
)

type ProviderTestSuite struct {
	suite.Suite

	ctx  context.Context
	http geolib.HTTPClient
}

func (suite *ProviderTestSuite) SetupTest() {
	suite.ctx = context.Background()
	suite.http = geolib.NewHTTPClient(&http.Client{}, geolib.HTTPClientOptions{
		UserAgent:         "test-agent",
		RateLimitInterval: time.Millisecond,
		RateLimitBurst:    100,
	})
}

func (suite *ProviderTestSuite) AssertLocalhost(prov geolib.Provider) {
	for _, v := range []string{"127.0.0.1", "::1"} {
		results, err := prov.Geocode(suite.ctx, v)

		suite.NoError(err)
		suite.Len(results, 1)
		suite.Equal(geolib.LocalhostName, *results[0].Locality)
		suite.Equal(geolib.LocalhostName, *results[0].Country)
		suite.Equal(prov.Name(), results[0].ProvidedBy)
	}

	suite.Zero(httpmock.GetTotalCallCount())
}

func (suite *ProviderTestSuite) AssertKind(kind geolib.ErrorKind, err error) {
	suite.Error(err)
	suite.Equal(kind, geolib.KindOf(err), err)
}

func (suite *ProviderTestSuite) AssertClosedContext(prov geolib.Provider, query string) {
	ctx, cancel := context.WithCancel(context.Background())

	cancel()

	_, err := prov.Geocode(ctx, query)

	suite.AssertKind(geolib.KindUnknown, err)
}

type MockedProviderTestSuite struct {
	ProviderTestSuite
}

func (suite *MockedProviderTestSuite) SetupSuite() {
	httpmock.Activate()
}

func (suite *MockedProviderTestSuite) TearDownSuite() {
	httpmock.DeactivateAndReset()
}

func (suite *MockedProviderTestSuite) TearDownTest() {
	httpmock.Reset()
}
