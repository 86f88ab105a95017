package providers_test

import (
	"net/http"
	"testing"

	"github.com/9seconds/geocoder/geolib"
	"github.com/9seconds/geocoder/providers"
	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/suite"
)

const ipstackURL = "https://api.ipstack.com/23.22.13.113"

type MockedIPStackTestSuite struct {
	MockedProviderTestSuite

	prov geolib.Provider
}

func (suite *MockedIPStackTestSuite) SetupTest() {
	suite.MockedProviderTestSuite.SetupTest()

	prov, err := providers.NewIPStack(suite.http, "token", true)

	suite.Require().NoError(err)

	suite.prov = prov
}

func (suite *MockedIPStackTestSuite) TestName() {
	suite.Equal(providers.NameIPStack, suite.prov.Name())
}

func (suite *MockedIPStackTestSuite) TestNoToken() {
	_, err := providers.NewIPStack(suite.http, "", true)

	suite.ErrorIs(err, providers.ErrAuthTokenIsRequired)
}

func (suite *MockedIPStackTestSuite) TestLocalhost() {
	suite.AssertLocalhost(suite.prov)
}

func (suite *MockedIPStackTestSuite) TestAddress() {
	_, err := suite.prov.Geocode(suite.ctx, "Alexander Platz 1, Berlin")

	suite.AssertKind(geolib.KindUnsupportedOperation, err)
}

func (suite *MockedIPStackTestSuite) TestLookupClosedContext() {
	suite.AssertClosedContext(suite.prov, "23.22.13.113")
}

func (suite *MockedIPStackTestSuite) TestLookupFailed() {
	httpmock.RegisterResponder("GET", ipstackURL,
		httpmock.NewStringResponder(http.StatusInternalServerError, ""))

	_, err := suite.prov.Geocode(suite.ctx, "23.22.13.113")

	suite.AssertKind(geolib.KindUnknown, err)
}

func (suite *MockedIPStackTestSuite) TestLookupBadJSON() {
	httpmock.RegisterResponder("GET", ipstackURL,
		httpmock.NewStringResponder(http.StatusOK, "{["))

	_, err := suite.prov.Geocode(suite.ctx, "23.22.13.113")

	suite.AssertKind(geolib.KindUnknown, err)
}

func (suite *MockedIPStackTestSuite) TestLookupErrorCodes() {
	testData := map[string]geolib.ErrorKind{
		"101": geolib.KindInvalidCredentials,
		"102": geolib.KindInvalidCredentials,
		"104": geolib.KindQuotaExceeded,
		"105": geolib.KindUnsupportedOperation,
		"106": geolib.KindNoResult,
		"999": geolib.KindUnknown,
	}

	for k, v := range testData {
		httpmock.RegisterResponder("GET", ipstackURL,
			httpmock.NewStringResponder(http.StatusOK, `{
  "success": false,
  "error": {
    "code": `+k+`,
    "type": "some_error",
    "info": "Something went wrong."
  }
}`))

		_, err := suite.prov.Geocode(suite.ctx, "23.22.13.113")

		suite.AssertKind(v, err)
	}
}

func (suite *MockedIPStackTestSuite) TestLookupEmpty() {
	httpmock.RegisterResponder("GET", ipstackURL,
		httpmock.NewStringResponder(http.StatusOK, `{"ip": "23.22.13.113", "country_code": null, "latitude": null}`))

	_, err := suite.prov.Geocode(suite.ctx, "23.22.13.113")

	suite.AssertKind(geolib.KindNoResult, err)
}

func (suite *MockedIPStackTestSuite) TestLookupOk() {
	httpmock.RegisterResponder("GET", ipstackURL,
		func(req *http.Request) (*http.Response, error) {
			suite.Equal("token", req.URL.Query().Get("access_key"))

			return httpmock.NewStringResponse(http.StatusOK, `{
  "ip": "23.22.13.113",
  "type": "ipv4",
  "continent_code": "NA",
  "continent_name": "North America",
  "country_code": "US",
  "country_name": "United States",
  "region_code": "VA",
  "region_name": "Virginia",
  "city": "Ashburn",
  "zip": "20147",
  "latitude": 39.0438,
  "longitude": -77.4874,
  "time_zone": {"id": "America/New_York"}
}`), nil
		})

	results, err := suite.prov.Geocode(suite.ctx, "23.22.13.113")

	suite.NoError(err)
	suite.Len(results, 1)

	result := results[0]

	suite.Equal("US", *result.CountryCode)
	suite.Equal("Ashburn", *result.Locality)
	suite.Equal("VA", *result.RegionCode)
	suite.Equal("20147", *result.PostalCode)
	suite.Equal("America/New_York", *result.Timezone)
	suite.InDelta(39.0438, *result.Latitude, 0.0001)
	suite.Equal(providers.NameIPStack, result.ProvidedBy)
}

func TestIPStack(t *testing.T) {
	suite.Run(t, &MockedIPStackTestSuite{})
}
