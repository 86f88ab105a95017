package providers

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/9seconds/geocoder/geolib"
)

const (
	ipstackErrorMissingAccessKey = 101
	ipstackErrorInactiveUser     = 102
	ipstackErrorUsageLimit       = 104
	ipstackErrorFunctionAccess   = 105
	ipstackErrorInvalidIP        = 106
	ipstackErrorRateLimit        = 429
)

type ipstackResponse struct {
	Error struct {
		Code int    `json:"code"`
		Type string `json:"type"`
		Info string `json:"info"`
	} `json:"error"`
	City        string   `json:"city"`
	Zip         string   `json:"zip"`
	RegionName  string   `json:"region_name"`
	RegionCode  string   `json:"region_code"`
	CountryName string   `json:"country_name"`
	CountryCode string   `json:"country_code"`
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
	TimeZone    struct {
		ID string `json:"id"`
	} `json:"time_zone"`
}

type ipstackProvider struct {
	*geolib.Base

	client     geolib.HTTPClient
	httpScheme string
	authToken  string
}

func (i *ipstackProvider) Geocode(ctx context.Context, query string) (geolib.Results, error) {
	if results, err := checkIPQuery(i.Base, query); results != nil || err != nil {
		return results, err
	}

	query = strings.TrimSpace(query)
	request := jsonRequest{
		base:   i.Base,
		client: i.client,
		query:  query,
		url:    i.buildURL(query),
	}
	jsonResponse := ipstackResponse{}

	if err := request.Do(ctx, &jsonResponse); err != nil {
		return nil, err
	}

	if jsonResponse.Error.Code != 0 {
		return nil, i.Fail(ipstackErrorKind(jsonResponse.Error.Code), query,
			fmt.Errorf("failed response: code=%d, type=%s, info=%s",
				jsonResponse.Error.Code,
				jsonResponse.Error.Type,
				jsonResponse.Error.Info))
	}

	if jsonResponse.CountryCode == "" && jsonResponse.Latitude == nil {
		return nil, i.NoResult(query)
	}

	result := geolib.Result{
		Latitude:    jsonResponse.Latitude,
		Longitude:   jsonResponse.Longitude,
		PostalCode:  geolib.StringOrNil(jsonResponse.Zip),
		Locality:    geolib.StringOrNil(jsonResponse.City),
		Region:      geolib.StringOrNil(jsonResponse.RegionName),
		RegionCode:  geolib.StringOrNil(jsonResponse.RegionCode),
		Country:     geolib.StringOrNil(jsonResponse.CountryName),
		CountryCode: geolib.StringOrNil(jsonResponse.CountryCode),
		Timezone:    geolib.StringOrNil(jsonResponse.TimeZone.ID),
		ProvidedBy:  NameIPStack,
	}

	geolib.FillCountry(&result)

	return geolib.Results{result}, nil
}

func (i *ipstackProvider) Reverse(_ context.Context, lat, lng float64) (geolib.Results, error) {
	return nil, i.Unsupported(geolib.ReverseQuery(lat, lng), reasonReverseNotSupported)
}

func (i *ipstackProvider) buildURL(query string) string {
	getQuery := url.Values{}

	getQuery.Set("access_key", i.authToken)
	getQuery.Set("output", "json")
	getQuery.Set("language", "en")
	getQuery.Set("hostname", "0")
	getQuery.Set("security", "0")

	u := url.URL{
		Scheme:   i.httpScheme,
		Host:     "api.ipstack.com",
		Path:     query,
		RawQuery: getQuery.Encode(),
	}

	return u.String()
}

func ipstackErrorKind(code int) geolib.ErrorKind {
	switch code {
	case ipstackErrorMissingAccessKey, ipstackErrorInactiveUser:
		return geolib.KindInvalidCredentials
	case ipstackErrorUsageLimit, ipstackErrorRateLimit:
		return geolib.KindQuotaExceeded
	case ipstackErrorFunctionAccess:
		return geolib.KindUnsupportedOperation
	case ipstackErrorInvalidIP:
		return geolib.KindNoResult
	}

	return geolib.KindUnknown
}

// NewIPStack returns a provider for ipstack.com. Free plans do not
// support https so isSecure has to be false for them.
func NewIPStack(client geolib.HTTPClient, authToken string, isSecure bool) (geolib.Provider, error) {
	scheme := "http"

	if isSecure {
		scheme = "https"
	}

	if authToken == "" {
		return nil, ErrAuthTokenIsRequired
	}

	return &ipstackProvider{
		Base:       geolib.NewBase(NameIPStack),
		client:     client,
		authToken:  authToken,
		httpScheme: scheme,
	}, nil
}
