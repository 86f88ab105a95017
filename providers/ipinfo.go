package providers

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"github.com/9seconds/geocoder/geolib"
)

type ipinfoResponse struct {
	IP       string `json:"ip"`
	Bogon    bool   `json:"bogon"`
	City     string `json:"city"`
	Region   string `json:"region"`
	Country  string `json:"country"`
	Loc      string `json:"loc"`
	Postal   string `json:"postal"`
	Timezone string `json:"timezone"`
}

type ipinfoProvider struct {
	*geolib.Base

	authToken string
	client    geolib.HTTPClient
}

func (i *ipinfoProvider) Geocode(ctx context.Context, query string) (geolib.Results, error) {
	if results, err := checkIPQuery(i.Base, query); results != nil || err != nil {
		return results, err
	}

	query = strings.TrimSpace(query)
	request := jsonRequest{
		base:   i.Base,
		client: i.client,
		query:  query,
		url:    "https://ipinfo.io/" + url.PathEscape(query),
	}

	if i.authToken != "" {
		request.headers = map[string]string{
			"Authorization": "Bearer " + i.authToken,
		}
	}

	jsonResponse := ipinfoResponse{}

	if err := request.Do(ctx, &jsonResponse); err != nil {
		return nil, err
	}

	if jsonResponse.Bogon || (jsonResponse.Country == "" && jsonResponse.Loc == "") {
		return nil, i.NoResult(query)
	}

	result := geolib.Result{
		Locality:    geolib.StringOrNil(jsonResponse.City),
		Region:      geolib.StringOrNil(jsonResponse.Region),
		CountryCode: geolib.StringOrNil(jsonResponse.Country),
		PostalCode:  geolib.StringOrNil(jsonResponse.Postal),
		Timezone:    geolib.StringOrNil(jsonResponse.Timezone),
		ProvidedBy:  NameIPInfo,
	}

	if lat, lng, ok := parseLoc(jsonResponse.Loc); ok {
		result.Latitude = &lat
		result.Longitude = &lng
	}

	geolib.FillCountry(&result)

	return geolib.Results{result}, nil
}

func (i *ipinfoProvider) Reverse(_ context.Context, lat, lng float64) (geolib.Results, error) {
	return nil, i.Unsupported(geolib.ReverseQuery(lat, lng), reasonReverseNotSupported)
}

func parseLoc(loc string) (float64, float64, bool) {
	chunks := strings.Split(loc, ",")
	if len(chunks) != 2 {
		return 0, 0, false
	}

	lat, err := strconv.ParseFloat(strings.TrimSpace(chunks[0]), 64)
	if err != nil {
		return 0, 0, false
	}

	lng, err := strconv.ParseFloat(strings.TrimSpace(chunks[1]), 64)
	if err != nil {
		return 0, 0, false
	}

	return lat, lng, true
}

// NewIPInfo returns a provider for ipinfo.io. Auth token is optional:
// without it ipinfo has a small free quota.
func NewIPInfo(client geolib.HTTPClient, authToken string) geolib.Provider {
	return &ipinfoProvider{
		Base:      geolib.NewBase(NameIPInfo),
		authToken: authToken,
		client:    client,
	}
}
