package providers

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/9seconds/geocoder/geolib"
)

const keycdnStatusSuccess = "success"

type keycdnResponse struct {
	Status      string `json:"status"`
	Description string `json:"description"`
	Data        struct {
		Geo struct {
			City        string   `json:"city"`
			PostalCode  string   `json:"postal_code"`
			RegionName  string   `json:"region_name"`
			RegionCode  string   `json:"region_code"`
			CountryName string   `json:"country_name"`
			CountryCode string   `json:"country_code"`
			Latitude    *float64 `json:"latitude"`
			Longitude   *float64 `json:"longitude"`
			Timezone    string   `json:"timezone"`
		} `json:"geo"`
	} `json:"data"`
}

type keycdnProvider struct {
	*geolib.Base

	client  geolib.HTTPClient
	siteURL string
}

func (k *keycdnProvider) Geocode(ctx context.Context, query string) (geolib.Results, error) {
	if results, err := checkIPQuery(k.Base, query); results != nil || err != nil {
		return results, err
	}

	query = strings.TrimSpace(query)
	request := jsonRequest{
		base:   k.Base,
		client: k.client,
		query:  query,
		url:    "https://tools.keycdn.com/geo.json?host=" + url.QueryEscape(query),
	}

	// keycdn rejects requests without this user agent
	if k.siteURL != "" {
		request.headers = map[string]string{
			"User-Agent": "keycdn-tools:" + k.siteURL,
		}
	}

	jsonResponse := keycdnResponse{}

	if err := request.Do(ctx, &jsonResponse); err != nil {
		return nil, err
	}

	if jsonResponse.Status != keycdnStatusSuccess {
		return nil, k.Fail(geolib.KindUnknown, query,
			fmt.Errorf("failed to geolocate: %s", jsonResponse.Description))
	}

	geo := jsonResponse.Data.Geo

	if geo.CountryCode == "" && geo.Latitude == nil {
		return nil, k.NoResult(query)
	}

	result := geolib.Result{
		Latitude:    geo.Latitude,
		Longitude:   geo.Longitude,
		PostalCode:  geolib.StringOrNil(geo.PostalCode),
		Locality:    geolib.StringOrNil(geo.City),
		Region:      geolib.StringOrNil(geo.RegionName),
		RegionCode:  geolib.StringOrNil(geo.RegionCode),
		Country:     geolib.StringOrNil(geo.CountryName),
		CountryCode: geolib.StringOrNil(geo.CountryCode),
		Timezone:    geolib.StringOrNil(geo.Timezone),
		ProvidedBy:  NameKeyCDN,
	}

	geolib.FillCountry(&result)

	return geolib.Results{result}, nil
}

func (k *keycdnProvider) Reverse(_ context.Context, lat, lng float64) (geolib.Results, error) {
	return nil, k.Unsupported(geolib.ReverseQuery(lat, lng), reasonReverseNotSupported)
}

// NewKeyCDN returns a provider for tools.keycdn.com. siteURL is sent
// in a user agent as keycdn asks.
func NewKeyCDN(client geolib.HTTPClient, siteURL string) geolib.Provider {
	return &keycdnProvider{
		Base:    geolib.NewBase(NameKeyCDN),
		client:  client,
		siteURL: siteURL,
	}
}
