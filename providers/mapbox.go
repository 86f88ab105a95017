package providers

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"github.com/9seconds/geocoder/geolib"
)

const mapboxEndpoint = "https://api.mapbox.com/geocoding/v5/mapbox.places/"

type mapboxContext struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	ShortCode string `json:"short_code"`
}

type mapboxFeature struct {
	PlaceType  []string `json:"place_type"`
	Properties struct {
		ShortCode string `json:"short_code"`
	} `json:"properties"`
	Text    string          `json:"text"`
	Address string          `json:"address"`
	Center  []float64       `json:"center"`
	BBox    []float64       `json:"bbox"`
	Context []mapboxContext `json:"context"`
}

type mapboxResponse struct {
	Features []mapboxFeature `json:"features"`
}

type mapboxProvider struct {
	*geolib.Base

	client      geolib.HTTPClient
	accessToken string
}

func (m *mapboxProvider) Geocode(ctx context.Context, query string) (geolib.Results, error) {
	if err := checkAddressQuery(m.Base, query); err != nil {
		return nil, err
	}

	return m.lookup(ctx, query, url.PathEscape(query))
}

func (m *mapboxProvider) Reverse(ctx context.Context, lat, lng float64) (geolib.Results, error) {
	// mapbox expects longitude first
	path := strconv.FormatFloat(lng, 'f', -1, 64) + "," + strconv.FormatFloat(lat, 'f', -1, 64)

	return m.lookup(ctx, geolib.ReverseQuery(lat, lng), path)
}

func (m *mapboxProvider) lookup(ctx context.Context, query, path string) (geolib.Results, error) {
	params := url.Values{}

	params.Set("access_token", m.accessToken)
	params.Set("language", "en")

	request := jsonRequest{
		base:   m.Base,
		client: m.client,
		query:  query,
		url:    mapboxEndpoint + path + ".json?" + params.Encode(),
	}
	jsonResponse := mapboxResponse{}

	if err := request.Do(ctx, &jsonResponse); err != nil {
		return nil, err
	}

	results := make(geolib.Results, 0, len(jsonResponse.Features))

	for _, feature := range jsonResponse.Features {
		results = append(results, m.convert(feature))
	}

	if len(results) == 0 {
		return nil, m.NoResult(query)
	}

	return results, nil
}

func (m *mapboxProvider) convert(feature mapboxFeature) geolib.Result {
	result := geolib.Result{
		ProvidedBy: NameMapbox,
	}

	if len(feature.Center) == 2 {
		result.Longitude = geolib.Float(feature.Center[0])
		result.Latitude = geolib.Float(feature.Center[1])
	}

	if len(feature.BBox) == 4 {
		result.Bounds = &geolib.Bounds{
			West:  feature.BBox[0],
			South: feature.BBox[1],
			East:  feature.BBox[2],
			North: feature.BBox[3],
		}
	}

	if hasPlaceType(feature, "address") {
		result.StreetName = geolib.StringOrNil(feature.Text)
		result.StreetNumber = geolib.StringOrNil(feature.Address)
	}

	// a feature itself is a part of the address hierarchy
	items := make([]mapboxContext, 0, len(feature.PlaceType)+len(feature.Context))

	for _, v := range feature.PlaceType {
		items = append(items, mapboxContext{
			ID:        v + ".",
			Text:      feature.Text,
			ShortCode: feature.Properties.ShortCode,
		})
	}

	items = append(items, feature.Context...)

	for _, item := range items {
		value := geolib.StringOrNil(item.Text)

		switch {
		case strings.HasPrefix(item.ID, "postcode."):
			result.PostalCode = value
		case strings.HasPrefix(item.ID, "place."):
			result.Locality = value
		case strings.HasPrefix(item.ID, "locality."), strings.HasPrefix(item.ID, "neighborhood."):
			if result.SubLocality == nil {
				result.SubLocality = value
			}
		case strings.HasPrefix(item.ID, "district."):
			result.County = value
		case strings.HasPrefix(item.ID, "region."):
			result.Region = value
			result.RegionCode = geolib.StringOrNil(item.ShortCode)
		case strings.HasPrefix(item.ID, "country."):
			result.Country = value
			result.CountryCode = geolib.StringOrNil(item.ShortCode)
		}
	}

	geolib.FillCountry(&result)

	return result
}

func hasPlaceType(feature mapboxFeature, placeType string) bool {
	for _, v := range feature.PlaceType {
		if v == placeType {
			return true
		}
	}

	return false
}

// NewMapbox returns a provider for Mapbox geocoding API v5.
func NewMapbox(client geolib.HTTPClient, accessToken string) (geolib.Provider, error) {
	if accessToken == "" {
		return nil, ErrAuthTokenIsRequired
	}

	return &mapboxProvider{
		Base:        geolib.NewBase(NameMapbox),
		client:      client,
		accessToken: accessToken,
	}, nil
}
