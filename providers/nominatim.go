package providers

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"github.com/9seconds/geocoder/geolib"
)

const (
	// NominatimDefaultEndpoint is a public instance of Nominatim. Please
	// check its usage policy: 1 request per second at most.
	NominatimDefaultEndpoint = "https://nominatim.openstreetmap.org"

	nominatimResultsLimit = 5
)

type nominatimAddress struct {
	HouseNumber   string `json:"house_number"`
	Road          string `json:"road"`
	Postcode      string `json:"postcode"`
	City          string `json:"city"`
	Town          string `json:"town"`
	Village       string `json:"village"`
	Suburb        string `json:"suburb"`
	County        string `json:"county"`
	State         string `json:"state"`
	StateCode     string `json:"ISO3166-2-lvl4"`
	Country       string `json:"country"`
	CountryCode   string `json:"country_code"`
	CityDistrict  string `json:"city_district"`
	Neighbourhood string `json:"neighbourhood"`
}

type nominatimPlace struct {
	Lat         string           `json:"lat"`
	Lon         string           `json:"lon"`
	BoundingBox []string         `json:"boundingbox"`
	Address     nominatimAddress `json:"address"`
	Error       string           `json:"error"`
}

type nominatimProvider struct {
	*geolib.Base

	client   geolib.HTTPClient
	endpoint string
	email    string
}

func (n *nominatimProvider) Geocode(ctx context.Context, query string) (geolib.Results, error) {
	if err := checkAddressQuery(n.Base, query); err != nil {
		return nil, err
	}

	params := n.params()

	params.Set("q", query)
	params.Set("limit", strconv.Itoa(nominatimResultsLimit))

	request := jsonRequest{
		base:   n.Base,
		client: n.client,
		query:  query,
		url:    n.endpoint + "/search?" + params.Encode(),
	}
	places := []nominatimPlace{}

	if err := request.Do(ctx, &places); err != nil {
		return nil, err
	}

	return n.convert(query, places)
}

func (n *nominatimProvider) Reverse(ctx context.Context, lat, lng float64) (geolib.Results, error) {
	query := geolib.ReverseQuery(lat, lng)
	params := n.params()

	params.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	params.Set("lon", strconv.FormatFloat(lng, 'f', -1, 64))

	request := jsonRequest{
		base:   n.Base,
		client: n.client,
		query:  query,
		url:    n.endpoint + "/reverse?" + params.Encode(),
	}
	place := nominatimPlace{}

	if err := request.Do(ctx, &place); err != nil {
		return nil, err
	}

	if place.Error != "" {
		return nil, n.NoResult(query)
	}

	return n.convert(query, []nominatimPlace{place})
}

func (n *nominatimProvider) params() url.Values {
	params := url.Values{}

	params.Set("format", "jsonv2")
	params.Set("addressdetails", "1")
	params.Set("accept-language", "en")

	if n.email != "" {
		params.Set("email", n.email)
	}

	return params
}

func (n *nominatimProvider) convert(query string, places []nominatimPlace) (geolib.Results, error) {
	results := make(geolib.Results, 0, len(places))

	for _, place := range places {
		result := geolib.Result{
			StreetNumber: geolib.StringOrNil(place.Address.HouseNumber),
			StreetName:   geolib.StringOrNil(place.Address.Road),
			PostalCode:   geolib.StringOrNil(place.Address.Postcode),
			Locality:     geolib.StringOrNil(firstNonEmpty(place.Address.City, place.Address.Town, place.Address.Village)),
			SubLocality:  geolib.StringOrNil(firstNonEmpty(place.Address.Suburb, place.Address.CityDistrict, place.Address.Neighbourhood)),
			County:       geolib.StringOrNil(place.Address.County),
			Region:       geolib.StringOrNil(place.Address.State),
			RegionCode:   geolib.StringOrNil(place.Address.StateCode),
			Country:      geolib.StringOrNil(place.Address.Country),
			CountryCode:  geolib.StringOrNil(place.Address.CountryCode),
			ProvidedBy:   NameNominatim,
		}

		lat, errLat := strconv.ParseFloat(place.Lat, 64)
		lng, errLng := strconv.ParseFloat(place.Lon, 64)

		if errLat == nil && errLng == nil {
			result.Latitude = &lat
			result.Longitude = &lng
		}

		result.Bounds = parseNominatimBounds(place.BoundingBox)

		geolib.FillCountry(&result)

		results = append(results, result)
	}

	if len(results) == 0 {
		return nil, n.NoResult(query)
	}

	return results, nil
}

// bounding box is [south, north, west, east]
func parseNominatimBounds(box []string) *geolib.Bounds {
	if len(box) != 4 {
		return nil
	}

	values := make([]float64, 0, len(box))

	for _, v := range box {
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil
		}

		values = append(values, parsed)
	}

	return &geolib.Bounds{
		South: values[0],
		North: values[1],
		West:  values[2],
		East:  values[3],
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}

	return ""
}

// NewNominatim returns a provider for Nominatim instance. Empty
// endpoint means NominatimDefaultEndpoint. Public instance asks to
// provide an email for heavy usage.
func NewNominatim(client geolib.HTTPClient, endpoint, email string) geolib.Provider {
	if endpoint == "" {
		endpoint = NominatimDefaultEndpoint
	}

	return &nominatimProvider{
		Base:     geolib.NewBase(NameNominatim),
		client:   client,
		endpoint: strings.TrimRight(endpoint, "/"),
		email:    email,
	}
}
