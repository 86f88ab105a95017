package providers

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/9seconds/geocoder/geolib"
)

const (
	ip2cStatusWrongInput = "0"
	ip2cStatusFound      = "1"
	ip2cStatusUnknown    = "2"
)

// ip2cProvider resolves IPv4 addresses to countries only.
type ip2cProvider struct {
	*geolib.Base

	client geolib.HTTPClient
}

func (i *ip2cProvider) Geocode(ctx context.Context, query string) (geolib.Results, error) {
	if results, err := checkIPQuery(i.Base, query); results != nil || err != nil {
		return results, err
	}

	query = strings.TrimSpace(query)

	if geolib.ClassifyQuery(query) != geolib.QueryIPv4 {
		return nil, i.Unsupported(query, "only IPv4 addresses are supported")
	}

	if err := i.Wait(ctx); err != nil {
		return nil, i.Fail(geolib.KindUnknown, query, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		"https://ip2c.org/?ip="+url.QueryEscape(query), nil)
	if err != nil {
		return nil, i.Fail(geolib.KindUnknown, query,
			fmt.Errorf("cannot build a request: %w", err))
	}

	resp, err := i.client.Do(req)
	if err != nil {
		return nil, i.Fail(geolib.KindUnknown, query,
			fmt.Errorf("cannot send a request: %w", err))
	}

	defer flushResponse(resp.Body)

	if err := checkStatus(i.Base, query, resp.StatusCode); err != nil {
		return nil, err
	}

	bodyBytes, err := io.ReadAll(bufio.NewReader(resp.Body))
	if err != nil {
		return nil, i.Fail(geolib.KindUnknown, query,
			fmt.Errorf("cannot read response body: %w", err))
	}

	body := strings.TrimSpace(string(bodyBytes))
	chunks := strings.SplitN(body, ";", 4)

	switch {
	case len(chunks) != 4:
		return nil, i.Fail(geolib.KindUnknown, query,
			fmt.Errorf("incorrect response: %s", body))
	case chunks[0] == ip2cStatusUnknown:
		return nil, i.NoResult(query)
	case chunks[0] == ip2cStatusWrongInput:
		return nil, i.Unsupported(query, "ip2c cannot parse this query")
	case chunks[0] != ip2cStatusFound:
		return nil, i.Fail(geolib.KindUnknown, query,
			fmt.Errorf("ip2c cannot detect region: %s", body))
	}

	result := geolib.Result{
		Country:     geolib.StringOrNil(chunks[3]),
		CountryCode: geolib.StringOrNil(chunks[1]),
		ProvidedBy:  NameIP2C,
	}

	geolib.FillCountry(&result)

	if result.CountryCode == nil {
		return nil, i.NoResult(query)
	}

	return geolib.Results{result}, nil
}

func (i *ip2cProvider) Reverse(_ context.Context, lat, lng float64) (geolib.Results, error) {
	return nil, i.Unsupported(geolib.ReverseQuery(lat, lng), reasonReverseNotSupported)
}

func NewIP2C(client geolib.HTTPClient) geolib.Provider {
	return &ip2cProvider{
		Base:   geolib.NewBase(NameIP2C),
		client: client,
	}
}
