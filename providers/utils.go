package providers

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/9seconds/geocoder/geolib"
)

type jsonRequest struct {
	base    *geolib.Base
	client  geolib.HTTPClient
	query   string
	url     string
	headers map[string]string
}

// Do sends GET request and decodes JSON response into target. Status
// codes of the response are mapped to error kinds.
func (j jsonRequest) Do(ctx context.Context, target interface{}) error {
	if err := j.base.Wait(ctx); err != nil {
		return j.base.Fail(geolib.KindUnknown, j.query, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, j.url, nil)
	if err != nil {
		return j.base.Fail(geolib.KindUnknown, j.query,
			fmt.Errorf("cannot build a request: %w", err))
	}

	req.Header.Set("Accept", "application/json")

	for k, v := range j.headers {
		req.Header.Set(k, v)
	}

	resp, err := j.client.Do(req)
	if err != nil {
		return j.base.Fail(geolib.KindUnknown, j.query,
			fmt.Errorf("cannot send a request: %w", err))
	}

	defer flushResponse(resp.Body)

	if err := checkStatus(j.base, j.query, resp.StatusCode); err != nil {
		return err
	}

	if err := json.NewDecoder(bufio.NewReader(resp.Body)).Decode(target); err != nil {
		return j.base.Fail(geolib.KindUnknown, j.query,
			fmt.Errorf("cannot parse a response: %w", err))
	}

	return nil
}

func checkStatus(base *geolib.Base, query string, statusCode int) error {
	switch statusCode {
	case http.StatusOK:
		return nil
	case http.StatusUnauthorized, http.StatusForbidden:
		return base.Fail(geolib.KindInvalidCredentials, query,
			fmt.Errorf("unexpected status code: %d", statusCode))
	case http.StatusTooManyRequests:
		return base.Fail(geolib.KindQuotaExceeded, query,
			fmt.Errorf("unexpected status code: %d", statusCode))
	case http.StatusNotFound:
		return base.NoResult(query)
	}

	return base.Fail(geolib.KindUnknown, query,
		fmt.Errorf("unexpected status code: %d", statusCode))
}

func flushResponse(resp io.ReadCloser) {
	io.Copy(io.Discard, resp) // nolint: errcheck
	resp.Close()
}

// checkIPQuery returns canned results for loopback addresses and an
// error for non-IP queries. If both return values are nil, a query
// should be sent to the backend.
func checkIPQuery(base *geolib.Base, query string) (geolib.Results, error) {
	if results, ok := base.Localhost(query); ok {
		return results, nil
	}

	if !geolib.ClassifyQuery(query).IsIP() {
		return nil, base.Unsupported(query, reasonAddressNotSupported)
	}

	return nil, nil
}

// checkAddressQuery rejects IP queries for address-only providers.
func checkAddressQuery(base *geolib.Base, query string) error {
	if geolib.ClassifyQuery(query).IsIP() {
		return base.Unsupported(query, reasonIPNotSupported)
	}

	return nil
}
