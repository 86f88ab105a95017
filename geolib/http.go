package geolib

import (
	"encoding/json"
	"io"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/qri-io/jsonschema"
)

const maxBatchSize = 100

var handlePostRequestJSONSchema = func() *jsonschema.Schema {
	data := `{
        "type": "object",
        "required": [
            "queries"
        ],
        "additionalProperties": false,
        "properties": {
            "queries": {
                "type": "array",
                "minItems": 1,
                "maxItems": ` + strconv.Itoa(maxBatchSize) + `,
                "items": {
                    "type": "string",
                    "minLength": 1,
                    "maxLength": 1024
                }
            }
        }
    }`

	rv := &jsonschema.Schema{}
	if err := json.Unmarshal([]byte(data), rv); err != nil {
		panic(err)
	}

	return rv
}()

// StatsSource is something which can report usage stats of its
// members. Chains implement it.
type StatsSource interface {
	Stats() []*UsageStats
}

// HTTPHandlerOptions are optional parts of HTTP API.
type HTTPHandlerOptions struct {
	Stats    StatsSource
	Gatherer prometheus.Gatherer
}

type handlePostRequest struct {
	Queries []string `json:"queries"`
}

type handlePostResult struct {
	Query   string             `json:"query"`
	Results Results            `json:"results"`
	Error   *jsonHTTPErrorBody `json:"error,omitempty"`
}

type handlePostResponse struct {
	Results []handlePostResult `json:"results"`
}

type resultsResponse struct {
	Results Results `json:"results"`
}

type httpHandler struct {
	provider Provider
	stats    StatsSource
}

func (h httpHandler) handleGetGeocode(w http.ResponseWriter, req *http.Request) {
	query := strings.TrimSpace(req.URL.Query().Get("q"))
	if query == "" {
		h.sendError(w, nil, "Query parameter q is required", http.StatusBadRequest)

		return
	}

	h.geocode(w, req, query)
}

func (h httpHandler) handleGetSelf(w http.ResponseWriter, req *http.Request) {
	host, _, err := net.SplitHostPort(req.RemoteAddr)
	if err != nil {
		h.sendError(w, err, "Cannot detect your IP address", http.StatusInternalServerError)

		return
	}

	ipAddr := net.ParseIP(host)
	if ipAddr == nil {
		h.sendError(w, nil, "Address was detected incorrectly", http.StatusInternalServerError)

		return
	}

	h.geocode(w, req, ipAddr.String())
}

func (h httpHandler) geocode(w http.ResponseWriter, req *http.Request, query string) {
	results, err := h.provider.Geocode(req.Context(), query)
	if err != nil {
		h.sendError(w, err, "Cannot geocode a query", 0)

		return
	}

	h.encodeJSON(w, resultsResponse{Results: results})
}

func (h httpHandler) handleGetReverse(w http.ResponseWriter, req *http.Request) {
	lat, err := parseCoordinate(req.URL.Query().Get("lat"), 90)
	if err != nil {
		h.sendError(w, err, "Incorrect latitude", http.StatusBadRequest)

		return
	}

	lng, err := parseCoordinate(req.URL.Query().Get("lng"), 180)
	if err != nil {
		h.sendError(w, err, "Incorrect longitude", http.StatusBadRequest)

		return
	}

	results, err := h.provider.Reverse(req.Context(), lat, lng)
	if err != nil {
		h.sendError(w, err, "Cannot reverse geocode coordinates", 0)

		return
	}

	h.encodeJSON(w, resultsResponse{Results: results})
}

func (h httpHandler) handlePostGeocode(w http.ResponseWriter, req *http.Request) {
	if !strings.Contains(req.Header.Get("Content-Type"), "application/json") {
		h.sendError(w, nil, "Incorrect content type", http.StatusUnsupportedMediaType)

		return
	}

	bodyBytes, err := io.ReadAll(req.Body)

	req.Body.Close()

	if err != nil {
		h.sendError(w, err, "Cannot read request body", http.StatusBadRequest)

		return
	}

	errs, err := handlePostRequestJSONSchema.ValidateBytes(req.Context(), bodyBytes)
	if err != nil {
		h.sendError(w, err, "Cannot validate body", http.StatusBadRequest)

		return
	}

	if len(errs) > 0 {
		h.sendError(w, errs[0], "Invalid request body", http.StatusBadRequest)

		return
	}

	parsedRequest := handlePostRequest{}
	if err := json.Unmarshal(bodyBytes, &parsedRequest); err != nil {
		h.sendError(w, err, "Cannot parse request JSON", http.StatusBadRequest)

		return
	}

	response := handlePostResponse{
		Results: make([]handlePostResult, 0, len(parsedRequest.Queries)),
	}

	for _, query := range parsedRequest.Queries {
		item := handlePostResult{
			Query: query,
		}

		results, err := h.provider.Geocode(req.Context(), query)
		if err != nil {
			item.Error = (&httpError{message: "Cannot geocode a query", err: err}).body()
		} else {
			item.Results = results
		}

		response.Results = append(response.Results, item)
	}

	h.encodeJSON(w, response)
}

func (h httpHandler) handleGetStats(w http.ResponseWriter, _ *http.Request) {
	response := struct {
		Results []*UsageStats `json:"results"`
	}{
		Results: []*UsageStats{},
	}

	if h.stats != nil {
		response.Results = h.stats.Stats()
	}

	h.encodeJSON(w, response)
}

func (h httpHandler) encodeJSON(w http.ResponseWriter, data interface{}) {
	encoder := json.NewEncoder(w)

	w.Header().Set("Content-Type", "application/json")
	encoder.SetEscapeHTML(false)
	encoder.Encode(data) // nolint: errcheck
}

func (h httpHandler) sendError(w http.ResponseWriter, err error, message string, statusCode int) {
	e := &httpError{
		message:    message,
		statusCode: statusCode,
		err:        err,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(e.StatusCode())
	json.NewEncoder(w).Encode(e) // nolint: errcheck
}

func parseCoordinate(value string, limit float64) (float64, error) {
	rv, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return 0, err
	}

	if math.IsNaN(rv) || rv < -limit || rv > limit {
		return 0, strconv.ErrRange
	}

	return rv, nil
}

// NewHTTPHandler returns a handler which exposes a provider via HTTP
// API.
func NewHTTPHandler(provider Provider, opts HTTPHandlerOptions) http.Handler {
	handler := httpHandler{
		provider: provider,
		stats:    opts.Stats,
	}
	router := chi.NewRouter()

	router.Get("/v1/geocode", handler.handleGetGeocode)
	router.Post("/v1/geocode", handler.handlePostGeocode)
	router.Get("/v1/reverse", handler.handleGetReverse)
	router.Get("/v1/self", handler.handleGetSelf)
	router.Get("/v1/stats", handler.handleGetStats)

	if opts.Gatherer != nil {
		router.Handle("/metrics", promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{}))
	}

	return router
}
