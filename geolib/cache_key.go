package geolib

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
)

// Operation is a kind of lookup.
type Operation string

const (
	OperationGeocode Operation = "geocode"
	OperationReverse Operation = "reverse"
)

// CacheKey identifies a cached lookup. It is comparable: equal inputs
// always give equal keys.
type CacheKey struct {
	Operation Operation
	Provider  string
	Query     string
}

// String returns a representation which is safe to use as a key in
// external storages. Query is hashed so it has a bounded length.
func (c CacheKey) String() string {
	hashed := sha256.Sum256([]byte(c.Query))
	builder := strings.Builder{}

	builder.WriteString(string(c.Operation))
	builder.WriteByte(':')
	builder.WriteString(c.Provider)
	builder.WriteByte(':')
	builder.WriteString(hex.EncodeToString(hashed[:]))

	return builder.String()
}

// NewGeocodeKey builds a key for forward lookups. Query is taken
// literally.
func NewGeocodeKey(provider, query string) CacheKey {
	return CacheKey{
		Operation: OperationGeocode,
		Provider:  provider,
		Query:     query,
	}
}

// NewReverseKey builds a key for reverse lookups. Both coordinates
// participate in it.
func NewReverseKey(provider string, lat, lng float64) CacheKey {
	return CacheKey{
		Operation: OperationReverse,
		Provider:  provider,
		Query:     formatCoordinates(lat, lng),
	}
}

func formatCoordinates(lat, lng float64) string {
	return strconv.FormatFloat(lat, 'f', -1, 64) + "," + strconv.FormatFloat(lng, 'f', -1, 64)
}
