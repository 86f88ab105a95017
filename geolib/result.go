package geolib

// Bounds is a bounding box of a result in degrees.
type Bounds struct {
	South float64 `json:"south"`
	West  float64 `json:"west"`
	North float64 `json:"north"`
	East  float64 `json:"east"`
}

// Result is a normalized geocoding record.
//
// Every field which a backend could not resolve is nil. Nil means
// 'unknown' and it is a different thing from an empty string: some
// backends return empty strings for fields they know are empty.
type Result struct {
	Latitude     *float64 `json:"latitude"`
	Longitude    *float64 `json:"longitude"`
	Bounds       *Bounds  `json:"bounds"`
	StreetNumber *string  `json:"street_number"`
	StreetName   *string  `json:"street_name"`
	PostalCode   *string  `json:"postal_code"`
	Locality     *string  `json:"locality"`
	SubLocality  *string  `json:"sub_locality"`
	County       *string  `json:"county"`
	CountyCode   *string  `json:"county_code"`
	Region       *string  `json:"region"`
	RegionCode   *string  `json:"region_code"`
	Country      *string  `json:"country"`
	CountryCode  *string  `json:"country_code"`
	Timezone     *string  `json:"timezone"`
	ProvidedBy   string   `json:"provided_by"`
}

// HasCoordinates checks if both latitude and longitude are known.
func (r Result) HasCoordinates() bool {
	return r.Latitude != nil && r.Longitude != nil
}

// Results is an ordered sequence of results for a single lookup.
// Usually it has a single element, ambiguous matches can produce more.
type Results []Result

// First returns the first result. A second value is false if there are
// no results at all.
func (r Results) First() (Result, bool) {
	if len(r) == 0 {
		return Result{}, false
	}

	return r[0], true
}

// String returns a pointer to a copy of s. Backends use it to fill
// optional fields.
func String(s string) *string {
	return &s
}

// StringOrNil returns nil for empty strings. This is useful for
// backends which do not distinguish unknown and empty values.
func StringOrNil(s string) *string {
	if s == "" {
		return nil
	}

	return &s
}

// Float returns a pointer to a copy of f.
func Float(f float64) *float64 {
	return &f
}

// Clone returns a deep copy of results. Cache strategies which keep
// values in memory return clones so callers own what they get.
func (r Results) Clone() Results {
	if r == nil {
		return nil
	}

	rv := make(Results, len(r))

	for i := range r {
		rv[i] = r[i].clone()
	}

	return rv
}

func (r Result) clone() Result {
	rv := Result{
		Latitude:     clonePtr(r.Latitude),
		Longitude:    clonePtr(r.Longitude),
		Bounds:       clonePtr(r.Bounds),
		StreetNumber: clonePtr(r.StreetNumber),
		StreetName:   clonePtr(r.StreetName),
		PostalCode:   clonePtr(r.PostalCode),
		Locality:     clonePtr(r.Locality),
		SubLocality:  clonePtr(r.SubLocality),
		County:       clonePtr(r.County),
		CountyCode:   clonePtr(r.CountyCode),
		Region:       clonePtr(r.Region),
		RegionCode:   clonePtr(r.RegionCode),
		Country:      clonePtr(r.Country),
		CountryCode:  clonePtr(r.CountryCode),
		Timezone:     clonePtr(r.Timezone),
		ProvidedBy:   r.ProvidedBy,
	}

	return rv
}

func clonePtr[T any](value *T) *T {
	if value == nil {
		return nil
	}

	copied := *value

	return &copied
}
