package geolib

import (
	"strings"

	"github.com/pariz/gountries"
)

var countryCodeQuery = gountries.New()

// NormalizeAlpha2Code returns a normalized 2-letter ISO3166 code.
// Normalized code is uppercased with some additional mapping. For
// example, some databases return ZZ as 'unknown' country. This function
// returns "" instead. Some databases still map Serbia to YU. This
// correctly maps YU to CS.
func NormalizeAlpha2Code(alpha2 string) string {
	alpha2 = strings.ToUpper(strings.TrimSpace(alpha2))

	if len(alpha2) != 2 {
		return ""
	}

	switch alpha2 {
	case "ZZ", "AP", "EU", "XX":
		return ""
	case "YU":
		return "CS"
	case "FX":
		return "FR"
	case "UK":
		return "GB"
	}

	return alpha2
}

// Alpha3ToAlpha2 maps 3-letter ISO3166 code to 2-letter one. Unknown
// codes are mapped to "".
func Alpha3ToAlpha2(alpha3 string) string {
	country, err := countryCodeQuery.FindCountryByAlpha(strings.ToUpper(alpha3))
	if err != nil {
		return ""
	}

	return NormalizeAlpha2Code(country.Alpha2)
}

// CountryName returns a common name of the country by its 2-letter
// code.
func CountryName(alpha2 string) (string, bool) {
	alpha2 = NormalizeAlpha2Code(alpha2)
	if alpha2 == "" {
		return "", false
	}

	country, err := countryCodeQuery.FindCountryByAlpha(alpha2)
	if err != nil {
		return "", false
	}

	return country.Name.Common, true
}

// FillCountry normalizes a country code of the result and sets a
// country name if backend has returned a code only.
func FillCountry(result *Result) {
	if result.CountryCode == nil {
		return
	}

	code := NormalizeAlpha2Code(*result.CountryCode)
	if code == "" {
		result.CountryCode = nil

		return
	}

	result.CountryCode = &code

	if result.Country == nil {
		if name, ok := CountryName(code); ok {
			result.Country = &name
		}
	}
}
