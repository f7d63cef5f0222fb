// Package query builds canonical geocoding queries from free-text addresses
// and derives degraded fallback queries from ones that failed to resolve.
package query

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// countryNames maps ISO 3166-1 alpha-2 codes to the display names used in
// canonical queries.
var countryNames = map[string]string{
	"HR": "Croatia",
	"BA": "Bosnia and Herzegovina",
	"ME": "Montenegro",
	"IT": "Italy",
	"LT": "Lithuania",
	"KZ": "Kazakhstan",
	"PL": "Poland",
	"SE": "Sweden",
	"MK": "North Macedonia",
	"AE": "United Arab Emirates",
	"SI": "Slovenia",
	"RS": "Serbia",
	"HU": "Hungary",
	"AT": "Austria",
	"DE": "Germany",
	"SK": "Slovakia",
	"CZ": "Czech Republic",
}

// CollapseSpace trims s, joins lines and collapses runs of whitespace to a
// single space. Text is NFC-composed so equivalent spellings share a key.
func CollapseSpace(s string) string {
	return strings.Join(strings.Fields(norm.NFC.String(s)), " ")
}

// CountryCode upper-cases and validates a two-letter country code.
func CountryCode(code string) (string, bool) {
	cc := strings.ToUpper(strings.TrimSpace(code))
	if len(cc) != 2 {
		return "", false
	}
	for i := 0; i < 2; i++ {
		if cc[i] < 'A' || cc[i] > 'Z' {
			return "", false
		}
	}
	return cc, true
}

// CountryName returns the display name for a code; unknown codes pass through.
func CountryName(code string) string {
	cc := strings.ToUpper(strings.TrimSpace(code))
	if name, ok := countryNames[cc]; ok {
		return name
	}
	return cc
}

// Normalize builds the canonical "<address>, <country>" query used as both
// cache key and provider request text. It returns false when the address is
// blank or the country code is not two letters.
func Normalize(address, countryCode string) (string, bool) {
	cc, ok := CountryCode(countryCode)
	if !ok {
		return "", false
	}
	addr := CollapseSpace(address)
	if addr == "" {
		return "", false
	}

	name := CountryName(cc)
	q := addr
	if !strings.HasSuffix(addr, name) {
		q = addr + ", " + name
	}
	return Correct(q), true
}
