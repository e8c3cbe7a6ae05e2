// Package geo classifies posting locations as domestic (US) or not.
package geo

import (
	"regexp"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
)

// stateAbbrevs holds the 50 US state codes plus DC.
var stateAbbrevs = mapset.NewThreadUnsafeSet(
	"AL", "AK", "AZ", "AR", "CA", "CO", "CT", "DE", "FL", "GA", "HI", "ID",
	"IL", "IN", "IA", "KS", "KY", "LA", "ME", "MD", "MA", "MI", "MN", "MS",
	"MO", "MT", "NE", "NV", "NH", "NJ", "NM", "NY", "NC", "ND", "OH", "OK",
	"OR", "PA", "RI", "SC", "SD", "TN", "TX", "UT", "VT", "VA", "WA", "WV",
	"WI", "WY", "DC",
)

// usKeywords are substrings that mark a location as explicitly US-based.
// A bare "remote" does not count: remoteness is handled by the eligibility
// filter, not by location classification.
var usKeywords = []string{"usa", "united states"}

// trailingStatePattern matches a trailing ", XX" state-code suffix ("Austin, TX").
var trailingStatePattern = regexp.MustCompile(`,\s*([A-Z]{2})$`)

// IsDomestic reports whether a posting's location string qualifies as US-based.
// Rules:
//   - missing location: domestic (absent data never disqualifies here)
//   - case-insensitive US keyword ("usa", "united states"): domestic
//   - trailing ", XX" where XX is a valid state code: domestic
//   - anything else: not domestic
func IsDomestic(location *string) bool {
	if location == nil {
		return true
	}
	loc := strings.TrimSpace(*location)
	if loc == "" {
		return true
	}

	lower := strings.ToLower(loc)
	for _, kw := range usKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}

	if m := trailingStatePattern.FindStringSubmatch(loc); m != nil {
		return stateAbbrevs.Contains(m[1])
	}
	return false
}
