// Package pipeline implements the lead extraction pipeline: address parsing,
// listing classification, location inference and resolution, and lead
// reconciliation against the store.
package pipeline

import (
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/adigiz/leadgen/internal/gazetteer"
	"github.com/adigiz/leadgen/internal/model"
)

// routeSeparator is the katakana middle dot Google Maps inserts between a
// transliterated street name and the Latin-script remainder of an address.
// Only the text after its last occurrence is parsed.
const routeSeparator = "・"

// AddressParser turns one free-text, comma-separated address into structured
// geographic fields using a country gazetteer.
type AddressParser struct {
	gaz *gazetteer.Gazetteer
}

// NewAddressParser creates a parser for the given gazetteer.
func NewAddressParser(gaz *gazetteer.Gazetteer) *AddressParser {
	return &AddressParser{gaz: gaz}
}

// Parse extracts country, state, city, district, and postal code from a raw
// address. Segments are checked in a fixed priority order (country, postal
// code, district, city, state); the first match wins for a segment, and a
// later segment of the same category overwrites an earlier one. Country
// defaults to the gazetteer's country when never matched.
func (p *AddressParser) Parse(raw *string) model.AddressComponents {
	var out model.AddressComponents
	if raw == nil {
		out.Country = p.gaz.CountryName
		return out
	}

	s := *raw
	if i := strings.LastIndex(s, routeSeparator); i >= 0 {
		s = s[i+len(routeSeparator):]
	}
	// Fold full-width digits and punctuation left behind by the scrape.
	s = norm.NFKC.String(s)

	for _, seg := range strings.Split(s, ",") {
		seg = strings.TrimSpace(seg)
		if seg == "" {
			continue
		}
		lower := strings.ToLower(seg)

		switch {
		case p.gaz.IsCountry(lower):
			out.Country = p.gaz.CountryName
		case p.gaz.IsPostalCode(lower):
			out.PostalCode = seg
		default:
			if marker, ok := p.gaz.MatchDistrict(lower); ok {
				out.District = stripMarker(seg, marker)
			} else if prefix, ok := p.gaz.MatchCityPrefix(lower); ok {
				out.City = strings.TrimSpace(seg[len(prefix):])
			} else if p.gaz.IsProvince(lower) {
				out.State = stripDigits(seg)
			}
		}
	}

	if out.Country == "" {
		out.Country = p.gaz.CountryName
	}
	return out
}

// stripMarker removes the first case-insensitive occurrence of marker from
// seg and trims the result.
func stripMarker(seg, marker string) string {
	if i := strings.Index(strings.ToLower(seg), marker); i >= 0 {
		seg = seg[:i] + seg[i+len(marker):]
	}
	return strings.TrimSpace(seg)
}

// stripDigits removes all decimal digits from seg and trims the result.
// Province segments sometimes carry embedded postal fragments.
func stripDigits(seg string) string {
	var b strings.Builder
	b.Grow(len(seg))
	for _, r := range seg {
		if r < '0' || r > '9' {
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}
