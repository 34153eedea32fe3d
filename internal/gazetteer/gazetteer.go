// Package gazetteer provides per-country reference data for classifying
// free-text address segments into administrative categories.
package gazetteer

import (
	_ "embed"
	"regexp"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

//go:embed gazetteer.yaml
var gazetteerYAML []byte

// Gazetteer holds the place-name taxonomy for a single country. All keyword
// fields are lowercase; callers are expected to lowercase segments before
// matching.
type Gazetteer struct {
	CountryCode       string
	CountryName       string   `yaml:"country_name"`
	ProvinceFragments []string `yaml:"province_fragments"`
	CityPrefixes      []string `yaml:"city_prefixes"`
	DistrictPrefixes  []string `yaml:"district_prefixes"`
	DistrictWords     []string `yaml:"district_words"`
	HousingKeywords   []string `yaml:"housing_keywords"`
	PostalCodePattern string   `yaml:"postal_code_pattern"`

	postalRe *regexp.Regexp
}

var registry = func() map[string]*Gazetteer {
	raw := map[string]*Gazetteer{}
	if err := yaml.Unmarshal(gazetteerYAML, &raw); err != nil {
		panic("gazetteer: parse embedded data: " + err.Error())
	}
	for code, g := range raw {
		g.CountryCode = code
		g.postalRe = regexp.MustCompile(g.PostalCodePattern)
	}
	return raw
}()

// ForCountry returns the gazetteer for a lowercase ISO 3166-1 alpha-2 code.
func ForCountry(code string) (*Gazetteer, error) {
	g, ok := registry[strings.ToLower(code)]
	if !ok {
		return nil, eris.Errorf("gazetteer: no data for country %q", code)
	}
	return g, nil
}

// Countries lists the country codes with gazetteer data.
func Countries() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	return codes
}

// IsPostalCode reports whether a lowercased, trimmed segment is a postal code.
func (g *Gazetteer) IsPostalCode(segment string) bool {
	return g.postalRe.MatchString(segment)
}

// IsCountry reports whether a lowercased, trimmed segment names the country.
func (g *Gazetteer) IsCountry(segment string) bool {
	return segment == strings.ToLower(g.CountryName)
}

// MatchDistrict reports whether a lowercased segment is a district and
// returns the marker that identified it, so callers can strip it.
func (g *Gazetteer) MatchDistrict(segment string) (marker string, ok bool) {
	for _, p := range g.DistrictPrefixes {
		if strings.HasPrefix(segment, p) {
			return p, true
		}
	}
	for _, w := range g.DistrictWords {
		if strings.Contains(segment, w) {
			return w, true
		}
	}
	return "", false
}

// MatchCityPrefix returns the matched city prefix, if any.
func (g *Gazetteer) MatchCityPrefix(segment string) (prefix string, ok bool) {
	for _, p := range g.CityPrefixes {
		if strings.HasPrefix(segment, p) {
			return p, true
		}
	}
	return "", false
}

// IsProvince reports whether a lowercased segment contains a province
// name fragment.
func (g *Gazetteer) IsProvince(segment string) bool {
	for _, f := range g.ProvinceFragments {
		if strings.Contains(segment, f) {
			return true
		}
	}
	return false
}

// IsHousingComplex reports whether a lowercased segment carries a
// housing/complex keyword. Such segments are unreliable area signals.
func (g *Gazetteer) IsHousingComplex(segment string) bool {
	for _, k := range g.HousingKeywords {
		if strings.Contains(segment, k) {
			return true
		}
	}
	return false
}
