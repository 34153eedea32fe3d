package pipeline

import (
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/adigiz/leadgen/internal/gazetteer"
)

// minCityCandidateLen is the minimum length of a stripped city name for it
// to count as an inference candidate. Shorter fragments are noise.
const minCityCandidateLen = 2

// LocationInference is the inferred dominant area of a batch of addresses.
// An empty City means inference failed and the batch proceeds unanchored.
type LocationInference struct {
	City  string
	State string
}

// InferenceEngine guesses the dominant city/state from a sample of scraped
// addresses when the search was anchored by raw coordinates.
type InferenceEngine struct {
	gaz *gazetteer.Gazetteer
}

// NewInferenceEngine creates an engine backed by the given gazetteer.
func NewInferenceEngine(gaz *gazetteer.Gazetteer) *InferenceEngine {
	return &InferenceEngine{gaz: gaz}
}

// tally counts candidate strings. The winner is the candidate with the
// strictly highest count; on ties the first-seen candidate keeps winning.
type tally struct {
	counts map[string]int
	winner string
	max    int
}

func newTally() *tally {
	return &tally{counts: map[string]int{}}
}

func (t *tally) add(candidate string) {
	t.counts[candidate]++
	if t.counts[candidate] > t.max {
		t.max = t.counts[candidate]
		t.winner = candidate
	}
}

// Infer scans every address, classifies its segments as state or city
// signals, and returns the most frequent candidate of each kind.
//
// A segment matching the province taxonomy always counts as a state signal.
// Housing/complex keywords exclude a segment from city consideration only;
// the remaining segments need a city prefix and a stripped name longer than
// minCityCandidateLen to count.
func (e *InferenceEngine) Infer(addresses []string) LocationInference {
	cities := newTally()
	states := newTally()

	for _, addr := range addresses {
		s := addr
		if i := strings.LastIndex(s, routeSeparator); i >= 0 {
			s = s[i+len(routeSeparator):]
		}
		s = norm.NFKC.String(s)

		for _, seg := range strings.Split(s, ",") {
			seg = strings.TrimSpace(seg)
			if seg == "" {
				continue
			}
			lower := strings.ToLower(seg)

			if e.gaz.IsProvince(lower) {
				states.add(stripDigits(seg))
				continue
			}
			if e.gaz.IsHousingComplex(lower) {
				continue
			}
			if prefix, ok := e.gaz.MatchCityPrefix(lower); ok {
				city := strings.TrimSpace(seg[len(prefix):])
				if len(city) > minCityCandidateLen {
					cities.add(city)
				}
			}
		}
	}

	return LocationInference{City: cities.winner, State: states.winner}
}
