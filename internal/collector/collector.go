// Package collector talks to the external headless renderer that produces
// the rendered results feed, and extracts raw business records from its DOM.
package collector

import (
	"context"

	"github.com/adigiz/leadgen/internal/model"
)

// Extractor produces raw business records for a search target. The pipeline
// places no requirements on how results are obtained, only on their shape.
type Extractor interface {
	Extract(ctx context.Context, target model.SearchTarget, query string) ([]model.RawBusinessRecord, error)
}
