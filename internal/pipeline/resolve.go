package pipeline

import (
	"context"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/adigiz/leadgen/internal/gazetteer"
	"github.com/adigiz/leadgen/internal/model"
	"github.com/adigiz/leadgen/internal/store"
)

var slugRe = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify derives the unique location lookup key from a name: lowercase,
// every run of non-alphanumeric characters collapsed to a single hyphen,
// leading/trailing hyphens trimmed.
func Slugify(name string) string {
	return strings.Trim(slugRe.ReplaceAllString(strings.ToLower(name), "-"), "-")
}

// LocationResolver finds or creates the canonical location record for an
// inferred city/state pair.
type LocationResolver struct {
	store store.Store
	gaz   *gazetteer.Gazetteer
}

// NewLocationResolver creates a resolver.
func NewLocationResolver(st store.Store, gaz *gazetteer.Gazetteer) *LocationResolver {
	return &LocationResolver{store: st, gaz: gaz}
}

// Resolve returns the id of the location for cityName, creating the record
// when it does not exist yet. An existing location's state is enriched when
// currently unset and stateName is non-empty; a present state is never
// overwritten. A nil result with nil error means resolution failed (no city)
// and the caller proceeds without a location.
func (r *LocationResolver) Resolve(ctx context.Context, cityName, stateName string) (*string, error) {
	if cityName == "" {
		return nil, nil
	}
	slug := Slugify(cityName)
	log := zap.L().With(zap.String("slug", slug))

	existing, err := r.store.FindLocationBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		if existing.State == nil && stateName != "" {
			if err := r.store.EnrichLocationState(ctx, existing.ID, stateName); err != nil {
				return nil, err
			}
			log.Debug("resolve: enriched location state", zap.String("state", stateName))
		}
		log.Debug("resolve: matched existing location", zap.String("location_id", existing.ID))
		return &existing.ID, nil
	}

	loc := &model.Location{
		Name:    cityName,
		Slug:    slug,
		Country: r.gaz.CountryName,
	}
	if stateName != "" {
		loc.State = &stateName
	}
	if err := r.store.UpsertLocation(ctx, loc); err != nil {
		return nil, err
	}
	// The upsert may have lost a race to a concurrent run; the stored row
	// wins, but it can still be missing a state we know.
	if loc.State == nil && stateName != "" {
		if err := r.store.EnrichLocationState(ctx, loc.ID, stateName); err != nil {
			return nil, err
		}
	}
	log.Info("resolve: created location",
		zap.String("location_id", loc.ID),
		zap.String("name", cityName),
	)
	return &loc.ID, nil
}
