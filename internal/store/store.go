// Package store defines the persistence contract for locations, categories,
// and leads, with Postgres and SQLite implementations.
package store

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/adigiz/leadgen/internal/model"
)

// ErrDuplicate is returned by CreateLead when the store reports a uniqueness
// conflict on the lead identity key (business name + location + category).
// Callers treat it as "already known", not as a failure.
var ErrDuplicate = eris.New("store: duplicate lead")

// Store is the persistence interface the pipeline depends on.
type Store interface {
	// Migrate creates the schema if it does not exist.
	Migrate(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error

	// CreateCategory inserts a category and fills its ID. Categories are
	// owned by the admin surface; this exists for seeding and tests.
	CreateCategory(ctx context.Context, c *model.Category) error

	// GetCategory returns a category by id, or nil when absent.
	GetCategory(ctx context.Context, id string) (*model.Category, error)

	// GetLocation returns a location by id, or nil when absent.
	GetLocation(ctx context.Context, id string) (*model.Location, error)

	// FindLocationBySlug returns a location by its unique slug, or nil.
	FindLocationBySlug(ctx context.Context, slug string) (*model.Location, error)

	// UpsertLocation inserts the location, ignoring a slug conflict, then
	// reads the stored row back into loc. Two concurrent runs resolving the
	// same new city therefore converge on a single row.
	UpsertLocation(ctx context.Context, loc *model.Location) error

	// EnrichLocationState sets state on a location only when it is currently
	// NULL. A present value is never overwritten.
	EnrichLocationState(ctx context.Context, id, state string) error

	// CreateLead inserts a lead and fills its ID. Returns ErrDuplicate when
	// the identity uniqueness constraint rejects the row.
	CreateLead(ctx context.Context, lead *model.Lead) error
}
