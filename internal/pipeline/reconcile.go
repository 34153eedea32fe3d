package pipeline

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/adigiz/leadgen/internal/gazetteer"
	"github.com/adigiz/leadgen/internal/model"
	"github.com/adigiz/leadgen/internal/store"
)

// Outcome is the result of reconciling one raw record against the store.
type Outcome int

const (
	// Saved means a new lead row was inserted.
	Saved Outcome = iota
	// SkippedDuplicate means the store already holds this lead.
	SkippedDuplicate
	// SkippedInvalid means the record failed the pre-insert checks.
	SkippedInvalid
)

// minBusinessNameLen is the shortest business name worth persisting.
const minBusinessNameLen = 2

// LeadReconciler persists parsed, classified leads, deduplicating against
// prior rows via the store's identity constraint.
type LeadReconciler struct {
	store store.Store
	gaz   *gazetteer.Gazetteer
}

// NewLeadReconciler creates a reconciler.
func NewLeadReconciler(st store.Store, gaz *gazetteer.Gazetteer) *LeadReconciler {
	return &LeadReconciler{store: st, gaz: gaz}
}

// Persist inserts one lead. Invalid records and duplicates are reported via
// the outcome, not as errors; any other store failure is returned for the
// orchestrator to log and skip.
func (r *LeadReconciler) Persist(
	ctx context.Context,
	rec model.RawBusinessRecord,
	addr model.AddressComponents,
	cls model.Classification,
	locationID *string,
	categoryID string,
) (Outcome, error) {
	name := strings.TrimSpace(rec.BusinessName)
	if utf8.RuneCountInString(name) < minBusinessNameLen {
		return SkippedInvalid, nil
	}

	country := addr.Country
	if country == "" {
		country = r.gaz.CountryName
	}
	var rawAddress string
	if rec.Address != nil {
		rawAddress = *rec.Address
	}

	lead := &model.Lead{
		BusinessName: name,
		Address:      rawAddress,
		Phone:        rec.Phone,
		Rating:       rec.Rating,
		ReviewCount:  cls.ReviewCount,
		ExternalURL:  rec.ExternalURL,
		LocationID:   locationID,
		CategoryID:   categoryID,
		Status:       model.LeadStatusNew,
		IsNewListing: cls.IsNewListing,
		City:         addr.City,
		District:     addr.District,
		State:        addr.State,
		PostalCode:   addr.PostalCode,
		Country:      country,
	}

	err := r.store.CreateLead(ctx, lead)
	if errors.Is(err, store.ErrDuplicate) {
		return SkippedDuplicate, nil
	}
	if err != nil {
		return SkippedInvalid, err
	}
	return Saved, nil
}
