package pipeline

import (
	"context"
	"fmt"

	"github.com/adigiz/leadgen/internal/model"
	"github.com/adigiz/leadgen/internal/store"
)

// mockStore is an in-memory store.Store for pipeline tests.
type mockStore struct {
	categories map[string]model.Category
	locations  map[string]*model.Location // keyed by slug
	leads      []model.Lead
	leadKeys   map[string]bool

	failLeadsNamed map[string]error // force CreateLead errors by business name
	seq            int
}

func newMockStore() *mockStore {
	return &mockStore{
		categories:     map[string]model.Category{},
		locations:      map[string]*model.Location{},
		leadKeys:       map[string]bool{},
		failLeadsNamed: map[string]error{},
	}
}

func (m *mockStore) Migrate(context.Context) error { return nil }
func (m *mockStore) Ping(context.Context) error    { return nil }
func (m *mockStore) Close() error                  { return nil }

func (m *mockStore) CreateCategory(_ context.Context, c *model.Category) error {
	if c.ID == "" {
		m.seq++
		c.ID = fmt.Sprintf("cat-%d", m.seq)
	}
	m.categories[c.ID] = *c
	return nil
}

func (m *mockStore) GetCategory(_ context.Context, id string) (*model.Category, error) {
	c, ok := m.categories[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (m *mockStore) GetLocation(_ context.Context, id string) (*model.Location, error) {
	for _, loc := range m.locations {
		if loc.ID == id {
			cp := *loc
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *mockStore) FindLocationBySlug(_ context.Context, slug string) (*model.Location, error) {
	loc, ok := m.locations[slug]
	if !ok {
		return nil, nil
	}
	cp := *loc
	return &cp, nil
}

func (m *mockStore) UpsertLocation(_ context.Context, loc *model.Location) error {
	if existing, ok := m.locations[loc.Slug]; ok {
		*loc = *existing
		return nil
	}
	m.seq++
	loc.ID = fmt.Sprintf("loc-%d", m.seq)
	cp := *loc
	m.locations[loc.Slug] = &cp
	return nil
}

func (m *mockStore) EnrichLocationState(_ context.Context, id, state string) error {
	for _, loc := range m.locations {
		if loc.ID == id && loc.State == nil {
			s := state
			loc.State = &s
		}
	}
	return nil
}

func (m *mockStore) CreateLead(_ context.Context, lead *model.Lead) error {
	if err, ok := m.failLeadsNamed[lead.BusinessName]; ok {
		return err
	}
	key := leadKey(lead.BusinessName, lead.LocationID, lead.CategoryID)
	if m.leadKeys[key] {
		return store.ErrDuplicate
	}
	m.leadKeys[key] = true
	m.seq++
	lead.ID = fmt.Sprintf("lead-%d", m.seq)
	m.leads = append(m.leads, *lead)
	return nil
}

func leadKey(name string, locationID *string, categoryID string) string {
	loc := "<nil>"
	if locationID != nil {
		loc = *locationID
	}
	return name + "|" + loc + "|" + categoryID
}
