package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adigiz/leadgen/internal/model"
)

// stubStore backs router tests with canned categories.
type stubStore struct {
	categories map[string]model.Category
}

func (s *stubStore) Migrate(context.Context) error { return nil }
func (s *stubStore) Ping(context.Context) error    { return nil }
func (s *stubStore) Close() error                  { return nil }

func (s *stubStore) CreateCategory(_ context.Context, c *model.Category) error {
	s.categories[c.ID] = *c
	return nil
}

func (s *stubStore) GetCategory(_ context.Context, id string) (*model.Category, error) {
	c, ok := s.categories[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (s *stubStore) GetLocation(context.Context, string) (*model.Location, error) {
	return nil, nil
}

func (s *stubStore) FindLocationBySlug(context.Context, string) (*model.Location, error) {
	return nil, nil
}

func (s *stubStore) UpsertLocation(context.Context, *model.Location) error     { return nil }
func (s *stubStore) EnrichLocationState(context.Context, string, string) error { return nil }
func (s *stubStore) CreateLead(context.Context, *model.Lead) error             { return nil }

type triggered struct {
	target     model.SearchTarget
	categoryID string
}

func newTestRouter(t *testing.T) (http.Handler, chan triggered) {
	t.Helper()
	st := &stubStore{categories: map[string]model.Category{
		"cat-1": {ID: "cat-1", Name: "Coffee Shops", SearchTerm: "coffee shop"},
	}}
	runs := make(chan triggered, 1)
	r := newRouter(st, func(target model.SearchTarget, categoryID string) {
		runs <- triggered{target: target, categoryID: categoryID}
	})
	return r, runs
}

func postScrape(t *testing.T, r http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/scrape", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func waitForRun(t *testing.T, runs chan triggered) triggered {
	t.Helper()
	select {
	case run := <-runs:
		return run
	case <-time.After(time.Second):
		t.Fatal("runner was not invoked")
		return triggered{}
	}
}

func TestRouter_Health(t *testing.T) {
	r, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestRouter_Scrape_KnownLocation(t *testing.T) {
	r, runs := newTestRouter(t)

	rec := postScrape(t, r, `{"location_id":"loc-1","category_id":"cat-1"}`)
	require.Equal(t, http.StatusAccepted, rec.Code)
	assert.JSONEq(t, `{"status":"started"}`, rec.Body.String())

	run := waitForRun(t, runs)
	assert.Equal(t, "cat-1", run.categoryID)
	id, ok := run.target.LocationID()
	require.True(t, ok)
	assert.Equal(t, "loc-1", id)
}

func TestRouter_Scrape_CoordinatesDefaultZoom(t *testing.T) {
	r, runs := newTestRouter(t)

	rec := postScrape(t, r, `{"lat":-6.9,"lng":107.6,"category_id":"cat-1"}`)
	require.Equal(t, http.StatusAccepted, rec.Code)

	run := waitForRun(t, runs)
	assert.False(t, run.target.Known())
	lat, lng, zoom := run.target.LatLngZoom()
	assert.Equal(t, -6.9, lat)
	assert.Equal(t, 107.6, lng)
	assert.Equal(t, 14, zoom)
}

func TestRouter_Scrape_BadRequests(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "malformed json", body: `{`},
		{name: "missing category", body: `{"location_id":"loc-1"}`},
		{name: "missing target", body: `{"category_id":"cat-1"}`},
		{name: "lat without lng", body: `{"lat":-6.9,"category_id":"cat-1"}`},
		{name: "unknown category", body: `{"location_id":"loc-1","category_id":"nope"}`},
	}

	r, runs := newTestRouter(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postScrape(t, r, tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
	select {
	case <-runs:
		t.Fatal("rejected request must not trigger a run")
	default:
	}
}
