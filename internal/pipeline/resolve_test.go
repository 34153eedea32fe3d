package pipeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Bandung", "bandung"},
		{"Bandung Barat", "bandung-barat"},
		{"Jakarta  Selatan!", "jakarta-selatan"},
		{" D.I. Yogyakarta ", "d-i-yogyakarta"},
		{"---", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Slugify(tt.in), "Slugify(%q)", tt.in)
	}
}

func TestResolve_CreatesThenReusesLocation(t *testing.T) {
	ctx := context.Background()
	st := newMockStore()
	r := NewLocationResolver(st, testGazetteer(t))

	first, err := r.Resolve(ctx, "Bandung", "Jawa Barat")
	require.NoError(t, err)
	require.NotNil(t, first)

	second, err := r.Resolve(ctx, "Bandung", "Jawa Barat")
	require.NoError(t, err)
	require.NotNil(t, second)
	assert.Equal(t, *first, *second)

	loc, err := st.FindLocationBySlug(ctx, "bandung")
	require.NoError(t, err)
	require.NotNil(t, loc)
	assert.Equal(t, "Bandung", loc.Name)
	assert.Equal(t, "Indonesia", loc.Country)
	require.NotNil(t, loc.State)
	assert.Equal(t, "Jawa Barat", *loc.State)
}

func TestResolve_EnrichesMissingState(t *testing.T) {
	ctx := context.Background()
	st := newMockStore()
	r := NewLocationResolver(st, testGazetteer(t))

	// First sighting carried no state.
	id, err := r.Resolve(ctx, "Bekasi", "")
	require.NoError(t, err)
	require.NotNil(t, id)

	loc, err := st.FindLocationBySlug(ctx, "bekasi")
	require.NoError(t, err)
	require.Nil(t, loc.State)

	_, err = r.Resolve(ctx, "Bekasi", "Jawa Barat")
	require.NoError(t, err)

	loc, err = st.FindLocationBySlug(ctx, "bekasi")
	require.NoError(t, err)
	require.NotNil(t, loc.State)
	assert.Equal(t, "Jawa Barat", *loc.State)
}

func TestResolve_NeverOverwritesState(t *testing.T) {
	ctx := context.Background()
	st := newMockStore()
	r := NewLocationResolver(st, testGazetteer(t))

	_, err := r.Resolve(ctx, "Bogor", "Jawa Barat")
	require.NoError(t, err)

	_, err = r.Resolve(ctx, "Bogor", "Banten")
	require.NoError(t, err)

	loc, err := st.FindLocationBySlug(ctx, "bogor")
	require.NoError(t, err)
	require.NotNil(t, loc.State)
	assert.Equal(t, "Jawa Barat", *loc.State)
}

func TestResolve_EmptyCityYieldsNoLocation(t *testing.T) {
	st := newMockStore()
	r := NewLocationResolver(st, testGazetteer(t))

	id, err := r.Resolve(context.Background(), "", "Jawa Barat")
	require.NoError(t, err)
	assert.Nil(t, id)
	assert.Empty(t, st.locations)
}
