package collector

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adigiz/leadgen/internal/model"
)

const feedPage = `<html><body>
<div role="feed">
  <div role="article" aria-label="Kopi Tuku">
    <a href="https://maps.example.com/place/kopi-tuku"></a>
    <span class="MW4etd">4.6</span>
    <span class="UY7F9">(3)</span>
    <div class="W4Efsd">Coffee shop · Jl. Braga No.99, Bandung</div>
    <div class="W4Efsd">Open · +62 812-3456-7890</div>
  </div>
  <div role="article" aria-label="Toko Roti Maju">
    <a href="https://maps.example.com/place/toko-roti"></a>
    <div class="W4Efsd">Bakery</div>
  </div>
</div>
</body></html>`

const emptyFeedPage = `<html><body><div role="feed"></div></body></html>`

func TestParseFeed(t *testing.T) {
	records, err := ParseFeed(strings.NewReader(feedPage))
	require.NoError(t, err)
	require.Len(t, records, 2)

	first := records[0]
	assert.Equal(t, "Kopi Tuku", first.BusinessName)
	assert.Equal(t, "4.6", first.Rating)
	assert.Equal(t, "(3)", first.ReviewCountText)
	assert.Equal(t, "https://maps.example.com/place/kopi-tuku", first.ExternalURL)
	require.NotNil(t, first.Address)
	assert.Equal(t, "Jl. Braga No.99, Bandung", *first.Address)
	assert.Equal(t, "+62 812-3456-7890", first.Phone)

	second := records[1]
	assert.Equal(t, "Toko Roti Maju", second.BusinessName)
	assert.Empty(t, second.Rating)
	assert.Empty(t, second.ReviewCountText)
	assert.Nil(t, second.Address)
	assert.Empty(t, second.Phone)
}

func TestParseFeed_NoCards(t *testing.T) {
	records, err := ParseFeed(strings.NewReader(emptyFeedPage))
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestAddressFromRow(t *testing.T) {
	tests := []struct {
		row  string
		want string
	}{
		{"Coffee shop · Jl. Braga No.99, Bandung", "Jl. Braga No.99, Bandung"},
		{"Restaurant · Jalan Merdeka 5", "Jalan Merdeka 5"},
		{"Kec. Coblong, Kota Bandung", "Kec. Coblong, Kota Bandung"},
		{"Open 24 hours", ""},
		{"Open · +62 812-3456-7890", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, addressFromRow(tt.row), "row %q", tt.row)
	}
}

func TestExtract_PaginatesUntilEmptyPage(t *testing.T) {
	var requests []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests = append(requests, r.URL.RawQuery)
		if r.URL.Query().Get("page") == "0" {
			fmt.Fprint(w, feedPage)
			return
		}
		fmt.Fprint(w, emptyFeedPage)
	}))
	defer srv.Close()

	c := NewFeedClient(Config{
		BaseURL:           srv.URL,
		TimeoutSecs:       5,
		RequestsPerSecond: 1000,
		MaxPages:          5,
	})

	records, err := c.Extract(context.Background(),
		model.Coordinates(-6.91474, 107.60981, 14), "coffee shop")
	require.NoError(t, err)
	assert.Len(t, records, 2)

	// One full page plus the empty page that stopped the loop.
	require.Len(t, requests, 2)
	assert.Contains(t, requests[0], "q=coffee+shop")
	assert.Contains(t, requests[0], "page=0")
	assert.Contains(t, requests[0], "z=14")
	assert.Contains(t, requests[1], "page=1")
}

func TestExtract_KnownLocationOmitsViewport(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.URL.Query().Get("ll"))
		assert.Empty(t, r.URL.Query().Get("z"))
		fmt.Fprint(w, emptyFeedPage)
	}))
	defer srv.Close()

	c := NewFeedClient(Config{BaseURL: srv.URL, RequestsPerSecond: 1000})
	records, err := c.Extract(context.Background(),
		model.KnownLocation("loc-1"), "coffee shop bandung")
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestExtract_RetriesTransientRendererErrors(t *testing.T) {
	var attempts int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			http.Error(w, "warming up", http.StatusBadGateway)
			return
		}
		fmt.Fprint(w, emptyFeedPage)
	}))
	defer srv.Close()

	c := NewFeedClient(Config{BaseURL: srv.URL, RequestsPerSecond: 1000})
	c.retry = retryPolicy{attempts: 3, initialBackoff: time.Millisecond, maxBackoff: time.Millisecond, multiplier: 1}

	_, err := c.Extract(context.Background(), model.KnownLocation("loc-1"), "coffee shop")
	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestExtract_DoesNotRetryClientErrors(t *testing.T) {
	var attempts int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		http.Error(w, "bad query", http.StatusBadRequest)
	}))
	defer srv.Close()

	c := NewFeedClient(Config{BaseURL: srv.URL, RequestsPerSecond: 1000})
	c.retry = retryPolicy{attempts: 3, initialBackoff: time.Millisecond, maxBackoff: time.Millisecond, multiplier: 1}

	_, err := c.Extract(context.Background(), model.KnownLocation("loc-1"), "coffee shop")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "400")
	assert.Equal(t, 1, attempts)
}
