package model

import "fmt"

// SearchTarget is where a scrape run is pointed: either a known location
// already in the store, or raw map coordinates whose area is inferred from
// the results afterwards. The zero value is an empty coordinate target.
type SearchTarget struct {
	known      bool
	locationID string

	lat  float64
	lng  float64
	zoom int
}

// KnownLocation targets a stored location by id.
func KnownLocation(id string) SearchTarget {
	return SearchTarget{known: true, locationID: id}
}

// Coordinates targets a map viewport.
func Coordinates(lat, lng float64, zoom int) SearchTarget {
	return SearchTarget{lat: lat, lng: lng, zoom: zoom}
}

// Known reports whether the target references a stored location.
func (t SearchTarget) Known() bool { return t.known }

// LocationID returns the stored location id when the target is known.
func (t SearchTarget) LocationID() (string, bool) {
	return t.locationID, t.known
}

// LatLngZoom returns the viewport of a coordinate target.
func (t SearchTarget) LatLngZoom() (lat, lng float64, zoom int) {
	return t.lat, t.lng, t.zoom
}

// String renders the target for logs.
func (t SearchTarget) String() string {
	if t.known {
		return "location:" + t.locationID
	}
	return fmt.Sprintf("coords:%.5f,%.5f@%d", t.lat, t.lng, t.zoom)
}
