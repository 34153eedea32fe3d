package model

import "time"

// Location is a canonical geographic area leads are anchored to. Slug is the
// unique lookup key derived from Name.
type Location struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	Country   string    `json:"country"`
	State     *string   `json:"state,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Category is a business vertical to search for, e.g. "Coffee Shops" with
// search term "coffee shop".
type Category struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	SearchTerm string `json:"search_term"`
}
