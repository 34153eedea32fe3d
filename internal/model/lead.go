package model

import "time"

// LeadStatus tracks where a lead sits in the outreach funnel.
type LeadStatus string

const (
	LeadStatusNew       LeadStatus = "new"
	LeadStatusContacted LeadStatus = "contacted"
	LeadStatusQualified LeadStatus = "qualified"
	LeadStatusRejected  LeadStatus = "rejected"
)

// Lead is one persisted business listing. The (BusinessName, LocationID,
// CategoryID) triple identifies a lead; the store enforces uniqueness on it.
type Lead struct {
	ID           string     `json:"id"`
	BusinessName string     `json:"business_name"`
	Address      string     `json:"address,omitempty"`
	Phone        string     `json:"phone,omitempty"`
	Rating       string     `json:"rating,omitempty"`
	ReviewCount  int        `json:"review_count"`
	ExternalURL  string     `json:"external_url,omitempty"`
	LocationID   *string    `json:"location_id,omitempty"`
	CategoryID   string     `json:"category_id"`
	Status       LeadStatus `json:"status"`
	IsNewListing bool       `json:"is_new_listing"`
	City         string     `json:"city,omitempty"`
	District     string     `json:"district,omitempty"`
	State        string     `json:"state,omitempty"`
	PostalCode   string     `json:"postal_code,omitempty"`
	Country      string     `json:"country"`
	CreatedAt    time.Time  `json:"created_at"`
}
