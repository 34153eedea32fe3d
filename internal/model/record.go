package model

// RawBusinessRecord is one listing card as extracted from the rendered
// results feed, before any parsing or classification. Address is nil when
// the card carried no recognizable address row.
type RawBusinessRecord struct {
	BusinessName    string
	Rating          string
	ReviewCountText string
	Address         *string
	Phone           string
	ExternalURL     string
}

// AddressComponents is the structured breakdown of one raw address string.
// Unmatched fields stay empty; Country is always set.
type AddressComponents struct {
	City       string
	District   string
	State      string
	PostalCode string
	Country    string
}

// Classification carries the review-derived signals for one listing.
type Classification struct {
	ReviewCount  int
	IsNewListing bool
}
