package pipeline

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/adigiz/leadgen/internal/model"
)

// reviewCountRe extracts the digit group from a review-count token such as
// "(53)" or "(1,200)".
var reviewCountRe = regexp.MustCompile(`\((\d+(?:,\d+)*)\)`)

const (
	// missingReviewSentinel stands in for an absent or unparseable review
	// count during the new-listing comparison. Unknown counts behave like
	// large ones: they never mark a listing as new.
	missingReviewSentinel = 999

	// newListingMaxReviews is the highest review count still flagged as a
	// newly opened listing.
	newListingMaxReviews = 5
)

// ClassifyListing parses a textual review-count token and derives the
// new-listing flag. The stored count defaults to 0 when the token is missing
// or unparseable, but the comparison uses missingReviewSentinel instead so
// unknown counts are not flagged new.
func ClassifyListing(reviewCountText string) model.Classification {
	count := 0
	cmp := missingReviewSentinel

	if m := reviewCountRe.FindStringSubmatch(reviewCountText); m != nil {
		if n, err := strconv.Atoi(strings.ReplaceAll(m[1], ",", "")); err == nil {
			count = n
			cmp = n
		}
	}

	return model.Classification{
		ReviewCount:  count,
		IsNewListing: cmp <= newListingMaxReviews,
	}
}
