package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyListing(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		wantCount int
		wantNew   bool
	}{
		{name: "missing text is not new", text: "", wantCount: 0, wantNew: false},
		{name: "unparseable text is not new", text: "no reviews yet", wantCount: 0, wantNew: false},
		{name: "low count flags new", text: "(3)", wantCount: 3, wantNew: true},
		{name: "zero count flags new", text: "(0)", wantCount: 0, wantNew: true},
		{name: "boundary count flags new", text: "(5)", wantCount: 5, wantNew: true},
		{name: "above boundary is not new", text: "(6)", wantCount: 6, wantNew: false},
		{name: "high count is not new", text: "(50)", wantCount: 50, wantNew: false},
		{name: "thousands separator stripped", text: "(1,200)", wantCount: 1200, wantNew: false},
		{name: "millions separator stripped", text: "(2,345,678)", wantCount: 2345678, wantNew: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifyListing(tt.text)
			assert.Equal(t, tt.wantCount, got.ReviewCount)
			assert.Equal(t, tt.wantNew, got.IsNewListing)
		})
	}
}
