package feed

import (
	"fmt"
	"testing"

	"github.com/celestiatrack/skyfeed/internal/model"
)

func makeEvents(n int) []model.Event {
	events := make([]model.Event, n)
	for i := range events {
		events[i] = model.Event{
			Body: fmt.Sprintf("body-%02d", i),
			Peak: fmt.Sprintf("2026-01-%02dT00:00:00Z", i%27+1),
		}
	}
	return events
}

func TestPaginate(t *testing.T) {
	tests := []struct {
		name          string
		total         int
		offset, limit int
		wantLen       int
		wantMore      bool
		wantFirst     string
	}{
		{"defaults cap at twenty", 25, 0, 0, 20, true, "body-00"},
		{"second page", 25, 20, 20, 5, false, "body-20"},
		{"mid window", 50, 30, 10, 10, true, "body-30"},
		{"exact end", 30, 20, 10, 10, false, "body-20"},
		{"offset past end", 10, 50, 20, 0, false, ""},
		{"negative offset", 5, -3, 20, 5, false, "body-00"},
		{"fewer than limit", 7, 0, 20, 7, false, "body-00"},
		{"empty input", 0, 0, 20, 0, false, ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			page, more := Paginate(makeEvents(tc.total), tc.offset, tc.limit)
			if len(page) != tc.wantLen {
				t.Fatalf("len = %d, want %d", len(page), tc.wantLen)
			}
			if more != tc.wantMore {
				t.Errorf("hasMore = %v, want %v", more, tc.wantMore)
			}
			if tc.wantLen > 0 && page[0].Body != tc.wantFirst {
				t.Errorf("first = %q, want %q", page[0].Body, tc.wantFirst)
			}
		})
	}
}
