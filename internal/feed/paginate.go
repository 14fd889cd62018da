package feed

import "github.com/celestiatrack/skyfeed/internal/model"

const (
	// DefaultLimit is the page size used when a request does not set one.
	DefaultLimit = 20
)

// Paginate returns the window of events starting at offset, at most limit
// long, and whether more events remain past the window. Out-of-range
// offsets yield an empty page, never a panic. Negative or zero values fall
// back to the defaults.
func Paginate(events []model.Event, offset, limit int) ([]model.Event, bool) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	if offset >= len(events) {
		return []model.Event{}, false
	}
	end := offset + limit
	if end > len(events) {
		end = len(events)
	}
	return events[offset:end], end < len(events)
}
