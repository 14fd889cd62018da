package feed

import (
	"fmt"
	"io"

	"github.com/celestiatrack/skyfeed/internal/model"
	"github.com/celestiatrack/skyfeed/internal/timeutil"
)

// WriteSummary prints a plain-text table of the first limit events, for
// headless output.
func WriteSummary(w io.Writer, events []model.Event, limit int) {
	if len(events) == 0 {
		fmt.Fprintln(w, "No upcoming events")
		return
	}
	if limit <= 0 || limit > len(events) {
		limit = len(events)
	}

	fmt.Fprintf(w, "%-18s %-12s %s\n", "PEAK", "BODY", "TYPE")
	for _, ev := range events[:limit] {
		peak := ev.Peak
		if at, ok := timeutil.ParseISO(ev.Peak); ok {
			peak = at.Format("2006-01-02 15:04")
		}
		fmt.Fprintf(w, "%-18s %-12s %s\n", peak, ev.Body, ev.Type)
	}
	if limit < len(events) {
		fmt.Fprintf(w, "... %d more\n", len(events)-limit)
	}
}
