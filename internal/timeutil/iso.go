// Package timeutil normalizes the loosely-formatted timestamp strings the
// upstream providers emit.
package timeutil

import (
	"strings"
	"time"
)

// iso8601Layouts are tried in order. Providers disagree on fractional
// seconds, offsets, and whether a time component is present at all.
var iso8601Layouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseISO parses an ISO-8601-ish timestamp into an offset-aware instant.
// A trailing "Z" is treated as "+00:00", and a timestamp without any offset
// is assumed to be UTC. Empty or unparseable input yields ok=false, never an
// error: callers treat a false result as "sorts last".
func ParseISO(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}

	if strings.HasSuffix(s, "Z") || strings.HasSuffix(s, "z") {
		s = s[:len(s)-1] + "+00:00"
	}

	for _, layout := range iso8601Layouts {
		t, err := time.Parse(layout, s)
		if err != nil {
			continue
		}
		// Layouts without an offset parse into UTC already; make the
		// assumption explicit for the ones that carry a zero offset.
		return t.UTC(), true
	}

	return time.Time{}, false
}
