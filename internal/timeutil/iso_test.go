package timeutil

import (
	"testing"
	"time"
)

func TestParseISO(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string // RFC3339 of the expected UTC instant; "" means ok=false
	}{
		{"trailing z", "2025-11-05T10:00:00Z", "2025-11-05T10:00:00Z"},
		{"explicit utc offset", "2025-11-05T10:00:00+00:00", "2025-11-05T10:00:00Z"},
		{"positive offset", "2025-11-05T10:00:00+02:00", "2025-11-05T08:00:00Z"},
		{"no offset assumes utc", "2025-11-05T10:00:00", "2025-11-05T10:00:00Z"},
		{"minute precision", "2025-01-01T06:00", "2025-01-01T06:00:00Z"},
		{"date only", "2025-01-01", "2025-01-01T00:00:00Z"},
		{"space separator", "2025-12-09 00:00:00", "2025-12-09T00:00:00Z"},
		{"empty", "", ""},
		{"garbage", "not-a-date", ""},
		{"partial garbage", "2025-13-99T99:00:00Z", ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := ParseISO(tc.input)
			if tc.want == "" {
				if ok {
					t.Fatalf("ParseISO(%q) ok = true, want false", tc.input)
				}
				return
			}
			if !ok {
				t.Fatalf("ParseISO(%q) ok = false, want true", tc.input)
			}
			want, err := time.Parse(time.RFC3339, tc.want)
			if err != nil {
				t.Fatalf("bad test case: %v", err)
			}
			if !got.Equal(want) {
				t.Errorf("ParseISO(%q) = %v, want %v", tc.input, got, want)
			}
		})
	}
}

func TestParseISO_ZEquivalentToExplicitOffset(t *testing.T) {
	inputs := []string{
		"2025-11-05T10:00:00",
		"2024-02-29T23:59:59",
		"2030-06-15T00:30:00",
	}
	for _, base := range inputs {
		withZ, okZ := ParseISO(base + "Z")
		withOffset, okO := ParseISO(base + "+00:00")
		if !okZ || !okO {
			t.Fatalf("expected both forms of %q to parse", base)
		}
		if !withZ.Equal(withOffset) {
			t.Errorf("%sZ parsed to %v, +00:00 form to %v", base, withZ, withOffset)
		}
	}
}
