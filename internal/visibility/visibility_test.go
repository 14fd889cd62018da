package visibility

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/celestiatrack/skyfeed/internal/astro"
	"github.com/celestiatrack/skyfeed/internal/providers"
)

var testObserver = astro.Observer{LatDeg: 51.5, LonDeg: -0.13}

func strptr(s string) *string { return &s }

type stubRiseSet struct {
	rows    []providers.RiseSetRow
	err     error
	enabled bool
	calls   int
}

func (s *stubRiseSet) RiseSet(context.Context, string, astro.Observer, time.Time, time.Time) ([]providers.RiseSetRow, error) {
	s.calls++
	return s.rows, s.err
}

func (s *stubRiseSet) Enabled() bool { return s.enabled }

func fixedClock(s string) func() time.Time {
	at, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return func() time.Time { return at }
}

func TestNextRise_MoonFromProvider(t *testing.T) {
	src := &stubRiseSet{enabled: true, rows: []providers.RiseSetRow{
		{Date: "2026-01-01", Body: "moon", Rise: strptr("2026-01-01T06:00:00Z")},
		{Date: "2026-01-02", Body: "moon", Rise: strptr("2026-01-02T06:40:00Z")},
	}}
	c := NewCalculator(src, WithClock(fixedClock("2026-01-01T12:00:00Z")))

	at, ok := c.NextRise(context.Background(), "moon", testObserver)
	if !ok {
		t.Fatal("expected a rise time")
	}
	// The first row is already in the past, the second row wins.
	want := time.Date(2026, 1, 2, 6, 40, 0, 0, time.UTC)
	if !at.Equal(want) {
		t.Errorf("rise = %v, want %v", at, want)
	}
	if src.calls != 1 {
		t.Errorf("provider calls = %d, want 1", src.calls)
	}
}

func TestNextRise_SkipsNilAndUnparseableRises(t *testing.T) {
	src := &stubRiseSet{enabled: true, rows: []providers.RiseSetRow{
		{Date: "2026-01-01", Body: "moon"},
		{Date: "2026-01-02", Body: "moon", Rise: strptr("not-a-date")},
		{Date: "2026-01-03", Body: "moon", Rise: strptr("2026-01-03T07:20:00Z")},
	}}
	c := NewCalculator(src, WithClock(fixedClock("2026-01-01T00:00:00Z")))

	at, ok := c.NextRise(context.Background(), "moon", testObserver)
	if !ok {
		t.Fatal("expected a rise time")
	}
	want := time.Date(2026, 1, 3, 7, 20, 0, 0, time.UTC)
	if !at.Equal(want) {
		t.Errorf("rise = %v, want %v", at, want)
	}
}

func TestNextRise_SunFallsBackToLocalEphemeris(t *testing.T) {
	// Provider disabled: a mid-latitude observer still gets a sunrise
	// from the local solar ephemeris.
	c := NewCalculator(&stubRiseSet{enabled: false}, WithClock(fixedClock("2026-03-20T00:00:00Z")))

	at, ok := c.NextRise(context.Background(), "sun", testObserver)
	if !ok {
		t.Fatal("expected a fallback sunrise")
	}
	if !at.After(time.Date(2026, 3, 20, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("sunrise %v not in the future", at)
	}
	if at.Sub(time.Date(2026, 3, 20, 0, 0, 0, 0, time.UTC)) > fallbackScanWindow {
		t.Errorf("sunrise %v outside scan window", at)
	}
}

func TestNextRise_SunProviderErrorFallsBack(t *testing.T) {
	src := &stubRiseSet{enabled: true, err: fmt.Errorf("upstream down")}
	c := NewCalculator(src, WithClock(fixedClock("2026-06-10T00:00:00Z")))

	at, ok := c.NextRise(context.Background(), "sun", testObserver)
	if !ok {
		t.Fatal("expected fallback sunrise despite provider error")
	}
	if !at.After(time.Date(2026, 6, 10, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("sunrise %v not in the future", at)
	}
}

func TestNextRise_MoonWithoutProvider(t *testing.T) {
	c := NewCalculator(&stubRiseSet{enabled: false})
	if _, ok := c.NextRise(context.Background(), "moon", testObserver); ok {
		t.Error("moon has no local fallback")
	}
}

func TestNextRise_UnsupportedBody(t *testing.T) {
	src := &stubRiseSet{enabled: true}
	c := NewCalculator(src)

	if _, ok := c.NextRise(context.Background(), "jupiter", testObserver); ok {
		t.Error("unsupported body must report not-computable")
	}
	if src.calls != 0 {
		t.Errorf("provider calls = %d, want 0", src.calls)
	}
}
