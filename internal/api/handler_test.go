package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/celestiatrack/skyfeed/internal/astro"
	"github.com/celestiatrack/skyfeed/internal/feed"
	"github.com/celestiatrack/skyfeed/internal/logging"
	"github.com/celestiatrack/skyfeed/internal/model"
	"github.com/celestiatrack/skyfeed/internal/providers"
)

var testObserver = astro.Observer{LatDeg: 51.5, LonDeg: -0.13}

type stubFeed struct {
	events  []model.Event
	err     error
	lastObs astro.Observer
}

func (s *stubFeed) Feed(_ context.Context, obs astro.Observer) ([]model.Event, error) {
	s.lastObs = obs
	return s.events, s.err
}

type stubAurora struct {
	reading *model.AuroraReading
	err     error
}

func (s *stubAurora) Current(context.Context) (*model.AuroraReading, error) {
	return s.reading, s.err
}

type stubSky struct {
	phase    *providers.MoonPhaseAttrs
	eclipses []map[string]any
	err      error
}

func (s *stubSky) MoonPhase(context.Context, string, astro.Observer) (*providers.MoonPhaseAttrs, error) {
	return s.phase, s.err
}

func (s *stubSky) SolarEclipses(context.Context) ([]map[string]any, error) {
	return s.eclipses, s.err
}

type stubCatalog struct {
	bodies []model.CatalogBody
	err    error
}

func (s *stubCatalog) Bodies(context.Context) ([]model.CatalogBody, error) {
	return s.bodies, s.err
}

type stubVisibility struct {
	at time.Time
	ok bool
}

func (s *stubVisibility) NextRise(context.Context, string, astro.Observer) (time.Time, bool) {
	return s.at, s.ok
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rec.Body).Decode(&v); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return v
}

func syntheticEvents(n int) []model.Event {
	events := make([]model.Event, n)
	for i := range events {
		events[i] = model.Event{
			Body: fmt.Sprintf("body-%02d", i),
			Peak: fmt.Sprintf("2026-01-%02dT00:00:00Z", i%27+1),
		}
	}
	return events
}

func TestHandler_Events(t *testing.T) {
	src := &stubFeed{events: syntheticEvents(25)}
	h := NewHandler(src, testObserver, logging.Discard())

	rec := get(t, h, "/api/events")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	resp := decode[EventsResponse](t, rec)
	if len(resp.Events) != 20 || !resp.HasMore || resp.Error {
		t.Errorf("resp = %d events, has_more=%v, error=%v", len(resp.Events), resp.HasMore, resp.Error)
	}
	if src.lastObs != testObserver {
		t.Errorf("observer = %+v", src.lastObs)
	}
}

func TestHandler_Events_Pagination(t *testing.T) {
	src := &stubFeed{events: syntheticEvents(50)}
	h := NewHandler(src, testObserver, logging.Discard())

	rec := get(t, h, "/api/events?offset=30&limit=10")
	resp := decode[EventsResponse](t, rec)
	if len(resp.Events) != 10 || !resp.HasMore {
		t.Errorf("resp = %d events, has_more=%v", len(resp.Events), resp.HasMore)
	}
	if resp.Events[0].Body != "body-30" {
		t.Errorf("first = %q", resp.Events[0].Body)
	}
}

func TestHandler_Events_LocationOverride(t *testing.T) {
	src := &stubFeed{}
	h := NewHandler(src, testObserver, logging.Discard())

	get(t, h, "/api/events?lat=-33.86&lon=151.2")
	if src.lastObs.LatDeg != -33.86 || src.lastObs.LonDeg != 151.2 {
		t.Errorf("observer = %+v", src.lastObs)
	}

	// Out-of-range values fall back to the default location.
	get(t, h, "/api/events?lat=123&lon=999")
	if src.lastObs != testObserver {
		t.Errorf("observer = %+v, want default", src.lastObs)
	}
}

func TestHandler_Events_AggregateError(t *testing.T) {
	src := &stubFeed{err: &feed.AggregateError{Failures: 10}}
	h := NewHandler(src, testObserver, logging.Discard())

	rec := get(t, h, "/api/events")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rec.Code)
	}
	resp := decode[EventsResponse](t, rec)
	if !resp.Error || len(resp.Events) != 0 || resp.HasMore {
		t.Errorf("resp = %+v", resp)
	}
}

func TestHandler_Aurora(t *testing.T) {
	h := NewHandler(&stubFeed{}, testObserver, logging.Discard()).
		WithAurora(&stubAurora{reading: &model.AuroraReading{
			KpIndex: 6.67,
			Status:  providers.KpStatusStorm,
			Color:   providers.KpColorDanger,
		}})

	rec := get(t, h, "/api/aurora")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	reading := decode[model.AuroraReading](t, rec)
	if reading.KpIndex != 6.67 || reading.Status != providers.KpStatusStorm {
		t.Errorf("reading = %+v", reading)
	}
}

func TestHandler_Aurora_UpstreamFailure(t *testing.T) {
	h := NewHandler(&stubFeed{}, testObserver, logging.Discard()).
		WithAurora(&stubAurora{err: fmt.Errorf("noaa down")})

	rec := get(t, h, "/api/aurora")
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d", rec.Code)
	}
	resp := decode[map[string]bool](t, rec)
	if !resp["error"] {
		t.Errorf("resp = %v", resp)
	}
}

func TestHandler_MoonPhase(t *testing.T) {
	h := NewHandler(&stubFeed{}, testObserver, logging.Discard()).
		WithSky(&stubSky{phase: &providers.MoonPhaseAttrs{
			IlluminatedFraction: 0.73,
			Phase:               "Waxing Gibbous",
			AgeDays:             10.2,
		}})

	rec := get(t, h, "/api/moonphase")
	resp := decode[MoonPhaseResponse](t, rec)
	if resp.Phase != "Waxing Gibbous" || resp.IlluminatedFraction != 0.73 {
		t.Errorf("resp = %+v", resp)
	}
}

func TestHandler_Eclipses_Capped(t *testing.T) {
	eclipses := make([]map[string]any, 8)
	for i := range eclipses {
		eclipses[i] = map[string]any{"date": fmt.Sprintf("2026-0%d-01", i%9+1)}
	}
	h := NewHandler(&stubFeed{}, testObserver, logging.Discard()).
		WithSky(&stubSky{eclipses: eclipses})

	rec := get(t, h, "/api/eclipses")
	resp := decode[map[string][]map[string]any](t, rec)
	if len(resp["eclipses"]) != maxEclipses {
		t.Errorf("got %d eclipses, want %d", len(resp["eclipses"]), maxEclipses)
	}
}

func TestHandler_Bodies(t *testing.T) {
	h := NewHandler(&stubFeed{}, testObserver, logging.Discard()).
		WithCatalog(&stubCatalog{bodies: []model.CatalogBody{
			{ID: "mars", Name: "Mars", IsPlanet: true},
		}})

	rec := get(t, h, "/api/bodies")
	resp := decode[map[string][]model.CatalogBody](t, rec)
	if len(resp["bodies"]) != 1 || resp["bodies"][0].Name != "Mars" {
		t.Errorf("resp = %+v", resp)
	}
}

func TestHandler_Visibility(t *testing.T) {
	rise := time.Date(2026, 1, 2, 6, 40, 0, 0, time.UTC)
	h := NewHandler(&stubFeed{}, testObserver, logging.Discard()).
		WithVisibility(&stubVisibility{at: rise, ok: true})

	rec := get(t, h, "/api/visibility?body=moon")
	resp := decode[VisibilityResponse](t, rec)
	if !resp.Computable || resp.NextRise != "2026-01-02T06:40:00Z" {
		t.Errorf("resp = %+v", resp)
	}

	rec = get(t, h, "/api/visibility")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing body: status = %d", rec.Code)
	}
}

func TestHandler_Visibility_NotComputable(t *testing.T) {
	h := NewHandler(&stubFeed{}, testObserver, logging.Discard()).
		WithVisibility(&stubVisibility{})

	rec := get(t, h, "/api/visibility?body=jupiter")
	resp := decode[VisibilityResponse](t, rec)
	if resp.Computable || resp.NextRise != "" {
		t.Errorf("resp = %+v", resp)
	}
}

func TestHandler_HealthAndRouting(t *testing.T) {
	h := NewHandler(&stubFeed{}, testObserver, logging.Discard())

	if rec := get(t, h, "/health"); rec.Code != http.StatusOK {
		t.Errorf("/health status = %d", rec.Code)
	}
	if rec := get(t, h, "/nope"); rec.Code != http.StatusNotFound {
		t.Errorf("unknown path status = %d", rec.Code)
	}
	// Endpoints without a configured source are absent.
	if rec := get(t, h, "/api/aurora"); rec.Code != http.StatusNotFound {
		t.Errorf("unconfigured aurora status = %d", rec.Code)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/events", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("POST status = %d", rec.Code)
	}
}
