package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"time"

	"github.com/celestiatrack/skyfeed/internal/astro"
)

// DefaultRadiantDriftBaseURL is the rise/transit/set and eclipse provider
// endpoint.
const DefaultRadiantDriftBaseURL = "https://api.radiantdrift.com/v1"

// riseSetBodies are the only bodies the rise/transit/set endpoint supports.
var riseSetBodies = map[string]bool{"sun": true, "moon": true}

// positionBodies are the only bodies the position endpoint supports.
var positionBodies = map[string]bool{"sun": true, "moon": true, "galactic-center": true}

// RadiantDriftClient queries the rise/transit/set, body-position, and solar
// eclipse endpoints. The provider is optional: without an API key every
// method returns an empty result and never sends an unauthenticated request.
type RadiantDriftClient struct {
	httpBase
	apiKey string
}

// NewRadiantDriftClient creates a client. An empty apiKey disables it.
func NewRadiantDriftClient(apiKey string, opts ...Option) *RadiantDriftClient {
	return &RadiantDriftClient{
		httpBase: newBase(DefaultRadiantDriftBaseURL, opts...),
		apiKey:   apiKey,
	}
}

// Enabled reports whether credentials are configured.
func (c *RadiantDriftClient) Enabled() bool {
	return c.apiKey != ""
}

func (c *RadiantDriftClient) authHeader() http.Header {
	h := http.Header{}
	h.Set("Authorization", "RadiantDriftAuth "+c.apiKey)
	return h
}

// RiseSetRow is one calendar day's rise/transit/set record for a body,
// carrying a single synthetic "rise-set" sub-event whose peak equals the
// transit time.
type RiseSetRow struct {
	Date    string        `json:"date"`
	Body    string        `json:"body"`
	Rise    *string       `json:"rise"`
	Transit *string       `json:"transit"`
	Set     *string       `json:"set"`
	Events  []RiseSetItem `json:"events"`
}

// RiseSetItem is the synthetic sub-event attached to a rise/set row.
type RiseSetItem struct {
	Type string  `json:"type"`
	Peak *string `json:"peak"`
}

// riseSetResponse is keyed by ISO date, then by body name. Each moment
// nests its UTC timestamp one level down.
type riseSetResponse struct {
	Response map[string]map[string]struct {
		Rise    *utcMoment `json:"rise"`
		Transit *utcMoment `json:"transit"`
		Set     *utcMoment `json:"set"`
	} `json:"response"`
}

type utcMoment struct {
	UTC string `json:"utc"`
}

func (m *utcMoment) value() *string {
	if m == nil || m.UTC == "" {
		return nil
	}
	s := m.UTC
	return &s
}

// RiseSet fetches per-date rise/transit/set rows for sun or moon. Other
// bodies yield an empty result immediately, without a network call. Rows
// come back sorted by date.
func (c *RadiantDriftClient) RiseSet(ctx context.Context, body string, obs astro.Observer, from, to time.Time) ([]RiseSetRow, error) {
	if !riseSetBodies[body] {
		return nil, nil
	}
	if !c.Enabled() {
		return nil, nil
	}

	if from.IsZero() {
		from = time.Now().UTC()
	}
	if to.IsZero() {
		to = from.AddDate(0, 0, 30)
	}

	params := url.Values{}
	params.Set("lat", fmt.Sprintf("%.4f", obs.LatDeg))
	params.Set("lng", fmt.Sprintf("%.4f", obs.LonDeg))
	params.Set("body", body)

	reqURL := c.baseURL + "/rise-set/" + dateOnly(from) + "/" + dateOnly(to) + "?" + params.Encode()

	var resp riseSetResponse
	err := c.getJSON(ctx, "radiantdrift rise-set", reqURL, c.authHeader(), &resp)
	switch {
	case err == nil:
	case IsNotFound(err):
		return nil, nil
	case IsForbidden(err):
		return nil, err
	default:
		var se *StatusError
		if errors.As(err, &se) {
			c.log.Warn("rise-set %s: status %d, skipping", body, se.Code)
			return nil, nil
		}
		return nil, err
	}

	dates := make([]string, 0, len(resp.Response))
	for d := range resp.Response {
		dates = append(dates, d)
	}
	sort.Strings(dates)

	rows := make([]RiseSetRow, 0, len(dates))
	for _, d := range dates {
		perBody, ok := resp.Response[d][body]
		if !ok {
			continue
		}
		row := RiseSetRow{
			Date:    d,
			Body:    body,
			Rise:    perBody.Rise.value(),
			Transit: perBody.Transit.value(),
			Set:     perBody.Set.value(),
		}
		row.Events = []RiseSetItem{{Type: "rise-set", Peak: row.Transit}}
		rows = append(rows, row)
	}
	return rows, nil
}

// BodyPosition fetches positional attributes for sun, moon, or the galactic
// center at an instant. Unsupported bodies yield nil without a network call.
func (c *RadiantDriftClient) BodyPosition(ctx context.Context, body, instant string, obs astro.Observer) (map[string]any, error) {
	if !positionBodies[body] {
		return nil, nil
	}
	if !c.Enabled() {
		return nil, nil
	}

	params := url.Values{}
	params.Set("lat", fmt.Sprintf("%.4f", obs.LatDeg))
	params.Set("lng", fmt.Sprintf("%.4f", obs.LonDeg))
	params.Set("body", body)

	reqURL := c.baseURL + "/positions/" + url.PathEscape(instant) + "?" + params.Encode()

	var resp struct {
		Response map[string]map[string]map[string]any `json:"response"`
	}
	err := c.getJSON(ctx, "radiantdrift positions", reqURL, c.authHeader(), &resp)
	switch {
	case err == nil:
	case IsNotFound(err):
		return nil, nil
	case IsForbidden(err):
		return nil, err
	default:
		var se *StatusError
		if errors.As(err, &se) {
			c.log.Warn("positions %s: status %d, skipping", body, se.Code)
			return nil, nil
		}
		return nil, err
	}

	// The instant key in the response may be normalized by the provider, so
	// take the first (and in practice only) entry rather than matching the
	// request string exactly.
	for _, perBody := range resp.Response {
		if attrs, ok := perBody[body]; ok {
			return attrs, nil
		}
	}
	return nil, nil
}

// MoonPhase derives the moon's illuminated fraction, phase name, and age
// from a position query. Returns nil when the position is unavailable.
func (c *RadiantDriftClient) MoonPhase(ctx context.Context, instant string, obs astro.Observer) (*MoonPhaseAttrs, error) {
	attrs, err := c.BodyPosition(ctx, "moon", instant, obs)
	if err != nil {
		return nil, err
	}
	if attrs == nil {
		return nil, nil
	}

	mp := &MoonPhaseAttrs{}
	if v, ok := attrs["illuminatedFraction"].(float64); ok {
		mp.IlluminatedFraction = v
	}
	if v, ok := attrs["phase"].(string); ok {
		mp.Phase = v
	}
	if v, ok := attrs["age"].(float64); ok {
		mp.AgeDays = v
	}
	return mp, nil
}

// MoonPhaseAttrs is the subset of position attributes describing the moon's
// appearance.
type MoonPhaseAttrs struct {
	IlluminatedFraction float64
	Phase               string
	AgeDays             float64
}

// SolarEclipses fetches the raw eclipse payload. The provider has shipped
// both a bare array and an object wrapping one, so both shapes decode; the
// caller is responsible for taking at most the next few entries.
func (c *RadiantDriftClient) SolarEclipses(ctx context.Context) ([]map[string]any, error) {
	if !c.Enabled() {
		return nil, nil
	}

	reqURL := c.baseURL + "/eclipses/solar"

	var raw json.RawMessage
	err := c.getJSON(ctx, "radiantdrift eclipses", reqURL, c.authHeader(), &raw)
	switch {
	case err == nil:
	case IsNotFound(err):
		return nil, nil
	case IsForbidden(err):
		return nil, err
	default:
		var se *StatusError
		if errors.As(err, &se) {
			c.log.Warn("eclipses: status %d, skipping", se.Code)
			return nil, nil
		}
		return nil, err
	}

	var list []map[string]any
	if json.Unmarshal(raw, &list) == nil {
		return list, nil
	}

	var wrapped map[string]json.RawMessage
	if json.Unmarshal(raw, &wrapped) == nil {
		for _, key := range []string{"events", "response", "data"} {
			if inner, ok := wrapped[key]; ok {
				if json.Unmarshal(inner, &list) == nil {
					return list, nil
				}
			}
		}
	}

	c.log.Warn("eclipses: unrecognized payload shape, skipping")
	return nil, nil
}
