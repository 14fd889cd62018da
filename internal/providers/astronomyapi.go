package providers

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/celestiatrack/skyfeed/internal/astro"
)

// DefaultAstronomyBaseURL is the celestial-body-events provider endpoint.
const DefaultAstronomyBaseURL = "https://api.astronomyapi.com/api/v2"

// ErrNoCredentials is returned when a provider requires credentials and
// none are configured. An unauthenticated request is never sent.
var ErrNoCredentials = errors.New("provider credentials are not configured")

// AstronomyClient queries the celestial-body-events provider. It is the
// primary event source: the aggregator escalates when every roster query
// against it fails.
type AstronomyClient struct {
	httpBase
	appID     string
	appSecret string
}

// NewAstronomyClient creates a client with Basic-auth credentials.
func NewAstronomyClient(appID, appSecret string, opts ...Option) *AstronomyClient {
	return &AstronomyClient{
		httpBase:  newBase(DefaultAstronomyBaseURL, opts...),
		appID:     appID,
		appSecret: appSecret,
	}
}

// BodyEventRow is one provider-native row. A single row can nest several
// sub-events, each with its own peak; Event construction therefore happens
// at the aggregator, not here.
type BodyEventRow struct {
	Body    BodyRef     `json:"body"`
	Events  []BodyEvent `json:"events"`
	Rise    *string     `json:"rise"`
	Set     *string     `json:"set"`
	Transit *string     `json:"transit"`
}

// BodyRef names the celestial body a row belongs to.
type BodyRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// BodyEvent is one sub-event within a row.
type BodyEvent struct {
	Type            string           `json:"type"`
	Rise            *string          `json:"rise"`
	Set             *string          `json:"set"`
	EventHighlights *EventHighlights `json:"eventHighlights"`
	ExtraInfo       *ExtraInfo       `json:"extraInfo"`
}

// EventHighlights nests the sub-event's peak instant.
type EventHighlights struct {
	Peak *DatedMoment `json:"peak"`
}

// DatedMoment wraps a provider timestamp.
type DatedMoment struct {
	Date string `json:"date"`
}

// ExtraInfo carries optional eclipse detail.
type ExtraInfo struct {
	Obscuration *float64 `json:"obscuration"`
}

// PeakDate returns the sub-event's peak timestamp, tolerating absent
// nesting at every level.
func (e BodyEvent) PeakDate() string {
	if e.EventHighlights == nil || e.EventHighlights.Peak == nil {
		return ""
	}
	return e.EventHighlights.Peak.Date
}

type bodyEventsResponse struct {
	Data struct {
		Rows []BodyEventRow `json:"rows"`
	} `json:"data"`
}

// BodyEvents fetches event rows for one body. Zero from/to times select the
// default window. A 404 means the body has no events and yields an empty
// result; any other failure surfaces as an error so the caller can tell
// "no data" from "source is broken".
func (c *AstronomyClient) BodyEvents(ctx context.Context, body string, obs astro.Observer, from, to time.Time) ([]BodyEventRow, error) {
	if c.appID == "" || c.appSecret == "" {
		return nil, fmt.Errorf("astronomy events: %w", ErrNoCredentials)
	}

	from, to = defaultWindow(from, to)

	params := url.Values{}
	params.Set("latitude", fmt.Sprintf("%.4f", obs.LatDeg))
	params.Set("longitude", fmt.Sprintf("%.4f", obs.LonDeg))
	params.Set("elevation", fmt.Sprintf("%.0f", obs.ElevM))
	params.Set("from_date", dateOnly(from))
	params.Set("to_date", dateOnly(to))
	params.Set("time", "00:00:00")
	params.Set("output", "rows")

	reqURL := c.baseURL + "/bodies/events/" + url.PathEscape(body) + "?" + params.Encode()

	var resp bodyEventsResponse
	err := c.getJSON(ctx, "astronomy events", reqURL, basicAuthHeader(c.appID, c.appSecret), &resp)
	switch {
	case err == nil:
		return resp.Data.Rows, nil
	case IsNotFound(err):
		// The body legitimately has nothing for this query.
		return nil, nil
	default:
		// Everything else counts against the aggregator's failure tally:
		// this is the primary source, so the caller needs the signal.
		return nil, err
	}
}
