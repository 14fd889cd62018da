package providers

import (
	"context"
	"errors"
	"net/url"
	"time"

	"github.com/celestiatrack/skyfeed/internal/model"
)

// DefaultMeteorBaseURL is the meteor-shower and fireball provider endpoint.
const DefaultMeteorBaseURL = "https://api.amsmeteors.org/v1"

// MeteorClient queries the meteor API for shower peaks and fireball
// sightings. The provider is optional: no key, no call.
type MeteorClient struct {
	httpBase
	apiKey string
}

// NewMeteorClient creates a client. An empty apiKey disables it.
func NewMeteorClient(apiKey string, opts ...Option) *MeteorClient {
	return &MeteorClient{
		httpBase: newBase(DefaultMeteorBaseURL, opts...),
		apiKey:   apiKey,
	}
}

// Enabled reports whether an API key is configured.
func (c *MeteorClient) Enabled() bool {
	return c.apiKey != ""
}

type meteorResponse struct {
	Status string           `json:"status"`
	Result []map[string]any `json:"result"`
}

// Showers fetches meteor shower rows as Events with body "Meteor Shower".
func (c *MeteorClient) Showers(ctx context.Context, from, to time.Time) ([]model.Event, error) {
	rows, err := c.query(ctx, "/showers", from, to)
	if err != nil || rows == nil {
		return nil, err
	}

	events := make([]model.Event, 0, len(rows))
	for _, row := range rows {
		peak := pickString(row, "peak_date", "peak", "date")
		if peak == "" {
			continue
		}
		events = append(events, model.Event{
			Body: "Meteor Shower",
			Type: "Meteor Shower Peak",
			Peak: peak,
			Highlights: meteorHighlights(row, map[string]any{
				"source": "ams-meteors",
				"name":   pickString(row, "name", "shower_name"),
			}),
		})
	}
	return events, nil
}

// Fireballs fetches fireball sighting rows as Events with body "Fireball".
func (c *MeteorClient) Fireballs(ctx context.Context, from, to time.Time) ([]model.Event, error) {
	rows, err := c.query(ctx, "/fireballs", from, to)
	if err != nil || rows == nil {
		return nil, err
	}

	events := make([]model.Event, 0, len(rows))
	for _, row := range rows {
		peak := pickString(row, "sighting_date", "peak_date", "date")
		if peak == "" {
			continue
		}
		events = append(events, model.Event{
			Body: "Fireball",
			Type: "Fireball Sighting",
			Peak: peak,
			Highlights: meteorHighlights(row, map[string]any{
				"source": "ams-meteors",
			}),
		})
	}
	return events, nil
}

// query runs one meteor API request and returns its raw result rows.
func (c *MeteorClient) query(ctx context.Context, path string, from, to time.Time) ([]map[string]any, error) {
	if !c.Enabled() {
		return nil, nil
	}

	from, to = defaultWindow(from, to)

	params := url.Values{}
	params.Set("api_key", c.apiKey)
	params.Set("start_date", dateOnly(from))
	params.Set("end_date", dateOnly(to))

	reqURL := c.baseURL + path + "?" + params.Encode()

	var resp meteorResponse
	err := c.getJSON(ctx, "meteor api", reqURL, nil, &resp)
	switch {
	case err == nil:
		return resp.Result, nil
	case IsNotFound(err):
		return nil, nil
	case IsForbidden(err):
		return nil, err
	default:
		var se *StatusError
		if errors.As(err, &se) {
			c.log.Warn("meteor api %s: status %d, skipping", path, se.Code)
			return nil, nil
		}
		return nil, err
	}
}

// meteorHighlights merges interesting provider columns into the highlights
// map, dropping empty values.
func meteorHighlights(row map[string]any, base map[string]any) map[string]any {
	for _, key := range []string{"description", "count", "brightness", "magnitude", "trajectory", "velocity", "zhr"} {
		if v, ok := row[key]; ok && v != nil {
			base[key] = v
		}
	}
	for k, v := range base {
		if s, ok := v.(string); ok && s == "" {
			delete(base, k)
		}
	}
	return base
}
