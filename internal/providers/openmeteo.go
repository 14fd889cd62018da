package providers

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/celestiatrack/skyfeed/internal/astro"
	"github.com/celestiatrack/skyfeed/internal/model"
)

// DefaultOpenMeteoBaseURL is the twilight provider endpoint.
const DefaultOpenMeteoBaseURL = "https://api.open-meteo.com/v1/forecast"

// twilightDailyVars are the daily series requested from the provider.
const twilightDailyVars = "sunrise,sunset,astronomical_twilight_start,astronomical_twilight_end"

// OpenMeteoClient queries the twilight provider. No credentials required.
type OpenMeteoClient struct {
	httpBase
}

// NewOpenMeteoClient creates a twilight client.
func NewOpenMeteoClient(opts ...Option) *OpenMeteoClient {
	return &OpenMeteoClient{httpBase: newBase(DefaultOpenMeteoBaseURL, opts...)}
}

type openMeteoResponse struct {
	Daily struct {
		Time                      []string `json:"time"`
		Sunrise                   []string `json:"sunrise"`
		Sunset                    []string `json:"sunset"`
		AstronomicalTwilightStart []string `json:"astronomical_twilight_start"`
		AstronomicalTwilightEnd   []string `json:"astronomical_twilight_end"`
	} `json:"daily"`
}

// TwilightEvents fetches astronomical-twilight boundaries over a date range
// and emits up to two already-Event-shaped records per returned day. Zero
// from/to times select today through two weeks ahead; the forecast upstream
// rejects long ranges.
func (c *OpenMeteoClient) TwilightEvents(ctx context.Context, obs astro.Observer, from, to time.Time) ([]model.Event, error) {
	if from.IsZero() {
		from = time.Now().UTC()
	}
	if to.IsZero() {
		to = from.AddDate(0, 0, 14)
	}

	params := url.Values{}
	params.Set("latitude", fmt.Sprintf("%.4f", obs.LatDeg))
	params.Set("longitude", fmt.Sprintf("%.4f", obs.LonDeg))
	params.Set("daily", twilightDailyVars)
	params.Set("start_date", dateOnly(from))
	params.Set("end_date", dateOnly(to))
	params.Set("timezone", "auto")

	reqURL := c.baseURL + "?" + params.Encode()

	var resp openMeteoResponse
	err := c.getJSON(ctx, "open-meteo", reqURL, nil, &resp)
	switch {
	case err == nil:
	case IsNotFound(err):
		return nil, nil
	case IsForbidden(err):
		return nil, err
	default:
		var se *StatusError
		if errors.As(err, &se) {
			c.log.Warn("twilight: status %d, skipping", se.Code)
			return nil, nil
		}
		return nil, err
	}

	var events []model.Event
	for i, date := range resp.Daily.Time {
		sunrise := dailyAt(resp.Daily.Sunrise, i)
		sunset := dailyAt(resp.Daily.Sunset, i)

		if start := dailyAt(resp.Daily.AstronomicalTwilightStart, i); start != "" {
			events = append(events, twilightEvent(date, start, "Astronomical Twilight Start", sunrise, sunset))
		}
		if end := dailyAt(resp.Daily.AstronomicalTwilightEnd, i); end != "" {
			events = append(events, twilightEvent(date, end, "Astronomical Twilight End", sunrise, sunset))
		}
	}
	return events, nil
}

// twilightEvent builds one Event with peak "<date>T<time>".
func twilightEvent(date, moment, eventType, sunrise, sunset string) model.Event {
	highlights := map[string]any{"source": "open-meteo"}
	if sunrise != "" {
		highlights["sunrise"] = sunrise
	}
	if sunset != "" {
		highlights["sunset"] = sunset
	}

	return model.Event{
		Body:       "Sun",
		Type:       eventType,
		Peak:       joinDateTime(date, moment),
		Highlights: highlights,
	}
}

// joinDateTime applies the peak convention. The provider usually returns
// full "<date>T<time>" strings already; bare times are joined to the day.
func joinDateTime(date, moment string) string {
	if strings.Contains(moment, "T") {
		return moment
	}
	return date + "T" + moment
}

// dailyAt indexes a daily series, tolerating ragged arrays.
func dailyAt(series []string, i int) string {
	if i < 0 || i >= len(series) {
		return ""
	}
	return series[i]
}
