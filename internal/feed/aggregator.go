// Package feed merges the provider adapters' outputs into one
// chronologically ordered event feed.
package feed

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/celestiatrack/skyfeed/internal/astro"
	"github.com/celestiatrack/skyfeed/internal/logging"
	"github.com/celestiatrack/skyfeed/internal/metrics"
	"github.com/celestiatrack/skyfeed/internal/model"
	"github.com/celestiatrack/skyfeed/internal/providers"
	"github.com/celestiatrack/skyfeed/internal/timeutil"
)

// BodyRoster is the fixed set of bodies queried against the primary
// celestial-events provider on every aggregation.
var BodyRoster = []string{
	"sun", "moon", "mercury", "venus", "mars",
	"jupiter", "saturn", "uranus", "neptune", "pluto",
}

// BodyEventsSource is the primary event provider.
type BodyEventsSource interface {
	BodyEvents(ctx context.Context, body string, obs astro.Observer, from, to time.Time) ([]providers.BodyEventRow, error)
}

// TwilightSource supplies already-Event-shaped twilight records.
type TwilightSource interface {
	TwilightEvents(ctx context.Context, obs astro.Observer, from, to time.Time) ([]model.Event, error)
}

// MeteorSource supplies meteor shower and fireball events.
type MeteorSource interface {
	Showers(ctx context.Context, from, to time.Time) ([]model.Event, error)
	Fireballs(ctx context.Context, from, to time.Time) ([]model.Event, error)
}

// AggregateError reports that the primary provider produced zero successes
// across the entire roster while failing at least once: the feed could not
// be produced at all.
type AggregateError struct {
	Failures int
	LastErr  error
}

func (e *AggregateError) Error() string {
	return fmt.Sprintf("event feed unavailable: all %d primary provider queries failed", e.Failures)
}

func (e *AggregateError) Unwrap() error {
	return e.LastErr
}

// Aggregator orchestrates the provider adapters for one observer location.
// It holds no mutable state between invocations; every call re-fetches.
type Aggregator struct {
	events   BodyEventsSource
	twilight TwilightSource
	meteors  MeteorSource // nil when no meteor API key is configured
	log      *logging.Logger
	metrics  metrics.Sink
}

// AggregatorOption configures an Aggregator.
type AggregatorOption func(*Aggregator)

// WithMeteorSource enables the optional meteor/fireball providers.
func WithMeteorSource(src MeteorSource) AggregatorOption {
	return func(a *Aggregator) { a.meteors = src }
}

// WithLogger sets the aggregation logger.
func WithLogger(l *logging.Logger) AggregatorOption {
	return func(a *Aggregator) { a.log = l }
}

// WithMetrics sets the metrics sink.
func WithMetrics(s metrics.Sink) AggregatorOption {
	return func(a *Aggregator) { a.metrics = s }
}

// NewAggregator creates an aggregator over the given sources.
func NewAggregator(events BodyEventsSource, twilight TwilightSource, opts ...AggregatorOption) *Aggregator {
	a := &Aggregator{
		events:   events,
		twilight: twilight,
		log:      logging.Discard(),
		metrics:  metrics.Noop{},
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Feed fetches, merges, dedupes, and sorts events for one observer
// location. Providers are invoked sequentially; individual failures degrade
// to partial data except for the one escalation condition: every primary
// roster query failing with nothing returned.
func (a *Aggregator) Feed(ctx context.Context, obs astro.Observer) ([]model.Event, error) {
	start := time.Now()

	var (
		merged    []model.Event
		seen      = map[string]bool{}
		successes int
		failures  int
		lastErr   error
	)

	for _, body := range BodyRoster {
		reqStart := time.Now()
		rows, err := a.events.BodyEvents(ctx, body, obs, time.Time{}, time.Time{})
		if err != nil {
			failures++
			lastErr = err
			a.log.Warn("events %s: %v", body, err)
			a.metrics.ProviderRequest("astronomy-events", metrics.OutcomeError, time.Since(reqStart))
			continue
		}
		if len(rows) > 0 {
			successes++
			a.metrics.ProviderRequest("astronomy-events", metrics.OutcomeOK, time.Since(reqStart))
		} else {
			a.metrics.ProviderRequest("astronomy-events", metrics.OutcomeEmpty, time.Since(reqStart))
		}

		for _, row := range rows {
			ev, ok := eventFromRow(row)
			if !ok {
				continue
			}
			key := ev.Peak + "|" + ev.Body
			if seen[key] {
				continue
			}
			seen[key] = true
			merged = append(merged, ev)
		}
	}

	if successes == 0 && failures > 0 {
		err := &AggregateError{Failures: failures, LastErr: lastErr}
		a.metrics.AggregateCompleted(time.Since(start), 0, err)
		return nil, err
	}

	// Twilight output is already Event-shaped and appended without
	// deduplication: its types never collide with the primary rows.
	merged = append(merged, a.fetchOptional(ctx, "open-meteo", func() ([]model.Event, error) {
		return a.twilight.TwilightEvents(ctx, obs, time.Time{}, time.Time{})
	})...)

	if a.meteors != nil {
		merged = append(merged, a.fetchOptional(ctx, "meteor-showers", func() ([]model.Event, error) {
			return a.meteors.Showers(ctx, time.Time{}, time.Time{})
		})...)
		merged = append(merged, a.fetchOptional(ctx, "fireballs", func() ([]model.Event, error) {
			return a.meteors.Fireballs(ctx, time.Time{}, time.Time{})
		})...)
	}

	SortEvents(merged)

	a.metrics.AggregateCompleted(time.Since(start), len(merged), nil)
	return merged, nil
}

// fetchOptional runs one best-effort provider call, logging and absorbing
// any failure.
func (a *Aggregator) fetchOptional(ctx context.Context, name string, fetch func() ([]model.Event, error)) []model.Event {
	start := time.Now()
	events, err := fetch()
	if err != nil {
		a.log.Warn("%s: %v", name, err)
		a.metrics.ProviderRequest(name, metrics.OutcomeError, time.Since(start))
		return nil
	}
	if len(events) == 0 {
		a.metrics.ProviderRequest(name, metrics.OutcomeEmpty, time.Since(start))
		return nil
	}
	a.metrics.ProviderRequest(name, metrics.OutcomeOK, time.Since(start))
	return events
}

// eventFromRow normalizes one provider row. The row's peak is the earliest
// sub-event peak, falling back to the row transit; rows with neither are
// dropped so no event ever carries a null sort key.
func eventFromRow(row providers.BodyEventRow) (model.Event, bool) {
	peak := earliestPeak(row.Events)
	if peak == "" {
		if row.Transit != nil && *row.Transit != "" {
			peak = *row.Transit
		} else {
			return model.Event{}, false
		}
	}

	ev := model.Event{
		Body:    CanonicalBody(row.Body.Name),
		Peak:    peak,
		Rise:    row.Rise,
		Set:     row.Set,
		Transit: row.Transit,
		Highlights: map[string]any{
			"source":        "astronomy-events",
			"provider_body": row.Body.Name,
		},
	}
	if len(row.Events) > 0 {
		first := row.Events[0]
		ev.Type = first.Type
		if first.ExtraInfo != nil {
			ev.Obscuration = first.ExtraInfo.Obscuration
		}
	}
	return ev, true
}

// earliestPeak returns the smallest parseable sub-event peak, as its
// original string.
func earliestPeak(events []providers.BodyEvent) string {
	var (
		best   string
		bestAt time.Time
	)
	for _, e := range events {
		raw := e.PeakDate()
		at, ok := timeutil.ParseISO(raw)
		if !ok {
			continue
		}
		if best == "" || at.Before(bestAt) {
			best = raw
			bestAt = at
		}
	}
	return best
}

// CanonicalBody reduces a provider body name to its first whitespace token,
// so "Body 3" and "Body" collapse onto the same dedup key.
func CanonicalBody(name string) string {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return name
	}
	return fields[0]
}

// SortEvents orders events by parsed peak ascending, with unparseable or
// absent peaks last, and the body name as a deterministic tie-break.
func SortEvents(events []model.Event) {
	sort.SliceStable(events, func(i, j int) bool {
		ti, iok := timeutil.ParseISO(events[i].Peak)
		tj, jok := timeutil.ParseISO(events[j].Peak)
		if iok != jok {
			return iok
		}
		if iok && !ti.Equal(tj) {
			return ti.Before(tj)
		}
		return events[i].Body < events[j].Body
	})
}
