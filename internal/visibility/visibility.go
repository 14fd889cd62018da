// Package visibility answers "when does this body next rise here".
package visibility

import (
	"context"
	"time"

	"github.com/celestiatrack/skyfeed/internal/astro"
	"github.com/celestiatrack/skyfeed/internal/logging"
	"github.com/celestiatrack/skyfeed/internal/providers"
	"github.com/celestiatrack/skyfeed/internal/timeutil"
)

// fallbackScanWindow bounds the local solar ephemeris search. Two days
// covers every non-polar latitude.
const fallbackScanWindow = 48 * time.Hour

// RiseSetSource supplies per-day rise and set moments for supported bodies.
type RiseSetSource interface {
	RiseSet(ctx context.Context, body string, obs astro.Observer, from, to time.Time) ([]providers.RiseSetRow, error)
	Enabled() bool
}

// Calculator resolves the next rise time of a body for an observer.
type Calculator struct {
	riseSet RiseSetSource
	log     *logging.Logger
	now     func() time.Time
}

// CalculatorOption configures a Calculator.
type CalculatorOption func(*Calculator)

// WithLogger sets the calculator logger.
func WithLogger(l *logging.Logger) CalculatorOption {
	return func(c *Calculator) { c.log = l }
}

// WithClock overrides the reference clock.
func WithClock(now func() time.Time) CalculatorOption {
	return func(c *Calculator) { c.now = now }
}

// NewCalculator builds a calculator over the given rise/set provider.
func NewCalculator(riseSet RiseSetSource, opts ...CalculatorOption) *Calculator {
	c := &Calculator{
		riseSet: riseSet,
		log:     logging.Discard(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NextRise returns the next future rise of body at the observer location.
// The sun and moon resolve through the rise/set provider; for the sun a
// local solar ephemeris takes over when the provider is not configured.
// All other bodies report not-computable.
func (c *Calculator) NextRise(ctx context.Context, body string, obs astro.Observer) (time.Time, bool) {
	switch body {
	case "sun", "moon":
	default:
		return time.Time{}, false
	}

	now := c.now().UTC()

	if c.riseSet != nil && c.riseSet.Enabled() {
		rows, err := c.riseSet.RiseSet(ctx, body, obs, now, now.AddDate(0, 1, 0))
		if err != nil {
			c.log.Warn("rise/set %s: %v", body, err)
		}
		if at, ok := earliestFutureRise(rows, now); ok {
			return at, true
		}
	}

	if body == "sun" {
		return astro.NextSunRise(obs, now, fallbackScanWindow)
	}
	return time.Time{}, false
}

// earliestFutureRise scans provider rows for the smallest rise moment
// strictly after the reference time.
func earliestFutureRise(rows []providers.RiseSetRow, after time.Time) (time.Time, bool) {
	var (
		best  time.Time
		found bool
	)
	for _, row := range rows {
		if row.Rise == nil {
			continue
		}
		at, ok := timeutil.ParseISO(*row.Rise)
		if !ok || !at.After(after) {
			continue
		}
		if !found || at.Before(best) {
			best = at
			found = true
		}
	}
	return best, found
}
