// Package model defines the normalized records shared by the provider
// adapters, the aggregator, and the serving layers.
package model

// Event is the canonical normalized record for one astronomical occurrence:
// a rise/set cycle, an eclipse, a twilight boundary, a meteor shower peak, or
// a fireball sighting. Events are built fresh on every aggregation and never
// persisted.
type Event struct {
	// Body is the celestial object or phenomenon category, e.g. "Sun",
	// "Moon", "Meteor Shower". For multi-word provider names only the first
	// token is kept.
	Body string `json:"body"`

	// Type is the human-readable event type, e.g. "eclipse",
	// "Astronomical Twilight Start".
	Type string `json:"type"`

	// Peak is the ISO-8601 instant used as the primary sort key.
	Peak string `json:"peak,omitempty"`

	Rise    *string `json:"rise"`
	Set     *string `json:"set"`
	Transit *string `json:"transit"`

	// Obscuration is the fraction of the body obscured (0..1) where the
	// provider reports one (eclipses).
	Obscuration *float64 `json:"obscuration,omitempty"`

	// Highlights carries provider-specific supplementary detail verbatim.
	// The aggregator never interprets it.
	Highlights map[string]any `json:"highlights,omitempty"`
}

// AuroraReading is the latest planetary K-index sample with its display tier.
type AuroraReading struct {
	Time    string  `json:"time"`
	KpIndex float64 `json:"kp_index"`
	Status  string  `json:"status"`
	Color   string  `json:"color"`
}

// MoonPhase describes the moon's appearance at an instant.
type MoonPhase struct {
	IlluminatedFraction float64 `json:"illuminated_fraction"`
	Phase               string  `json:"phase"`
	AgeDays             float64 `json:"age_days"`
}

// CatalogBody is a reference entry from the solar-system body catalog.
// It feeds the catalog listing endpoint and is never merged into the feed.
type CatalogBody struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	IsPlanet   bool    `json:"is_planet"`
	MeanRadius float64 `json:"mean_radius_km"`
	Gravity    float64 `json:"gravity"`
	OrbitDays  float64 `json:"orbit_days"`
	Moons      int     `json:"moons"`
}
