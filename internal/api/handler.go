// Package api exposes the aggregated feed over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/celestiatrack/skyfeed/internal/astro"
	"github.com/celestiatrack/skyfeed/internal/feed"
	"github.com/celestiatrack/skyfeed/internal/logging"
	"github.com/celestiatrack/skyfeed/internal/model"
	"github.com/celestiatrack/skyfeed/internal/providers"
)

// MaxLimit caps the page size a client may request.
const MaxLimit = 100

// maxEclipses bounds the upcoming-eclipse listing.
const maxEclipses = 5

// FeedSource produces the merged event feed for an observer.
type FeedSource interface {
	Feed(ctx context.Context, obs astro.Observer) ([]model.Event, error)
}

// AuroraSource reports current geomagnetic activity.
type AuroraSource interface {
	Current(ctx context.Context) (*model.AuroraReading, error)
}

// SkySource answers moon phase and eclipse queries.
type SkySource interface {
	MoonPhase(ctx context.Context, instant string, obs astro.Observer) (*providers.MoonPhaseAttrs, error)
	SolarEclipses(ctx context.Context) ([]map[string]any, error)
}

// CatalogSource lists physical body data.
type CatalogSource interface {
	Bodies(ctx context.Context) ([]model.CatalogBody, error)
}

// VisibilitySource resolves the next rise of a body.
type VisibilitySource interface {
	NextRise(ctx context.Context, body string, obs astro.Observer) (time.Time, bool)
}

// Handler routes the public API.
type Handler struct {
	feed       FeedSource
	aurora     AuroraSource
	sky        SkySource
	catalog    CatalogSource
	visibility VisibilitySource

	defaultObs astro.Observer
	log        *logging.Logger
}

// NewHandler wires the API over its backing sources. Any nil source turns
// the corresponding endpoints into 404s.
func NewHandler(feedSrc FeedSource, defaultObs astro.Observer, log *logging.Logger) *Handler {
	return &Handler{
		feed:       feedSrc,
		defaultObs: defaultObs,
		log:        log,
	}
}

// WithAurora enables the /api/aurora endpoint.
func (h *Handler) WithAurora(src AuroraSource) *Handler {
	h.aurora = src
	return h
}

// WithSky enables the /api/moonphase and /api/eclipses endpoints.
func (h *Handler) WithSky(src SkySource) *Handler {
	h.sky = src
	return h
}

// WithCatalog enables the /api/bodies endpoint.
func (h *Handler) WithCatalog(src CatalogSource) *Handler {
	h.catalog = src
	return h
}

// WithVisibility enables the /api/visibility endpoint.
func (h *Handler) WithVisibility(src VisibilitySource) *Handler {
	h.visibility = src
	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	switch r.URL.Path {
	case "/health":
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})

	case "/api/events":
		h.handleEvents(w, r)

	case "/api/aurora":
		h.handleAurora(w, r)

	case "/api/moonphase":
		h.handleMoonPhase(w, r)

	case "/api/eclipses":
		h.handleEclipses(w, r)

	case "/api/bodies":
		h.handleBodies(w, r)

	case "/api/visibility":
		h.handleVisibility(w, r)

	default:
		writeError(w, http.StatusNotFound, "not found")
	}
}

// EventsResponse is the /api/events payload.
type EventsResponse struct {
	Events  []model.Event `json:"events"`
	HasMore bool          `json:"has_more"`
	Error   bool          `json:"error"`
}

func (h *Handler) handleEvents(w http.ResponseWriter, r *http.Request) {
	obs := h.observerFrom(r)
	offset := intParam(r, "offset", 0)
	limit := intParam(r, "limit", feed.DefaultLimit)
	if limit > MaxLimit {
		limit = MaxLimit
	}

	events, err := h.feed.Feed(r.Context(), obs)
	if err != nil {
		var aggErr *feed.AggregateError
		if errors.As(err, &aggErr) {
			h.log.Error("events: %v", err)
			writeJSON(w, http.StatusInternalServerError, EventsResponse{
				Events: []model.Event{}, Error: true,
			})
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	page, more := feed.Paginate(events, offset, limit)
	writeJSON(w, http.StatusOK, EventsResponse{Events: page, HasMore: more})
}

func (h *Handler) handleAurora(w http.ResponseWriter, r *http.Request) {
	if h.aurora == nil {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	reading, err := h.aurora.Current(r.Context())
	if err != nil || reading == nil {
		h.log.Warn("aurora: %v", err)
		writeJSON(w, http.StatusBadGateway, map[string]bool{"error": true})
		return
	}
	writeJSON(w, http.StatusOK, reading)
}

// MoonPhaseResponse is the /api/moonphase payload.
type MoonPhaseResponse struct {
	IlluminatedFraction float64 `json:"illuminated_fraction"`
	Phase               string  `json:"phase"`
	AgeDays             float64 `json:"age_days"`
}

func (h *Handler) handleMoonPhase(w http.ResponseWriter, r *http.Request) {
	if h.sky == nil {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	obs := h.observerFrom(r)
	instant := time.Now().UTC().Format("2006-01-02T15:04")

	phase, err := h.sky.MoonPhase(r.Context(), instant, obs)
	if err != nil || phase == nil {
		h.log.Warn("moonphase: %v", err)
		writeJSON(w, http.StatusBadGateway, map[string]bool{"error": true})
		return
	}
	writeJSON(w, http.StatusOK, MoonPhaseResponse{
		IlluminatedFraction: phase.IlluminatedFraction,
		Phase:               phase.Phase,
		AgeDays:             phase.AgeDays,
	})
}

func (h *Handler) handleEclipses(w http.ResponseWriter, r *http.Request) {
	if h.sky == nil {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	eclipses, err := h.sky.SolarEclipses(r.Context())
	if err != nil {
		h.log.Warn("eclipses: %v", err)
		writeJSON(w, http.StatusBadGateway, map[string]bool{"error": true})
		return
	}
	if len(eclipses) > maxEclipses {
		eclipses = eclipses[:maxEclipses]
	}
	if eclipses == nil {
		eclipses = []map[string]any{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"eclipses": eclipses})
}

func (h *Handler) handleBodies(w http.ResponseWriter, r *http.Request) {
	if h.catalog == nil {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	bodies, err := h.catalog.Bodies(r.Context())
	if err != nil {
		writeJSON(w, http.StatusBadGateway, map[string]bool{"error": true})
		return
	}
	if bodies == nil {
		bodies = []model.CatalogBody{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"bodies": bodies})
}

// VisibilityResponse is the /api/visibility payload. NextRise is RFC 3339
// UTC when computable.
type VisibilityResponse struct {
	Body       string `json:"body"`
	Computable bool   `json:"computable"`
	NextRise   string `json:"next_rise,omitempty"`
}

func (h *Handler) handleVisibility(w http.ResponseWriter, r *http.Request) {
	if h.visibility == nil {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	body := r.URL.Query().Get("body")
	if body == "" {
		writeError(w, http.StatusBadRequest, "missing body parameter")
		return
	}
	obs := h.observerFrom(r)

	resp := VisibilityResponse{Body: body}
	if at, ok := h.visibility.NextRise(r.Context(), body, obs); ok {
		resp.Computable = true
		resp.NextRise = at.UTC().Format(time.RFC3339)
	}
	writeJSON(w, http.StatusOK, resp)
}

// observerFrom reads lat/lon query parameters, falling back to the
// configured default location.
func (h *Handler) observerFrom(r *http.Request) astro.Observer {
	obs := h.defaultObs
	q := r.URL.Query()
	if v, err := strconv.ParseFloat(q.Get("lat"), 64); err == nil && v >= -90 && v <= 90 {
		obs.LatDeg = v
	}
	if v, err := strconv.ParseFloat(q.Get("lon"), 64); err == nil && v >= -180 && v <= 180 {
		obs.LonDeg = v
	}
	return obs
}

func intParam(r *http.Request, name string, fallback int) int {
	v := r.URL.Query().Get(name)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("api: json encode error: %v", err)
	}
}

// ErrorResponse is the generic error payload.
type ErrorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}
