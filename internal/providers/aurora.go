package providers

import (
	"context"
	"fmt"
	"strconv"

	"github.com/celestiatrack/skyfeed/internal/model"
)

// DefaultAuroraURL is the planetary K-index feed.
const DefaultAuroraURL = "https://services.swpc.noaa.gov/products/noaa-planetary-k-index.json"

// Kp-index display tiers.
const (
	KpStatusLow      = "Low"
	KpStatusModerate = "Moderate"
	KpStatusStorm    = "High (Storm)"

	KpColorSuccess = "success"
	KpColorWarning = "warning"
	KpColorDanger  = "danger"
)

// AuroraClient reads the planetary K-index feed. Its absence signal is a
// nil reading, not an empty list: either the feed answered with a current
// sample or it did not.
type AuroraClient struct {
	httpBase
}

// NewAuroraClient creates a K-index client.
func NewAuroraClient(opts ...Option) *AuroraClient {
	return &AuroraClient{httpBase: newBase(DefaultAuroraURL, opts...)}
}

// Current fetches the latest K-index sample. The feed is a list of lists:
// one header row followed by data rows, most recent last. Any failure
// yields a nil reading.
func (c *AuroraClient) Current(ctx context.Context) (*model.AuroraReading, error) {
	var rows [][]any
	if err := c.getJSON(ctx, "aurora k-index", c.baseURL, nil, &rows); err != nil {
		return nil, err
	}

	// Row 0 is the header.
	if len(rows) < 2 {
		return nil, fmt.Errorf("aurora k-index: no data rows")
	}
	latest := rows[len(rows)-1]
	if len(latest) < 2 {
		return nil, fmt.Errorf("aurora k-index: malformed row")
	}

	kp, err := strconv.ParseFloat(fmt.Sprint(latest[1]), 64)
	if err != nil {
		return nil, fmt.Errorf("aurora k-index: parse %v: %w", latest[1], err)
	}

	status, color := ClassifyKp(kp)
	return &model.AuroraReading{
		Time:    fmt.Sprint(latest[0]),
		KpIndex: kp,
		Status:  status,
		Color:   color,
	}, nil
}

// ClassifyKp maps a planetary K-index value onto a status and display tier.
func ClassifyKp(kp float64) (status, color string) {
	switch {
	case kp < 4:
		return KpStatusLow, KpColorSuccess
	case kp < 5:
		return KpStatusModerate, KpColorWarning
	default:
		return KpStatusStorm, KpColorDanger
	}
}
