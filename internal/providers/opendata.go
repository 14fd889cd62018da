package providers

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"github.com/celestiatrack/skyfeed/internal/model"
)

// DefaultCatalogBaseURL is the static solar-system body reference API.
const DefaultCatalogBaseURL = "https://api.le-systeme-solaire.net/rest"

// CatalogRoster is the fixed set of bodies queried for the catalog listing.
var CatalogRoster = []string{
	"soleil", "mercure", "venus", "terre", "lune", "mars",
	"jupiter", "saturne", "uranus", "neptune", "pluton",
}

// CatalogClient queries the body reference catalog. Auth is optional; a
// Bearer token is attached when configured.
type CatalogClient struct {
	httpBase
	token string
}

// NewCatalogClient creates a catalog client.
func NewCatalogClient(token string, opts ...Option) *CatalogClient {
	return &CatalogClient{
		httpBase: newBase(DefaultCatalogBaseURL, opts...),
		token:    token,
	}
}

func (c *CatalogClient) authHeader() http.Header {
	if c.token == "" {
		return nil
	}
	h := http.Header{}
	h.Set("Authorization", "Bearer "+c.token)
	return h
}

type catalogBodyResponse struct {
	ID          string  `json:"id"`
	EnglishName string  `json:"englishName"`
	IsPlanet    bool    `json:"isPlanet"`
	MeanRadius  float64 `json:"meanRadius"`
	Gravity     float64 `json:"gravity"`
	SideralOrbit float64 `json:"sideralOrbit"`
	Moons       []struct {
		Moon string `json:"moon"`
	} `json:"moons"`
}

// Body fetches one catalog entry. Unknown bodies yield nil.
func (c *CatalogClient) Body(ctx context.Context, name string) (*model.CatalogBody, error) {
	reqURL := c.baseURL + "/bodies/" + url.PathEscape(name)

	var resp catalogBodyResponse
	err := c.getJSON(ctx, "body catalog", reqURL, c.authHeader(), &resp)
	switch {
	case err == nil:
	case IsNotFound(err):
		return nil, nil
	case IsForbidden(err):
		return nil, err
	default:
		var se *StatusError
		if errors.As(err, &se) {
			c.log.Warn("catalog %s: status %d, skipping", name, se.Code)
			return nil, nil
		}
		return nil, err
	}

	return &model.CatalogBody{
		ID:         resp.ID,
		Name:       resp.EnglishName,
		IsPlanet:   resp.IsPlanet,
		MeanRadius: resp.MeanRadius,
		Gravity:    resp.Gravity,
		OrbitDays:  resp.SideralOrbit,
		Moons:      len(resp.Moons),
	}, nil
}

// Bodies fetches the fixed roster, one request per body. Per-body failures
// are logged and skipped; the listing is reference data, not feed input.
func (c *CatalogClient) Bodies(ctx context.Context) ([]model.CatalogBody, error) {
	out := make([]model.CatalogBody, 0, len(CatalogRoster))
	for _, name := range CatalogRoster {
		body, err := c.Body(ctx, name)
		if err != nil {
			c.log.Warn("catalog %s: %v", name, err)
			continue
		}
		if body != nil {
			out = append(out, *body)
		}
	}
	return out, nil
}
