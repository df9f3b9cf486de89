// Package opencage resolves free-text location labels to coordinates through
// the OpenCage geocoding API. Geocoding itself is an external concern; the
// core only consumes the resulting coordinate.
package opencage

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/akagup/go-emergency-response/internal/config"
	"github.com/akagup/go-emergency-response/internal/models"
)

type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

func NewClient(cfg config.GeocoderConfig) *Client {
	return &Client{
		apiKey:  cfg.APIKey,
		baseURL: cfg.BaseURL,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// Geocode resolves a location label. An unresolvable label yields ErrNotFound;
// transport and API failures yield ErrUpstreamUnavailable.
func (c *Client) Geocode(ctx context.Context, label string) (models.Coordinate, error) {
	params := url.Values{
		"q":     {label},
		"key":   {c.apiKey},
		"limit": {"1"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return models.Coordinate{}, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return models.Coordinate{}, fmt.Errorf("geocode request: %v: %w", err, models.ErrUpstreamUnavailable)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return models.Coordinate{}, fmt.Errorf("geocode API: status %d: %w",
			resp.StatusCode, models.ErrUpstreamUnavailable)
	}

	var out struct {
		Results []struct {
			Geometry struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"geometry"`
		} `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return models.Coordinate{}, fmt.Errorf("geocode: decode response: %v: %w", err, models.ErrUpstreamUnavailable)
	}

	if len(out.Results) == 0 {
		return models.Coordinate{}, fmt.Errorf("location %q: %w", label, models.ErrNotFound)
	}

	return models.Coordinate{
		Latitude:  out.Results[0].Geometry.Lat,
		Longitude: out.Results[0].Geometry.Lng,
	}, nil
}
