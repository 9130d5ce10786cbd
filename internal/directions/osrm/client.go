// Package osrm implements a walking route client for the OSRM HTTP API.
package osrm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/quadroute/quadroute/internal/directions"
	"github.com/quadroute/quadroute/internal/provider/resilience"
	"github.com/quadroute/quadroute/pkg/polyline"
)

const (
	// ProviderName identifies this routing provider.
	ProviderName = "osrm"

	// DefaultBaseURL is the public OSRM demo instance.
	DefaultBaseURL = "http://router.project-osrm.org"
)

// ClientConfig holds configuration for the OSRM client.
type ClientConfig struct {
	// BaseURL is the API base URL (optional, defaults to the demo instance).
	BaseURL string

	// HTTPClient is the HTTP client to use (optional).
	// If nil, uses a resilient client with defaults.
	HTTPClient *resilience.Client

	// Logger for client operations.
	Logger zerolog.Logger
}

// Client is an OSRM routing client.
type Client struct {
	baseURL    string
	httpClient *resilience.Client
	logger     zerolog.Logger
}

// NewClient creates a new OSRM client.
func NewClient(cfg ClientConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = resilience.NewClient(resilience.DefaultClientConfig("osrm"))
	}

	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
		logger:     cfg.Logger,
	}
}

// Name returns the provider name.
func (c *Client) Name() string {
	return ProviderName
}

// WalkRoute fetches a foot-profile route between two points.
func (c *Client) WalkRoute(ctx context.Context, origLat, origLng, destLat, destLng float64) (*directions.WalkRoute, error) {
	// OSRM takes lng,lat pairs.
	reqURL := fmt.Sprintf("%s/route/v1/foot/%f,%f;%f,%f?geometries=geojson&overview=full",
		c.baseURL, origLng, origLat, destLng, destLat)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var osrmResp routeResponse
	if err := json.NewDecoder(resp.Body).Decode(&osrmResp); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	if osrmResp.Code != "Ok" || len(osrmResp.Routes) == 0 {
		return nil, directions.ErrNoRoute
	}

	route := osrmResp.Routes[0]
	coords := make([]polyline.Coordinate, 0, len(route.Geometry.Coordinates))
	for _, c := range route.Geometry.Coordinates {
		if len(c) < 2 {
			continue
		}
		// GeoJSON order is lng,lat.
		coords = append(coords, polyline.Coordinate{Lat: c[1], Lng: c[0]})
	}

	return &directions.WalkRoute{
		Coords:    coords,
		DistanceM: route.Distance,
		DurationS: route.Duration,
	}, nil
}

// OSRM API response structures.

type routeResponse struct {
	Code   string      `json:"code"`
	Routes []osrmRoute `json:"routes"`
}

type osrmRoute struct {
	Distance float64 `json:"distance"`
	Duration float64 `json:"duration"`
	Geometry struct {
		Coordinates [][]float64 `json:"coordinates"`
	} `json:"geometry"`
}
