// Package nominatim implements a geocoding client for the OpenStreetMap
// Nominatim API. The public instance allows at most one request per second,
// which the underlying HTTP client enforces.
package nominatim

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/quadroute/quadroute/internal/geocode"
	"github.com/quadroute/quadroute/internal/provider/resilience"
)

const (
	// ProviderName identifies this geocoding provider.
	ProviderName = "nominatim"

	// DefaultBaseURL is the public Nominatim instance.
	DefaultBaseURL = "https://nominatim.openstreetmap.org"

	// campusViewbox biases results toward Champaign-Urbana
	// (lon_min, lat_max, lon_max, lat_min).
	campusViewbox = "-88.30,40.15,-88.17,40.07"
)

// ClientConfig holds configuration for the Nominatim client.
type ClientConfig struct {
	// BaseURL is the API base URL (optional, defaults to the public instance).
	BaseURL string

	// HTTPClient is the HTTP client to use (optional).
	// If nil, uses a resilient client with 1 req/s spacing.
	HTTPClient *resilience.Client

	// Logger for client operations.
	Logger zerolog.Logger
}

// Client is a Nominatim geocoding client.
type Client struct {
	baseURL    string
	httpClient *resilience.Client
	logger     zerolog.Logger
}

// NewClient creates a new Nominatim client.
func NewClient(cfg ClientConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		clientCfg := resilience.DefaultClientConfig("nominatim")
		clientCfg.MinRequestSpacing = 1100 * time.Millisecond
		httpClient = resilience.NewClient(clientCfg)
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

// Search performs a forward geocoding search.
func (c *Client) Search(ctx context.Context, query string, limit int, bounded bool) ([]geocode.Place, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "json")
	params.Set("limit", strconv.Itoa(limit))
	params.Set("viewbox", campusViewbox)
	if bounded {
		params.Set("bounded", "1")
	} else {
		params.Set("bounded", "0")
	}

	reqURL := fmt.Sprintf("%s/search?%s", c.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var results []nominatimPlace
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	places := make([]geocode.Place, 0, len(results))
	for i := range results {
		place, err := toPlace(&results[i])
		if err != nil {
			c.logger.Warn().Err(err).Msg("skipping malformed geocoding result")
			continue
		}
		places = append(places, place)
	}

	return places, nil
}

// toPlace converts a Nominatim result to the domain model. Nominatim encodes
// coordinates as strings.
func toPlace(p *nominatimPlace) (geocode.Place, error) {
	lat, err := strconv.ParseFloat(p.Lat, 64)
	if err != nil {
		return geocode.Place{}, fmt.Errorf("parsing lat: %w", err)
	}

	lng, err := strconv.ParseFloat(p.Lon, 64)
	if err != nil {
		return geocode.Place{}, fmt.Errorf("parsing lon: %w", err)
	}

	name := p.DisplayName
	if idx := strings.Index(name, ","); idx >= 0 {
		name = strings.TrimSpace(name[:idx])
	}

	return geocode.Place{
		Name:        name,
		DisplayName: p.DisplayName,
		Lat:         lat,
		Lng:         lng,
	}, nil
}

// Nominatim API response structure.

type nominatimPlace struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}
