// Package mtd implements a client for the Champaign-Urbana MTD Developer API.
package mtd

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/quadroute/quadroute/internal/provider/resilience"
	"github.com/quadroute/quadroute/internal/transit"
)

const (
	// ProviderName identifies this transit provider.
	ProviderName = "mtd"

	// DefaultBaseURL is the MTD Developer API base URL.
	DefaultBaseURL = "https://developer.cumtd.com/api/v2.2/json"

	// maxPreviewMins is the largest departure window the API accepts.
	maxPreviewMins = 60
)

// ClientConfig holds configuration for the MTD client.
type ClientConfig struct {
	// APIKey is the MTD Developer API key (required).
	APIKey string

	// BaseURL is the API base URL (optional, defaults to the MTD API).
	BaseURL string

	// HTTPClient is the HTTP client to use (optional).
	// If nil, uses a resilient client with defaults.
	HTTPClient *resilience.Client

	// Logger for client operations.
	Logger zerolog.Logger
}

// Client is an MTD Developer API client for departures and vehicle positions.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *resilience.Client
	logger     zerolog.Logger
}

// NewClient creates a new MTD client.
func NewClient(cfg ClientConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = resilience.NewClient(resilience.DefaultClientConfig("mtd"))
	}

	return &Client{
		apiKey:     cfg.APIKey,
		baseURL:    baseURL,
		httpClient: httpClient,
		logger:     cfg.Logger,
	}
}

// Name returns the provider name.
func (c *Client) Name() string {
	return ProviderName
}

// GetDeparturesByStop fetches departures for a stop within the given window.
func (c *Client) GetDeparturesByStop(ctx context.Context, stopID string, windowMins int) ([]transit.Departure, error) {
	if windowMins < 0 {
		windowMins = 0
	}
	if windowMins > maxPreviewMins {
		windowMins = maxPreviewMins
	}

	params := url.Values{}
	params.Set("key", c.apiKey)
	params.Set("stop_id", stopID)
	params.Set("pt", strconv.Itoa(windowMins))

	reqURL := fmt.Sprintf("%s/GetDeparturesByStop?%s", c.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var mtdResp departuresResponse
	if err := json.NewDecoder(resp.Body).Decode(&mtdResp); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	if mtdResp.Status.Code != 0 && mtdResp.Status.Code != http.StatusOK {
		return nil, fmt.Errorf("api error %d: %s", mtdResp.Status.Code, mtdResp.Status.Msg)
	}

	departures := make([]transit.Departure, 0, len(mtdResp.Departures))
	for i := range mtdResp.Departures {
		departures = append(departures, c.toDeparture(stopID, &mtdResp.Departures[i]))
	}

	c.logger.Debug().
		Str("stop_id", stopID).
		Int("count", len(departures)).
		Msg("fetched departures")

	return departures, nil
}

// GetVehicles fetches all vehicles currently in service.
func (c *Client) GetVehicles(ctx context.Context) ([]transit.Vehicle, error) {
	params := url.Values{}
	params.Set("key", c.apiKey)

	reqURL := fmt.Sprintf("%s/GetVehicles?%s", c.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var mtdResp vehiclesResponse
	if err := json.NewDecoder(resp.Body).Decode(&mtdResp); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	vehicles := make([]transit.Vehicle, 0, len(mtdResp.Vehicles))
	for i := range mtdResp.Vehicles {
		vehicles = append(vehicles, c.toVehicle(&mtdResp.Vehicles[i]))
	}

	return vehicles, nil
}

// setHeaders sets common request headers.
func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Accept", "application/json")
}

// toDeparture converts an MTD API departure to the domain model.
func (c *Client) toDeparture(stopID string, d *mtdDeparture) transit.Departure {
	route := d.Route.ShortName
	if route == "" {
		route = d.Route.ID
	}

	dep := transit.Departure{
		StopID:       stopID,
		Route:        route,
		Headsign:     d.Headsign,
		ExpectedMins: d.ExpectedMins,
		Realtime:     d.IsMonitored,
		VehicleID:    d.VehicleID,
	}

	if d.Expected != "" {
		if parsed, err := time.Parse(time.RFC3339, d.Expected); err == nil {
			dep.ExpectedAt = &parsed
			// Derive minutes when the feed gives an absolute time only.
			if d.ExpectedMins == 0 {
				if mins := int(time.Until(parsed).Minutes()); mins > 0 {
					dep.ExpectedMins = mins
				}
			}
		}
	}

	return dep
}

// toVehicle converts an MTD API vehicle to the domain model.
func (c *Client) toVehicle(v *mtdVehicle) transit.Vehicle {
	vehicle := transit.Vehicle{
		ID:       v.VehicleID,
		RouteID:  v.Trip.RouteID,
		TripID:   v.Trip.TripID,
		Headsign: v.Trip.TripHeadsign,
		Lat:      v.Location.Lat,
		Lng:      v.Location.Lon,
		Heading:  v.Heading,
	}

	if v.LastUpdated != "" {
		if parsed, err := time.Parse(time.RFC3339, v.LastUpdated); err == nil {
			vehicle.UpdatedAt = parsed
		}
	}

	return vehicle
}

// MTD API response structures.

type departuresResponse struct {
	Status     mtdStatus      `json:"status"`
	Departures []mtdDeparture `json:"departures"`
}

type mtdStatus struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
}

type mtdDeparture struct {
	Headsign     string `json:"headsign"`
	ExpectedMins int    `json:"expected_mins"`
	Expected     string `json:"expected"`
	IsMonitored  bool   `json:"is_monitored"`
	VehicleID    string `json:"vehicle_id"`
	Route        struct {
		ID        string `json:"route_id"`
		ShortName string `json:"route_short_name"`
	} `json:"route"`
}

type vehiclesResponse struct {
	Status   mtdStatus    `json:"status"`
	Vehicles []mtdVehicle `json:"vehicles"`
}

type mtdVehicle struct {
	VehicleID   string  `json:"vehicle_id"`
	Heading     float64 `json:"heading"`
	LastUpdated string  `json:"last_updated"`
	Location    struct {
		Lat float64 `json:"lat"`
		Lon float64 `json:"lon"`
	} `json:"location"`
	Trip struct {
		RouteID      string `json:"route_id"`
		TripID       string `json:"trip_id"`
		TripHeadsign string `json:"trip_headsign"`
	} `json:"trip"`
}
