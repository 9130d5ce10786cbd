// Package gtfsrt implements a vehicle position provider backed by a
// GTFS-realtime VehiclePositions protobuf feed.
package gtfsrt

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	gtfsrtpb "github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
	"github.com/rs/zerolog"
	"google.golang.org/protobuf/proto"

	"github.com/quadroute/quadroute/internal/provider/resilience"
	"github.com/quadroute/quadroute/internal/transit"
)

const (
	// ProviderName identifies this vehicle provider.
	ProviderName = "gtfsrt"
)

// FeedConfig holds configuration for the GTFS-realtime feed.
type FeedConfig struct {
	// VehiclePositionsURL is the VehiclePositions feed URL (required).
	VehiclePositionsURL string

	// HTTPClient is the HTTP client to use (optional).
	// If nil, uses a resilient client with defaults.
	HTTPClient *resilience.Client

	// Logger for feed operations.
	Logger zerolog.Logger
}

// Feed fetches vehicle positions from a GTFS-realtime feed.
type Feed struct {
	url        string
	httpClient *resilience.Client
	logger     zerolog.Logger
}

// NewFeed creates a new GTFS-realtime vehicle feed.
func NewFeed(cfg FeedConfig) *Feed {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = resilience.NewClient(resilience.DefaultClientConfig("gtfsrt"))
	}

	return &Feed{
		url:        cfg.VehiclePositionsURL,
		httpClient: httpClient,
		logger:     cfg.Logger,
	}
}

// Name returns the provider name.
func (f *Feed) Name() string {
	return ProviderName
}

// GetVehicles fetches and decodes the VehiclePositions feed.
func (f *Feed) GetVehicles(ctx context.Context) ([]transit.Vehicle, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	var feed gtfsrtpb.FeedMessage
	if err := proto.Unmarshal(body, &feed); err != nil {
		return nil, fmt.Errorf("decoding feed: %w", err)
	}

	vehicles := make([]transit.Vehicle, 0, len(feed.Entity))
	for _, entity := range feed.Entity {
		vp := entity.Vehicle
		if vp == nil || vp.Position == nil {
			continue
		}

		vehicle := transit.Vehicle{
			Lat: float64(vp.Position.GetLatitude()),
			Lng: float64(vp.Position.GetLongitude()),
		}

		if vp.Vehicle != nil {
			vehicle.ID = vp.Vehicle.GetId()
		}
		if vehicle.ID == "" {
			vehicle.ID = entity.GetId()
		}

		if vp.Trip != nil {
			vehicle.TripID = vp.Trip.GetTripId()
			vehicle.RouteID = vp.Trip.GetRouteId()
		}

		if vp.Position.Bearing != nil {
			vehicle.Heading = float64(vp.Position.GetBearing())
		}

		if vp.Timestamp != nil {
			vehicle.UpdatedAt = time.Unix(int64(vp.GetTimestamp()), 0).UTC()
		}

		vehicles = append(vehicles, vehicle)
	}

	f.logger.Debug().
		Int("count", len(vehicles)).
		Msg("decoded vehicle positions feed")

	return vehicles, nil
}
