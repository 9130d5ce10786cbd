// Package dataprovider adapts the building, stop and transit services into
// the data access interface the recommendation engine consumes.
package dataprovider

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/quadroute/quadroute/internal/building"
	"github.com/quadroute/quadroute/internal/recommend"
	"github.com/quadroute/quadroute/internal/stops"
	"github.com/quadroute/quadroute/internal/transit"
)

// Config bundles Provider dependencies.
type Config struct {
	Buildings           *building.Service
	Stops               *stops.SQLiteRepository
	Transit             *transit.Service
	Logger              zerolog.Logger
	DepartureWindowMins int
}

// defaultDepartureWindowMins bounds the departure board the engine sees.
const defaultDepartureWindowMins = 60

// Provider implements recommend.DataProvider. Departure fetch failures
// degrade to an empty board so the engine still produces the walk option.
type Provider struct {
	buildings  *building.Service
	stops      *stops.SQLiteRepository
	transit    *transit.Service
	logger     zerolog.Logger
	windowMins int
}

// New creates a Provider from cfg.
func New(cfg Config) *Provider {
	windowMins := cfg.DepartureWindowMins
	if windowMins <= 0 {
		windowMins = defaultDepartureWindowMins
	}
	return &Provider{
		buildings:  cfg.Buildings,
		stops:      cfg.Stops,
		transit:    cfg.Transit,
		logger:     cfg.Logger.With().Str("component", "dataprovider").Logger(),
		windowMins: windowMins,
	}
}

// Building resolves a building ID. Returns (nil, nil) when unknown.
func (p *Provider) Building(ctx context.Context, id string) (*recommend.Building, error) {
	b, err := p.buildings.Get(ctx, id)
	if err != nil {
		if errors.Is(err, building.ErrBuildingNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &recommend.Building{
		ID:   b.ID,
		Name: b.Name,
		Lat:  b.Lat,
		Lng:  b.Lng,
	}, nil
}

// NearbyStops returns up to limit stops within radiusM meters, nearest
// first.
func (p *Provider) NearbyStops(ctx context.Context, lat, lng, radiusM float64, limit int) ([]recommend.Stop, error) {
	found, err := p.stops.Nearby(ctx, lat, lng, radiusM, limit)
	if err != nil {
		return nil, err
	}
	out := make([]recommend.Stop, 0, len(found))
	for _, s := range found {
		out = append(out, recommend.Stop{
			ID:   s.ID,
			Name: s.Name,
			Lat:  s.Lat,
			Lng:  s.Lng,
		})
	}
	return out, nil
}

// Departures returns the upcoming departure board for a stop. Provider
// failure yields an empty board so bus options are simply absent.
func (p *Provider) Departures(ctx context.Context, stopID string) ([]recommend.Departure, error) {
	departures, err := p.transit.Departures(ctx, stopID, p.windowMins)
	if err != nil {
		p.logger.Warn().Err(err).Str("stop_id", stopID).Msg("departure board unavailable")
		return nil, nil
	}
	out := make([]recommend.Departure, 0, len(departures))
	for _, d := range departures {
		out = append(out, recommend.Departure{
			Route:        d.Route,
			Headsign:     d.Headsign,
			ExpectedMins: d.ExpectedMins,
			Realtime:     d.Realtime,
			ExpectedAt:   d.ExpectedAt,
		})
	}
	return out, nil
}
