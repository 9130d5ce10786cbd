package gtfs

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/quadroute/quadroute/pkg/polyline"
)

// ServiceConfig bundles Service dependencies.
type ServiceConfig struct {
	Repository *SQLiteRepository
	Logger     zerolog.Logger
}

// Service composes repository queries into route-stops answers.
type Service struct {
	repo   *SQLiteRepository
	logger zerolog.Logger
}

// NewService creates a new GTFS service.
func NewService(cfg ServiceConfig) *Service {
	return &Service{
		repo:   cfg.Repository,
		logger: cfg.Logger.With().Str("component", "gtfs").Logger(),
	}
}

// RouteStops finds the first trip after afterTime that connects the two
// stops and returns the stops it visits between them plus its shape.
// Returns ErrNoConnection when the dataset has no such trip; an absent
// dataset yields the same.
func (s *Service) RouteStops(ctx context.Context, routeID, fromStopID, toStopID, afterTime string) (*RouteStops, error) {
	conns, err := s.repo.ConnectingTrips(ctx, routeID, fromStopID, toStopID, afterTime, 1)
	if err != nil {
		return nil, err
	}
	if len(conns) == 0 {
		return nil, ErrNoConnection
	}
	conn := conns[0]

	stops, err := s.repo.TripStopsBetween(ctx, conn.TripID, conn.FromSeq, conn.ToSeq)
	if err != nil {
		return nil, err
	}

	shape, err := s.repo.ShapeForTrip(ctx, conn.TripID)
	if err != nil {
		s.logger.Warn().Err(err).Str("trip_id", conn.TripID).Msg("shape lookup failed")
		shape = nil
	}

	result := &RouteStops{
		Connection: conn,
		Stops:      stops,
		Shape:      shape,
	}

	if len(shape) > 0 {
		coords := make([]polyline.Coordinate, len(shape))
		for i, p := range shape {
			coords[i] = polyline.Coordinate{Lat: p.Lat, Lng: p.Lng}
		}
		result.ShapePolyline = polyline.Encode(coords)
		result.ShapeLengthM = polyline.Length(coords)
	}

	return result, nil
}
