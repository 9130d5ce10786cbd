package recommend

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Request is a recommendation query after transport-level decoding but
// before destination resolution.
type Request struct {
	Lat float64
	Lng float64

	// Destination is either a building ID or explicit coordinates.
	// Explicit coordinates win when both are present.
	DestinationBuildingID string
	DestinationLat        *float64
	DestinationLng        *float64
	DestinationName       string

	// ArriveBy is the ISO-8601 arrival deadline.
	ArriveBy string

	WalkingSpeedMPS float64
	BufferMinutes   float64
	MaxOptions      int

	// Now overrides the evaluation instant; zero means the wall clock.
	Now time.Time
}

// Config bundles Service dependencies.
type Config struct {
	Provider DataProvider
	Logger   zerolog.Logger
}

// Service resolves a Request's destination, runs the engine and reports the
// outcome. It owns no caching and no state beyond its dependencies.
type Service struct {
	engine   *Engine
	provider DataProvider
	logger   zerolog.Logger
}

// NewService constructs a Service from cfg.
func NewService(cfg Config) *Service {
	return &Service{
		engine:   NewEngine(cfg.Provider),
		provider: cfg.Provider,
		logger:   cfg.Logger.With().Str("component", "recommend").Logger(),
	}
}

// Recommend resolves the destination and computes ranked options. An empty
// result means nothing fits the deadline and is returned without error.
func (s *Service) Recommend(ctx context.Context, req Request) ([]Option, error) {
	arriveBy, err := parseArriveBy(req.ArriveBy)
	if err != nil {
		return nil, err
	}

	in := Input{
		Rider:                 Coordinate{Lat: req.Lat, Lng: req.Lng},
		DestinationBuildingID: req.DestinationBuildingID,
		DestinationName:       req.DestinationName,
		ArriveBy:              arriveBy,
		WalkingSpeedMPS:       req.WalkingSpeedMPS,
		BufferMinutes:         req.BufferMinutes,
		MaxOptions:            req.MaxOptions,
		Now:                   req.Now,
	}
	if in.Now.IsZero() {
		in.Now = time.Now()
	}

	switch {
	case req.DestinationLat != nil && req.DestinationLng != nil:
		in.Destination = Coordinate{Lat: *req.DestinationLat, Lng: *req.DestinationLng}
	case req.DestinationBuildingID != "":
		b, err := s.provider.Building(ctx, req.DestinationBuildingID)
		if err != nil {
			s.logger.Error().Err(err).Str("building_id", req.DestinationBuildingID).Msg("building lookup failed")
			return nil, err
		}
		if b == nil {
			return nil, ErrBuildingNotFound
		}
		in.Destination = Coordinate{Lat: b.Lat, Lng: b.Lng}
		if in.DestinationName == "" {
			in.DestinationName = b.Name
		}
	default:
		return nil, ErrMissingDestination
	}

	options, err := s.engine.Compute(ctx, in)
	if err != nil {
		return nil, err
	}

	s.logger.Debug().
		Int("options", len(options)).
		Str("destination", in.DestinationName).
		Msg("recommendation computed")
	return options, nil
}

// parseArriveBy accepts RFC 3339 timestamps with or without sub-second
// precision. Anything else is ErrInvalidArriveBy.
func parseArriveBy(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, ErrInvalidArriveBy
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, ErrInvalidArriveBy
	}
	return t, nil
}
