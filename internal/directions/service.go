package directions

import (
	"context"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"

	"github.com/quadroute/quadroute/internal/telemetry"
	"github.com/quadroute/quadroute/pkg/polyline"
)

// ServiceConfig holds configuration for the directions service.
type ServiceConfig struct {
	// Provider is the upstream routing engine.
	Provider Provider

	// Logger for service operations.
	Logger zerolog.Logger

	// CacheTTL is how long to cache routes (default: 5 minutes).
	CacheTTL time.Duration
}

// Service provides walking routes with caching and graceful degradation.
type Service struct {
	provider Provider
	logger   zerolog.Logger
	cache    *gocache.Cache
}

// NewService creates a new directions service.
func NewService(cfg ServiceConfig) *Service {
	cacheTTL := cfg.CacheTTL
	if cacheTTL == 0 {
		cacheTTL = 5 * time.Minute
	}

	return &Service{
		provider: cfg.Provider,
		logger:   cfg.Logger,
		cache:    gocache.New(cacheTTL, 10*time.Minute),
	}
}

// Walk returns the walking route between two points. Router failures degrade
// to a straight line between the endpoints rather than an error, so map
// rendering always has something to draw.
func (s *Service) Walk(ctx context.Context, origLat, origLng, destLat, destLng float64) *WalkRoute {
	cacheKey := routeCacheKey(origLat, origLng, destLat, destLng)

	if cached, ok := s.cache.Get(cacheKey); ok {
		telemetry.Providers().RecordCacheHit(s.provider.Name(), "walk")
		return cached.(*WalkRoute)
	}
	telemetry.Providers().RecordCacheMiss(s.provider.Name(), "walk")

	route, err := s.provider.WalkRoute(ctx, origLat, origLng, destLat, destLng)
	if err != nil {
		s.logger.Warn().Err(err).
			Str("provider", s.provider.Name()).
			Msg("walking route lookup failed, using straight line")
		route = &WalkRoute{
			Coords: []polyline.Coordinate{
				{Lat: origLat, Lng: origLng},
				{Lat: destLat, Lng: destLng},
			},
			Fallback: true,
		}
	}

	s.cache.SetDefault(cacheKey, route)

	return route
}

// routeCacheKey rounds endpoints to 5 decimals (about a meter) so nearby
// requests share cache entries.
func routeCacheKey(origLat, origLng, destLat, destLng float64) string {
	return fmt.Sprintf("%.5f,%.5f-%.5f,%.5f", origLat, origLng, destLat, destLng)
}
