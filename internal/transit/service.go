package transit

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// ServiceConfig holds configuration for the transit service.
type ServiceConfig struct {
	// Departures is the departure board provider.
	Departures DepartureProvider

	// Vehicles is the vehicle position provider.
	Vehicles VehicleProvider

	// Logger for service operations.
	Logger zerolog.Logger

	// DepartureCacheTTL is how long to cache departure boards (default: 60 seconds).
	// Expected arrival times drift quickly, so the cache stays short.
	DepartureCacheTTL time.Duration

	// VehicleCacheTTL is how long to cache vehicle positions (default: 10 seconds).
	VehicleCacheTTL time.Duration

	// StaleIfErrorTTL allows serving stale data on provider errors (default: 10 minutes).
	StaleIfErrorTTL time.Duration
}

// Service provides live departure and vehicle data with caching.
type Service struct {
	departures        DepartureProvider
	vehicles          VehicleProvider
	logger            zerolog.Logger
	departureCacheTTL time.Duration
	vehicleCacheTTL   time.Duration
	staleIfErrorTTL   time.Duration

	mu              sync.RWMutex
	departureCache  map[string]*cachedDepartures
	vehicleCache    *cachedVehicles
	lastCleanup     time.Time
	cleanupInterval time.Duration
}

type cachedDepartures struct {
	departures []Departure
	fetchedAt  time.Time
	expiresAt  time.Time
}

type cachedVehicles struct {
	vehicles  []Vehicle
	fetchedAt time.Time
	expiresAt time.Time
}

// NewService creates a new transit service.
func NewService(cfg ServiceConfig) *Service {
	departureCacheTTL := cfg.DepartureCacheTTL
	if departureCacheTTL == 0 {
		departureCacheTTL = 60 * time.Second
	}

	vehicleCacheTTL := cfg.VehicleCacheTTL
	if vehicleCacheTTL == 0 {
		vehicleCacheTTL = 10 * time.Second
	}

	staleIfErrorTTL := cfg.StaleIfErrorTTL
	if staleIfErrorTTL == 0 {
		staleIfErrorTTL = 10 * time.Minute
	}

	return &Service{
		departures:        cfg.Departures,
		vehicles:          cfg.Vehicles,
		logger:            cfg.Logger,
		departureCacheTTL: departureCacheTTL,
		vehicleCacheTTL:   vehicleCacheTTL,
		staleIfErrorTTL:   staleIfErrorTTL,
		departureCache:    make(map[string]*cachedDepartures),
		cleanupInterval:   10 * time.Minute,
	}
}

// Departures returns departures at a stop within the given window in minutes.
func (s *Service) Departures(ctx context.Context, stopID string, windowMins int) ([]Departure, error) {
	cacheKey := s.departureCacheKey(stopID, windowMins)

	s.mu.RLock()
	if cached, ok := s.departureCache[cacheKey]; ok && time.Now().Before(cached.expiresAt) {
		departures := cached.departures
		s.mu.RUnlock()
		return departures, nil
	}
	s.mu.RUnlock()

	return s.fetchDepartures(ctx, stopID, windowMins, cacheKey)
}

// Vehicles returns tracked vehicle positions, optionally filtered by route.
func (s *Service) Vehicles(ctx context.Context, routeID string) ([]Vehicle, error) {
	s.mu.RLock()
	if s.vehicleCache != nil && time.Now().Before(s.vehicleCache.expiresAt) {
		vehicles := s.vehicleCache.vehicles
		s.mu.RUnlock()
		return filterVehicles(vehicles, routeID), nil
	}
	s.mu.RUnlock()

	vehicles, err := s.fetchVehicles(ctx)
	if err != nil {
		return nil, err
	}
	return filterVehicles(vehicles, routeID), nil
}

// fetchDepartures fetches from the provider and updates the cache.
func (s *Service) fetchDepartures(ctx context.Context, stopID string, windowMins int, cacheKey string) ([]Departure, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Double-check cache
	if cached, ok := s.departureCache[cacheKey]; ok && time.Now().Before(cached.expiresAt) {
		return cached.departures, nil
	}

	s.logger.Debug().
		Str("stop_id", stopID).
		Int("window_mins", windowMins).
		Str("provider", s.departures.Name()).
		Msg("fetching departures from provider")

	departures, err := s.departures.GetDeparturesByStop(ctx, stopID, windowMins)
	if err != nil {
		s.logger.Error().Err(err).
			Str("stop_id", stopID).
			Msg("failed to fetch departures")

		// Check for stale data
		if cached, ok := s.departureCache[cacheKey]; ok {
			if time.Now().Before(cached.fetchedAt.Add(s.staleIfErrorTTL)) {
				s.logger.Warn().
					Str("stop_id", stopID).
					Time("fetched_at", cached.fetchedAt).
					Msg("serving stale departure data due to provider error")
				return cached.departures, nil
			}
		}

		return nil, ErrProviderUnavailable
	}

	sort.SliceStable(departures, func(i, j int) bool {
		return departures[i].ExpectedMins < departures[j].ExpectedMins
	})

	// Update cache
	now := time.Now()
	s.departureCache[cacheKey] = &cachedDepartures{
		departures: departures,
		fetchedAt:  now,
		expiresAt:  now.Add(s.departureCacheTTL),
	}

	// Periodic cleanup
	s.cleanupIfNeeded()

	return departures, nil
}

// fetchVehicles fetches vehicle positions from the provider.
func (s *Service) fetchVehicles(ctx context.Context) ([]Vehicle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Double-check cache
	if s.vehicleCache != nil && time.Now().Before(s.vehicleCache.expiresAt) {
		return s.vehicleCache.vehicles, nil
	}

	s.logger.Debug().
		Str("provider", s.vehicles.Name()).
		Msg("fetching vehicle positions from provider")

	vehicles, err := s.vehicles.GetVehicles(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to fetch vehicle positions")

		// Check for stale data
		if s.vehicleCache != nil {
			if time.Now().Before(s.vehicleCache.fetchedAt.Add(s.staleIfErrorTTL)) {
				s.logger.Warn().
					Time("fetched_at", s.vehicleCache.fetchedAt).
					Msg("serving stale vehicle data due to provider error")
				return s.vehicleCache.vehicles, nil
			}
		}

		return nil, ErrProviderUnavailable
	}

	sort.SliceStable(vehicles, func(i, j int) bool {
		return vehicles[i].ID < vehicles[j].ID
	})

	// Update cache
	now := time.Now()
	s.vehicleCache = &cachedVehicles{
		vehicles:  vehicles,
		fetchedAt: now,
		expiresAt: now.Add(s.vehicleCacheTTL),
	}

	s.logger.Info().
		Int("vehicles", len(vehicles)).
		Msg("vehicle cache refreshed")

	return vehicles, nil
}

func filterVehicles(vehicles []Vehicle, routeID string) []Vehicle {
	if routeID == "" {
		return vehicles
	}

	filtered := make([]Vehicle, 0, len(vehicles))
	for _, v := range vehicles {
		if v.RouteID == routeID {
			filtered = append(filtered, v)
		}
	}
	return filtered
}

// departureCacheKey generates a cache key for a departure board.
func (s *Service) departureCacheKey(stopID string, windowMins int) string {
	return fmt.Sprintf("%s:%d", stopID, windowMins)
}

// cleanupIfNeeded removes expired departure cache entries.
func (s *Service) cleanupIfNeeded() {
	now := time.Now()
	if now.Sub(s.lastCleanup) < s.cleanupInterval {
		return
	}

	s.lastCleanup = now
	expired := 0

	for key, cached := range s.departureCache {
		if now.After(cached.fetchedAt.Add(s.staleIfErrorTTL)) {
			delete(s.departureCache, key)
			expired++
		}
	}

	if expired > 0 {
		s.logger.Debug().
			Int("expired_entries", expired).
			Msg("cleaned up expired departure cache entries")
	}
}

// InvalidateCache clears all cached data.
func (s *Service) InvalidateCache() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.departureCache = make(map[string]*cachedDepartures)
	s.vehicleCache = nil
}

// CacheStats returns cache statistics.
func (s *Service) CacheStats() CacheStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	now := time.Now()
	stats := CacheStats{
		DepartureProvider:     s.departures.Name(),
		VehicleProvider:       s.vehicles.Name(),
		DepartureCacheEntries: len(s.departureCache),
	}

	if s.vehicleCache != nil {
		stats.HasVehicleCache = true
		stats.VehicleCacheFresh = now.Before(s.vehicleCache.expiresAt)
		stats.VehicleCount = len(s.vehicleCache.vehicles)
	}

	return stats
}

// CacheStats contains cache statistics.
type CacheStats struct {
	DepartureProvider     string
	VehicleProvider       string
	DepartureCacheEntries int
	HasVehicleCache       bool
	VehicleCacheFresh     bool
	VehicleCount          int
}
