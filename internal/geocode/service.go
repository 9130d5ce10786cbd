package geocode

import (
	"context"
	"fmt"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"

	"github.com/quadroute/quadroute/internal/telemetry"
)

const (
	// DefaultSuggestLimit is the suggestion count when none is requested.
	DefaultSuggestLimit = 3

	// maxSuggestLimit caps suggestion requests to the upstream geocoder.
	maxSuggestLimit = 10
)

// locationHints mark queries that already carry enough geographic context.
// Anything else gets the campus city appended before hitting the geocoder.
var locationHints = []string{
	"champaign",
	"urbana",
	"illinois",
	" il,",
	"uiuc",
	"university of illinois",
}

// ServiceConfig holds configuration for the geocoding service.
type ServiceConfig struct {
	// Provider is the upstream geocoder.
	Provider Provider

	// Logger for service operations.
	Logger zerolog.Logger

	// CacheTTL is how long to cache geocode results (default: 24 hours).
	// Place coordinates essentially never move.
	CacheTTL time.Duration

	// SuggestCacheTTL is how long to cache autocomplete results (default: 5 minutes).
	SuggestCacheTTL time.Duration
}

// Service provides geocoding with result caching.
type Service struct {
	provider     Provider
	logger       zerolog.Logger
	cache        *gocache.Cache
	suggestCache *gocache.Cache
}

// NewService creates a new geocoding service.
func NewService(cfg ServiceConfig) *Service {
	cacheTTL := cfg.CacheTTL
	if cacheTTL == 0 {
		cacheTTL = 24 * time.Hour
	}

	suggestTTL := cfg.SuggestCacheTTL
	if suggestTTL == 0 {
		suggestTTL = 5 * time.Minute
	}

	return &Service{
		provider:     cfg.Provider,
		logger:       cfg.Logger,
		cache:        gocache.New(cacheTTL, 1*time.Hour),
		suggestCache: gocache.New(suggestTTL, 10*time.Minute),
	}
}

// Geocode resolves a query to its best matching place.
func (s *Service) Geocode(ctx context.Context, query string) (*Place, error) {
	query = strings.TrimSpace(query)

	if cached, ok := s.cache.Get(query); ok {
		telemetry.Providers().RecordCacheHit(s.provider.Name(), "geocode")
		place := cached.(Place)
		return &place, nil
	}
	telemetry.Providers().RecordCacheMiss(s.provider.Name(), "geocode")

	places, err := s.provider.Search(ctx, contextualize(query), 1, false)
	if err != nil {
		s.logger.Warn().Err(err).
			Str("query", truncate(query, 50)).
			Msg("geocode lookup failed")
		return nil, ErrProviderUnavailable
	}

	if len(places) == 0 {
		return nil, ErrNoResults
	}

	place := places[0]
	s.cache.SetDefault(query, place)

	return &place, nil
}

// Suggest returns autocomplete candidates for a partial query. Upstream
// failures degrade to an empty list so typeahead never errors.
func (s *Service) Suggest(ctx context.Context, query string, limit int) []Place {
	query = strings.TrimSpace(query)
	if limit <= 0 {
		limit = DefaultSuggestLimit
	}
	if limit > maxSuggestLimit {
		limit = maxSuggestLimit
	}

	cacheKey := suggestCacheKey(query, limit)
	if cached, ok := s.suggestCache.Get(cacheKey); ok {
		telemetry.Providers().RecordCacheHit(s.provider.Name(), "suggest")
		return cached.([]Place)
	}
	telemetry.Providers().RecordCacheMiss(s.provider.Name(), "suggest")

	places, err := s.provider.Search(ctx, contextualize(query), limit, true)
	if err != nil {
		s.logger.Warn().Err(err).
			Str("query", truncate(query, 50)).
			Msg("suggest lookup failed")
		return []Place{}
	}

	s.suggestCache.SetDefault(cacheKey, places)

	return places
}

// contextualize appends the campus city to queries lacking location hints.
func contextualize(query string) string {
	lower := strings.ToLower(query)
	for _, hint := range locationHints {
		if strings.Contains(lower, hint) {
			return query
		}
	}
	return query + ", Champaign, IL"
}

func suggestCacheKey(query string, limit int) string {
	return fmt.Sprintf("%s:%d", query, limit)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
