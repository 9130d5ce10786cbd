// Package api provides the HTTP API for QuadRoute.
package api

import (
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/quadroute/quadroute/internal/ai"
	"github.com/quadroute/quadroute/internal/api/handler"
	"github.com/quadroute/quadroute/internal/api/middleware"
	"github.com/quadroute/quadroute/internal/auth"
	"github.com/quadroute/quadroute/internal/building"
	"github.com/quadroute/quadroute/internal/directions"
	"github.com/quadroute/quadroute/internal/geocode"
	"github.com/quadroute/quadroute/internal/gtfs"
	"github.com/quadroute/quadroute/internal/provider/resilience"
	"github.com/quadroute/quadroute/internal/recommend"
	"github.com/quadroute/quadroute/internal/schedule"
	"github.com/quadroute/quadroute/internal/stops"
	"github.com/quadroute/quadroute/internal/transit"
)

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Version     string
	BuildTime   string
	Logger      zerolog.Logger
	ServiceName string
	Metrics     *middleware.Metrics

	// CORSAllowedOrigins is the list of allowed origins; empty allows none.
	CORSAllowedOrigins []string

	AuthService       *auth.Service
	RecommendService  *recommend.Service
	Ranker            *ai.Ranker
	TransitService    *transit.Service
	StopsRepository   *stops.SQLiteRepository
	BuildingService   *building.Service
	ScheduleService   *schedule.Service
	GeocodeService    *geocode.Service
	DirectionsService *directions.Service
	GTFSService       *gtfs.Service
	ProviderRegistry  *resilience.Registry

	// ReadinessChecks are named dependency probes for the readiness
	// endpoint.
	ReadinessChecks map[string]handler.ReadinessChecker
}

// NewRouter creates a new chi router with all API routes configured.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	// Set default service name if not provided
	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "quadroute-api"
	}

	// Global middleware - order matters
	r.Use(middleware.RequestID)            // Generate/propagate request ID first
	r.Use(middleware.Tracing(serviceName)) // Distributed tracing
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware()) // HTTP metrics
	}
	r.Use(middleware.Logger(cfg.Logger))   // Structured logging
	r.Use(middleware.Recovery(cfg.Logger)) // Panic recovery
	r.Use(chimiddleware.RealIP)            // Real IP extraction
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   cfg.CORSAllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-API-Key"},
			ExposedHeaders:   []string{"X-Request-Id"},
			AllowCredentials: false,
			MaxAge:           300,
		}))
	}
	r.Use(middleware.SecurityHeaders) // Security headers (HSTS, CSP, etc.)
	r.Use(middleware.RequireTLS)      // TLS enforcement (enabled via REQUIRE_TLS=true)
	r.Use(middleware.ContentTypeJSON) // JSON content type

	// Initialize handlers
	opsHandler := handler.NewOpsHandler(cfg.Version, cfg.BuildTime, cfg.ProviderRegistry, cfg.TransitService)
	for name, check := range cfg.ReadinessChecks {
		opsHandler.AddReadinessCheck(name, check)
	}
	authHandler := handler.NewAuthHandler(cfg.AuthService)
	geocodeHandler := handler.NewGeocodeHandler(cfg.GeocodeService, cfg.BuildingService)
	stopsHandler := handler.NewStopsHandler(cfg.StopsRepository, cfg.TransitService)
	vehiclesHandler := handler.NewVehiclesHandler(cfg.TransitService)
	buildingsHandler := handler.NewBuildingsHandler(cfg.BuildingService)
	scheduleHandler := handler.NewScheduleHandler(cfg.ScheduleService)
	recommendationHandler := handler.NewRecommendationHandler(cfg.RecommendService, cfg.Ranker)
	directionsHandler := handler.NewDirectionsHandler(cfg.DirectionsService)
	gtfsHandler := handler.NewGTFSHandler(cfg.GTFSService)

	// Create auth middleware
	authMiddleware := middleware.Auth(cfg.AuthService)

	// Create rate limit middleware for different endpoint categories
	authRateLimit := middleware.RateLimitByIP(middleware.AuthRateLimit)           // 10 req/min
	expensiveRateLimit := middleware.RateLimitByIP(middleware.ExpensiveRateLimit) // 30 req/min
	standardRateLimit := middleware.RateLimitByCredential(middleware.StandardRateLimit)

	// API v1 routes
	r.Route("/v1", func(r chi.Router) {
		// Auth endpoints (public) - strict rate limiting
		r.Route("/auth", func(r chi.Router) {
			r.Use(authRateLimit) // 10 requests per minute per IP
			r.Post("/token", authHandler.Token)
		})

		// Ops endpoints (public liveness/readiness, authenticated status)
		r.Route("/ops", func(r chi.Router) {
			r.Get("/health", opsHandler.HealthCheck)
			r.Get("/ready", opsHandler.ReadinessCheck)
			r.With(authMiddleware).Get("/status", opsHandler.SystemStatus)
		})

		// Geocoding endpoints
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware)
			r.Use(standardRateLimit)
			r.Get("/geocode", geocodeHandler.Geocode)
			r.Get("/autocomplete", geocodeHandler.Autocomplete)
		})

		// Transit data endpoints
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware)
			r.Use(standardRateLimit)
			r.Get("/stops/nearby", stopsHandler.Nearby)
			r.Get("/stops/{stopID}/departures", stopsHandler.Departures)
			r.Get("/vehicles", vehiclesHandler.List)
			r.Get("/gtfs/route-stops", gtfsHandler.RouteStops)
		})

		// Campus building directory
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware)
			r.Use(standardRateLimit)
			r.Get("/buildings", buildingsHandler.List)
			r.Get("/buildings/search", buildingsHandler.Search)
		})

		// Schedule classes
		r.Route("/schedule/classes", func(r chi.Router) {
			r.Use(authMiddleware)
			r.Use(standardRateLimit)
			r.Get("/", scheduleHandler.List)
			r.Post("/", scheduleHandler.Create)
			r.Delete("/{classID}", scheduleHandler.Delete)
		})

		// Walking directions
		r.With(authMiddleware, standardRateLimit).Get("/directions/walk", directionsHandler.Walk)

		// Recommendation endpoint - expensive compute, strict rate limiting
		r.With(authMiddleware, expensiveRateLimit).Post("/recommendations:compute", recommendationHandler.Compute)
	})

	return r
}
