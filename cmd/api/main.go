// Package main provides the entrypoint for the QuadRoute API server.
package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/quadroute/quadroute/internal/ai"
	"github.com/quadroute/quadroute/internal/api"
	"github.com/quadroute/quadroute/internal/api/handler"
	"github.com/quadroute/quadroute/internal/api/middleware"
	"github.com/quadroute/quadroute/internal/auth"
	"github.com/quadroute/quadroute/internal/building"
	"github.com/quadroute/quadroute/internal/database"
	"github.com/quadroute/quadroute/internal/dataprovider"
	"github.com/quadroute/quadroute/internal/directions"
	"github.com/quadroute/quadroute/internal/directions/osrm"
	"github.com/quadroute/quadroute/internal/geocode"
	"github.com/quadroute/quadroute/internal/geocode/nominatim"
	"github.com/quadroute/quadroute/internal/gtfs"
	"github.com/quadroute/quadroute/internal/provider/resilience"
	"github.com/quadroute/quadroute/internal/recommend"
	"github.com/quadroute/quadroute/internal/schedule"
	"github.com/quadroute/quadroute/internal/stops"
	"github.com/quadroute/quadroute/internal/telemetry"
	"github.com/quadroute/quadroute/internal/transit"
	"github.com/quadroute/quadroute/internal/transit/gtfsrt"
	"github.com/quadroute/quadroute/internal/transit/mtd"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "quadroute-api"

	_ = godotenv.Load()

	// Setup structured logging
	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	log.Info().
		Str("build_time", BuildTime).
		Msg("starting QuadRoute API")

	port := getEnvOrDefault("APP_PORT", "8080")
	env := getEnvOrDefault("APP_ENV", "development")
	otlpEndpoint := getEnvOrDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317")

	// Initialize OpenTelemetry
	ctx := context.Background()
	telemetryEnabled := os.Getenv("OTEL_ENABLED") == "true"

	tp, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:    serviceName,
		ServiceVersion: Version,
		Environment:    env,
		OTLPEndpoint:   otlpEndpoint,
		Enabled:        telemetryEnabled,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize telemetry")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tp.Shutdown(shutdownCtx); shutdownErr != nil {
			log.Error().Err(shutdownErr).Msg("failed to shutdown telemetry")
		}
	}()

	if telemetryEnabled {
		log.Info().
			Str("otlp_endpoint", otlpEndpoint).
			Msg("OpenTelemetry initialized")
	}

	// Initialize metrics
	metrics, err := middleware.NewMetrics()
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize metrics")
		os.Exit(1) //nolint:gocritic // intentional exit, telemetry cleanup is best-effort
	}

	// Connect to PostgreSQL (buildings, schedules)
	dbConfig := database.ConfigFromEnv()
	pool, err := database.Connect(ctx, dbConfig)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	log.Info().
		Str("host", dbConfig.Host).
		Int("port", dbConfig.Port).
		Str("database", dbConfig.Database).
		Msg("database connected")

	// Open the loader-produced SQLite datasets
	// The stop and GTFS tables share one file; route-stops answers join
	// stop names and positions against the stop table.
	transitDB, transitDBCreated := openDataset(ctx, log, getEnvOrDefault("TRANSIT_DB_PATH", "data/transit.db"))
	defer transitDB.Close()
	stopsRepo := stops.NewSQLiteRepository(transitDB)
	gtfsRepo := gtfs.NewSQLiteRepository(transitDB)
	if transitDBCreated {
		if err := stopsRepo.EnsureSchema(ctx); err != nil {
			log.Fatal().Err(err).Msg("failed to prepare stops schema")
		}
		if err := gtfsRepo.EnsureSchema(ctx); err != nil {
			log.Fatal().Err(err).Msg("failed to prepare gtfs schema")
		}
	}
	if count, err := stopsRepo.Count(ctx); err == nil && count == 0 {
		log.Warn().Msg("stops dataset is empty - run the loader to populate it")
	}

	// Initialize auth service
	jwtSigningKey := os.Getenv("JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		jwtSigningKey = "local-dev-signing-key-change-in-production"
		log.Warn().Msg("using default JWT signing key - not secure for production")
	}

	authRequired := os.Getenv("AUTH_REQUIRED") != "false"
	authService := auth.NewService(auth.ServiceConfig{
		Required: authRequired,
		APIKeys:  os.Getenv("API_KEYS"),
		JWT: auth.NewJWTService(auth.JWTConfig{
			SigningKey: jwtSigningKey,
			Issuer:     "https://api.quadroute.app",
			Audience:   "quadroute-api",
		}),
		Logger: log,
	})
	if authRequired && os.Getenv("API_KEYS") == "" {
		log.Warn().Msg("AUTH_REQUIRED is set but API_KEYS is empty - all requests will be rejected")
	}
	log.Info().Bool("required", authRequired).Msg("auth service initialized")

	// Initialize building and schedule services
	buildingService := building.NewService(building.ServiceConfig{
		Repository: building.NewPostgresRepository(pool),
		Logger:     log,
	})
	scheduleService := schedule.NewService(schedule.NewPostgresRepository(pool))

	// Initialize the transit feed providers
	departureProvider := mtd.NewClient(mtd.ClientConfig{
		APIKey:  os.Getenv("MTD_API_KEY"),
		BaseURL: os.Getenv("MTD_BASE_URL"),
		Logger:  log,
	})

	var vehicleProvider transit.VehicleProvider = departureProvider
	if url := os.Getenv("GTFSRT_VEHICLES_URL"); url != "" {
		vehicleProvider = gtfsrt.NewFeed(gtfsrt.FeedConfig{
			VehiclePositionsURL: url,
			Logger:              log,
		})
		log.Info().Str("url", url).Msg("using GTFS-realtime vehicle feed")
	}

	transitService := transit.NewService(transit.ServiceConfig{
		Departures: departureProvider,
		Vehicles:   vehicleProvider,
		Logger:     log,
	})
	log.Info().Msg("transit service initialized")

	// Initialize geocoding and walking directions
	geocodeService := geocode.NewService(geocode.ServiceConfig{
		Provider: nominatim.NewClient(nominatim.ClientConfig{
			BaseURL: os.Getenv("NOMINATIM_BASE_URL"),
			Logger:  log,
		}),
		Logger: log,
	})

	directionsService := directions.NewService(directions.ServiceConfig{
		Provider: osrm.NewClient(osrm.ClientConfig{
			BaseURL: os.Getenv("OSRM_BASE_URL"),
			Logger:  log,
		}),
		Logger: log,
	})

	// Initialize the AI option ranker (disabled without an API key)
	ranker := ai.NewRanker(ai.RankerConfig{
		Client: ai.NewClient(ai.ClientConfig{
			APIKey: os.Getenv("ANTHROPIC_API_KEY"),
			Model:  os.Getenv("ANTHROPIC_MODEL"),
			Logger: log,
		}),
		Logger: log,
	})
	log.Info().Bool("enabled", ranker.Enabled()).Msg("option ranker initialized")

	// Wire the recommendation engine
	recommendService := recommend.NewService(recommend.Config{
		Provider: dataprovider.New(dataprovider.Config{
			Buildings: buildingService,
			Stops:     stopsRepo,
			Transit:   transitService,
			Logger:    log,
		}),
		Logger: log,
	})
	log.Info().Msg("recommendation service initialized")

	var corsOrigins []string
	if raw := os.Getenv("CORS_ALLOWED_ORIGINS"); raw != "" {
		for _, origin := range strings.Split(raw, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				corsOrigins = append(corsOrigins, origin)
			}
		}
	}

	// Create router with configuration
	router := api.NewRouter(api.RouterConfig{
		Version:            Version,
		BuildTime:          BuildTime,
		Logger:             log,
		ServiceName:        serviceName,
		Metrics:            metrics,
		CORSAllowedOrigins: corsOrigins,
		AuthService:        authService,
		RecommendService:   recommendService,
		Ranker:             ranker,
		TransitService:     transitService,
		StopsRepository:    stopsRepo,
		BuildingService:    buildingService,
		ScheduleService:    scheduleService,
		GeocodeService:     geocodeService,
		DirectionsService:  directionsService,
		GTFSService: gtfs.NewService(gtfs.ServiceConfig{
			Repository: gtfsRepo,
			Logger:     log,
		}),
		ProviderRegistry: resilience.GlobalRegistry,
		ReadinessChecks: map[string]handler.ReadinessChecker{
			"postgres": func() error {
				pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
				defer cancel()
				return pool.Ping(pingCtx)
			},
			"transit-db": func() error {
				pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
				defer cancel()
				return transitDB.PingContext(pingCtx)
			},
		},
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().
			Str("addr", server.Addr).
			Msg("server listening")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
		os.Exit(1)
	}

	log.Info().Msg("server stopped")
}

// openDataset opens a loader-produced SQLite file, creating an empty one
// when it does not exist yet so the API can start before the first load.
// The second return value reports whether the file was just created.
func openDataset(ctx context.Context, log zerolog.Logger, path string) (*sql.DB, bool) {
	created := false
	if _, err := os.Stat(path); os.IsNotExist(err) {
		log.Warn().Str("path", path).Msg("dataset file missing - starting with an empty dataset")
		created = true
	}

	db, err := database.OpenSQLite(ctx, path, created)
	if err != nil {
		log.Fatal().Err(err).Str("path", path).Msg("failed to open sqlite dataset")
	}
	return db, created
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
