// Package main provides the entrypoint for the QuadRoute cache warm worker.
package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/quadroute/quadroute/internal/transit"
	"github.com/quadroute/quadroute/internal/transit/gtfsrt"
	"github.com/quadroute/quadroute/internal/transit/mtd"
	"github.com/quadroute/quadroute/internal/worker"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "quadroute-worker"

	_ = godotenv.Load()

	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	log.Info().
		Str("build_time", BuildTime).
		Msg("starting QuadRoute worker")

	port := getEnvOrDefault("APP_PORT", "8080")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

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
	}

	transitService := transit.NewService(transit.ServiceConfig{
		Departures: departureProvider,
		Vehicles:   vehicleProvider,
		Logger:     log,
	})

	refreshConfig := worker.DefaultRefreshConfig()
	if raw := os.Getenv("REFRESH_STOP_IDS"); raw != "" {
		var stopIDs []string
		for _, id := range strings.Split(raw, ",") {
			if id = strings.TrimSpace(id); id != "" {
				stopIDs = append(stopIDs, id)
			}
		}
		refreshConfig.StopIDs = stopIDs
	}
	if raw := os.Getenv("REFRESH_CONCURRENCY"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			refreshConfig.Concurrency = n
		}
	}

	refreshJob := worker.NewRefreshJob(worker.RefreshJobConfig{
		Config:         refreshConfig,
		Logger:         log,
		TransitService: transitService,
	})

	// Health endpoint for the container runtime
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"status":  "healthy",
			"version": Version,
			"metrics": refreshJob.MetricsSnapshot(),
		})
	})

	server := &http.Server{
		Addr:         ":" + port,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("health server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("health server error")
		}
	}()

	// Pub/Sub subscription drives the jobs; without one, fall back to a
	// local timer so development environments still get warm caches.
	projectID := os.Getenv("PUBSUB_PROJECT_ID")
	subscription := os.Getenv("PUBSUB_SUBSCRIPTION")

	if projectID != "" && subscription != "" {
		handler, err := worker.NewPubSubHandler(ctx, worker.PubSubConfig{
			ProjectID:        projectID,
			SubscriptionName: subscription,
			RefreshJob:       refreshJob,
			Logger:           log,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create pubsub handler")
		}
		defer handler.Close()

		go func() {
			if err := handler.Start(ctx); err != nil && ctx.Err() == nil {
				log.Fatal().Err(err).Msg("pubsub receive failed")
			}
		}()
		log.Info().
			Str("project", projectID).
			Str("subscription", subscription).
			Msg("worker started, waiting for messages")
	} else {
		log.Warn().Msg("pubsub not configured - running on a local refresh timer")
		go runLocalTimer(ctx, log, refreshJob)
	}

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down worker")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("health server forced to shutdown")
	}

	log.Info().Msg("worker stopped")
}

func runLocalTimer(ctx context.Context, log zerolog.Logger, job *worker.RefreshJob) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_ = job.Run(ctx)
			if err := job.RefreshVehicles(ctx); err != nil {
				log.Warn().Err(err).Msg("vehicle refresh failed")
			}
		}
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
