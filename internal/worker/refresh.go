package worker

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/quadroute/quadroute/internal/transit"
)

// RefreshJob warms the transit caches so riders between classes hit warm
// departure boards instead of waiting on the upstream feed.
type RefreshJob struct {
	config RefreshConfig
	logger zerolog.Logger

	transitService *transit.Service

	metrics *RefreshMetrics
}

// RefreshMetrics tracks refresh job statistics.
type RefreshMetrics struct {
	mu sync.RWMutex

	// Counters
	TotalRefreshes    int64
	SuccessfulRefresh int64
	FailedRefreshes   int64
	DepartureRefresh  int64
	VehicleRefresh    int64

	// Timings
	LastRefreshAt       time.Time
	LastRefreshDuration time.Duration
	TotalDuration       time.Duration
}

// RefreshJobConfig holds configuration for creating a RefreshJob.
type RefreshJobConfig struct {
	Config         RefreshConfig
	Logger         zerolog.Logger
	TransitService *transit.Service
}

// NewRefreshJob creates a new refresh job processor.
func NewRefreshJob(cfg RefreshJobConfig) *RefreshJob {
	config := cfg.Config
	if len(config.StopIDs) == 0 {
		config = DefaultRefreshConfig()
	}
	if config.Concurrency <= 0 {
		config.Concurrency = 3
	}
	if config.Timeout <= 0 {
		config.Timeout = 30 * time.Second
	}
	if config.DepartureWindowMins <= 0 {
		config.DepartureWindowMins = 30
	}

	return &RefreshJob{
		config:         config,
		logger:         cfg.Logger,
		transitService: cfg.TransitService,
		metrics:        &RefreshMetrics{},
	}
}

// RefreshResult contains the result of a refresh operation.
type RefreshResult struct {
	StartTime  time.Time
	EndTime    time.Time
	Duration   time.Duration
	TotalStops int
	Successful int
	Failed     int
	Errors     []RefreshError
}

// RefreshError represents an error during refresh.
type RefreshError struct {
	StopID string
	Error  string
}

// Run warms the departure board cache for all configured stops.
func (j *RefreshJob) Run(ctx context.Context) *RefreshResult {
	startTime := time.Now()
	result := &RefreshResult{
		StartTime:  startTime,
		TotalStops: j.config.TotalStops(),
	}

	if !j.config.RefreshDepartures || j.transitService == nil {
		result.EndTime = time.Now()
		return result
	}

	j.logger.Info().
		Int("total_stops", result.TotalStops).
		Int("concurrency", j.config.Concurrency).
		Msg("starting departures warm job")

	stopsChan := make(chan string, len(j.config.StopIDs))
	resultsChan := make(chan stopResult, len(j.config.StopIDs))

	var wg sync.WaitGroup
	for i := 0; i < j.config.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			j.refreshWorker(ctx, stopsChan, resultsChan)
		}()
	}

	for _, stopID := range j.config.StopIDs {
		stopsChan <- stopID
	}
	close(stopsChan)

	go func() {
		wg.Wait()
		close(resultsChan)
	}()

	for sr := range resultsChan {
		if sr.err == nil {
			result.Successful++
			atomic.AddInt64(&j.metrics.DepartureRefresh, 1)
		} else {
			result.Failed++
			result.Errors = append(result.Errors, RefreshError{
				StopID: sr.stopID,
				Error:  sr.err.Error(),
			})
		}
	}

	result.EndTime = time.Now()
	result.Duration = result.EndTime.Sub(startTime)

	j.updateMetrics(result)

	j.logger.Info().
		Dur("duration", result.Duration).
		Int("successful", result.Successful).
		Int("failed", result.Failed).
		Msg("departures warm job completed")

	return result
}

type stopResult struct {
	stopID string
	err    error
}

func (j *RefreshJob) refreshWorker(ctx context.Context, stopIDs <-chan string, results chan<- stopResult) {
	for stopID := range stopIDs {
		select {
		case <-ctx.Done():
			return
		default:
			results <- stopResult{stopID: stopID, err: j.refreshStop(ctx, stopID)}
		}
	}
}

func (j *RefreshJob) refreshStop(ctx context.Context, stopID string) error {
	stopCtx, cancel := context.WithTimeout(ctx, j.config.Timeout)
	defer cancel()

	// Fetching through the service populates its cache.
	_, err := j.transitService.Departures(stopCtx, stopID, j.config.DepartureWindowMins)
	return err
}

// RefreshVehicles warms the vehicle position cache. Vehicles are not
// per-stop, so one fetch covers the whole fleet.
func (j *RefreshJob) RefreshVehicles(ctx context.Context) error {
	if !j.config.RefreshVehicles || j.transitService == nil {
		return nil
	}

	j.logger.Debug().Msg("refreshing vehicle positions")

	vehicleCtx, cancel := context.WithTimeout(ctx, j.config.Timeout)
	defer cancel()

	if _, err := j.transitService.Vehicles(vehicleCtx, ""); err != nil {
		j.logger.Error().Err(err).Msg("failed to refresh vehicle positions")
		return err
	}

	atomic.AddInt64(&j.metrics.VehicleRefresh, 1)
	return nil
}

func (j *RefreshJob) updateMetrics(result *RefreshResult) {
	j.metrics.mu.Lock()
	defer j.metrics.mu.Unlock()

	j.metrics.TotalRefreshes++
	j.metrics.SuccessfulRefresh += int64(result.Successful)
	j.metrics.FailedRefreshes += int64(result.Failed)
	j.metrics.LastRefreshAt = result.EndTime
	j.metrics.LastRefreshDuration = result.Duration
	j.metrics.TotalDuration += result.Duration
}

// GetMetrics returns a copy of the current metrics.
func (j *RefreshJob) GetMetrics() RefreshMetrics {
	j.metrics.mu.RLock()
	defer j.metrics.mu.RUnlock()

	return RefreshMetrics{
		TotalRefreshes:      j.metrics.TotalRefreshes,
		SuccessfulRefresh:   j.metrics.SuccessfulRefresh,
		FailedRefreshes:     j.metrics.FailedRefreshes,
		DepartureRefresh:    atomic.LoadInt64(&j.metrics.DepartureRefresh),
		VehicleRefresh:      atomic.LoadInt64(&j.metrics.VehicleRefresh),
		LastRefreshAt:       j.metrics.LastRefreshAt,
		LastRefreshDuration: j.metrics.LastRefreshDuration,
		TotalDuration:       j.metrics.TotalDuration,
	}
}

// MetricsSnapshot returns a snapshot of the current metrics as a map.
func (j *RefreshJob) MetricsSnapshot() map[string]interface{} {
	m := j.GetMetrics()
	return map[string]interface{}{
		"total_refreshes":       m.TotalRefreshes,
		"successful_refreshes":  m.SuccessfulRefresh,
		"failed_refreshes":      m.FailedRefreshes,
		"departure_refreshes":   m.DepartureRefresh,
		"vehicle_refreshes":     m.VehicleRefresh,
		"last_refresh_at":       m.LastRefreshAt,
		"last_refresh_duration": m.LastRefreshDuration.String(),
		"total_duration":        m.TotalDuration.String(),
	}
}
