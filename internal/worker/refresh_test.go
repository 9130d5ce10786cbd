package worker_test

import (
	"context"
	"errors"
	"io"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quadroute/quadroute/internal/transit"
	"github.com/quadroute/quadroute/internal/worker"
)

type countingDepartureProvider struct {
	calls atomic.Int64
	fail  bool
}

func (p *countingDepartureProvider) GetDeparturesByStop(_ context.Context, stopID string, _ int) ([]transit.Departure, error) {
	p.calls.Add(1)
	if p.fail {
		return nil, errors.New("feed unavailable")
	}
	return []transit.Departure{
		{StopID: stopID, Route: "22N", Headsign: "Illini North", ExpectedMins: 4},
	}, nil
}

func (p *countingDepartureProvider) Name() string { return "counting-departures" }

type countingVehicleProvider struct {
	calls atomic.Int64
	fail  bool
}

func (p *countingVehicleProvider) GetVehicles(_ context.Context) ([]transit.Vehicle, error) {
	p.calls.Add(1)
	if p.fail {
		return nil, errors.New("feed unavailable")
	}
	return []transit.Vehicle{{ID: "v1", RouteID: "22N"}}, nil
}

func (p *countingVehicleProvider) Name() string { return "counting-vehicles" }

func newTestTransitService(dep transit.DepartureProvider, veh transit.VehicleProvider) *transit.Service {
	return transit.NewService(transit.ServiceConfig{
		Departures: dep,
		Vehicles:   veh,
		Logger:     zerolog.New(io.Discard),
	})
}

func TestDefaultRefreshConfig(t *testing.T) {
	cfg := worker.DefaultRefreshConfig()

	assert.Equal(t, 3, cfg.Concurrency)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.Equal(t, 30, cfg.DepartureWindowMins)
	assert.True(t, cfg.RefreshDepartures)
	assert.True(t, cfg.RefreshVehicles)
	assert.NotEmpty(t, cfg.StopIDs)
}

func TestDefaultRefreshStopIDs(t *testing.T) {
	ids := worker.DefaultRefreshStopIDs()

	assert.GreaterOrEqual(t, len(ids), 5)
	assert.Contains(t, ids, "IU")
	assert.Contains(t, ids, "TRANSIT")
}

func TestRefreshJob_Run_WarmsAllStops(t *testing.T) {
	dep := &countingDepartureProvider{}
	svc := newTestTransitService(dep, nil)

	job := worker.NewRefreshJob(worker.RefreshJobConfig{
		Config: worker.RefreshConfig{
			StopIDs:           []string{"IU", "TRANSIT", "PAR"},
			Concurrency:       2,
			Timeout:           time.Second,
			RefreshDepartures: true,
		},
		Logger:         zerolog.Nop(),
		TransitService: svc,
	})

	result := job.Run(context.Background())

	require.NotNil(t, result)
	assert.Equal(t, 3, result.TotalStops)
	assert.Equal(t, 3, result.Successful)
	assert.Equal(t, 0, result.Failed)
	assert.Equal(t, int64(3), dep.calls.Load())
}

func TestRefreshJob_Run_CollectsFailures(t *testing.T) {
	dep := &countingDepartureProvider{fail: true}
	svc := newTestTransitService(dep, nil)

	job := worker.NewRefreshJob(worker.RefreshJobConfig{
		Config: worker.RefreshConfig{
			StopIDs:           []string{"IU", "TRANSIT"},
			Concurrency:       1,
			Timeout:           time.Second,
			RefreshDepartures: true,
		},
		Logger:         zerolog.Nop(),
		TransitService: svc,
	})

	result := job.Run(context.Background())

	assert.Equal(t, 0, result.Successful)
	assert.Equal(t, 2, result.Failed)
	require.Len(t, result.Errors, 2)
	assert.NotEmpty(t, result.Errors[0].StopID)
	assert.NotEmpty(t, result.Errors[0].Error)
}

func TestRefreshJob_Run_NoService(t *testing.T) {
	job := worker.NewRefreshJob(worker.RefreshJobConfig{
		Config: worker.RefreshConfig{
			StopIDs:           []string{"IU"},
			RefreshDepartures: true,
		},
		Logger: zerolog.Nop(),
	})

	result := job.Run(context.Background())

	require.NotNil(t, result)
	assert.Equal(t, 0, result.Successful)
	assert.Equal(t, 0, result.Failed)
}

func TestRefreshJob_Run_DeparturesDisabled(t *testing.T) {
	dep := &countingDepartureProvider{}
	svc := newTestTransitService(dep, nil)

	job := worker.NewRefreshJob(worker.RefreshJobConfig{
		Config: worker.RefreshConfig{
			StopIDs: []string{"IU"},
		},
		Logger:         zerolog.Nop(),
		TransitService: svc,
	})

	result := job.Run(context.Background())

	assert.Equal(t, 0, result.Successful)
	assert.Equal(t, int64(0), dep.calls.Load())
}

func TestRefreshJob_Run_ContextCancellation(t *testing.T) {
	stopIDs := make([]string, 100)
	for i := range stopIDs {
		stopIDs[i] = worker.DefaultRefreshStopIDs()[i%len(worker.DefaultRefreshStopIDs())]
	}

	dep := &countingDepartureProvider{}
	svc := newTestTransitService(dep, nil)

	job := worker.NewRefreshJob(worker.RefreshJobConfig{
		Config: worker.RefreshConfig{
			StopIDs:           stopIDs,
			Concurrency:       1,
			Timeout:           100 * time.Millisecond,
			RefreshDepartures: true,
		},
		Logger:         zerolog.Nop(),
		TransitService: svc,
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := job.Run(ctx)

	// Completes without processing everything
	assert.NotNil(t, result)
}

func TestRefreshJob_RefreshVehicles(t *testing.T) {
	veh := &countingVehicleProvider{}
	svc := newTestTransitService(nil, veh)

	job := worker.NewRefreshJob(worker.RefreshJobConfig{
		Config: worker.RefreshConfig{
			StopIDs:         []string{"IU"},
			RefreshVehicles: true,
		},
		Logger:         zerolog.Nop(),
		TransitService: svc,
	})

	require.NoError(t, job.RefreshVehicles(context.Background()))
	assert.Equal(t, int64(1), veh.calls.Load())

	metrics := job.GetMetrics()
	assert.Equal(t, int64(1), metrics.VehicleRefresh)
}

func TestRefreshJob_RefreshVehicles_NoService(t *testing.T) {
	job := worker.NewRefreshJob(worker.RefreshJobConfig{
		Config: worker.RefreshConfig{
			StopIDs:         []string{"IU"},
			RefreshVehicles: true,
		},
		Logger: zerolog.Nop(),
	})

	assert.NoError(t, job.RefreshVehicles(context.Background()))
}

func TestRefreshJob_RefreshVehicles_Disabled(t *testing.T) {
	veh := &countingVehicleProvider{}
	svc := newTestTransitService(nil, veh)

	job := worker.NewRefreshJob(worker.RefreshJobConfig{
		Config: worker.RefreshConfig{
			StopIDs: []string{"IU"},
		},
		Logger:         zerolog.Nop(),
		TransitService: svc,
	})

	assert.NoError(t, job.RefreshVehicles(context.Background()))
	assert.Equal(t, int64(0), veh.calls.Load())
}

func TestRefreshJob_GetMetrics(t *testing.T) {
	dep := &countingDepartureProvider{}
	svc := newTestTransitService(dep, nil)

	job := worker.NewRefreshJob(worker.RefreshJobConfig{
		Config: worker.RefreshConfig{
			StopIDs:           []string{"IU", "TRANSIT"},
			Concurrency:       1,
			Timeout:           time.Second,
			RefreshDepartures: true,
		},
		Logger:         zerolog.Nop(),
		TransitService: svc,
	})

	_ = job.Run(context.Background())

	metrics := job.GetMetrics()
	assert.Equal(t, int64(1), metrics.TotalRefreshes)
	assert.Equal(t, int64(2), metrics.SuccessfulRefresh)
	assert.Equal(t, int64(2), metrics.DepartureRefresh)
	assert.NotZero(t, metrics.LastRefreshAt)
}

func TestRefreshJob_MetricsSnapshot(t *testing.T) {
	dep := &countingDepartureProvider{}
	svc := newTestTransitService(dep, nil)

	job := worker.NewRefreshJob(worker.RefreshJobConfig{
		Config: worker.RefreshConfig{
			StopIDs:           []string{"IU"},
			Concurrency:       1,
			Timeout:           time.Second,
			RefreshDepartures: true,
		},
		Logger:         zerolog.Nop(),
		TransitService: svc,
	})

	_ = job.Run(context.Background())

	snapshot := job.MetricsSnapshot()

	assert.Contains(t, snapshot, "total_refreshes")
	assert.Contains(t, snapshot, "successful_refreshes")
	assert.Contains(t, snapshot, "failed_refreshes")
	assert.Contains(t, snapshot, "departure_refreshes")
	assert.Contains(t, snapshot, "vehicle_refreshes")
	assert.Contains(t, snapshot, "last_refresh_at")
}

func TestNewRefreshJob_DefaultConfig(t *testing.T) {
	job := worker.NewRefreshJob(worker.RefreshJobConfig{
		Config: worker.RefreshConfig{},
		Logger: zerolog.Nop(),
	})

	metrics := job.GetMetrics()
	assert.Equal(t, int64(0), metrics.TotalRefreshes)
}
