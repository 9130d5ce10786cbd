package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quadroute/quadroute/internal/api/models"
	"github.com/quadroute/quadroute/internal/provider/resilience"
	"github.com/quadroute/quadroute/internal/transit"
)

func TestOpsHandler_HealthCheck(t *testing.T) {
	h := NewOpsHandler("1.2.3", "2026-01-01T00:00:00Z", nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/v1/ops/health", http.NoBody)
	w := httptest.NewRecorder()
	h.HealthCheck(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var health models.Health
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &health))
	assert.Equal(t, models.HealthStatusOK, health.Status)
	assert.Equal(t, "1.2.3", health.Details["version"])
}

func TestOpsHandler_ReadinessCheck_AllPassing(t *testing.T) {
	h := NewOpsHandler("test", "", nil, nil)
	h.AddReadinessCheck("postgres", func() error { return nil })

	req := httptest.NewRequest(http.MethodGet, "/v1/ops/ready", http.NoBody)
	w := httptest.NewRecorder()
	h.ReadinessCheck(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var health models.Health
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &health))
	assert.Equal(t, models.HealthStatusOK, health.Status)
	assert.Equal(t, "ok", health.Details["postgres"])
}

func TestOpsHandler_ReadinessCheck_FailingDependency(t *testing.T) {
	h := NewOpsHandler("test", "", nil, nil)
	h.AddReadinessCheck("postgres", func() error { return nil })
	h.AddReadinessCheck("stops-db", func() error { return errors.New("database is locked") })

	req := httptest.NewRequest(http.MethodGet, "/v1/ops/ready", http.NoBody)
	w := httptest.NewRecorder()
	h.ReadinessCheck(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	var health models.Health
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &health))
	assert.Equal(t, models.HealthStatusFail, health.Status)
	assert.Equal(t, "database is locked", health.Details["stops-db"])
}

func TestOpsHandler_SystemStatus_ReportsProviders(t *testing.T) {
	registry := resilience.NewRegistry()
	cfg := resilience.DefaultClientConfig("nominatim")
	cfg.Registry = registry
	resilience.NewClient(cfg)
	registry.RecordFailure("nominatim", errors.New("upstream timeout"))

	h := NewOpsHandler("test", "", registry, nil)

	req := httptest.NewRequest(http.MethodGet, "/v1/ops/status", http.NoBody)
	w := httptest.NewRecorder()
	h.SystemStatus(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var status models.SystemStatus
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &status))
	require.Len(t, status.Providers, 1)
	assert.Equal(t, "nominatim", status.Providers[0].Provider)
	assert.Equal(t, models.HealthStatusOK, status.Providers[0].Status)
	assert.Equal(t, "closed", status.Providers[0].CircuitState)
	assert.Equal(t, "upstream timeout", status.Providers[0].LastError)
	assert.NotNil(t, status.Providers[0].LastFailureAt)

	// One failure recorded outside the breaker does not degrade the system
	assert.Equal(t, models.HealthStatusOK, status.Status)
}

func TestProviderHealthStatus(t *testing.T) {
	tests := []struct {
		state gobreaker.State
		want  models.HealthStatus
	}{
		{gobreaker.StateClosed, models.HealthStatusOK},
		{gobreaker.StateHalfOpen, models.HealthStatusDegraded},
		{gobreaker.StateOpen, models.HealthStatusFail},
	}

	for _, tt := range tests {
		got := providerHealthStatus(&resilience.ProviderHealth{CircuitState: tt.state})
		assert.Equal(t, tt.want, got, "state %s", tt.state)
	}
}

func TestTransitCacheDetail(t *testing.T) {
	detail := transitCacheDetail(transit.CacheStats{DepartureCacheEntries: 4})
	assert.Equal(t, "departure entries: 4", detail)

	detail = transitCacheDetail(transit.CacheStats{
		DepartureCacheEntries: 4,
		HasVehicleCache:       true,
		VehicleCount:          12,
	})
	assert.Equal(t, "departure entries: 4, vehicles cached: 12", detail)
}
