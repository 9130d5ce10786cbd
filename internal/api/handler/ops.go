// Package handler provides HTTP handlers for the QuadRoute API.
package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/quadroute/quadroute/internal/api/models"
	"github.com/quadroute/quadroute/internal/api/response"
	"github.com/quadroute/quadroute/internal/provider/resilience"
	"github.com/quadroute/quadroute/internal/transit"
)

// ReadinessChecker reports whether a subsystem can serve requests.
type ReadinessChecker func() error

// OpsHandler handles operational endpoints.
type OpsHandler struct {
	version   string
	buildTime string
	registry  *resilience.Registry
	transit   *transit.Service
	checks    map[string]ReadinessChecker
}

// NewOpsHandler creates a new OpsHandler. The registry and transit service
// may be nil; the status endpoint then omits the corresponding sections.
func NewOpsHandler(version, buildTime string, registry *resilience.Registry, transitSvc *transit.Service) *OpsHandler {
	return &OpsHandler{
		version:   version,
		buildTime: buildTime,
		registry:  registry,
		transit:   transitSvc,
		checks:    make(map[string]ReadinessChecker),
	}
}

// AddReadinessCheck registers a named dependency check for the readiness
// endpoint. Not safe to call after the router starts serving.
func (h *OpsHandler) AddReadinessCheck(name string, check ReadinessChecker) {
	h.checks[name] = check
}

// HealthCheck handles GET /v1/ops/health - liveness check.
func (h *OpsHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	health := models.Health{
		Status: models.HealthStatusOK,
		Time:   models.Timestamp(time.Now()),
		Details: map[string]interface{}{
			"version":   h.version,
			"buildTime": h.buildTime,
		},
	}
	response.JSON(w, r, http.StatusOK, health)
}

// ReadinessCheck handles GET /v1/ops/ready - readiness check. Fails with 503
// when any registered dependency check fails.
func (h *OpsHandler) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	status := models.HealthStatusOK
	details := make(map[string]interface{})

	for name, check := range h.checks {
		if err := check(); err != nil {
			status = models.HealthStatusFail
			details[name] = err.Error()
		} else {
			details[name] = "ok"
		}
	}

	health := models.Health{
		Status: status,
		Time:   models.Timestamp(time.Now()),
	}
	if len(details) > 0 {
		health.Details = details
	}

	code := http.StatusOK
	if status == models.HealthStatusFail {
		code = http.StatusServiceUnavailable
	}
	response.JSON(w, r, code, health)
}

// SystemStatus handles GET /v1/ops/status - provider circuit and cache
// status.
func (h *OpsHandler) SystemStatus(w http.ResponseWriter, r *http.Request) {
	now := models.Timestamp(time.Now())
	status := models.SystemStatus{
		Status:  models.HealthStatusOK,
		Time:    now,
		Version: h.version,
	}

	if h.registry != nil {
		for _, ph := range h.registry.GetAllHealth() {
			ps := models.ProviderStatus{
				Provider:      ph.Name,
				Status:        providerHealthStatus(ph),
				CircuitState:  ph.CircuitState.String(),
				Requests:      ph.Counts.Requests,
				TotalFailures: ph.Counts.TotalFailures,
				LastError:     ph.LastError,
			}
			if ph.LastSuccessAt != nil {
				ts := models.Timestamp(*ph.LastSuccessAt)
				ps.LastSuccessAt = &ts
			}
			if ph.LastFailureAt != nil {
				ts := models.Timestamp(*ph.LastFailureAt)
				ps.LastFailureAt = &ts
			}
			status.Providers = append(status.Providers, ps)

			if ps.Status == models.HealthStatusFail {
				status.Status = models.HealthStatusDegraded
			}
		}
	}

	if h.transit != nil {
		stats := h.transit.CacheStats()
		detail := transitCacheDetail(stats)
		status.Subsystems = append(status.Subsystems, models.SubsystemStatus{
			Name:   "transit-cache",
			Status: models.HealthStatusOK,
			Detail: &detail,
		})
	}

	response.JSON(w, r, http.StatusOK, status)
}

func providerHealthStatus(ph *resilience.ProviderHealth) models.HealthStatus {
	switch ph.CircuitState {
	case gobreaker.StateOpen:
		return models.HealthStatusFail
	case gobreaker.StateHalfOpen:
		return models.HealthStatusDegraded
	default:
		return models.HealthStatusOK
	}
}

func transitCacheDetail(stats transit.CacheStats) string {
	detail := fmt.Sprintf("departure entries: %d", stats.DepartureCacheEntries)
	if stats.HasVehicleCache {
		detail += fmt.Sprintf(", vehicles cached: %d", stats.VehicleCount)
	}
	return detail
}
