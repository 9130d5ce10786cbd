package models

// Health represents the liveness or readiness state of the service.
type Health struct {
	Status  HealthStatus           `json:"status"`
	Time    Timestamp              `json:"time"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// SystemStatus represents the overall system status reported by the ops
// status endpoint.
type SystemStatus struct {
	Status     HealthStatus      `json:"status"`
	Time       Timestamp         `json:"time"`
	Version    string            `json:"version"`
	Subsystems []SubsystemStatus `json:"subsystems"`
	Providers  []ProviderStatus  `json:"providers"`
}

// SubsystemStatus represents the status of an internal subsystem such as a
// datastore or cache.
type SubsystemStatus struct {
	Name   string       `json:"name"`
	Status HealthStatus `json:"status"`
	Detail *string      `json:"detail,omitempty"`
}

// ProviderStatus represents the circuit state of an external provider.
type ProviderStatus struct {
	Provider      string       `json:"provider"`
	Status        HealthStatus `json:"status"`
	CircuitState  string       `json:"circuit_state"`
	Requests      uint32       `json:"requests"`
	TotalFailures uint32       `json:"total_failures"`
	LastSuccessAt *Timestamp   `json:"last_success_at,omitempty"`
	LastFailureAt *Timestamp   `json:"last_failure_at,omitempty"`
	LastError     string       `json:"last_error,omitempty"`
}
