// Package handler provides HTTP handlers for the itinerary API.
package handler

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/suka712/anvago-travel-planning-v2-sub001/internal/api/models"
	"github.com/suka712/anvago-travel-planning-v2-sub001/internal/api/response"
	"github.com/suka712/anvago-travel-planning-v2-sub001/internal/provider/resilience"
)

// Pinger checks a dependency's connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// OpsConfig holds configuration for the ops handler.
type OpsConfig struct {
	Version   string
	BuildTime string

	// Subsystems are pinged by the readiness check, keyed by name.
	Subsystems map[string]Pinger

	// Providers reports upstream provider health. Optional.
	Providers *resilience.Registry

	// PingTimeout bounds each subsystem ping.
	// Default: 2 seconds
	PingTimeout time.Duration
}

// OpsHandler handles operational endpoints.
type OpsHandler struct {
	version     string
	buildTime   string
	subsystems  map[string]Pinger
	providers   *resilience.Registry
	pingTimeout time.Duration
}

// NewOpsHandler creates a new OpsHandler.
func NewOpsHandler(cfg OpsConfig) *OpsHandler {
	if cfg.PingTimeout <= 0 {
		cfg.PingTimeout = 2 * time.Second
	}
	return &OpsHandler{
		version:     cfg.Version,
		buildTime:   cfg.BuildTime,
		subsystems:  cfg.Subsystems,
		providers:   cfg.Providers,
		pingTimeout: cfg.PingTimeout,
	}
}

// HealthCheck handles GET /v1/ops/health - liveness check.
func (h *OpsHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, r, http.StatusOK, models.Health{
		Status: models.HealthStatusOK,
		Time:   models.Timestamp(time.Now()),
		Details: map[string]interface{}{
			"version":   h.version,
			"buildTime": h.buildTime,
		},
	})
}

// ReadinessCheck handles GET /v1/ops/ready. A failing subsystem makes the
// service unready; an unhealthy weather provider only degrades it, since
// planning falls back to no weather.
func (h *OpsHandler) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	ready := models.Readiness{
		Status:     models.HealthStatusOK,
		Time:       models.Timestamp(time.Now()),
		Subsystems: []models.SubsystemStatus{},
	}

	for _, name := range sortedKeys(h.subsystems) {
		ctx, cancel := context.WithTimeout(r.Context(), h.pingTimeout)
		err := h.subsystems[name].Ping(ctx)
		cancel()

		status := models.SubsystemStatus{Name: name, Status: models.HealthStatusOK}
		if err != nil {
			detail := err.Error()
			status.Status = models.HealthStatusFail
			status.Detail = &detail
			ready.Status = models.HealthStatusFail
		}
		ready.Subsystems = append(ready.Subsystems, status)
	}

	if h.providers != nil {
		for _, p := range h.providers.Snapshot() {
			status := providerStatus(p)
			if status.Status != models.HealthStatusOK && ready.Status == models.HealthStatusOK {
				ready.Status = models.HealthStatusDegraded
			}
			ready.Providers = append(ready.Providers, status)
		}
	}

	code := http.StatusOK
	if ready.Status == models.HealthStatusFail {
		code = http.StatusServiceUnavailable
	}
	response.JSON(w, r, code, ready)
}

func providerStatus(p *resilience.ProviderHealth) models.ProviderStatus {
	s := models.ProviderStatus{Provider: p.Name, Status: models.HealthStatusOK}
	switch {
	case p.IsUnhealthy():
		s.Status = models.HealthStatusFail
	case p.IsDegraded():
		s.Status = models.HealthStatusDegraded
	}
	if p.LastSuccessAt != nil {
		ts := models.Timestamp(*p.LastSuccessAt)
		s.LastSuccessAt = &ts
	}
	if p.LastFailureAt != nil {
		ts := models.Timestamp(*p.LastFailureAt)
		s.LastFailureAt = &ts
	}
	if p.LastError != "" {
		msg := p.LastError
		s.Message = &msg
	}
	return s
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
