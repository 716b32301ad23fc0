package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/Noah170803/eventio/internal/metrics"
)

// HealthCheck represents the health status of the server
type HealthCheck struct {
	Status    string                 `json:"status"`
	Version   string                 `json:"version"`
	GitCommit string                 `json:"git_commit"`
	Backend   string                 `json:"backend"`
	Checks    map[string]CheckResult `json:"checks"`
	Timestamp string                 `json:"timestamp"`
}

// CheckResult represents the result of a single health check
type CheckResult struct {
	Status    string                 `json:"status"`
	Message   string                 `json:"message,omitempty"`
	LatencyMs int64                  `json:"latency_ms,omitempty"`
	Details   map[string]interface{} `json:"details,omitempty"`
}

// Pinger is satisfied by storage.Repository.
type Pinger interface {
	Ping(ctx context.Context) error
}

// MigrationVersionFunc reports the applied schema version and dirty flag.
type MigrationVersionFunc func(ctx context.Context) (uint, bool, error)

// HealthChecker runs the database and migration checks behind /health and
// /readyz.
type HealthChecker struct {
	db         Pinger
	migrations MigrationVersionFunc
	backend    string
	version    string
	gitCommit  string
	now        func() time.Time
}

// NewHealthChecker creates a new health checker with the given dependencies
func NewHealthChecker(db Pinger, migrations MigrationVersionFunc, backend, version, gitCommit string) *HealthChecker {
	return &HealthChecker{
		db:         db,
		migrations: migrations,
		backend:    backend,
		version:    version,
		gitCommit:  gitCommit,
		now:        time.Now,
	}
}

// Health returns the detailed health report.
func (h *HealthChecker) Health() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "shutting_down"})
			return
		default:
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		checks := h.run(ctx)

		overallStatus := "healthy"
		statusCode := http.StatusOK
		for _, check := range checks {
			if check.Status == "fail" {
				overallStatus = "unhealthy"
				statusCode = http.StatusServiceUnavailable
				break
			} else if check.Status == "warn" && overallStatus == "healthy" {
				overallStatus = "degraded"
			}
		}

		writeJSON(w, statusCode, HealthCheck{
			Status:    overallStatus,
			Version:   h.version,
			GitCommit: h.gitCommit,
			Backend:   h.backend,
			Checks:    checks,
			Timestamp: h.now().UTC().Format(time.RFC3339),
		})
	}
}

// Readyz answers 200 when the database is reachable and migrated.
func (h *HealthChecker) Readyz() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		for name, check := range h.run(ctx) {
			if check.Status == "fail" {
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "not_ready", "failed": name})
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

// Healthz is the liveness probe; it never touches the database.
func Healthz() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

func (h *HealthChecker) run(ctx context.Context) map[string]CheckResult {
	checks := map[string]CheckResult{
		"database":   h.checkDatabase(ctx),
		"migrations": h.checkMigrations(ctx),
	}
	for name, check := range checks {
		metrics.HealthCheckStatus.WithLabelValues(name).Set(statusValue(check.Status))
		metrics.HealthCheckLatency.WithLabelValues(name).Set(float64(check.LatencyMs))
	}
	return checks
}

func statusValue(status string) float64 {
	switch status {
	case "pass":
		return 2
	case "warn":
		return 1
	default:
		return 0
	}
}

func (h *HealthChecker) checkDatabase(ctx context.Context) CheckResult {
	if h.db == nil {
		return CheckResult{
			Status:  "fail",
			Message: "Database not initialized",
			Details: map[string]interface{}{
				"remediation": "Check that DATABASE_URL is set correctly",
			},
		}
	}

	// Per-check timeout so one slow check cannot starve the other
	dbCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	start := time.Now()
	err := h.db.Ping(dbCtx)
	latency := time.Since(start).Milliseconds()
	if err != nil {
		message := "Database ping failed"
		if dbCtx.Err() == context.DeadlineExceeded {
			message = "Database ping timed out after 2 seconds"
		}
		return CheckResult{
			Status:    "fail",
			Message:   message,
			LatencyMs: latency,
			Details:   map[string]interface{}{"error": err.Error()},
		}
	}

	return CheckResult{
		Status:    "pass",
		Message:   fmt.Sprintf("%s connection successful", h.backend),
		LatencyMs: latency,
	}
}

func (h *HealthChecker) checkMigrations(ctx context.Context) CheckResult {
	if h.migrations == nil {
		return CheckResult{
			Status:  "warn",
			Message: "Migration check not configured",
		}
	}

	migCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	start := time.Now()
	version, dirty, err := h.migrations(migCtx)
	latency := time.Since(start).Milliseconds()
	if err != nil {
		return CheckResult{
			Status:    "fail",
			Message:   "Failed to read migration version",
			LatencyMs: latency,
			Details: map[string]interface{}{
				"error":       err.Error(),
				"remediation": "Run: server migrate up",
			},
		}
	}

	if dirty {
		return CheckResult{
			Status:    "fail",
			Message:   "Database in dirty migration state - manual intervention required",
			LatencyMs: latency,
			Details: map[string]interface{}{
				"version": version,
				"dirty":   dirty,
				"action":  "Do NOT run new migrations until this is resolved",
			},
		}
	}

	if version == 0 {
		return CheckResult{
			Status:    "fail",
			Message:   "No migrations applied",
			LatencyMs: latency,
			Details: map[string]interface{}{
				"remediation": "Run: server migrate up",
			},
		}
	}

	return CheckResult{
		Status:    "pass",
		Message:   fmt.Sprintf("Migrations applied successfully (version %d)", version),
		LatencyMs: latency,
		Details: map[string]interface{}{
			"version": version,
			"dirty":   false,
		},
	}
}
