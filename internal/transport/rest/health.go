package rest

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/frahmantamala/hospital-admin/internal/auth"
	"github.com/jmoiron/sqlx"
)

type HealthStatus string

const (
	HealthHealthy   HealthStatus = "healthy"
	HealthDegraded  HealthStatus = "degraded"
	HealthUnhealthy HealthStatus = "unhealthy"
)

const healthTimeout = 2 * time.Second

type HealthResponse struct {
	Status     HealthStatus          `json:"status"`
	CheckedAt  time.Time             `json:"checked_at"`
	Components map[string]CheckEntry `json:"components"`
}

type CheckEntry struct {
	Status     HealthStatus   `json:"status"`
	Message    string         `json:"message,omitempty"`
	Details    map[string]any `json:"details,omitempty"`
	DurationMs int64          `json:"duration_ms"`
}

// HealthHandler reports on the shared connection pool and on whether the service can be
// administered at all, which needs the manage_permissions permission to exist.
type HealthHandler struct {
	db *sqlx.DB
}

func NewHealthHandler(db *sqlx.DB) *HealthHandler {
	return &HealthHandler{db: db}
}

// pingHandler reports the process is up.
func (h *HealthHandler) pingHandler(w http.ResponseWriter, r *http.Request) {
	writeHealthJSON(w, http.StatusOK, map[string]string{"status": "OK"})
}

// healthCheckHandler answers 503 only when the database is unreachable. A missing
// bootstrap permission degrades the report but the API still serves logins.
func (h *HealthHandler) healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()

	database := h.checkDatabase(ctx)
	components := map[string]CheckEntry{"database": database}

	status := HealthHealthy
	if database.Status == HealthUnhealthy {
		status = HealthUnhealthy
	} else {
		bootstrap := h.checkBootstrap(ctx)
		components["bootstrap"] = bootstrap
		if bootstrap.Status != HealthHealthy {
			status = HealthDegraded
		}
	}

	code := http.StatusOK
	if status == HealthUnhealthy {
		code = http.StatusServiceUnavailable
	}
	writeHealthJSON(w, code, HealthResponse{
		Status:     status,
		CheckedAt:  time.Now(),
		Components: components,
	})
}

func (h *HealthHandler) checkDatabase(ctx context.Context) CheckEntry {
	start := time.Now()
	err := h.db.PingContext(ctx)
	stats := h.db.Stats()

	entry := CheckEntry{
		Status: HealthHealthy,
		Details: map[string]any{
			"driver":           h.db.DriverName(),
			"open_connections": stats.OpenConnections,
			"in_use":           stats.InUse,
			"idle":             stats.Idle,
		},
		DurationMs: time.Since(start).Milliseconds(),
	}
	if err != nil {
		entry.Status = HealthUnhealthy
		entry.Message = err.Error()
	}
	return entry
}

func (h *HealthHandler) checkBootstrap(ctx context.Context) CheckEntry {
	start := time.Now()
	var n int
	err := h.db.GetContext(ctx, &n, h.db.Rebind("SELECT COUNT(*) FROM permissions WHERE name = ?"), auth.ManagePermissions)

	entry := CheckEntry{Status: HealthHealthy, DurationMs: time.Since(start).Milliseconds()}
	switch {
	case err != nil:
		entry.Status = HealthDegraded
		entry.Message = "permissions table unavailable, run migrate"
	case n == 0:
		entry.Status = HealthDegraded
		entry.Message = auth.ManagePermissions + " is missing, run seed"
	}
	return entry
}

func writeHealthJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
