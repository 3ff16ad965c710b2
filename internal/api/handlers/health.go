package handlers

import (
	"net/http"
	"time"

	"github.com/Atiwari330/hub-agent-sub001/pkg/database"
	"github.com/Atiwari330/hub-agent-sub001/pkg/redis"
)

// ClientCounter reports connected realtime clients
type ClientCounter interface {
	ClientCount() int
}

// HealthHandler reports database, cache and realtime status
type HealthHandler struct {
	db      *database.DB
	redis   *redis.Client
	clients ClientCounter
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(db *database.DB, rc *redis.Client, clients ClientCounter) *HealthHandler {
	if rc == nil {
		rc = redis.Disabled()
	}
	return &HealthHandler{db: db, redis: rc, clients: clients}
}

// GetHealth returns service health. 503 when the database is unreachable.
// GET /health
func (h *HealthHandler) GetHealth(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	dbStatus, dbErr := h.db.HealthCheck(ctx)

	redisStatus := "disabled"
	if h.redis.Enabled() {
		redisStatus = "ok"
		if err := h.redis.Ping(ctx); err != nil {
			redisStatus = "unreachable"
		}
	}

	status := http.StatusOK
	overall := "ok"
	if dbErr != nil {
		status = http.StatusServiceUnavailable
		overall = "unhealthy"
	} else if redisStatus == "unreachable" {
		overall = "degraded"
	}

	clients := 0
	if h.clients != nil {
		clients = h.clients.ClientCount()
	}

	respondJSON(w, status, map[string]interface{}{
		"status":     overall,
		"service":    "hubagent-api",
		"database":   dbStatus,
		"redis":      redisStatus,
		"ws_clients": clients,
		"timestamp":  time.Now().UTC(),
	})
}
