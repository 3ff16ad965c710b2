package api

import (
	"bufio"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/Atiwari330/hub-agent-sub001/internal/api/handlers"
	"github.com/Atiwari330/hub-agent-sub001/pkg/logger"
)

// Handlers groups everything the router mounts
type Handlers struct {
	Health   *handlers.HealthHandler
	Queues   *handlers.QueueHandler
	Deals    *handlers.DealHandler
	Fiscal   *handlers.FiscalHandler
	Realtime http.Handler // websocket upgrade endpoint
}

// NewRouter creates and configures the HTTP router
// ⭐ SSOT: routing is configured only in this function
func NewRouter(h Handlers, log *logger.Logger) http.Handler {
	r := mux.NewRouter()

	// Health check
	r.HandleFunc("/health", h.Health.GetHealth).Methods("GET")

	// Realtime push
	if h.Realtime != nil {
		r.Handle("/ws", h.Realtime).Methods("GET")
	}

	// API v1
	api := r.PathPrefix("/api").Subrouter()

	// Queue endpoints
	api.HandleFunc("/queues/hygiene", h.Queues.GetHygiene).Methods("GET")
	api.HandleFunc("/queues/stalled", h.Queues.GetStalled).Methods("GET")
	api.HandleFunc("/queues/at-risk", h.Queues.GetAtRisk).Methods("GET")
	api.HandleFunc("/queues/next-step", h.Queues.GetNextStep).Methods("GET")
	api.HandleFunc("/queues/week1", h.Queues.GetWeek1).Methods("GET")

	// Deal endpoints
	api.HandleFunc("/deals/{id}/classification", h.Deals.GetClassification).Methods("GET")
	api.HandleFunc("/deals/{id}/commitments", h.Deals.CreateCommitment).Methods("POST")
	api.HandleFunc("/deals/{id}/commitments/clear", h.Deals.ClearCommitment).Methods("POST")

	// Fiscal endpoints
	api.HandleFunc("/fiscal/current", h.Fiscal.GetCurrent).Methods("GET")

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "Not found")
	})

	// Apply middleware
	r.Use(loggingMiddleware(log))
	r.Use(recoveryMiddleware(log))

	return r
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{
		"error": message,
	})
}

// statusRecorder captures the response status for request logging
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Hijack passes through to the underlying writer for websocket upgrades
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hj, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	return hj.Hijack()
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			log.WithFields(map[string]interface{}{
				"method":   r.Method,
				"path":     r.URL.Path,
				"status":   rec.status,
				"duration": time.Since(start),
			}).Debug("HTTP request")
		})
	}
}

// recoveryMiddleware recovers from panics
func recoveryMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					log.WithFields(map[string]interface{}{
						"error": err,
						"path":  r.URL.Path,
					}).Error("Panic recovered")

					writeError(w, http.StatusInternalServerError, "Internal server error")
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
