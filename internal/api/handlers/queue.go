package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/Atiwari330/hub-agent-sub001/internal/contracts"
	"github.com/Atiwari330/hub-agent-sub001/internal/fiscal"
	"github.com/Atiwari330/hub-agent-sub001/internal/queue"
	"github.com/Atiwari330/hub-agent-sub001/pkg/logger"
)

// QueueHandler serves the dashboard work queues
// ⭐ SSOT: queue API handlers live only in this struct
type QueueHandler struct {
	queues *queue.Service
	fiscal *fiscal.Calculator
	logger *logger.Logger
}

// NewQueueHandler creates a new queue handler
func NewQueueHandler(queues *queue.Service, calc *fiscal.Calculator, log *logger.Logger) *QueueHandler {
	return &QueueHandler{
		queues: queues,
		fiscal: calc,
		logger: log,
	}
}

// parseFilter reads pipeline, owner and quarter query parameters
func (h *QueueHandler) parseFilter(r *http.Request) (queue.Filter, error) {
	q := r.URL.Query()

	filter := queue.Filter{OwnerID: strings.TrimSpace(q.Get("owner"))}

	if p := strings.TrimSpace(q.Get("pipeline")); p != "" {
		kind := contracts.PipelineKind(p)
		if !kind.Valid() {
			return filter, fmt.Errorf("invalid pipeline %q (expected sales, upsell or customer_success)", p)
		}
		filter.Pipeline = kind
	}

	switch quarter := q.Get("quarter"); quarter {
	case "":
	case "current":
		current := h.fiscal.CurrentQuarter()
		filter.ClosingIn = &current
	case "next":
		next := h.fiscal.Next(h.fiscal.CurrentQuarter())
		filter.ClosingIn = &next
	default:
		return filter, fmt.Errorf("invalid quarter %q (expected current or next)", quarter)
	}

	return filter, nil
}

// GetHygiene returns deals missing required fields
// GET /api/queues/hygiene?pipeline=&owner=
func (h *QueueHandler) GetHygiene(w http.ResponseWriter, r *http.Request) {
	filter, err := h.parseFilter(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.queues.Hygiene(r.Context(), filter)
	if err != nil {
		h.logger.WithError(err).Error("Failed to build hygiene queue")
		respondError(w, http.StatusInternalServerError, "Failed to build hygiene queue")
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// GetStalled returns deals that went dark
// GET /api/queues/stalled?preset=&pipeline=&owner=
func (h *QueueHandler) GetStalled(w http.ResponseWriter, r *http.Request) {
	filter, err := h.parseFilter(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.queues.Stalled(r.Context(), r.URL.Query().Get("preset"), filter)
	if errors.Is(err, queue.ErrUnknownPreset) {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		h.logger.WithError(err).Error("Failed to build stalled queue")
		respondError(w, http.StatusInternalServerError, "Failed to build stalled queue")
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// GetAtRisk returns stale and at-risk deals
// GET /api/queues/at-risk?pipeline=&owner=&quarter=current
func (h *QueueHandler) GetAtRisk(w http.ResponseWriter, r *http.Request) {
	filter, err := h.parseFilter(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.queues.AtRisk(r.Context(), filter)
	if err != nil {
		h.logger.WithError(err).Error("Failed to build risk queue")
		respondError(w, http.StatusInternalServerError, "Failed to build risk queue")
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// GetNextStep returns deals with a missing or overdue next step
// GET /api/queues/next-step?pipeline=&owner=
func (h *QueueHandler) GetNextStep(w http.ResponseWriter, r *http.Request) {
	filter, err := h.parseFilter(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.queues.NextStep(r.Context(), filter)
	if err != nil {
		h.logger.WithError(err).Error("Failed to build next-step queue")
		respondError(w, http.StatusInternalServerError, "Failed to build next-step queue")
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// GetWeek1 returns new deals with their first-week outreach cadence
// GET /api/queues/week1?owner=
func (h *QueueHandler) GetWeek1(w http.ResponseWriter, r *http.Request) {
	filter, err := h.parseFilter(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.queues.Week1(r.Context(), filter)
	if err != nil {
		h.logger.WithError(err).Error("Failed to build week-1 queue")
		respondError(w, http.StatusInternalServerError, "Failed to build week-1 queue")
		return
	}

	respondJSON(w, http.StatusOK, result)
}
