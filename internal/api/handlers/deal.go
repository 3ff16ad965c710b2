package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/Atiwari330/hub-agent-sub001/internal/commitment"
	"github.com/Atiwari330/hub-agent-sub001/internal/queue"
	"github.com/Atiwari330/hub-agent-sub001/internal/realtime"
	"github.com/Atiwari330/hub-agent-sub001/internal/store"
	"github.com/Atiwari330/hub-agent-sub001/pkg/logger"
)

// DealHandler serves single-deal classification and the commitment workflow
type DealHandler struct {
	queues      *queue.Service
	commitments *commitment.Service
	publisher   realtime.Publisher
	logger      *logger.Logger
}

// NewDealHandler creates a new deal handler
func NewDealHandler(queues *queue.Service, commitments *commitment.Service, publisher realtime.Publisher, log *logger.Logger) *DealHandler {
	return &DealHandler{
		queues:      queues,
		commitments: commitments,
		publisher:   publisher,
		logger:      log,
	}
}

// GetClassification runs every classifier on one deal
// GET /api/deals/{id}/classification
func (h *DealHandler) GetClassification(w http.ResponseWriter, r *http.Request) {
	dealID := mux.Vars(r)["id"]

	result, err := h.queues.Classify(r.Context(), dealID)
	if errors.Is(err, store.ErrNotFound) {
		respondError(w, http.StatusNotFound, "deal not found")
		return
	}
	if err != nil {
		h.logger.WithDeal(dealID).WithError(err).Error("Failed to classify deal")
		respondError(w, http.StatusInternalServerError, "Failed to classify deal")
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// CreateCommitment records an owner's promise to fix missing fields by a date
// POST /api/deals/{id}/commitments
func (h *DealHandler) CreateCommitment(w http.ResponseWriter, r *http.Request) {
	dealID := mux.Vars(r)["id"]

	var req commitment.CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	created, err := h.commitments.Create(r.Context(), dealID, req)
	switch {
	case errors.Is(err, commitment.ErrInvalidDate), errors.Is(err, commitment.ErrDateInPast):
		respondError(w, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, store.ErrNotFound):
		respondError(w, http.StatusNotFound, "deal not found")
		return
	case errors.Is(err, commitment.ErrPendingExists):
		respondError(w, http.StatusConflict, err.Error())
		return
	case err != nil:
		h.logger.WithDeal(dealID).WithError(err).Error("Failed to create commitment")
		respondError(w, http.StatusInternalServerError, "Failed to create commitment")
		return
	}

	h.changed(r, dealID)
	respondJSON(w, http.StatusCreated, created)
}

// ClearCommitment closes the deal's pending commitment
// POST /api/deals/{id}/commitments/clear
func (h *DealHandler) ClearCommitment(w http.ResponseWriter, r *http.Request) {
	dealID := mux.Vars(r)["id"]

	outcome, err := h.commitments.Clear(r.Context(), dealID)
	if errors.Is(err, commitment.ErrNoPendingCommitment) || errors.Is(err, store.ErrNotFound) {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		h.logger.WithDeal(dealID).WithError(err).Error("Failed to clear commitment")
		respondError(w, http.StatusInternalServerError, "Failed to clear commitment")
		return
	}

	h.changed(r, dealID)
	respondJSON(w, http.StatusOK, map[string]string{
		"status":  "cleared",
		"outcome": string(outcome),
		"deal_id": dealID,
	})
}

func (h *DealHandler) changed(r *http.Request, dealID string) {
	h.queues.Invalidate(r.Context())
	h.publisher.Publish(realtime.Event{
		Type:   realtime.EventCommitmentChanged,
		DealID: dealID,
		Source: "api",
	})
}
