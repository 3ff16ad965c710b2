package handlers

import (
	"net/http"

	"github.com/Atiwari330/hub-agent-sub001/internal/calendar"
	"github.com/Atiwari330/hub-agent-sub001/internal/fiscal"
	"github.com/Atiwari330/hub-agent-sub001/pkg/logger"
	"github.com/Atiwari330/hub-agent-sub001/pkg/redis"
)

// FiscalResponse is the current quarter with progress and the quarter after it
type FiscalResponse struct {
	Current fiscal.QuarterProgress `json:"current"`
	Next    fiscal.QuarterInfo     `json:"next"`
	AsOf    string                 `json:"as_of"`
}

// FiscalHandler serves fiscal period information
type FiscalHandler struct {
	calc   *fiscal.Calculator
	cal    calendar.Calendar
	cache  *redis.Cache
	logger *logger.Logger
}

// NewFiscalHandler creates a new fiscal handler. A nil cache disables caching.
func NewFiscalHandler(calc *fiscal.Calculator, cal calendar.Calendar, cache *redis.Cache, log *logger.Logger) *FiscalHandler {
	if cache == nil {
		cache = redis.NewCache(redis.Disabled(), "hubagent")
	}
	return &FiscalHandler{
		calc:   calc,
		cal:    cal,
		cache:  cache,
		logger: log,
	}
}

// GetCurrent returns the current fiscal quarter and how far through it we are
// GET /api/fiscal/current
func (h *FiscalHandler) GetCurrent(w http.ResponseWriter, r *http.Request) {
	today := h.cal.FormatDate(h.cal.Now())

	build := func() FiscalResponse {
		current := h.calc.CurrentQuarter()
		return FiscalResponse{
			Current: h.calc.Progress(current),
			Next:    h.calc.Next(current),
			AsOf:    today,
		}
	}

	var resp FiscalResponse
	err := h.cache.GetOrSet(r.Context(), redis.FiscalKey(today), &resp, redis.TTLMedium, func() (any, error) {
		return build(), nil
	})
	if err != nil {
		// cache outage: serve uncached
		h.logger.WithError(err).Warn("Fiscal cache unavailable")
		resp = build()
	}

	respondJSON(w, http.StatusOK, resp)
}
