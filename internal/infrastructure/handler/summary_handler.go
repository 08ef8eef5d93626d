package handler

import (
	"bytes"
	"net/http"

	"github.com/damon-houk/expense-tracker/internal/application/service"
	"github.com/damon-houk/expense-tracker/internal/domain/entity"
	"github.com/damon-houk/expense-tracker/internal/infrastructure/chart"
	"github.com/damon-houk/expense-tracker/internal/infrastructure/logger"
	"github.com/damon-houk/expense-tracker/internal/infrastructure/middleware"
	"github.com/gorilla/mux"
)

// SummaryHandler serves the aggregate spending views
type SummaryHandler struct {
	summaries *service.SummaryService
	logger    logger.Logger
}

// NewSummaryHandler creates a new summary handler
func NewSummaryHandler(summaries *service.SummaryService, log logger.Logger) *SummaryHandler {
	if log == nil {
		log = logger.GetDefaultLogger()
	}

	return &SummaryHandler{
		summaries: summaries,
		logger:    log,
	}
}

// GetSummary returns the total, per-category subtotals and percentage shares
func (h *SummaryHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	summary, ok := h.summarize(w, r, requestID)
	if !ok {
		return
	}

	sendJSON(w, h.logger, http.StatusOK, newSummaryResponse(string(h.summaries.Scope()), summary), requestID)
}

// GetChart renders the category breakdown as a PNG
func (h *SummaryHandler) GetChart(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	summary, ok := h.summarize(w, r, requestID)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := chart.RenderCategoryChart(&buf, summary); err != nil {
		h.logger.Error("Failed to render chart", map[string]interface{}{
			"request_id": requestID,
			"error":      err.Error(),
		})
		sendErrorResponse(w, h.logger, "Internal server error",
			"The chart could not be rendered", http.StatusInternalServerError, requestID)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.Warn("Failed to write chart", map[string]interface{}{
			"request_id": requestID,
			"error":      err.Error(),
		})
	}
}

// RegisterRoutes registers the summary handler routes
func (h *SummaryHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/summary", h.GetSummary).Methods(http.MethodGet)
	router.HandleFunc("/summary/chart.png", h.GetChart).Methods(http.MethodGet)

	h.logger.Info("Summary routes registered", map[string]interface{}{
		"routes": []string{
			"GET /summary",
			"GET /summary/chart.png",
		},
		"scope": string(h.summaries.Scope()),
	})
}

func (h *SummaryHandler) summarize(w http.ResponseWriter, r *http.Request, requestID string) (entity.Summary, bool) {
	f, err := parseFilter(r)
	if err != nil {
		h.logger.Warn("Invalid filter", map[string]interface{}{
			"request_id": requestID,
			"query":      r.URL.RawQuery,
			"error":      err.Error(),
		})
		sendErrorResponse(w, h.logger, "Invalid filter", err.Error(), http.StatusBadRequest, requestID)
		return entity.Summary{}, false
	}

	return h.summaries.Summarize(r.Context(), f), true
}
