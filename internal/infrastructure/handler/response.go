// Package handler exposes the expense tracker over a JSON HTTP API
package handler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/damon-houk/expense-tracker/internal/domain/entity"
	"github.com/damon-houk/expense-tracker/internal/infrastructure/logger"
)

// sendJSON writes body with the given status code
func sendJSON(w http.ResponseWriter, log logger.Logger, statusCode int, body interface{}, requestID string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Error("Failed to encode response", map[string]interface{}{
			"request_id": requestID,
			"error":      err.Error(),
		})
	}
}

// sendErrorResponse sends a standardized error response
func sendErrorResponse(w http.ResponseWriter, log logger.Logger, message, description string, statusCode int, requestID string) {
	log.Debug("Sending error response", map[string]interface{}{
		"request_id":  requestID,
		"status_code": statusCode,
		"message":     message,
	})

	sendJSON(w, log, statusCode, ErrorResponse{
		Error:       message,
		Status:      statusCode,
		Description: description,
		RequestID:   requestID,
	}, requestID)
}

// sendValidationError reports every invalid field of a draft
func sendValidationError(w http.ResponseWriter, log logger.Logger, verrs entity.ValidationErrors, requestID string) {
	log.Debug("Sending validation errors", map[string]interface{}{
		"request_id": requestID,
		"fields":     len(verrs),
	})

	sendJSON(w, log, http.StatusBadRequest, ErrorResponse{
		Error:       "Invalid expense",
		Status:      http.StatusBadRequest,
		Description: "One or more fields are invalid",
		RequestID:   requestID,
		Fields:      verrs.ByField(),
	}, requestID)
}

// parseFilter reads category, start_date and end_date from the query string
func parseFilter(r *http.Request) (entity.Filter, error) {
	q := r.URL.Query()
	f := entity.Filter{Category: q.Get("category")}

	if s := q.Get("start_date"); s != "" {
		start, err := entity.ParseDate(s)
		if err != nil {
			return entity.Filter{}, fmt.Errorf("invalid start_date: %w", err)
		}
		f.StartDate = &start
	}
	if s := q.Get("end_date"); s != "" {
		end, err := entity.ParseDate(s)
		if err != nil {
			return entity.Filter{}, fmt.Errorf("invalid end_date: %w", err)
		}
		f.EndDate = &end
	}

	return f, nil
}
