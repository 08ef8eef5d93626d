package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/damon-houk/expense-tracker/internal/application/service"
	"github.com/damon-houk/expense-tracker/internal/domain/entity"
	"github.com/damon-houk/expense-tracker/internal/domain/repository"
	"github.com/damon-houk/expense-tracker/internal/infrastructure/logger"
	"github.com/damon-houk/expense-tracker/internal/infrastructure/middleware"
	"github.com/gorilla/mux"
)

// PersistErrorHeader is set on mutation responses whose change could not be saved
const PersistErrorHeader = "X-Persist-Error"

// ExpenseHandler handles HTTP requests for expenses
type ExpenseHandler struct {
	store  *service.ExpenseStore
	logger logger.Logger
}

// NewExpenseHandler creates a new expense handler
func NewExpenseHandler(store *service.ExpenseStore, log logger.Logger) *ExpenseHandler {
	if log == nil {
		log = logger.GetDefaultLogger()
	}

	return &ExpenseHandler{
		store:  store,
		logger: log,
	}
}

// ListExpenses returns the expenses matching the query filter, newest first
func (h *ExpenseHandler) ListExpenses(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	f, err := parseFilter(r)
	if err != nil {
		h.logger.Warn("Invalid filter", map[string]interface{}{
			"request_id": requestID,
			"query":      r.URL.RawQuery,
			"error":      err.Error(),
		})
		sendErrorResponse(w, h.logger, "Invalid filter", err.Error(), http.StatusBadRequest, requestID)
		return
	}

	visible := entity.Apply(h.store.List(), f)

	resp := ExpenseListResponse{
		Expenses: make([]ExpenseResponse, 0, len(visible)),
		Count:    len(visible),
	}
	for _, e := range visible {
		resp.Expenses = append(resp.Expenses, newExpenseResponse(e))
	}

	h.logger.Debug("Expenses listed", map[string]interface{}{
		"request_id": requestID,
		"count":      resp.Count,
		"category":   f.Category,
	})

	sendJSON(w, h.logger, http.StatusOK, resp, requestID)
}

// CreateExpense validates a draft and records it
func (h *ExpenseHandler) CreateExpense(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	v, ok := h.decodeAndValidate(w, r, requestID)
	if !ok {
		return
	}

	e, err := h.store.Create(r.Context(), v)
	h.flagPersistError(w, err, requestID)

	h.logger.Info("Expense created", map[string]interface{}{
		"request_id": requestID,
		"id":         e.ID,
		"category":   e.Category,
	})

	sendJSON(w, h.logger, http.StatusCreated, newExpenseResponse(e), requestID)
}

// GetExpense returns one expense by ID
func (h *ExpenseHandler) GetExpense(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	id := mux.Vars(r)["id"]

	e, err := h.store.Get(id)
	if err != nil {
		h.sendStoreError(w, err, id, requestID)
		return
	}

	sendJSON(w, h.logger, http.StatusOK, newExpenseResponse(e), requestID)
}

// UpdateExpense replaces an expense with a newly validated draft, keeping its ID
func (h *ExpenseHandler) UpdateExpense(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	id := mux.Vars(r)["id"]

	v, ok := h.decodeAndValidate(w, r, requestID)
	if !ok {
		return
	}

	e, err := h.store.Update(r.Context(), id, v)
	if err != nil && !errors.Is(err, repository.ErrWriteFailed) {
		h.sendStoreError(w, err, id, requestID)
		return
	}
	h.flagPersistError(w, err, requestID)

	h.logger.Info("Expense updated", map[string]interface{}{
		"request_id": requestID,
		"id":         id,
	})

	sendJSON(w, h.logger, http.StatusOK, newExpenseResponse(e), requestID)
}

// DeleteExpense removes an expense. Unknown IDs still succeed.
func (h *ExpenseHandler) DeleteExpense(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	id := mux.Vars(r)["id"]

	err := h.store.Delete(r.Context(), id)
	h.flagPersistError(w, err, requestID)

	h.logger.Info("Expense deleted", map[string]interface{}{
		"request_id": requestID,
		"id":         id,
	})

	w.WriteHeader(http.StatusNoContent)
}

// ListCategories returns the fixed category list with display icons
func (h *ExpenseHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	resp := make([]CategoryResponse, 0, len(entity.Categories))
	for _, c := range entity.Categories {
		resp = append(resp, CategoryResponse{Name: c, Icon: entity.CategoryIcon(c)})
	}

	sendJSON(w, h.logger, http.StatusOK, resp, requestID)
}

// RegisterRoutes registers the expense handler routes
func (h *ExpenseHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/expenses", h.ListExpenses).Methods(http.MethodGet)
	router.HandleFunc("/expenses", h.CreateExpense).Methods(http.MethodPost)
	router.HandleFunc("/expenses/{id}", h.GetExpense).Methods(http.MethodGet)
	router.HandleFunc("/expenses/{id}", h.UpdateExpense).Methods(http.MethodPut)
	router.HandleFunc("/expenses/{id}", h.DeleteExpense).Methods(http.MethodDelete)
	router.HandleFunc("/categories", h.ListCategories).Methods(http.MethodGet)

	h.logger.Info("Expense routes registered", map[string]interface{}{
		"routes": []string{
			"GET /expenses",
			"POST /expenses",
			"GET /expenses/{id}",
			"PUT /expenses/{id}",
			"DELETE /expenses/{id}",
			"GET /categories",
		},
	})
}

func (h *ExpenseHandler) decodeAndValidate(w http.ResponseWriter, r *http.Request, requestID string) (entity.ValidatedExpense, bool) {
	var req ExpenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("Invalid request body", map[string]interface{}{
			"request_id": requestID,
			"error":      err.Error(),
		})
		sendErrorResponse(w, h.logger, "Invalid request body",
			"The request body could not be parsed as valid JSON", http.StatusBadRequest, requestID)
		return entity.ValidatedExpense{}, false
	}

	v, err := entity.Validate(req.Draft())
	if err != nil {
		var verrs entity.ValidationErrors
		if errors.As(err, &verrs) {
			h.logger.Warn("Expense validation failed", map[string]interface{}{
				"request_id": requestID,
				"error":      err.Error(),
			})
			sendValidationError(w, h.logger, verrs, requestID)
			return entity.ValidatedExpense{}, false
		}

		h.logger.Error("Unexpected error validating expense", map[string]interface{}{
			"request_id": requestID,
			"error":      err.Error(),
		})
		sendErrorResponse(w, h.logger, "Internal server error",
			"An unexpected error occurred while validating the expense", http.StatusInternalServerError, requestID)
		return entity.ValidatedExpense{}, false
	}

	return v, true
}

func (h *ExpenseHandler) sendStoreError(w http.ResponseWriter, err error, id, requestID string) {
	if errors.Is(err, entity.ErrNotFound) {
		h.logger.Warn("Expense not found", map[string]interface{}{
			"request_id": requestID,
			"id":         id,
		})
		sendErrorResponse(w, h.logger, "Expense not found",
			"The requested expense could not be found", http.StatusNotFound, requestID)
		return
	}

	h.logger.Error("Unexpected expense store error", map[string]interface{}{
		"request_id": requestID,
		"id":         id,
		"error":      err.Error(),
	})
	sendErrorResponse(w, h.logger, "Internal server error",
		"An unexpected error occurred", http.StatusInternalServerError, requestID)
}

// flagPersistError surfaces a failed save of this request's change. The mutation itself stands.
func (h *ExpenseHandler) flagPersistError(w http.ResponseWriter, err error, requestID string) {
	if err == nil {
		return
	}

	h.logger.Warn("Change kept in memory but not saved", map[string]interface{}{
		"request_id": requestID,
		"error":      err.Error(),
	})
	w.Header().Set(PersistErrorHeader, err.Error())
}
