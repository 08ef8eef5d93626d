package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/damon-houk/expense-tracker/internal/application/service"
	"github.com/damon-houk/expense-tracker/internal/infrastructure/db"
	"github.com/damon-houk/expense-tracker/internal/infrastructure/logger"
	"github.com/damon-houk/expense-tracker/internal/mocks"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T, scope service.Scope) (*mux.Router, *service.ExpenseStore) {
	t.Helper()

	log := logger.NewNopLogger()
	repo := db.NewKVExpenseRepository(db.NewMemoryStore(), db.DefaultStorageKey, log)
	store := service.NewExpenseStore(repo, log)
	_, err := store.Load(context.Background())
	require.NoError(t, err)

	router := mux.NewRouter()
	NewExpenseHandler(store, log).RegisterRoutes(router)
	NewSummaryHandler(service.NewSummaryService(store, scope, nil, log), log).RegisterRoutes(router)

	return router, store
}

func doRequest(router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()

	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestCreateExpense(t *testing.T) {
	router, store := newTestRouter(t, service.ScopeAll)

	t.Run("Numeric amount", func(t *testing.T) {
		w := doRequest(router, http.MethodPost, "/expenses",
			`{"title":"Coffee","amount":4.5,"category":"Food","date":"2024-01-10"}`)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		resp := decode[ExpenseResponse](t, w)
		assert.NotEmpty(t, resp.ID)
		assert.Equal(t, "Coffee", resp.Title)
		assert.Equal(t, "4.50", resp.Amount.String())
		assert.Equal(t, "Food", resp.Category)
		assert.Equal(t, "🍔", resp.Icon)
		assert.Equal(t, "2024-01-10", resp.Date)
	})

	t.Run("String amount and unknown category", func(t *testing.T) {
		w := doRequest(router, http.MethodPost, "/expenses",
			`{"title":" Physio ","amount":"60.00","category":"Healthcare","date":"2024-01-11T09:30:00Z","notes":"knee"}`)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		resp := decode[ExpenseResponse](t, w)
		assert.Equal(t, "Physio", resp.Title)
		assert.Equal(t, "Healthcare", resp.Category)
		assert.Equal(t, "Other", resp.DisplayCategory)
		assert.Equal(t, "2024-01-11", resp.Date)
		assert.Equal(t, "knee", resp.Notes)
	})

	t.Run("Every invalid field is reported", func(t *testing.T) {
		before := len(store.List())

		w := doRequest(router, http.MethodPost, "/expenses", `{"title":"   ","amount":"-3","date":""}`)
		require.Equal(t, http.StatusBadRequest, w.Code)

		resp := decode[ErrorResponse](t, w)
		assert.Equal(t, map[string]string{
			"title":  "Title is required",
			"amount": "Amount must be positive",
			"date":   "Date is required",
		}, resp.Fields)
		assert.Len(t, store.List(), before)
	})

	t.Run("Non-numeric amount", func(t *testing.T) {
		w := doRequest(router, http.MethodPost, "/expenses", `{"title":"Tea","amount":true,"date":"2024-01-10"}`)
		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, map[string]string{"amount": "Amount must be positive"}, decode[ErrorResponse](t, w).Fields)
	})

	t.Run("Amount of the wrong JSON type is reported with the other fields", func(t *testing.T) {
		for _, amount := range []string{`true`, `{}`, `[]`, `[1]`} {
			w := doRequest(router, http.MethodPost, "/expenses", `{"title":"","amount":`+amount+`,"date":""}`)
			require.Equal(t, http.StatusBadRequest, w.Code, amount)

			assert.Equal(t, map[string]string{
				"title":  "Title is required",
				"amount": "Amount must be positive",
				"date":   "Date is required",
			}, decode[ErrorResponse](t, w).Fields, amount)
		}
	})

	t.Run("Malformed body", func(t *testing.T) {
		w := doRequest(router, http.MethodPost, "/expenses", `{"title":`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestGetUpdateDeleteExpense(t *testing.T) {
	router, store := newTestRouter(t, service.ScopeAll)

	w := doRequest(router, http.MethodPost, "/expenses",
		`{"title":"Groceries","amount":40,"category":"Food","date":"2024-01-10"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	id := decode[ExpenseResponse](t, w).ID

	t.Run("Get", func(t *testing.T) {
		w := doRequest(router, http.MethodGet, "/expenses/"+id, "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "40.00", decode[ExpenseResponse](t, w).Amount.String())

		w = doRequest(router, http.MethodGet, "/expenses/missing", "")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("Update keeps the id", func(t *testing.T) {
		w := doRequest(router, http.MethodPut, "/expenses/"+id,
			`{"title":"Groceries","amount":42.75,"category":"Food","date":"2024-01-10"}`)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		resp := decode[ExpenseResponse](t, w)
		assert.Equal(t, id, resp.ID)
		assert.Equal(t, "42.75", resp.Amount.String())
		assert.Len(t, store.List(), 1)
	})

	t.Run("Update of a missing expense", func(t *testing.T) {
		w := doRequest(router, http.MethodPut, "/expenses/missing",
			`{"title":"X","amount":1,"date":"2024-01-10"}`)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("Invalid update", func(t *testing.T) {
		w := doRequest(router, http.MethodPut, "/expenses/"+id, `{"title":"","amount":1,"date":"2024-01-10"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Groceries", store.List()[0].Title)
	})

	t.Run("Delete is idempotent", func(t *testing.T) {
		w := doRequest(router, http.MethodDelete, "/expenses/"+id, "")
		assert.Equal(t, http.StatusNoContent, w.Code)

		w = doRequest(router, http.MethodDelete, "/expenses/"+id, "")
		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Empty(t, store.List())
	})
}

func TestListExpenses(t *testing.T) {
	router, _ := newTestRouter(t, service.ScopeAll)

	for _, body := range []string{
		`{"title":"a","amount":1,"category":"Food","date":"2024-01-05"}`,
		`{"title":"b","amount":2,"category":"Transport","date":"2024-02-01"}`,
		`{"title":"c","amount":3,"category":"Food","date":"2024-02-03"}`,
	} {
		require.Equal(t, http.StatusCreated, doRequest(router, http.MethodPost, "/expenses", body).Code)
	}

	tests := []struct {
		name   string
		query  string
		titles []string
	}{
		{"No filter", "", []string{"c", "b", "a"}},
		{"All categories", "?category=all", []string{"c", "b", "a"}},
		{"Food from February", "?category=Food&start_date=2024-02-01", []string{"c"}},
		{"Inclusive range", "?start_date=2024-01-05&end_date=2024-02-01", []string{"b", "a"}},
		{"Case sensitive", "?category=food", []string{}},
		{"Inverted range", "?start_date=2024-03-01&end_date=2024-01-01", []string{}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := doRequest(router, http.MethodGet, "/expenses"+tc.query, "")
			require.Equal(t, http.StatusOK, w.Code)

			resp := decode[ExpenseListResponse](t, w)
			titles := make([]string, 0, len(resp.Expenses))
			for _, e := range resp.Expenses {
				titles = append(titles, e.Title)
			}
			assert.Equal(t, tc.titles, titles)
			assert.Equal(t, len(tc.titles), resp.Count)
		})
	}

	t.Run("Invalid date", func(t *testing.T) {
		w := doRequest(router, http.MethodGet, "/expenses?start_date=yesterday", "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestListCategories(t *testing.T) {
	router, _ := newTestRouter(t, service.ScopeAll)

	w := doRequest(router, http.MethodGet, "/categories", "")
	require.Equal(t, http.StatusOK, w.Code)

	resp := decode[[]CategoryResponse](t, w)
	require.Len(t, resp, 7)
	assert.Equal(t, CategoryResponse{Name: "Food", Icon: "🍔"}, resp[0])
	assert.Equal(t, "Other", resp[6].Name)
}

func TestPersistErrorHeader(t *testing.T) {
	log := logger.NewNopLogger()
	repo := new(mocks.MockExpenseRepository)
	repo.On("Write", mock.Anything, mock.Anything).Return(errors.New("disk full")).Once()
	repo.On("Write", mock.Anything, mock.Anything).Return(nil)

	router := mux.NewRouter()
	NewExpenseHandler(service.NewExpenseStore(repo, log), log).RegisterRoutes(router)

	w := doRequest(router, http.MethodPost, "/expenses", `{"title":"Tea","amount":3,"date":"2024-01-10"}`)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Header().Get(PersistErrorHeader), "disk full")
	id := decode[ExpenseResponse](t, w).ID

	w = doRequest(router, http.MethodGet, "/expenses", "")
	assert.Equal(t, 1, decode[ExpenseListResponse](t, w).Count)

	t.Run("Only the failed request is flagged", func(t *testing.T) {
		w := doRequest(router, http.MethodPut, "/expenses/"+id, `{"title":"Tea","amount":4,"date":"2024-01-10"}`)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, w.Header().Get(PersistErrorHeader))

		w = doRequest(router, http.MethodDelete, "/expenses/"+id, "")
		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Empty(t, w.Header().Get(PersistErrorHeader))
	})
}

func TestPersistErrorOnUpdateAndDelete(t *testing.T) {
	log := logger.NewNopLogger()
	repo := new(mocks.MockExpenseRepository)
	repo.On("Write", mock.Anything, mock.Anything).Return(nil).Once()
	repo.On("Write", mock.Anything, mock.Anything).Return(errors.New("read-only filesystem"))

	router := mux.NewRouter()
	NewExpenseHandler(service.NewExpenseStore(repo, log), log).RegisterRoutes(router)

	w := doRequest(router, http.MethodPost, "/expenses", `{"title":"Tea","amount":3,"date":"2024-01-10"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Empty(t, w.Header().Get(PersistErrorHeader))
	id := decode[ExpenseResponse](t, w).ID

	w = doRequest(router, http.MethodPut, "/expenses/"+id, `{"title":"Tea","amount":4,"date":"2024-01-10"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "4.00", decode[ExpenseResponse](t, w).Amount.String())
	assert.Contains(t, w.Header().Get(PersistErrorHeader), "read-only filesystem")

	w = doRequest(router, http.MethodDelete, "/expenses/"+id, "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Contains(t, w.Header().Get(PersistErrorHeader), "read-only filesystem")
}
