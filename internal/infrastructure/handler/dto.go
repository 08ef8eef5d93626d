package handler

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/damon-houk/expense-tracker/internal/domain/entity"
	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

// ExpenseRequest is the body of create and update requests.
// Amount may be sent as a JSON number or a string.
type ExpenseRequest struct {
	Title    string          `json:"title"`
	Amount   json.RawMessage `json:"amount"`
	Category string          `json:"category"`
	Date     string          `json:"date"`
	Notes    string          `json:"notes"`
}

// Draft converts the request into an unvalidated draft.
// An amount that is neither a number nor a string is passed on as its raw
// JSON text, which the validator rejects alongside any other invalid field.
func (r ExpenseRequest) Draft() entity.Draft {
	amount, err := rawAmount(r.Amount)
	if err != nil {
		amount = string(r.Amount)
	}

	return entity.Draft{
		Title:    r.Title,
		Amount:   amount,
		Category: r.Category,
		Date:     r.Date,
		Notes:    r.Notes,
	}
}

func rawAmount(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", nil
	}

	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", fmt.Errorf("invalid amount: %w", err)
		}
		return s, nil
	}

	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", fmt.Errorf("invalid amount: %w", err)
	}
	return n.String(), nil
}

// ExpenseResponse is the wire form of a stored expense
type ExpenseResponse struct {
	ID              string      `json:"id"`
	Title           string      `json:"title"`
	Amount          json.Number `json:"amount"`
	Category        string      `json:"category"`
	DisplayCategory string      `json:"display_category"`
	Icon            string      `json:"icon"`
	Date            string      `json:"date"`
	Notes           string      `json:"notes,omitempty"`
}

// ExpenseListResponse is the body of the list endpoint
type ExpenseListResponse struct {
	Expenses []ExpenseResponse `json:"expenses"`
	Count    int               `json:"count"`
}

// CategoryShareResponse is one slice of the proportional breakdown
type CategoryShareResponse struct {
	Category string      `json:"category"`
	Icon     string      `json:"icon"`
	Amount   json.Number `json:"amount"`
	Percent  int64       `json:"percent"`
}

// SummaryResponse is the body of the summary endpoint
type SummaryResponse struct {
	Scope      string                  `json:"scope"`
	Total      json.Number             `json:"total"`
	Count      int                     `json:"count"`
	ByCategory map[string]json.Number  `json:"by_category"`
	Shares     []CategoryShareResponse `json:"shares"`
}

// CategoryResponse describes one selectable category
type CategoryResponse struct {
	Name string `json:"name"`
	Icon string `json:"icon"`
}

// ErrorResponse represents a standardized error response
type ErrorResponse struct {
	Error       string            `json:"error"`
	Status      int               `json:"status"`
	Description string            `json:"description,omitempty"`
	RequestID   string            `json:"request_id,omitempty"`
	Fields      map[string]string `json:"fields,omitempty"`
}

func amountJSON(d decimal.Decimal) json.Number {
	return json.Number(d.StringFixed(2))
}

func newExpenseResponse(e entity.Expense) ExpenseResponse {
	return ExpenseResponse{
		ID:              e.ID,
		Title:           e.Title,
		Amount:          amountJSON(e.Amount),
		Category:        e.Category,
		DisplayCategory: entity.DisplayCategory(e.Category),
		Icon:            entity.CategoryIcon(e.Category),
		Date:            e.Date.Format(dateLayout),
		Notes:           e.Notes,
	}
}

func newSummaryResponse(scope string, s entity.Summary) SummaryResponse {
	resp := SummaryResponse{
		Scope:      scope,
		Total:      amountJSON(s.Total),
		Count:      s.Count,
		ByCategory: make(map[string]json.Number, len(s.ByCategory)),
		Shares:     []CategoryShareResponse{},
	}

	for category, amount := range s.ByCategory {
		resp.ByCategory[category] = amountJSON(amount)
	}
	for _, share := range s.Shares() {
		resp.Shares = append(resp.Shares, CategoryShareResponse{
			Category: share.Category,
			Icon:     share.Icon,
			Amount:   amountJSON(share.Amount),
			Percent:  share.Percent,
		})
	}

	return resp
}
