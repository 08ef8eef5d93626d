package entity

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when no expense matches the requested ID
var ErrNotFound = errors.New("expense not found")

// Expense represents a single recorded expense
type Expense struct {
	ID       string          `json:"id"`
	Title    string          `json:"title"`
	Amount   decimal.Decimal `json:"amount"`
	Category string          `json:"category"`
	Date     time.Time       `json:"date"`
	Notes    string          `json:"notes"`
}

// ValidatedExpense holds the normalized fields of a draft that passed validation.
// It carries everything an Expense has except the ID, which the store assigns.
type ValidatedExpense struct {
	Title    string
	Amount   decimal.Decimal
	Category string
	Date     time.Time
	Notes    string
}

// WithID builds the stored record for the given ID
func (v ValidatedExpense) WithID(id string) Expense {
	return Expense{
		ID:       id,
		Title:    v.Title,
		Amount:   v.Amount,
		Category: v.Category,
		Date:     v.Date,
		Notes:    v.Notes,
	}
}

// Day returns midnight UTC of the calendar date t falls on in its own location
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
