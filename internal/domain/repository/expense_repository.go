// Package repository defines the persistence ports of the expense tracker
package repository

import (
	"context"
	"errors"

	"github.com/damon-houk/expense-tracker/internal/domain/entity"
)

var (
	// ErrCorrupt is returned when the persisted blob exists but cannot be parsed
	ErrCorrupt = errors.New("persisted expenses are corrupt")

	// ErrWriteFailed is returned when the expense set could not be saved
	ErrWriteFailed = errors.New("failed to persist expenses")
)

// ExpenseRepository persists the complete expense set as a single unit
type ExpenseRepository interface {
	// Read returns the persisted set, or an empty set when nothing was saved yet
	Read(ctx context.Context) ([]entity.Expense, error)

	// Write replaces the persisted set with expenses
	Write(ctx context.Context, expenses []entity.Expense) error
}
