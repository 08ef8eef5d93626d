// Package db holds the persistence adapters and the key-value stores behind them
package db

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/damon-houk/expense-tracker/internal/domain/entity"
	"github.com/damon-houk/expense-tracker/internal/domain/repository"
	"github.com/damon-houk/expense-tracker/internal/infrastructure/logger"
	"github.com/shopspring/decimal"
)

// DefaultStorageKey is the slot the expense set lives under
const DefaultStorageKey = "expenses"

// KVExpenseRepository serializes the whole expense set as one JSON blob in a key-value slot
type KVExpenseRepository struct {
	store  repository.KeyValueStore
	key    string
	logger logger.Logger
}

// NewKVExpenseRepository creates a repository writing under key in store
func NewKVExpenseRepository(store repository.KeyValueStore, key string, log logger.Logger) *KVExpenseRepository {
	if key == "" {
		key = DefaultStorageKey
	}
	if log == nil {
		log = logger.GetDefaultLogger()
	}

	return &KVExpenseRepository{
		store:  store,
		key:    key,
		logger: log,
	}
}

// expenseRecord is the persisted shape of an expense
type expenseRecord struct {
	ID       recordID    `json:"id"`
	Title    string      `json:"title"`
	Amount   json.Number `json:"amount"`
	Category string      `json:"category"`
	Date     time.Time   `json:"date"`
	Notes    string      `json:"notes"`
}

// recordID accepts both string ids and the integer timestamp ids of older data
type recordID string

func (id *recordID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = recordID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id must be a string or a number: %w", err)
	}
	if _, err := strconv.ParseInt(n.String(), 10, 64); err != nil {
		return fmt.Errorf("numeric id must be an integer: %s", n)
	}
	*id = recordID(n.String())
	return nil
}

// Read returns the persisted expenses, or an empty set when the slot is absent
func (r *KVExpenseRepository) Read(ctx context.Context) ([]entity.Expense, error) {
	blob, found, err := r.store.Get(ctx, r.key)
	if err != nil {
		return nil, fmt.Errorf("failed to read expenses: %w", err)
	}

	if !found {
		r.logger.Info("No persisted expenses found", map[string]interface{}{
			"key": r.key,
		})
		return []entity.Expense{}, nil
	}

	var records []expenseRecord
	if err := json.Unmarshal([]byte(blob), &records); err != nil {
		return nil, fmt.Errorf("%w: %w", repository.ErrCorrupt, err)
	}

	expenses := make([]entity.Expense, 0, len(records))
	for i, rec := range records {
		amount, err := decimal.NewFromString(rec.Amount.String())
		if err != nil {
			return nil, fmt.Errorf("%w: record %d has invalid amount %q", repository.ErrCorrupt, i, rec.Amount)
		}
		if rec.ID == "" {
			return nil, fmt.Errorf("%w: record %d has no id", repository.ErrCorrupt, i)
		}

		expenses = append(expenses, entity.Expense{
			ID:       string(rec.ID),
			Title:    rec.Title,
			Amount:   amount,
			Category: rec.Category,
			Date:     rec.Date,
			Notes:    rec.Notes,
		})
	}

	r.logger.Debug("Expenses read", map[string]interface{}{
		"key":   r.key,
		"count": len(expenses),
		"bytes": len(blob),
	})

	return expenses, nil
}

// Write overwrites the slot with the complete expense set
func (r *KVExpenseRepository) Write(ctx context.Context, expenses []entity.Expense) error {
	records := make([]expenseRecord, 0, len(expenses))
	for _, e := range expenses {
		records = append(records, expenseRecord{
			ID:       recordID(e.ID),
			Title:    e.Title,
			Amount:   json.Number(e.Amount.String()),
			Category: e.Category,
			Date:     e.Date,
			Notes:    e.Notes,
		})
	}

	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("%w: failed to marshal expenses: %w", repository.ErrWriteFailed, err)
	}

	if err := r.store.Set(ctx, r.key, string(data)); err != nil {
		return fmt.Errorf("%w: %w", repository.ErrWriteFailed, err)
	}

	r.logger.Debug("Expenses written", map[string]interface{}{
		"key":   r.key,
		"count": len(expenses),
		"bytes": len(data),
	})

	return nil
}
