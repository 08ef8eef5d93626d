package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/damon-houk/expense-tracker/internal/domain/entity"
	"github.com/damon-houk/expense-tracker/internal/domain/repository"
	"github.com/damon-houk/expense-tracker/internal/infrastructure/logger"
	"github.com/damon-houk/expense-tracker/internal/infrastructure/middleware"
	"github.com/google/uuid"
)

// ExpenseStore owns the canonical in-memory expense set and writes it through
// to the repository after every mutation.
type ExpenseStore struct {
	mu         sync.Mutex
	repo       repository.ExpenseRepository
	logger     logger.Logger
	newID      func() string
	expenses   []entity.Expense
	persistErr error
	// set when the last Load failed for a reason other than corrupt data
	unreadable error
	hooks      []func()
}

// NewExpenseStore creates an empty store backed by repo. Call Load once at startup.
func NewExpenseStore(repo repository.ExpenseRepository, log logger.Logger) *ExpenseStore {
	if log == nil {
		log = logger.GetDefaultLogger()
	}

	return &ExpenseStore{
		repo:     repo,
		logger:   log,
		newID:    uuid.NewString,
		expenses: []entity.Expense{},
	}
}

// OnMutation registers fn to run after every create, update and delete
func (s *ExpenseStore) OnMutation(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hooks = append(s.hooks, fn)
}

// Load replaces the in-memory set with the persisted one.
// Corrupt data is discarded: the store starts empty and the next save overwrites it.
// Any other read failure also leaves the store empty, but saves are refused
// until a later Load succeeds so the persisted data is never overwritten.
func (s *ExpenseStore) Load(ctx context.Context) ([]entity.Expense, error) {
	expenses, err := s.repo.Read(ctx)
	corrupt := errors.Is(err, repository.ErrCorrupt)

	s.mu.Lock()
	s.unreadable = nil
	if err != nil {
		s.expenses = []entity.Expense{}
		if !corrupt {
			s.unreadable = err
		}
	} else {
		s.expenses = expenses
	}
	out := s.snapshot()
	s.mu.Unlock()

	if err != nil {
		fields := map[string]interface{}{
			"error":   err.Error(),
			"corrupt": corrupt,
		}
		if corrupt {
			s.logger.Error("Persisted expenses are corrupt, starting with an empty set", fields)
		} else {
			s.logger.Error("Failed to read persisted expenses, saving disabled until a reload succeeds", fields)
		}
		return out, fmt.Errorf("failed to load expenses: %w", err)
	}

	s.logger.Info("Expenses loaded", map[string]interface{}{
		"count": len(out),
	})

	return out, nil
}

// Create assigns a fresh ID to v, prepends it and saves the set.
// The expense is always created; a non-nil error wraps repository.ErrWriteFailed
// and means this change was not saved.
func (s *ExpenseStore) Create(ctx context.Context, v entity.ValidatedExpense) (entity.Expense, error) {
	s.mu.Lock()
	e := v.WithID(s.newID())
	s.expenses = append([]entity.Expense{e}, s.expenses...)
	err := s.persist(ctx, "create", e.ID)
	s.mu.Unlock()

	s.notify()
	return e, err
}

// Update replaces the whole record with the given ID, keeping the ID.
// It returns entity.ErrNotFound for an unknown ID. An error wrapping
// repository.ErrWriteFailed means the update was applied but not saved.
func (s *ExpenseStore) Update(ctx context.Context, id string, v entity.ValidatedExpense) (entity.Expense, error) {
	s.mu.Lock()
	idx := s.indexOf(id)
	if idx < 0 {
		s.mu.Unlock()
		return entity.Expense{}, fmt.Errorf("%w: %s", entity.ErrNotFound, id)
	}

	e := v.WithID(id)
	updated := s.snapshot()
	updated[idx] = e
	s.expenses = updated
	err := s.persist(ctx, "update", id)
	s.mu.Unlock()

	s.notify()
	return e, err
}

// Delete removes the record with the given ID. Unknown IDs leave the set unchanged.
// The returned error only reports a failed save.
func (s *ExpenseStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	remaining := make([]entity.Expense, 0, len(s.expenses))
	for _, e := range s.expenses {
		if e.ID != id {
			remaining = append(remaining, e)
		}
	}
	removed := len(remaining) != len(s.expenses)
	s.expenses = remaining
	err := s.persist(ctx, "delete", id)
	s.mu.Unlock()

	if !removed {
		s.logger.Debug("Delete of unknown expense ignored", map[string]interface{}{
			"request_id": middleware.GetRequestID(ctx),
			"id":         id,
		})
	}

	s.notify()
	return err
}

// Get returns the expense with the given ID
func (s *ExpenseStore) Get(id string) (entity.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return entity.Expense{}, fmt.Errorf("%w: %s", entity.ErrNotFound, id)
	}
	return s.expenses[idx], nil
}

// List returns a copy of the current set in its current order
func (s *ExpenseStore) List() []entity.Expense {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

// LastPersistError reports the most recent save failure, or nil once a save succeeds
func (s *ExpenseStore) LastPersistError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.persistErr
}

// persist writes the full set. Failures are reported, never retried,
// and the in-memory set stays authoritative. Caller holds s.mu.
func (s *ExpenseStore) persist(ctx context.Context, op, id string) error {
	requestID := middleware.GetRequestID(ctx)

	err := s.unreadable
	if err != nil {
		err = fmt.Errorf("%w: persisted expenses could not be loaded: %w", repository.ErrWriteFailed, err)
	} else if err = s.repo.Write(ctx, s.snapshot()); err != nil && !errors.Is(err, repository.ErrWriteFailed) {
		err = fmt.Errorf("%w: %w", repository.ErrWriteFailed, err)
	}

	if err != nil {
		s.persistErr = err
		s.logger.Error("Failed to persist expenses", map[string]interface{}{
			"request_id": requestID,
			"operation":  op,
			"id":         id,
			"count":      len(s.expenses),
			"error":      err.Error(),
		})
		return err
	}

	s.persistErr = nil
	s.logger.Info("Expenses persisted", map[string]interface{}{
		"request_id": requestID,
		"operation":  op,
		"id":         id,
		"count":      len(s.expenses),
	})
	return nil
}

func (s *ExpenseStore) notify() {
	s.mu.Lock()
	hooks := make([]func(), len(s.hooks))
	copy(hooks, s.hooks)
	s.mu.Unlock()

	for _, fn := range hooks {
		fn()
	}
}

func (s *ExpenseStore) indexOf(id string) int {
	for i, e := range s.expenses {
		if e.ID == id {
			return i
		}
	}
	return -1
}

func (s *ExpenseStore) snapshot() []entity.Expense {
	out := make([]entity.Expense, len(s.expenses))
	copy(out, s.expenses)
	return out
}
