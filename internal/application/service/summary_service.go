// Package service holds the application services of the expense tracker
package service

import (
	"context"
	"fmt"

	"github.com/damon-houk/expense-tracker/internal/domain/entity"
	"github.com/damon-houk/expense-tracker/internal/infrastructure/cache"
	"github.com/damon-houk/expense-tracker/internal/infrastructure/logger"
	"github.com/damon-houk/expense-tracker/internal/infrastructure/middleware"
)

// Scope selects which expenses the summary view aggregates
type Scope string

const (
	// ScopeAll aggregates the complete set regardless of the list filter
	ScopeAll Scope = "all"
	// ScopeFiltered aggregates only what the list filter lets through
	ScopeFiltered Scope = "filtered"
)

// ParseScope validates a configured scope name
func ParseScope(s string) (Scope, error) {
	switch Scope(s) {
	case ScopeAll, ScopeFiltered:
		return Scope(s), nil
	case "":
		return ScopeAll, nil
	default:
		return "", fmt.Errorf("invalid summary scope %q: must be %q or %q", s, ScopeAll, ScopeFiltered)
	}
}

// ExpenseLister provides the current expense set
type ExpenseLister interface {
	List() []entity.Expense
}

// SummaryService computes the summary view, recomputing from the current set on every call
type SummaryService struct {
	lister ExpenseLister
	scope  Scope
	cache  *cache.SummaryCache
	logger logger.Logger
}

// NewSummaryService creates a summary service. summaryCache may be nil to disable caching.
func NewSummaryService(lister ExpenseLister, scope Scope, summaryCache *cache.SummaryCache, log logger.Logger) *SummaryService {
	if log == nil {
		log = logger.GetDefaultLogger()
	}
	if scope == "" {
		scope = ScopeAll
	}

	return &SummaryService{
		lister: lister,
		scope:  scope,
		cache:  summaryCache,
		logger: log,
	}
}

// Scope returns the configured aggregation scope
func (s *SummaryService) Scope() Scope {
	return s.scope
}

// Summarize aggregates the expenses selected by the configured scope.
// The filter only applies under ScopeFiltered.
func (s *SummaryService) Summarize(ctx context.Context, f entity.Filter) entity.Summary {
	requestID := middleware.GetRequestID(ctx)

	expenses := s.lister.List()
	if s.scope == ScopeFiltered && !f.IsZero() {
		expenses = entity.Apply(expenses, f)
	}

	if s.cache == nil {
		return entity.Summarize(expenses)
	}

	key := cache.Key(expenses)
	if summary, ok := s.cache.Get(key); ok {
		s.logger.Debug("Summary served from cache", map[string]interface{}{
			"request_id": requestID,
			"key":        key,
		})
		return summary
	}

	summary := entity.Summarize(expenses)
	s.cache.Put(key, summary)

	s.logger.Debug("Summary computed", map[string]interface{}{
		"request_id": requestID,
		"scope":      string(s.scope),
		"count":      summary.Count,
		"total":      summary.Total.String(),
	})

	return summary
}
