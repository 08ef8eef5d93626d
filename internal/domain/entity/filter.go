package entity

import "time"

// AllCategories is the category sentinel that disables category filtering
const AllCategories = "all"

// Filter describes which subset of expenses to show.
// Nil bounds and an empty or "all" category impose no restriction.
type Filter struct {
	Category  string
	StartDate *time.Time
	EndDate   *time.Time
}

// IsZero reports whether the filter restricts nothing
func (f Filter) IsZero() bool {
	return (f.Category == "" || f.Category == AllCategories) && f.StartDate == nil && f.EndDate == nil
}

// Apply returns the order-preserving subsequence of expenses that match f.
// Dates compare at calendar-day granularity and both bounds are inclusive.
func Apply(expenses []Expense, f Filter) []Expense {
	var start, end time.Time
	if f.StartDate != nil {
		start = Day(*f.StartDate)
	}
	if f.EndDate != nil {
		end = Day(*f.EndDate)
	}

	out := make([]Expense, 0, len(expenses))
	if f.StartDate != nil && f.EndDate != nil && start.After(end) {
		return out
	}

	for _, e := range expenses {
		if f.Category != "" && f.Category != AllCategories && e.Category != f.Category {
			continue
		}

		day := Day(e.Date)
		if f.StartDate != nil && day.Before(start) {
			continue
		}
		if f.EndDate != nil && day.After(end) {
			continue
		}

		out = append(out, e)
	}

	return out
}
