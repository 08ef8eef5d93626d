package cache

import (
	"testing"
	"time"

	"github.com/damon-houk/expense-tracker/internal/domain/entity"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func cacheExpenses() []entity.Expense {
	return []entity.Expense{
		{ID: "1", Title: "Coffee", Amount: decimal.RequireFromString("4.50"), Category: "Food", Date: time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)},
		{ID: "2", Title: "Bus", Amount: decimal.RequireFromString("2.00"), Category: "Transport", Date: time.Date(2024, 1, 11, 0, 0, 0, 0, time.UTC)},
	}
}

func TestKey(t *testing.T) {
	a := cacheExpenses()
	b := cacheExpenses()
	assert.Equal(t, Key(a), Key(b))

	b[1].Amount = decimal.RequireFromString("2.01")
	assert.NotEqual(t, Key(a), Key(b))

	// order matters
	assert.NotEqual(t, Key(a), Key([]entity.Expense{a[1], a[0]}))

	// field boundaries matter
	x := []entity.Expense{{ID: "ab", Title: "c"}}
	y := []entity.Expense{{ID: "a", Title: "bc"}}
	assert.NotEqual(t, Key(x), Key(y))
}

func TestSummaryCache(t *testing.T) {
	cache := NewSummaryCache()
	assert.Equal(t, 0, cache.Size())

	expenses := cacheExpenses()
	key := Key(expenses)
	summary := entity.Summarize(expenses)

	cache.Put(key, summary)
	assert.Equal(t, 1, cache.Size())

	got, ok := cache.Get(key)
	assert.True(t, ok)
	assert.True(t, summary.Total.Equal(got.Total))

	_, ok = cache.Get(key + 1)
	assert.False(t, ok)

	// expiration
	cache.SetExpiration(10 * time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	_, ok = cache.Get(key)
	assert.False(t, ok)

	cache.Put(key, summary)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 1, cache.CleanExpired())
	assert.Equal(t, 0, cache.Size())

	// clearing
	cache.SetExpiration(time.Hour)
	cache.Put(key, summary)
	assert.Equal(t, 1, cache.Size())
	cache.Clear()
	assert.Equal(t, 0, cache.Size())
}
