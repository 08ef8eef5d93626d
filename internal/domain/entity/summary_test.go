package entity

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarize(t *testing.T) {
	t.Run("Empty input", func(t *testing.T) {
		s := Summarize(nil)

		assert.True(t, s.Total.IsZero())
		assert.Empty(t, s.ByCategory)
		assert.Equal(t, 0, s.Count)
	})

	t.Run("Totals by category", func(t *testing.T) {
		s := Summarize(sampleExpenses())

		assert.Equal(t, "107.45", s.Total.StringFixed(2))
		require.Len(t, s.ByCategory, 3)
		assert.Equal(t, "85.95", s.ByCategory["Food"].StringFixed(2))
		assert.Equal(t, "12.00", s.ByCategory["Transport"].StringFixed(2))
		assert.Equal(t, "9.50", s.ByCategory["Entertainment"].StringFixed(2))
		assert.NotContains(t, s.ByCategory, "Housing")
	})

	t.Run("Category subtotals add up to total", func(t *testing.T) {
		expenses := []Expense{
			{Amount: decimal.RequireFromString("0.10"), Category: "Food"},
			{Amount: decimal.RequireFromString("0.20"), Category: "Transport"},
			{Amount: decimal.RequireFromString("0.30"), Category: "Mystery"},
		}
		s := Summarize(expenses)

		sum := decimal.Zero
		for _, v := range s.ByCategory {
			sum = sum.Add(v)
		}
		assert.True(t, sum.Equal(s.Total))
		assert.Equal(t, "0.6", s.Total.String())
	})
}

func TestShares(t *testing.T) {
	s := Summarize([]Expense{
		{Amount: decimal.NewFromInt(50), Category: "Food"},
		{Amount: decimal.NewFromInt(25), Category: "Transport"},
		{Amount: decimal.NewFromInt(25), Category: "Healthcare"},
	})

	shares := s.Shares()
	require.Len(t, shares, 3)

	assert.Equal(t, "Food", shares[0].Category)
	assert.Equal(t, int64(50), shares[0].Percent)
	assert.Equal(t, "🍔", shares[0].Icon)

	// ties fall back to alphabetical order
	assert.Equal(t, "Healthcare", shares[1].Category)
	assert.Equal(t, "✨", shares[1].Icon)
	assert.Equal(t, "Transport", shares[2].Category)
	assert.Equal(t, int64(25), shares[2].Percent)
}

func TestSharesEmpty(t *testing.T) {
	assert.Empty(t, Summarize(nil).Shares())
}
