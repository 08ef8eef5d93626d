package entity

import (
	"sort"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Summary is the aggregate spend over a sequence of expenses
type Summary struct {
	Total      decimal.Decimal            `json:"total"`
	ByCategory map[string]decimal.Decimal `json:"by_category"`
	Count      int                        `json:"count"`
}

// CategoryShare is one category's slice of the total
type CategoryShare struct {
	Category string          `json:"category"`
	Icon     string          `json:"icon"`
	Amount   decimal.Decimal `json:"amount"`
	Percent  int64           `json:"percent"`
}

// Summarize totals the amounts overall and per exact category string.
// Categories without expenses are absent from ByCategory.
func Summarize(expenses []Expense) Summary {
	s := Summary{
		Total:      decimal.Zero,
		ByCategory: make(map[string]decimal.Decimal),
		Count:      len(expenses),
	}

	for _, e := range expenses {
		s.Total = s.Total.Add(e.Amount)
		s.ByCategory[e.Category] = s.ByCategory[e.Category].Add(e.Amount)
	}

	return s
}

// Shares lists every category with its rounded percentage of the total,
// largest amount first. Ties keep alphabetical order.
func (s Summary) Shares() []CategoryShare {
	shares := make([]CategoryShare, 0, len(s.ByCategory))
	for category, amount := range s.ByCategory {
		var percent int64
		if s.Total.IsPositive() {
			percent = amount.Mul(hundred).Div(s.Total).Round(0).IntPart()
		}
		shares = append(shares, CategoryShare{
			Category: category,
			Icon:     CategoryIcon(category),
			Amount:   amount,
			Percent:  percent,
		})
	}

	sort.Slice(shares, func(i, j int) bool {
		if c := shares[i].Amount.Cmp(shares[j].Amount); c != 0 {
			return c > 0
		}
		return shares[i].Category < shares[j].Category
	})

	return shares
}
