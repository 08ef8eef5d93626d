// Package chart renders the category breakdown of a summary as an image
package chart

import (
	"fmt"
	"io"

	"github.com/damon-houk/expense-tracker/internal/domain/entity"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

const (
	defaultWidth  = 8 * vg.Inch
	defaultHeight = 4 * vg.Inch
	barWidth      = 28
)

// RenderCategoryChart writes a PNG bar chart with one bar per category share,
// largest first, each labelled with its rounded percentage of the total.
func RenderCategoryChart(w io.Writer, summary entity.Summary) error {
	shares := summary.Shares()

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Spending by category (total %s)", summary.Total.StringFixed(2))
	p.Y.Label.Text = "Amount"

	if len(shares) == 0 {
		p.Title.Text = "No expenses"
		p.X.Min, p.X.Max = 0, 1
		p.Y.Min, p.Y.Max = 0, 1
	} else {
		values := make(plotter.Values, len(shares))
		names := make([]string, len(shares))
		for i, s := range shares {
			values[i] = s.Amount.InexactFloat64()
			names[i] = fmt.Sprintf("%s %d%%", s.Category, s.Percent)
		}

		bars, err := plotter.NewBarChart(values, vg.Points(barWidth))
		if err != nil {
			return fmt.Errorf("failed to build bar chart: %w", err)
		}
		bars.Color = plotutil.Color(0)
		bars.LineStyle.Width = vg.Length(0)

		p.Add(bars)
		p.NominalX(names...)
		p.Y.Min = 0
	}

	wt, err := p.WriterTo(defaultWidth, defaultHeight, "png")
	if err != nil {
		return fmt.Errorf("failed to prepare chart: %w", err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write chart: %w", err)
	}

	return nil
}
