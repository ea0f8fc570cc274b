// Package charts renders the analytics views as PNG images. This is the
// only place money leaves exact cents for float64, at the drawing boundary.
package charts

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/wcharczuk/go-chart/v2"

	"fintrack/internal/core"
)

// ErrNoData reports that there is nothing to draw. The HTTP layer maps it
// to 204 No Content instead of serving an empty image.
var ErrNoData = errors.New("charts: no data to render")

const (
	pieWidth  = 800
	pieHeight = 800
	barWidth  = 1200
	barHeight = 600

	// Slices below this share of the total clutter the pie and are dropped
	// from the drawing. The JSON analytics endpoints still report them.
	minSlicePercent = 1.0
)

// CategoryPie renders the expense-by-category breakdown as a pie chart.
func CategoryPie(b core.CategoryBreakdown) ([]byte, error) {
	if len(b.Labels) == 0 {
		return nil, ErrNoData
	}

	var total float64
	for _, sum := range b.Sums {
		total += sum.Float64()
	}
	if total <= 0 {
		return nil, ErrNoData
	}

	values := make([]chart.Value, 0, len(b.Labels))
	for i, label := range b.Labels {
		amount := b.Sums[i].Float64()
		percentage := amount / total * 100
		if percentage < minSlicePercent {
			continue
		}
		values = append(values, chart.Value{
			Label: fmt.Sprintf("%s: %s (%.1f%%)", label, b.Sums[i], percentage),
			Value: amount,
		})
	}
	if len(values) == 0 {
		return nil, ErrNoData
	}

	pie := chart.PieChart{
		Title:  "Expenses by category",
		Width:  pieWidth,
		Height: pieHeight,
		Values: values,
		Background: chart.Style{
			Padding:   chart.Box{Top: 50, Left: 50, Right: 50, Bottom: 50},
			FillColor: chart.ColorWhite,
		},
	}

	var buf bytes.Buffer
	if err := pie.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render category pie: %w", err)
	}
	return buf.Bytes(), nil
}

// MonthlyBalanceBars renders income and expense per month as paired bars,
// income in green and expense in red.
func MonthlyBalanceBars(s core.MonthlySeries) ([]byte, error) {
	if len(s.Months) == 0 {
		return nil, ErrNoData
	}

	bars := make([]chart.Value, 0, 2*len(s.Months))
	for i, month := range s.Months {
		bars = append(bars, chart.Value{
			Label: month,
			Value: s.Income[i].Float64(),
			Style: chart.Style{
				StrokeColor: chart.ColorGreen,
				FillColor:   chart.ColorGreen.WithAlpha(180),
			},
		})
		bars = append(bars, chart.Value{
			Label: "",
			Value: s.Expense[i].Float64(),
			Style: chart.Style{
				StrokeColor: chart.ColorRed,
				FillColor:   chart.ColorRed.WithAlpha(180),
			},
		})
	}

	graph := chart.BarChart{
		Title:    "Monthly income and expenses",
		Width:    barWidth,
		Height:   barHeight,
		BarWidth: 40,
		Background: chart.Style{
			Padding:   chart.Box{Top: 50, Left: 50, Right: 50, Bottom: 50},
			FillColor: chart.ColorWhite,
		},
		YAxis: chart.YAxis{
			ValueFormatter: func(v interface{}) string {
				return fmt.Sprintf("%.0f", v.(float64))
			},
		},
		Bars: bars,
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render monthly bars: %w", err)
	}
	return buf.Bytes(), nil
}
