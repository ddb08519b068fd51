// Package export renders aggregation series as PNG charts for download.
// The interactive dashboard draws its own charts client-side; these are the
// static equivalents for reports.
package export

import (
	"fmt"
	"io"
	"time"

	"github.com/wcharczuk/go-chart/v2"

	"cosmetics-dashboard/internal/models"
)

// MonthlyChartPNG renders the monthly sales trend as a PNG line chart.
// The series must be non-empty; single-point series are padded because
// go-chart needs at least two X values to draw a line.
func MonthlyChartPNG(series []models.MonthlySales, w io.Writer) error {
	if len(series) == 0 {
		return fmt.Errorf("monthly series is empty")
	}

	xs := make([]time.Time, 0, len(series)+1)
	ys := make([]float64, 0, len(series)+1)
	for _, p := range series {
		t, err := time.Parse("2006-01", p.Month)
		if err != nil {
			return fmt.Errorf("bad month label %q: %w", p.Month, err)
		}
		xs = append(xs, t)
		ys = append(ys, p.TotalSales.InexactFloat64())
	}
	if len(xs) == 1 {
		xs = append(xs, xs[0].AddDate(0, 1, 0))
		ys = append(ys, ys[0])
	}

	c := chart.Chart{
		Title: "Total Sales Over Time",
		XAxis: chart.XAxis{
			ValueFormatter: chart.TimeValueFormatterWithFormat("2006-01"),
		},
		Series: []chart.Series{
			chart.TimeSeries{
				Name:    "Total Sales ($)",
				XValues: xs,
				YValues: ys,
			},
		},
	}
	return c.Render(chart.PNG, w)
}

// CountryChartPNG renders per-country totals as a PNG bar chart, in the
// order the series arrives (highest total first).
func CountryChartPNG(series []models.CountrySales, w io.Writer) error {
	if len(series) == 0 {
		return fmt.Errorf("country series is empty")
	}

	bars := make([]chart.Value, 0, len(series))
	for _, p := range series {
		bars = append(bars, chart.Value{
			Label: p.Country,
			Value: p.TotalSales.InexactFloat64(),
		})
	}

	c := chart.BarChart{
		Title:    "Total Sales by Country",
		Height:   512,
		BarWidth: 60,
		Bars:     bars,
	}
	return c.Render(chart.PNG, w)
}
