package export

import (
	"bytes"
	"testing"

	"github.com/shopspring/decimal"

	"cosmetics-dashboard/internal/models"
)

var pngSignature = []byte("\x89PNG\r\n\x1a\n")

func TestMonthlyChartPNG(t *testing.T) {
	series := []models.MonthlySales{
		{Month: "2024-01", TotalSales: decimal.RequireFromString("150.00")},
		{Month: "2024-02", TotalSales: decimal.RequireFromString("200.00")},
	}

	var buf bytes.Buffer
	if err := MonthlyChartPNG(series, &buf); err != nil {
		t.Fatalf("MonthlyChartPNG failed: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), pngSignature) {
		t.Error("output does not start with the PNG signature")
	}
}

func TestMonthlyChartPNGSinglePoint(t *testing.T) {
	series := []models.MonthlySales{
		{Month: "2024-01", TotalSales: decimal.RequireFromString("150.00")},
	}

	var buf bytes.Buffer
	if err := MonthlyChartPNG(series, &buf); err != nil {
		t.Fatalf("single-point series should render, got: %v", err)
	}
	if buf.Len() == 0 {
		t.Error("empty output for single-point series")
	}
}

func TestMonthlyChartPNGErrors(t *testing.T) {
	var buf bytes.Buffer
	if err := MonthlyChartPNG(nil, &buf); err == nil {
		t.Error("expected error for empty series")
	}

	bad := []models.MonthlySales{{Month: "January", TotalSales: decimal.NewFromInt(1)}}
	if err := MonthlyChartPNG(bad, &buf); err == nil {
		t.Error("expected error for a malformed month label")
	}
}

func TestCountryChartPNG(t *testing.T) {
	series := []models.CountrySales{
		{Country: "UK", TotalSales: decimal.RequireFromString("200.00")},
		{Country: "USA", TotalSales: decimal.RequireFromString("150.00")},
	}

	var buf bytes.Buffer
	if err := CountryChartPNG(series, &buf); err != nil {
		t.Fatalf("CountryChartPNG failed: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), pngSignature) {
		t.Error("output does not start with the PNG signature")
	}
}

func TestCountryChartPNGEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := CountryChartPNG(nil, &buf); err == nil {
		t.Error("expected error for empty series")
	}
}
