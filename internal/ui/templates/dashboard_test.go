package templates

import (
	"context"
	"strings"
	"testing"
)

func TestDashboardRenders(t *testing.T) {
	var buf strings.Builder
	if err := Dashboard().Render(context.Background(), &buf); err != nil {
		t.Fatalf("render failed: %v", err)
	}
	html := buf.String()

	sections := []string{
		"Cosmetics Sales Dashboard",
		"Upload Sales Data",
		"Dashboard Filters",
		"Key Performance Indicators",
		"Monthly Sales Trend",
		"Total Sales by Country",
		"Sales Person Performance",
		"Top Selling Product by Country",
		"Filtered Raw Data",
	}
	for _, s := range sections {
		if !strings.Contains(html, s) {
			t.Errorf("page missing section %q", s)
		}
	}

	targets := []string{
		`id="upload-status"`,
		`id="filters-content"`,
		`id="kpi-content"`,
		`id="monthly-content"`,
		`id="country-content"`,
		`id="person-content"`,
		`id="top-products-content"`,
		`id="records-content"`,
	}
	for _, target := range targets {
		if !strings.Contains(html, target) {
			t.Errorf("page missing patch target %s", target)
		}
	}

	if !strings.Contains(html, `action="/api/upload"`) {
		t.Error("upload form does not post to /api/upload")
	}
}
