// Package templates holds the server-rendered dashboard shell. The page is a
// static skeleton; every data region is patched in over SSE by the handlers
// package once a CSV has been uploaded.
package templates

import (
	"context"
	"html/template"
	"io"

	"github.com/a-h/templ"
)

var page = template.Must(template.New("dashboard").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Cosmetics Sales Dashboard</title>
<script type="module" src="https://cdn.jsdelivr.net/gh/starfederation/datastar@main/bundles/datastar.js"></script>
<script src="https://cdn.jsdelivr.net/npm/chart.js@4"></script>
<style>
body { font-family: system-ui, sans-serif; margin: 0; background: #faf7f8; color: #2b2b2b; }
header { background: #b03060; color: #fff; padding: 1.25rem 2rem; }
header p { margin: 0.25rem 0 0; opacity: 0.85; }
main { padding: 1.5rem 2rem; }
section { background: #fff; border-radius: 8px; padding: 1rem 1.25rem; margin-bottom: 1.5rem; box-shadow: 0 1px 3px rgba(0,0,0,0.08); }
.kpi-grid { display: grid; grid-template-columns: repeat(auto-fit, minmax(180px, 1fr)); gap: 1rem; }
.kpi-tile { background: #fdf0f5; border-radius: 8px; padding: 1rem; text-align: center; }
.kpi-tile .value { font-size: 1.6rem; font-weight: 700; }
.chart-grid { display: grid; grid-template-columns: repeat(auto-fit, minmax(380px, 1fr)); gap: 1.5rem; }
.modern-table { width: 100%; border-collapse: collapse; }
.modern-table th, .modern-table td { padding: 0.4rem 0.6rem; border-bottom: 1px solid #eee; text-align: left; }
.notice { color: #8a6d3b; background: #fcf8e3; border-radius: 6px; padding: 0.75rem 1rem; }
</style>
</head>
<body>
<header>
	<h1>Cosmetics Sales Dashboard</h1>
	<p>Explore sales data with interactive filters and visualizations.</p>
</header>
<main>
	<section id="upload">
		<h2>Upload Sales Data</h2>
		<form action="/api/upload" method="post" enctype="multipart/form-data">
			<input type="file" name="file" accept=".csv" required>
			<button type="submit">Upload CSV</button>
		</form>
		<div id="upload-status"></div>
	</section>

	<section id="filters" data-on-load="@get('/sse/filters')">
		<h2>Dashboard Filters</h2>
		<div id="filters-content"><div class="notice">Upload a CSV file to begin analysis.</div></div>
	</section>

	<section id="kpis" data-on-load="@get('/sse/kpis')">
		<h2>Key Performance Indicators</h2>
		<div id="kpi-content"></div>
	</section>

	<div class="chart-grid">
		<section data-on-load="@get('/sse/monthly-sales')">
			<h2>Monthly Sales Trend</h2>
			<div id="monthly-content"></div>
			<canvas id="monthly-chart"></canvas>
		</section>
		<section data-on-load="@get('/sse/country-sales')">
			<h2>Total Sales by Country</h2>
			<div id="country-content"></div>
			<canvas id="country-chart"></canvas>
		</section>
		<section data-on-load="@get('/sse/person-performance')">
			<h2>Sales Person Performance</h2>
			<div id="person-content"></div>
			<canvas id="person-chart"></canvas>
		</section>
		<section data-on-load="@get('/sse/top-products')">
			<h2>Top Selling Product by Country</h2>
			<div id="top-products-content"></div>
		</section>
	</div>

	<section data-on-load="@get('/sse/records')">
		<h2>Filtered Raw Data</h2>
		<div id="records-content"></div>
	</section>
</main>
</body>
</html>
`))

// Dashboard returns the single-page dashboard shell.
func Dashboard() templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		return page.Execute(w, nil)
	})
}
