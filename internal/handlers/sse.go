package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/starfederation/datastar-go/datastar"

	"cosmetics-dashboard/internal/models"
	"cosmetics-dashboard/internal/services"
)

const maxTableRows = 50

var kpiTemplate = template.Must(template.New("kpis").Parse(`
<div id="kpi-content">
<div class="kpi-grid">
<div class="kpi-tile"><div class="value">{{.TotalSales}}</div><div>Total Sales ($)</div></div>
<div class="kpi-tile"><div class="value">{{.TotalBoxes}}</div><div>Total Boxes Shipped</div></div>
<div class="kpi-tile"><div class="value">{{.UniqueProducts}}</div><div>Unique Products Sold</div></div>
<div class="kpi-tile"><div class="value">{{.ActiveSalesPersons}}</div><div>Active Sales Persons</div></div>
</div>
</div>`))

var topProductsTemplate = template.Must(template.New("topProducts").Parse(`
<div id="top-products-content">
<table class="modern-table">
<thead><tr><th>Country</th><th>Top Product</th><th>Revenue</th></tr></thead>
<tbody>
{{range .}}<tr><td>{{.Country}}</td><td>{{.Product}}</td><td><strong>{{.Revenue}}</strong></td></tr>
{{end}}</tbody>
</table>
</div>`))

var recordsTemplate = template.Must(template.New("records").Parse(`
<div id="records-content">
<p>Showing {{.Returned}} of {{.Total}} matching records.</p>
<table class="modern-table">
<thead><tr><th>Date</th><th>Country</th><th>Product</th><th>Sales Person</th><th>Amount ($)</th><th>Boxes Shipped</th></tr></thead>
<tbody>
{{range .Rows}}<tr><td>{{.Date}}</td><td>{{.Country}}</td><td>{{.Product}}</td><td>{{.SalesPerson}}</td><td>{{.Amount}}</td><td>{{.Boxes}}</td></tr>
{{end}}</tbody>
</table>
</div>`))

var filtersTemplate = template.Must(template.New("filters").Parse(`
<div id="filters-content">
<div class="filter-row">
<label>Country
<select multiple name="countries">{{range .Countries}}<option selected>{{.}}</option>{{end}}</select>
</label>
<label>Product
<select multiple name="products">{{range .Products}}<option selected>{{.}}</option>{{end}}</select>
</label>
<label>Sales Person
<select multiple name="sales_persons">{{range .SalesPersons}}<option selected>{{.}}</option>{{end}}</select>
</label>
<label>From <input type="date" name="from" value="{{.MinDate}}" min="{{.MinDate}}" max="{{.MaxDate}}"></label>
<label>To <input type="date" name="to" value="{{.MaxDate}}" min="{{.MinDate}}" max="{{.MaxDate}}"></label>
</div>
</div>`))

type SSEHandlers struct {
	dashboard *services.Dashboard
	logger    *slog.Logger
}

func NewSSEHandlers(dashboard *services.Dashboard, logger *slog.Logger) *SSEHandlers {
	return &SSEHandlers{dashboard: dashboard, logger: logger}
}

func noticeFragment(targetID, message string) string {
	var buf strings.Builder
	buf.WriteString(`<div id="`)
	template.HTMLEscape(&buf, []byte(targetID))
	buf.WriteString(`"><div class="notice">`)
	template.HTMLEscape(&buf, []byte(message))
	buf.WriteString(`</div></div>`)
	return buf.String()
}

// formatMoney renders a decimal amount as $1,234.56 for fragments.
func formatMoney(d decimal.Decimal) string {
	s := d.StringFixed(2)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	intPart, fracPart, _ := strings.Cut(s, ".")
	var grouped []string
	for len(intPart) > 3 {
		grouped = append([]string{intPart[len(intPart)-3:]}, grouped...)
		intPart = intPart[:len(intPart)-3]
	}
	grouped = append([]string{intPart}, grouped...)

	out := "$" + strings.Join(grouped, ",") + "." + fracPart
	if neg {
		out = "-" + out
	}
	return out
}

// snapshot resolves the filtered table for an SSE request. On any terminal
// state it patches a notice into targetID and reports false; both the
// "no data" and "no upload yet" states are recoverable, never fatal.
func (h *SSEHandlers) snapshot(sse *datastar.ServerSentEventGenerator, r *http.Request, targetID string) (*models.SalesTable, bool) {
	sel, err := selectionFromRequest(r, h.dashboard)
	if err == nil {
		var filtered *models.SalesTable
		if filtered, err = h.dashboard.Snapshot(sel); err == nil {
			return filtered, true
		}
	}

	switch {
	case errors.Is(err, services.ErrNoTable):
		sse.PatchElements(noticeFragment(targetID, "Upload a CSV file to begin analysis."))
	case errors.Is(err, services.ErrNoData):
		sse.PatchElements(noticeFragment(targetID, "No data available for the selected filters."))
	default:
		h.logger.Warn("invalid filter selection", "error", err)
		sse.PatchElements(noticeFragment(targetID, "Invalid filter selection."))
	}
	return nil, false
}

func (h *SSEHandlers) renderKPIs(filtered *models.SalesTable) (string, error) {
	k := services.KPIs(filtered)
	var buf strings.Builder
	err := kpiTemplate.Execute(&buf, struct {
		TotalSales         string
		TotalBoxes         int
		UniqueProducts     int
		ActiveSalesPersons int
	}{
		TotalSales:         formatMoney(k.TotalSales),
		TotalBoxes:         k.TotalBoxes,
		UniqueProducts:     k.UniqueProducts,
		ActiveSalesPersons: k.ActiveSalesPersons,
	})
	return buf.String(), err
}

func (h *SSEHandlers) renderTopProducts(filtered *models.SalesTable) (string, error) {
	series := services.TopProductPerCountry(filtered)
	type row struct{ Country, Product, Revenue string }
	rows := make([]row, 0, len(series))
	for _, tp := range series {
		rows = append(rows, row{Country: tp.Country, Product: tp.Product, Revenue: formatMoney(tp.TotalSales)})
	}
	var buf strings.Builder
	err := topProductsTemplate.Execute(&buf, rows)
	return buf.String(), err
}

func (h *SSEHandlers) renderRecords(filtered *models.SalesTable) (string, error) {
	type row struct {
		Date, Country, Product, SalesPerson, Amount string
		Boxes                                       int
	}
	records := filtered.Records
	if len(records) > maxTableRows {
		records = records[:maxTableRows]
	}
	rows := make([]row, 0, len(records))
	for _, r := range records {
		rows = append(rows, row{
			Date:        r.Date.Format("2006-01-02"),
			Country:     r.Country,
			Product:     r.Product,
			SalesPerson: r.SalesPerson,
			Amount:      formatMoney(r.Amount),
			Boxes:       r.BoxesShipped,
		})
	}
	var buf strings.Builder
	err := recordsTemplate.Execute(&buf, struct {
		Returned, Total int
		Rows            []row
	}{Returned: len(rows), Total: filtered.Len(), Rows: rows})
	return buf.String(), err
}

func (h *SSEHandlers) HandleFilters(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)

	opts, err := h.dashboard.Options()
	if err != nil {
		sse.PatchElements(noticeFragment("filters-content", "Upload a CSV file to begin analysis."))
		flush(w)
		return
	}

	var buf strings.Builder
	if err := filtersTemplate.Execute(&buf, opts); err != nil {
		h.logger.Error("render filters", "error", err)
		return
	}
	sse.PatchElements(buf.String())
	flush(w)
}

func (h *SSEHandlers) HandleKPIs(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)
	filtered, ok := h.snapshot(sse, r, "kpi-content")
	if !ok {
		flush(w)
		return
	}

	html, err := h.renderKPIs(filtered)
	if err != nil {
		h.logger.Error("render kpis", "error", err)
		return
	}
	sse.PatchElements(html)
	flush(w)
}

func (h *SSEHandlers) HandleMonthlySales(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)
	filtered, ok := h.snapshot(sse, r, "monthly-content")
	if !ok {
		flush(w)
		return
	}

	h.patchSeriesSignal(sse, "monthlyData", services.MonthlySeries(filtered))
	sse.PatchElements(`<div id="monthly-content">Monthly sales chart data loaded</div>`)
	flush(w)
}

func (h *SSEHandlers) HandleCountrySales(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)
	filtered, ok := h.snapshot(sse, r, "country-content")
	if !ok {
		flush(w)
		return
	}

	h.patchSeriesSignal(sse, "countryData", services.CountrySeries(filtered))
	sse.PatchElements(`<div id="country-content">Country sales chart data loaded</div>`)
	flush(w)
}

func (h *SSEHandlers) HandlePersonPerformance(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)
	filtered, ok := h.snapshot(sse, r, "person-content")
	if !ok {
		flush(w)
		return
	}

	h.patchSeriesSignal(sse, "personData", services.PersonSeries(filtered))
	sse.PatchElements(`<div id="person-content">Sales person chart data loaded</div>`)
	flush(w)
}

func (h *SSEHandlers) HandleTopProducts(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)
	filtered, ok := h.snapshot(sse, r, "top-products-content")
	if !ok {
		flush(w)
		return
	}

	html, err := h.renderTopProducts(filtered)
	if err != nil {
		h.logger.Error("render top products", "error", err)
		return
	}
	sse.PatchElements(html)
	flush(w)
}

func (h *SSEHandlers) HandleRecords(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)
	filtered, ok := h.snapshot(sse, r, "records-content")
	if !ok {
		flush(w)
		return
	}

	html, err := h.renderRecords(filtered)
	if err != nil {
		h.logger.Error("render records", "error", err)
		return
	}
	sse.PatchElements(html)
	flush(w)
}

// HandleRefreshAll recomputes every dashboard region from one filtered
// snapshot; the five views are computed in parallel.
func (h *SSEHandlers) HandleRefreshAll(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)

	filtered, ok := h.snapshot(sse, r, "kpi-content")
	if !ok {
		// Mirror the state into every data region so none goes stale.
		for _, target := range []string{"monthly-content", "country-content", "person-content", "top-products-content", "records-content"} {
			sse.PatchElements(noticeFragment(target, "No data available for the selected filters."))
		}
		flush(w)
		return
	}

	views, err := services.ComputeViews(r.Context(), filtered)
	if err != nil {
		h.logger.Error("compute dashboard views", "error", err)
		return
	}

	for _, render := range []func(*models.SalesTable) (string, error){h.renderKPIs, h.renderTopProducts, h.renderRecords} {
		html, err := render(filtered)
		if err != nil {
			h.logger.Error("render dashboard fragment", "error", err)
			return
		}
		sse.PatchElements(html)
	}

	signals, err := json.Marshal(map[string]any{
		"monthlyData": views.Monthly,
		"countryData": views.Countries,
		"personData":  views.Persons,
	})
	if err != nil {
		h.logger.Error("marshal dashboard signals", "error", err)
		return
	}
	sse.PatchSignals(signals)
	flush(w)
}

func (h *SSEHandlers) patchSeriesSignal(sse *datastar.ServerSentEventGenerator, name string, series any) {
	signals, err := json.Marshal(map[string]any{name: series})
	if err != nil {
		h.logger.Error(fmt.Sprintf("marshal %s signal", name), "error", err)
		return
	}
	sse.PatchSignals(signals)
}

func flush(w http.ResponseWriter) {
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}
