package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Canonical column names produced by the schema normalizer. Raw headers are
// trimmed, spaces become underscores and the literal "($)" marker is dropped,
// so " Amount ($) " and "amount ($)" both resolve to Amount_.
const (
	ColumnDate         = "Date"
	ColumnCountry      = "Country"
	ColumnProduct      = "Product"
	ColumnSalesPerson  = "Sales_Person"
	ColumnAmount       = "Amount_"
	ColumnBoxesShipped = "Boxes_Shipped"
)

// RequiredColumns is the canonical header set every upload must provide.
var RequiredColumns = []string{
	ColumnDate,
	ColumnCountry,
	ColumnProduct,
	ColumnSalesPerson,
	ColumnAmount,
	ColumnBoxesShipped,
}

// SalesRecord is one cleaned cosmetics sales transaction.
// Month is derived from Date at normalization time and never edited on its own.
type SalesRecord struct {
	Date         time.Time         `json:"date"`
	Country      string            `json:"country"`
	Product      string            `json:"product"`
	SalesPerson  string            `json:"sales_person"`
	Amount       decimal.Decimal   `json:"amount"`
	BoxesShipped int               `json:"boxes_shipped"`
	Month        string            `json:"month"`
	Extra        map[string]string `json:"extra,omitempty"`
}

// SalesTable is an ordered sequence of records sharing one schema.
// Every stage of the pipeline produces a fresh table; none mutates its input.
type SalesTable struct {
	Records      []SalesRecord
	ExtraColumns []string
}

func (t *SalesTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Records)
}

// FilterSelection is a point-in-time snapshot of the dashboard filter state:
// three category sets plus an inclusive date interval. An empty category slice
// matches nothing; defaults come from DefaultSelection, not from the filter.
type FilterSelection struct {
	Countries    []string
	Products     []string
	SalesPersons []string
	Start        time.Time
	End          time.Time
}

// FilterOptions holds the distinct values and date span used to populate the
// dashboard filter controls after an upload.
type FilterOptions struct {
	Countries    []string `json:"countries"`
	Products     []string `json:"products"`
	SalesPersons []string `json:"sales_persons"`
	MinDate      string   `json:"min_date"`
	MaxDate      string   `json:"max_date"`
}

// KPISet is the four scalar metrics shown at the top of the dashboard.
type KPISet struct {
	TotalSales         decimal.Decimal `json:"total_sales"`
	TotalBoxes         int             `json:"total_boxes"`
	UniqueProducts     int             `json:"unique_products"`
	ActiveSalesPersons int             `json:"active_sales_persons"`
}

type MonthlySales struct {
	Month      string          `json:"month"`
	TotalSales decimal.Decimal `json:"total_sales"`
}

type CountrySales struct {
	Country    string          `json:"country"`
	TotalSales decimal.Decimal `json:"total_sales"`
}

type PersonPerformance struct {
	SalesPerson  string          `json:"sales_person"`
	TotalSales   decimal.Decimal `json:"total_sales"`
	BoxesShipped int             `json:"boxes_shipped"`
}

type CountryTopProduct struct {
	Country    string          `json:"country"`
	Product    string          `json:"product"`
	TotalSales decimal.Decimal `json:"total_sales"`
}

// DashboardViews bundles the five independent aggregation views computed over
// one filtered table.
type DashboardViews struct {
	KPIs        KPISet              `json:"kpis"`
	Monthly     []MonthlySales      `json:"monthly_sales"`
	Countries   []CountrySales      `json:"country_sales"`
	Persons     []PersonPerformance `json:"person_performance"`
	TopProducts []CountryTopProduct `json:"top_products"`
}

// UploadSummary is returned to the client after a successful upload so the
// filter controls can be rebuilt from the new table.
type UploadSummary struct {
	Records     int           `json:"records"`
	Fingerprint string        `json:"fingerprint"`
	Options     FilterOptions `json:"options"`
}
