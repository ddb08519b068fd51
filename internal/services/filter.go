package services

import (
	"slices"

	"cosmetics-dashboard/internal/models"
)

// Apply returns a new table holding the records that satisfy every predicate
// of the selection: set membership on the three category columns plus an
// inclusive date range. The input table is never mutated.
//
// An empty category set matches nothing; there is no implicit select-all
// fallback. An inverted date range (start after end) likewise yields an empty
// table rather than an error.
func Apply(t *models.SalesTable, sel models.FilterSelection) *models.SalesTable {
	out := &models.SalesTable{ExtraColumns: t.ExtraColumns}

	countries := toSet(sel.Countries)
	products := toSet(sel.Products)
	persons := toSet(sel.SalesPersons)
	if len(countries) == 0 || len(products) == 0 || len(persons) == 0 {
		return out
	}
	if sel.Start.After(sel.End) {
		return out
	}

	for _, r := range t.Records {
		if !countries[r.Country] || !products[r.Product] || !persons[r.SalesPerson] {
			continue
		}
		if r.Date.Before(sel.Start) || r.Date.After(sel.End) {
			continue
		}
		out.Records = append(out.Records, r)
	}
	return out
}

// DefaultSelection is the identity filter for a table: every distinct value
// of each category column and the full [min(date), max(date)] span. It is
// re-derived from scratch for every freshly loaded table.
func DefaultSelection(t *models.SalesTable) models.FilterSelection {
	sel := models.FilterSelection{
		Countries:    DistinctValues(t, models.ColumnCountry),
		Products:     DistinctValues(t, models.ColumnProduct),
		SalesPersons: DistinctValues(t, models.ColumnSalesPerson),
	}
	for i, r := range t.Records {
		if i == 0 || r.Date.Before(sel.Start) {
			sel.Start = r.Date
		}
		if i == 0 || r.Date.After(sel.End) {
			sel.End = r.Date
		}
	}
	return sel
}

// DistinctValues returns the sorted distinct labels of one of the three
// category columns. Unknown column names yield nil.
func DistinctValues(t *models.SalesTable, column string) []string {
	seen := make(map[string]struct{})
	var values []string
	for _, r := range t.Records {
		var v string
		switch column {
		case models.ColumnCountry:
			v = r.Country
		case models.ColumnProduct:
			v = r.Product
		case models.ColumnSalesPerson:
			v = r.SalesPerson
		default:
			return nil
		}
		if _, ok := seen[v]; !ok {
			seen[v] = struct{}{}
			values = append(values, v)
		}
	}
	slices.Sort(values)
	return values
}

// Options derives the filter-control payload for a table.
func Options(t *models.SalesTable) models.FilterOptions {
	sel := DefaultSelection(t)
	opts := models.FilterOptions{
		Countries:    sel.Countries,
		Products:     sel.Products,
		SalesPersons: sel.SalesPersons,
	}
	if t.Len() > 0 {
		opts.MinDate = sel.Start.Format("2006-01-02")
		opts.MaxDate = sel.End.Format("2006-01-02")
	}
	return opts
}

func toSet(values []string) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[v] = true
	}
	return set
}
