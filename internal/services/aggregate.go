package services

import (
	"context"
	"slices"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"cosmetics-dashboard/internal/models"
)

// The aggregation views are pure functions over a filtered table. Callers
// reject empty tables upstream (see Dashboard.Snapshot), so each view is
// total and well defined on the tables it actually receives. Monetary sums
// use decimal accumulation throughout; nothing rounds until presentation.

// KPIs computes the four scalar dashboard metrics.
func KPIs(t *models.SalesTable) models.KPISet {
	total := decimal.Zero
	boxes := 0
	products := make(map[string]struct{})
	persons := make(map[string]struct{})

	for _, r := range t.Records {
		total = total.Add(r.Amount)
		boxes += r.BoxesShipped
		products[r.Product] = struct{}{}
		persons[r.SalesPerson] = struct{}{}
	}

	return models.KPISet{
		TotalSales:         total,
		TotalBoxes:         boxes,
		UniqueProducts:     len(products),
		ActiveSalesPersons: len(persons),
	}
}

// MonthlySeries sums amount per calendar month, ordered ascending by the
// YYYY-MM label. Lexicographic order on that format is chronological order.
func MonthlySeries(t *models.SalesTable) []models.MonthlySales {
	groups := make(map[string]decimal.Decimal)
	for _, r := range t.Records {
		groups[r.Month] = groups[r.Month].Add(r.Amount)
	}

	series := make([]models.MonthlySales, 0, len(groups))
	for month, total := range groups {
		series = append(series, models.MonthlySales{Month: month, TotalSales: total})
	}
	slices.SortFunc(series, func(a, b models.MonthlySales) int {
		return strings.Compare(a.Month, b.Month)
	})
	return series
}

// CountrySeries sums amount per country, ordered by total descending with
// ties broken by ascending country label.
func CountrySeries(t *models.SalesTable) []models.CountrySales {
	groups := make(map[string]decimal.Decimal)
	for _, r := range t.Records {
		groups[r.Country] = groups[r.Country].Add(r.Amount)
	}

	series := make([]models.CountrySales, 0, len(groups))
	for country, total := range groups {
		series = append(series, models.CountrySales{Country: country, TotalSales: total})
	}
	slices.SortFunc(series, func(a, b models.CountrySales) int {
		if c := b.TotalSales.Cmp(a.TotalSales); c != 0 {
			return c
		}
		return strings.Compare(a.Country, b.Country)
	})
	return series
}

// PersonSeries sums amount and boxes shipped per sales person. The contract
// leaves ordering to the presentation layer; it is fixed to ascending label
// here so repeated renders are identical.
func PersonSeries(t *models.SalesTable) []models.PersonPerformance {
	groups := make(map[string]*models.PersonPerformance)
	for _, r := range t.Records {
		p, ok := groups[r.SalesPerson]
		if !ok {
			p = &models.PersonPerformance{SalesPerson: r.SalesPerson}
			groups[r.SalesPerson] = p
		}
		p.TotalSales = p.TotalSales.Add(r.Amount)
		p.BoxesShipped += r.BoxesShipped
	}

	series := make([]models.PersonPerformance, 0, len(groups))
	for _, p := range groups {
		series = append(series, *p)
	}
	slices.SortFunc(series, func(a, b models.PersonPerformance) int {
		return strings.Compare(a.SalesPerson, b.SalesPerson)
	})
	return series
}

// TopProductPerCountry groups by (country, product), sums amount, then keeps
// the best product per country. Ties go to the lexicographically smallest
// product label, never to incidental map iteration order. Output is ordered
// by ascending country.
func TopProductPerCountry(t *models.SalesTable) []models.CountryTopProduct {
	type pair struct{ country, product string }
	sums := make(map[pair]decimal.Decimal)
	for _, r := range t.Records {
		k := pair{r.Country, r.Product}
		sums[k] = sums[k].Add(r.Amount)
	}

	best := make(map[string]models.CountryTopProduct)
	for k, total := range sums {
		cur, ok := best[k.country]
		switch {
		case !ok,
			total.GreaterThan(cur.TotalSales),
			total.Equal(cur.TotalSales) && k.product < cur.Product:
			best[k.country] = models.CountryTopProduct{
				Country:    k.country,
				Product:    k.product,
				TotalSales: total,
			}
		}
	}

	series := make([]models.CountryTopProduct, 0, len(best))
	for _, tp := range best {
		series = append(series, tp)
	}
	slices.SortFunc(series, func(a, b models.CountryTopProduct) int {
		return strings.Compare(a.Country, b.Country)
	})
	return series
}

// ComputeViews evaluates all five views concurrently. They are independent
// pure functions over the same immutable table, so the result is identical
// to sequential evaluation.
func ComputeViews(ctx context.Context, t *models.SalesTable) (*models.DashboardViews, error) {
	views := &models.DashboardViews{}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		views.KPIs = KPIs(t)
		return ctx.Err()
	})
	g.Go(func() error {
		views.Monthly = MonthlySeries(t)
		return ctx.Err()
	})
	g.Go(func() error {
		views.Countries = CountrySeries(t)
		return ctx.Err()
	})
	g.Go(func() error {
		views.Persons = PersonSeries(t)
		return ctx.Err()
	})
	g.Go(func() error {
		views.TopProducts = TopProductPerCountry(t)
		return ctx.Err()
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return views, nil
}
