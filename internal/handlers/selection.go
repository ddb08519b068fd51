package handlers

import (
	"net/http"
	"strings"
	"time"

	"cosmetics-dashboard/internal/errors"
	"cosmetics-dashboard/internal/models"
	"cosmetics-dashboard/internal/services"
)

const dateParamLayout = "2006-01-02"

// selectionFromRequest builds the filter selection for one render from query
// parameters. An absent category parameter means the default (every distinct
// value in the current table); a present but empty parameter is an explicit
// empty selection and matches nothing. Date bounds use YYYY-MM-DD.
func selectionFromRequest(r *http.Request, d *services.Dashboard) (models.FilterSelection, error) {
	sel, err := d.DefaultSelection()
	if err != nil {
		return models.FilterSelection{}, err
	}

	q := r.URL.Query()
	if q.Has("countries") {
		sel.Countries = splitParam(q.Get("countries"))
	}
	if q.Has("products") {
		sel.Products = splitParam(q.Get("products"))
	}
	if q.Has("sales_persons") {
		sel.SalesPersons = splitParam(q.Get("sales_persons"))
	}
	if v := q.Get("from"); v != "" {
		t, err := time.Parse(dateParamLayout, v)
		if err != nil {
			return models.FilterSelection{}, errors.BadRequestWrap(err, "invalid 'from' date, expected YYYY-MM-DD")
		}
		sel.Start = t
	}
	if v := q.Get("to"); v != "" {
		t, err := time.Parse(dateParamLayout, v)
		if err != nil {
			return models.FilterSelection{}, errors.BadRequestWrap(err, "invalid 'to' date, expected YYYY-MM-DD")
		}
		sel.End = t
	}
	return sel, nil
}

func splitParam(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
