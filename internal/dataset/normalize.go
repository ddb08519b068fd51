// Package dataset turns raw uploaded CSV bytes into the canonical in-memory
// sales table and caches parsed tables by content hash.
package dataset

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"cosmetics-dashboard/internal/errors"
	"cosmetics-dashboard/internal/models"
)

// Accepted Date layouts, tried in order. The first match wins.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"01/02/2006",
	"2006/01/02",
	"02-Jan-2006",
}

// CanonicalHeader cleans one raw header cell: trim surrounding whitespace,
// replace spaces with underscores and strip the literal "($)" currency marker.
// " Amount ($) " becomes "Amount_", " Sales Person " becomes "Sales_Person".
func CanonicalHeader(h string) string {
	h = strings.TrimSpace(h)
	h = strings.ReplaceAll(h, " ", "_")
	h = strings.ReplaceAll(h, "($)", "")
	return h
}

type extraColumn struct {
	index int
	name  string
}

// Normalize parses raw CSV bytes into a canonical SalesTable. The parse is
// eager and all-or-nothing: a missing required column or a single bad Date,
// Amount or Boxes_Shipped cell fails the whole load and no partial table is
// returned. Normalize is a pure function of its input and never mutates raw.
func Normalize(raw []byte) (*models.SalesTable, error) {
	reader := csv.NewReader(bytes.NewReader(raw))

	header, err := reader.Read()
	if err != nil {
		return nil, errors.ValidationWrap(err, "failed to read CSV header")
	}

	columns := make(map[string]int, len(models.RequiredColumns))
	var extras []extraColumn
	for i, h := range header {
		name := CanonicalHeader(h)
		canonical := ""
		for _, want := range models.RequiredColumns {
			if strings.EqualFold(name, want) {
				canonical = want
				break
			}
		}
		if canonical == "" {
			extras = append(extras, extraColumn{index: i, name: name})
			continue
		}
		if _, dup := columns[canonical]; !dup {
			columns[canonical] = i
		}
	}
	for _, want := range models.RequiredColumns {
		if _, ok := columns[want]; !ok {
			return nil, errors.MissingColumn(fmt.Sprintf("required column %q not found in upload", want))
		}
	}

	table := &models.SalesTable{}
	for _, ec := range extras {
		table.ExtraColumns = append(table.ExtraColumns, ec.name)
	}

	row := 0
	for {
		cells, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.ValidationWrap(err, fmt.Sprintf("malformed CSV near data row %d", row+1))
		}
		row++

		rec, err := parseRecord(cells, columns, extras, row)
		if err != nil {
			return nil, err
		}
		table.Records = append(table.Records, rec)
	}

	return table, nil
}

func parseRecord(cells []string, columns map[string]int, extras []extraColumn, row int) (models.SalesRecord, error) {
	date, err := parseDate(cells[columns[models.ColumnDate]])
	if err != nil {
		return models.SalesRecord{}, errors.DateParse(row, fmt.Sprintf("unparseable date %q at row %d", cells[columns[models.ColumnDate]], row))
	}

	amount, err := parseAmount(cells[columns[models.ColumnAmount]])
	if err != nil {
		return models.SalesRecord{}, errors.NumberParse(row, fmt.Sprintf("unparseable amount %q at row %d", cells[columns[models.ColumnAmount]], row))
	}

	boxes, err := strconv.Atoi(strings.TrimSpace(cells[columns[models.ColumnBoxesShipped]]))
	if err != nil {
		return models.SalesRecord{}, errors.NumberParse(row, fmt.Sprintf("unparseable boxes shipped %q at row %d", cells[columns[models.ColumnBoxesShipped]], row))
	}

	rec := models.SalesRecord{
		Date:         date,
		Country:      strings.TrimSpace(cells[columns[models.ColumnCountry]]),
		Product:      strings.TrimSpace(cells[columns[models.ColumnProduct]]),
		SalesPerson:  strings.TrimSpace(cells[columns[models.ColumnSalesPerson]]),
		Amount:       amount,
		BoxesShipped: boxes,
		Month:        date.Format("2006-01"),
	}

	if len(extras) > 0 {
		rec.Extra = make(map[string]string, len(extras))
		for _, ec := range extras {
			if ec.index < len(cells) {
				rec.Extra[ec.name] = strings.TrimSpace(cells[ec.index])
			}
		}
	}
	return rec, nil
}

func parseDate(cell string) (time.Time, error) {
	cell = strings.TrimSpace(cell)
	var lastErr error
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, cell)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

func parseAmount(cell string) (decimal.Decimal, error) {
	cell = strings.TrimSpace(cell)
	cell = strings.TrimPrefix(cell, "$")
	cell = strings.ReplaceAll(cell, ",", "")
	return decimal.NewFromString(cell)
}
