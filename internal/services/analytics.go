package services

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"cosmetics-dashboard/internal/dataset"
	"cosmetics-dashboard/internal/models"
)

var (
	// ErrNoTable means no upload has been loaded yet.
	ErrNoTable = errors.New("no sales data loaded")

	// ErrNoData is the recognized terminal state of the filter engine: the
	// current selection matches no records. It is an expected outcome, not a
	// failure; callers skip aggregation and render a neutral message.
	ErrNoData = errors.New("no data for the selected filters")
)

// Dashboard owns the canonical table for the current upload and runs the
// filter -> aggregate pipeline for each render. The table itself is immutable
// once loaded; the lock only guards the swap on upload.
type Dashboard struct {
	mu          sync.RWMutex
	table       *models.SalesTable
	fingerprint string
	loadedAt    time.Time
	uploads     int64

	store  *dataset.Store
	logger *slog.Logger
}

func NewDashboard(store *dataset.Store, logger *slog.Logger) *Dashboard {
	return &Dashboard{store: store, logger: logger}
}

// Upload normalizes raw CSV bytes (through the content-addressed store) and
// makes the result the current table. On any normalization error the current
// table is left untouched.
func (d *Dashboard) Upload(raw []byte) (*models.UploadSummary, error) {
	table, fingerprint, err := d.store.Load(raw)
	if err != nil {
		return nil, err
	}

	d.mu.Lock()
	d.table = table
	d.fingerprint = fingerprint
	d.loadedAt = time.Now()
	d.uploads++
	d.mu.Unlock()

	d.logger.Info("sales table loaded",
		"records", table.Len(),
		"fingerprint", fingerprint[:12],
	)

	return &models.UploadSummary{
		Records:     table.Len(),
		Fingerprint: fingerprint,
		Options:     Options(table),
	}, nil
}

// SetTable installs a pre-built table directly, bypassing normalization.
func (d *Dashboard) SetTable(t *models.SalesTable) {
	d.mu.Lock()
	d.table = t
	d.fingerprint = ""
	d.loadedAt = time.Now()
	d.mu.Unlock()
}

// Table returns the current canonical table, or ErrNoTable before any upload.
func (d *Dashboard) Table() (*models.SalesTable, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.table == nil {
		return nil, ErrNoTable
	}
	return d.table, nil
}

// DefaultSelection builds the identity selection for the current table.
func (d *Dashboard) DefaultSelection() (models.FilterSelection, error) {
	t, err := d.Table()
	if err != nil {
		return models.FilterSelection{}, err
	}
	return DefaultSelection(t), nil
}

// Options returns the filter-control payload for the current table.
func (d *Dashboard) Options() (models.FilterOptions, error) {
	t, err := d.Table()
	if err != nil {
		return models.FilterOptions{}, err
	}
	return Options(t), nil
}

// Snapshot applies the selection to the current table. An empty result is
// reported as ErrNoData so no aggregation runs over it.
func (d *Dashboard) Snapshot(sel models.FilterSelection) (*models.SalesTable, error) {
	t, err := d.Table()
	if err != nil {
		return nil, err
	}
	filtered := Apply(t, sel)
	if filtered.Len() == 0 {
		return nil, ErrNoData
	}
	return filtered, nil
}

// Views runs the full pipeline for one render: filter the current table,
// then compute the five aggregation views in parallel.
func (d *Dashboard) Views(ctx context.Context, sel models.FilterSelection) (*models.DashboardViews, error) {
	filtered, err := d.Snapshot(sel)
	if err != nil {
		return nil, err
	}
	return ComputeViews(ctx, filtered)
}

// Stats exposes service counters for the admin endpoint.
func (d *Dashboard) Stats() map[string]any {
	d.mu.RLock()
	defer d.mu.RUnlock()

	stats := map[string]any{
		"loaded":        d.table != nil,
		"uploads":       d.uploads,
		"cached_tables": d.store.CachedTables(),
	}
	if d.table != nil {
		stats["records"] = d.table.Len()
		stats["loaded_at"] = d.loadedAt
		if d.fingerprint != "" {
			stats["fingerprint"] = d.fingerprint
		}
	}
	return stats
}
