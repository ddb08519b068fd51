package handlers

import (
	"bytes"
	stderrors "errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"cosmetics-dashboard/internal/errors"
	"cosmetics-dashboard/internal/export"
	"cosmetics-dashboard/internal/models"
	"cosmetics-dashboard/internal/observability"
	"cosmetics-dashboard/internal/services"
)

const (
	maxRecordRows = 500
	seriesMaxAge  = "public, max-age=60"
)

type APIHandlers struct {
	dashboard      *services.Dashboard
	maxUploadBytes int64
	logger         *slog.Logger
}

func NewAPIHandlers(dashboard *services.Dashboard, maxUploadBytes int64, logger *slog.Logger) *APIHandlers {
	return &APIHandlers{
		dashboard:      dashboard,
		maxUploadBytes: maxUploadBytes,
		logger:         logger,
	}
}

// noDataState is the recognized "no matching rows" render state. It travels
// in the success envelope because it is an expected outcome, not a failure.
type noDataState struct {
	NoData  bool   `json:"no_data"`
	Message string `json:"message"`
}

func (h *APIHandlers) writeError(w http.ResponseWriter, r *http.Request, err error) {
	requestID := observability.GetRequestID(r.Context())
	switch {
	case stderrors.Is(err, services.ErrNoData):
		errors.WriteSuccess(w, noDataState{NoData: true, Message: "no data available for the selected filters"})
	case stderrors.Is(err, services.ErrNoTable):
		errors.WriteError(w, h.logger, errors.NotFound("no sales data uploaded yet"), requestID)
	default:
		errors.WriteError(w, h.logger, err, requestID)
	}
}

func (h *APIHandlers) HandleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		h.writeError(w, r, errors.BadRequestWrap(err, "invalid multipart upload"))
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		h.writeError(w, r, errors.BadRequestWrap(err, "missing 'file' form field"))
		return
	}
	defer file.Close()

	raw, err := io.ReadAll(file)
	if err != nil {
		h.writeError(w, r, errors.BadRequestWrap(err, "failed to read upload"))
		return
	}

	summary, err := h.dashboard.Upload(raw)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	errors.WriteSuccess(w, summary)
}

func (h *APIHandlers) HandleFilters(w http.ResponseWriter, r *http.Request) {
	opts, err := h.dashboard.Options()
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	errors.WriteSuccess(w, opts)
}

// snapshot resolves the selection and filtered table for one request.
func (h *APIHandlers) snapshot(r *http.Request) (*models.SalesTable, error) {
	sel, err := selectionFromRequest(r, h.dashboard)
	if err != nil {
		return nil, err
	}
	return h.dashboard.Snapshot(sel)
}

func (h *APIHandlers) HandleKPIs(w http.ResponseWriter, r *http.Request) {
	filtered, err := h.snapshot(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	errors.WriteSuccessWithHeaders(w, services.KPIs(filtered), map[string]string{"Cache-Control": seriesMaxAge})
}

func (h *APIHandlers) HandleMonthlySales(w http.ResponseWriter, r *http.Request) {
	filtered, err := h.snapshot(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	errors.WriteSuccessWithHeaders(w, services.MonthlySeries(filtered), map[string]string{"Cache-Control": seriesMaxAge})
}

func (h *APIHandlers) HandleCountrySales(w http.ResponseWriter, r *http.Request) {
	filtered, err := h.snapshot(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	errors.WriteSuccessWithHeaders(w, services.CountrySeries(filtered), map[string]string{"Cache-Control": seriesMaxAge})
}

func (h *APIHandlers) HandlePersonPerformance(w http.ResponseWriter, r *http.Request) {
	filtered, err := h.snapshot(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	errors.WriteSuccessWithHeaders(w, services.PersonSeries(filtered), map[string]string{"Cache-Control": seriesMaxAge})
}

func (h *APIHandlers) HandleTopProducts(w http.ResponseWriter, r *http.Request) {
	filtered, err := h.snapshot(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	errors.WriteSuccessWithHeaders(w, services.TopProductPerCountry(filtered), map[string]string{"Cache-Control": seriesMaxAge})
}

// HandleDashboard returns all five views in one response, computed in
// parallel over a single filtered snapshot.
func (h *APIHandlers) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	sel, err := selectionFromRequest(r, h.dashboard)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	views, err := h.dashboard.Views(r.Context(), sel)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	errors.WriteSuccessWithHeaders(w, views, map[string]string{"Cache-Control": seriesMaxAge})
}

type recordsPayload struct {
	Total        int                  `json:"total"`
	Returned     int                  `json:"returned"`
	ExtraColumns []string             `json:"extra_columns,omitempty"`
	Records      []models.SalesRecord `json:"records"`
}

func (h *APIHandlers) HandleRecords(w http.ResponseWriter, r *http.Request) {
	filtered, err := h.snapshot(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	records := filtered.Records
	if len(records) > maxRecordRows {
		records = records[:maxRecordRows]
	}
	errors.WriteSuccess(w, recordsPayload{
		Total:        filtered.Len(),
		Returned:     len(records),
		ExtraColumns: filtered.ExtraColumns,
		Records:      records,
	})
}

func (h *APIHandlers) HandleExportMonthly(w http.ResponseWriter, r *http.Request) {
	filtered, err := h.snapshot(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := export.MonthlyChartPNG(services.MonthlySeries(filtered), &buf); err != nil {
		h.writeError(w, r, errors.InternalWrap(err, "failed to render monthly chart"))
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Write(buf.Bytes())
}

func (h *APIHandlers) HandleExportCountries(w http.ResponseWriter, r *http.Request) {
	filtered, err := h.snapshot(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := export.CountryChartPNG(services.CountrySeries(filtered), &buf); err != nil {
		h.writeError(w, r, errors.InternalWrap(err, "failed to render country chart"))
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Write(buf.Bytes())
}

func (h *APIHandlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	errors.WriteSuccess(w, map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"version":   "1.0.0",
	})
}

func (h *APIHandlers) HandleStats(w http.ResponseWriter, r *http.Request) {
	errors.WriteSuccess(w, h.dashboard.Stats())
}
