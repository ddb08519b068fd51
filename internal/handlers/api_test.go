package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"cosmetics-dashboard/internal/dataset"
	"cosmetics-dashboard/internal/services"
)

const testCSV = `Date,Country,Product,Sales Person,Amount ($),Boxes Shipped
2024-01-05,USA,Lipstick,Ann,100.00,10
2024-01-20,USA,Lipstick,Ann,50.00,5
2024-02-01,UK,Mascara,Bob,200.00,20
`

func newTestAPI(t *testing.T) *APIHandlers {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := dataset.NewStore(dataset.NewTableLRU(4, time.Hour), logger)
	dashboard := services.NewDashboard(store, logger)
	return NewAPIHandlers(dashboard, 16<<20, logger)
}

func loadedAPI(t *testing.T) *APIHandlers {
	t.Helper()
	api := newTestAPI(t)
	if _, err := api.dashboard.Upload([]byte(testCSV)); err != nil {
		t.Fatalf("seed upload failed: %v", err)
	}
	return api
}

func multipartBody(t *testing.T, field, filename, content string) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile(field, filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write([]byte(content)); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	writer.Close()
	return &body, writer.FormDataContentType()
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Row     int    `json:"row"`
	} `json:"error"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope: %v (body: %s)", err, rec.Body.String())
	}
	return env
}

func TestHandleUpload(t *testing.T) {
	api := newTestAPI(t)
	body, contentType := multipartBody(t, "file", "sales.csv", testCSV)

	req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	api.HandleUpload(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body: %s)", rec.Code, rec.Body.String())
	}
	env := decodeEnvelope(t, rec)
	if !env.Success {
		t.Fatal("expected success envelope")
	}

	var summary struct {
		Records     int    `json:"records"`
		Fingerprint string `json:"fingerprint"`
	}
	if err := json.Unmarshal(env.Data, &summary); err != nil {
		t.Fatalf("decode summary: %v", err)
	}
	if summary.Records != 3 {
		t.Errorf("records = %d, want 3", summary.Records)
	}
	if len(summary.Fingerprint) != 64 {
		t.Errorf("fingerprint length = %d, want 64", len(summary.Fingerprint))
	}
}

func TestHandleUploadBadDate(t *testing.T) {
	api := newTestAPI(t)
	csv := "Date,Country,Product,Sales Person,Amount ($),Boxes Shipped\nnot-a-date,USA,Lipstick,Ann,10.00,1\n"
	body, contentType := multipartBody(t, "file", "sales.csv", csv)

	req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	api.HandleUpload(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	env := decodeEnvelope(t, rec)
	if env.Success {
		t.Fatal("expected error envelope")
	}
	if env.Error.Code != "DATE_PARSE_FAILURE" {
		t.Errorf("code = %s, want DATE_PARSE_FAILURE", env.Error.Code)
	}
	if env.Error.Row != 1 {
		t.Errorf("row = %d, want 1", env.Error.Row)
	}
}

func TestHandleUploadMissingColumn(t *testing.T) {
	api := newTestAPI(t)
	body, contentType := multipartBody(t, "file", "sales.csv", "Date,Country\n2024-01-05,USA\n")

	req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	api.HandleUpload(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if env := decodeEnvelope(t, rec); env.Error == nil || env.Error.Code != "MISSING_COLUMN" {
		t.Errorf("expected MISSING_COLUMN error, got %+v", env.Error)
	}
}

func TestHandleUploadMissingFileField(t *testing.T) {
	api := newTestAPI(t)
	body, contentType := multipartBody(t, "wrong", "sales.csv", testCSV)

	req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	api.HandleUpload(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestHandleKPIsBeforeUpload(t *testing.T) {
	api := newTestAPI(t)

	req := httptest.NewRequest(http.MethodGet, "/api/kpis", nil)
	rec := httptest.NewRecorder()
	api.HandleKPIs(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404 before any upload", rec.Code)
	}
}

func TestHandleKPIs(t *testing.T) {
	api := loadedAPI(t)

	req := httptest.NewRequest(http.MethodGet, "/api/kpis", nil)
	rec := httptest.NewRecorder()
	api.HandleKPIs(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if got := rec.Header().Get("Cache-Control"); got != seriesMaxAge {
		t.Errorf("Cache-Control = %q, want %q", got, seriesMaxAge)
	}

	var kpis struct {
		TotalSales string `json:"total_sales"`
		TotalBoxes int    `json:"total_boxes"`
	}
	env := decodeEnvelope(t, rec)
	if err := json.Unmarshal(env.Data, &kpis); err != nil {
		t.Fatalf("decode kpis: %v", err)
	}
	if kpis.TotalSales != "350" {
		t.Errorf("total sales = %s, want 350", kpis.TotalSales)
	}
	if kpis.TotalBoxes != 35 {
		t.Errorf("total boxes = %d, want 35", kpis.TotalBoxes)
	}
}

func TestHandleKPIsNoData(t *testing.T) {
	api := loadedAPI(t)

	req := httptest.NewRequest(http.MethodGet, "/api/kpis?countries=France", nil)
	rec := httptest.NewRecorder()
	api.HandleKPIs(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (no data is not an error)", rec.Code)
	}

	var state struct {
		NoData bool `json:"no_data"`
	}
	env := decodeEnvelope(t, rec)
	if err := json.Unmarshal(env.Data, &state); err != nil {
		t.Fatalf("decode state: %v", err)
	}
	if !state.NoData {
		t.Error("expected no_data=true payload")
	}
}

func TestHandleKPIsEmptyCategoryParam(t *testing.T) {
	api := loadedAPI(t)

	// A present but empty parameter is an explicit empty selection.
	req := httptest.NewRequest(http.MethodGet, "/api/kpis?countries=", nil)
	rec := httptest.NewRecorder()
	api.HandleKPIs(rec, req)

	var state struct {
		NoData bool `json:"no_data"`
	}
	env := decodeEnvelope(t, rec)
	if err := json.Unmarshal(env.Data, &state); err != nil {
		t.Fatalf("decode state: %v", err)
	}
	if !state.NoData {
		t.Error("expected no_data=true for explicit empty selection")
	}
}

func TestHandleKPIsBadDateParam(t *testing.T) {
	api := loadedAPI(t)

	req := httptest.NewRequest(http.MethodGet, "/api/kpis?from=banana", nil)
	rec := httptest.NewRecorder()
	api.HandleKPIs(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestHandleMonthlySalesFiltered(t *testing.T) {
	api := loadedAPI(t)

	req := httptest.NewRequest(http.MethodGet, "/api/monthly-sales?from=2024-02-01&to=2024-02-28", nil)
	rec := httptest.NewRecorder()
	api.HandleMonthlySales(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var series []struct {
		Month      string `json:"month"`
		TotalSales string `json:"total_sales"`
	}
	env := decodeEnvelope(t, rec)
	if err := json.Unmarshal(env.Data, &series); err != nil {
		t.Fatalf("decode series: %v", err)
	}
	if len(series) != 1 || series[0].Month != "2024-02" || series[0].TotalSales != "200" {
		t.Errorf("series = %+v, want one 2024-02 entry of 200", series)
	}
}

func TestHandleCountrySalesOrder(t *testing.T) {
	api := loadedAPI(t)

	req := httptest.NewRequest(http.MethodGet, "/api/country-sales", nil)
	rec := httptest.NewRecorder()
	api.HandleCountrySales(rec, req)

	var series []struct {
		Country string `json:"country"`
	}
	env := decodeEnvelope(t, rec)
	if err := json.Unmarshal(env.Data, &series); err != nil {
		t.Fatalf("decode series: %v", err)
	}
	if len(series) != 2 || series[0].Country != "UK" || series[1].Country != "USA" {
		t.Errorf("order = %+v, want UK then USA", series)
	}
}

func TestHandleDashboard(t *testing.T) {
	api := loadedAPI(t)

	req := httptest.NewRequest(http.MethodGet, "/api/dashboard", nil)
	rec := httptest.NewRecorder()
	api.HandleDashboard(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var views struct {
		KPIs struct {
			TotalBoxes int `json:"total_boxes"`
		} `json:"kpis"`
		Monthly     []json.RawMessage `json:"monthly_sales"`
		Countries   []json.RawMessage `json:"country_sales"`
		Persons     []json.RawMessage `json:"person_performance"`
		TopProducts []json.RawMessage `json:"top_products"`
	}
	env := decodeEnvelope(t, rec)
	if err := json.Unmarshal(env.Data, &views); err != nil {
		t.Fatalf("decode views: %v", err)
	}
	if views.KPIs.TotalBoxes != 35 {
		t.Errorf("total boxes = %d, want 35", views.KPIs.TotalBoxes)
	}
	if len(views.Monthly) != 2 || len(views.Countries) != 2 || len(views.Persons) != 2 || len(views.TopProducts) != 2 {
		t.Errorf("unexpected view sizes: %+v", views)
	}
}

func TestHandleRecordsCap(t *testing.T) {
	api := newTestAPI(t)

	var csv strings.Builder
	csv.WriteString("Date,Country,Product,Sales Person,Amount ($),Boxes Shipped\n")
	for i := 0; i < maxRecordRows+100; i++ {
		fmt.Fprintf(&csv, "2024-01-%02d,USA,Lipstick,Ann,1.00,1\n", i%28+1)
	}
	if _, err := api.dashboard.Upload([]byte(csv.String())); err != nil {
		t.Fatalf("upload failed: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/records", nil)
	rec := httptest.NewRecorder()
	api.HandleRecords(rec, req)

	var payload struct {
		Total    int `json:"total"`
		Returned int `json:"returned"`
	}
	env := decodeEnvelope(t, rec)
	if err := json.Unmarshal(env.Data, &payload); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if payload.Total != maxRecordRows+100 {
		t.Errorf("total = %d, want %d", payload.Total, maxRecordRows+100)
	}
	if payload.Returned != maxRecordRows {
		t.Errorf("returned = %d, want %d", payload.Returned, maxRecordRows)
	}
}

func TestHandleFilters(t *testing.T) {
	api := loadedAPI(t)

	req := httptest.NewRequest(http.MethodGet, "/api/filters", nil)
	rec := httptest.NewRecorder()
	api.HandleFilters(rec, req)

	var opts struct {
		Countries []string `json:"countries"`
		MinDate   string   `json:"min_date"`
		MaxDate   string   `json:"max_date"`
	}
	env := decodeEnvelope(t, rec)
	if err := json.Unmarshal(env.Data, &opts); err != nil {
		t.Fatalf("decode options: %v", err)
	}
	if len(opts.Countries) != 2 {
		t.Errorf("countries = %v, want 2 entries", opts.Countries)
	}
	if opts.MinDate != "2024-01-05" || opts.MaxDate != "2024-02-01" {
		t.Errorf("date span = [%s, %s]", opts.MinDate, opts.MaxDate)
	}
}

func TestHandleExportMonthlyPNG(t *testing.T) {
	api := loadedAPI(t)

	req := httptest.NewRequest(http.MethodGet, "/api/export/monthly.png", nil)
	rec := httptest.NewRecorder()
	api.HandleExportMonthly(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body: %s)", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get("Content-Type"); got != "image/png" {
		t.Errorf("Content-Type = %q, want image/png", got)
	}
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("\x89PNG")) {
		t.Error("body does not start with the PNG signature")
	}
}

func TestHandleHealth(t *testing.T) {
	api := newTestAPI(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	api.HandleHealth(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var health struct {
		Status string `json:"status"`
	}
	env := decodeEnvelope(t, rec)
	if err := json.Unmarshal(env.Data, &health); err != nil {
		t.Fatalf("decode health: %v", err)
	}
	if health.Status != "healthy" {
		t.Errorf("status = %q, want healthy", health.Status)
	}
}
