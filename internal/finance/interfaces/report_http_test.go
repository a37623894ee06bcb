package interfaces

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"e2d/internal/finance/application"
	finance "e2d/internal/finance/domain"
	"e2d/internal/finance/infrastructure/memory"
	periods "e2d/internal/periods/domain"
)

type emptyCalendar struct{}

func (emptyCalendar) ListPeriods(_ context.Context) ([]periods.FiscalPeriod, error) {
	return nil, nil
}

func (emptyCalendar) ListMeetings(_ context.Context) ([]periods.Meeting, error) {
	return nil, nil
}

func newReportsHandler(t *testing.T) *ReportsHandler {
	t.Helper()
	repo := memory.NewRecordRepository()
	record, err := finance.NewRecord(finance.KindCotisation, "m-1", "Alice Mbarga", "mensuelle",
		decimal.RequireFromString("5000"), time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC), "", finance.StatusPaid)
	if err != nil {
		t.Fatalf("NewRecord: %v", err)
	}
	if err := repo.Create(context.Background(), record); err != nil {
		t.Fatalf("Create: %v", err)
	}
	service, err := application.NewReportService(repo, emptyCalendar{}, decimal.Decimal{}, application.SystemClock{}, nil)
	if err != nil {
		t.Fatalf("NewReportService: %v", err)
	}
	h, err := NewReportsHandler(service)
	if err != nil {
		t.Fatalf("NewReportsHandler: %v", err)
	}
	return h
}

func TestModuleReportJSON(t *testing.T) {
	h := newReportsHandler(t)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/reports/cotisation", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp moduleReportResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Kind != finance.KindCotisation {
		t.Fatalf("kind = %s", resp.Kind)
	}
	if resp.Aggregate.Total != "5000" || resp.Aggregate.Count != 1 {
		t.Fatalf("aggregate = %+v", resp.Aggregate)
	}
	if resp.ViewModel.TotalLabel != "5 000 FCFA" {
		t.Fatalf("total label = %q", resp.ViewModel.TotalLabel)
	}
}

func TestGlobalReportJSON(t *testing.T) {
	h := newReportsHandler(t)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/reports/global", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp globalReportResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.NetBalance != "5000" {
		t.Fatalf("net balance = %s", resp.NetBalance)
	}
}

func TestGlobalReportCSVExport(t *testing.T) {
	h := newReportsHandler(t)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/reports/global/export.csv", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := rec.Header().Get("Content-Type"); got != "text/csv" {
		t.Fatalf("content type = %q", got)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Cotisations,1,5000,5000") {
		t.Fatalf("csv missing cotisations row: %q", body)
	}
	if !strings.Contains(body, "Solde net,,5000,") {
		t.Fatalf("csv missing net balance row: %q", body)
	}
}

func TestModuleReportPDFExport(t *testing.T) {
	h := newReportsHandler(t)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/reports/cotisation/export.pdf", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := rec.Header().Get("Content-Type"); got != "application/pdf" {
		t.Fatalf("content type = %q", got)
	}
	if rec.Body.Len() == 0 {
		t.Fatalf("empty pdf body")
	}
}

func TestModuleReportCSVExport(t *testing.T) {
	h := newReportsHandler(t)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/reports/cotisation/export.csv", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if body := rec.Body.String(); !strings.Contains(body, "Alice Mbarga") {
		t.Fatalf("csv missing record row: %q", body)
	}
}

func TestUnknownReportKind(t *testing.T) {
	h := newReportsHandler(t)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/reports/loterie", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestUnsupportedExportFormat(t *testing.T) {
	h := newReportsHandler(t)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/reports/cotisation/export.docx", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}
