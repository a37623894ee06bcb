package interfaces

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"e2d/internal/finance/application"
	finance "e2d/internal/finance/domain"
	"e2d/internal/finance/viewmodel"
	"e2d/internal/observability/metrics"
)

// ReportsHandler serves module and global financial reports, with JSON and
// PDF/XLSX/CSV export variants.
type ReportsHandler struct {
	service *application.ReportService
}

// NewReportsHandler constructs a handler.
func NewReportsHandler(service *application.ReportService) (*ReportsHandler, error) {
	if service == nil {
		return nil, errors.New("reports handler: nil service")
	}
	return &ReportsHandler{service: service}, nil
}

type moduleReportResponse struct {
	Kind                 finance.Kind            `json:"kind"`
	Aggregate            aggregatePayload        `json:"aggregate"`
	ViewModel            viewmodel.ViewModel     `json:"view_model"`
	MeetingOutsidePeriod bool                    `json:"meeting_outside_period"`
}

type aggregatePayload struct {
	Total    string                 `json:"total"`
	Count    int                    `json:"count"`
	Average  string                 `json:"average"`
	ByStatus map[finance.Status]int `json:"by_status"`
}

type globalReportResponse struct {
	GeneratedAt          time.Time           `json:"generated_at"`
	NetBalance           string              `json:"net_balance"`
	NetBalanceLabel      string              `json:"net_balance_label"`
	Dues                 aggregatePayload    `json:"dues"`
	Savings              aggregatePayload    `json:"savings"`
	Loans                aggregatePayload    `json:"loans"`
	Sanctions            aggregatePayload    `json:"sanctions"`
	Aid                  aggregatePayload    `json:"aid"`
	InterestAccrued      string              `json:"interest_accrued"`
	EstimatedInterest    string              `json:"estimated_interest"`
	MeetingOutsidePeriod bool                `json:"meeting_outside_period"`
}

// ServeHTTP routes GET /api/v1/reports/{kind}[/export.{ext}] and
// GET /api/v1/reports/global[/export.{ext}].
func (h *ReportsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	rest := strings.TrimPrefix(r.URL.Path, "/api/v1/reports/")
	if rest == r.URL.Path || rest == "" {
		http.NotFound(w, r)
		return
	}

	target, export := splitExport(rest)
	fc := filterContextFromQuery(r)

	if target == "global" {
		h.serveGlobal(w, r, fc, export)
		return
	}
	kind, ok := finance.ParseKind(target)
	if !ok {
		http.Error(w, "unknown report kind", http.StatusNotFound)
		return
	}
	h.serveModule(w, r, kind, fc, export)
}

func (h *ReportsHandler) serveModule(w http.ResponseWriter, r *http.Request, kind finance.Kind, fc finance.FilterContext, export string) {
	started := time.Now()
	report, err := h.service.ModuleReport(r.Context(), kind, fc)
	if err != nil {
		metrics.ObserveReport(string(kind), time.Since(started), false)
		http.Error(w, "report error", http.StatusInternalServerError)
		return
	}
	metrics.ObserveReport(string(kind), time.Since(started), true)

	vm := viewmodel.Assemble(report.Aggregate, report.Records)
	title := "Rapport " + titleCase(string(kind))

	switch export {
	case "":
		writeJSON(w, moduleReportResponse{
			Kind:                 kind,
			Aggregate:            toAggregatePayload(report.Aggregate),
			ViewModel:            vm,
			MeetingOutsidePeriod: report.MeetingOutsidePeriod,
		})
	case "pdf":
		data, err := BuildReportPDF(title, time.Now().UTC(), vm)
		writeExport(w, string(kind), "pdf", "application/pdf", data, err)
	case "xlsx":
		data, err := BuildReportXLSX(title, time.Now().UTC(), vm)
		writeExport(w, string(kind), "xlsx", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data, err)
	case "csv":
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", "attachment; filename="+string(kind)+"-report.csv")
		if err := WriteReportCSV(w, vm); err != nil {
			metrics.ObserveExport("csv", false)
			return
		}
		metrics.ObserveExport("csv", true)
	default:
		http.Error(w, "unsupported export format", http.StatusNotFound)
	}
}

func (h *ReportsHandler) serveGlobal(w http.ResponseWriter, r *http.Request, fc finance.FilterContext, export string) {
	started := time.Now()
	report, err := h.service.GlobalReport(r.Context(), fc)
	if err != nil {
		metrics.ObserveReport("global", time.Since(started), false)
		http.Error(w, "report error", http.StatusInternalServerError)
		return
	}
	metrics.ObserveReport("global", time.Since(started), true)

	switch export {
	case "":
		writeJSON(w, globalReportResponse{
			GeneratedAt:          report.GeneratedAt,
			NetBalance:           report.NetBalance.String(),
			NetBalanceLabel:      viewmodel.FormatFCFA(report.NetBalance),
			Dues:                 toAggregatePayload(report.Dues.Aggregate),
			Savings:              toAggregatePayload(report.Savings.Aggregate),
			Loans:                toAggregatePayload(report.Loans.Aggregate),
			Sanctions:            toAggregatePayload(report.Sanctions.Aggregate),
			Aid:                  toAggregatePayload(report.Aid.Aggregate),
			InterestAccrued:      report.LoanSummary.InterestAccrued.String(),
			EstimatedInterest:    report.SavingsSummary.EstimatedInterest.String(),
			MeetingOutsidePeriod: report.MeetingOutsidePeriod,
		})
	case "pdf":
		data, err := BuildGlobalPDF(report)
		writeExport(w, "global", "pdf", "application/pdf", data, err)
	case "xlsx":
		data, err := BuildGlobalXLSX(report)
		writeExport(w, "global", "xlsx", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data, err)
	case "csv":
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", "attachment; filename=global-report.csv")
		if err := WriteGlobalCSV(w, report); err != nil {
			metrics.ObserveExport("csv", false)
			return
		}
		metrics.ObserveExport("csv", true)
	default:
		http.Error(w, "unsupported export format", http.StatusNotFound)
	}
}

func toAggregatePayload(agg finance.AggregateResult) aggregatePayload {
	return aggregatePayload{
		Total:    agg.Total.String(),
		Count:    agg.Count,
		Average:  agg.Average.String(),
		ByStatus: agg.ByStatus,
	}
}

// filterContextFromQuery maps query params onto the filter context. Values
// are passed through as-is; the evaluator treats anything malformed as unset.
func filterContextFromQuery(r *http.Request) finance.FilterContext {
	query := r.URL.Query()
	return finance.FilterContext{
		FiscalPeriodID: query.Get("period_id"),
		MeetingID:      query.Get("meeting_id"),
		CustomStart:    query.Get("start"),
		CustomEnd:      query.Get("end"),
		Search:         query.Get("q"),
	}
}

func titleCase(value string) string {
	if value == "" {
		return value
	}
	return strings.ToUpper(value[:1]) + value[1:]
}

func splitExport(rest string) (target, export string) {
	if idx := strings.Index(rest, "/export."); idx >= 0 {
		return rest[:idx], rest[idx+len("/export."):]
	}
	return strings.TrimSuffix(rest, "/"), ""
}

func writeJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(payload)
}

func writeExport(w http.ResponseWriter, name, ext, contentType string, data []byte, err error) {
	if err != nil {
		metrics.ObserveExport(ext, false)
		http.Error(w, "export error", http.StatusInternalServerError)
		return
	}
	metrics.ObserveExport(ext, true)
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", "attachment; filename="+name+"-report."+ext)
	_, _ = w.Write(data)
}
