package metrics

import (
	"database/sql"
	"log"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricPrefix = "e2d_"

	resultSuccess = "success"
	resultError   = "error"
)

var (
	registerOnce sync.Once

	reportTotal   *prometheus.CounterVec
	reportLatency *prometheus.HistogramVec

	exportTotal *prometheus.CounterVec

	campaignRunTotal  *prometheus.CounterVec
	campaignSendTotal *prometheus.CounterVec

	backupRunTotal   *prometheus.CounterVec
	backupRunLatency *prometheus.HistogramVec
)

// Init registers observability metrics and DB-backed gauges.
func Init(db *sql.DB, logger *log.Logger) {
	registerOnce.Do(func() {
		reportTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "report_requests_total",
				Help: "Total report requests by module and result",
			},
			[]string{"module", "result"},
		)
		reportLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "report_latency_seconds",
				Help:    "Report assembly latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"module", "result"},
		)

		exportTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "export_total",
				Help: "Total report exports by format and result",
			},
			[]string{"format", "result"},
		)

		campaignRunTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "campaign_runs_total",
				Help: "Total notification campaign runs by result",
			},
			[]string{"result"},
		)
		campaignSendTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "campaign_sends_total",
				Help: "Total per-recipient campaign sends by result",
			},
			[]string{"result"},
		)

		backupRunTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "backup_runs_total",
				Help: "Total backup runs by result",
			},
			[]string{"result"},
		)
		backupRunLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "backup_latency_seconds",
				Help:    "Backup run latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"result"},
		)

		prometheus.MustRegister(
			reportTotal,
			reportLatency,
			exportTotal,
			campaignRunTotal,
			campaignSendTotal,
			backupRunTotal,
			backupRunLatency,
		)

		if db != nil {
			registerDBMetrics(db, logger)
		}
	})
}

func resultLabel(ok bool) string {
	if ok {
		return resultSuccess
	}
	return resultError
}

// ObserveReport records report assembly latency and result for one module.
func ObserveReport(module string, duration time.Duration, ok bool) {
	if module == "" {
		module = "unknown"
	}
	result := resultLabel(ok)
	if reportTotal != nil {
		reportTotal.WithLabelValues(module, result).Inc()
	}
	if reportLatency != nil {
		reportLatency.WithLabelValues(module, result).Observe(duration.Seconds())
	}
}

// ObserveExport increments export counters by format.
func ObserveExport(format string, ok bool) {
	if format == "" {
		format = "unknown"
	}
	if exportTotal != nil {
		exportTotal.WithLabelValues(format, resultLabel(ok)).Inc()
	}
}

// IncCampaignRun increments campaign run counters.
func IncCampaignRun(ok bool) {
	if campaignRunTotal != nil {
		campaignRunTotal.WithLabelValues(resultLabel(ok)).Inc()
	}
}

// AddCampaignSends increments per-recipient send counters by count.
func AddCampaignSends(ok bool, count int) {
	if count <= 0 {
		return
	}
	if campaignSendTotal != nil {
		campaignSendTotal.WithLabelValues(resultLabel(ok)).Add(float64(count))
	}
}

// ObserveBackup records backup run latency and result.
func ObserveBackup(duration time.Duration, ok bool) {
	result := resultLabel(ok)
	if backupRunTotal != nil {
		backupRunTotal.WithLabelValues(result).Inc()
	}
	if backupRunLatency != nil {
		backupRunLatency.WithLabelValues(result).Observe(duration.Seconds())
	}
}
