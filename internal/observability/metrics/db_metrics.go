package metrics

import (
	"database/sql"
	"log"

	"github.com/prometheus/client_golang/prometheus"
)

func registerDBMetrics(db *sql.DB, logger *log.Logger) {
	prometheus.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: metricPrefix + "members_active",
			Help: "Active registered members",
		},
		func() float64 {
			return queryCount(db, logger, "SELECT COUNT(*) FROM members WHERE active")
		},
	))

	prometheus.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: metricPrefix + "financial_records",
			Help: "Stored financial records",
		},
		func() float64 {
			return queryCount(db, logger, "SELECT COUNT(*) FROM financial_records")
		},
	))

	prometheus.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: metricPrefix + "campaigns_pending",
			Help: "Campaigns scheduled but not yet sent",
		},
		func() float64 {
			return queryCount(db, logger, "SELECT COUNT(*) FROM campaigns WHERE state = 'scheduled'")
		},
	))
}

func queryCount(db *sql.DB, logger *log.Logger, query string) float64 {
	if db == nil {
		return 0
	}
	var count int64
	if err := db.QueryRow(query).Scan(&count); err != nil {
		if logger != nil {
			logger.Printf("metrics query failed: %v", err)
		}
		return 0
	}
	if count < 0 {
		return 0
	}
	return float64(count)
}
