package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"e2d/internal/audit"
	"e2d/internal/auth"
	"e2d/internal/backup"
	"e2d/internal/config"
	financeapp "e2d/internal/finance/application"
	financepg "e2d/internal/finance/infrastructure/postgres"
	financehttp "e2d/internal/finance/interfaces"
	memberspg "e2d/internal/members/infrastructure/postgres"
	membershttp "e2d/internal/members/interfaces/http"
	notifyapp "e2d/internal/notify/application"
	notifypg "e2d/internal/notify/infrastructure/postgres"
	notifyhttp "e2d/internal/notify/interfaces/http"
	"e2d/internal/observability/metrics"
	periods "e2d/internal/periods/domain"
	periodspg "e2d/internal/periods/infrastructure/postgres"
	periodshttp "e2d/internal/periods/interfaces/http"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	logger := log.New(os.Stdout, "", log.LstdFlags)

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("config error: %v", err)
	}

	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		logger.Fatalf("db open error: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logger.Fatalf("db ping error: %v", err)
	}

	metrics.Init(db, logger)
	auditRepo := audit.NewRepository(db)

	recordRepo := financepg.NewRecordRepository(db)
	memberRepo := memberspg.NewMemberRepository(db)
	activityRepo := memberspg.NewActivityRepository(db)
	periodRepo := periodspg.NewPeriodRepository(db)
	meetingRepo := periodspg.NewMeetingRepository(db)
	campaignRepo := notifypg.NewCampaignRepository(db)

	reportService, err := financeapp.NewReportService(
		recordRepo,
		calendarReader{periods: periodRepo, meetings: meetingRepo},
		cfg.SavingsInterestShare,
		financeapp.SystemClock{},
		logger,
	)
	if err != nil {
		logger.Fatalf("report service error: %v", err)
	}
	reportsHandler, err := financehttp.NewReportsHandler(reportService)
	if err != nil {
		logger.Fatalf("reports handler error: %v", err)
	}
	recordsHandler, err := financehttp.NewRecordsHandler(recordRepo, auditRepo)
	if err != nil {
		logger.Fatalf("records handler error: %v", err)
	}
	membersHandler, err := membershttp.NewHandler(memberRepo, activityRepo, auditRepo)
	if err != nil {
		logger.Fatalf("members handler error: %v", err)
	}
	periodsHandler, err := periodshttp.NewHandler(periodRepo, meetingRepo, auditRepo)
	if err != nil {
		logger.Fatalf("periods handler error: %v", err)
	}

	campaignChannel := notifyapp.NewWebhookChannel(cfg.NotifyWebhookURL)
	campaignService, err := notifyapp.NewCampaignService(campaignRepo, memberRepo, campaignChannel, logger)
	if err != nil {
		logger.Fatalf("campaign service error: %v", err)
	}
	campaignsHandler, err := notifyhttp.NewHandler(campaignRepo, campaignService, auditRepo)
	if err != nil {
		logger.Fatalf("campaigns handler error: %v", err)
	}
	go runCampaignLoop(context.Background(), campaignService, cfg.CampaignInterval)

	backupService, err := backup.NewService(cfg.Backup.Dir, cfg.Backup.Retain,
		recordRepo, memberRepo, periodRepo, meetingRepo, nil, logger)
	if err != nil {
		logger.Fatalf("backup service error: %v", err)
	}
	backupScheduler := backup.NewScheduler(backupService, cfg.Backup.DailyAt, logger)
	go backupScheduler.Start(context.Background())

	policy := auth.NewDefaultPolicy([]string{"/healthz", "/metrics"}, nil)
	authMiddleware := auth.NewMiddleware([]byte(cfg.JWTSecret), policy)

	mux := http.NewServeMux()
	mux.Handle("/api/v1/reports/", reportsHandler)
	mux.Handle("/api/v1/records", recordsHandler)
	mux.Handle("/api/v1/records/", recordsHandler)
	mux.Handle("/api/v1/members", membersHandler)
	mux.Handle("/api/v1/members/", membersHandler)
	mux.Handle("/api/v1/activities", membersHandler)
	mux.Handle("/api/v1/activities/", membersHandler)
	mux.Handle("/api/v1/periods", periodsHandler)
	mux.Handle("/api/v1/periods/", periodsHandler)
	mux.Handle("/api/v1/meetings", periodsHandler)
	mux.Handle("/api/v1/meetings/", periodsHandler)
	mux.Handle("/api/v1/campaigns", campaignsHandler)
	mux.Handle("/api/v1/campaigns/", campaignsHandler)
	mux.HandleFunc("/api/v1/backup/run", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		path, err := backupService.Run(r.Context())
		if err != nil {
			logger.Printf("backup run error: %v", err)
			http.Error(w, "backup error", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"path":` + strconv.Quote(path) + `}`))
	})
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	server := &http.Server{Addr: cfg.HTTPAddr, Handler: loggingMiddleware(authMiddleware.Wrap(mux), logger)}
	logger.Printf("http listening on %s", cfg.HTTPAddr)
	logger.Fatal(server.ListenAndServe())
}

func runCampaignLoop(ctx context.Context, service *notifyapp.CampaignService, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			service.RunDue(ctx, now.UTC())
		}
	}
}

func loggingMiddleware(next http.Handler, logger *log.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		resp := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(resp, r)
		logger.Printf("http %s %s %d %s", r.Method, r.URL.Path, resp.status, time.Since(start))
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

// ---- Adapters ----

type calendarReader struct {
	periods  *periodspg.PeriodRepository
	meetings *periodspg.MeetingRepository
}

func (c calendarReader) ListPeriods(ctx context.Context) ([]periods.FiscalPeriod, error) {
	return c.periods.List(ctx)
}

func (c calendarReader) ListMeetings(ctx context.Context) ([]periods.Meeting, error) {
	return c.meetings.List(ctx)
}
