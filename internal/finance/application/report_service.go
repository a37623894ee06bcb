package application

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	finance "e2d/internal/finance/domain"
	periods "e2d/internal/periods/domain"
)

// RecordReader loads financial records by kind.
type RecordReader interface {
	ListByKind(ctx context.Context, kind finance.Kind) ([]finance.Record, error)
}

// PeriodReader loads fiscal periods and meetings.
type PeriodReader interface {
	ListPeriods(ctx context.Context) ([]periods.FiscalPeriod, error)
	ListMeetings(ctx context.Context) ([]periods.Meeting, error)
}

// Clock returns the current time.
type Clock interface {
	Now() time.Time
}

// SystemClock uses time.Now.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// DefaultSavingsInterestShare is the fraction of loan interest allocated to
// savers when no share is configured. The rule is inherited, not confirmed.
var DefaultSavingsInterestShare = decimal.RequireFromString("0.10")

// ModuleReport is the filtered and aggregated view of one record kind.
type ModuleReport struct {
	Kind                 finance.Kind
	Records              []finance.Record
	Aggregate            finance.AggregateResult
	MeetingOutsidePeriod bool
}

// GlobalReport composes every module under one filter context into the
// treasury rollup.
type GlobalReport struct {
	Context              finance.FilterContext
	GeneratedAt          time.Time
	Dues                 ModuleReport
	Savings              ModuleReport
	Loans                ModuleReport
	Sanctions            ModuleReport
	Aid                  ModuleReport
	LoanSummary          finance.LoanSummary
	SavingsSummary       finance.SavingsSummary
	NetBalance           decimal.Decimal
	MeetingOutsidePeriod bool
}

// ReportService runs the filter/aggregate pipeline over fetched records.
type ReportService struct {
	records       RecordReader
	periods       PeriodReader
	interestShare decimal.Decimal
	clock         Clock
	logger        *log.Logger
}

// NewReportService constructs the service. interestShare falls back to the
// default 10% allocation when not positive.
func NewReportService(records RecordReader, periodReader PeriodReader, interestShare decimal.Decimal, clock Clock, logger *log.Logger) (*ReportService, error) {
	if records == nil {
		return nil, errors.New("report service: nil record reader")
	}
	if periodReader == nil {
		return nil, errors.New("report service: nil period reader")
	}
	if !interestShare.IsPositive() {
		interestShare = DefaultSavingsInterestShare
	}
	if clock == nil {
		clock = SystemClock{}
	}
	return &ReportService{
		records:       records,
		periods:       periodReader,
		interestShare: interestShare,
		clock:         clock,
		logger:        logger,
	}, nil
}

// ModuleReport filters and aggregates one record kind. Upstream failures
// degrade to an empty record set; the report never fails on fetch errors.
func (s *ReportService) ModuleReport(ctx context.Context, kind finance.Kind, fc finance.FilterContext) (ModuleReport, error) {
	if _, ok := finance.ParseKind(string(kind)); !ok {
		return ModuleReport{}, finance.ErrUnknownKind
	}

	records, err := s.records.ListByKind(ctx, kind)
	if err != nil {
		s.logf("report: list %s error: %v", kind, err)
		records = nil
	}
	allPeriods, allMeetings := s.loadScope(ctx)

	filtered := finance.Filter(records, fc, allPeriods)
	return ModuleReport{
		Kind:                 kind,
		Records:              filtered,
		Aggregate:            finance.Aggregate(filtered),
		MeetingOutsidePeriod: periods.MeetingOutsidePeriod(fc.FiscalPeriodID, fc.MeetingID, allPeriods, allMeetings),
	}, nil
}

// GlobalReport fetches all five kinds concurrently, applies the same filter
// context to each, and composes the treasury rollup. A failed per-kind fetch
// contributes an empty slice rather than aborting the report, so the rollup
// always covers a consistent period across whatever data arrived.
func (s *ReportService) GlobalReport(ctx context.Context, fc finance.FilterContext) (GlobalReport, error) {
	fetched := make(map[finance.Kind][]finance.Record, len(finance.Kinds()))
	var group errgroup.Group
	results := make([][]finance.Record, len(finance.Kinds()))
	for i, kind := range finance.Kinds() {
		i, kind := i, kind
		group.Go(func() error {
			records, err := s.records.ListByKind(ctx, kind)
			if err != nil {
				s.logf("report: list %s error: %v", kind, err)
				records = nil
			}
			results[i] = records
			return nil
		})
	}
	// Fetch goroutines never return errors; Wait is a pure barrier so every
	// slice is resolved before the synchronous pipeline runs.
	_ = group.Wait()
	for i, kind := range finance.Kinds() {
		fetched[kind] = results[i]
	}

	allPeriods, allMeetings := s.loadScope(ctx)

	report := GlobalReport{
		Context:     fc,
		GeneratedAt: s.clock.Now().UTC(),
		Dues:        s.module(finance.KindCotisation, fetched[finance.KindCotisation], fc, allPeriods),
		Savings:     s.module(finance.KindEpargne, fetched[finance.KindEpargne], fc, allPeriods),
		Loans:       s.module(finance.KindPret, fetched[finance.KindPret], fc, allPeriods),
		Sanctions:   s.module(finance.KindSanction, fetched[finance.KindSanction], fc, allPeriods),
		Aid:         s.module(finance.KindAide, fetched[finance.KindAide], fc, allPeriods),
	}
	report.MeetingOutsidePeriod = periods.MeetingOutsidePeriod(fc.FiscalPeriodID, fc.MeetingID, allPeriods, allMeetings)

	report.LoanSummary = finance.SummarizeLoans(report.Loans.Records)
	report.SavingsSummary = finance.SummarizeSavings(report.Savings.Records, report.LoanSummary.InterestAccrued, s.interestShare)
	report.NetBalance = finance.NetBalance(finance.TreasuryInput{
		DuesCollected:        finance.SumByStatus(report.Dues.Records, finance.StatusPaid),
		BeneficiariesPaidOut: finance.SumByStatus(report.Aid.Records, finance.StatusPaid),
		LoansRepaid:          report.LoanSummary.TotalRepaid,
		SavingsTotal:         report.SavingsSummary.Net,
		SanctionsPaid:        finance.SumByStatus(report.Sanctions.Records, finance.StatusPaid),
	})
	return report, nil
}

func (s *ReportService) module(kind finance.Kind, records []finance.Record, fc finance.FilterContext, allPeriods []periods.FiscalPeriod) ModuleReport {
	filtered := finance.Filter(records, fc, allPeriods)
	return ModuleReport{
		Kind:      kind,
		Records:   filtered,
		Aggregate: finance.Aggregate(filtered),
	}
}

func (s *ReportService) loadScope(ctx context.Context) ([]periods.FiscalPeriod, []periods.Meeting) {
	allPeriods, err := s.periods.ListPeriods(ctx)
	if err != nil {
		s.logf("report: list periods error: %v", err)
		allPeriods = nil
	}
	allMeetings, err := s.periods.ListMeetings(ctx)
	if err != nil {
		s.logf("report: list meetings error: %v", err)
		allMeetings = nil
	}
	return allPeriods, allMeetings
}

func (s *ReportService) logf(format string, args ...any) {
	if s.logger != nil {
		s.logger.Printf(format, args...)
	}
}
