package backup

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	finance "e2d/internal/finance/domain"
	members "e2d/internal/members/domain"
	"e2d/internal/observability/metrics"
	periods "e2d/internal/periods/domain"
)

const (
	filePrefix = "e2d-backup-"
	fileSuffix = ".xlsx"
	timeFormat = "20060102-150405"

	// DefaultRetention keeps roughly two weeks of daily backups.
	DefaultRetention = 14

	dateLayout = "2006-01-02"
)

// RecordReader loads every financial record of one kind.
type RecordReader interface {
	ListByKind(ctx context.Context, kind finance.Kind) ([]finance.Record, error)
}

// MemberReader loads the member registry.
type MemberReader interface {
	List(ctx context.Context, activeOnly bool) ([]members.Member, error)
}

// PeriodReader loads the fiscal calendar.
type PeriodReader interface {
	List(ctx context.Context) ([]periods.FiscalPeriod, error)
}

// MeetingReader loads meetings.
type MeetingReader interface {
	List(ctx context.Context) ([]periods.Meeting, error)
}

// Clock provides time for file naming and scheduling.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

// Service writes full data snapshots as XLSX workbooks: one sheet per entity
// set, one timestamped file per run, pruned to a retention count.
type Service struct {
	dir      string
	retain   int
	records  RecordReader
	members  MemberReader
	periods  PeriodReader
	meetings MeetingReader
	clock    Clock
	logger   *log.Logger
}

// NewService constructs a backup service.
func NewService(dir string, retain int, records RecordReader, memberReader MemberReader, periodReader PeriodReader, meetingReader MeetingReader, clock Clock, logger *log.Logger) (*Service, error) {
	if dir == "" {
		return nil, errors.New("backup: empty directory")
	}
	if records == nil || memberReader == nil || periodReader == nil || meetingReader == nil {
		return nil, errors.New("backup: nil reader")
	}
	if retain <= 0 {
		retain = DefaultRetention
	}
	if clock == nil {
		clock = systemClock{}
	}
	return &Service{
		dir:      dir,
		retain:   retain,
		records:  records,
		members:  memberReader,
		periods:  periodReader,
		meetings: meetingReader,
		clock:    clock,
		logger:   logger,
	}, nil
}

// Run writes one backup workbook and prunes old files. Returns the path of
// the written file.
func (s *Service) Run(ctx context.Context) (string, error) {
	started := s.clock.Now()
	path, err := s.run(ctx, started)
	metrics.ObserveBackup(s.clock.Now().Sub(started), err == nil)
	return path, err
}

func (s *Service) run(ctx context.Context, now time.Time) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := s.writeMembers(ctx, f); err != nil {
		return "", err
	}
	if err := s.writePeriods(ctx, f); err != nil {
		return "", err
	}
	if err := s.writeMeetings(ctx, f); err != nil {
		return "", err
	}
	if err := s.writeRecords(ctx, f); err != nil {
		return "", err
	}

	path := filepath.Join(s.dir, filePrefix+now.Format(timeFormat)+fileSuffix)
	if err := f.SaveAs(path); err != nil {
		return "", err
	}
	if err := s.prune(); err != nil {
		s.logf("backup prune failed: %v", err)
	}
	s.logf("backup written: %s", path)
	return path, nil
}

func (s *Service) writeMembers(ctx context.Context, f *excelize.File) error {
	list, err := s.members.List(ctx, false)
	if err != nil {
		return err
	}
	sheet := "members"
	f.SetSheetName("Sheet1", sheet)
	if err := writeRow(f, sheet, 1, []any{"ID", "First Name", "Last Name", "Phone", "Email", "Bureau", "Joined", "Active"}); err != nil {
		return err
	}
	for i, m := range list {
		row := []any{m.ID, m.FirstName, m.LastName, m.Phone, m.Email, m.Bureau, m.JoinedAt.Format(dateLayout), m.Active}
		if err := writeRow(f, sheet, i+2, row); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) writePeriods(ctx context.Context, f *excelize.File) error {
	list, err := s.periods.List(ctx)
	if err != nil {
		return err
	}
	sheet := "periods"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}
	if err := writeRow(f, sheet, 1, []any{"ID", "Name", "Start", "End"}); err != nil {
		return err
	}
	for i, p := range list {
		row := []any{p.ID, p.Name, p.StartDate.Format(dateLayout), p.EndDate.Format(dateLayout)}
		if err := writeRow(f, sheet, i+2, row); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) writeMeetings(ctx context.Context, f *excelize.File) error {
	list, err := s.meetings.List(ctx)
	if err != nil {
		return err
	}
	sheet := "meetings"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}
	if err := writeRow(f, sheet, 1, []any{"ID", "Subject", "Date"}); err != nil {
		return err
	}
	for i, m := range list {
		row := []any{m.ID, m.Subject, m.Date.Format(dateLayout)}
		if err := writeRow(f, sheet, i+2, row); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) writeRecords(ctx context.Context, f *excelize.File) error {
	for _, kind := range finance.Kinds() {
		list, err := s.records.ListByKind(ctx, kind)
		if err != nil {
			return err
		}
		sheet := string(kind)
		if _, err := f.NewSheet(sheet); err != nil {
			return err
		}
		if err := writeRow(f, sheet, 1, []any{"ID", "Member", "Category", "Amount", "Date", "Meeting", "Status", "Interest Rate"}); err != nil {
			return err
		}
		for i, record := range list {
			row := []any{
				record.ID,
				record.MemberName,
				record.Category,
				record.Amount.String(),
				record.RecordDate.Format(dateLayout),
				record.MeetingID,
				string(record.Status),
				record.InterestRate.String(),
			}
			if err := writeRow(f, sheet, i+2, row); err != nil {
				return err
			}
		}
	}
	return nil
}

func writeRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &values)
}

// prune removes the oldest backup files beyond the retention count. File
// names embed the timestamp, so lexical order is chronological order.
func (s *Service) prune() error {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return err
	}
	var names []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, filePrefix) || !strings.HasSuffix(name, fileSuffix) {
			continue
		}
		names = append(names, name)
	}
	if len(names) <= s.retain {
		return nil
	}
	sort.Strings(names)
	for _, name := range names[:len(names)-s.retain] {
		if err := os.Remove(filepath.Join(s.dir, name)); err != nil {
			return fmt.Errorf("remove %s: %w", name, err)
		}
	}
	return nil
}

func (s *Service) logf(format string, args ...any) {
	if s.logger != nil {
		s.logger.Printf(format, args...)
	}
}
