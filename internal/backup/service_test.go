package backup

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	finance "e2d/internal/finance/domain"
	members "e2d/internal/members/domain"
	periods "e2d/internal/periods/domain"
)

type stubRecords struct {
	byKind map[finance.Kind][]finance.Record
}

func (s *stubRecords) ListByKind(_ context.Context, kind finance.Kind) ([]finance.Record, error) {
	return s.byKind[kind], nil
}

type stubMembers struct {
	list []members.Member
}

func (s *stubMembers) List(_ context.Context, _ bool) ([]members.Member, error) {
	return s.list, nil
}

type stubPeriods struct {
	list []periods.FiscalPeriod
}

func (s *stubPeriods) List(_ context.Context) ([]periods.FiscalPeriod, error) {
	return s.list, nil
}

type stubMeetings struct {
	list []periods.Meeting
}

func (s *stubMeetings) List(_ context.Context) ([]periods.Meeting, error) {
	return s.list, nil
}

type fixedClock struct {
	now time.Time
}

func (c *fixedClock) Now() time.Time { return c.now }

func testRecord(t *testing.T, kind finance.Kind, amount string, status finance.Status) finance.Record {
	t.Helper()
	record, err := finance.NewRecord(kind, "m-1", "Alice Mbarga", "mensuelle",
		decimal.RequireFromString(amount), time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC), "", status)
	if err != nil {
		t.Fatalf("NewRecord: %v", err)
	}
	return *record
}

func newTestService(t *testing.T, dir string, retain int, clock Clock) *Service {
	t.Helper()
	records := &stubRecords{byKind: map[finance.Kind][]finance.Record{
		finance.KindCotisation: {testRecord(t, finance.KindCotisation, "5000", finance.StatusPaid)},
	}}
	memberList := &stubMembers{list: []members.Member{
		{ID: "m-1", FirstName: "Alice", LastName: "Mbarga", JoinedAt: time.Date(2023, 1, 10, 0, 0, 0, 0, time.UTC), Active: true},
	}}
	periodList := &stubPeriods{list: []periods.FiscalPeriod{
		{ID: "p-1", Name: "Exercice 2024",
			StartDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			EndDate:   time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)},
	}}
	meetingList := &stubMeetings{list: []periods.Meeting{
		{ID: "mt-1", Subject: "Assemblée de mars", Date: time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC)},
	}}
	s, err := NewService(dir, retain, records, memberList, periodList, meetingList, clock, nil)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return s
}

func TestRunWritesWorkbook(t *testing.T) {
	dir := t.TempDir()
	clock := &fixedClock{now: time.Date(2024, 3, 9, 4, 0, 0, 0, time.UTC)}
	s := newTestService(t, dir, 0, clock)

	path, err := s.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if filepath.Base(path) != "e2d-backup-20240309-040000.xlsx" {
		t.Fatalf("file name = %s", filepath.Base(path))
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	want := []string{"members", "periods", "meetings", "cotisation", "epargne", "pret", "sanction", "aide"}
	for _, name := range want {
		found := false
		for _, sheet := range sheets {
			if sheet == name {
				found = true
				break
			}
		}
		if !found {
			t.Fatalf("missing sheet %q in %v", name, sheets)
		}
	}

	value, err := f.GetCellValue("members", "B2")
	if err != nil {
		t.Fatalf("GetCellValue: %v", err)
	}
	if value != "Alice" {
		t.Fatalf("members B2 = %q", value)
	}
	value, err = f.GetCellValue("cotisation", "D2")
	if err != nil {
		t.Fatalf("GetCellValue: %v", err)
	}
	if value != "5000" {
		t.Fatalf("cotisation D2 = %q", value)
	}
}

func TestRunPrunesOldBackups(t *testing.T) {
	dir := t.TempDir()
	clock := &fixedClock{now: time.Date(2024, 3, 9, 4, 0, 0, 0, time.UTC)}
	s := newTestService(t, dir, 2, clock)

	for i := 0; i < 3; i++ {
		if _, err := s.Run(context.Background()); err != nil {
			t.Fatalf("Run %d: %v", i, err)
		}
		clock.now = clock.now.Add(24 * time.Hour)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	var names []string
	for _, entry := range entries {
		names = append(names, entry.Name())
	}
	if len(names) != 2 {
		t.Fatalf("kept %d files: %v", len(names), names)
	}
	for _, name := range names {
		if strings.Contains(name, "20240309") {
			t.Fatalf("oldest backup not pruned: %v", names)
		}
	}
}

func TestSchedulerShouldRun(t *testing.T) {
	s := NewScheduler(&Service{}, "04:30", nil)
	if !s.shouldRun(time.Date(2024, 3, 9, 4, 30, 12, 0, time.UTC)) {
		t.Fatalf("expected run at 04:30")
	}
	if s.shouldRun(time.Date(2024, 3, 9, 4, 31, 0, 0, time.UTC)) {
		t.Fatalf("unexpected run at 04:31")
	}
	bad := NewScheduler(&Service{}, "nope", nil)
	if bad.shouldRun(time.Date(2024, 3, 9, 4, 30, 0, 0, time.UTC)) {
		t.Fatalf("invalid schedule should never run")
	}
}
