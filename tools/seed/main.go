package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	_ "github.com/jackc/pgx/v5/stdlib"

	finance "e2d/internal/finance/domain"
	financepg "e2d/internal/finance/infrastructure/postgres"
	members "e2d/internal/members/domain"
	memberspg "e2d/internal/members/infrastructure/postgres"
	periods "e2d/internal/periods/domain"
	periodspg "e2d/internal/periods/infrastructure/postgres"
)

type config struct {
	dsn         string
	memberCount int
	year        int
	meetings    int
	seedRecords bool
	xlsxOut     string
}

var firstNames = []string{"Alice", "Jean", "Paul", "Marie", "Brice", "Clarisse", "Hervé", "Nadine", "Serge", "Olive"}
var lastNames = []string{"Mbarga", "Fotso", "Nganou", "Tchoua", "Ekambi", "Ndongo", "Abena", "Kamga", "Essomba", "Biya"}

func main() {
	cfg := parseConfig()
	if cfg.dsn == "" {
		log.Fatal("PG_DSN or DATABASE_URL is required")
	}
	if cfg.memberCount <= 0 {
		log.Fatal("member-count must be > 0")
	}

	db, err := sql.Open("pgx", cfg.dsn)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	seededMembers, err := seedMembers(ctx, db, rng, cfg.memberCount)
	if err != nil {
		log.Fatalf("seed members: %v", err)
	}
	log.Printf("seeded %d members", len(seededMembers))

	period, meetings, err := seedCalendar(ctx, db, cfg.year, cfg.meetings)
	if err != nil {
		log.Fatalf("seed calendar: %v", err)
	}
	log.Printf("seeded period %s with %d meetings", period.Name, len(meetings))

	if cfg.seedRecords {
		count, err := seedRecords(ctx, db, rng, seededMembers, *period, meetings)
		if err != nil {
			log.Fatalf("seed records: %v", err)
		}
		log.Printf("seeded %d financial records", count)
	}

	if cfg.xlsxOut != "" {
		if err := writeRoster(cfg.xlsxOut, seededMembers); err != nil {
			log.Fatalf("write roster: %v", err)
		}
		log.Printf("roster written to %s", cfg.xlsxOut)
	}
}

func parseConfig() config {
	cfg := config{}
	flag.StringVar(&cfg.dsn, "pg-dsn", envOrDefault("PG_DSN", envOrDefault("DATABASE_URL", "")), "Postgres DSN")
	flag.IntVar(&cfg.memberCount, "member-count", envOrInt("MEMBER_COUNT", 20), "number of members to seed")
	flag.IntVar(&cfg.year, "year", envOrInt("SEED_YEAR", time.Now().Year()), "fiscal year to seed")
	flag.IntVar(&cfg.meetings, "meetings", envOrInt("MEETING_COUNT", 12), "number of monthly meetings")
	flag.BoolVar(&cfg.seedRecords, "records", true, "seed financial records")
	flag.StringVar(&cfg.xlsxOut, "xlsx-out", "", "optional XLSX roster output path")
	flag.Parse()
	return cfg
}

func seedMembers(ctx context.Context, db *sql.DB, rng *rand.Rand, count int) ([]members.Member, error) {
	repo := memberspg.NewMemberRepository(db)
	seeded := make([]members.Member, 0, count)
	for i := 0; i < count; i++ {
		first := firstNames[i%len(firstNames)]
		last := lastNames[(i/len(firstNames))%len(lastNames)]
		joined := time.Date(2020+rng.Intn(4), time.Month(1+rng.Intn(12)), 1+rng.Intn(28), 0, 0, 0, 0, time.UTC)
		bureau := ""
		if i < 3 {
			bureau = []string{"président", "trésorier", "secrétaire"}[i]
		}
		phone := fmt.Sprintf("6%08d", rng.Intn(100000000))
		m, err := members.NewMember(first, fmt.Sprintf("%s %d", last, i+1), phone, "", bureau, joined)
		if err != nil {
			return nil, err
		}
		if err := repo.Create(ctx, m); err != nil {
			return nil, err
		}
		seeded = append(seeded, *m)
	}
	return seeded, nil
}

func seedCalendar(ctx context.Context, db *sql.DB, year, meetingCount int) (*periods.FiscalPeriod, []periods.Meeting, error) {
	periodRepo := periodspg.NewPeriodRepository(db)
	meetingRepo := periodspg.NewMeetingRepository(db)

	start := time.Date(year, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(year, 12, 31, 0, 0, 0, 0, time.UTC)
	period, err := periods.NewFiscalPeriod("Exercice "+strconv.Itoa(year), start, end)
	if err != nil {
		return nil, nil, err
	}
	if err := periodRepo.Create(ctx, period); err != nil {
		return nil, nil, err
	}

	seeded := make([]periods.Meeting, 0, meetingCount)
	for i := 0; i < meetingCount; i++ {
		date := time.Date(year, time.Month(1+i%12), 9, 0, 0, 0, 0, time.UTC)
		meeting, err := periods.NewMeeting("Assemblée "+date.Format("2006-01"), date)
		if err != nil {
			return nil, nil, err
		}
		if err := meetingRepo.Create(ctx, meeting); err != nil {
			return nil, nil, err
		}
		seeded = append(seeded, *meeting)
	}
	return period, seeded, nil
}

func seedRecords(ctx context.Context, db *sql.DB, rng *rand.Rand, roster []members.Member, period periods.FiscalPeriod, meetings []periods.Meeting) (int, error) {
	repo := financepg.NewRecordRepository(db)
	count := 0
	for _, m := range roster {
		for _, meeting := range meetings {
			status := finance.StatusPaid
			if rng.Intn(5) == 0 {
				status = finance.StatusLate
			}
			amount := decimal.NewFromInt(int64(1000 * (1 + rng.Intn(10))))
			record, err := finance.NewRecord(finance.KindCotisation, m.ID, m.FullName(), "mensuelle",
				amount, meeting.Date, meeting.ID, status)
			if err != nil {
				return count, err
			}
			if err := repo.Create(ctx, record); err != nil {
				return count, err
			}
			count++
		}

		if rng.Intn(3) == 0 {
			amount := decimal.NewFromInt(int64(10000 * (1 + rng.Intn(5))))
			loan, err := finance.NewRecord(finance.KindPret, m.ID, m.FullName(), "standard",
				amount, period.StartDate.AddDate(0, rng.Intn(6), 0), "", finance.StatusOngoing)
			if err != nil {
				return count, err
			}
			loan.InterestRate = decimal.NewFromInt(5)
			if err := repo.Create(ctx, loan); err != nil {
				return count, err
			}
			count++
		}

		deposit := decimal.NewFromInt(int64(2000 * (1 + rng.Intn(8))))
		saving, err := finance.NewRecord(finance.KindEpargne, m.ID, m.FullName(), "libre",
			deposit, period.StartDate.AddDate(0, rng.Intn(12), 0), "", finance.StatusDeposited)
		if err != nil {
			return count, err
		}
		if err := repo.Create(ctx, saving); err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}

func writeRoster(path string, roster []members.Member) error {
	f := excelize.NewFile()
	defer f.Close()
	sheet := "members"
	f.SetSheetName("Sheet1", sheet)
	header := []any{"ID", "Name", "Phone", "Bureau", "Joined"}
	cell, err := excelize.CoordinatesToCellName(1, 1)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &header); err != nil {
		return err
	}
	for i, m := range roster {
		row := []any{m.ID, m.FullName(), m.Phone, m.Bureau, m.JoinedAt.Format("2006-01-02")}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return f.SaveAs(path)
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func envOrInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}
