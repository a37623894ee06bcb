package members

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Result is the outcome of one sports activity entry.
type Result string

const (
	ResultWin          Result = "win"
	ResultLoss         Result = "loss"
	ResultDraw         Result = "draw"
	ResultParticipated Result = "participated"
)

// ParseResult validates a result string.
func ParseResult(value string) (Result, bool) {
	switch Result(value) {
	case ResultWin, ResultLoss, ResultDraw, ResultParticipated:
		return Result(value), true
	default:
		return "", false
	}
}

// Activity is one member's participation in a sports discipline on a date.
type Activity struct {
	ID         string
	MemberID   string
	Discipline string
	Date       time.Time
	Result     Result
}

// NewActivity constructs a validated activity entry.
func NewActivity(memberID, discipline string, date time.Time, result Result) (*Activity, error) {
	if strings.TrimSpace(memberID) == "" {
		return nil, ErrEmptyMemberID
	}
	discipline = strings.TrimSpace(discipline)
	if discipline == "" {
		return nil, ErrEmptyDiscipline
	}
	if date.IsZero() {
		return nil, ErrZeroActivityDate
	}
	if _, ok := ParseResult(string(result)); !ok {
		return nil, ErrInvalidResult
	}
	return &Activity{
		ID:         uuid.NewString(),
		MemberID:   memberID,
		Discipline: discipline,
		Date:       date,
		Result:     result,
	}, nil
}

// DisciplineStats summarizes participation in one discipline.
type DisciplineStats struct {
	Discipline   string
	Entries      int
	Wins         int
	Losses       int
	Draws        int
	Participants int
}

// SummarizeActivities groups activities per discipline, sorted by
// discipline name. Participants counts distinct members.
func SummarizeActivities(activities []Activity) []DisciplineStats {
	byDiscipline := make(map[string]*DisciplineStats)
	seen := make(map[string]map[string]struct{})
	for _, a := range activities {
		stats := byDiscipline[a.Discipline]
		if stats == nil {
			stats = &DisciplineStats{Discipline: a.Discipline}
			byDiscipline[a.Discipline] = stats
			seen[a.Discipline] = make(map[string]struct{})
		}
		stats.Entries++
		switch a.Result {
		case ResultWin:
			stats.Wins++
		case ResultLoss:
			stats.Losses++
		case ResultDraw:
			stats.Draws++
		}
		if _, ok := seen[a.Discipline][a.MemberID]; !ok {
			seen[a.Discipline][a.MemberID] = struct{}{}
			stats.Participants++
		}
	}

	result := make([]DisciplineStats, 0, len(byDiscipline))
	for _, stats := range byDiscipline {
		result = append(result, *stats)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Discipline < result[j].Discipline })
	return result
}
