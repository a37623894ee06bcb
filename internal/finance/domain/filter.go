package finance

import (
	"strings"
	"time"

	periods "e2d/internal/periods/domain"
)

// FilterDateLayout is the wire format for custom range bounds.
const FilterDateLayout = "2006-01-02"

// FilterContext is the three-level refinement selected by a caller: fiscal
// period, then meeting, then custom date range, plus an orthogonal free-text
// search. Date bounds arrive as raw strings; anything unparsable counts as
// unset. Filters are advisory conveniences, never integrity constraints, so
// malformed input degrades to the most permissive interpretation instead of
// failing.
type FilterContext struct {
	FiscalPeriodID string
	MeetingID      string
	CustomStart    string
	CustomEnd      string
	Search         string
}

// IsZero reports whether no filter field is set.
func (c FilterContext) IsZero() bool {
	return c.FiscalPeriodID == "" && c.MeetingID == "" &&
		c.CustomStart == "" && c.CustomEnd == "" && c.Search == ""
}

// Filter narrows records by the hierarchical context.
//
// Level 1 keeps records whose date falls within the resolved fiscal period,
// inclusive on both bounds. An unresolvable period id fails open: no period
// filter is applied and the lower levels are skipped, because they only make
// sense inside an active period selection. Level 2 keeps records whose
// meeting foreign key matches exactly. Level 3 applies independently optional
// inclusive custom bounds. The free-text search matches member name or
// category case-insensitively at any level combination.
func Filter(records []Record, ctx FilterContext, allPeriods []periods.FiscalPeriod) []Record {
	result := make([]Record, 0, len(records))

	period, periodActive := periods.FindPeriod(allPeriods, ctx.FiscalPeriodID)
	customStart, hasStart := parseFilterDate(ctx.CustomStart)
	customEnd, hasEnd := parseFilterDate(ctx.CustomEnd)
	search := strings.ToLower(strings.TrimSpace(ctx.Search))

	for _, r := range records {
		if periodActive {
			if !period.Contains(r.RecordDate) {
				continue
			}
			if ctx.MeetingID != "" && r.MeetingID != ctx.MeetingID {
				continue
			}
			if hasStart && r.RecordDate.Before(customStart) {
				continue
			}
			if hasEnd && r.RecordDate.After(customEnd) {
				continue
			}
		}
		if search != "" && !matchesSearch(r, search) {
			continue
		}
		result = append(result, r)
	}
	return result
}

func matchesSearch(r Record, lowered string) bool {
	return strings.Contains(strings.ToLower(r.MemberName), lowered) ||
		strings.Contains(strings.ToLower(r.Category), lowered)
}

func parseFilterDate(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(FilterDateLayout, value)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
