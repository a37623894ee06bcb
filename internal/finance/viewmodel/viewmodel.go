// Package viewmodel shapes aggregate results and filtered records into the
// structures consumed by presentation and export: formatted FCFA totals,
// status badges, chart series and flattened table rows. No business rule
// lives here; totals are never re-derived from the records.
package viewmodel

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	finance "e2d/internal/finance/domain"
)

// Badge is the display rendering of a record status.
type Badge struct {
	Label string `json:"label"`
	Color string `json:"color"`
}

var badges = map[finance.Status]Badge{
	finance.StatusPaid:      {Label: "Paid", Color: "green"},
	finance.StatusPending:   {Label: "Pending", Color: "gray"},
	finance.StatusLate:      {Label: "Late", Color: "red"},
	finance.StatusUnpaid:    {Label: "Unpaid", Color: "red"},
	finance.StatusOngoing:   {Label: "Ongoing", Color: "blue"},
	finance.StatusRepaid:    {Label: "Repaid", Color: "green"},
	finance.StatusRenewed:   {Label: "Renewed", Color: "orange"},
	finance.StatusApproved:  {Label: "Approved", Color: "blue"},
	finance.StatusDeposited: {Label: "Deposited", Color: "green"},
	finance.StatusWithdrawn: {Label: "Withdrawn", Color: "orange"},
}

// BadgeFor maps a status to its badge. Unknown statuses render gray.
func BadgeFor(status finance.Status) Badge {
	if badge, ok := badges[status]; ok {
		return badge
	}
	return Badge{Label: string(status), Color: "gray"}
}

// FormatFCFA renders an amount as a grouped FCFA string, e.g. "1 500 000
// FCFA". The franc has no sub-unit in practice; fractional amounts are
// rounded half-up at this point only, never inside a sum.
func FormatFCFA(amount decimal.Decimal) string {
	rounded := amount.Round(0)
	digits := rounded.Abs().String()

	var b strings.Builder
	if rounded.IsNegative() {
		b.WriteByte('-')
	}
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 && !(b.Len() == 1 && rounded.IsNegative()) {
			b.WriteByte(' ')
		}
		b.WriteString(digits[i : i+3])
	}
	b.WriteString(" FCFA")
	return b.String()
}

// ChartPoint is a name/value pair for pie and bar series.
type ChartPoint struct {
	Name  string          `json:"name"`
	Value decimal.Decimal `json:"value"`
}

// StatusSeries converts a status breakdown into a chart series, sorted by
// name so repeated runs emit identical output.
func StatusSeries(agg finance.AggregateResult) []ChartPoint {
	series := make([]ChartPoint, 0, len(agg.ByStatus))
	for status, count := range agg.ByStatus {
		series = append(series, ChartPoint{
			Name:  BadgeFor(status).Label,
			Value: decimal.NewFromInt(int64(count)),
		})
	}
	sort.Slice(series, func(i, j int) bool { return series[i].Name < series[j].Name })
	return series
}

// CategorySeries totals record amounts per category, sorted by name.
func CategorySeries(records []finance.Record) []ChartPoint {
	byCategory := make(map[string]decimal.Decimal)
	for _, r := range records {
		name := r.Category
		if name == "" {
			name = "Autres"
		}
		byCategory[name] = byCategory[name].Add(r.Amount)
	}
	series := make([]ChartPoint, 0, len(byCategory))
	for name, total := range byCategory {
		series = append(series, ChartPoint{Name: name, Value: total})
	}
	sort.Slice(series, func(i, j int) bool { return series[i].Name < series[j].Name })
	return series
}

// Field is one header/value cell of a flattened export row.
type Field struct {
	Header string `json:"header"`
	Value  string `json:"value"`
}

// TableHeaders lists the flattened row headers in column order.
func TableHeaders() []string {
	return []string{"Member", "Category", "Date", "Amount", "Status"}
}

// FlattenRecord shapes one record into header/value pairs for the export
// service, in TableHeaders order.
func FlattenRecord(r finance.Record) []Field {
	return []Field{
		{Header: "Member", Value: r.MemberName},
		{Header: "Category", Value: r.Category},
		{Header: "Date", Value: r.RecordDate.Format("2006-01-02")},
		{Header: "Amount", Value: FormatFCFA(r.Amount)},
		{Header: "Status", Value: BadgeFor(r.Status).Label},
	}
}

// ViewModel packages one filtered module view for presentation.
type ViewModel struct {
	TotalLabel   string       `json:"total_label"`
	Count        int          `json:"count"`
	AverageLabel string       `json:"average_label"`
	StatusSeries []ChartPoint `json:"status_series"`
	Categories   []ChartPoint `json:"categories"`
	Headers      []string     `json:"headers"`
	Rows         [][]Field    `json:"rows"`
}

// Assemble shapes an aggregate and its filtered records into a view model.
// The aggregate is taken as-is.
func Assemble(agg finance.AggregateResult, records []finance.Record) ViewModel {
	rows := make([][]Field, 0, len(records))
	for _, r := range records {
		rows = append(rows, FlattenRecord(r))
	}
	return ViewModel{
		TotalLabel:   FormatFCFA(agg.Total),
		Count:        agg.Count,
		AverageLabel: FormatFCFA(agg.Average),
		StatusSeries: StatusSeries(agg),
		Categories:   CategorySeries(records),
		Headers:      TableHeaders(),
		Rows:         rows,
	}
}
