package finance

import "github.com/shopspring/decimal"

var oneHundred = decimal.NewFromInt(100)

// AggregateResult carries the totals of one filtered record set. Sums are
// exact decimals; rounding happens only at presentation time.
type AggregateResult struct {
	Total    decimal.Decimal
	Count    int
	Average  decimal.Decimal
	ByStatus map[Status]int
}

// Aggregate reduces records into totals, count, average and a status
// breakdown. An empty input yields an all-zero result, never an error, and
// the average of zero records is zero rather than a division fault.
func Aggregate(records []Record) AggregateResult {
	result := AggregateResult{
		Total:    decimal.Zero,
		Average:  decimal.Zero,
		ByStatus: make(map[Status]int, 4),
	}
	for _, r := range records {
		result.Total = result.Total.Add(r.Amount)
		result.Count++
		result.ByStatus[r.Status]++
	}
	if result.Count > 0 {
		result.Average = result.Total.Div(decimal.NewFromInt(int64(result.Count)))
	}
	return result
}

// LoanSummary extends the generic aggregate with pret-specific metrics.
type LoanSummary struct {
	AggregateResult
	TotalLent       decimal.Decimal
	TotalRepaid     decimal.Decimal
	InterestAccrued decimal.Decimal
	Ongoing         int
	Late            int
}

// SummarizeLoans computes loan metrics over already-filtered pret records.
// Interest accrues as amount x rate / 100 per record.
func SummarizeLoans(records []Record) LoanSummary {
	summary := LoanSummary{
		AggregateResult: Aggregate(records),
		TotalLent:       decimal.Zero,
		TotalRepaid:     decimal.Zero,
		InterestAccrued: decimal.Zero,
	}
	for _, r := range records {
		summary.TotalLent = summary.TotalLent.Add(r.Amount)
		summary.InterestAccrued = summary.InterestAccrued.Add(r.Amount.Mul(r.InterestRate).Div(oneHundred))
		switch r.Status {
		case StatusRepaid:
			summary.TotalRepaid = summary.TotalRepaid.Add(r.Amount)
		case StatusOngoing:
			summary.Ongoing++
		case StatusLate:
			summary.Late++
		}
	}
	return summary
}

// SavingsSummary extends the generic aggregate with epargne-specific metrics.
// EstimatedInterest is the configured share of the loan interest accrued in
// the same filtered scope.
type SavingsSummary struct {
	AggregateResult
	Deposited         decimal.Decimal
	Withdrawn         decimal.Decimal
	Net               decimal.Decimal
	EstimatedInterest decimal.Decimal
}

// SummarizeSavings computes epargne metrics over already-filtered records.
// loanInterest is the interest accrued by the loan summary of the same
// filter scope; interestShare is the fraction of it allocated to savers.
func SummarizeSavings(records []Record, loanInterest, interestShare decimal.Decimal) SavingsSummary {
	summary := SavingsSummary{
		AggregateResult:   Aggregate(records),
		Deposited:         decimal.Zero,
		Withdrawn:         decimal.Zero,
		EstimatedInterest: loanInterest.Mul(interestShare),
	}
	for _, r := range records {
		switch r.Status {
		case StatusWithdrawn:
			summary.Withdrawn = summary.Withdrawn.Add(r.Amount)
		default:
			summary.Deposited = summary.Deposited.Add(r.Amount)
		}
	}
	summary.Net = summary.Deposited.Sub(summary.Withdrawn)
	return summary
}

// SumByStatus totals the amounts of records carrying the given status.
func SumByStatus(records []Record, status Status) decimal.Decimal {
	total := decimal.Zero
	for _, r := range records {
		if r.Status == status {
			total = total.Add(r.Amount)
		}
	}
	return total
}
