package finance

import "github.com/shopspring/decimal"

// TreasuryInput carries the per-module totals feeding the cross-module
// rollup. Every field must come from the same filtered period for the
// balance to be meaningful; the report service guarantees this by applying
// one FilterContext to every module.
type TreasuryInput struct {
	DuesCollected        decimal.Decimal
	BeneficiariesPaidOut decimal.Decimal
	LoansRepaid          decimal.Decimal
	SavingsTotal         decimal.Decimal
	SanctionsPaid        decimal.Decimal
}

// NetBalance computes dues - aid + loans repaid + savings + sanctions.
func NetBalance(in TreasuryInput) decimal.Decimal {
	return in.DuesCollected.
		Sub(in.BeneficiariesPaidOut).
		Add(in.LoansRepaid).
		Add(in.SavingsTotal).
		Add(in.SanctionsPaid)
}
