package allocator

import (
	"slices"

	"github.com/shopspring/decimal"
)

// Policy holds the constants the allocation rules are parameterised by.
type Policy struct {
	// MonthlyThreshold is the minimum already-disbursed amount that can mark
	// an account as paid out for the month.
	MonthlyThreshold decimal.Decimal
	// RentRatio is the share of rent that, once exceeded, marks an account as
	// paid out for the month.
	RentRatio decimal.Decimal
	// TaxRate is the uplift applied to tax-exclusive platform fees.
	TaxRate decimal.Decimal
	// ExemptOwnerships may disburse fixed amounts beyond the current balance.
	ExemptOwnerships []string
}

// DefaultPolicy returns the production policy: a 1000 unit threshold, 80% of
// rent, 18% GST and the two ownerships allowed to overdraw.
func DefaultPolicy() Policy {
	return Policy{
		MonthlyThreshold: decimal.NewFromInt(1000),
		RentRatio:        decimal.RequireFromString("0.8"),
		TaxRate:          decimal.RequireFromString("0.18"),
		ExemptOwnerships: []string{"gospaze", "oroproptech"},
	}
}

// IsExempt reports whether ownership is on the overdraw allow-list.
func (p Policy) IsExempt(ownership string) bool {
	return slices.Contains(p.ExemptOwnerships, ownership)
}

// AlreadyDisbursed reports whether the amount paid out this month means the
// account must not be paid again.
func (p Policy) AlreadyDisbursed(disbursedThisMonth, rent decimal.Decimal) bool {
	paid := disbursedThisMonth.Abs()
	return paid.GreaterThanOrEqual(p.MonthlyThreshold) && paid.GreaterThan(rent.Mul(p.RentRatio))
}

// WithTax applies the tax uplift, rounding up to the next whole unit.
func (p Policy) WithTax(amount decimal.Decimal) decimal.Decimal {
	return amount.Mul(decimal.NewFromInt(1).Add(p.TaxRate)).Round(2).Ceil()
}
