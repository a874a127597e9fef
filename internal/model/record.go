package model

import "github.com/shopspring/decimal"

// DisbursementRule splits escrow funds to one beneficiary, either by a fixed
// amount or by a percentage of what remains after fixed amounts.
type DisbursementRule struct {
	FixedAmount    *decimal.Decimal // nil = not set
	Percentage     *decimal.Decimal // 0-100, nil = not set
	DepositAccount DepositAccount
	TaxesExtra     bool
}

// HasAmount reports whether the rule drives any allocation at all.
func (r DisbursementRule) HasAmount() bool {
	return r.FixedAmount != nil || r.Percentage != nil
}

// Expense is a pass-through deduction paid to the ownership's expense account.
type Expense struct {
	Amount *decimal.Decimal
}

// AccountRecord is one escrow account as supplied by a record source.
type AccountRecord struct {
	Ownership               string
	Balance                 decimal.Decimal
	Rent                    decimal.Decimal
	DisbursedThisMonth      decimal.Decimal // negative for outflows
	Rules                   []DisbursementRule
	Expenses                []Expense
	PropertyAddress         string
	EscrowAccountIdentifier string
}
