package model

import "github.com/shopspring/decimal"

// LineItemKind classifies a payout for reporting.
type LineItemKind string

const (
	KindPMSFee  LineItemKind = "PMSFee"
	KindExpense LineItemKind = "Expense"
	KindRent    LineItemKind = "Rent"
)

// LineItem is one funded rule or expense.
type LineItem struct {
	Amount  decimal.Decimal `json:"amount"`
	Kind    LineItemKind    `json:"disbursementType"`
	Account DepositAccount  `json:"account"`
}

// AccountDisbursement is the breakdown computed for one escrow account.
type AccountDisbursement struct {
	Ownership                   string          `json:"ownership"`
	PropertyAddress             string          `json:"propertyAddress"`
	EscrowAccountIdentifier     string          `json:"escrowAccountNum"`
	Balance                     decimal.Decimal `json:"currentBalance"`
	Rent                        decimal.Decimal `json:"rent"`
	DisbursedThisMonth          decimal.Decimal `json:"disbursedThisMonth"` // absolute value
	AlreadyDisbursedForTheMonth bool            `json:"alreadyDisbursedForTheMonth"`
	LineItems                   []LineItem      `json:"disbursements"`
}

// Total returns the sum of all line item amounts.
func (d AccountDisbursement) Total() decimal.Decimal {
	total := decimal.Zero
	for _, li := range d.LineItems {
		total = total.Add(li.Amount)
	}
	return total
}
