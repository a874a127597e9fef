package report

import (
	"context"
	"fmt"
	"os"

	"github.com/gocarina/gocsv"

	"github.com/cleared-dev/disburse/internal/model"
)

// csvRow mirrors Columns. Account-level cells repeat on every row since CSV
// cannot merge.
type csvRow struct {
	EscrowAccount      string `csv:"Escrow Account #"`
	PropertyAddress    string `csv:"Property Address"`
	CurrentBalance     string `csv:"Current Balance"`
	Rent               string `csv:"Rent"`
	DisbursedThisMonth string `csv:"Disbursed This Month"`
	Amount             string `csv:"Disbursement Amount"`
	Kind               string `csv:"Disbursement Type"`
	BeneficiaryName    string `csv:"Beneficiary Name"`
	BankName           string `csv:"Bank Name"`
	IFSC               string `csv:"IFSC"`
	AccountNum         string `csv:"Beneficiary Account #"`
	AccountType        string `csv:"Beneficiary Account Type"`
}

// CSVSink writes a flat CSV report.
type CSVSink struct{}

// NewCSVSink creates a CSVSink.
func NewCSVSink() *CSVSink { return &CSVSink{} }

// Format returns "csv".
func (s *CSVSink) Format() string { return "csv" }

// Write writes one row per line item.
func (s *CSVSink) Write(ctx context.Context, disbursements []model.AccountDisbursement, opts Options) (*Summary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	bs := blocks(disbursements)
	rows := make([]csvRow, 0)
	for _, b := range bs {
		a := b.account
		for _, li := range b.items {
			rows = append(rows, csvRow{
				EscrowAccount:      a.EscrowAccountIdentifier,
				PropertyAddress:    a.PropertyAddress,
				CurrentBalance:     a.Balance.StringFixed(2),
				Rent:               a.Rent.StringFixed(2),
				DisbursedThisMonth: a.DisbursedThisMonth.StringFixed(2),
				Amount:             li.Amount.StringFixed(2),
				Kind:               string(li.Kind),
				BeneficiaryName:    li.Account.AccountName,
				BankName:           li.Account.BankName,
				IFSC:               li.Account.IFSCNum,
				AccountNum:         li.Account.AccountNum,
				AccountType:        li.Account.AccountType,
			})
		}
	}

	path, err := opts.path("csv")
	if err != nil {
		return nil, err
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating report: %w", err)
	}
	defer f.Close()

	if err := gocsv.Marshal(rows, f); err != nil {
		return nil, fmt.Errorf("writing report: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("closing report: %w", err)
	}

	return summarize(path, bs), nil
}
