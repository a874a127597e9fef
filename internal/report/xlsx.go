package report

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/cleared-dev/disburse/internal/model"
)

// SheetName is the worksheet the XLSX report is written to.
const SheetName = "Disbursements"

// Fill colours.
const (
	headerFill    = "D9D9D9"
	evenBlockFill = "DDEBF7"
	oddBlockFill  = "FFFFFF"
)

// XLSXSink writes an Excel workbook with account-level cells merged across
// each account's rows and alternating block colours.
type XLSXSink struct{}

// NewXLSXSink creates an XLSXSink.
func NewXLSXSink() *XLSXSink { return &XLSXSink{} }

// Format returns "xlsx".
func (s *XLSXSink) Format() string { return "xlsx" }

// Write writes the workbook and returns its location and counts.
func (s *XLSXSink) Write(ctx context.Context, disbursements []model.AccountDisbursement, opts Options) (*Summary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return nil, fmt.Errorf("naming sheet: %w", err)
	}

	styles, err := newStyles(f)
	if err != nil {
		return nil, err
	}

	if err := writeHeader(f, styles.header); err != nil {
		return nil, err
	}

	bs := blocks(disbursements)
	row := 2
	for i, b := range bs {
		start := row
		for _, li := range b.items {
			if err := writeRow(f, row, b.account, li); err != nil {
				return nil, err
			}
			row++
		}
		end := row - 1

		// Blocks are numbered from one, so the second account is "even".
		style := styles.odd
		if (i+1)%2 == 0 {
			style = styles.even
		}
		if err := f.SetCellStyle(SheetName, cell(1, start), cell(len(Columns), end), style); err != nil {
			return nil, fmt.Errorf("styling rows %d-%d: %w", start, end, err)
		}

		if end > start {
			for col := 1; col <= accountColumns; col++ {
				if err := f.MergeCell(SheetName, cell(col, start), cell(col, end)); err != nil {
					return nil, fmt.Errorf("merging rows %d-%d: %w", start, end, err)
				}
			}
		}
	}

	path, err := opts.path("xlsx")
	if err != nil {
		return nil, err
	}
	if err := f.SaveAs(path); err != nil {
		return nil, fmt.Errorf("saving report: %w", err)
	}

	return summarize(path, bs), nil
}

type styleSet struct {
	header, odd, even int
}

func newStyles(f *excelize.File) (styleSet, error) {
	var s styleSet
	var err error

	s.header, err = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: solid(headerFill),
	})
	if err != nil {
		return s, fmt.Errorf("creating header style: %w", err)
	}

	s.odd, err = f.NewStyle(&excelize.Style{Fill: solid(oddBlockFill)})
	if err != nil {
		return s, fmt.Errorf("creating row style: %w", err)
	}

	s.even, err = f.NewStyle(&excelize.Style{Fill: solid(evenBlockFill)})
	if err != nil {
		return s, fmt.Errorf("creating row style: %w", err)
	}
	return s, nil
}

func solid(color string) excelize.Fill {
	return excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{color}}
}

func writeHeader(f *excelize.File, style int) error {
	headers := make([]any, len(Columns))
	for i, c := range Columns {
		headers[i] = c.Header
		name, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(SheetName, name, name, c.Width); err != nil {
			return fmt.Errorf("sizing column %s: %w", name, err)
		}
	}
	if err := f.SetSheetRow(SheetName, "A1", &headers); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	if err := f.SetCellStyle(SheetName, "A1", cell(len(Columns), 1), style); err != nil {
		return fmt.Errorf("styling header: %w", err)
	}
	return nil
}

func writeRow(f *excelize.File, row int, a model.AccountDisbursement, li model.LineItem) error {
	values := []any{
		a.EscrowAccountIdentifier,
		a.PropertyAddress,
		a.Balance.InexactFloat64(),
		a.Rent.InexactFloat64(),
		a.DisbursedThisMonth.InexactFloat64(),
		li.Amount.InexactFloat64(),
		string(li.Kind),
		li.Account.AccountName,
		li.Account.BankName,
		li.Account.IFSCNum,
		li.Account.AccountNum,
		li.Account.AccountType,
	}
	if err := f.SetSheetRow(SheetName, cell(1, row), &values); err != nil {
		return fmt.Errorf("writing row %d: %w", row, err)
	}
	return nil
}

// cell panics on out-of-range coordinates, which Columns never produces.
func cell(col, row int) string {
	name, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		panic(err)
	}
	return name
}
