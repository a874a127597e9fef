package accounts

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/cleared-dev/disburse/internal/model"
)

// Header is the CSV header for reference-accounts.csv.
var Header = []string{"ownership", "role", "account_name", "bank_name", "ifsc", "account_num", "account_type"}

const (
	numFields      = 7
	colOwnership   = 0
	colRole        = 1
	colAccountName = 2
	colBankName    = 3
	colIFSC        = 4
	colAccountNum  = 5
	colAccountType = 6
)

// Entry is one row of reference-accounts.csv.
type Entry struct {
	Ownership string
	Role      model.AccountRole
	Account   model.DepositAccount
}

// ReadAccounts reads reference-accounts.csv.
func ReadAccounts(r io.Reader) ([]Entry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading reference accounts CSV: %w", err)
	}

	if len(records) == 0 {
		return nil, nil
	}

	var entries []Entry
	for i, rec := range records[1:] {
		e, err := UnmarshalAccount(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// WriteAccounts writes reference-accounts.csv.
func WriteAccounts(w io.Writer, entries []Entry) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, e := range entries {
		if err := cw.Write(MarshalAccount(e)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// MarshalAccount converts an Entry to a CSV row.
func MarshalAccount(e Entry) []string {
	row := make([]string, numFields)
	row[colOwnership] = e.Ownership
	row[colRole] = string(e.Role)
	row[colAccountName] = e.Account.AccountName
	row[colBankName] = e.Account.BankName
	row[colIFSC] = e.Account.IFSCNum
	row[colAccountNum] = e.Account.AccountNum
	row[colAccountType] = e.Account.AccountType
	return row
}

// UnmarshalAccount converts a CSV row to an Entry.
func UnmarshalAccount(record []string) (Entry, error) {
	if len(record) != numFields {
		return Entry{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}
	if record[colOwnership] == "" {
		return Entry{}, fmt.Errorf("missing ownership")
	}

	role := model.AccountRole(record[colRole])
	switch role {
	case model.RolePlatformFee, model.RoleExpense:
	default:
		return Entry{}, fmt.Errorf("unknown role %q", record[colRole])
	}

	if record[colAccountNum] == "" {
		return Entry{}, fmt.Errorf("missing account_num for %s/%s", record[colOwnership], role)
	}

	accountType := record[colAccountType]
	if accountType == "" {
		accountType = model.DefaultAccountType
	}

	return Entry{
		Ownership: record[colOwnership],
		Role:      role,
		Account: model.DepositAccount{
			AccountName: record[colAccountName],
			BankName:    record[colBankName],
			IFSCNum:     record[colIFSC],
			AccountNum:  record[colAccountNum],
			AccountType: accountType,
		},
	}, nil
}
