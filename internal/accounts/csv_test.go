package accounts

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/disburse/internal/model"
)

func sampleEntries() []Entry {
	return []Entry{
		{Ownership: "gospaze", Role: model.RolePlatformFee, Account: model.DepositAccount{
			AccountName: "Gospaze Fees", BankName: "HDFC Bank", IFSCNum: "HDFC0000123", AccountNum: "50200011112222", AccountType: "current",
		}},
		{Ownership: "gospaze", Role: model.RoleExpense, Account: model.DepositAccount{
			AccountName: "Gospaze Expenses", BankName: "HDFC Bank", IFSCNum: "HDFC0000123", AccountNum: "50200033334444", AccountType: "current",
		}},
	}
}

func TestRoundTrip(t *testing.T) {
	entries := sampleEntries()

	var buf bytes.Buffer
	require.NoError(t, WriteAccounts(&buf, entries))

	got, err := ReadAccounts(&buf)
	require.NoError(t, err)
	assert.Equal(t, entries, got)
}

func TestHeader(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteAccounts(&buf, nil))
	assert.Equal(t, "ownership,role,account_name,bank_name,ifsc,account_num,account_type\n", buf.String())
}

func TestReadAccounts_Empty(t *testing.T) {
	got, err := ReadAccounts(strings.NewReader(""))
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestUnmarshalAccount_DefaultsAccountType(t *testing.T) {
	e, err := UnmarshalAccount([]string{"acme", "expense", "Acme", "SBI", "SBIN0001", "123", ""})
	require.NoError(t, err)
	assert.Equal(t, "savings", e.Account.AccountType)
}

func TestUnmarshalAccount_Errors(t *testing.T) {
	tests := []struct {
		name   string
		record []string
		msg    string
	}{
		{"short row", []string{"acme", "expense"}, "expected 7 fields"},
		{"no ownership", []string{"", "expense", "n", "b", "i", "1", ""}, "missing ownership"},
		{"bad role", []string{"acme", "landlord", "n", "b", "i", "1", ""}, `unknown role "landlord"`},
		{"no account number", []string{"acme", "platform_fee", "n", "b", "i", "", ""}, "missing account_num"},
	}
	for _, tt := range tests {
		_, err := UnmarshalAccount(tt.record)
		require.Error(t, err, tt.name)
		assert.Contains(t, err.Error(), tt.msg, tt.name)
	}
}

func TestReadAccounts_ReportsRow(t *testing.T) {
	data := strings.Join(Header, ",") + "\nacme,platform_fee,n,b,i,1,\nacme,bogus,n,b,i,2,\n"
	_, err := ReadAccounts(strings.NewReader(data))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row 3")
}
