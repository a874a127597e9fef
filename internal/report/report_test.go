package report

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/disburse/internal/model"
)

var fixedNow = func() time.Time { return time.Date(2025, 9, 23, 10, 30, 5, 0, time.UTC) }

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func account(num string, name string) model.DepositAccount {
	return model.DepositAccount{AccountName: name, BankName: "HDFC Bank", IFSCNum: "HDFC0000240", AccountNum: num, AccountType: "savings"}
}

func sampleDisbursements() []model.AccountDisbursement {
	return []model.AccountDisbursement{
		{
			EscrowAccountIdentifier: "ESC-1001",
			PropertyAddress:         "Flat 4B, Prestige Lakeside",
			Balance:                 dec("10000"),
			Rent:                    dec("12000"),
			DisbursedThisMonth:      dec("200"),
			LineItems: []model.LineItem{
				{Amount: dec("1180"), Kind: model.KindPMSFee, Account: account("50200099990001", "Realtimate PMS Fees")},
				{Amount: dec("8320"), Kind: model.KindRent, Account: account("30001112223", "R. Sharma")},
				{Amount: dec("500"), Kind: model.KindExpense, Account: account("50200099990002", "Realtimate Maintenance")},
			},
		},
		{EscrowAccountIdentifier: "ESC-EMPTY", Balance: dec("1")},
		{
			EscrowAccountIdentifier:     "ESC-1002",
			PropertyAddress:             "Villa 12",
			Balance:                     dec("25000"),
			Rent:                        dec("10000"),
			DisbursedThisMonth:          dec("9700"),
			AlreadyDisbursedForTheMonth: true,
			LineItems: []model.LineItem{
				{Amount: decimal.Zero, Kind: model.KindRent, Account: account("30009998887", "K. Iyer")},
			},
		},
		{
			EscrowAccountIdentifier: "ESC-1005",
			PropertyAddress:         "Plot 7",
			Balance:                 dec("15000"),
			Rent:                    dec("30000"),
			LineItems: []model.LineItem{
				{Amount: dec("20000"), Kind: model.KindRent, Account: account("1", "A")},
				{Amount: dec("0.5"), Kind: model.KindRent, Account: account("2", "B")},
			},
		},
	}
}

func TestForFormat(t *testing.T) {
	s, err := ForFormat("xlsx")
	require.NoError(t, err)
	assert.Equal(t, "xlsx", s.Format())

	s, err = ForFormat("CSV")
	require.NoError(t, err)
	assert.Equal(t, "csv", s.Format())

	s, err = ForFormat("")
	require.NoError(t, err)
	assert.Equal(t, "xlsx", s.Format())

	_, err = ForFormat("pdf")
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestOptionsPath(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "reports")

	p, err := Options{OutputDir: dir, RunID: "run-1", Now: fixedNow}.path("xlsx")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "disbursements-2025-09-23T10-30-05Z-run-1.xlsx"), p)
	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	p, err = Options{OutputDir: dir, FileName: "september.csv"}.path("csv")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "september.csv"), p)

	p, err = Options{Now: fixedNow}.path("csv")
	require.NoError(t, err)
	assert.Equal(t, os.TempDir(), filepath.Dir(p))
}

func TestOptionsPath_DistinctWithinOneSecond(t *testing.T) {
	dir := t.TempDir()
	opts := Options{OutputDir: dir, Now: fixedNow}

	a, err := opts.path("csv")
	require.NoError(t, err)
	b, err := opts.path("csv")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
	assert.Contains(t, filepath.Base(a), "disbursements-2025-09-23T10-30-05Z-")
}

func TestSinks_ConsecutiveWritesKeepBothFiles(t *testing.T) {
	for _, s := range []Sink{NewXLSXSink(), NewCSVSink()} {
		dir := t.TempDir()
		first, err := s.Write(context.Background(), sampleDisbursements(), Options{OutputDir: dir})
		require.NoError(t, err, s.Format())
		second, err := s.Write(context.Background(), sampleDisbursements()[:1], Options{OutputDir: dir})
		require.NoError(t, err, s.Format())

		assert.NotEqual(t, first.Location, second.Location, s.Format())
		assert.FileExists(t, first.Location, s.Format())
		assert.FileExists(t, second.Location, s.Format())

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		assert.Len(t, entries, 2, s.Format())
	}
}

func TestBlocksSkipEmptyAccounts(t *testing.T) {
	bs := blocks(sampleDisbursements())
	require.Len(t, bs, 3)
	assert.Equal(t, "ESC-1001", bs[0].account.EscrowAccountIdentifier)
	assert.Equal(t, "ESC-1002", bs[1].account.EscrowAccountIdentifier)
	assert.Equal(t, "ESC-1005", bs[2].account.EscrowAccountIdentifier)

	s := summarize("x", bs)
	assert.Equal(t, 6, s.RowCount)
	assert.Equal(t, 3, s.AccountCount)
}

func TestColumns(t *testing.T) {
	var headers []string
	for _, c := range Columns {
		headers = append(headers, c.Header)
	}
	assert.Equal(t, []string{
		"Escrow Account #", "Property Address", "Current Balance", "Rent",
		"Disbursed This Month", "Disbursement Amount", "Disbursement Type",
		"Beneficiary Name", "Bank Name", "IFSC", "Beneficiary Account #",
		"Beneficiary Account Type",
	}, headers)
}

func TestSinks_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	for _, s := range []Sink{NewXLSXSink(), NewCSVSink()} {
		_, err := s.Write(ctx, sampleDisbursements(), Options{OutputDir: t.TempDir()})
		assert.ErrorIs(t, err, context.Canceled, s.Format())
	}
}
