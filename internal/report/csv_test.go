package report

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSVSink_Write(t *testing.T) {
	dir := t.TempDir()
	summary, err := NewCSVSink().Write(context.Background(), sampleDisbursements(), Options{OutputDir: dir, RunID: "run-1", Now: fixedNow})
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "disbursements-2025-09-23T10-30-05Z-run-1.csv"), summary.Location)
	assert.Equal(t, 6, summary.RowCount)
	assert.Equal(t, 3, summary.AccountCount)

	f, err := os.Open(summary.Location)
	require.NoError(t, err)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 7)

	assert.Equal(t, "Escrow Account #", records[0][0])
	assert.Equal(t, "Beneficiary Account Type", records[0][11])

	assert.Equal(t, []string{
		"ESC-1001", "Flat 4B, Prestige Lakeside", "10000.00", "12000.00", "200.00",
		"1180.00", "PMSFee", "Realtimate PMS Fees", "HDFC Bank", "HDFC0000240", "50200099990001", "savings",
	}, records[1])
	assert.Equal(t, "ESC-1001", records[3][0], "account cells repeat on every row")
	assert.Equal(t, "Expense", records[3][6])
	assert.Equal(t, "ESC-1002", records[4][0])
	assert.Equal(t, "0.00", records[4][5])
	assert.Equal(t, "0.50", records[6][5])
}

func TestCSVSink_Empty(t *testing.T) {
	summary, err := NewCSVSink().Write(context.Background(), nil, Options{OutputDir: t.TempDir(), FileName: "empty.csv"})
	require.NoError(t, err)
	assert.Equal(t, 0, summary.RowCount)
	assert.Equal(t, 0, summary.AccountCount)
	_, err = os.Stat(summary.Location)
	assert.NoError(t, err)
}
