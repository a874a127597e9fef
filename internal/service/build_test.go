package service

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/disburse/internal/config"
	"github.com/cleared-dev/disburse/internal/logging"
	"github.com/cleared-dev/disburse/internal/runlog"
	"github.com/cleared-dev/disburse/internal/source"
)

func ptr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func copyFile(t *testing.T, src, dst string) {
	t.Helper()
	data, err := os.ReadFile(src)
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(filepath.Dir(dst), 0o755))
	require.NoError(t, os.WriteFile(dst, data, 0o644))
}

func TestNewSource(t *testing.T) {
	src, cleanup, err := NewSource(context.Background(), config.SourceConfig{Kind: "file", Path: "x.json"})
	require.NoError(t, err)
	defer cleanup()
	assert.Equal(t, "file", src.Kind())

	_, _, err = NewSource(context.Background(), config.SourceConfig{Kind: "mongo"})
	assert.ErrorIs(t, err, source.ErrUnknownSource)

	_, _, err = NewSource(context.Background(), config.SourceConfig{Kind: "postgres"})
	assert.ErrorIs(t, err, source.ErrUnknownSource, "postgres requires a database URL")
}

func TestNew_FromConfig(t *testing.T) {
	root := t.TempDir()
	copyFile(t, "../../testdata/records.json", filepath.Join(root, "data", "records.json"))
	copyFile(t, "../../testdata/reference-accounts.csv", filepath.Join(root, "data", "reference-accounts.csv"))

	cfg := config.Default()
	cfg.Owner.DefaultID = testOwner
	cfg.Report.Format = "xlsx"

	r, cleanup, err := New(context.Background(), root, cfg, logging.NopLogger{})
	require.NoError(t, err)
	defer cleanup()

	resp := r.Run(context.Background(), "")
	require.Equal(t, http.StatusOK, resp.StatusCode, resp.Error)
	assert.Equal(t, filepath.Join(root, "reports"), filepath.Dir(resp.Result.Location))
	assert.Equal(t, ".xlsx", filepath.Ext(resp.Result.Location))
	assert.Equal(t, 7, resp.Result.RowCount)

	entries, err := runlog.New(root).Read()
	require.NoError(t, err)
	assert.Len(t, entries, 3)
}

func TestNew_LogsActivePolicy(t *testing.T) {
	root := t.TempDir()
	copyFile(t, "../../testdata/reference-accounts.csv", filepath.Join(root, "data", "reference-accounts.csv"))

	cfg := config.Default()
	cfg.Policy.TaxRate = "0.12"
	cfg.Policy.ExemptOwnerships = []string{"gospaze"}
	log := logging.NewMockLogger()

	r, cleanup, err := New(context.Background(), root, cfg, log)
	require.NoError(t, err)
	defer cleanup()

	p := r.Allocator.Policy()
	assert.True(t, p.TaxRate.Equal(decimal.RequireFromString("0.12")))
	assert.Equal(t, []string{"gospaze"}, p.ExemptOwnerships)

	require.True(t, log.HasEntry("INFO", "Allocation policy"))
	for _, e := range log.Entries() {
		if e.Message != "Allocation policy" {
			continue
		}
		v, ok := e.FieldValue(logging.FieldTaxRate)
		require.True(t, ok)
		assert.Equal(t, "0.12", v)
		v, ok = e.FieldValue(logging.FieldFormat)
		require.True(t, ok)
		assert.Equal(t, "xlsx", v)
	}
}

func TestNew_Errors(t *testing.T) {
	root := t.TempDir()

	cfg := config.Default()
	_, _, err := New(context.Background(), root, cfg, logging.NopLogger{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reference accounts")

	copyFile(t, "../../testdata/reference-accounts.csv", filepath.Join(root, "data", "reference-accounts.csv"))
	cfg.Report.Format = "pdf"
	_, _, err = New(context.Background(), root, cfg, logging.NopLogger{})
	require.Error(t, err)

	cfg = config.Default()
	cfg.Policy.TaxRate = "x"
	_, _, err = New(context.Background(), root, cfg, logging.NopLogger{})
	require.Error(t, err)
}

func TestResolve(t *testing.T) {
	assert.Equal(t, filepath.Join("root", "data"), resolve("root", "data"))
	assert.Equal(t, "/abs/data", resolve("root", "/abs/data"))
	assert.Equal(t, "", resolve("root", ""))
}
