// Package report writes computed disbursements to spreadsheet files for the
// operations team to review and upload to the bank.
package report

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/cleared-dev/disburse/internal/model"
)

// ErrUnknownFormat is returned by ForFormat for an unsupported format.
var ErrUnknownFormat = errors.New("unknown report format")

// Sink writes one report file per call.
type Sink interface {
	Write(ctx context.Context, disbursements []model.AccountDisbursement, opts Options) (*Summary, error)
	Format() string
}

// Options controls where a report is written.
type Options struct {
	// OutputDir defaults to the system temp directory.
	OutputDir string
	// FileName defaults to disbursements-<UTC timestamp>-<run id>.<ext>.
	FileName string
	// RunID keeps default file names of concurrent runs apart. A random id is
	// used when empty.
	RunID string
	// Now is used for the default file name. Defaults to time.Now.
	Now func() time.Time
}

// Summary describes a written report.
type Summary struct {
	Location     string `json:"filePath"`
	RowCount     int    `json:"rowCount"`
	AccountCount int    `json:"accountCount"`
}

// Column is a report column header and its spreadsheet width.
type Column struct {
	Header string
	Width  float64
}

// Columns lists the report columns in order. The first five are
// account-level and merged across an account's rows.
var Columns = []Column{
	{"Escrow Account #", 18},
	{"Property Address", 30},
	{"Current Balance", 16},
	{"Rent", 12},
	{"Disbursed This Month", 20},
	{"Disbursement Amount", 18},
	{"Disbursement Type", 18},
	{"Beneficiary Name", 24},
	{"Bank Name", 20},
	{"IFSC", 14},
	{"Beneficiary Account #", 22},
	{"Beneficiary Account Type", 22},
}

// accountColumns is the number of leading account-level columns.
const accountColumns = 5

const timestampLayout = "2006-01-02T15-04-05Z"

// ForFormat returns the sink for format ("xlsx" or "csv").
func ForFormat(format string) (Sink, error) {
	switch strings.ToLower(format) {
	case "xlsx", "":
		return NewXLSXSink(), nil
	case "csv":
		return NewCSVSink(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// path resolves the output file and makes sure its directory exists.
func (o Options) path(ext string) (string, error) {
	dir := o.OutputDir
	if dir == "" {
		dir = os.TempDir()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating report dir: %w", err)
	}

	name := o.FileName
	if name == "" {
		now := time.Now
		if o.Now != nil {
			now = o.Now
		}
		runID := o.RunID
		if runID == "" {
			runID = uuid.NewString()
		}
		name = fmt.Sprintf("disbursements-%s-%s.%s", now().UTC().Format(timestampLayout), runID, ext)
	}
	return filepath.Join(dir, name), nil
}

// block is the rows of one account.
type block struct {
	account model.AccountDisbursement
	items   []model.LineItem
}

// blocks drops accounts that have nothing to pay out.
func blocks(disbursements []model.AccountDisbursement) []block {
	var out []block
	for _, d := range disbursements {
		if len(d.LineItems) == 0 {
			continue
		}
		out = append(out, block{account: d, items: d.LineItems})
	}
	return out
}

func summarize(location string, bs []block) *Summary {
	s := &Summary{Location: location, AccountCount: len(bs)}
	for _, b := range bs {
		s.RowCount += len(b.items)
	}
	return s
}
