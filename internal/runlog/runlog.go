// Package runlog keeps an append-only CSV audit trail of disbursement runs
// and the records each run declined to pay.
package runlog

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gocarina/gocsv"
)

// Action classifies a run-log row.
type Action string

const (
	ActionSkipped   Action = "skipped"
	ActionCompleted Action = "completed"
	ActionFailed    Action = "failed"
)

// Entry is one row in the run log.
type Entry struct {
	Timestamp     time.Time
	RunID         string
	OwnerID       string
	Action        Action
	EscrowAccount string
	Ownership     string
	Details       string
}

// Header is the CSV header for run-log.csv.
const Header = "timestamp,run_id,owner_id,action,escrow_account,ownership,details"

// RelPath is the log location relative to the working directory.
const RelPath = "logs/run-log.csv"

type row struct {
	Timestamp     string `csv:"timestamp"`
	RunID         string `csv:"run_id"`
	OwnerID       string `csv:"owner_id"`
	Action        string `csv:"action"`
	EscrowAccount string `csv:"escrow_account"`
	Ownership     string `csv:"ownership"`
	Details       string `csv:"details"`
}

func toRow(e Entry) row {
	return row{
		Timestamp:     e.Timestamp.UTC().Format(time.RFC3339),
		RunID:         e.RunID,
		OwnerID:       e.OwnerID,
		Action:        string(e.Action),
		EscrowAccount: e.EscrowAccount,
		Ownership:     e.Ownership,
		Details:       e.Details,
	}
}

func fromRow(r row) (Entry, error) {
	ts, err := time.Parse(time.RFC3339, r.Timestamp)
	if err != nil {
		return Entry{}, fmt.Errorf("parsing timestamp %q: %w", r.Timestamp, err)
	}
	return Entry{
		Timestamp:     ts,
		RunID:         r.RunID,
		OwnerID:       r.OwnerID,
		Action:        Action(r.Action),
		EscrowAccount: r.EscrowAccount,
		Ownership:     r.Ownership,
		Details:       r.Details,
	}, nil
}

// Log appends to <root>/logs/run-log.csv. Safe for concurrent use.
type Log struct {
	path string
	mu   sync.Mutex
}

// New returns a Log rooted at the working directory root.
func New(root string) *Log {
	return &Log{path: filepath.Join(root, RelPath)}
}

// Path returns the log file location.
func (l *Log) Path() string { return l.path }

// Append writes entries, creating the file and header if needed.
func (l *Log) Append(entries []Entry) error {
	if len(entries) == 0 {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return fmt.Errorf("creating logs dir: %w", err)
	}

	needsHeader := false
	if _, err := os.Stat(l.path); os.IsNotExist(err) {
		needsHeader = true
	}

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening run log: %w", err)
	}
	defer f.Close()

	rows := make([]row, len(entries))
	for i, e := range entries {
		rows[i] = toRow(e)
	}

	if needsHeader {
		err = gocsv.Marshal(rows, f)
	} else {
		err = gocsv.MarshalWithoutHeaders(rows, f)
	}
	if err != nil {
		return fmt.Errorf("writing run log: %w", err)
	}
	return nil
}

// Read returns all entries. Returns an empty slice if the file does not exist.
func (l *Log) Read() ([]Entry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.Open(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening run log: %w", err)
	}
	defer f.Close()

	var rows []row
	if err := gocsv.Unmarshal(f, &rows); err != nil {
		return nil, fmt.Errorf("reading run log CSV: %w", err)
	}

	var entries []Entry
	for i, r := range rows {
		e, err := fromRow(r)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}
