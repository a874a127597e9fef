// Package service runs one disbursement batch end to end: fetch records,
// allocate, write the report, upload it and record the run.
package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/cleared-dev/disburse/internal/allocator"
	"github.com/cleared-dev/disburse/internal/logging"
	"github.com/cleared-dev/disburse/internal/report"
	"github.com/cleared-dev/disburse/internal/runlog"
	"github.com/cleared-dev/disburse/internal/source"
	"github.com/cleared-dev/disburse/internal/storage"
)

// ErrMissingOwner is returned when neither the request nor the configuration
// names an owner.
var ErrMissingOwner = errors.New("missing userId")

// Response messages.
const (
	MsgMissingOwner = "Missing userId"
	MsgSuccess      = "Successfully created disbursement file"
	MsgFailure      = "Internal server error"
)

// Response is returned to both the CLI and HTTP callers.
type Response struct {
	StatusCode int     `json:"statusCode"`
	Message    string  `json:"message"`
	Error      string  `json:"error,omitempty"`
	Result     *Result `json:"result,omitempty"`
}

// Result describes a successful run.
type Result struct {
	RunID   string `json:"runId"`
	OwnerID string `json:"ownerId"`
	report.Summary
	Skipped         int    `json:"skipped"`
	StorageLocation string `json:"storageLocation,omitempty"`
}

// RunLogger records run outcomes.
type RunLogger interface {
	Append(entries []runlog.Entry) error
}

// Runner wires one batch. Store and RunLog are optional.
type Runner struct {
	Source        source.Source
	Accounts      allocator.ReferenceLookup
	Allocator     *allocator.Allocator
	Sink          report.Sink
	Store         storage.Store
	StoragePrefix string
	RunLog        RunLogger
	Logger        logging.Logger
	ReportOptions report.Options

	// DefaultOwner is used when Run is called without an owner.
	DefaultOwner string

	// NewRunID defaults to uuid.NewString.
	NewRunID func() string

	// Now defaults to time.Now.
	Now func() time.Time
}

// Run executes one batch for ownerID and maps the outcome to a Response.
func (r *Runner) Run(ctx context.Context, ownerID string) Response {
	log := r.logger()

	if ownerID == "" {
		ownerID = r.DefaultOwner
	}
	if ownerID == "" {
		log.Error("No owner supplied in request or configuration")
		return Response{StatusCode: http.StatusBadRequest, Message: MsgMissingOwner, Error: ErrMissingOwner.Error()}
	}

	runID := r.runID()
	log = log.WithFields(logging.F(logging.FieldRunID, runID), logging.F(logging.FieldOwnerID, ownerID))

	start := r.now()
	result, err := r.execute(ctx, log, ownerID, runID)
	if err != nil {
		log.WithError(err).Error("Disbursement run failed")
		r.appendLog(log, []runlog.Entry{{
			Timestamp: r.now(),
			RunID:     runID,
			OwnerID:   ownerID,
			Action:    runlog.ActionFailed,
			Details:   err.Error(),
		}})
		return Response{StatusCode: http.StatusInternalServerError, Message: MsgFailure, Error: err.Error()}
	}

	log.Info("Disbursement run completed",
		logging.F(logging.FieldOutputFile, result.Location),
		logging.F(logging.FieldCount, result.RowCount),
		logging.F(logging.FieldDuration, r.now().Sub(start).Milliseconds()))

	return Response{StatusCode: http.StatusOK, Message: MsgSuccess, Result: result}
}

func (r *Runner) execute(ctx context.Context, log logging.Logger, ownerID, runID string) (*Result, error) {
	records, err := r.Source.Fetch(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("fetching records: %w", err)
	}
	log.Info("Fetched account records",
		logging.F(logging.FieldSource, r.Source.Kind()),
		logging.F(logging.FieldCount, len(records)))

	allocated, err := r.Allocator.Allocate(records, r.Accounts)
	if err != nil {
		return nil, fmt.Errorf("allocating: %w", err)
	}

	opts := r.ReportOptions
	opts.RunID = runID
	if opts.Now == nil {
		opts.Now = r.now
	}
	summary, err := r.Sink.Write(ctx, allocated.Disbursements, opts)
	if err != nil {
		return nil, fmt.Errorf("writing %s report: %w", r.Sink.Format(), err)
	}

	result := &Result{
		RunID:   runID,
		OwnerID: ownerID,
		Summary: *summary,
		Skipped: len(allocated.Skipped),
	}

	if r.Store != nil {
		key := storage.ObjectKey(r.StoragePrefix, ownerID, runID, summary.Location)
		loc, err := r.Store.Put(ctx, key, summary.Location)
		if err != nil {
			return nil, fmt.Errorf("uploading report: %w", err)
		}
		result.StorageLocation = loc
		log.Info("Uploaded report", logging.F(logging.FieldLocation, loc))
	}

	r.appendLog(log, runEntries(r.now(), runID, ownerID, allocated.Skipped, result))
	return result, nil
}

func runEntries(now time.Time, runID, ownerID string, skipped []allocator.Skip, result *Result) []runlog.Entry {
	entries := make([]runlog.Entry, 0, len(skipped)+1)
	for _, s := range skipped {
		details := string(s.Reason)
		if s.Detail != "" {
			details += ": " + s.Detail
		}
		entries = append(entries, runlog.Entry{
			Timestamp:     now,
			RunID:         runID,
			OwnerID:       ownerID,
			Action:        runlog.ActionSkipped,
			EscrowAccount: s.EscrowAccount,
			Ownership:     s.Ownership,
			Details:       details,
		})
	}
	return append(entries, runlog.Entry{
		Timestamp: now,
		RunID:     runID,
		OwnerID:   ownerID,
		Action:    runlog.ActionCompleted,
		Details: fmt.Sprintf("%d accounts, %d rows, %d skipped, %s",
			result.AccountCount, result.RowCount, result.Skipped, result.Location),
	})
}

// appendLog never fails the run; the report has already been written.
func (r *Runner) appendLog(log logging.Logger, entries []runlog.Entry) {
	if r.RunLog == nil {
		return
	}
	if err := r.RunLog.Append(entries); err != nil {
		log.WithError(err).Warn("Failed to append run log")
	}
}

func (r *Runner) logger() logging.Logger {
	if r.Logger == nil {
		return logging.NopLogger{}
	}
	return r.Logger
}

func (r *Runner) runID() string {
	if r.NewRunID != nil {
		return r.NewRunID()
	}
	return uuid.NewString()
}

func (r *Runner) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}
