package service

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/cleared-dev/disburse/internal/accounts"
	"github.com/cleared-dev/disburse/internal/allocator"
	"github.com/cleared-dev/disburse/internal/config"
	"github.com/cleared-dev/disburse/internal/logging"
	"github.com/cleared-dev/disburse/internal/report"
	"github.com/cleared-dev/disburse/internal/runlog"
	"github.com/cleared-dev/disburse/internal/source"
	"github.com/cleared-dev/disburse/internal/storage"
)

// NewSource returns the configured record source and a function releasing
// its resources.
func NewSource(ctx context.Context, sc config.SourceConfig) (source.Source, func(), error) {
	reg := source.NewRegistry()
	reg.Register(source.NewFileSource(sc.Path))

	cleanup := func() {}
	if sc.Kind == "postgres" && sc.DatabaseURL != "" {
		pool, err := source.Connect(ctx, sc.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		reg.Register(source.NewPostgresSource(pool, sc.Table))
		cleanup = pool.Close
	}

	src, err := reg.Get(sc.Kind)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	return src, cleanup, nil
}

// New builds a Runner from configuration. Relative paths resolve against root.
func New(ctx context.Context, root string, cfg *config.Config, log logging.Logger) (*Runner, func(), error) {
	policy, err := cfg.AllocatorPolicy()
	if err != nil {
		return nil, nil, err
	}

	refs, err := accounts.Load(resolve(root, cfg.ReferenceAccounts.Path))
	if err != nil {
		return nil, nil, err
	}

	sink, err := report.ForFormat(cfg.Report.Format)
	if err != nil {
		return nil, nil, err
	}

	sc := cfg.Source
	sc.Path = resolve(root, sc.Path)
	src, cleanup, err := NewSource(ctx, sc)
	if err != nil {
		return nil, nil, fmt.Errorf("opening %s source: %w", cfg.Source.Kind, err)
	}

	r := &Runner{
		Source:       src,
		Accounts:     refs,
		Allocator:    allocator.New(policy, log),
		Sink:         sink,
		RunLog:       runlog.New(root),
		Logger:       log,
		DefaultOwner: cfg.Owner.DefaultID,
		ReportOptions: report.Options{
			OutputDir: resolve(root, cfg.Report.OutputDir),
			FileName:  cfg.Report.FileName,
		},
	}

	if cfg.Storage.Enabled {
		store, err := storage.NewS3Store(ctx, cfg.Storage)
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		r.Store = store
		r.StoragePrefix = cfg.Storage.Prefix
	}

	active := r.Allocator.Policy()
	r.logger().Info("Allocation policy",
		logging.F(logging.FieldThreshold, active.MonthlyThreshold.String()),
		logging.F(logging.FieldRentRatio, active.RentRatio.String()),
		logging.F(logging.FieldTaxRate, active.TaxRate.String()),
		logging.F(logging.FieldExempt, active.ExemptOwnerships),
		logging.F(logging.FieldSource, src.Kind()),
		logging.F(logging.FieldFormat, sink.Format()))

	return r, cleanup, nil
}

func resolve(root, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(root, path)
}
