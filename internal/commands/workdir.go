package commands

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/disburse/internal/config"
	"github.com/cleared-dev/disburse/internal/logging"
)

// workdir holds the flags shared by commands that operate on an initialized
// working directory.
type workdir struct {
	dir        string
	configPath string
}

func (w *workdir) addFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&w.dir, "dir", ".", "working directory")
	cmd.Flags().StringVar(&w.configPath, "config", "", "config file (default <dir>/"+config.FileName+")")
}

// load resolves the working directory and layers configuration over it.
func (w *workdir) load() (string, *config.Config, error) {
	root, err := filepath.Abs(w.dir)
	if err != nil {
		return "", nil, fmt.Errorf("resolving path: %w", err)
	}

	path := w.configPath
	if path == "" {
		if candidate := filepath.Join(root, config.FileName); config.Exists(candidate) {
			path = candidate
		}
	}

	cfg, err := config.Initialize(path)
	if err != nil {
		return "", nil, err
	}
	return root, cfg, nil
}

func newLogger(cfg *config.Config) logging.Logger {
	return logging.NewLogrusAdapter(cfg.Log.Level, cfg.Log.Format)
}

func resolvePath(root, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(root, path)
}
