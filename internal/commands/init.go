package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/disburse/internal/accounts"
	"github.com/cleared-dev/disburse/internal/config"
)

func newInitCommand() *cobra.Command {
	var owner string
	var format string

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a disbursement working directory",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			return runInit(absDir, owner, format)
		},
	}

	cmd.Flags().StringVar(&owner, "owner", "", "default owner (user) ID")
	cmd.Flags().StringVar(&format, "format", "xlsx", "report format (xlsx or csv)")

	return cmd
}

func runInit(dir, owner, format string) error {
	cfgPath := filepath.Join(dir, config.FileName)
	if config.Exists(cfgPath) {
		return fmt.Errorf("%s already exists", cfgPath)
	}

	cfg := config.Default()
	cfg.Owner.DefaultID = owner
	cfg.Report.Format = format
	if err := config.Validate(cfg); err != nil {
		return err
	}

	// Create directory structure.
	for _, d := range []string{"data", "reports", "logs"} {
		if err := os.MkdirAll(filepath.Join(dir, d), 0o755); err != nil {
			return fmt.Errorf("creating directory %s: %w", d, err)
		}
	}

	// Write disburse.yaml.
	if err := config.Save(cfgPath, cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	// Write an empty reference account registry.
	if err := accounts.NewService(nil).Save(filepath.Join(dir, cfg.ReferenceAccounts.Path)); err != nil {
		return fmt.Errorf("writing reference accounts: %w", err)
	}

	// Write an empty record export.
	if err := os.WriteFile(filepath.Join(dir, cfg.Source.Path), []byte("[]\n"), 0o644); err != nil {
		return fmt.Errorf("writing records: %w", err)
	}

	// Write .gitignore.
	gitignore := "reports/\nlogs/\n.env\n"
	if err := os.WriteFile(filepath.Join(dir, ".gitignore"), []byte(gitignore), 0o644); err != nil {
		return fmt.Errorf("writing .gitignore: %w", err)
	}

	fmt.Printf("Initialized disbursement directory at %s\n", dir)
	return nil
}
