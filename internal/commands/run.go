package commands

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/disburse/internal/config"
	"github.com/cleared-dev/disburse/internal/service"
)

func newRunCommand() *cobra.Command {
	var wd workdir
	var owner, format, outDir, fileName string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Compute this month's disbursements and write the report",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			root, cfg, err := wd.load()
			if err != nil {
				return err
			}
			if format != "" {
				cfg.Report.Format = format
			}
			if outDir != "" {
				cfg.Report.OutputDir = outDir
			}
			if fileName != "" {
				cfg.Report.FileName = fileName
			}
			if err := config.Validate(cfg); err != nil {
				return err
			}

			log := newLogger(cfg)
			runner, cleanup, err := service.New(cmd.Context(), root, cfg, log)
			if err != nil {
				return err
			}
			defer cleanup()

			resp := runner.Run(cmd.Context(), owner)

			out, err := json.MarshalIndent(resp, "", "  ")
			if err != nil {
				return fmt.Errorf("encoding response: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))

			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("run failed with status %d: %s", resp.StatusCode, resp.Message)
			}
			return nil
		},
	}

	wd.addFlags(cmd)
	cmd.Flags().StringVar(&owner, "owner", "", "owner (user) ID; defaults to USER_ID")
	cmd.Flags().StringVar(&format, "format", "", "report format (xlsx or csv)")
	cmd.Flags().StringVar(&outDir, "out", "", "report output directory")
	cmd.Flags().StringVar(&fileName, "file-name", "", "report file name")

	return cmd
}
