package commands

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/disburse/internal/handler"
	"github.com/cleared-dev/disburse/internal/logging"
	"github.com/cleared-dev/disburse/internal/service"
)

const shutdownTimeout = 10 * time.Second

func newServeCommand() *cobra.Command {
	var wd workdir
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP disbursement trigger",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			root, cfg, err := wd.load()
			if err != nil {
				return err
			}
			if port != "" {
				cfg.Server.Port = port
			}

			log := newLogger(cfg)
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			runner, cleanup, err := service.New(ctx, root, cfg, log)
			if err != nil {
				return err
			}
			defer cleanup()

			e := handler.NewServer(handler.NewDisbursementHandler(runner, log), log)

			errCh := make(chan error, 1)
			go func() {
				log.Info("Starting server", logging.F("port", cfg.Server.Port))
				if err := e.Start(":" + cfg.Server.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := e.Shutdown(shutdownCtx); err != nil {
				return err
			}
			log.Info("Server exited")
			return nil
		},
	}

	wd.addFlags(cmd)
	cmd.Flags().StringVar(&port, "port", "", "listen port (default from config)")

	return cmd
}
