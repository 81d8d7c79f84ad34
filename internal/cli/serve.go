package cli

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/example/auditplus/internal/wire"
)

// ServeCmd returns the serve command.
func ServeCmd() *cobra.Command {
	var addr string
	var sweepEvery time.Duration

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the JSON API server",
		Long: `Run the JSON API over HTTP. Requests authenticate with HTTP Basic auth
against the user table. /healthz and /metrics are served without auth.

Examples:
  auditplus serve
  auditplus serve --addr :9090 --sweep-every 30m`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := wire.Config()
			logger := wire.Logger()
			if addr == "" {
				addr = cfg.HTTP.Addr
			}

			server := &http.Server{
				Addr:              addr,
				Handler:           wire.HTTPHandler(),
				ReadTimeout:       cfg.HTTP.ReadTimeout,
				ReadHeaderTimeout: cfg.HTTP.ReadHeaderTimeout,
				WriteTimeout:      cfg.HTTP.WriteTimeout,
				IdleTimeout:       cfg.HTTP.IdleTimeout,
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if sweepEvery > 0 {
				go sweepLoop(ctx, sweepEvery, logger)
			}

			errCh := make(chan error, 1)
			go func() {
				logger.Info("starting HTTP server", zap.String("addr", addr))
				errCh <- server.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			case <-ctx.Done():
			}

			logger.Info("shutting down HTTP server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
			defer cancel()
			shutdownErr := server.Shutdown(shutdownCtx)
			if err := wire.Close(); err != nil {
				logger.Warn("failed to close database", zap.Error(err))
				if shutdownErr == nil {
					shutdownErr = err
				}
			}
			return shutdownErr
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default AUDITPLUS_HTTP_ADDR)")
	cmd.Flags().DurationVar(&sweepEvery, "sweep-every", time.Hour, "Interval of the background overdue sweep (0 disables)")
	return cmd
}

// sweepLoop keeps finding statuses current for clients that only read.
func sweepLoop(ctx context.Context, every time.Duration, logger *zap.Logger) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := wire.Services().Findings.SweepOverdue(ctx); err != nil {
				logger.Warn("background sweep failed", zap.Error(err))
			}
		}
	}
}
