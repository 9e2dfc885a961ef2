package cmd

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/aanand-mishra/student-records/internal/auth"
	"github.com/aanand-mishra/student-records/internal/http/server"
)

func newServeCmd(a *app) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the JSON API and the browser UI",
		Long: `Start the HTTP server. It serves the JSON API under /api, the browser UI
under /, and Prometheus metrics under /metrics. Ctrl+C or SIGTERM stops it
gracefully.

Examples:
  student-records serve
  student-records serve --addr=0.0.0.0:8082`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = a.cfg.Addr
			}

			authenticator, err := auth.NewAuthenticator(a.cfg.Auth.Username, a.cfg.Auth.Password)
			if err != nil {
				return err
			}
			sessions := auth.NewSessions(authenticator, a.cfg.Auth.SessionTTL)

			router, err := server.NewRouter(server.Deps{
				Records:  a.records,
				Sessions: sessions,
				Metrics:  a.metrics.Handler(),
			})
			if err != nil {
				return err
			}

			slog.Info("starting student-records",
				slog.String("env", a.cfg.Env),
				slog.String("storage", a.cfg.Storage.Driver),
				slog.Int("records", a.records.Len()))

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return server.Run(ctx, addr, router, a.cfg.ShutdownTimeout)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	return cmd
}
