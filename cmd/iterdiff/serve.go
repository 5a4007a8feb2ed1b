package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/IgniteUI/igniteui-angular-sub020/pkg/server"
	"github.com/spf13/cobra"
)

func (a *app) serveCmd() *cobra.Command {
	var (
		host      string
		port      int
		noMetrics bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the diff server",
		Long: `Serve runs an HTTP and WebSocket server holding one differ per session.

Endpoints:
  POST   /v1/sessions             create a session
  GET    /v1/sessions/{id}        current items
  DELETE /v1/sessions/{id}        close a session
  POST   /v1/sessions/{id}/check  diff a snapshot
  GET    /v1/sessions/{id}/ws     stream snapshots over WebSocket
  GET    /metrics                 Prometheus metrics
  GET    /healthz                 liveness`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if host != "" {
				a.cfg.Server.Host = host
			}
			if port != 0 {
				a.cfg.Server.Port = port
			}
			if noMetrics {
				a.cfg.Server.Metrics = false
			}
			if err := a.cfg.Validate(); err != nil {
				return err
			}

			srv := server.New(&server.Config{
				Addr:        a.cfg.Address(),
				SessionTTL:  a.cfg.SessionTTL(),
				MaxSessions: a.cfg.Server.MaxSessions,
				Metrics:     a.cfg.Server.Metrics,
				Logger:      a.logger,
			})

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			info(cmd.ErrOrStderr(), "Serving on http://%s", a.cfg.Address())
			if a.cfg.Server.Metrics {
				info(cmd.ErrOrStderr(), "Metrics at http://%s/metrics", a.cfg.Address())
			}
			return srv.ListenAndServe(ctx)
		},
	}

	cmd.Flags().StringVar(&host, "host", "", "Host to bind (default localhost)")
	cmd.Flags().IntVarP(&port, "port", "p", 0, "Port to listen on (default 8080)")
	cmd.Flags().BoolVar(&noMetrics, "no-metrics", false, "Disable /metrics")

	return cmd
}
