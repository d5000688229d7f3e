package commands

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/ccollicutt/chatlens/internal/observability"
	"github.com/ccollicutt/chatlens/internal/server"
	"github.com/ccollicutt/chatlens/pkg/config"
	"github.com/ccollicutt/chatlens/pkg/store"
)

// ServeOptions holds command-line options for the serve command.
type ServeOptions struct {
	Addr      string
	StorePath string
}

// NewServeCommand creates the serve command.
func NewServeCommand(g *GlobalOptions) *cobra.Command {
	opts := &ServeOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the analysis HTTP API",
		Long: `Run an HTTP server that analyzes uploaded chat exports.

Endpoints:
  POST   /api/analyze       upload exports (multipart field "file") or a raw text body
  GET    /api/results/:id   fetch a stored report
  DELETE /api/results/:id   delete a stored report
  GET    /healthz           liveness check
  GET    /metrics           Prometheus metrics

Results are kept in memory unless the store is configured for sqlite.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(commandContext(cmd.Context()), g, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Addr, "addr", "", "Listen address (default from config)")
	cmd.Flags().StringVar(&opts.StorePath, "store", "", "Persist results to this sqlite file")

	return cmd
}

func runServe(ctx context.Context, g *GlobalOptions, opts *ServeOptions) error {
	cfg, err := g.loadConfig(ctx)
	if err != nil {
		return err
	}
	if opts.Addr != "" {
		cfg.Server.Addr = opts.Addr
	}
	if opts.StorePath != "" {
		cfg.Store.Backend = config.StoreSQLite
		cfg.Store.Path = opts.StorePath
	}
	logger := g.logger(cfg)

	st, err := store.New(cfg.Store)
	if err != nil {
		return fmt.Errorf("opening result store: %w", err)
	}
	defer st.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics, err := observability.NewMetrics(reg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := server.New(cfg, st,
		server.WithLogger(logger),
		server.WithMetrics(metrics, reg))
	return srv.Run(ctx)
}
