package cli

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/matzehuels/pkggraph/internal/server"
	"github.com/matzehuels/pkggraph/pkg/observability"
)

// serveCommand creates the serve command, which runs the HTTP service.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		metrics bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve dependency analysis over HTTP",
		Long: `Serve dependency analysis over HTTP.

The repository index is loaded on the first request and shared by all
requests until it expires or POST /v1/index/refresh reloads it. Reports
produced by the service are saved to the report store.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if addr == "" {
				addr = c.Config.Server.Addr
			}
			opts := c.baseOptions("")

			runner, err := c.newRunner(ctx)
			if err != nil {
				return err
			}
			defer runner.Close()

			store, err := c.openStore(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			cfg := server.Config{
				Repositories: opts.Repositories,
				Mode:         opts.Mode,
				MaxDepth:     opts.MaxDepth,
				Runner:       runner,
				Store:        store,
				Logger:       c.Logger,
			}
			if metrics {
				prom := observability.NewPrometheus(prometheus.NewRegistry())
				prom.Register()
				defer observability.Reset()
				cfg.Metrics = prom
			}

			srv, err := server.New(cfg)
			if err != nil {
				return err
			}
			return srv.ListenAndServe(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, "+defaultServerAddr+")")
	cmd.Flags().BoolVar(&metrics, "metrics", true, "expose Prometheus metrics on /metrics")
	return cmd
}
