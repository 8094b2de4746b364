package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/matzehuels/plasmap/internal/server"
	"github.com/matzehuels/plasmap/pkg/cache"
	"github.com/matzehuels/plasmap/pkg/config"
	"github.com/matzehuels/plasmap/pkg/observability"
	"github.com/matzehuels/plasmap/pkg/observability/prom"
	"github.com/matzehuels/plasmap/pkg/store"
	"github.com/matzehuels/plasmap/pkg/store/mongo"
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr         string
		cacheBackend string
		storeBackend string
		noMetrics    bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Run the HTTP API.

Endpoints lay out and render posted features (/v1/layout, /v1/render), and
store sequences per feature database (/v1/maps/{db}/{hash}). Prometheus
metrics are served on /metrics.

The cache and store backends come from the [cache] and [store] sections of
the config file; --cache and --store override the backend name.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := c.cfg
			if addr != "" {
				cfg.Server.Addr = addr
			}
			if cacheBackend != "" {
				cfg.Cache.Backend = cacheBackend
			}
			if storeBackend != "" {
				cfg.Store.Backend = storeBackend
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			c.cfg = cfg
			return c.runServe(cmd.Context(), !noMetrics)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	cmd.Flags().StringVar(&cacheBackend, "cache", "", "cache backend: file, redis, memory, none")
	cmd.Flags().StringVar(&storeBackend, "store", "", "sequence store: memory, mongo")
	cmd.Flags().BoolVar(&noMetrics, "no-metrics", false, "do not serve /metrics")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, metrics bool) error {
	logger := loggerFromContext(ctx)
	prog := newProgress(logger)

	runner, err := c.newRunner(ctx, false)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	st, err := c.openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	opts := server.Options{
		Runner: runner,
		Store:  st,
		Layout: c.cfg.Layout,
		Config: c.cfg.Server,
		Logger: logger,
	}
	if metrics {
		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		collector, err := prom.New(reg)
		if err != nil {
			return fmt.Errorf("register metrics: %w", err)
		}
		collector.Install()
		defer observability.Reset()
		opts.Metrics = promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
	}

	srv := server.New(opts)
	prog.done(fmt.Sprintf("Server ready (cache %s, store %s)", c.cfg.Cache.Backend, c.cfg.Store.Backend))
	return srv.Run(ctx)
}

// dialBackoff paces store connection attempts while the database starts.
var dialBackoff = cache.Backoff{Attempts: 5, Delay: time.Second}

// openStore opens the configured sequence store.
func (c *CLI) openStore(ctx context.Context) (store.Store, error) {
	switch c.cfg.Store.Backend {
	case config.StoreMongo:
		logger := loggerFromContext(ctx)
		var s *mongo.Store
		attempt := 0
		err := dialBackoff.Retry(ctx, func() error {
			attempt++
			var err error
			if s, err = mongo.Connect(ctx, c.cfg.Store.MongoURI, c.cfg.Store.Database); err != nil {
				logger.Warn("mongo unavailable", "attempt", attempt, "err", err)
				return cache.Retryable(err)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("connect mongo store: %w", err)
		}
		return s, nil
	default:
		return store.NewMemoryStore(), nil
	}
}
