package main

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/attribute"

	"github.com/vango-dev/canopy/internal/config"
	"github.com/vango-dev/canopy/internal/demo"
	"github.com/vango-dev/canopy/internal/devserver"
	"github.com/vango-dev/canopy/pkg/render"
	"github.com/vango-dev/canopy/pkg/telemetry"
)

func serveCmd(c *cli) *cobra.Command {
	var (
		port int
		host string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the app to browsers",
		Long: `Start the dev server. Every page load gets its own renderer whose DOM
mutations are streamed to the browser over a WebSocket.

Metrics are served on /metrics unless telemetry.metrics is false.

Examples:
  canopy serve
  canopy serve --port=8080
  canopy serve --host=0.0.0.0`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.config()
			if err != nil {
				return err
			}
			if port > 0 {
				cfg.Dev.Port = port
			}
			if host != "" {
				cfg.Dev.Host = host
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			w := cmd.OutOrStdout()
			c.theme.printBanner(w)
			info(w, "Local: %s", cfg.DevURL())
			if cfg.Telemetry.Metrics {
				info(w, "Metrics: %s/metrics", cfg.DevURL())
			}
			return newDevServer(cfg, c.logger(cmd)).ListenAndServe(ctx)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "Port to run on (default from "+config.ConfigFileName+")")
	cmd.Flags().StringVarP(&host, "host", "H", "", "Host to bind to (default from "+config.ConfigFileName+")")

	return cmd
}

// newDevServer wires the demo app, telemetry and configuration together.
func newDevServer(cfg *config.Config, logger *slog.Logger) *devserver.Server {
	reg := prometheus.NewRegistry()
	var metrics *telemetry.Metrics
	if cfg.Telemetry.Metrics {
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		metrics = telemetry.NewMetrics(
			telemetry.WithNamespace(cfg.Telemetry.Namespace),
			telemetry.WithRegistry(reg),
		)
	}

	return devserver.New(devserver.Options{
		Addr:          cfg.DevAddress(),
		NewApp:        func() devserver.App { return demo.New() },
		RenderOptions: cfg.RenderOptions(),
		Observer: func(sessionID string) render.Observer {
			tracer := telemetry.NewTracer(
				telemetry.WithTracerName(cfg.Telemetry.TracerName),
				telemetry.WithAttributes(attribute.String("canopy.session", sessionID)),
			)
			if metrics == nil {
				return tracer
			}
			return telemetry.Observers(metrics, tracer)
		},
		Gatherer: reg,
		Logger:   logger,
	})
}
