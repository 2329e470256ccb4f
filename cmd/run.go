package cmd

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/chrisdamba/trafficsim/internal/api"
	"github.com/chrisdamba/trafficsim/internal/devices"
	"github.com/chrisdamba/trafficsim/internal/factories"
	"github.com/chrisdamba/trafficsim/internal/incidents"
	"github.com/chrisdamba/trafficsim/internal/prediction"
	"github.com/chrisdamba/trafficsim/internal/simulator"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

const shutdownTimeout = 30 * time.Second

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Bootstrap history, then ingest samples on a schedule and serve the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		st, err := openStores(ctx, cfg)
		if err != nil {
			return err
		}
		defer st.close()

		var opts []simulator.Option
		out, err := openOutput(cfg)
		if err != nil {
			return err
		}
		if out != nil {
			defer out.Close()
			opts = append(opts, simulator.WithOutput(out))
		}
		sim := newSimulator(cfg, st.traffic, opts...)

		registry := devices.NewRegistry(st.devices)
		if err := registry.SeedForLocations(ctx, factories.NewDeviceFactory(cfg.Seed), sim.Locations()); err != nil {
			log.Warn("failed to seed devices", zap.Error(err))
		}

		if cfg.BootstrapCycles > 0 {
			if err := sim.Bootstrap(ctx, cfg.BootstrapCycles); err != nil {
				log.Warn("bootstrap finished with failures",
					zap.Int("failures", len(multierr.Errors(err))), zap.Error(err))
			}
		}

		if err := sim.Start(cfg.TickInterval); err != nil {
			return err
		}

		predictor := prediction.NewClient(cfg.AIServiceURL, nil, log)
		server := &http.Server{
			Addr:              cfg.HTTPAddr,
			Handler:           api.NewServer(sim, registry, incidents.NewService(st.incidents, log), predictor, log).Router(),
			ReadHeaderTimeout: 10 * time.Second,
		}
		serveErr := make(chan error, 1)
		go func() {
			log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				serveErr <- err
			}
			close(serveErr)
		}()

		select {
		case <-ctx.Done():
			log.Info("shutdown signal received")
		case err = <-serveErr:
			log.Error("http server failed", zap.Error(err))
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return multierr.Combine(
			err,
			server.Shutdown(shutdownCtx),
			sim.Stop(shutdownCtx),
		)
	},
}

func init() {
	runCmd.Flags().Duration("tick-interval", 30*time.Second, "Time between live ticks")
	runCmd.Flags().Int("bootstrap-cycles", 50, "Rounds of history to backfill before the first tick (0 disables)")
	runCmd.Flags().String("http-addr", ":8080", "HTTP listen address")
	runCmd.Flags().String("ai-service-url", "http://localhost:5000", "Prediction service base URL")
	runCmd.Flags().Bool("kafka-enabled", false, "Publish samples to Kafka")
	runCmd.Flags().String("kafka-broker-list", "localhost:9092", "Kafka broker list")
	runCmd.Flags().Bool("console-output", false, "Print samples to stdout")

	bindFlags(runCmd.Flags(), map[string]string{
		"tick_interval":     "tick-interval",
		"bootstrap_cycles":  "bootstrap-cycles",
		"http_addr":         "http-addr",
		"ai_service_url":    "ai-service-url",
		"kafka_enabled":     "kafka-enabled",
		"kafka_broker_list": "kafka-broker-list",
		"console_output":    "console-output",
	})
	rootCmd.AddCommand(runCmd)
}
