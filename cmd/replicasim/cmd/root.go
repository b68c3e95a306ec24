// Package cmd contains the replicasim CLI commands.
package cmd

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/instantcocoa/replicatrace/pkg/config"
	"github.com/instantcocoa/replicatrace/pkg/harness"
	"github.com/instantcocoa/replicatrace/pkg/telemetry"
)

// rootCmd is the base command; replicasim has no subcommands, only flags
// overriding the REPLICATRACE_* environment surface for a quick local run.
var rootCmd = &cobra.Command{
	Use:   "replicasim",
	Short: "Simulate a replica's tracing and statsd workload",
	Long: `replicasim drives a bounded simulated replica workload against the
observability core: it starts and stops trace spans, records timings and
gauges across the event catalogue, and periodically flushes the
aggregate tables as statsd datagrams.

Configuration is read from REPLICATRACE_* environment variables; flags
below override the corresponding variable for this run only.`,
	RunE: runSim,
}

var (
	tracePath  string
	statsdMode string
	statsdAddr string
	replica    uint8
	logLevel   string
	logFormat  string
)

func init() {
	rootCmd.Flags().StringVar(&tracePath, "trace-path", "", "override REPLICATRACE_TRACE_PATH")
	rootCmd.Flags().StringVar(&statsdMode, "statsd-mode", "", "override REPLICATRACE_STATSD_MODE (log|udp)")
	rootCmd.Flags().StringVar(&statsdAddr, "statsd-addr", "", "override REPLICATRACE_STATSD_ADDR")
	rootCmd.Flags().Uint8Var(&replica, "replica", 0, "override REPLICATRACE_REPLICA_INDEX")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "", "override REPLICATRACE_LOG_LEVEL")
	rootCmd.Flags().StringVar(&logFormat, "log-format", "", "override REPLICATRACE_LOG_FORMAT")
}

// Execute runs the CLI.
func Execute() error {
	return rootCmd.Execute()
}

func runSim(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	applyFlagOverrides(cmd, cfg)

	logger := telemetry.Setup(telemetry.Config{
		ServiceName: "replicasim",
		Replica:     cfg.Replica,
		LogLevel:    cfg.LogLevel,
		LogFormat:   cfg.LogFormat,
	})

	h, err := harness.New(cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := h.Close(); closeErr != nil {
			logger.Warn("harness close failed", "error", closeErr)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return h.Run(ctx)
}

// applyFlagOverrides copies any explicitly-set flag onto cfg, letting an
// unset flag fall through to whatever config.Load already resolved from
// the environment.
func applyFlagOverrides(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("trace-path") {
		cfg.TracePath = tracePath
	}
	if flags.Changed("statsd-mode") {
		if statsdMode == string(config.StatsDModeUDP) {
			cfg.StatsDMode = config.StatsDModeUDP
		} else {
			cfg.StatsDMode = config.StatsDModeLog
		}
	}
	if flags.Changed("statsd-addr") {
		cfg.StatsDAddr = statsdAddr
	}
	if flags.Changed("replica") {
		cfg.Replica = replica
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = logLevel
	}
	if flags.Changed("log-format") {
		cfg.LogFormat = logFormat
	}
}
