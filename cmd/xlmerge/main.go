// Command xlmerge merges a fixed region of every matching workbook under a
// directory tree into a single deduplicated workbook.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"xlmerge/internal/config"
	"xlmerge/internal/infrastructure"
	"xlmerge/internal/operations"
	"xlmerge/pkg/contracts"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run returns the process exit status: 0 on success or when there was
// nothing to merge, 1 on a fatal error, 2 on bad usage.
func run(args []string, stdout, stderr io.Writer) int {
	flags := flag.NewFlagSet("xlmerge", flag.ContinueOnError)
	flags.SetOutput(stderr)
	configFile := flags.String("config", "", "YAML config file (default $"+config.ConfigFileEnv+", ./xlmerge.yaml or ./configs/xlmerge.yaml)")
	showVersion := flags.Bool("version", false, "print version information and exit")
	if err := flags.Parse(args); err != nil {
		return 2
	}

	if *showVersion {
		fmt.Fprintln(stdout, contracts.GetFullVersionString())
		return 0
	}

	var (
		cfg *config.Config
		err error
	)
	if *configFile != "" {
		cfg, err = config.LoadFile(*configFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		fmt.Fprintf(stderr, "xlmerge: %v\n", err)
		return 1
	}

	start := time.Now()
	runID := infrastructure.GenerateRunID()

	runLog, err := infrastructure.NewRunLog(cfg.Logging, runID, start)
	if err != nil {
		fmt.Fprintf(stderr, "xlmerge: %v\n", err)
		return 1
	}
	defer runLog.Close()

	logger := runLog.Logger
	prev := slog.Default()
	slog.SetDefault(logger)
	defer slog.SetDefault(prev)

	fail := func(msg string, err error) int {
		logger.Error(msg, slog.String("error", err.Error()))
		fmt.Fprintf(stderr, "xlmerge: %v\n", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := infrastructure.InitTracing(cfg.Telemetry, contracts.Version, runID, logger)
	if err != nil {
		return fail("Failed to initialize tracing", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(shutdownCtx); err != nil {
			logger.Warn("Tracing shutdown failed", slog.String("error", err.Error()))
		}
	}()

	metrics, err := infrastructure.NewRunMetrics(contracts.Version, runID)
	if err != nil {
		return fail("Failed to initialize metrics", err)
	}
	defer metrics.Shutdown(context.Background())

	logger.Debug("Starting merge",
		slog.String("version", contracts.Version),
		slog.String("root", cfg.Merge.RootDir),
		slog.String("output", cfg.Merge.OutputPath),
		slog.String("log_file", runLog.Path))

	summary, runErr := operations.NewMerger(cfg.Merge, logger, metrics).Run(ctx)

	if path := cfg.Telemetry.MetricsTextfile; path != "" {
		if err := metrics.WriteTextfile(path); err != nil {
			logger.Warn("Failed to write metrics textfile",
				slog.String("file", path),
				slog.String("error", err.Error()))
		}
	}

	if runErr != nil {
		// the failing step has already been logged
		fmt.Fprintf(stderr, "xlmerge: %v\n", runErr)
		return 1
	}

	logger.Debug("Merge finished",
		slog.Int("failed", len(summary.Failed)),
		slog.Duration("duration", summary.Duration))
	return 0
}
