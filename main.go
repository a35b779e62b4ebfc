package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"

	"github.com/ckauhaus/imageresize/config"
	"github.com/ckauhaus/imageresize/imageprocessor"
	"github.com/ckauhaus/imageresize/imageprocessor/processorcommand"
	"github.com/ckauhaus/imageresize/imagestore"
	"github.com/ckauhaus/imageresize/resizer"
	"github.com/ckauhaus/imageresize/stats"
)

const (
	exitUsage    = 2
	exitInternal = 1
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := Run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// Run resizes the files named in args and returns the process exit code.
func Run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cfg, err := config.NewConfiguration(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintf(stderr, "imageresize: %v\n", err)
		return exitUsage
	}

	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: cfg.LogLevel})).
		With("run_id", uuid.NewString())

	runtimeStats := newRuntimeStats(cfg, logger)
	if closer, ok := runtimeStats.(io.Closer); ok {
		defer closer.Close()
	}
	runtimeStats.LogStartup()

	tools := processorcommand.NewToolchain(cfg.ConvertPath, cfg.JpegtranPath, cfg.Timeout, logger)
	store := imagestore.NewFactory(cfg).NewImageStore()
	strategy := imageprocessor.NewResizeStrategy(tools, runtimeStats)

	batch := resizer.New(cfg, store, tools, strategy, runtimeStats, logger, stdout)
	if err := batch.Run(ctx, cfg.Files); err != nil {
		fmt.Fprintf(stderr, "imageresize: %v\n", err)
		return exitCode(err)
	}

	return 0
}

func newRuntimeStats(cfg *config.Configuration, logger *slog.Logger) stats.RuntimeStats {
	if cfg.DatadogHostname == "" {
		return &stats.DiscardStats{}
	}

	dd, err := stats.NewDatadogStats(cfg.DatadogHostname, 0)
	if err != nil {
		logger.Warn("statsd disabled", "host", cfg.DatadogHostname, "error", err)
		return &stats.DiscardStats{}
	}

	return dd
}

// exitCode passes a failing tool's own status through.
func exitCode(err error) int {
	var toolErr *processorcommand.ToolError
	if errors.As(err, &toolErr) && toolErr.ExitCode > 0 {
		return toolErr.ExitCode
	}

	return exitInternal
}
