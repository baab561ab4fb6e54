// Command circulationd runs the circulation engine with its hold sweeper and notification outbox
// until SIGINT or SIGTERM.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/Agihtaws/OpenShelf-sub001/config"
)

func main() {
	configPath := flag.String("config", os.Getenv("OPENSHELF_CONFIG"), "path to a YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("loading config failed", "error", err.Error())
		os.Exit(1)
	}

	logger := newLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("circulationd failed", "error", err.Error())
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}

	if err := a.start(ctx); err != nil {
		_ = a.shutdown(context.Background())
		return err
	}

	logger.Info("circulationd started",
		"storage", cfg.Storage.Engine,
		"sweeper", cfg.Sweeper.Enabled,
		"audit", cfg.Audit.Sink,
	)

	<-ctx.Done()
	logger.Info("circulationd stopping")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Shutdown)
	defer cancel()

	return a.shutdown(shutdownCtx)
}

func newLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}

	if cfg.Log.Format == "text" {
		return slog.New(slog.NewTextHandler(os.Stderr, opts))
	}

	return slog.New(slog.NewJSONHandler(os.Stderr, opts))
}
