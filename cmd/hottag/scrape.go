package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/IshaanNene/HotTag/internal/config"
	"github.com/IshaanNene/HotTag/internal/engine"
	"github.com/IshaanNene/HotTag/internal/fetcher"
	"github.com/IshaanNene/HotTag/internal/observability"
	"github.com/IshaanNene/HotTag/internal/parser"
	"github.com/IshaanNene/HotTag/internal/storage"
	"github.com/IshaanNene/HotTag/internal/store"
)

// scrapeChampionsCmd creates the "scrape-champions" subcommand.
func scrapeChampionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scrape-champions <promotion-slug>",
		Short: "Import the current champions of one promotion",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			slug := args[0]
			return runImport(cmd.Context(), func(ctx context.Context, eng *engine.Engine) (*engine.Report, error) {
				return eng.RunPromotion(ctx, slug)
			})
		},
	}
}

// scrapeAllChampionsCmd creates the "scrape-all-champions" subcommand.
func scrapeAllChampionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scrape-all-champions",
		Short: "Import the current champions of every promotion with a Cagematch id",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd.Context(), func(ctx context.Context, eng *engine.Engine) (*engine.Report, error) {
				return eng.RunAll(ctx)
			})
		},
	}
}

type runFunc func(ctx context.Context, eng *engine.Engine) (*engine.Report, error)

// runImport wires the pipeline, runs it and prints the summary.
func runImport(parent context.Context, run runFunc) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := setupLogger(cfg.Logging)

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := store.Open(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	f, err := fetcher.New(cfg, logger)
	if err != nil {
		return fmt.Errorf("create fetcher: %w", err)
	}
	defer f.Close()

	p, err := parser.New(cfg.Source.Parser, logger)
	if err != nil {
		return fmt.Errorf("create parser: %w", err)
	}

	sink, err := storage.New(ctx, cfg.Report, logger)
	if err != nil {
		return fmt.Errorf("create report sink: %w", err)
	}
	if sink != nil {
		defer sink.Close()
	}

	metrics := observability.NewMetrics(logger)
	eng := engine.New(cfg, st, f, p, logger)
	eng.SetMetrics(metrics)

	if cfg.Metrics.Enabled {
		srv := metrics.StartServer(cfg.Metrics.Port, cfg.Metrics.Path)
		defer shutdownServer(srv.Shutdown, logger)
	}

	logger.Info("starting import",
		"store", st.Name(),
		"fetcher", f.Type(),
		"parser", p.Strategy(),
		"dry_run", cfg.DryRun,
	)

	report, err := run(ctx, eng)
	if err != nil {
		return err
	}

	if sink != nil {
		// The run context may already be cancelled by an interrupt.
		if err := sink.Write(context.WithoutCancel(ctx), report); err != nil {
			logger.Error("report archive failed", "sink", sink.Name(), "error", err)
		}
	}
	pushMetrics(ctx, cfg, metrics, logger)

	printSummary(os.Stdout, report)
	return nil
}

func pushMetrics(ctx context.Context, cfg *config.Config, m *observability.Metrics, logger *slog.Logger) {
	if cfg.Metrics.PushgatewayURL == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	if err := m.Push(ctx, cfg.Metrics.PushgatewayURL, "hottag"); err != nil {
		logger.Warn("metrics push failed", "error", err)
	}
}

func shutdownServer(shutdown func(context.Context) error, logger *slog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := shutdown(ctx); err != nil {
		logger.Warn("metrics server shutdown", "error", err)
	}
}
