package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/IshaanNene/HotTag/internal/config"
)

var (
	cfgFile     string
	verbose     bool
	dryRun      bool
	parserName  string
	fetcherType string
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the command line and returns the process exit code.
func run(args []string, stdout, stderr io.Writer) int {
	rootCmd := newRootCmd()
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	if err := rootCmd.Execute(); err != nil {
		return 1
	}
	return 0
}

// newRootCmd builds the command tree.
func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "hottag",
		Short: "Hot Tag championship importer",
		Long: `hottag imports current championship holders from Cagematch into the Hot Tag database.

For each promotion it fetches the title list, resolves every champion to a
wrestler (creating wrestlers and roster memberships as needed) and updates or
inserts the promotion's championships.`,
		// Arguments are validated before this hook, so usage is still
		// printed for a missing or extra argument.
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cmd.SilenceUsage = true
		},
	}

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&dryRun, "dry-run", false, "read from the store but only log writes")
	rootCmd.PersistentFlags().StringVar(&parserName, "parser", "", "title page parser: css, xpath, regex")
	rootCmd.PersistentFlags().StringVar(&fetcherType, "fetcher", "", "page fetcher: http, browser")

	rootCmd.AddCommand(scrapeChampionsCmd())
	rootCmd.AddCommand(scrapeAllChampionsCmd())
	rootCmd.AddCommand(parseCmd())
	rootCmd.AddCommand(versionCmd())
	rootCmd.AddCommand(configCmd())

	return rootCmd
}

// loadConfig loads, overrides and validates the configuration.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	applyCLIOverrides(cfg)

	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// applyCLIOverrides applies command-line flag values to the config.
func applyCLIOverrides(cfg *config.Config) {
	if dryRun {
		cfg.DryRun = true
	}
	if parserName != "" {
		cfg.Source.Parser = strings.ToLower(parserName)
	}
	if fetcherType != "" {
		cfg.Fetcher.Type = strings.ToLower(fetcherType)
	}
	if verbose {
		cfg.Logging.Level = "debug"
	}
}

// versionCmd creates the "version" subcommand.
func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "hottag %s\n", config.Version)
		},
	}
}

// configCmd creates the "config" subcommand for inspecting configuration.
func configCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return err
			}
			applyCLIOverrides(cfg)

			key := "(unset)"
			if cfg.Store.ServiceKey != "" {
				key = "(set)"
			}
			fmt.Printf("Store:\n")
			fmt.Printf("  Driver:            %s\n", cfg.Store.Driver)
			fmt.Printf("  URL:               %s\n", cfg.Store.URL)
			fmt.Printf("  Service Key:       %s\n", key)
			fmt.Printf("  Timeout:           %s\n", cfg.Store.Timeout)
			fmt.Printf("\nSource:\n")
			fmt.Printf("  Base URL:          %s\n", cfg.Source.BaseURL)
			fmt.Printf("  Parser:            %s\n", cfg.Source.Parser)
			fmt.Printf("  Deny List:         %s\n", strings.Join(cfg.Source.DenyList, ", "))
			fmt.Printf("\nFetcher:\n")
			fmt.Printf("  Type:              %s\n", cfg.Fetcher.Type)
			fmt.Printf("  Timeout:           %s\n", cfg.Fetcher.Timeout)
			fmt.Printf("  Max Body Size:     %d bytes\n", cfg.Fetcher.MaxBodySize)
			fmt.Printf("\nThrottle:\n")
			fmt.Printf("  Champion:          %s\n", cfg.Throttle.ChampionDelay)
			fmt.Printf("  Championship:      %s\n", cfg.Throttle.ChampionshipDelay)
			fmt.Printf("  Promotion:         %s\n", cfg.Throttle.PromotionDelay)
			fmt.Printf("\nReport:\n")
			fmt.Printf("  Type:              %s\n", cfg.Report.Type)
			fmt.Printf("  Output Path:       %s\n", cfg.Report.OutputPath)
			fmt.Printf("\nMetrics:\n")
			fmt.Printf("  Enabled:           %v\n", cfg.Metrics.Enabled)
			fmt.Printf("  Port:              %d\n", cfg.Metrics.Port)
			fmt.Printf("  Pushgateway:       %s\n", cfg.Metrics.PushgatewayURL)
			fmt.Printf("\nDry Run:             %v\n", cfg.DryRun)
			return nil
		},
	}
}

// setupLogger creates a structured logger.
func setupLogger(cfg config.LoggingConfig) *slog.Logger {
	level := slog.LevelInfo
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	if verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	var handler slog.Handler = slog.NewTextHandler(os.Stderr, opts)
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	}
	return slog.New(handler)
}
