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

	"github.com/wikiharvest/wikiharvest/internal/config"
	"github.com/wikiharvest/wikiharvest/internal/engine"
	"github.com/wikiharvest/wikiharvest/internal/fetcher"
	"github.com/wikiharvest/wikiharvest/internal/storage"
)

var (
	cfgFile     string
	category    string
	logLevel    string
	logFile     string
	outputPath  string
	timeout     string
	userAgent   string
	maxPages    int
	maxArticles int
	maxRetries  int
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "wikiharvest",
		Short: "wikiharvest — Wikinews category scraper",
		Long: `wikiharvest crawls an en.wikinews.org category page, discovers every
article reachable through its (paginated) listings and sub-categories,
and emits one JSON object per article as newline-delimited JSON.

Records go to stdout (or --output); progress and error diagnostics go
to stderr (or --log-file), so the two streams can be redirected
independently:

  wikiharvest scrape --category=Health --log-file=health.log > health.jsonl`,
	}

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")

	rootCmd.AddCommand(scrapeCmd())
	rootCmd.AddCommand(versionCmd())
	rootCmd.AddCommand(configCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// scrapeCmd creates the "scrape" subcommand.
func scrapeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scrape",
		Short: "Scrape all articles in a Wikinews category",
		Long: `Scrape every article transitively reachable from the given category's
listing pages, following pagination and sub-categories. Each distinct
article is fetched and emitted at most once per run; individual page
failures are logged and skipped.`,
		RunE: runScrape,
	}

	cmd.Flags().StringVar(&category, "category", "", `Wikinews category (e.g. "Health" or "Published")`)
	cmd.Flags().StringVar(&logLevel, "log-level", "info", "logging level: notset, debug, info, warning, error, critical")
	cmd.Flags().StringVar(&logFile, "log-file", "", "path where log messages are written (default: stderr)")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "-", `JSONL output path ("-" = stdout)`)
	cmd.Flags().StringVar(&timeout, "timeout", "", "per-request timeout (e.g. 30s)")
	cmd.Flags().StringVar(&userAgent, "user-agent", "", "custom User-Agent string")
	cmd.Flags().IntVar(&maxPages, "max-pages", 0, "maximum listing pages to process (0 = unlimited)")
	cmd.Flags().IntVar(&maxArticles, "max-articles", 0, "maximum articles to emit (0 = unlimited)")
	cmd.Flags().IntVar(&maxRetries, "max-retries", -1, "retries per retryable fetch failure (-1 = config default)")
	_ = cmd.MarkFlagRequired("category")

	return cmd
}

// runScrape executes the scrape command.
func runScrape(cmd *cobra.Command, args []string) error {
	if err := config.ValidateCategory(category); err != nil {
		return err
	}

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	applyCLIOverrides(cfg)
	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logger, closeLog, err := setupLogger(cfg.Logging)
	if err != nil {
		return err
	}
	defer closeLog()

	emitter, err := storage.NewFileEmitter(cfg.Output.Path, logger)
	if err != nil {
		return fmt.Errorf("create emitter: %w", err)
	}
	defer emitter.Close()

	httpFetcher, err := fetcher.NewHTTPFetcher(cfg, logger)
	if err != nil {
		return fmt.Errorf("create fetcher: %w", err)
	}
	defer httpFetcher.Close()

	driver := engine.New(cfg, logger, httpFetcher, emitter)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received signal, shutting down...", "signal", sig)
		cancel()
	}()

	start := time.Now()
	if err := driver.Run(ctx, category); err != nil {
		return fmt.Errorf("scrape %q: %w", category, err)
	}

	stats := driver.Stats()
	logger.Info("run finished",
		"elapsed", time.Since(start).Round(time.Millisecond),
		"articles", stats.ArticlesEmitted,
	)
	return nil
}

// versionCmd creates the "version" subcommand.
func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("wikiharvest %s\n", config.Version)
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
			fmt.Printf("Scraper:\n")
			fmt.Printf("  Base URL:         %s\n", cfg.Scraper.BaseURL)
			fmt.Printf("  Max Pages:        %d\n", cfg.Scraper.MaxPages)
			fmt.Printf("  Max Articles:     %d\n", cfg.Scraper.MaxArticles)
			fmt.Printf("\nFetcher:\n")
			fmt.Printf("  Request Timeout:  %s\n", cfg.Fetcher.RequestTimeout)
			fmt.Printf("  Max Retries:      %d\n", cfg.Fetcher.MaxRetries)
			fmt.Printf("  Follow Redirects: %v\n", cfg.Fetcher.FollowRedirects)
			fmt.Printf("  Max Body Size:    %d bytes\n", cfg.Fetcher.MaxBodySize)
			fmt.Printf("  User-Agent:       %s\n", cfg.Fetcher.UserAgent)
			fmt.Printf("\nLogging:\n")
			fmt.Printf("  Level:            %s\n", cfg.Logging.Level)
			fmt.Printf("  File:             %s\n", orStderr(cfg.Logging.File))
			fmt.Printf("\nOutput:\n")
			fmt.Printf("  Path:             %s\n", cfg.Output.Path)
			return nil
		},
	}
}

func orStderr(path string) string {
	if path == "" {
		return "(stderr)"
	}
	return path
}

// setupLogger creates the diagnostic-stream logger: timestamped text lines
// on stderr or the configured log file, filtered by the six-level selector.
func setupLogger(cfg config.LoggingConfig) (*slog.Logger, func(), error) {
	level, err := parseLogLevel(cfg.Level)
	if err != nil {
		return nil, nil, err
	}

	sink := os.Stderr
	closeFn := func() {}
	if cfg.File != "" {
		f, err := os.Create(cfg.File)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		sink = f
		closeFn = func() { f.Close() }
	}

	handler := slog.NewTextHandler(sink, &slog.HandlerOptions{Level: level})
	return slog.New(handler), closeFn, nil
}

// levelCritical sits above slog.LevelError, mirroring the classic
// six-level selector the CLI exposes.
const levelCritical = slog.LevelError + 4

// parseLogLevel maps the CLI level names onto slog levels. "notset"
// disables filtering (everything is logged), matching its traditional
// meaning.
func parseLogLevel(name string) (slog.Level, error) {
	switch name {
	case "notset":
		return slog.LevelDebug, nil
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	case "critical":
		return levelCritical, nil
	default:
		return 0, fmt.Errorf("unknown log level %q (valid: notset, debug, info, warning, error, critical)", name)
	}
}

// applyCLIOverrides applies command-line flag values to the config.
func applyCLIOverrides(cfg *config.Config) {
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	if logFile != "" {
		cfg.Logging.File = logFile
	}
	if outputPath != "" {
		cfg.Output.Path = outputPath
	}
	if timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil {
			cfg.Fetcher.RequestTimeout = d
		}
	}
	if userAgent != "" {
		cfg.Fetcher.UserAgent = userAgent
	}
	if maxPages > 0 {
		cfg.Scraper.MaxPages = maxPages
	}
	if maxArticles > 0 {
		cfg.Scraper.MaxArticles = maxArticles
	}
	if maxRetries >= 0 {
		cfg.Fetcher.MaxRetries = maxRetries
	}
}
