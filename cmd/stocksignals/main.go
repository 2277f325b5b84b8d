package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Alias1177/StockSignals/internal/config"
	"github.com/Alias1177/StockSignals/internal/report"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

const version = "v1.0.0"

func main() {
	zerolog.TimeFieldFormat = time.RFC3339
	setupLogging("info", "console")

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "stocksignals",
		Short:         "Daily stock signals with market regime and LEAPS suggestions",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringP("config", "c", "config.yaml", "Path to the YAML configuration")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run the pipeline once and write signals.json",
		RunE:  runOnce,
	}
	runCmd.Flags().String("as-of", "", "Run date YYYY-MM-DD (default: today in the schedule timezone)")
	runCmd.Flags().String("output-dir", "public", "Directory for signals.json")
	runCmd.Flags().Bool("no-alerts", false, "Skip Telegram alerts")
	runCmd.Flags().Bool("no-options", false, "Skip option recommendations")

	scheduleCmd := &cobra.Command{
		Use:   "schedule",
		Short: "Run at the configured market-day check times until interrupted",
		RunE:  runSchedule,
	}
	scheduleCmd.Flags().String("output-dir", "public", "Directory for signals.json")
	scheduleCmd.Flags().Bool("no-alerts", false, "Skip Telegram alerts")
	scheduleCmd.Flags().Bool("no-options", false, "Skip option recommendations")

	validateCmd := &cobra.Command{
		Use:   "validate",
		Short: "Load and validate the configuration",
		RunE:  runValidate,
	}

	root.AddCommand(runCmd, scheduleCmd, validateCmd, newLastCmd(), newHistoryCmd())
	return root
}

// setupLogging configures the logger
func setupLogging(logLevel, format string) {
	if format == "json" {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	} else {
		output := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
		log.Logger = log.Output(output)
	}

	// Set log level from config
	level, err := zerolog.ParseLevel(logLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	log.Logger = log.Logger.Level(level)
}

// loadConfig reads --config and applies its logging settings
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		log.Error().Err(err).Str("path", path).Msg("Failed to load configuration")
		return nil, err
	}
	setupLogging(cfg.LogLevel, cfg.LogFormat)
	return cfg, nil
}

// printConfig outputs the current configuration
func printConfig(cfg *config.Config) {
	log.Info().
		Int("Tickers", len(cfg.Tickers())).
		Str("Source", cfg.Data.Source).
		Int("LookbackDays", cfg.Run.LookbackDays).
		Int("Workers", cfg.Run.Workers).
		Float64("MinCoverage", cfg.Run.MinCoverage).
		Str("VolatilityIndex", cfg.Run.VolatilityIndex).
		Bool("Options", cfg.Options.Enabled).
		Str("StrikePolicy", cfg.Options.StrikePolicy).
		Str("ExpiryCycle", cfg.Options.ExpiryCycle).
		Bool("Redis", cfg.Env.RedisAddr != "").
		Bool("Archive", cfg.Env.DatabaseURL != "").
		Bool("Telegram", cfg.Env.TelegramToken != "").
		Msg("Configuration loaded")
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	printConfig(cfg)
	fmt.Fprintf(cmd.OutOrStdout(), "configuration OK: %d tickers in %d sectors\n", len(cfg.Tickers()), len(cfg.Watchlist))
	return nil
}

func runOnce(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	opts := pipelineOptionsFromFlags(cmd)
	if noOpts, _ := cmd.Flags().GetBool("no-options"); noOpts {
		cfg.Options.Enabled = false
	}
	printConfig(cfg)

	loc, _ := time.LoadLocation(cfg.Schedule.Timezone)
	asOfFlag, _ := cmd.Flags().GetString("as-of")
	asOf, err := parseAsOf(asOfFlag, time.Now(), loc)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	p, err := newPipeline(ctx, cfg, opts)
	if err != nil {
		return err
	}
	defer p.Close()

	r, err := p.Run(ctx, asOf)
	if err != nil {
		log.Error().Err(err).Msg("Run failed")
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), report.Summary(r))
	return nil
}

func runSchedule(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	opts := pipelineOptionsFromFlags(cmd)
	if noOpts, _ := cmd.Flags().GetBool("no-options"); noOpts {
		cfg.Options.Enabled = false
	}
	printConfig(cfg)

	ctx := cmd.Context()
	p, err := newPipeline(ctx, cfg, opts)
	if err != nil {
		return err
	}
	defer p.Close()

	err = p.Schedule(ctx)
	if ctx.Err() != nil {
		log.Info().Msg("Shutdown signal received, exiting...")
		return nil
	}
	return err
}

func pipelineOptionsFromFlags(cmd *cobra.Command) pipelineOptions {
	outDir, _ := cmd.Flags().GetString("output-dir")
	noAlerts, _ := cmd.Flags().GetBool("no-alerts")
	return pipelineOptions{OutputDir: outDir, Alerts: !noAlerts}
}

// parseAsOf returns the run date at midnight UTC; empty means today in loc
func parseAsOf(s string, now time.Time, loc *time.Location) (time.Time, error) {
	if s == "" {
		if loc == nil {
			loc = time.UTC
		}
		y, m, d := now.In(loc).Date()
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --as-of %q: want YYYY-MM-DD", s)
	}
	return t, nil
}
