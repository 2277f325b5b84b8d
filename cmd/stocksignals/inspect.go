package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/Alias1177/StockSignals/internal/config"
	"github.com/Alias1177/StockSignals/internal/database"
	"github.com/Alias1177/StockSignals/internal/model"
	"github.com/Alias1177/StockSignals/internal/report"
	"github.com/spf13/cobra"
)

func newLastCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "last",
		Short: "Print the brief of the latest run",
		RunE:  runLast,
	}
	cmd.Flags().String("output-dir", "public", "Directory holding signals.json")
	cmd.Flags().Bool("archive", false, "Read the latest run from the PostgreSQL archive instead")
	return cmd
}

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history <ticker>",
		Short: "Print archived signals for one ticker",
		Args:  cobra.ExactArgs(1),
		RunE:  runHistory,
	}
	cmd.Flags().Int("limit", 20, "Maximum number of runs to show")
	return cmd
}

func runLast(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	var r *model.RunReport
	if fromArchive, _ := cmd.Flags().GetBool("archive"); fromArchive {
		db, err := openArchive(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer db.Close()

		r, err = db.LatestRun(cmd.Context())
		if err != nil {
			return fmt.Errorf("read latest run: %w", err)
		}
		if r == nil {
			return errors.New("archive is empty")
		}
	} else {
		outDir, _ := cmd.Flags().GetString("output-dir")
		r, err = report.ReadJSON(filepath.Join(outDir, report.FileName))
		if err != nil {
			return err
		}
	}

	writeLast(cmd.OutOrStdout(), r)
	return nil
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	limit, _ := cmd.Flags().GetInt("limit")
	if limit <= 0 {
		return fmt.Errorf("--limit must be positive, got %d", limit)
	}

	db, err := openArchive(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	ticker := strings.ToUpper(args[0])
	entries, err := db.SignalHistory(cmd.Context(), ticker, limit)
	if err != nil {
		return fmt.Errorf("read history for %s: %w", ticker, err)
	}

	writeHistory(cmd.OutOrStdout(), ticker, entries)
	return nil
}

func openArchive(ctx context.Context, cfg *config.Config) (*database.DB, error) {
	if cfg.Env.DatabaseURL == "" {
		return nil, errors.New("DATABASE_URL is not set")
	}
	return database.New(ctx, cfg.Env.DatabaseURL)
}

func writeLast(w io.Writer, r *model.RunReport) {
	fmt.Fprintf(w, "Run %s as of %s (generated %s)\n",
		r.RunID, r.AsOf.Format(time.DateOnly), r.GeneratedAt.UTC().Format("2006-01-02 15:04 UTC"))
	fmt.Fprintln(w, report.Summary(r))
}

func writeHistory(w io.Writer, ticker string, entries []database.HistoryEntry) {
	if len(entries) == 0 {
		fmt.Fprintf(w, "No archived signals for %s\n", ticker)
		return
	}

	fmt.Fprintf(w, "%-10s  %-12s  %8s  %10s  %10s\n", "AS OF", "SIGNAL", "CONF", "SCORE", "CLOSE")
	for _, e := range entries {
		label := model.Signal{Direction: e.Direction, Strong: e.Strong}.Label()
		fmt.Fprintf(w, "%-10s  %-12s  %7.0f%%  %+10.3f  %10.2f\n",
			e.AsOf.Format(time.DateOnly), label, e.Confidence*100, e.Score, e.Close)
	}
}
