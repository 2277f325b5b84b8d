package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Alias1177/StockSignals/internal/model"
	_ "github.com/lib/pq"
)

// DB archives run reports in PostgreSQL
type DB struct {
	*sql.DB
}

// New opens a connection from a postgres:// URL and makes sure the tables exist
func New(ctx context.Context, url string) (*DB, error) {
	conn, err := sql.Open("postgres", url)
	if err != nil {
		return nil, err
	}

	// Check connection
	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	db := &DB{conn}
	if err := db.CreateTables(ctx); err != nil {
		conn.Close()
		return nil, err
	}
	return db, nil
}

// CreateTables creates the archive tables if they don't exist
func (db *DB) CreateTables(ctx context.Context) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS signal_runs (
			run_id TEXT PRIMARY KEY,
			as_of DATE NOT NULL,
			generated_at TIMESTAMPTZ NOT NULL,
			regime TEXT NOT NULL,
			coverage DOUBLE PRECISION NOT NULL,
			report JSONB NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("create signal_runs: %w", err)
	}

	_, err = db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS signal_results (
			run_id TEXT NOT NULL REFERENCES signal_runs(run_id) ON DELETE CASCADE,
			ticker TEXT NOT NULL,
			sector TEXT NOT NULL,
			direction TEXT NOT NULL,
			strong BOOLEAN NOT NULL,
			confidence DOUBLE PRECISION NOT NULL,
			score DOUBLE PRECISION NOT NULL,
			close DOUBLE PRECISION,
			option_strike DOUBLE PRECISION,
			option_expiry DATE,
			PRIMARY KEY (run_id, ticker)
		)
	`)
	if err != nil {
		return fmt.Errorf("create signal_results: %w", err)
	}
	return nil
}

// SaveRun stores the report and one row per ticker in a single transaction
func (db *DB) SaveRun(ctx context.Context, r *model.RunReport) error {
	doc, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO signal_runs (run_id, as_of, generated_at, regime, coverage, report)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, r.RunID, r.AsOf, r.GeneratedAt, string(r.Regime.State), r.Coverage.Ratio, doc)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	for _, res := range r.Results {
		var closePrice, strike sql.NullFloat64
		var expiry sql.NullTime
		if res.Indicators != nil {
			closePrice = sql.NullFloat64{Float64: res.Indicators.Close, Valid: true}
		}
		if res.Option != nil {
			strike = sql.NullFloat64{Float64: res.Option.Strike, Valid: true}
			expiry = sql.NullTime{Time: res.Option.Expiry, Valid: true}
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO signal_results (
				run_id, ticker, sector, direction, strong, confidence, score, close, option_strike, option_expiry
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		`, r.RunID, res.Ticker.Symbol, string(res.Ticker.Sector), string(res.Signal.Direction), res.Signal.Strong,
			res.Signal.Confidence, res.Signal.Score, closePrice, strike, expiry)
		if err != nil {
			return fmt.Errorf("insert result %s: %w", res.Ticker.Symbol, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit run: %w", err)
	}
	return nil
}

// LatestRun returns the most recently generated report, or nil when the archive is empty
func (db *DB) LatestRun(ctx context.Context) (*model.RunReport, error) {
	var doc []byte
	err := db.QueryRowContext(ctx, `
		SELECT report FROM signal_runs
		ORDER BY generated_at DESC
		LIMIT 1
	`).Scan(&doc)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	var r model.RunReport
	if err := json.Unmarshal(doc, &r); err != nil {
		return nil, fmt.Errorf("decode report: %w", err)
	}
	return &r, nil
}

// HistoryEntry is one archived signal for a ticker
type HistoryEntry struct {
	RunID       string
	AsOf        time.Time
	Direction   model.Direction
	Strong      bool
	Confidence  float64
	Score       float64
	Close       float64
	GeneratedAt time.Time
}

// SignalHistory returns the latest archived signals for ticker, newest first
func (db *DB) SignalHistory(ctx context.Context, ticker string, limit int) ([]HistoryEntry, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT r.run_id, r.as_of, s.direction, s.strong, s.confidence, s.score, s.close, r.generated_at
		FROM signal_results s
		JOIN signal_runs r ON r.run_id = s.run_id
		WHERE s.ticker = $1
		ORDER BY r.generated_at DESC
		LIMIT $2
	`, ticker, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []HistoryEntry
	for rows.Next() {
		var e HistoryEntry
		var direction string
		var closePrice sql.NullFloat64
		if err := rows.Scan(&e.RunID, &e.AsOf, &direction, &e.Strong, &e.Confidence, &e.Score, &closePrice, &e.GeneratedAt); err != nil {
			return nil, err
		}
		e.Direction = model.Direction(direction)
		e.Close = closePrice.Float64
		out = append(out, e)
	}
	return out, rows.Err()
}
