package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Alias1177/StockSignals/internal/api/twelvedata"
	"github.com/Alias1177/StockSignals/internal/config"
	"github.com/Alias1177/StockSignals/internal/database"
	"github.com/Alias1177/StockSignals/internal/engine"
	"github.com/Alias1177/StockSignals/internal/marketdata"
	"github.com/Alias1177/StockSignals/internal/metrics"
	"github.com/Alias1177/StockSignals/internal/model"
	"github.com/Alias1177/StockSignals/internal/notify"
	"github.com/Alias1177/StockSignals/internal/report"
	"github.com/Alias1177/StockSignals/internal/scheduler"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

type pipelineOptions struct {
	OutputDir string
	Alerts    bool
}

// notifier is satisfied by notify.TelegramNotifier
type notifier interface {
	Notify(ctx context.Context, r *model.RunReport) error
}

// archive is satisfied by database.DB
type archive interface {
	SaveRun(ctx context.Context, r *model.RunReport) error
}

// pipeline owns the engine and every optional sink around it
type pipeline struct {
	cfg      *config.Config
	opts     pipelineOptions
	engine   *engine.Engine
	rdb      *redis.Client
	db       *database.DB
	archive  archive
	notifier notifier
	metrics  *metrics.Recorder
	now      func() time.Time
}

func newPipeline(ctx context.Context, cfg *config.Config, opts pipelineOptions) (*pipeline, error) {
	p := &pipeline{
		cfg:     cfg,
		opts:    opts,
		metrics: metrics.New(),
		now:     time.Now,
	}

	if cfg.Env.RedisAddr != "" {
		p.rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Env.RedisAddr,
			Password: cfg.Env.RedisPassword,
			DB:       cfg.Env.RedisDB,
		})
		if err := p.rdb.Ping(ctx).Err(); err != nil {
			log.Warn().Err(err).Str("addr", cfg.Env.RedisAddr).Msg("Redis unreachable, continuing without cache and run lock")
			_ = p.rdb.Close()
			p.rdb = nil
		}
	}

	p.engine = engine.New(cfg, newProvider(cfg, p.rdb))

	if opts.Alerts && cfg.Env.TelegramToken != "" && cfg.Env.TelegramChatID != 0 {
		n, err := notify.NewTelegramNotifier(cfg.Env.TelegramToken, cfg.Env.TelegramChatID)
		if err != nil {
			log.Warn().Err(err).Msg("Telegram disabled")
		} else {
			p.notifier = n
		}
	}

	if cfg.Env.DatabaseURL != "" {
		db, err := database.New(ctx, cfg.Env.DatabaseURL)
		if err != nil {
			log.Warn().Err(err).Msg("Signal archive disabled")
		} else {
			p.db = db
			p.archive = db
		}
	}

	return p, nil
}

// newProvider picks the price source and puts the Redis cache in front of it when available
func newProvider(cfg *config.Config, rdb *redis.Client) marketdata.Provider {
	var provider marketdata.Provider
	switch cfg.Data.Source {
	case "csv":
		provider = marketdata.NewCSVProvider(cfg.Data.CSVDir)
	default:
		provider = twelvedata.NewClient(twelvedata.ClientOptions{
			APIKey:         cfg.Env.TwelveAPIKey,
			Interval:       cfg.Data.Interval,
			RequestTimeout: cfg.Data.RequestTimeout,
			RequestsPerSec: cfg.Data.RequestsPerSec,
			MaxRetryTime:   cfg.Data.MaxRetryTime,
		})
	}

	if rdb != nil && cfg.Data.CacheTTL > 0 {
		provider = marketdata.NewCachedProvider(provider, rdb, cfg.Data.CacheTTL)
	}
	return provider
}

// Run executes one engine run and fans the report out to every configured sink.
// Only the engine and the JSON report can fail the run.
func (p *pipeline) Run(ctx context.Context, asOf time.Time) (*model.RunReport, error) {
	start := p.now()

	r, err := p.engine.Run(ctx, asOf)
	if err != nil {
		p.metrics.RecordRunError(p.now().Sub(start))
		p.pushMetrics(ctx)
		return nil, err
	}

	path, err := report.WriteJSON(p.opts.OutputDir, r)
	if err != nil {
		p.metrics.RecordRunError(p.now().Sub(start))
		p.pushMetrics(ctx)
		return nil, fmt.Errorf("write report: %w", err)
	}
	log.Info().Str("path", path).Str("run_id", r.RunID).Msg("Report written")

	if p.notifier != nil {
		if err := p.notifier.Notify(ctx, r); err != nil {
			log.Error().Err(err).Msg("Failed to send Telegram alert")
		}
	}

	if p.archive != nil {
		if err := p.archive.SaveRun(ctx, r); err != nil {
			log.Error().Err(err).Msg("Failed to archive run")
		}
	}

	p.metrics.RecordReport(r, p.now().Sub(start))
	p.pushMetrics(ctx)

	return r, nil
}

func (p *pipeline) pushMetrics(ctx context.Context) {
	if p.cfg.Env.PushgatewayURL == "" {
		return
	}
	if err := p.metrics.Push(ctx, p.cfg.Env.PushgatewayURL); err != nil {
		log.Error().Err(err).Msg("Failed to push metrics")
	}
}

// Schedule runs the pipeline at every configured check until ctx is done.
// With Redis configured, a lock keeps concurrent schedulers from running the same check twice.
func (p *pipeline) Schedule(ctx context.Context) error {
	sched, err := scheduler.New(p.cfg.Schedule)
	if err != nil {
		return err
	}
	runner := scheduler.NewRunner(sched)
	return runner.Run(ctx, p.scheduledJob(sched.Location()))
}

func (p *pipeline) scheduledJob(loc *time.Location) scheduler.Job {
	return func(ctx context.Context, at time.Time) error {
		if p.rdb != nil {
			lock := engine.NewLock(p.rdb, engine.DefaultLockKey, p.cfg.Schedule.LockTTL)
			if err := lock.Acquire(ctx); err != nil {
				if errors.Is(err, engine.ErrLocked) {
					log.Info().Time("at", at).Msg("Run already in progress elsewhere, skipping")
					return nil
				}
				return err
			}
			defer func() {
				if err := lock.Release(context.WithoutCancel(ctx)); err != nil {
					log.Warn().Err(err).Msg("Failed to release run lock")
				}
			}()
		}

		asOf, _ := parseAsOf("", at, loc)
		_, err := p.Run(ctx, asOf)
		return err
	}
}

// Close releases network clients
func (p *pipeline) Close() {
	if p.db != nil {
		if err := p.db.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close database")
		}
	}
	if p.rdb != nil {
		if err := p.rdb.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close Redis client")
		}
	}
}
