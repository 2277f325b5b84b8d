package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/Alias1177/StockSignals/internal/analysis/market"
	"github.com/Alias1177/StockSignals/internal/analysis/options"
	"github.com/Alias1177/StockSignals/internal/analysis/signal"
	"github.com/Alias1177/StockSignals/internal/analysis/technical"
	"github.com/Alias1177/StockSignals/internal/config"
	"github.com/Alias1177/StockSignals/internal/marketdata"
	"github.com/Alias1177/StockSignals/internal/model"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// Engine runs the full pipeline over the configured watchlist
type Engine struct {
	cfg        *config.Config
	provider   marketdata.Provider
	classifier *market.Classifier
	generator  *signal.Generator
	options    *options.Recommender
	now        func() time.Time
	logger     zerolog.Logger
}

// New creates an engine; option recommendations are skipped when cfg.Options.Enabled is false
func New(cfg *config.Config, provider marketdata.Provider) *Engine {
	e := &Engine{
		cfg:        cfg,
		provider:   provider,
		classifier: market.NewClassifier(cfg.Regime),
		generator:  signal.NewGenerator(cfg.Signal),
		now:        time.Now,
		logger:     log.With().Str("component", "engine").Logger(),
	}
	if cfg.Options.Enabled {
		e.options = options.NewRecommender(cfg.Options, cfg.Signal.Targets)
	}
	return e
}

// Run fetches history up to asOf, classifies the market once and scores every ticker.
// Per-ticker problems are collected in the report; only low coverage or cancellation fail the run.
func (e *Engine) Run(ctx context.Context, asOf time.Time) (*model.RunReport, error) {
	start := e.now()
	tickers := e.cfg.Tickers()
	from := asOf.AddDate(0, 0, -e.cfg.Run.LookbackDays)

	e.logger.Info().
		Int("tickers", len(tickers)).
		Str("as_of", asOf.Format(time.DateOnly)).
		Msg("Starting run")

	sets, failures, indexLevel, err := e.collect(ctx, tickers, from, asOf)
	if err != nil {
		return nil, err
	}

	valid := 0
	for _, s := range sets {
		if s != nil {
			valid++
		}
	}
	coverage := model.Coverage{Total: len(tickers), Valid: valid, Required: e.cfg.Run.MinCoverage}
	if coverage.Total > 0 {
		coverage.Ratio = float64(valid) / float64(coverage.Total)
	}
	if coverage.Total == 0 || coverage.Ratio < coverage.Required {
		return nil, &CoverageError{Valid: valid, Total: coverage.Total, Required: coverage.Required}
	}

	inputs := market.Aggregate(sets)
	inputs.IndexLevel = indexLevel
	regime := e.classifier.Classify(inputs)

	e.logger.Info().
		Str("regime", string(regime.State)).
		Str("reason", regime.Reason).
		Float64("breadth", inputs.Breadth).
		Float64("median_volatility", inputs.MedianVolatility).
		Msg("Market regime classified")

	results, err := e.score(ctx, tickers, sets, regime, asOf)
	if err != nil {
		return nil, err
	}

	report := &model.RunReport{
		RunID:       uuid.NewString(),
		AsOf:        asOf,
		GeneratedAt: e.now().UTC(),
		Regime:      regime,
		Coverage:    coverage,
		Results:     results,
		Failures:    failures,
		Summary:     Summarize(results),
	}

	e.logger.Info().
		Str("run_id", report.RunID).
		Int("valid", valid).
		Int("failures", len(failures)).
		Int("options", report.Summary.Options).
		Dur("elapsed", e.now().Sub(start)).
		Msg("Run complete")

	return report, nil
}

// collect fetches bars and computes indicators per ticker; slot i belongs to tickers[i]
func (e *Engine) collect(ctx context.Context, tickers []model.Ticker, from, to time.Time) ([]*model.IndicatorSet, []model.TickerFailure, float64, error) {
	sets := make([]*model.IndicatorSet, len(tickers))
	failed := make([]*model.TickerFailure, len(tickers))
	var indexLevel float64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.cfg.Run.Workers)

	for i, t := range tickers {
		i, t := i, t
		g.Go(func() error {
			bars, err := e.provider.Bars(gctx, t.Symbol, from, to)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				failed[i] = &model.TickerFailure{Ticker: t.Symbol, Sector: t.Sector, Stage: model.StageFetch, Reason: err.Error()}
				return nil
			}

			set, err := technical.Compute(bars, e.cfg.Indicators)
			if err != nil {
				failed[i] = &model.TickerFailure{Ticker: t.Symbol, Sector: t.Sector, Stage: model.StageIndicators, Reason: err.Error()}
				return nil
			}
			sets[i] = set
			return nil
		})
	}

	if symbol := e.cfg.Run.VolatilityIndex; symbol != "" {
		g.Go(func() error {
			bars, err := e.provider.Bars(gctx, symbol, from, to)
			if err != nil || len(bars) == 0 {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				e.logger.Warn().Err(err).Str("symbol", symbol).Msg("Volatility index unavailable, classifying without it")
				return nil
			}
			indexLevel = bars[len(bars)-1].Close
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, nil, 0, fmt.Errorf("collect bars: %w", err)
	}

	var failures []model.TickerFailure
	for _, f := range failed {
		if f == nil {
			continue
		}
		e.logger.Warn().Str("ticker", f.Ticker).Str("stage", string(f.Stage)).Str("reason", f.Reason).Msg("Ticker dropped from run")
		failures = append(failures, *f)
	}
	return sets, failures, indexLevel, nil
}

// score generates signals, targets and options from the shared regime
func (e *Engine) score(ctx context.Context, tickers []model.Ticker, sets []*model.IndicatorSet, regime model.MarketRegime, asOf time.Time) ([]model.TickerResult, error) {
	results := make([]model.TickerResult, len(tickers))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.cfg.Run.Workers)

	for i, t := range tickers {
		i, t := i, t
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			set := sets[i]
			res := model.TickerResult{
				Ticker:     t,
				Signal:     e.generator.Generate(t, set, regime),
				Indicators: set,
				Targets:    signal.Targets(set, e.cfg.Signal.Targets),
			}
			if e.options != nil {
				if rec, ok := e.options.Recommend(res.Signal, set, asOf); ok {
					res.Option = rec
				}
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("score tickers: %w", err)
	}
	return results, nil
}

// Summarize groups tickers by signal label in result order
func Summarize(results []model.TickerResult) model.Summary {
	s := model.Summary{
		StrongBuy:  []string{},
		Buy:        []string{},
		Hold:       []string{},
		Sell:       []string{},
		StrongSell: []string{},
	}
	for _, r := range results {
		sym := r.Ticker.Symbol
		switch {
		case r.Signal.Direction == model.DirectionBuy && r.Signal.Strong:
			s.StrongBuy = append(s.StrongBuy, sym)
		case r.Signal.Direction == model.DirectionBuy:
			s.Buy = append(s.Buy, sym)
		case r.Signal.Direction == model.DirectionSell && r.Signal.Strong:
			s.StrongSell = append(s.StrongSell, sym)
		case r.Signal.Direction == model.DirectionSell:
			s.Sell = append(s.Sell, sym)
		default:
			s.Hold = append(s.Hold, sym)
		}
		if r.Option != nil {
			s.Options++
		}
	}
	return s
}
