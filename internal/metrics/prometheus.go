package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/Alias1177/StockSignals/internal/model"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/push"
)

const jobName = "stocksignals"

// Recorder collects run metrics on its own registry so a batch run can push them
type Recorder struct {
	registry *prometheus.Registry

	runs        *prometheus.CounterVec
	duration    prometheus.Histogram
	failures    *prometheus.CounterVec
	signals     *prometheus.GaugeVec
	options     prometheus.Gauge
	coverage    prometheus.Gauge
	regime      *prometheus.GaugeVec
	lastSuccess prometheus.Gauge
}

// New creates a new Prometheus metrics recorder
func New() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,
		runs: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stocksignals_runs_total",
				Help: "Total number of runs by outcome",
			},
			[]string{"status"},
		),
		duration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "stocksignals_run_duration_seconds",
				Help:    "Duration of a full run in seconds",
				Buckets: []float64{1, 5, 15, 30, 60, 120, 300},
			},
		),
		failures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stocksignals_ticker_failures_total",
				Help: "Tickers dropped from a run by stage",
			},
			[]string{"stage"},
		),
		signals: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "stocksignals_signals",
				Help: "Signals produced by the last run by label",
			},
			[]string{"label"},
		),
		options: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "stocksignals_option_recommendations",
				Help: "Option recommendations produced by the last run",
			},
		),
		coverage: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "stocksignals_coverage_ratio",
				Help: "Share of tickers with usable data in the last run",
			},
		),
		regime: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "stocksignals_market_regime",
				Help: "1 for the regime of the last run, 0 otherwise",
			},
			[]string{"state"},
		),
		lastSuccess: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "stocksignals_last_success_timestamp_seconds",
				Help: "Unix time of the last successful run",
			},
		),
	}
}

// RecordReport records the outcome of a successful run
func (r *Recorder) RecordReport(report *model.RunReport, elapsed time.Duration) {
	r.runs.WithLabelValues("success").Inc()
	r.duration.Observe(elapsed.Seconds())
	r.coverage.Set(report.Coverage.Ratio)
	r.options.Set(float64(report.Summary.Options))
	r.lastSuccess.Set(float64(report.GeneratedAt.Unix()))

	for _, f := range report.Failures {
		r.failures.WithLabelValues(string(f.Stage)).Inc()
	}

	s := report.Summary
	r.signals.WithLabelValues("STRONG BUY").Set(float64(len(s.StrongBuy)))
	r.signals.WithLabelValues("BUY").Set(float64(len(s.Buy)))
	r.signals.WithLabelValues("HOLD").Set(float64(len(s.Hold)))
	r.signals.WithLabelValues("SELL").Set(float64(len(s.Sell)))
	r.signals.WithLabelValues("STRONG SELL").Set(float64(len(s.StrongSell)))

	for _, state := range []model.RegimeState{model.RegimeBullish, model.RegimeNeutral, model.RegimeBearish, model.RegimeCrash} {
		v := 0.0
		if state == report.Regime.State {
			v = 1
		}
		r.regime.WithLabelValues(string(state)).Set(v)
	}
}

// RecordRunError records a run that produced no report
func (r *Recorder) RecordRunError(elapsed time.Duration) {
	r.runs.WithLabelValues("error").Inc()
	r.duration.Observe(elapsed.Seconds())
}

// Push sends the collected metrics to a Prometheus Pushgateway
func (r *Recorder) Push(ctx context.Context, url string) error {
	if err := push.New(url, jobName).Gatherer(r.registry).PushContext(ctx); err != nil {
		return fmt.Errorf("push metrics: %w", err)
	}
	return nil
}
