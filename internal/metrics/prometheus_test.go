package metrics

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Alias1177/StockSignals/internal/model"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleReport() *model.RunReport {
	return &model.RunReport{
		GeneratedAt: time.Date(2025, time.March, 10, 14, 0, 0, 0, time.UTC),
		Regime:      model.MarketRegime{State: model.RegimeNeutral},
		Coverage:    model.Coverage{Total: 10, Valid: 9, Ratio: 0.9},
		Failures: []model.TickerFailure{
			{Ticker: "SPCE", Stage: model.StageFetch},
		},
		Summary: model.Summary{
			StrongBuy: []string{"NVDA"},
			Buy:       []string{"AAPL", "MSFT"},
			Hold:      []string{"JPM", "V", "PG", "CCJ"},
			Sell:      []string{"PLUG"},
			Options:   2,
		},
	}
}

func TestRecordReport(t *testing.T) {
	r := New()
	r.RecordReport(sampleReport(), 3*time.Second)

	assert.Equal(t, 1.0, testutil.ToFloat64(r.runs.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.failures.WithLabelValues("fetch")))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.signals.WithLabelValues("BUY")))
	assert.Equal(t, 4.0, testutil.ToFloat64(r.signals.WithLabelValues("HOLD")))
	assert.Equal(t, 0.0, testutil.ToFloat64(r.signals.WithLabelValues("STRONG SELL")))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.options))
	assert.Equal(t, 0.9, testutil.ToFloat64(r.coverage))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.regime.WithLabelValues("NEUTRAL")))
	assert.Equal(t, 0.0, testutil.ToFloat64(r.regime.WithLabelValues("BULLISH")))
	assert.Equal(t, 1, testutil.CollectAndCount(r.duration))
}

func TestRecordRunError(t *testing.T) {
	r := New()
	r.RecordRunError(time.Second)
	r.RecordRunError(time.Second)

	expected := `
# HELP stocksignals_runs_total Total number of runs by outcome
# TYPE stocksignals_runs_total counter
stocksignals_runs_total{status="error"} 2
`
	assert.NoError(t, testutil.CollectAndCompare(r.runs, strings.NewReader(expected)))
}

func TestPush(t *testing.T) {
	var path, body string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		path = req.URL.Path
		b, _ := io.ReadAll(req.Body)
		body = string(b)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	r := New()
	r.RecordReport(sampleReport(), time.Second)
	require.NoError(t, r.Push(context.Background(), srv.URL))

	assert.Equal(t, "/metrics/job/stocksignals", path)
	assert.NotEmpty(t, body)
}

func TestPushFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	err := New().Push(context.Background(), srv.URL)
	assert.ErrorContains(t, err, "push metrics")
}
