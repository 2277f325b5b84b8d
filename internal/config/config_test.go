package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Alias1177/StockSignals/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const baseYAML = `
data:
  source: csv
  csv_dir: testdata
watchlist:
  - sector: NASDAQ Tech
    tickers: [aapl, MSFT]
  - sector: Nuclear
    tickers: [CCJ]
`

func TestParseAppliesDefaults(t *testing.T) {
	cfg, err := Parse([]byte(baseYAML))
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 50, cfg.Indicators.SMAMedium)
	assert.Equal(t, 0.8, cfg.Run.MinCoverage)
	assert.Equal(t, 30*time.Second, cfg.Data.RequestTimeout)
	assert.Equal(t, []string{"09:35", "12:30", "15:00"}, cfg.Schedule.Checks)
	assert.Equal(t, "january", cfg.Options.ExpiryCycle)
	assert.True(t, cfg.Options.Enabled)
	assert.InDelta(t, 1.0, cfg.Signal.Weights.Sum(), 1e-9)
}

func TestTickersKeepWatchlistOrder(t *testing.T) {
	cfg, err := Parse([]byte(baseYAML))
	require.NoError(t, err)

	assert.Equal(t, []model.Ticker{
		{Symbol: "AAPL", Sector: model.SectorNasdaqTech},
		{Symbol: "MSFT", Sector: model.SectorNasdaqTech},
		{Symbol: "CCJ", Sector: model.SectorNuclear},
	}, cfg.Tickers())
}

func TestParseRejectsBadConfig(t *testing.T) {
	tests := []struct {
		name    string
		extra   string
		wantErr string
	}{
		{
			name:    "threshold above one",
			extra:   "signal:\n  thresholds:\n    buy: 1.5\n",
			wantErr: "Buy must be less than or equal to 1",
		},
		{
			name:    "negative lookback",
			extra:   "indicators:\n  rsi_period: -3\n",
			wantErr: "RSIPeriod must be greater than 0",
		},
		{
			name:    "coverage out of range",
			extra:   "run:\n  min_coverage: 1.2\n",
			wantErr: "MinCoverage",
		},
		{
			name:    "weights do not sum to one",
			extra:   "signal:\n  weights:\n    trend: 0.9\n",
			wantErr: "must sum to 1",
		},
		{
			name:    "strong threshold below normal",
			extra:   "signal:\n  thresholds:\n    buy: 0.4\n    strong_buy: 0.3\n",
			wantErr: "StrongBuy",
		},
		{
			name:    "fast macd not below slow",
			extra:   "indicators:\n  macd_fast: 30\n",
			wantErr: "MACDFast",
		},
		{
			name:    "overlapping regime breadth",
			extra:   "regime:\n  bearish:\n    max_breadth: 0.7\n",
			wantErr: "max_breadth",
		},
		{
			name:    "bad schedule clock",
			extra:   "schedule:\n  checks: [\"9am\"]\n",
			wantErr: "clock time",
		},
		{
			name:    "horizon shorter than a year",
			extra:   "options:\n  horizon_days: 90\n",
			wantErr: "HorizonDays",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(baseYAML + tt.extra))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestParseRejectsWatchlistProblems(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name:    "empty watchlist",
			yaml:    "data:\n  source: csv\n",
			wantErr: "Watchlist is required",
		},
		{
			name: "unknown sector",
			yaml: `
data: {source: csv}
watchlist:
  - sector: Crypto
    tickers: [BTC]
`,
			wantErr: "unknown sector",
		},
		{
			name: "duplicate ticker",
			yaml: `
data: {source: csv}
watchlist:
  - sector: Space
    tickers: [RKLB]
  - sector: S&P 500
    tickers: [rklb]
`,
			wantErr: "listed in both",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestParseRequiresAPIKeyForTwelveData(t *testing.T) {
	t.Setenv("TWELVE_API_KEY", "")
	yml := "watchlist:\n  - sector: Biotech\n    tickers: [MRNA]\n"

	_, err := Parse([]byte(yml))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TWELVE_API_KEY")

	t.Setenv("TWELVE_API_KEY", "demo")
	cfg, err := Parse([]byte(yml))
	require.NoError(t, err)
	assert.Equal(t, "demo", cfg.Env.TwelveAPIKey)
}

func TestEnvironmentOverridesLogLevel(t *testing.T) {
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("TELEGRAM_CHAT_ID", "42")

	cfg, err := Parse([]byte(baseYAML))
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, int64(42), cfg.Env.TelegramChatID)
}

func TestLoadShippedConfig(t *testing.T) {
	t.Setenv("TWELVE_API_KEY", "demo")
	path := filepath.Join("..", "..", "config.yaml")
	if _, err := os.Stat(path); err != nil {
		t.Skip("config.yaml not present")
	}

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(cfg.Tickers()), 30)
	assert.Len(t, cfg.Watchlist, len(model.Sectors))
}
