package model

import "time"

// FailureStage names the step where a ticker dropped out
type FailureStage string

const (
	StageFetch      FailureStage = "fetch"
	StageIndicators FailureStage = "indicators"
)

// TickerFailure records a non-fatal per-ticker problem
type TickerFailure struct {
	Ticker string       `json:"ticker"`
	Sector Sector       `json:"sector"`
	Stage  FailureStage `json:"stage"`
	Reason string       `json:"reason"`
}

// TickerResult is everything the run produced for one ticker
type TickerResult struct {
	Ticker     Ticker                `json:"ticker"`
	Signal     Signal                `json:"signal"`
	Indicators *IndicatorSet         `json:"indicators,omitempty"`
	Targets    *PriceTargets         `json:"targets,omitempty"`
	Option     *OptionRecommendation `json:"option,omitempty"`
}

// Coverage describes how much of the universe had usable data
type Coverage struct {
	Total    int     `json:"total"`
	Valid    int     `json:"valid"`
	Ratio    float64 `json:"ratio"`
	Required float64 `json:"required"`
}

// Summary groups tickers by dashboard label
type Summary struct {
	StrongBuy  []string `json:"strong_buy"`
	Buy        []string `json:"buy"`
	Hold       []string `json:"hold"`
	Sell       []string `json:"sell"`
	StrongSell []string `json:"strong_sell"`
	Options    int      `json:"options"`
}

// RunReport is the serializable outcome of one run
type RunReport struct {
	RunID       string          `json:"run_id"`
	AsOf        time.Time       `json:"as_of"`
	GeneratedAt time.Time       `json:"generated_at"`
	Regime      MarketRegime    `json:"market_regime"`
	Coverage    Coverage        `json:"coverage"`
	Results     []TickerResult  `json:"signals"`
	Failures    []TickerFailure `json:"failures"`
	Summary     Summary         `json:"summary"`
}
