package model

// RegimeState is the coarse classification of market conditions
type RegimeState string

const (
	RegimeBullish RegimeState = "BULLISH"
	RegimeNeutral RegimeState = "NEUTRAL"
	RegimeBearish RegimeState = "BEARISH"
	RegimeCrash   RegimeState = "CRASH"
)

// RegimeInputs aggregates indicators across the tracked universe
type RegimeInputs struct {
	Tickers              int     `json:"tickers"`
	Breadth              float64 `json:"breadth"`      // share of tickers above the medium SMA
	LongBreadth          float64 `json:"long_breadth"` // share above the long SMA
	AvgMomentum          float64 `json:"avg_momentum"`
	MedianVolatility     float64 `json:"median_volatility"`
	VolatilityDispersion float64 `json:"volatility_dispersion"`
	IndexLevel           float64 `json:"index_level,omitempty"` // volatility index close, 0 if absent
}

// MarketRegime represents the market conditions of one run
type MarketRegime struct {
	State    RegimeState  `json:"state"`
	Modifier float64      `json:"modifier"`
	Reason   string       `json:"reason"`
	Inputs   RegimeInputs `json:"inputs"`
}
