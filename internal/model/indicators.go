package model

// IndicatorSet holds the technical indicators of one ticker at its last bar
type IndicatorSet struct {
	Close     float64 `json:"close"`
	PrevClose float64 `json:"prev_close"`
	Bars      int     `json:"bars"`

	SMAShort     float64 `json:"sma_short"`
	SMAMedium    float64 `json:"sma_medium"`
	SMALong      float64 `json:"sma_long,omitempty"`
	HasLongTrend bool    `json:"has_long_trend"`
	EMAFast      float64 `json:"ema_fast"`
	EMASlow      float64 `json:"ema_slow"`

	RSI          float64 `json:"rsi"`
	MACD         float64 `json:"macd"`
	MACDSignal   float64 `json:"macd_signal"`
	MACDHist     float64 `json:"macd_hist"`
	MACDHistPrev float64 `json:"macd_hist_prev"`

	BBUpper    float64 `json:"bb_upper"`
	BBMiddle   float64 `json:"bb_middle"`
	BBLower    float64 `json:"bb_lower"`
	BBPosition float64 `json:"bb_position"` // 0 at lower band, 1 at upper band

	ATR         float64 `json:"atr"`
	StochK      float64 `json:"stoch_k"`
	StochD      float64 `json:"stoch_d"`
	VolumeRatio float64 `json:"volume_ratio"`
	Momentum    float64 `json:"momentum"`   // rate of change over the momentum period
	Volatility  float64 `json:"volatility"` // annualized realized volatility
	DailyChange float64 `json:"daily_change"`

	Support    float64 `json:"support"`
	Resistance float64 `json:"resistance"`
}
