package model

import "time"

// OptionRecommendation is a suggested long-dated call for a Buy signal
type OptionRecommendation struct {
	Ticker           string    `json:"ticker"`
	Type             string    `json:"type"` // CALL
	Strike           float64   `json:"strike"`
	Expiry           time.Time `json:"expiry"`
	DaysToExpiry     int       `json:"days_to_expiry"`
	UnderlyingPrice  float64   `json:"underlying_price"`
	Delta            float64   `json:"delta"`
	Volatility       float64   `json:"volatility"`
	EstimatedPremium float64   `json:"estimated_premium"`
	BreakEven        float64   `json:"break_even"`
	TargetPrice      float64   `json:"target_price"`
}
