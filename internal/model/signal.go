package model

// Direction of a trading signal
type Direction string

const (
	DirectionBuy  Direction = "BUY"
	DirectionSell Direction = "SELL"
	DirectionHold Direction = "HOLD"
)

// Vote is one indicator's contribution to the composite score
type Vote struct {
	Name     string  `json:"name"`
	Value    float64 `json:"value"`
	Weight   float64 `json:"weight"`
	Weighted float64 `json:"weighted"`
}

// Signal is the recommendation for one ticker in one run
type Signal struct {
	Ticker     string    `json:"ticker"`
	Sector     Sector    `json:"sector"`
	Direction  Direction `json:"direction"`
	Strong     bool      `json:"strong"`
	Confidence float64   `json:"confidence"` // 0-1
	Score      float64   `json:"score"`      // regime-adjusted composite
	RawScore   float64   `json:"raw_score"`
	Votes      []Vote    `json:"votes,omitempty"`
	Reason     string    `json:"reason,omitempty"`
}

// Label renders the dashboard label, e.g. STRONG BUY
func (s Signal) Label() string {
	if s.Strong && s.Direction != DirectionHold {
		return "STRONG " + string(s.Direction)
	}
	return string(s.Direction)
}

// PriceTargets are ATR-derived entry and exit ranges
type PriceTargets struct {
	BuyLow     float64 `json:"buy_low"`
	BuyHigh    float64 `json:"buy_high"`
	SellLow    float64 `json:"sell_low"`
	SellHigh   float64 `json:"sell_high"`
	Support    float64 `json:"support"`
	Resistance float64 `json:"resistance"`
}
