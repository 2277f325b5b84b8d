package options

import (
	"math"
	"time"

	"github.com/Alias1177/StockSignals/internal/config"
	"github.com/Alias1177/StockSignals/internal/model"
	"github.com/rs/zerolog/log"
)

// Strike policies
const (
	PolicyDelta      = "delta"
	PolicyOTMPercent = "otm_percent"
)

// Recommender suggests long-dated calls for confident buy signals
type Recommender struct {
	Config config.Options
	// TargetATR places the price target this many ATRs above the close
	TargetATR float64
}

// NewRecommender creates a recommender
func NewRecommender(cfg config.Options, targets config.Targets) *Recommender {
	return &Recommender{Config: cfg, TargetATR: targets.SellHighATR}
}

// Eligible reports whether sig qualifies for an option recommendation
func (r *Recommender) Eligible(sig model.Signal) bool {
	return sig.Direction == model.DirectionBuy && sig.Confidence >= r.Config.MinConfidence
}

// Recommend returns a call recommendation when sig is an eligible buy
func (r *Recommender) Recommend(sig model.Signal, set *model.IndicatorSet, asOf time.Time) (*model.OptionRecommendation, bool) {
	if !r.Eligible(sig) || set == nil || !(set.Close > 0) {
		return nil, false
	}

	expiry, err := NextExpiry(asOf, r.Config.HorizonDays, r.Config.ExpiryCycle)
	if err != nil {
		log.Warn().Err(err).Str("ticker", sig.Ticker).Msg("No option expiry available")
		return nil, false
	}
	days := daysBetween(asOf, expiry)
	t := float64(days) / 365

	s := set.Close
	sigma := math.Max(set.Volatility, r.Config.MinVolatility)
	rate := r.Config.RiskFreeRate

	var raw float64
	switch r.Config.StrikePolicy {
	case PolicyOTMPercent:
		raw = s * (1 + r.Config.OTMPercent)
	default:
		raw = StrikeForDelta(s, r.Config.TargetDelta, t, rate, sigma)
	}
	strike := RoundStrike(raw, s)
	premium := CallPrice(s, strike, t, rate, sigma)

	return &model.OptionRecommendation{
		Ticker:           sig.Ticker,
		Type:             "CALL",
		Strike:           strike,
		Expiry:           expiry,
		DaysToExpiry:     days,
		UnderlyingPrice:  s,
		Delta:            CallDelta(s, strike, t, rate, sigma),
		Volatility:       sigma,
		EstimatedPremium: premium,
		BreakEven:        strike + premium,
		TargetPrice:      s + r.TargetATR*set.ATR,
	}, true
}
