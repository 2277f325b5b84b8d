package market

import (
	"fmt"
	"math"

	"github.com/Alias1177/StockSignals/internal/config"
	"github.com/Alias1177/StockSignals/internal/model"
)

// Classifier maps aggregate market inputs to a regime
type Classifier struct {
	Config config.Regime
}

// NewClassifier creates a classifier with the given thresholds
func NewClassifier(cfg config.Regime) *Classifier {
	return &Classifier{Config: cfg}
}

// Classify returns the regime for in. Rules are checked in order and the first match wins:
// crash, bearish, bullish, otherwise neutral. Non-finite inputs classify as neutral.
func (c *Classifier) Classify(in model.RegimeInputs) model.MarketRegime {
	state, reason := c.classify(in)
	return model.MarketRegime{
		State:    state,
		Modifier: c.Modifier(state),
		Reason:   reason,
		Inputs:   in,
	}
}

func (c *Classifier) classify(in model.RegimeInputs) (model.RegimeState, string) {
	for _, v := range []float64{in.Breadth, in.LongBreadth, in.AvgMomentum, in.MedianVolatility, in.VolatilityDispersion, in.IndexLevel} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return model.RegimeNeutral, "non-finite market inputs"
		}
	}

	crash := c.Config.Crash
	switch {
	case in.MedianVolatility >= crash.Volatility:
		return model.RegimeCrash, fmt.Sprintf("median volatility %.2f at or above %.2f", in.MedianVolatility, crash.Volatility)
	case in.AvgMomentum <= -crash.Drawdown:
		return model.RegimeCrash, fmt.Sprintf("average momentum %.2f%% at or below -%.2f%%", in.AvgMomentum*100, crash.Drawdown*100)
	case in.IndexLevel > 0 && in.IndexLevel >= crash.IndexLevel:
		return model.RegimeCrash, fmt.Sprintf("volatility index %.1f at or above %.1f", in.IndexLevel, crash.IndexLevel)
	}

	bear := c.Config.Bearish
	switch {
	case in.Breadth <= bear.MaxBreadth:
		return model.RegimeBearish, fmt.Sprintf("breadth %.0f%% at or below %.0f%%", in.Breadth*100, bear.MaxBreadth*100)
	case in.AvgMomentum <= -bear.Drawdown:
		return model.RegimeBearish, fmt.Sprintf("average momentum %.2f%% at or below -%.2f%%", in.AvgMomentum*100, bear.Drawdown*100)
	case in.IndexLevel > 0 && in.IndexLevel >= bear.IndexLevel:
		return model.RegimeBearish, fmt.Sprintf("volatility index %.1f at or above %.1f", in.IndexLevel, bear.IndexLevel)
	}

	bull := c.Config.Bullish
	if in.Breadth >= bull.MinBreadth &&
		in.LongBreadth >= bull.MinLongBreadth &&
		in.AvgMomentum >= bull.MinMomentum &&
		in.MedianVolatility < bull.MaxVolatility &&
		in.VolatilityDispersion <= bull.MaxDispersion {
		return model.RegimeBullish, fmt.Sprintf("breadth %.0f%% with positive momentum and calm volatility", in.Breadth*100)
	}

	return model.RegimeNeutral, "mixed market conditions"
}

// Modifier returns the score multiplier for state
func (c *Classifier) Modifier(state model.RegimeState) float64 {
	m := c.Config.Modifiers
	switch state {
	case model.RegimeBullish:
		return m.Bullish
	case model.RegimeBearish:
		return m.Bearish
	case model.RegimeCrash:
		return m.Crash
	default:
		return m.Neutral
	}
}
