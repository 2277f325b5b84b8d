package signal

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/Alias1177/StockSignals/internal/config"
	"github.com/Alias1177/StockSignals/internal/model"
)

// ReasonInsufficientData marks a Hold produced without indicators
const ReasonInsufficientData = "insufficient data"

// Generator turns indicator sets into trading signals
type Generator struct {
	Config config.Signal
}

// NewGenerator creates a generator with the given weights and thresholds
func NewGenerator(cfg config.Signal) *Generator {
	return &Generator{Config: cfg}
}

// Generate scores set under regime. A nil set yields Hold with zero confidence.
// The result depends only on its arguments and the generator config.
func (g *Generator) Generate(ticker model.Ticker, set *model.IndicatorSet, regime model.MarketRegime) model.Signal {
	sig := model.Signal{
		Ticker:    ticker.Symbol,
		Sector:    ticker.Sector,
		Direction: model.DirectionHold,
	}
	if set == nil {
		sig.Reason = ReasonInsufficientData
		return sig
	}

	sig.Votes = g.Votes(set)
	for _, v := range sig.Votes {
		sig.RawScore += v.Weighted
	}
	sig.Score = sig.RawScore * regime.Modifier
	if math.IsNaN(sig.Score) {
		sig.Score = 0
	}

	th := g.Config.Thresholds
	switch {
	case sig.Score >= th.StrongBuy:
		sig.Direction, sig.Strong = model.DirectionBuy, true
	case sig.Score >= th.Buy:
		sig.Direction = model.DirectionBuy
	case sig.Score <= -th.StrongSell:
		sig.Direction, sig.Strong = model.DirectionSell, true
	case sig.Score <= -th.Sell:
		sig.Direction = model.DirectionSell
	}

	override := ""
	if sig.Direction == model.DirectionBuy {
		switch regime.State {
		case model.RegimeCrash:
			sig.Direction, sig.Strong = model.DirectionHold, false
			override = "buy suppressed in crash regime"
		case model.RegimeBearish:
			if sig.Strong {
				sig.Strong = false
				override = "strength capped in bearish regime"
			}
		}
	}

	sig.Confidence = math.Min(1, math.Abs(sig.Score))
	sig.Reason = reason(sig.Votes, override)
	return sig
}

// Votes evaluates every indicator vote, each clamped to [-1, 1]
func (g *Generator) Votes(set *model.IndicatorSet) []model.Vote {
	w := g.Config.Weights
	votes := []model.Vote{
		{Name: "trend", Value: trendVote(set), Weight: w.Trend},
		{Name: "momentum", Value: set.Momentum / g.Config.MomentumScale, Weight: w.Momentum},
		{Name: "macd", Value: macdVote(set), Weight: w.MACD},
		{Name: "rsi", Value: g.rsiVote(set.RSI), Weight: w.RSI},
		{Name: "bollinger", Value: bollingerVote(set.BBPosition), Weight: w.Bollinger},
		{Name: "volume", Value: g.volumeVote(set), Weight: w.Volume},
		{Name: "stochastic", Value: stochasticVote(set.StochK, set.StochD), Weight: w.Stochastic},
	}
	for i := range votes {
		votes[i].Value = clamp(votes[i].Value)
		votes[i].Weighted = votes[i].Value * votes[i].Weight
	}
	return votes
}

func trendVote(set *model.IndicatorSet) float64 {
	v := 0.2*sign(set.Close-set.SMAShort) + 0.3*sign(set.Close-set.SMAMedium)
	if set.HasLongTrend {
		v += 0.3 * sign(set.Close-set.SMALong)
	}
	return v + 0.2*sign(set.EMAFast-set.EMASlow)
}

func macdVote(set *model.IndicatorSet) float64 {
	hist, prev := set.MACDHist, set.MACDHistPrev

	var v float64
	// Expanding histogram
	if hist > 0 && hist > prev {
		v += 0.5
	} else if hist < 0 && hist < prev {
		v -= 0.5
	}
	return v + 0.5*sign(hist)
}

func (g *Generator) rsiVote(rsi float64) float64 {
	switch {
	case rsi < g.Config.RSIOversold:
		return (g.Config.RSIOversold - rsi) / g.Config.RSIBand
	case rsi > g.Config.RSIOverbought:
		return (g.Config.RSIOverbought - rsi) / g.Config.RSIBand
	default:
		return 0
	}
}

func bollingerVote(pos float64) float64 {
	switch {
	case pos < 0.1:
		return 0.8
	case pos > 0.9:
		return -0.8
	case pos < 0.3:
		return 0.3
	case pos > 0.7:
		return -0.3
	default:
		return 0
	}
}

// volumeVote confirms the direction of momentum when volume is elevated
func (g *Generator) volumeVote(set *model.IndicatorSet) float64 {
	switch {
	case set.VolumeRatio >= g.Config.VolumeSurge:
		return 0.5 * sign(set.Momentum)
	case set.VolumeRatio > 1:
		return 0.2 * sign(set.Momentum)
	default:
		return 0
	}
}

func stochasticVote(k, d float64) float64 {
	switch {
	case k < 20 && d < 20:
		return 0.5
	case k > 80 && d > 80:
		return -0.5
	case k > d && k < 50:
		return 0.2
	case k < d && k > 50:
		return -0.2
	default:
		return 0
	}
}

// reason lists the three strongest contributions
func reason(votes []model.Vote, override string) string {
	sorted := append([]model.Vote(nil), votes...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return math.Abs(sorted[i].Weighted) > math.Abs(sorted[j].Weighted)
	})

	var parts []string
	for _, v := range sorted {
		if len(parts) == 3 || v.Weighted == 0 {
			break
		}
		parts = append(parts, fmt.Sprintf("%s %+.2f", v.Name, v.Value))
	}

	r := strings.Join(parts, ", ")
	if r == "" {
		r = "no indicator conviction"
	}
	if override != "" {
		r += "; " + override
	}
	return r
}

func sign(x float64) float64 {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	default:
		return 0
	}
}

func clamp(x float64) float64 {
	if math.IsNaN(x) {
		return 0
	}
	return math.Max(-1, math.Min(1, x))
}
