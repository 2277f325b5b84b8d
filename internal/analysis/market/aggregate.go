package market

import (
	"math"
	"sort"

	"github.com/Alias1177/StockSignals/internal/model"
)

// Aggregate summarizes indicator sets across the universe; nil sets are skipped
func Aggregate(sets []*model.IndicatorSet) model.RegimeInputs {
	var (
		in          model.RegimeInputs
		above       int
		longCount   int
		aboveLong   int
		momentumSum float64
		vols        []float64
	)

	for _, s := range sets {
		if s == nil {
			continue
		}
		in.Tickers++
		if s.Close > s.SMAMedium {
			above++
		}
		if s.HasLongTrend {
			longCount++
			if s.Close > s.SMALong {
				aboveLong++
			}
		}
		momentumSum += s.Momentum
		vols = append(vols, s.Volatility)
	}

	if in.Tickers == 0 {
		return in
	}

	n := float64(in.Tickers)
	in.Breadth = float64(above) / n
	in.LongBreadth = in.Breadth
	if longCount > 0 {
		in.LongBreadth = float64(aboveLong) / float64(longCount)
	}
	in.AvgMomentum = momentumSum / n
	in.MedianVolatility = median(vols)
	in.VolatilityDispersion = stdDev(vols)

	return in
}

func median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}

// stdDev is the population standard deviation
func stdDev(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var mean float64
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))

	var variance float64
	for _, v := range values {
		variance += math.Pow(v-mean, 2)
	}
	return math.Sqrt(variance / float64(len(values)))
}
