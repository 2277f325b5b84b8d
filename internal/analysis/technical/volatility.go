package technical

import (
	"math"

	"github.com/Alias1177/StockSignals/internal/model"
)

// tradingDaysPerYear annualizes daily volatility
const tradingDaysPerYear = 252

// CalculateBollingerBands calculates Bollinger Bands using the population standard deviation
func CalculateBollingerBands(bars []model.PriceBar, period int, stdDev float64) (float64, float64, float64) {
	if len(bars) == 0 {
		return 0, 0, 0
	}
	if len(bars) < period {
		last := bars[len(bars)-1].Close
		return last, last, last
	}

	middle := CalculateSMA(bars, period)

	var variance float64
	for i := len(bars) - period; i < len(bars); i++ {
		variance += math.Pow(bars[i].Close-middle, 2)
	}
	sd := math.Sqrt(variance / float64(period))

	upper := middle + (sd * stdDev)
	lower := middle - (sd * stdDev)

	return upper, middle, lower
}

// BandPosition places close within the band: 0 at the lower band, 1 at the upper band
func BandPosition(close, upper, lower float64) float64 {
	if upper-lower <= 0 {
		return 0.5
	}
	return (close - lower) / (upper - lower)
}

// CalculateATR calculates Average True Range as the simple mean of the last period true ranges
func CalculateATR(bars []model.PriceBar, period int) float64 {
	if period <= 0 || len(bars) < period+1 {
		return 0
	}

	var sum float64
	for i := len(bars) - period; i < len(bars); i++ {
		// True Range is the greatest of:
		// 1. Current High - Current Low
		// 2. Abs(Current High - Previous Close)
		// 3. Abs(Current Low - Previous Close)
		highLow := bars[i].High - bars[i].Low
		highPrevClose := math.Abs(bars[i].High - bars[i-1].Close)
		lowPrevClose := math.Abs(bars[i].Low - bars[i-1].Close)

		sum += math.Max(highLow, math.Max(highPrevClose, lowPrevClose))
	}

	return sum / float64(period)
}

// CalculateRealizedVolatility returns the annualized sample standard deviation of the last period log returns
func CalculateRealizedVolatility(bars []model.PriceBar, period int) float64 {
	if period < 2 || len(bars) < period+1 {
		return 0
	}

	returns := make([]float64, 0, period)
	for i := len(bars) - period; i < len(bars); i++ {
		returns = append(returns, math.Log(bars[i].Close/bars[i-1].Close))
	}

	var mean float64
	for _, r := range returns {
		mean += r
	}
	mean /= float64(len(returns))

	var ss float64
	for _, r := range returns {
		ss += (r - mean) * (r - mean)
	}

	return math.Sqrt(ss/float64(len(returns)-1)) * math.Sqrt(tradingDaysPerYear)
}

// IdentifySupportResistance returns the lowest low and highest high of the last period bars
func IdentifySupportResistance(bars []model.PriceBar, period int) (float64, float64) {
	if len(bars) == 0 {
		return 0, 0
	}
	if period <= 0 || period > len(bars) {
		period = len(bars)
	}

	window := bars[len(bars)-period:]
	support, resistance := window[0].Low, window[0].High
	for _, b := range window[1:] {
		if b.Low < support {
			support = b.Low
		}
		if b.High > resistance {
			resistance = b.High
		}
	}
	return support, resistance
}
