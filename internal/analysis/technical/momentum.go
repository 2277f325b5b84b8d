package technical

import "github.com/Alias1177/StockSignals/internal/model"

// CalculateRSI calculates the Relative Strength Index with Wilder smoothing
func CalculateRSI(bars []model.PriceBar, period int) float64 {
	if period <= 0 || len(bars) < period+1 {
		return 50.0
	}

	var gains, losses float64
	// Seed with simple averages over the first period changes
	for i := 1; i <= period; i++ {
		change := bars[i].Close - bars[i-1].Close
		if change > 0 {
			gains += change
		} else {
			losses -= change
		}
	}

	avgGain := gains / float64(period)
	avgLoss := losses / float64(period)

	for i := period + 1; i < len(bars); i++ {
		change := bars[i].Close - bars[i-1].Close
		if change > 0 {
			avgGain = (avgGain*float64(period-1) + change) / float64(period)
			avgLoss = (avgLoss * float64(period-1)) / float64(period)
		} else {
			avgGain = (avgGain * float64(period-1)) / float64(period)
			avgLoss = (avgLoss*float64(period-1) - change) / float64(period)
		}
	}

	if avgLoss == 0 {
		if avgGain == 0 {
			return 50.0
		}
		return 100.0
	}

	rs := avgGain / avgLoss
	return 100.0 - (100.0 / (1.0 + rs))
}

// CalculateStochastic calculates the Stochastic Oscillator; %D is the mean of the last dPeriod %K values
func CalculateStochastic(bars []model.PriceBar, kPeriod, dPeriod int) (float64, float64) {
	if kPeriod <= 0 || dPeriod <= 0 || len(bars) < kPeriod+dPeriod-1 {
		return 50.0, 50.0
	}

	var k, kSum float64
	for i := 0; i < dPeriod; i++ {
		end := len(bars) - dPeriod + i + 1
		k = stochasticK(bars[end-kPeriod : end])
		kSum += k
	}

	return k, kSum / float64(dPeriod)
}

// stochasticK is %K of the last bar within window
func stochasticK(window []model.PriceBar) float64 {
	highest, lowest := window[0].High, window[0].Low
	for _, b := range window[1:] {
		if b.High > highest {
			highest = b.High
		}
		if b.Low < lowest {
			lowest = b.Low
		}
	}

	if highest-lowest <= 0 {
		return 50.0
	}
	return (window[len(window)-1].Close - lowest) / (highest - lowest) * 100
}

// CalculateROC returns the rate of change close_t / close_{t-period} - 1
func CalculateROC(bars []model.PriceBar, period int) float64 {
	if period <= 0 || len(bars) < period+1 {
		return 0
	}
	base := bars[len(bars)-1-period].Close
	if base == 0 {
		return 0
	}
	return bars[len(bars)-1].Close/base - 1
}
