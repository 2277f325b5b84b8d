package technical

import "github.com/Alias1177/StockSignals/internal/model"

// CalculateSMA returns the mean of the last period closes
func CalculateSMA(bars []model.PriceBar, period int) float64 {
	if period <= 0 || len(bars) < period {
		return 0
	}
	var sum float64
	for i := len(bars) - period; i < len(bars); i++ {
		sum += bars[i].Close
	}
	return sum / float64(period)
}

// EMASeries returns the exponential moving average of values.
// The result is aligned with values[period-1:]; the first element is the SMA seed.
func EMASeries(values []float64, period int) []float64 {
	if period <= 0 || len(values) < period {
		return nil
	}

	var seed float64
	for _, v := range values[:period] {
		seed += v
	}

	out := make([]float64, 0, len(values)-period+1)
	out = append(out, seed/float64(period))

	alpha := 2.0 / float64(period+1)
	for _, v := range values[period:] {
		prev := out[len(out)-1]
		out = append(out, alpha*v+(1-alpha)*prev)
	}
	return out
}

// CalculateEMA returns the EMA of closes at the last bar
func CalculateEMA(bars []model.PriceBar, period int) float64 {
	series := EMASeries(closes(bars), period)
	if len(series) == 0 {
		return 0
	}
	return series[len(series)-1]
}

// MACD is the last two points of the MACD histogram and its lines
type MACD struct {
	Line     float64
	Signal   float64
	Hist     float64
	PrevHist float64
}

// CalculateMACD computes MACD(fast, slow, signal); it needs slow+signal bars for two histogram points
func CalculateMACD(bars []model.PriceBar, fastPeriod, slowPeriod, signalPeriod int) MACD {
	if fastPeriod >= slowPeriod || len(bars) < slowPeriod+signalPeriod {
		return MACD{}
	}

	c := closes(bars)
	fast := EMASeries(c, fastPeriod)
	slow := EMASeries(c, slowPeriod)

	// fast starts at index fast-1, slow at slow-1
	offset := slowPeriod - fastPeriod
	line := make([]float64, len(slow))
	for i := range slow {
		line[i] = fast[i+offset] - slow[i]
	}

	signal := EMASeries(line, signalPeriod)
	if len(signal) < 2 {
		return MACD{}
	}

	hist := func(back int) float64 {
		return line[len(line)-1-back] - signal[len(signal)-1-back]
	}

	return MACD{
		Line:     line[len(line)-1],
		Signal:   signal[len(signal)-1],
		Hist:     hist(0),
		PrevHist: hist(1),
	}
}

func closes(bars []model.PriceBar) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = b.Close
	}
	return out
}
