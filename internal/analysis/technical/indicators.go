package technical

import (
	"errors"
	"fmt"
	"math"

	"github.com/Alias1177/StockSignals/internal/config"
	"github.com/Alias1177/StockSignals/internal/model"
)

var (
	// ErrInsufficientData means the history is shorter than MinBars
	ErrInsufficientData = errors.New("insufficient price history")
	// ErrInvalidBars means a bar has a non-positive close, a negative or non-finite price,
	// a high below its low or negative volume
	ErrInvalidBars = errors.New("invalid price bars")
)

// MinBars returns the number of bars Compute needs with the given periods
func MinBars(p config.Indicators) int {
	return max(
		p.SMAMedium,
		p.MACDSlow+p.MACDSignal,
		p.BBPeriod,
		p.RSIPeriod+1,
		p.ATRPeriod+1,
		p.StochK+p.StochD-1,
		p.MomentumPeriod+1,
		p.VolumePeriod,
		p.VolatilityPeriod+1,
		p.MinBars,
	)
}

// Compute calculates every indicator at the last bar of an ascending bar series
func Compute(bars []model.PriceBar, p config.Indicators) (*model.IndicatorSet, error) {
	need := MinBars(p)
	if len(bars) < need {
		return nil, fmt.Errorf("%w: have %d bars, need %d", ErrInsufficientData, len(bars), need)
	}
	for i, b := range bars {
		if err := checkBar(b); err != nil {
			return nil, fmt.Errorf("%w: %v at bar %d", ErrInvalidBars, err, i)
		}
	}

	last := bars[len(bars)-1]
	prev := bars[len(bars)-2]

	set := &model.IndicatorSet{
		Close:     last.Close,
		PrevClose: prev.Close,
		Bars:      len(bars),

		SMAShort:  CalculateSMA(bars, p.SMAShort),
		SMAMedium: CalculateSMA(bars, p.SMAMedium),
		EMAFast:   CalculateEMA(bars, p.EMAFast),
		EMASlow:   CalculateEMA(bars, p.EMASlow),

		RSI:         CalculateRSI(bars, p.RSIPeriod),
		ATR:         CalculateATR(bars, p.ATRPeriod),
		VolumeRatio: CalculateVolumeRatio(bars, p.VolumePeriod),
		Momentum:    CalculateROC(bars, p.MomentumPeriod),
		Volatility:  CalculateRealizedVolatility(bars, p.VolatilityPeriod),
		DailyChange: last.Close/prev.Close - 1,
	}

	// The long trend is optional; young listings still get a signal
	if len(bars) >= p.SMALong {
		set.SMALong = CalculateSMA(bars, p.SMALong)
		set.HasLongTrend = true
	}

	macd := CalculateMACD(bars, p.MACDFast, p.MACDSlow, p.MACDSignal)
	set.MACD = macd.Line
	set.MACDSignal = macd.Signal
	set.MACDHist = macd.Hist
	set.MACDHistPrev = macd.PrevHist

	set.BBUpper, set.BBMiddle, set.BBLower = CalculateBollingerBands(bars, p.BBPeriod, p.BBStdDev)
	set.BBPosition = BandPosition(last.Close, set.BBUpper, set.BBLower)

	set.StochK, set.StochD = CalculateStochastic(bars, p.StochK, p.StochD)
	set.Support, set.Resistance = IdentifySupportResistance(bars, p.SupportPeriod)

	return set, nil
}

func checkBar(b model.PriceBar) error {
	if !(b.Close > 0) || math.IsInf(b.Close, 0) {
		return fmt.Errorf("close %v", b.Close)
	}
	if !finitePrice(b.Open) {
		return fmt.Errorf("open %v", b.Open)
	}
	if !finitePrice(b.High) {
		return fmt.Errorf("high %v", b.High)
	}
	if !finitePrice(b.Low) {
		return fmt.Errorf("low %v", b.Low)
	}
	if b.High < b.Low {
		return fmt.Errorf("high %v below low %v", b.High, b.Low)
	}
	if b.Volume < 0 {
		return fmt.Errorf("volume %d", b.Volume)
	}
	return nil
}

// finitePrice is false for NaN, infinities and negative values
func finitePrice(v float64) bool {
	return v >= 0 && !math.IsInf(v, 0)
}
