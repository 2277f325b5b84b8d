package technical

import (
	"errors"
	"math"
	"testing"

	"github.com/Alias1177/StockSignals/internal/config"
	"github.com/Alias1177/StockSignals/internal/model"
	"github.com/Alias1177/StockSignals/internal/testutil"
	"github.com/markcheno/go-talib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func wavyBars(n int) []model.PriceBar {
	return testutil.GenerateBars(n, func(i int) model.PriceBar {
		c := 100 + 10*math.Sin(float64(i)/5) + 0.3*float64(i)
		return model.PriceBar{
			Open:   c - 0.5,
			High:   c + 1 + math.Abs(math.Cos(float64(i))),
			Low:    c - 1 - math.Abs(math.Sin(float64(i))),
			Close:  c,
			Volume: int64(1000 + (i%7)*150),
		}
	})
}

func TestMinBarsWithDefaults(t *testing.T) {
	p := config.Defaults().Indicators
	assert.Equal(t, 50, MinBars(p))

	p.MinBars = 120
	assert.Equal(t, 120, MinBars(p))
}

func TestComputeRejectsShortHistory(t *testing.T) {
	p := config.Defaults().Indicators

	for _, n := range []int{0, 1, 5, 49} {
		_, err := Compute(testutil.RisingBars(n, 100, 0.003), p)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrInsufficientData), "n=%d", n)
	}
}

func TestComputeRejectsInvalidCloses(t *testing.T) {
	p := config.Defaults().Indicators

	for _, bad := range []float64{0, -3, math.NaN(), math.Inf(1)} {
		bars := testutil.RisingBars(80, 100, 0.003)
		bars[40].Close = bad
		_, err := Compute(bars, p)
		assert.ErrorIs(t, err, ErrInvalidBars)
	}
}

func TestComputeRejectsInvalidOHLC(t *testing.T) {
	p := config.Defaults().Indicators

	tests := []struct {
		name  string
		patch func(b *model.PriceBar)
	}{
		{"nan high", func(b *model.PriceBar) { b.High = math.NaN() }},
		{"inf low", func(b *model.PriceBar) { b.Low = math.Inf(-1) }},
		{"nan open", func(b *model.PriceBar) { b.Open = math.NaN() }},
		{"negative low", func(b *model.PriceBar) { b.Low = -1 }},
		{"high below low", func(b *model.PriceBar) { b.High, b.Low = b.Low, b.High }},
		{"negative volume", func(b *model.PriceBar) { b.Volume = -5 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bars := testutil.RisingBars(80, 100, 0.003)
			tt.patch(&bars[len(bars)-1])
			_, err := Compute(bars, p)
			assert.ErrorIs(t, err, ErrInvalidBars)
		})
	}
}

func TestComputeRisingSeries(t *testing.T) {
	bars := testutil.RisingBars(200, 100, 0.003)
	set, err := Compute(bars, config.Defaults().Indicators)
	require.NoError(t, err)

	last := bars[len(bars)-1].Close
	assert.Equal(t, last, set.Close)
	assert.Equal(t, 200, set.Bars)
	assert.True(t, set.HasLongTrend)
	assert.Greater(t, set.Close, set.SMAShort)
	assert.Greater(t, set.SMAShort, set.SMAMedium)
	assert.Greater(t, set.SMAMedium, set.SMALong)
	assert.Greater(t, set.EMAFast, set.EMASlow)
	assert.Equal(t, 100.0, set.RSI)
	assert.Greater(t, set.MACD, 0.0)
	assert.InDelta(t, math.Pow(1.003, 20)-1, set.Momentum, 1e-9)
	assert.InDelta(t, 0.003, set.DailyChange, 1e-9)
	assert.InDelta(t, 0.0, set.Volatility, 1e-6)
	assert.InDelta(t, 1.0, set.VolumeRatio, 1e-12)
	assert.Greater(t, set.BBPosition, 0.5)
	assert.Greater(t, set.StochK, 80.0)
	assert.Less(t, set.Support, set.Close)
	assert.InDelta(t, last*1.005, set.Resistance, 1e-9)
}

func TestComputeWithoutLongTrend(t *testing.T) {
	set, err := Compute(testutil.RisingBars(120, 50, 0.001), config.Defaults().Indicators)
	require.NoError(t, err)
	assert.False(t, set.HasLongTrend)
	assert.Zero(t, set.SMALong)
}

func TestComputeIsDeterministic(t *testing.T) {
	bars := wavyBars(150)
	p := config.Defaults().Indicators

	a, err := Compute(bars, p)
	require.NoError(t, err)
	b, err := Compute(bars, p)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestEMAMatchesTALib(t *testing.T) {
	bars := wavyBars(120)
	c := closes(bars)

	for _, period := range []int{9, 21, 50} {
		want := talib.Ema(c, period)
		got := EMASeries(c, period)
		require.Len(t, got, len(c)-period+1)
		for i, v := range got {
			assert.InDelta(t, want[i+period-1], v, 1e-9, "period %d index %d", period, i)
		}
	}
}

func TestSMAMatchesTALib(t *testing.T) {
	bars := wavyBars(120)
	want := talib.Sma(closes(bars), 20)
	assert.InDelta(t, want[len(want)-1], CalculateSMA(bars, 20), 1e-9)
}

func TestRSIMatchesTALib(t *testing.T) {
	bars := wavyBars(120)
	want := talib.Rsi(closes(bars), 14)
	assert.InDelta(t, want[len(want)-1], CalculateRSI(bars, 14), 1e-6)
}

func TestBollingerMatchesTALib(t *testing.T) {
	bars := wavyBars(120)
	upper, middle, lower := talib.BBands(closes(bars), 20, 2, 2, talib.SMA)

	gotUpper, gotMiddle, gotLower := CalculateBollingerBands(bars, 20, 2)
	n := len(bars) - 1
	assert.InDelta(t, upper[n], gotUpper, 1e-6)
	assert.InDelta(t, middle[n], gotMiddle, 1e-6)
	assert.InDelta(t, lower[n], gotLower, 1e-6)
}

func TestRSIEdgeCases(t *testing.T) {
	flat := testutil.GenerateBars(30, func(i int) model.PriceBar {
		return model.PriceBar{Open: 10, High: 10, Low: 10, Close: 10}
	})

	tests := []struct {
		name     string
		bars     []model.PriceBar
		expected float64
	}{
		{"flat", flat, 50},
		{"only gains", testutil.RisingBars(30, 10, 0.01), 100},
		{"only losses", testutil.FallingBars(30, 10, 0.01), 0},
		{"short history", flat[:5], 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CalculateRSI(tt.bars, 14); got != tt.expected {
				t.Errorf("CalculateRSI() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestMACDHistogram(t *testing.T) {
	up := CalculateMACD(testutil.RisingBars(60, 100, 0.01), 12, 26, 9)
	assert.Greater(t, up.Line, 0.0)
	assert.InDelta(t, up.Line-up.Signal, up.Hist, 1e-12)

	down := CalculateMACD(testutil.FallingBars(60, 100, 0.01), 12, 26, 9)
	assert.Less(t, down.Line, 0.0)

	assert.Equal(t, MACD{}, CalculateMACD(testutil.RisingBars(34, 100, 0.01), 12, 26, 9))
}

func TestStochasticFlatRange(t *testing.T) {
	flat := testutil.GenerateBars(20, func(i int) model.PriceBar {
		return model.PriceBar{Open: 5, High: 5, Low: 5, Close: 5}
	})
	k, d := CalculateStochastic(flat, 14, 3)
	assert.Equal(t, 50.0, k)
	assert.Equal(t, 50.0, d)
}

func TestStochasticDIsMeanOfK(t *testing.T) {
	bars := wavyBars(40)
	k, d := CalculateStochastic(bars, 14, 3)

	k1, _ := CalculateStochastic(bars[:len(bars)-1], 14, 1)
	k2, _ := CalculateStochastic(bars[:len(bars)-2], 14, 1)
	assert.InDelta(t, (k+k1+k2)/3, d, 1e-9)
}

func TestATRAndVolumeRatio(t *testing.T) {
	bars := testutil.GenerateBars(20, func(i int) model.PriceBar {
		return model.PriceBar{Open: 100, High: 102, Low: 98, Close: 100, Volume: 1000}
	})
	assert.InDelta(t, 4.0, CalculateATR(bars, 14), 1e-12)

	bars[len(bars)-1].Volume = 3000
	assert.InDelta(t, 3000.0/1100.0, CalculateVolumeRatio(bars, 20), 1e-12)

	for i := range bars {
		bars[i].Volume = 0
	}
	assert.Equal(t, 1.0, CalculateVolumeRatio(bars, 20))
}

func TestBandPosition(t *testing.T) {
	tests := []struct {
		name                string
		close, upper, lower float64
		expected            float64
	}{
		{"flat band", 10, 10, 10, 0.5},
		{"at lower band", 90, 110, 90, 0},
		{"at upper band", 110, 110, 90, 1},
		{"middle", 100, 110, 90, 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := BandPosition(tt.close, tt.upper, tt.lower); got != tt.expected {
				t.Errorf("BandPosition(%v, %v, %v) = %v, want %v", tt.close, tt.upper, tt.lower, got, tt.expected)
			}
		})
	}
}
