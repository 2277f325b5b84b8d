// Package testutil builds deterministic price series for tests
package testutil

import (
	"time"

	"github.com/Alias1177/StockSignals/internal/model"
)

// Start is the date of the first generated bar
var Start = time.Date(2024, time.January, 2, 0, 0, 0, 0, time.UTC)

// GenerateBars builds n daily bars from gen; Time is filled in when gen leaves it zero
func GenerateBars(n int, gen func(i int) model.PriceBar) []model.PriceBar {
	bars := make([]model.PriceBar, n)
	for i := 0; i < n; i++ {
		b := gen(i)
		if b.Time.IsZero() {
			b.Time = Start.AddDate(0, 0, i)
		}
		bars[i] = b
	}
	return bars
}

// RisingBars is a steady uptrend: each close is rate above the previous one,
// high and low sit half a percent either side and volume is constant
func RisingBars(n int, start, rate float64) []model.PriceBar {
	price := start
	return GenerateBars(n, func(i int) model.PriceBar {
		if i > 0 {
			price *= 1 + rate
		}
		return model.PriceBar{
			Open:   price,
			High:   price * 1.005,
			Low:    price * 0.995,
			Close:  price,
			Volume: 1_000_000,
		}
	})
}

// FallingBars mirrors RisingBars with a steady decline
func FallingBars(n int, start, rate float64) []model.PriceBar {
	return RisingBars(n, start, -rate)
}
