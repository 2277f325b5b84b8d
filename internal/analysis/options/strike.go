package options

import "github.com/shopspring/decimal"

// StrikeIncrement returns the listed strike spacing for an underlying price
func StrikeIncrement(price float64) decimal.Decimal {
	switch {
	case price < 25:
		return decimal.NewFromInt(1)
	case price < 100:
		return decimal.NewFromFloat(2.5)
	case price < 200:
		return decimal.NewFromInt(5)
	default:
		return decimal.NewFromInt(10)
	}
}

// RoundStrike rounds strike half up to the grid for price, never below one increment
func RoundStrike(strike, price float64) float64 {
	inc := StrikeIncrement(price)
	rounded := decimal.NewFromFloat(strike).Div(inc).Round(0).Mul(inc)
	if rounded.LessThan(inc) {
		rounded = inc
	}
	return rounded.InexactFloat64()
}
