// Package marketdata provides daily price history for the engine
package marketdata

import (
	"context"
	"errors"
	"time"

	"github.com/Alias1177/StockSignals/internal/model"
)

// ErrUnknownSymbol is returned when a provider has no history for a symbol
var ErrUnknownSymbol = errors.New("unknown symbol")

// Provider returns ascending daily bars for symbol between from and to inclusive
type Provider interface {
	Bars(ctx context.Context, symbol string, from, to time.Time) ([]model.PriceBar, error)
}

// ProviderFunc adapts a function to Provider
type ProviderFunc func(ctx context.Context, symbol string, from, to time.Time) ([]model.PriceBar, error)

// Bars calls f
func (f ProviderFunc) Bars(ctx context.Context, symbol string, from, to time.Time) ([]model.PriceBar, error) {
	return f(ctx, symbol, from, to)
}

// Window trims bars to those dated within [from, to] by calendar day
func Window(bars []model.PriceBar, from, to time.Time) []model.PriceBar {
	lo, hi := day(from), day(to)
	out := make([]model.PriceBar, 0, len(bars))
	for _, b := range bars {
		d := day(b.Time)
		if d.Before(lo) || d.After(hi) {
			continue
		}
		out = append(out, b)
	}
	return out
}

func day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
