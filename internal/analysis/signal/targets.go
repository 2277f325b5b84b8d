package signal

import (
	"github.com/Alias1177/StockSignals/internal/config"
	"github.com/Alias1177/StockSignals/internal/model"
)

// Targets derives entry and exit ranges from the ATR around the last close
func Targets(set *model.IndicatorSet, cfg config.Targets) *model.PriceTargets {
	if set == nil {
		return nil
	}

	return &model.PriceTargets{
		BuyLow:     set.Close - set.ATR*cfg.BuyLowATR,
		BuyHigh:    set.Close - set.ATR*cfg.BuyHighATR,
		SellLow:    set.Close + set.ATR*cfg.SellLowATR,
		SellHigh:   set.Close + set.ATR*cfg.SellHighATR,
		Support:    set.Support,
		Resistance: set.Resistance,
	}
}
