package technical

import "github.com/Alias1177/StockSignals/internal/model"

// CalculateAverageVolume calculates average volume over the last period bars
func CalculateAverageVolume(bars []model.PriceBar, period int) float64 {
	if len(bars) == 0 || period <= 0 {
		return 0
	}
	if len(bars) < period {
		period = len(bars)
	}

	var total int64
	for i := len(bars) - period; i < len(bars); i++ {
		total += bars[i].Volume
	}

	return float64(total) / float64(period)
}

// CalculateVolumeRatio compares the last volume with the average volume; 1 means no data
func CalculateVolumeRatio(bars []model.PriceBar, period int) float64 {
	avg := CalculateAverageVolume(bars, period)
	if avg == 0 {
		return 1
	}
	return float64(bars[len(bars)-1].Volume) / avg
}
