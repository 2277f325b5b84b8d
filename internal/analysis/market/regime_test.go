package market

import (
	"math"
	"testing"

	"github.com/Alias1177/StockSignals/internal/config"
	"github.com/Alias1177/StockSignals/internal/model"
	"github.com/stretchr/testify/assert"
)

func calmBull() model.RegimeInputs {
	return model.RegimeInputs{
		Tickers:              30,
		Breadth:              0.75,
		LongBreadth:          0.70,
		AvgMomentum:          0.04,
		MedianVolatility:     0.25,
		VolatilityDispersion: 0.10,
	}
}

func TestClassify(t *testing.T) {
	c := NewClassifier(config.Defaults().Regime)

	tests := []struct {
		name   string
		mutate func(in *model.RegimeInputs)
		want   model.RegimeState
	}{
		{"calm broad rally", func(in *model.RegimeInputs) {}, model.RegimeBullish},
		{"volatility at crash threshold", func(in *model.RegimeInputs) { in.MedianVolatility = 0.60 }, model.RegimeCrash},
		{"deep drawdown", func(in *model.RegimeInputs) { in.AvgMomentum = -0.15 }, model.RegimeCrash},
		{"volatility index spike", func(in *model.RegimeInputs) { in.IndexLevel = 40 }, model.RegimeCrash},
		{"narrow breadth", func(in *model.RegimeInputs) { in.Breadth = 0.35 }, model.RegimeBearish},
		{"mild drawdown", func(in *model.RegimeInputs) { in.AvgMomentum = -0.05 }, model.RegimeBearish},
		{"elevated volatility index", func(in *model.RegimeInputs) { in.IndexLevel = 25 }, model.RegimeBearish},
		{"quiet volatility index", func(in *model.RegimeInputs) { in.IndexLevel = 14 }, model.RegimeBullish},
		{"breadth between bands", func(in *model.RegimeInputs) { in.Breadth = 0.5 }, model.RegimeNeutral},
		{"weak long breadth", func(in *model.RegimeInputs) { in.LongBreadth = 0.4 }, model.RegimeNeutral},
		{"volatility at bullish cap", func(in *model.RegimeInputs) { in.MedianVolatility = 0.45 }, model.RegimeNeutral},
		{"wide dispersion", func(in *model.RegimeInputs) { in.VolatilityDispersion = 0.5 }, model.RegimeNeutral},
		{"slightly negative momentum", func(in *model.RegimeInputs) { in.AvgMomentum = -0.01 }, model.RegimeNeutral},
		{"crash beats bearish", func(in *model.RegimeInputs) {
			in.Breadth = 0.1
			in.MedianVolatility = 0.9
		}, model.RegimeCrash},
		{"NaN breadth", func(in *model.RegimeInputs) { in.Breadth = math.NaN() }, model.RegimeNeutral},
		{"infinite volatility", func(in *model.RegimeInputs) { in.MedianVolatility = math.Inf(1) }, model.RegimeNeutral},
		{"negative infinite momentum", func(in *model.RegimeInputs) { in.AvgMomentum = math.Inf(-1) }, model.RegimeNeutral},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := calmBull()
			tt.mutate(&in)

			got := c.Classify(in)
			assert.Equal(t, tt.want, got.State)
			assert.NotEmpty(t, got.Reason)
			assert.Equal(t, in.Tickers, got.Inputs.Tickers)
		})
	}
}

func TestClassifyAttachesModifier(t *testing.T) {
	c := NewClassifier(config.Defaults().Regime)

	assert.Equal(t, 1.0, c.Modifier(model.RegimeBullish))
	assert.Equal(t, 0.7, c.Modifier(model.RegimeNeutral))
	assert.Equal(t, 0.4, c.Modifier(model.RegimeBearish))
	assert.Equal(t, 0.1, c.Modifier(model.RegimeCrash))

	r := c.Classify(model.RegimeInputs{Breadth: 0.2})
	assert.Equal(t, model.RegimeBearish, r.State)
	assert.Equal(t, 0.4, r.Modifier)
}

func TestClassifyZeroInputs(t *testing.T) {
	c := NewClassifier(config.Defaults().Regime)
	// An empty universe has zero breadth and lands on the bearish side
	assert.Equal(t, model.RegimeBearish, c.Classify(model.RegimeInputs{}).State)
}

func TestAggregate(t *testing.T) {
	sets := []*model.IndicatorSet{
		{Close: 110, SMAMedium: 100, SMALong: 90, HasLongTrend: true, Momentum: 0.10, Volatility: 0.20},
		{Close: 90, SMAMedium: 100, SMALong: 95, HasLongTrend: true, Momentum: -0.02, Volatility: 0.40},
		nil,
		{Close: 50, SMAMedium: 45, Momentum: 0.04, Volatility: 0.30},
	}

	in := Aggregate(sets)
	assert.Equal(t, 3, in.Tickers)
	assert.InDelta(t, 2.0/3.0, in.Breadth, 1e-12)
	assert.InDelta(t, 0.5, in.LongBreadth, 1e-12)
	assert.InDelta(t, 0.04, in.AvgMomentum, 1e-12)
	assert.InDelta(t, 0.30, in.MedianVolatility, 1e-12)
	assert.InDelta(t, math.Sqrt(0.02/3), in.VolatilityDispersion, 1e-12)
}

func TestAggregateLongBreadthFallsBackToBreadth(t *testing.T) {
	in := Aggregate([]*model.IndicatorSet{
		{Close: 11, SMAMedium: 10, Volatility: 0.2},
		{Close: 12, SMAMedium: 10, Volatility: 0.3},
	})
	assert.Equal(t, 1.0, in.Breadth)
	assert.Equal(t, in.Breadth, in.LongBreadth)
	assert.InDelta(t, 0.25, in.MedianVolatility, 1e-12)
}

func TestAggregateEmpty(t *testing.T) {
	assert.Equal(t, model.RegimeInputs{}, Aggregate(nil))
}
