package calculator

import (
	"fmt"

	"MarketAnalytics/internal/model"
)

// RSI computes the relative strength index from raw price deltas averaged with a
// simple rolling mean over period deltas. The first defined slot is index period.
//
// A window with losses but no gains is 0, gains but no losses saturates at 100,
// and a window with neither (flat prices) is missing.
func RSI(series model.PriceSeries, period int) (model.Series, error) {
	if period <= 0 {
		return nil, fmt.Errorf("rsi period %d must be positive: %w", period, model.ErrInvalidParameter)
	}
	deltas := make(model.Series, series.Len())
	for i, p := range series.Points {
		deltas[i] = model.Point{Time: p.Time}
		if i == 0 || p.Value == nil || series.Points[i-1].Value == nil {
			continue
		}
		deltas[i].Value = model.Float(*p.Value - *series.Points[i-1].Value)
	}

	return rolling(deltas, period, func(w []float64) (float64, bool) {
		var avgGain, avgLoss float64
		for _, d := range w {
			if d > 0 {
				avgGain += d
			} else {
				avgLoss -= d
			}
		}
		avgGain /= float64(period)
		avgLoss /= float64(period)

		if avgLoss == 0 {
			if avgGain == 0 {
				return 0, false
			}
			return 100.0, true
		}
		rs := avgGain / avgLoss
		return 100.0 - 100.0/(1.0+rs), true
	}), nil
}
