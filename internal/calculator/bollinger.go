package calculator

import (
	"fmt"
	"math"

	"MarketAnalytics/internal/model"

	"gonum.org/v1/gonum/stat"
)

// BollingerBands returns the upper, middle and lower bands. The middle band is
// SMA(window); the bands sit numStd sample standard deviations (ddof=1) away.
func BollingerBands(series model.PriceSeries, window int, numStd float64) (upper, middle, lower model.Series, err error) {
	if window < 2 {
		return nil, nil, nil, fmt.Errorf("bollinger window %d must be >= 2: %w", window, model.ErrInvalidParameter)
	}
	if numStd < 0 || math.IsNaN(numStd) || math.IsInf(numStd, 0) {
		return nil, nil, nil, fmt.Errorf("bollinger num_std %v must be finite and >= 0: %w", numStd, model.ErrInvalidParameter)
	}

	prices := series.Series()
	middle = rolling(prices, window, func(w []float64) (float64, bool) {
		return stat.Mean(w, nil), true
	})
	width := rolling(prices, window, func(w []float64) (float64, bool) {
		return numStd * stat.StdDev(w, nil), true
	})

	upper = make(model.Series, len(prices))
	lower = make(model.Series, len(prices))
	for i := range prices {
		upper[i] = model.Point{Time: prices[i].Time}
		lower[i] = model.Point{Time: prices[i].Time}
		if middle[i].Value == nil {
			continue
		}
		upper[i].Value = model.Float(*middle[i].Value + *width[i].Value)
		lower[i].Value = model.Float(*middle[i].Value - *width[i].Value)
	}
	return upper, middle, lower, nil
}
