package calculator

import (
	"fmt"

	"MarketAnalytics/internal/model"
)

// MACD returns the MACD line (EMA(fast) - EMA(slow)) and its signal line, an EMA of
// the MACD line with the same seeding as EMA.
func MACD(series model.PriceSeries, fast, slow, signal int) (line, sig model.Series, err error) {
	for _, p := range []struct {
		name string
		v    int
	}{{"fast", fast}, {"slow", slow}, {"signal", signal}} {
		if p.v < 1 {
			return nil, nil, fmt.Errorf("macd %s span %d must be >= 1: %w", p.name, p.v, model.ErrInvalidParameter)
		}
	}

	prices := series.Series()
	emaFast := ema(prices, fast)
	emaSlow := ema(prices, slow)

	line = make(model.Series, len(prices))
	for i := range prices {
		line[i] = model.Point{Time: prices[i].Time}
		if emaFast[i].Value == nil || emaSlow[i].Value == nil {
			continue
		}
		line[i].Value = model.Float(*emaFast[i].Value - *emaSlow[i].Value)
	}
	return line, ema(line, signal), nil
}
