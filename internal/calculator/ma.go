package calculator

import (
	"fmt"

	"MarketAnalytics/internal/model"

	"gonum.org/v1/gonum/stat"
)

// SMA computes the simple moving average over a trailing window.
// Slots before the window fills, or whose window holds a missing price, are missing.
func SMA(series model.PriceSeries, window int) (model.Series, error) {
	if window <= 0 {
		return nil, fmt.Errorf("sma window %d must be positive: %w", window, model.ErrInvalidParameter)
	}
	return rolling(series.Series(), window, func(w []float64) (float64, bool) {
		return stat.Mean(w, nil), true
	}), nil
}

// EMA computes the exponentially weighted moving average with alpha = 2/(span+1).
//
// Seeding: the first available price seeds the average, so the output at that slot
// equals the price. Each later price p updates ema = alpha*p + (1-alpha)*ema. Missing
// prices produce a missing slot and leave the running average untouched.
func EMA(series model.PriceSeries, span int) (model.Series, error) {
	if span < 1 {
		return nil, fmt.Errorf("ema span %d must be >= 1: %w", span, model.ErrInvalidParameter)
	}
	return ema(series.Series(), span), nil
}

func ema(in model.Series, span int) model.Series {
	alpha := 2.0 / float64(span+1)
	out := make(model.Series, len(in))
	var acc float64
	seeded := false
	for i, p := range in {
		out[i] = model.Point{Time: p.Time}
		if p.Value == nil {
			continue
		}
		if !seeded {
			acc = *p.Value
			seeded = true
		} else {
			acc = alpha*(*p.Value) + (1-alpha)*acc
		}
		out[i].Value = model.Float(acc)
	}
	return out
}

// rolling applies fn to every complete trailing window of in. fn may decline a
// window by returning false, which leaves the slot missing.
func rolling(in model.Series, window int, fn func([]float64) (float64, bool)) model.Series {
	out := make(model.Series, len(in))
	buf := make([]float64, window)
	for i, p := range in {
		out[i] = model.Point{Time: p.Time}
		if i < window-1 {
			continue
		}
		complete := true
		for k := 0; k < window; k++ {
			v := in[i-window+1+k].Value
			if v == nil {
				complete = false
				break
			}
			buf[k] = *v
		}
		if !complete {
			continue
		}
		if v, ok := fn(buf); ok {
			out[i].Value = model.Float(v)
		}
	}
	return out
}
