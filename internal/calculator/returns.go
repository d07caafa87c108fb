package calculator

import "MarketAnalytics/internal/model"

// ComputeReturns derives the periodic fractional returns of a price series.
// The result is one slot shorter than the input and is stamped with the later
// timestamp of each pair. A slot is missing when either price is missing or the
// previous price is zero. Series with fewer than two points yield an empty result.
func ComputeReturns(series model.PriceSeries) model.Series {
	n := series.Len()
	if n < 2 {
		return model.Series{}
	}
	out := make(model.Series, n-1)
	for i := 1; i < n; i++ {
		prev, cur := series.Points[i-1], series.Points[i]
		out[i-1] = model.Point{Time: cur.Time}
		if prev.Value == nil || cur.Value == nil || *prev.Value == 0 {
			continue
		}
		out[i-1].Value = model.Float(*cur.Value / *prev.Value - 1)
	}
	return out
}
