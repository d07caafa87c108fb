package calculator

import "MarketAnalytics/internal/model"

// Align inner-joins price series on their timestamps: only dates where every
// series has a present price are kept. Results are new series in input order.
func Align(series ...model.PriceSeries) []model.PriceSeries {
	out := make([]model.PriceSeries, len(series))
	if len(series) == 0 {
		return out
	}

	counts := make(map[int64]int)
	for _, s := range series {
		for _, p := range s.Points {
			if p.Value != nil {
				counts[p.Time.UnixNano()]++
			}
		}
	}

	for i, s := range series {
		out[i] = model.PriceSeries{AssetID: s.AssetID, Points: make([]model.Point, 0, len(s.Points))}
		for _, p := range s.Points {
			if p.Value != nil && counts[p.Time.UnixNano()] == len(series) {
				out[i].Points = append(out[i].Points, p)
			}
		}
	}
	return out
}

// AlignPair returns the values of a and b on the timestamps where both are present.
func AlignPair(a, b model.Series) (xs, ys []float64) {
	byTime := make(map[int64]float64, len(b))
	for _, p := range b {
		if p.Value != nil {
			byTime[p.Time.UnixNano()] = *p.Value
		}
	}
	for _, p := range a {
		if p.Value == nil {
			continue
		}
		if y, ok := byTime[p.Time.UnixNano()]; ok {
			xs = append(xs, *p.Value)
			ys = append(ys, y)
		}
	}
	return xs, ys
}
