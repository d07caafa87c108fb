package calculator

import (
	"math"
	"testing"
	"time"

	"MarketAnalytics/internal/model"

	"github.com/stretchr/testify/require"
)

var day0 = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// daily builds a series with one point per calendar day starting at day0.
// NaN values become missing observations.
func daily(t *testing.T, id string, values ...float64) model.PriceSeries {
	t.Helper()
	return dailyFrom(t, id, day0, values...)
}

func dailyFrom(t *testing.T, id string, start time.Time, values ...float64) model.PriceSeries {
	t.Helper()
	points := make([]model.Point, len(values))
	for i, v := range values {
		points[i] = model.Point{Time: start.AddDate(0, 0, i)}
		if !math.IsNaN(v) {
			points[i].Value = model.Float(v)
		}
	}
	ps, err := model.NewPriceSeries(id, points)
	require.NoError(t, err)
	return ps
}

// values flattens a series, mapping missing slots to NaN.
func values(s model.Series) []float64 {
	out := make([]float64, len(s))
	for i, p := range s {
		if p.Value == nil {
			out[i] = math.NaN()
			continue
		}
		out[i] = *p.Value
	}
	return out
}

func assertSeries(t *testing.T, want []float64, got model.Series) {
	t.Helper()
	require.Len(t, got, len(want))
	for i, w := range want {
		if math.IsNaN(w) {
			require.Nilf(t, got[i].Value, "slot %d should be missing, got %v", i, got[i].Value)
			continue
		}
		require.NotNilf(t, got[i].Value, "slot %d should be %v, got missing", i, w)
		require.InDeltaf(t, w, *got[i].Value, 1e-9, "slot %d", i)
	}
}

var nan = math.NaN()
