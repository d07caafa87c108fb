package model

import (
	"fmt"
	"math"
	"time"
)

// Point is a single dated observation. A nil Value marks a missing observation.
type Point struct {
	Time  time.Time `json:"time"`
	Value *float64  `json:"value"`
}

// Present reports whether the point carries a value.
func (p Point) Present() bool { return p.Value != nil }

// Float returns a pointer to a copy of v.
func Float(v float64) *float64 { return &v }

// Series is a date-indexed sequence of derived values (returns, indicators).
type Series []Point

// Values returns the present values of the series in order.
func (s Series) Values() []float64 {
	out := make([]float64, 0, len(s))
	for _, p := range s {
		if p.Value != nil {
			out = append(out, *p.Value)
		}
	}
	return out
}

// Last returns the most recent present value.
func (s Series) Last() (float64, bool) {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i].Value != nil {
			return *s[i].Value, true
		}
	}
	return 0, false
}

// PriceSeries holds the observed prices of one asset with strictly increasing timestamps.
type PriceSeries struct {
	AssetID string  `json:"asset_id"`
	Points  []Point `json:"points"`
}

// NewPriceSeries validates and copies points into a PriceSeries.
// NaN prices are stored as missing; zero, negative or infinite prices are rejected.
func NewPriceSeries(assetID string, points []Point) (PriceSeries, error) {
	out := make([]Point, len(points))
	for i, p := range points {
		if i > 0 && !p.Time.After(points[i-1].Time) {
			return PriceSeries{}, fmt.Errorf("%s: timestamp %s not after %s: %w",
				assetID, p.Time.Format(time.RFC3339), points[i-1].Time.Format(time.RFC3339), ErrInvalidParameter)
		}
		out[i] = Point{Time: p.Time}
		if p.Value == nil || math.IsNaN(*p.Value) {
			continue
		}
		v := *p.Value
		if math.IsInf(v, 0) || v <= 0 {
			return PriceSeries{}, fmt.Errorf("%s: price %v at %s must be positive and finite: %w",
				assetID, v, p.Time.Format("2006-01-02"), ErrInvalidParameter)
		}
		out[i].Value = Float(v)
	}
	return PriceSeries{AssetID: assetID, Points: out}, nil
}

// Len returns the number of slots, including missing observations.
func (ps PriceSeries) Len() int { return len(ps.Points) }

// Times returns the timestamps of every slot.
func (ps PriceSeries) Times() []time.Time {
	out := make([]time.Time, len(ps.Points))
	for i, p := range ps.Points {
		out[i] = p.Time
	}
	return out
}

// Available returns only the points that carry a price.
func (ps PriceSeries) Available() []Point {
	out := make([]Point, 0, len(ps.Points))
	for _, p := range ps.Points {
		if p.Value != nil {
			out = append(out, p)
		}
	}
	return out
}

// Between returns a new series restricted to [start, end). Zero bounds are open.
func (ps PriceSeries) Between(start, end time.Time) PriceSeries {
	out := PriceSeries{AssetID: ps.AssetID, Points: make([]Point, 0, len(ps.Points))}
	for _, p := range ps.Points {
		if !start.IsZero() && p.Time.Before(start) {
			continue
		}
		if !end.IsZero() && !p.Time.Before(end) {
			continue
		}
		out.Points = append(out.Points, p)
	}
	return out
}

// Series returns the prices as a generic Series sharing no storage with ps.
func (ps PriceSeries) Series() Series {
	out := make(Series, len(ps.Points))
	copy(out, ps.Points)
	return out
}
