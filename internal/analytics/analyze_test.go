package analytics

import (
	"encoding/json"
	"errors"
	"math"
	"testing"
	"time"

	"MarketAnalytics/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var start = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

func series(t *testing.T, id string, from time.Time, values ...float64) model.PriceSeries {
	t.Helper()
	points := make([]model.Point, len(values))
	for i, v := range values {
		points[i] = model.Point{Time: from.AddDate(0, 0, i)}
		if !math.IsNaN(v) {
			points[i].Value = model.Float(v)
		}
	}
	ps, err := model.NewPriceSeries(id, points)
	require.NoError(t, err)
	return ps
}

func smallConfig() Config {
	cfg := DefaultConfig()
	cfg.Windows = Windows{
		SMAShort: 2, SMALong: 3,
		EMAFast: 2, EMASlow: 3,
		RSIPeriod: 2,
		MACDFast:  2, MACDSlow: 3, MACDSignal: 2,
		BollingerWindow: 3, BollingerStd: 2,
	}
	return cfg
}

func TestAnalyze_TwoAssets(t *testing.T) {
	prices := map[string]model.PriceSeries{
		"AAA": series(t, "AAA", start, 100, 102, 101, 105, 103),
		"BBB": series(t, "BBB", start, 50, 51, 50.5, 52, 53),
	}
	res, err := Analyze(prices, smallConfig())
	require.NoError(t, err)

	require.Len(t, res.PerAsset, 2)
	a := res.PerAsset["AAA"]
	assert.Equal(t, 5, a.Observations)
	assert.Len(t, a.Returns, 4)
	assert.Len(t, a.Indicators.SMAShort, 5)
	assert.Len(t, a.Indicators.BollingerUpper, 5)

	last, ok := a.Indicators.SMAShort.Last()
	require.True(t, ok)
	assert.InDelta(t, 104.0, last, 1e-12)

	require.NotNil(t, a.Risk.MaxDrawdown)
	assert.InDelta(t, 103.0/105-1, *a.Risk.MaxDrawdown, 1e-12)
	require.NotNil(t, a.Risk.AnnualizedReturn)
	require.NotNil(t, a.Risk.Volatility)
	require.NotNil(t, a.Risk.SharpeRatio.Value)
	assert.Empty(t, a.Risk.Issues)

	assert.Equal(t, []string{"AAA", "BBB"}, res.Correlation.Assets)
	ab, err := res.Correlation.Get("AAA", "BBB")
	require.NoError(t, err)
	ba, err := res.Correlation.Get("BBB", "AAA")
	require.NoError(t, err)
	assert.Equal(t, ab, ba)

	assert.NotEmpty(t, res.Highlights.BestPerformer)
}

func TestAnalyze_InnerAlignment(t *testing.T) {
	prices := map[string]model.PriceSeries{
		"AAA": series(t, "AAA", start, 100, 101, math.NaN(), 103, 104),
		"BBB": series(t, "BBB", start.AddDate(0, 0, 1), 10, 11, 12, 13),
	}
	res, err := Analyze(prices, smallConfig())
	require.NoError(t, err)
	assert.Equal(t, 3, res.PerAsset["AAA"].Observations)
	assert.Equal(t, 3, res.PerAsset["BBB"].Observations)
	assert.Len(t, res.PerAsset["AAA"].Indicators.RSI, 3)

	cfg := smallConfig()
	cfg.Alignment = AlignNone
	res, err = Analyze(prices, cfg)
	require.NoError(t, err)
	assert.Equal(t, 4, res.PerAsset["AAA"].Observations)
	assert.Len(t, res.PerAsset["AAA"].Indicators.RSI, 5)
}

func TestAnalyze_MissingAsset(t *testing.T) {
	prices := map[string]model.PriceSeries{
		"AAA":   series(t, "AAA", start, 100, 101, 102),
		"EMPTY": series(t, "EMPTY", start, math.NaN(), math.NaN()),
	}
	_, err := Analyze(prices, smallConfig())
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrMissingAssetData)

	var missing *model.MissingAssetError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, "EMPTY", missing.AssetID)

	_, err = Analyze(map[string]model.PriceSeries{}, smallConfig())
	assert.ErrorIs(t, err, model.ErrMissingAssetData)
}

func TestAnalyze_DateRangeEmptiesAsset(t *testing.T) {
	prices := map[string]model.PriceSeries{
		"AAA": series(t, "AAA", start, 100, 101, 102, 103),
	}
	cfg := smallConfig()
	cfg.DateRange = model.DateRange{Start: start.AddDate(1, 0, 0)}
	_, err := Analyze(prices, cfg)
	assert.ErrorIs(t, err, model.ErrMissingAssetData)

	cfg.DateRange = model.DateRange{Start: start.AddDate(0, 0, 1), End: start.AddDate(0, 0, 3)}
	res, err := Analyze(prices, cfg)
	require.NoError(t, err)
	assert.Equal(t, 2, res.PerAsset["AAA"].Observations)
}

func TestAnalyze_InsufficientDataIsPerAsset(t *testing.T) {
	prices := map[string]model.PriceSeries{
		"ONE": series(t, "ONE", start, 100),
		"TWO": series(t, "TWO", start, 100, 110, 105),
	}
	cfg := smallConfig()
	cfg.Alignment = AlignNone
	res, err := Analyze(prices, cfg)
	require.NoError(t, err)

	one := res.PerAsset["ONE"].Risk
	assert.Nil(t, one.AnnualizedReturn)
	assert.Nil(t, one.Volatility)
	assert.Nil(t, one.SharpeRatio.Value)
	assert.False(t, one.SharpeRatio.Infinite)
	require.NotNil(t, one.MaxDrawdown)
	assert.Equal(t, 0.0, *one.MaxDrawdown)
	assert.NotEmpty(t, one.Issues)
	assert.Empty(t, res.PerAsset["ONE"].Returns)

	two := res.PerAsset["TWO"].Risk
	assert.NotNil(t, two.AnnualizedReturn)
	assert.NotNil(t, two.Volatility)
	assert.Equal(t, "TWO", res.Highlights.BestPerformer)

	_, err = res.Correlation.Get("ONE", "TWO")
	assert.ErrorIs(t, err, model.ErrInsufficientOverlap)
}

func TestAnalyze_FlatSeries(t *testing.T) {
	prices := map[string]model.PriceSeries{
		"FLAT": series(t, "FLAT", start, 50, 50, 50, 50),
	}
	res, err := Analyze(prices, smallConfig())
	require.NoError(t, err)

	flat := res.PerAsset["FLAT"]
	for _, p := range flat.Indicators.RSI {
		assert.Nil(t, p.Value)
	}
	require.NotNil(t, flat.Risk.Volatility)
	assert.Equal(t, 0.0, *flat.Risk.Volatility)
	assert.True(t, flat.Risk.SharpeRatio.Infinite)
	assert.Empty(t, res.Highlights.HighSharpe)
}

func TestAnalyze_IndicatorSelection(t *testing.T) {
	prices := map[string]model.PriceSeries{
		"AAA": series(t, "AAA", start, 100, 102, 101, 105, 103),
	}
	cfg := smallConfig()
	cfg.Indicators = []string{IndicatorRSI, IndicatorMACD}
	res, err := Analyze(prices, cfg)
	require.NoError(t, err)

	ind := res.PerAsset["AAA"].Indicators
	assert.Nil(t, ind.SMAShort)
	assert.Nil(t, ind.EMAFast)
	assert.Nil(t, ind.BollingerUpper)
	assert.Len(t, ind.RSI, 5)
	assert.Len(t, ind.MACD, 5)
	assert.Len(t, ind.MACDSignal, 5)
}

func TestAnalyze_HighSharpe(t *testing.T) {
	prices := map[string]model.PriceSeries{
		"UP":   series(t, "UP", start, 100, 101, 102.1, 103, 104.2, 105.1),
		"DOWN": series(t, "DOWN", start, 100, 98, 99, 97, 96, 95),
	}
	res, err := Analyze(prices, smallConfig())
	require.NoError(t, err)
	assert.Equal(t, "UP", res.Highlights.BestPerformer)
	assert.Equal(t, []string{"UP"}, res.Highlights.HighSharpe)
}

func TestAnalyze_HighSharpeCountsRisklessGain(t *testing.T) {
	prices := map[string]model.PriceSeries{
		"DOUBLE": series(t, "DOUBLE", start, 100, 200, 400, 800),
		"FLAT":   series(t, "FLAT", start, 50, 50, 50, 50),
	}
	res, err := Analyze(prices, smallConfig())
	require.NoError(t, err)

	assert.True(t, res.PerAsset["DOUBLE"].Risk.SharpeRatio.Infinite)
	assert.True(t, res.PerAsset["FLAT"].Risk.SharpeRatio.Infinite)
	assert.Equal(t, []string{"DOUBLE"}, res.Highlights.HighSharpe, "zero return with zero volatility is not flagged")
	assert.Equal(t, "DOUBLE", res.Highlights.BestPerformer)
}

func TestAnalyze_OverflowingReturnIsAnIssue(t *testing.T) {
	points := make([]model.Point, 3)
	for i, v := range []float64{100, 120, 150} {
		points[i] = model.Point{Time: start.Add(time.Duration(i) * time.Hour), Value: model.Float(v)}
	}
	x, err := model.NewPriceSeries("X", points)
	require.NoError(t, err)

	res, err := Analyze(map[string]model.PriceSeries{"X": x}, smallConfig())
	require.NoError(t, err)

	risk := res.PerAsset["X"].Risk
	assert.Nil(t, risk.AnnualizedReturn)
	assert.Nil(t, risk.SharpeRatio.Value)
	assert.False(t, risk.SharpeRatio.Infinite)
	require.NotNil(t, risk.Volatility)
	assert.NotEmpty(t, risk.Issues)
	assert.Contains(t, risk.Issues[0], "annualized return")
	assert.Empty(t, res.Highlights.BestPerformer)

	data, err := json.Marshal(res)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"annualized_return":null`)
}

func TestAnalyze_InvalidConfig(t *testing.T) {
	prices := map[string]model.PriceSeries{
		"AAA": series(t, "AAA", start, 100, 101),
	}
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero sma", func(c *Config) { c.Windows.SMAShort = 0 }},
		{"negative rsi", func(c *Config) { c.Windows.RSIPeriod = -1 }},
		{"zero macd signal", func(c *Config) { c.Windows.MACDSignal = 0 }},
		{"bollinger window one", func(c *Config) { c.Windows.BollingerWindow = 1 }},
		{"negative bollinger std", func(c *Config) { c.Windows.BollingerStd = -2 }},
		{"zero periods per year", func(c *Config) { c.PeriodsPerYear = 0 }},
		{"unknown indicator", func(c *Config) { c.Indicators = []string{"vwap"} }},
		{"unknown alignment", func(c *Config) { c.Alignment = "outer" }},
		{"inverted range", func(c *Config) {
			c.DateRange = model.DateRange{Start: start.AddDate(0, 1, 0), End: start}
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := smallConfig()
			tt.mutate(&cfg)
			_, err := Analyze(prices, cfg)
			assert.ErrorIs(t, err, model.ErrInvalidParameter)
		})
	}
}

func TestAnalyze_ResultIsJSONSerializable(t *testing.T) {
	prices := map[string]model.PriceSeries{
		"AAA": series(t, "AAA", start, 50, 50, 50),
		"BBB": series(t, "BBB", start, 10, 11, 12),
	}
	res, err := Analyze(prices, smallConfig())
	require.NoError(t, err)

	data, err := json.Marshal(res)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"infinite":true`)
	assert.NotContains(t, string(data), "NaN")
}

func TestAnalyze_InputsUntouched(t *testing.T) {
	a := series(t, "AAA", start, 100, 101, math.NaN(), 103)
	b := series(t, "BBB", start, 10, 11, 12, 13)
	prices := map[string]model.PriceSeries{"AAA": a, "BBB": b}

	_, err := Analyze(prices, smallConfig())
	require.NoError(t, err)
	assert.Len(t, prices["AAA"].Points, 4)
	assert.Len(t, prices["BBB"].Points, 4)
	assert.Nil(t, prices["AAA"].Points[2].Value)
}
