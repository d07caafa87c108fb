// Package analytics composes the calculator into a single request/response call.
package analytics

import (
	"errors"
	"fmt"
	"sort"

	"MarketAnalytics/internal/calculator"
	"MarketAnalytics/internal/model"
)

// Analyze computes returns, indicators and risk statistics for every asset and the
// correlation matrix across them. It fails on invalid configuration and when any
// asset has no usable observation; shortfalls of a single asset are reported in
// that asset's risk issues instead.
func Analyze(prices map[string]model.PriceSeries, cfg Config) (*model.AnalyticsResult, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if len(prices) == 0 {
		return nil, fmt.Errorf("no assets supplied: %w", model.ErrMissingAssetData)
	}

	ids := make([]string, 0, len(prices))
	for id := range prices {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	series := make([]model.PriceSeries, len(ids))
	for i, id := range ids {
		s := prices[id].Between(cfg.DateRange.Start, cfg.DateRange.End)
		s.AssetID = id
		if len(s.Available()) == 0 {
			return nil, &model.MissingAssetError{AssetID: id}
		}
		series[i] = s
	}
	if cfg.Alignment != AlignNone {
		series = calculator.Align(series...)
	}

	result := &model.AnalyticsResult{
		PerAsset: make(map[string]model.AssetAnalytics, len(ids)),
		Range:    cfg.DateRange,
	}
	returnsByAsset := make(map[string]model.Series, len(ids))
	for _, s := range series {
		returns := calculator.ComputeReturns(s)
		indicators, err := Indicators(s, cfg)
		if err != nil {
			return nil, fmt.Errorf("asset %q: %w", s.AssetID, err)
		}
		risk, err := Risk(s, returns, cfg.PeriodsPerYear)
		if err != nil {
			return nil, fmt.Errorf("asset %q: %w", s.AssetID, err)
		}
		result.PerAsset[s.AssetID] = model.AssetAnalytics{
			Observations: len(s.Available()),
			Returns:      returns,
			Indicators:   indicators,
			Risk:         risk,
		}
		returnsByAsset[s.AssetID] = returns
	}

	result.Correlation = calculator.CorrelationMatrix(returnsByAsset)
	result.Highlights = highlights(ids, result.PerAsset, cfg.HighSharpeThreshold)
	return result, nil
}

// Indicators computes the indicators selected by cfg for one series.
func Indicators(s model.PriceSeries, cfg Config) (model.IndicatorSet, error) {
	var set model.IndicatorSet
	var err error
	w := cfg.Windows

	if cfg.wants(IndicatorSMA) {
		if set.SMAShort, err = calculator.SMA(s, w.SMAShort); err != nil {
			return set, err
		}
		if set.SMALong, err = calculator.SMA(s, w.SMALong); err != nil {
			return set, err
		}
	}
	if cfg.wants(IndicatorEMA) {
		if set.EMAFast, err = calculator.EMA(s, w.EMAFast); err != nil {
			return set, err
		}
		if set.EMASlow, err = calculator.EMA(s, w.EMASlow); err != nil {
			return set, err
		}
	}
	if cfg.wants(IndicatorRSI) {
		if set.RSI, err = calculator.RSI(s, w.RSIPeriod); err != nil {
			return set, err
		}
	}
	if cfg.wants(IndicatorMACD) {
		if set.MACD, set.MACDSignal, err = calculator.MACD(s, w.MACDFast, w.MACDSlow, w.MACDSignal); err != nil {
			return set, err
		}
	}
	if cfg.wants(IndicatorBollinger) {
		if set.BollingerUpper, set.BollingerMiddle, set.BollingerLower, err = calculator.BollingerBands(s, w.BollingerWindow, w.BollingerStd); err != nil {
			return set, err
		}
	}
	return set, nil
}

// Risk builds the risk summary of one asset. Statistics without enough data are
// left nil with an explanation in Issues; only invalid parameters are returned.
func Risk(s model.PriceSeries, returns model.Series, periodsPerYear int) (model.RiskSummaryEntry, error) {
	var entry model.RiskSummaryEntry

	ret, retErr := calculator.AnnualizedReturn(s)
	if err := classify(&entry, "annualized return", retErr); err != nil {
		return entry, err
	}
	if retErr == nil {
		entry.AnnualizedReturn = model.Float(ret)
	}

	vol, volErr := calculator.Volatility(returns, periodsPerYear)
	if err := classify(&entry, "volatility", volErr); err != nil {
		return entry, err
	}
	if volErr == nil {
		entry.Volatility = model.Float(vol)
	}

	if retErr == nil && volErr == nil {
		entry.SharpeRatio = calculator.SharpeRatio(ret, vol)
	} else {
		entry.Issues = append(entry.Issues, "sharpe ratio: needs annualized return and volatility")
	}

	dd, ddErr := calculator.MaxDrawdown(s)
	if err := classify(&entry, "max drawdown", ddErr); err != nil {
		return entry, err
	}
	if ddErr == nil {
		entry.MaxDrawdown = model.Float(dd)
	}
	return entry, nil
}

// classify records insufficient-data errors as issues and passes anything else through.
func classify(entry *model.RiskSummaryEntry, stat string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, model.ErrInsufficientData) {
		entry.Issues = append(entry.Issues, fmt.Sprintf("%s: %v", stat, err))
		return nil
	}
	return fmt.Errorf("%s: %w", stat, err)
}

func highlights(ids []string, perAsset map[string]model.AssetAnalytics, threshold float64) model.Highlights {
	var h model.Highlights
	best := 0.0
	for _, id := range ids {
		risk := perAsset[id].Risk
		if r := risk.AnnualizedReturn; r != nil && (h.BestPerformer == "" || *r > best) {
			h.BestPerformer = id
			best = *r
		}
		if highSharpe(risk, threshold) {
			h.HighSharpe = append(h.HighSharpe, id)
		}
	}
	return h
}

// highSharpe reports a Sharpe ratio above threshold. An infinite ratio counts when
// the return is positive, as zero volatility then means a riskless gain.
func highSharpe(risk model.RiskSummaryEntry, threshold float64) bool {
	if s := risk.SharpeRatio.Value; s != nil {
		return *s > threshold
	}
	return risk.SharpeRatio.Infinite && risk.AnnualizedReturn != nil && *risk.AnnualizedReturn > 0
}
