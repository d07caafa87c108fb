package model

import "time"

// IndicatorSet bundles the technical indicators of one asset.
// Every series has the length of the source prices; unselected indicators are nil.
type IndicatorSet struct {
	SMAShort        Series `json:"sma_short,omitempty"`
	SMALong         Series `json:"sma_long,omitempty"`
	EMAFast         Series `json:"ema_fast,omitempty"`
	EMASlow         Series `json:"ema_slow,omitempty"`
	RSI             Series `json:"rsi,omitempty"`
	MACD            Series `json:"macd,omitempty"`
	MACDSignal      Series `json:"macd_signal,omitempty"`
	BollingerUpper  Series `json:"bollinger_upper,omitempty"`
	BollingerMiddle Series `json:"bollinger_middle,omitempty"`
	BollingerLower  Series `json:"bollinger_lower,omitempty"`
}

// Ratio is the outcome of a ratio statistic. Infinite is set instead of Value
// when the denominator is zero.
type Ratio struct {
	Value    *float64 `json:"value"`
	Infinite bool     `json:"infinite"`
}

// RiskSummaryEntry holds the scalar risk/performance statistics of one asset.
// Fields that could not be computed are nil and explained in Issues.
type RiskSummaryEntry struct {
	AnnualizedReturn *float64 `json:"annualized_return"`
	Volatility       *float64 `json:"volatility"`
	SharpeRatio      Ratio    `json:"sharpe_ratio"`
	MaxDrawdown      *float64 `json:"max_drawdown"`
	Issues           []string `json:"issues,omitempty"`
}

// CorrelationMatrix is a symmetric matrix over Assets. A nil cell means the pair
// did not share enough return observations.
type CorrelationMatrix struct {
	Assets []string     `json:"assets"`
	Values [][]*float64 `json:"values"`
}

// Get returns the correlation between two assets.
func (m CorrelationMatrix) Get(a, b string) (float64, error) {
	i, j := m.index(a), m.index(b)
	if i < 0 || j < 0 {
		return 0, ErrMissingAssetData
	}
	v := m.Values[i][j]
	if v == nil {
		return 0, ErrInsufficientOverlap
	}
	return *v, nil
}

func (m CorrelationMatrix) index(asset string) int {
	for i, a := range m.Assets {
		if a == asset {
			return i
		}
	}
	return -1
}

// AssetAnalytics is everything computed for one asset.
type AssetAnalytics struct {
	Observations int              `json:"observations"`
	Returns      Series           `json:"returns"`
	Indicators   IndicatorSet     `json:"indicators"`
	Risk         RiskSummaryEntry `json:"risk"`
}

// Highlights summarizes notable assets of a run.
type Highlights struct {
	BestPerformer string   `json:"best_performer,omitempty"`
	HighSharpe    []string `json:"high_sharpe,omitempty"`
}

// DateRange bounds the analyzed observations: Start inclusive, End exclusive.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// AnalyticsResult is the complete output of one analysis request.
type AnalyticsResult struct {
	PerAsset    map[string]AssetAnalytics `json:"per_asset"`
	Correlation CorrelationMatrix         `json:"correlation"`
	Highlights  Highlights                `json:"highlights"`
	Range       DateRange                 `json:"range"`
}
