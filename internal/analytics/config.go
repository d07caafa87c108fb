package analytics

import (
	"fmt"
	"math"

	"MarketAnalytics/internal/model"
)

// Indicator names accepted in Config.Indicators.
const (
	IndicatorSMA       = "sma"
	IndicatorEMA       = "ema"
	IndicatorRSI       = "rsi"
	IndicatorMACD      = "macd"
	IndicatorBollinger = "bollinger"
)

// AllIndicators lists every indicator the engine can compute.
var AllIndicators = []string{IndicatorSMA, IndicatorEMA, IndicatorRSI, IndicatorMACD, IndicatorBollinger}

// Alignment modes.
const (
	AlignInner = "inner"
	AlignNone  = "none"
)

// Windows holds the lookback parameters of every indicator.
type Windows struct {
	SMAShort        int     `json:"sma_short" yaml:"sma_short"`
	SMALong         int     `json:"sma_long" yaml:"sma_long"`
	EMAFast         int     `json:"ema_fast" yaml:"ema_fast"`
	EMASlow         int     `json:"ema_slow" yaml:"ema_slow"`
	RSIPeriod       int     `json:"rsi_period" yaml:"rsi_period"`
	MACDFast        int     `json:"macd_fast" yaml:"macd_fast"`
	MACDSlow        int     `json:"macd_slow" yaml:"macd_slow"`
	MACDSignal      int     `json:"macd_signal" yaml:"macd_signal"`
	BollingerWindow int     `json:"bollinger_window" yaml:"bollinger_window"`
	BollingerStd    float64 `json:"bollinger_std" yaml:"bollinger_std"`
}

// Config parameterizes one analysis request.
type Config struct {
	Windows        Windows         `json:"windows"`
	PeriodsPerYear int             `json:"periods_per_year"`
	DateRange      model.DateRange `json:"date_range"`
	// Indicators selects which indicators to compute; empty means all.
	Indicators []string `json:"indicators,omitempty"`
	// Alignment is AlignInner (default) or AlignNone.
	Alignment           string  `json:"alignment,omitempty"`
	HighSharpeThreshold float64 `json:"high_sharpe_threshold"`
}

// DefaultWindows returns the conventional daily-bar indicator settings.
func DefaultWindows() Windows {
	return Windows{
		SMAShort:        20,
		SMALong:         50,
		EMAFast:         12,
		EMASlow:         26,
		RSIPeriod:       14,
		MACDFast:        12,
		MACDSlow:        26,
		MACDSignal:      9,
		BollingerWindow: 20,
		BollingerStd:    2,
	}
}

// DefaultConfig returns a Config for daily closing prices.
func DefaultConfig() Config {
	return Config{
		Windows:             DefaultWindows(),
		PeriodsPerYear:      252,
		Alignment:           AlignInner,
		HighSharpeThreshold: 2,
	}
}

// Validate rejects malformed parameters. Nothing is clamped.
func (c Config) Validate() error {
	w := c.Windows
	for _, p := range []struct {
		name string
		v    int
	}{
		{"sma_short", w.SMAShort},
		{"sma_long", w.SMALong},
		{"ema_fast", w.EMAFast},
		{"ema_slow", w.EMASlow},
		{"rsi_period", w.RSIPeriod},
		{"macd_fast", w.MACDFast},
		{"macd_slow", w.MACDSlow},
		{"macd_signal", w.MACDSignal},
		{"periods_per_year", c.PeriodsPerYear},
	} {
		if p.v <= 0 {
			return fmt.Errorf("%s must be positive, got %d: %w", p.name, p.v, model.ErrInvalidParameter)
		}
	}
	if w.BollingerWindow < 2 {
		return fmt.Errorf("bollinger_window must be >= 2, got %d: %w", w.BollingerWindow, model.ErrInvalidParameter)
	}
	if w.BollingerStd < 0 || math.IsNaN(w.BollingerStd) || math.IsInf(w.BollingerStd, 0) {
		return fmt.Errorf("bollinger_std must be finite and >= 0, got %v: %w", w.BollingerStd, model.ErrInvalidParameter)
	}
	if math.IsNaN(c.HighSharpeThreshold) {
		return fmt.Errorf("high_sharpe_threshold is NaN: %w", model.ErrInvalidParameter)
	}
	r := c.DateRange
	if !r.Start.IsZero() && !r.End.IsZero() && !r.End.After(r.Start) {
		return fmt.Errorf("date_range end %s must be after start %s: %w",
			r.End.Format("2006-01-02"), r.Start.Format("2006-01-02"), model.ErrInvalidParameter)
	}
	switch c.Alignment {
	case "", AlignInner, AlignNone:
	default:
		return fmt.Errorf("unknown alignment %q: %w", c.Alignment, model.ErrInvalidParameter)
	}
	for _, name := range c.Indicators {
		if !isKnownIndicator(name) {
			return fmt.Errorf("unknown indicator %q: %w", name, model.ErrInvalidParameter)
		}
	}
	return nil
}

func (c Config) wants(indicator string) bool {
	if len(c.Indicators) == 0 {
		return true
	}
	for _, name := range c.Indicators {
		if name == indicator {
			return true
		}
	}
	return false
}

func isKnownIndicator(name string) bool {
	for _, known := range AllIndicators {
		if name == known {
			return true
		}
	}
	return false
}
