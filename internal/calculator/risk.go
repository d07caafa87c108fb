package calculator

import (
	"fmt"
	"math"

	"MarketAnalytics/internal/model"

	"gonum.org/v1/gonum/stat"
)

// DaysPerYear is the calendar-day basis used to annualize returns.
const DaysPerYear = 365.25

// AnnualizedReturn compounds the change between the first and last available
// prices to a yearly rate using the calendar span between them. A span too short
// for the move to compound to a finite rate counts as insufficient data.
func AnnualizedReturn(series model.PriceSeries) (float64, error) {
	avail := series.Available()
	if len(avail) < 2 {
		return 0, fmt.Errorf("annualized return needs 2 observations, have %d: %w", len(avail), model.ErrInsufficientData)
	}
	first, last := avail[0], avail[len(avail)-1]
	days := last.Time.Sub(first.Time).Hours() / 24
	if days <= 0 {
		return 0, fmt.Errorf("annualized return over zero days: %w", model.ErrInsufficientData)
	}
	r := math.Pow(*last.Value / *first.Value, DaysPerYear/days) - 1
	if math.IsInf(r, 0) || math.IsNaN(r) {
		return 0, fmt.Errorf("annualized return overflows over %.2f days: %w", days, model.ErrInsufficientData)
	}
	return r, nil
}

// Volatility is the sample standard deviation of the present returns scaled by
// sqrt(periodsPerYear): 252 for daily bars, 52 for weekly, 12 for monthly.
func Volatility(returns model.Series, periodsPerYear int) (float64, error) {
	if periodsPerYear <= 0 {
		return 0, fmt.Errorf("periods per year %d must be positive: %w", periodsPerYear, model.ErrInvalidParameter)
	}
	values := returns.Values()
	if len(values) < 2 {
		return 0, fmt.Errorf("volatility needs 2 returns, have %d: %w", len(values), model.ErrInsufficientData)
	}
	return stat.StdDev(values, nil) * math.Sqrt(float64(periodsPerYear)), nil
}

// SharpeRatio divides annualized return by volatility. Zero volatility, or a
// quotient beyond float range, yields the infinite sentinel.
func SharpeRatio(annualizedReturn, volatility float64) model.Ratio {
	if volatility == 0 {
		return model.Ratio{Infinite: true}
	}
	r := annualizedReturn / volatility
	if math.IsInf(r, 0) {
		return model.Ratio{Infinite: true}
	}
	return model.Ratio{Value: model.Float(r)}
}

// MaxDrawdown returns the deepest decline of any available price below its running
// maximum, as a fraction <= 0. A non-decreasing series has drawdown 0.
func MaxDrawdown(series model.PriceSeries) (float64, error) {
	avail := series.Available()
	if len(avail) == 0 {
		return 0, fmt.Errorf("max drawdown of empty series: %w", model.ErrInsufficientData)
	}
	runMax := math.Inf(-1)
	worst := 0.0
	for _, p := range avail {
		if *p.Value > runMax {
			runMax = *p.Value
		}
		if dd := *p.Value/runMax - 1; dd < worst {
			worst = dd
		}
	}
	return worst, nil
}
