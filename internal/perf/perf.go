package perf

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"levsim/internal/series"
)

const (
	TradingDaysPerYear = 252.0
	DaysPerYear        = 365.25

	DefaultLeverage     = 1.0
	DefaultExpenseRatio = 0.0
	DefaultInitialValue = 1.0
)

var (
	ErrInsufficientData   = errors.New("insufficient data")
	ErrDegenerateTimeSpan = errors.New("first and last dates are identical")
)

func need(s series.Series, n int) error {
	if s.Len() < n {
		return fmt.Errorf("%s: %w: need at least %d points, have %d", s.Name, ErrInsufficientData, n, s.Len())
	}
	return nil
}

// pctChange returns day-over-day fractional changes; index 0 is NaN.
func pctChange(values []float64) []float64 {
	out := make([]float64, len(values))
	if len(out) == 0 {
		return out
	}
	out[0] = math.NaN()
	for i := 1; i < len(values); i++ {
		out[i] = values[i]/values[i-1] - 1
	}
	return out
}

// CumulativeReturn computes the growth of one unit invested at the first
// date. The first value is NaN since it has no prior price; every later
// value equals prices[i]/prices[0].
func CumulativeReturn(prices series.Series) (series.Series, error) {
	if err := need(prices, 2); err != nil {
		return series.Series{}, err
	}
	// The running product of (1+pct) telescopes to prices[i]/prices[0];
	// dividing directly keeps the result exact.
	base := prices.Values[0]
	out := make([]float64, prices.Len())
	out[0] = math.NaN()
	for i := 1; i < len(out); i++ {
		out[i] = prices.Values[i] / base
	}
	return prices.WithValues(out), nil
}

// Drawdown returns the percentage decline of the cumulative return from its
// running peak. Index 0 counts as the initial peak with growth 1.0, so the
// first value is 0 and every value is at most 0.
func Drawdown(prices series.Series) (series.Series, error) {
	r, err := CumulativeReturn(prices)
	if err != nil {
		return series.Series{}, err
	}
	out := make([]float64, r.Len())
	peak := 1.0
	for i := 1; i < len(out); i++ {
		if r.Values[i] > peak {
			peak = r.Values[i]
		}
		out[i] = (r.Values[i]/peak - 1) * 100
	}
	return prices.WithValues(out), nil
}

// CAGR returns the compound annual growth rate in percent between the first
// and last samples. Intermediate samples are ignored.
func CAGR(prices series.Series) (float64, error) {
	if err := need(prices, 2); err != nil {
		return 0, err
	}
	firstDate, first := prices.First()
	lastDate, last := prices.Last()
	years := lastDate.Sub(firstDate).Hours() / 24 / DaysPerYear
	if years == 0 {
		return 0, fmt.Errorf("%s: %w", prices.Name, ErrDegenerateTimeSpan)
	}
	return (math.Pow(last/first, 1/years) - 1) * 100, nil
}

// SimulateLeverage simulates a daily-rebalanced leveraged exposure to proxy,
// net of an annual expense ratio amortized over TradingDaysPerYear. The
// result always starts exactly at initialValue. Values are not clamped: a
// daily loss beyond -100% drives the simulation negative.
func SimulateLeverage(proxy series.Series, leverage, expenseRatio, initialValue float64) (series.Series, error) {
	if err := need(proxy, 1); err != nil {
		return series.Series{}, err
	}
	pct := pctChange(proxy.Values)
	dailyFee := expenseRatio / TradingDaysPerYear

	out := make([]float64, len(pct))
	out[0] = 1
	for i := 1; i < len(pct); i++ {
		out[i] = 1 + (pct[i]-dailyFee)*leverage
	}
	floats.CumProd(out, out)
	floats.Scale(initialValue, out)
	return proxy.WithValues(out), nil
}
