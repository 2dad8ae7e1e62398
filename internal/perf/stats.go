package perf

import (
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"levsim/internal/series"
)

// Summary holds descriptive statistics of a price series. Percentages are
// expressed as e.g. 12.5 for 12.5%.
type Summary struct {
	Name        string    `json:"name"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	Years       float64   `json:"years"`
	TotalReturn float64   `json:"total_return"`
	CAGR        float64   `json:"cagr"`
	MaxDrawdown float64   `json:"max_drawdown"`
	Volatility  float64   `json:"volatility"`
	Final       float64   `json:"final"`
}

// Summarize computes a Summary for prices. At least three points are needed
// so that the daily changes have a sample standard deviation.
func Summarize(prices series.Series) (Summary, error) {
	if err := need(prices, 3); err != nil {
		return Summary{}, err
	}
	cagr, err := CAGR(prices)
	if err != nil {
		return Summary{}, err
	}
	dd, err := Drawdown(prices)
	if err != nil {
		return Summary{}, err
	}

	start, first := prices.First()
	end, last := prices.Last()
	daily := pctChange(prices.Values)[1:]

	return Summary{
		Name:        prices.Name,
		Start:       start,
		End:         end,
		Years:       end.Sub(start).Hours() / 24 / DaysPerYear,
		TotalReturn: (last/first - 1) * 100,
		CAGR:        cagr,
		MaxDrawdown: floats.Min(dd.Values),
		Volatility:  stat.StdDev(daily, nil) * math.Sqrt(TradingDaysPerYear) * 100,
		Final:       last,
	}, nil
}

// TrackingDifference returns the CAGR of actual minus the CAGR of simulated,
// in percentage points, over the dates both series share.
func TrackingDifference(actual, simulated series.Series) (float64, error) {
	aligned, err := series.Align(actual, simulated)
	if err != nil {
		return 0, fmt.Errorf("tracking %s vs %s: %w", actual.Name, simulated.Name, err)
	}
	a, err := CAGR(aligned[0])
	if err != nil {
		return 0, err
	}
	s, err := CAGR(aligned[1])
	if err != nil {
		return 0, err
	}
	return a - s, nil
}
