package perf

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"levsim/internal/series"
)

const tol = 1e-9

// daily builds a series on consecutive calendar days starting 2020-01-01.
func daily(t *testing.T, name string, values ...float64) series.Series {
	t.Helper()
	start := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	dates := make([]time.Time, len(values))
	for i := range values {
		dates[i] = start.AddDate(0, 0, i)
	}
	s, err := series.New(name, dates, values)
	require.NoError(t, err)
	return s
}

func TestCumulativeReturn(t *testing.T) {
	s := daily(t, "X", 100, 110, 99, 121)

	r, err := CumulativeReturn(s)
	require.NoError(t, err)
	require.Equal(t, s.Len(), r.Len())

	assert.True(t, math.IsNaN(r.Values[0]), "first value has no prior price")
	for i := 1; i < s.Len(); i++ {
		assert.Equal(t, s.Values[i]/s.Values[0], r.Values[i], "index %d", i)
	}
	assert.Equal(t, s.Dates, r.Dates)
	assert.Equal(t, 100.0, s.Values[0], "input must not change")
}

func TestCumulativeReturn_ConstantPrices(t *testing.T) {
	r, err := CumulativeReturn(daily(t, "X", 50, 50, 50, 50, 50))
	require.NoError(t, err)
	for i := 1; i < r.Len(); i++ {
		assert.Equal(t, 1.0, r.Values[i])
	}
}

func TestCumulativeReturn_InsufficientData(t *testing.T) {
	_, err := CumulativeReturn(daily(t, "X", 100))
	assert.ErrorIs(t, err, ErrInsufficientData)

	_, err = CumulativeReturn(daily(t, "X"))
	assert.ErrorIs(t, err, ErrInsufficientData)
}

func TestDrawdown(t *testing.T) {
	tests := []struct {
		name   string
		prices []float64
		want   []float64
	}{
		{
			name:   "rising",
			prices: []float64{100, 110, 120},
			want:   []float64{0, 0, 0},
		},
		{
			name:   "peak then decline",
			prices: []float64{100, 120, 90, 60, 120, 130},
			want:   []float64{0, 0, -25, -50, 0, 0},
		},
		{
			name:   "falls from start",
			prices: []float64{100, 80, 90},
			want:   []float64{0, -20, -10},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dd, err := Drawdown(daily(t, "X", tt.prices...))
			require.NoError(t, err)
			require.Len(t, dd.Values, len(tt.want))
			for i, w := range tt.want {
				assert.InDelta(t, w, dd.Values[i], tol, "index %d", i)
			}
		})
	}
}

func TestDrawdown_NeverPositive(t *testing.T) {
	prices := []float64{100, 103, 97, 140, 20, 25, 300, 299.5, 1}
	dd, err := Drawdown(daily(t, "X", prices...))
	require.NoError(t, err)

	r, err := CumulativeReturn(daily(t, "X", prices...))
	require.NoError(t, err)

	peak := 1.0
	for i, v := range dd.Values {
		assert.LessOrEqual(t, v, 0.0, "index %d", i)
		if i > 0 && r.Values[i] >= peak {
			peak = r.Values[i]
			assert.Equal(t, 0.0, v, "new running max at index %d", i)
		}
	}
}

func TestCAGR(t *testing.T) {
	mk := func(d0, d1 time.Time, p0, p1 float64) series.Series {
		s, err := series.New("X", []time.Time{d0, d1}, []float64{p0, p1})
		require.NoError(t, err)
		return s
	}
	start := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	year := time.Duration(DaysPerYear * 24 * float64(time.Hour))

	t.Run("doubles over exactly one year", func(t *testing.T) {
		got, err := CAGR(mk(start, start.Add(year), 50, 100))
		require.NoError(t, err)
		assert.InDelta(t, 100.0, got, 1e-9)
	})

	t.Run("doubles over a calendar year", func(t *testing.T) {
		got, err := CAGR(mk(time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC), 50, 100))
		require.NoError(t, err)
		assert.InDelta(t, 100.0, got, 0.2)
	})

	t.Run("two calendar years", func(t *testing.T) {
		got, err := CAGR(mk(start, time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC), 100, 121))
		require.NoError(t, err)
		assert.InDelta(t, 10.0, got, 0.01)
	})

	t.Run("ignores intermediate samples", func(t *testing.T) {
		a := daily(t, "A", 100, 500, 1, 110)
		b := daily(t, "B", 100, 100, 100, 110)
		ga, err := CAGR(a)
		require.NoError(t, err)
		gb, err := CAGR(b)
		require.NoError(t, err)
		assert.Equal(t, ga, gb)
	})

	t.Run("losing", func(t *testing.T) {
		got, err := CAGR(mk(start, start.Add(year), 100, 50))
		require.NoError(t, err)
		assert.InDelta(t, -50.0, got, 1e-9)
	})
}

func TestCAGR_Errors(t *testing.T) {
	_, err := CAGR(daily(t, "X", 100))
	assert.ErrorIs(t, err, ErrInsufficientData)

	// series.New rejects identical dates, so build the degenerate case by hand.
	d := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	degenerate := series.Series{Name: "X", Dates: []time.Time{d, d}, Values: []float64{100, 110}}
	_, err = CAGR(degenerate)
	assert.ErrorIs(t, err, ErrDegenerateTimeSpan)
}

func TestSimulateLeverage_ThreeTimes(t *testing.T) {
	sim, err := SimulateLeverage(daily(t, "QQQ", 100, 110, 99), 3, 0, 1)
	require.NoError(t, err)

	require.Len(t, sim.Values, 3)
	assert.Equal(t, 1.0, sim.Values[0])
	assert.InDelta(t, 1.30, sim.Values[1], tol)
	assert.InDelta(t, 0.91, sim.Values[2], tol)
}

func TestSimulateLeverage_UnleveredMatchesCumulativeReturn(t *testing.T) {
	proxy := daily(t, "X", 100, 101.5, 99.2, 104.7, 103.1, 110.0, 95.3)

	sim, err := SimulateLeverage(proxy, DefaultLeverage, DefaultExpenseRatio, DefaultInitialValue)
	require.NoError(t, err)
	r, err := CumulativeReturn(proxy)
	require.NoError(t, err)

	for i := 1; i < proxy.Len(); i++ {
		assert.InDelta(t, r.Values[i], sim.Values[i], tol, "index %d", i)
	}
}

func TestSimulateLeverage_StartsAtInitialValue(t *testing.T) {
	proxy := daily(t, "X", 100, 90, 130, 40)
	for _, lev := range []float64{-3, -1, 0, 0.5, 2, 3, 10} {
		for _, er := range []float64{0, 0.0095, 0.5} {
			sim, err := SimulateLeverage(proxy, lev, er, 10000)
			require.NoError(t, err)
			assert.Equal(t, 10000.0, sim.Values[0], "leverage %v expense %v", lev, er)
		}
	}
}

func TestSimulateLeverage_ExpenseDrag(t *testing.T) {
	flat := daily(t, "X", 100, 100, 100)
	sim, err := SimulateLeverage(flat, 2, 0.0252, 1)
	require.NoError(t, err)

	// daily fee 0.0252/252 = 0.0001, times leverage 2
	assert.InDelta(t, 1-0.0002, sim.Values[1], tol)
	assert.InDelta(t, (1-0.0002)*(1-0.0002), sim.Values[2], tol)
}

func TestSimulateLeverage_Inverse(t *testing.T) {
	sim, err := SimulateLeverage(daily(t, "X", 100, 110), -1, 0, 1)
	require.NoError(t, err)
	assert.InDelta(t, 0.9, sim.Values[1], tol)
}

func TestSimulateLeverage_NoClamp(t *testing.T) {
	// A 50% drop at 3x leverage is a -150% day.
	sim, err := SimulateLeverage(daily(t, "X", 100, 50), 3, 0, 1)
	require.NoError(t, err)
	assert.InDelta(t, -0.5, sim.Values[1], tol)
}

func TestSimulateLeverage_SinglePoint(t *testing.T) {
	sim, err := SimulateLeverage(daily(t, "X", 42), 3, 0.01, 5)
	require.NoError(t, err)
	assert.Equal(t, []float64{5}, sim.Values)

	_, err = SimulateLeverage(daily(t, "X"), 3, 0, 1)
	assert.ErrorIs(t, err, ErrInsufficientData)
}
