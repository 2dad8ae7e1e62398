package series

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"
)

var (
	ErrLengthMismatch = errors.New("dates and values length mismatch")
	ErrUnordered      = errors.New("dates must be strictly increasing")
	ErrNoOverlap      = errors.New("not enough overlapping dates")
)

// Series is an ordered, date-indexed sequence of values.
type Series struct {
	Name   string
	Dates  []time.Time
	Values []float64
}

// New validates and copies dates and values into a Series.
func New(name string, dates []time.Time, values []float64) (Series, error) {
	if len(dates) != len(values) {
		return Series{}, fmt.Errorf("%s: %w (%d vs %d)", name, ErrLengthMismatch, len(dates), len(values))
	}
	for i := 1; i < len(dates); i++ {
		if !dates[i].After(dates[i-1]) {
			return Series{}, fmt.Errorf("%s: %w at index %d (%s after %s)", name, ErrUnordered, i,
				dates[i].Format("2006-01-02"), dates[i-1].Format("2006-01-02"))
		}
	}
	d := make([]time.Time, len(dates))
	copy(d, dates)
	v := make([]float64, len(values))
	copy(v, values)
	return Series{Name: name, Dates: d, Values: v}, nil
}

func (s Series) Len() int { return len(s.Values) }

// First returns the first date and value. It panics on an empty series.
func (s Series) First() (time.Time, float64) { return s.Dates[0], s.Values[0] }

// Last returns the last date and value. It panics on an empty series.
func (s Series) Last() (time.Time, float64) {
	n := len(s.Values) - 1
	return s.Dates[n], s.Values[n]
}

// At returns the date and value at index i.
func (s Series) At(i int) (time.Time, float64) { return s.Dates[i], s.Values[i] }

// Rename returns a copy sharing the same data under another name.
func (s Series) Rename(name string) Series {
	s.Name = name
	return s
}

// WithValues returns a new series on the same dates carrying vals.
// vals must have the same length as s.
func (s Series) WithValues(vals []float64) Series {
	d := make([]time.Time, len(s.Dates))
	copy(d, s.Dates)
	return Series{Name: s.Name, Dates: d, Values: vals}
}

// FillNaN returns a copy with every NaN replaced by v.
func (s Series) FillNaN(v float64) Series {
	out := make([]float64, len(s.Values))
	for i, x := range s.Values {
		if math.IsNaN(x) {
			x = v
		}
		out[i] = x
	}
	return s.WithValues(out)
}

// Align intersects the dates of all inputs and returns copies restricted to
// the common dates, in input order.
func Align(list ...Series) ([]Series, error) {
	if len(list) == 0 {
		return nil, ErrNoOverlap
	}
	count := map[int64]int{}
	for _, s := range list {
		for _, d := range s.Dates {
			count[d.Unix()]++
		}
	}
	common := make([]int64, 0, len(count))
	for t, c := range count {
		if c == len(list) {
			common = append(common, t)
		}
	}
	if len(common) < 2 {
		return nil, ErrNoOverlap
	}
	sort.Slice(common, func(i, j int) bool { return common[i] < common[j] })
	keep := make(map[int64]struct{}, len(common))
	for _, t := range common {
		keep[t] = struct{}{}
	}

	out := make([]Series, 0, len(list))
	for _, s := range list {
		dates := make([]time.Time, 0, len(common))
		vals := make([]float64, 0, len(common))
		for i, d := range s.Dates {
			if _, ok := keep[d.Unix()]; ok {
				dates = append(dates, d)
				vals = append(vals, s.Values[i])
			}
		}
		out = append(out, Series{Name: s.Name, Dates: dates, Values: vals})
	}
	return out, nil
}
