package finance

import (
	"bytes"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"levsim/internal/series"
)

var pngMagic = []byte{0x89, 'P', 'N', 'G'}

func testSeries(t *testing.T, name string, values ...float64) series.Series {
	t.Helper()
	dates := make([]time.Time, len(values))
	for i := range values {
		dates[i] = day(2020, 1, 1).AddDate(0, 0, i)
	}
	s, err := series.New(name, dates, values)
	require.NoError(t, err)
	return s
}

func TestGoChartsRenderer_Render(t *testing.T) {
	r := NewGoChartsRenderer(0, 0)
	assert.Equal(t, 1000, r.Width)
	assert.Equal(t, 600, r.Height)

	img, err := r.Render(Chart{
		Title:    "Growth of $1",
		Subtitle: "QQQ vs TQQQ Sim",
		Series: []series.Series{
			testSeries(t, "QQQ", 1, 1.01, 0.99, 1.05, 1.1),
			testSeries(t, "TQQQ Sim", 1, 1.03, 0.97, 1.15, 1.3),
		},
	})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(img, pngMagic), "expected PNG output")
}

func TestGoChartsRenderer_NegativeValues(t *testing.T) {
	img, err := NewGoChartsRenderer(800, 400).Render(Chart{
		Title:  "Drawdown",
		Series: []series.Series{testSeries(t, "QQQ", 0, -5, -12.5, -3, 0)},
	})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(img, pngMagic))
}

func TestGoChartsRenderer_Errors(t *testing.T) {
	r := NewGoChartsRenderer(800, 400)

	_, err := r.Render(Chart{Title: "empty"})
	assert.Error(t, err)

	_, err = r.Render(Chart{Series: []series.Series{testSeries(t, "A", 1)}})
	assert.Error(t, err)

	_, err = r.Render(Chart{Series: []series.Series{
		testSeries(t, "A", 1, 2, 3),
		testSeries(t, "B", 1, 2),
	}})
	assert.ErrorContains(t, err, "align")

	_, err = r.Render(Chart{Series: []series.Series{testSeries(t, "A", math.NaN(), 2, 3)}})
	assert.ErrorContains(t, err, "non-finite")
}
