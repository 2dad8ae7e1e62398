package finance

import (
	"errors"
	"fmt"
	"math"

	"github.com/vicanso/go-charts/v2"

	"levsim/internal/series"
)

// Chart describes a line chart of one or more series sharing the same dates.
type Chart struct {
	Title    string
	Subtitle string
	Series   []series.Series
}

// ChartRenderer turns a Chart into image bytes.
type ChartRenderer interface {
	Render(c Chart) ([]byte, error)
}

// GoChartsRenderer renders PNG line charts with go-charts.
type GoChartsRenderer struct {
	Width  int
	Height int
}

func NewGoChartsRenderer(width, height int) *GoChartsRenderer {
	if width <= 0 {
		width = 1000
	}
	if height <= 0 {
		height = 600
	}
	return &GoChartsRenderer{Width: width, Height: height}
}

func (r *GoChartsRenderer) Render(c Chart) ([]byte, error) {
	if len(c.Series) == 0 {
		return nil, errors.New("no series provided")
	}
	ref := c.Series[0]
	if ref.Len() < 2 {
		return nil, errors.New("not enough data points")
	}

	values := make([][]float64, 0, len(c.Series))
	names := make([]string, 0, len(c.Series))
	var yMin, yMax float64
	for i, s := range c.Series {
		if s.Len() != ref.Len() {
			return nil, fmt.Errorf("%s: %d points, expected %d (align series first)", s.Name, s.Len(), ref.Len())
		}
		for j, v := range s.Values {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, fmt.Errorf("%s: non-finite value at %s", s.Name, s.Dates[j].Format("2006-01-02"))
			}
			if (i == 0 && j == 0) || v < yMin {
				yMin = v
			}
			if (i == 0 && j == 0) || v > yMax {
				yMax = v
			}
		}
		values = append(values, s.Values)
		names = append(names, s.Name)
	}

	pad := (yMax - yMin) * 0.05
	if pad == 0 {
		pad = math.Max(math.Abs(yMax)*0.05, 0.01)
	}
	if yMin >= 0 && yMin-pad < 0 {
		yMin = 0
	} else {
		yMin -= pad
	}
	yMax += pad

	layout := "2006-01-02"
	if ref.Dates[ref.Len()-1].Sub(ref.Dates[0]).Hours() > 24*365*2 {
		layout = "Jan '06"
	}
	xLabels := make([]string, ref.Len())
	for i, d := range ref.Dates {
		xLabels[i] = d.Format(layout)
	}

	seriesList := charts.NewSeriesListDataFromValues(values, charts.ChartTypeLine)
	for i := range seriesList {
		seriesList[i].Name = names[i]
		seriesList[i].AxisIndex = 0
	}

	painter, err := charts.Render(charts.ChartOption{SeriesList: seriesList},
		charts.TitleTextOptionFunc(c.Title, c.Subtitle),
		charts.XAxisOptionFunc(charts.XAxisOption{Data: xLabels, BoundaryGap: charts.FalseFlag(), SplitNumber: 10}),
		charts.YAxisOptionFunc(charts.YAxisOption{Min: &yMin, Max: &yMax, DivideCount: 5}),
		charts.LegendOptionFunc(charts.LegendOption{Data: names}),
		charts.ThemeOptionFunc(charts.ThemeLight),
		charts.WidthOptionFunc(r.Width),
		charts.HeightOptionFunc(r.Height),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to render chart: %w", err)
	}
	return painter.Bytes()
}
