package study

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"levsim/internal/finance"
	"levsim/internal/logger"
	"levsim/internal/perf"
	"levsim/internal/series"
)

// Clock returns the current time. Injected so that "today" is testable.
type Clock func() time.Time

// Line is one compared series with everything derived from it.
type Line struct {
	Prices   series.Series `json:"-"`
	Growth   series.Series `json:"-"`
	Drawdown series.Series `json:"-"`
	Summary  perf.Summary  `json:"summary"`
}

// Result holds the outcome of running a Study.
type Result struct {
	Study Study  `json:"study"`
	Lines []Line `json:"lines"`
	// Tracking is the actual fund's CAGR minus the simulation's, in
	// percentage points. Nil unless the study has both.
	Tracking *float64 `json:"tracking,omitempty"`

	GrowthChart   []byte `json:"-"`
	DrawdownChart []byte `json:"-"`
}

// Runner fetches prices, applies the transforms and renders charts.
type Runner struct {
	Provider finance.PriceProvider
	// Renderer may be nil, in which case no charts are produced.
	Renderer finance.ChartRenderer
	Clock    Clock
	Log      *logger.Logger
}

func NewRunner(p finance.PriceProvider, r finance.ChartRenderer, log *logger.Logger) *Runner {
	if log == nil {
		log = logger.Nop()
	}
	return &Runner{Provider: p, Renderer: r, Clock: time.Now, Log: log}
}

// Run executes s. All lines are restricted to the dates they share so that
// growth, drawdown and CAGR are comparable.
func (r *Runner) Run(ctx context.Context, s Study) (*Result, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	if s.End.IsZero() {
		now := r.Clock()
		s.End = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	}
	if s.Leverage == 0 {
		s.Leverage = perf.DefaultLeverage
	}
	if s.InitialValue == 0 {
		s.InitialValue = perf.DefaultInitialValue
	}
	log := r.Log.WithFields(map[string]interface{}{
		"study": s.Name,
		"start": s.Start.Format("2006-01-02"),
		"end":   s.End.Format("2006-01-02"),
	})

	index, err := r.Provider.FetchAdjClose(ctx, s.Index, s.Start, s.End)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", s.Index, err)
	}

	var list []series.Series
	if !s.HideIndex {
		list = append(list, index)
	}
	var etf, sim series.Series
	if s.ETF != "" {
		etf, err = r.Provider.FetchAdjClose(ctx, s.ETF, s.Start, s.End)
		if err != nil {
			return nil, fmt.Errorf("fetch %s: %w", s.ETF, err)
		}
		list = append(list, etf)
	}
	if s.SimName != "" {
		sim, err = perf.SimulateLeverage(index, s.Leverage, s.ExpenseRatio, s.InitialValue)
		if err != nil {
			return nil, fmt.Errorf("simulate %s: %w", s.SimName, err)
		}
		sim = sim.Rename(s.SimName)
		list = append(list, sim)
	}

	aligned, err := series.Align(list...)
	if err != nil {
		return nil, fmt.Errorf("study %s: %w", s.Name, err)
	}

	res := &Result{Study: s}
	for _, a := range aligned {
		line, err := buildLine(a)
		if err != nil {
			return nil, err
		}
		res.Lines = append(res.Lines, line)
	}

	if s.ETF != "" && s.SimName != "" {
		td, err := perf.TrackingDifference(etf, sim)
		if err != nil {
			return nil, err
		}
		res.Tracking = &td
	}

	if r.Renderer != nil {
		if err := r.render(res); err != nil {
			return nil, err
		}
	}

	log.WithField("points", aligned[0].Len()).Info("study: complete")
	return res, nil
}

func buildLine(prices series.Series) (Line, error) {
	growth, err := perf.CumulativeReturn(prices)
	if err != nil {
		return Line{}, err
	}
	dd, err := perf.Drawdown(prices)
	if err != nil {
		return Line{}, err
	}
	sum, err := perf.Summarize(prices)
	if err != nil {
		return Line{}, err
	}
	return Line{
		Prices:   prices,
		Growth:   growth.FillNaN(perf.DefaultInitialValue),
		Drawdown: dd,
		Summary:  sum,
	}, nil
}

func (r *Runner) render(res *Result) error {
	growth := make([]series.Series, len(res.Lines))
	dd := make([]series.Series, len(res.Lines))
	for i, l := range res.Lines {
		growth[i] = l.Growth
		dd[i] = l.Drawdown
	}
	first, last := res.Lines[0].Prices.Dates[0], res.Lines[0].Prices.Dates[res.Lines[0].Prices.Len()-1]
	span := first.Format("2006-01-02") + " to " + last.Format("2006-01-02")

	var err error
	res.GrowthChart, err = r.Renderer.Render(finance.Chart{
		Title:    res.Study.Title,
		Subtitle: span,
		Series:   growth,
	})
	if err != nil {
		return fmt.Errorf("growth chart: %w", err)
	}
	res.DrawdownChart, err = r.Renderer.Render(finance.Chart{
		Title:    "Drawdown (%): " + strings.Join(res.Names(), " vs "),
		Subtitle: span,
		Series:   dd,
	})
	if err != nil {
		return fmt.Errorf("drawdown chart: %w", err)
	}
	return nil
}

// Names returns the line names in order.
func (res *Result) Names() []string {
	names := make([]string, len(res.Lines))
	for i, l := range res.Lines {
		names[i] = l.Summary.Name
	}
	return names
}

// WriteCharts saves the rendered charts under dir and returns their paths.
func (res *Result) WriteCharts(dir string) ([]string, error) {
	if res.GrowthChart == nil && res.DrawdownChart == nil {
		return nil, nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	var paths []string
	for _, c := range []struct {
		kind string
		img  []byte
	}{{"growth", res.GrowthChart}, {"drawdown", res.DrawdownChart}} {
		if c.img == nil {
			continue
		}
		p := filepath.Join(dir, fmt.Sprintf("%s_%s.png", fileName(res.Study.Name), c.kind))
		if err := os.WriteFile(p, c.img, 0o644); err != nil {
			return paths, err
		}
		paths = append(paths, p)
	}
	return paths, nil
}

func fileName(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' {
			return r
		}
		return '_'
	}, s)
}
