package study

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Study describes one comparison between an index, an optional leveraged
// fund that tracks it, and an optional simulation of that fund built from
// the index.
type Study struct {
	Name  string `json:"name"`
	Title string `json:"title"`

	// Index is the underlying ticker; it is also the simulation proxy.
	Index string `json:"index"`
	// ETF is the actual leveraged fund, when one exists for the window.
	ETF string `json:"etf,omitempty"`
	// SimName labels the simulated series. Empty disables the simulation.
	SimName string `json:"sim_name,omitempty"`
	// HideIndex leaves the index out of charts and the report.
	HideIndex bool `json:"hide_index,omitempty"`

	Start time.Time `json:"start"`
	// End is inclusive; zero means today.
	End time.Time `json:"end,omitempty"`

	Leverage     float64 `json:"leverage"`
	ExpenseRatio float64 `json:"expense_ratio"`
	// InitialValue seeds the simulation; zero means 1.
	InitialValue float64 `json:"initial_value,omitempty"`
}

// Validate reports the first problem with s, if any.
func (s Study) Validate() error {
	switch {
	case strings.TrimSpace(s.Index) == "":
		return fmt.Errorf("study %q: index ticker is required", s.Name)
	case s.Start.IsZero():
		return fmt.Errorf("study %q: start date is required", s.Name)
	case !s.End.IsZero() && !s.End.After(s.Start):
		return fmt.Errorf("study %q: end %s is not after start %s", s.Name, s.End.Format("2006-01-02"), s.Start.Format("2006-01-02"))
	case s.HideIndex && s.ETF == "" && s.SimName == "":
		return fmt.Errorf("study %q: nothing to compare", s.Name)
	case s.InitialValue < 0:
		return fmt.Errorf("study %q: initial value must not be negative", s.Name)
	}
	return nil
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// TQQQ targets 3x the daily return of the Nasdaq-100 (tracked by QQQ) with a
// 0.95% expense ratio.
var presets = map[string]Study{
	"inception": {
		Name:  "inception",
		Title: "Growth of $1: QQQ vs TQQQ",
		Index: "QQQ",
		ETF:   "TQQQ",
		Start: date(2010, 2, 9),
	},
	"tracking": {
		Name:         "tracking",
		Title:        "Growth of $1: TQQQ vs TQQQ Sim",
		Index:        "QQQ",
		ETF:          "TQQQ",
		SimName:      "TQQQ Sim",
		HideIndex:    true,
		Start:        date(2010, 2, 9),
		Leverage:     3,
		ExpenseRatio: 0.0095,
	},
	"hypothetical": {
		Name:         "hypothetical",
		Title:        "Growth of $1: QQQ vs TQQQ Sim",
		Index:        "QQQ",
		SimName:      "TQQQ Sim",
		Start:        date(2007, 6, 1),
		Leverage:     3,
		ExpenseRatio: 0.0095,
	},
}

// Presets returns the built-in studies sorted by name.
func Presets() []Study {
	out := make([]Study, 0, len(presets))
	for _, s := range presets {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Lookup returns the preset called name.
func Lookup(name string) (Study, bool) {
	s, ok := presets[strings.ToLower(strings.TrimSpace(name))]
	return s, ok
}

// PresetNames returns the preset names in order.
func PresetNames() []string {
	var names []string
	for _, s := range Presets() {
		names = append(names, s.Name)
	}
	return names
}
