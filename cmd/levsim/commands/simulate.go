package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"levsim/internal/perf"
	"levsim/internal/study"
)

type simulateOptions struct {
	index    string
	etf      string
	from     string
	to       string
	leverage float64
	expense  float64
	initial  float64
}

var simOpts simulateOptions

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Compare an index, an optional leveraged fund and a simulation of it",
	Long: `Simulate a daily-rebalanced leveraged exposure to --index and compare
it with the index and, when --etf is given, with the actual fund.

Example:
  levsim simulate --index SPY --etf UPRO --from 2009-06-25 --leverage 3 --expense 0.0091`,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := customStudy(simOpts)
		if err != nil {
			return err
		}
		out, err := newSinks()
		if err != nil {
			return err
		}
		res, err := newRunner().Run(cmd.Context(), s)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "== %s ==\n", s.Title)
		return out.emit(cmd.Context(), cmd.OutOrStdout(), res)
	},
}

func init() {
	rootCmd.AddCommand(simulateCmd)

	f := simulateCmd.Flags()
	f.StringVar(&simOpts.index, "index", "QQQ", "underlying index ticker (simulation proxy)")
	f.StringVar(&simOpts.etf, "etf", "", "actual leveraged fund ticker to compare against")
	f.StringVar(&simOpts.from, "from", "", "start date, YYYY-MM-DD")
	f.StringVar(&simOpts.to, "to", "", "end date, YYYY-MM-DD (default today)")
	f.Float64Var(&simOpts.leverage, "leverage", 3, "daily leverage multiple, negative for inverse")
	f.Float64Var(&simOpts.expense, "expense", perf.DefaultExpenseRatio, "annual expense ratio as a fraction, e.g. 0.0095")
	f.Float64Var(&simOpts.initial, "initial", perf.DefaultInitialValue, "initial value of the simulation")
	_ = simulateCmd.MarkFlagRequired("from")
}

// customStudy turns simulate flags into a Study.
func customStudy(o simulateOptions) (study.Study, error) {
	start, err := parseDate(o.from)
	if err != nil {
		return study.Study{}, fmt.Errorf("--from: %w", err)
	}
	var end time.Time
	if o.to != "" {
		if end, err = parseDate(o.to); err != nil {
			return study.Study{}, fmt.Errorf("--to: %w", err)
		}
	}
	if o.leverage == 0 {
		return study.Study{}, fmt.Errorf("--leverage must not be zero")
	}

	index := strings.ToUpper(strings.TrimSpace(o.index))
	etf := strings.ToUpper(strings.TrimSpace(o.etf))
	simName := fmt.Sprintf("%s %gx Sim", index, o.leverage)

	names := []string{index}
	if etf != "" {
		names = append(names, etf)
	}
	names = append(names, simName)

	s := study.Study{
		Name:         strings.ToLower(fmt.Sprintf("%s_%gx", index, o.leverage)),
		Title:        "Growth of $1: " + strings.Join(names, " vs "),
		Index:        index,
		ETF:          etf,
		SimName:      simName,
		Start:        start,
		End:          end,
		Leverage:     o.leverage,
		ExpenseRatio: o.expense,
		InitialValue: o.initial,
	}
	return s, s.Validate()
}

func parseDate(s string) (time.Time, error) {
	return time.Parse("2006-01-02", strings.TrimSpace(s))
}
