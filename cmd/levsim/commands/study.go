package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"levsim/internal/study"
)

var studyCmd = &cobra.Command{
	Use:   "study [name...]",
	Short: "Run built-in studies (all when no name is given)",
	Long: `Run one or more built-in studies:

  inception     QQQ vs TQQQ since TQQQ's launch
  tracking      TQQQ vs a 3x QQQ simulation with a 0.95% expense ratio
  hypothetical  QQQ vs the same simulation back to 2007, before TQQQ existed`,
	ValidArgs: study.PresetNames(),
	RunE:      runStudies,
}

func init() {
	rootCmd.AddCommand(studyCmd)
}

func runStudies(cmd *cobra.Command, args []string) error {
	studies, err := selectStudies(args)
	if err != nil {
		return err
	}
	out, err := newSinks()
	if err != nil {
		return err
	}
	runner := newRunner()

	w := cmd.OutOrStdout()
	for i, s := range studies {
		res, err := runner.Run(cmd.Context(), s)
		if err != nil {
			return err
		}
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "== %s ==\n", s.Title)
		if err := out.emit(cmd.Context(), w, res); err != nil {
			return err
		}
	}
	return nil
}

func selectStudies(names []string) ([]study.Study, error) {
	if len(names) == 0 {
		return study.Presets(), nil
	}
	out := make([]study.Study, 0, len(names))
	for _, n := range names {
		s, ok := study.Lookup(n)
		if !ok {
			return nil, fmt.Errorf("unknown study %q (available: %s)", n, strings.Join(study.PresetNames(), ", "))
		}
		out = append(out, s)
	}
	return out, nil
}
