package report

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/Rhymond/go-money"

	"levsim/internal/study"
)

// Currency of every price series the provider returns.
const Currency = money.USD

// Money formats v in Currency with thousands separators, e.g. "$1,234.50".
func Money(v float64) string {
	return money.NewFromFloat(v, Currency).Display()
}

// Presenter writes a study result as plain text or Markdown.
type Presenter struct {
	// Table appends the per-line summary table after the CAGR block.
	Table bool
	// Markdown renders the report with glamour in MarkdownStyle instead of
	// plain text.
	Markdown      bool
	MarkdownStyle string
}

func NewPresenter() *Presenter { return &Presenter{Table: true} }

// Print writes the CAGR block, the summary table and the tracking
// difference to w.
func (p *Presenter) Print(w io.Writer, res *study.Result) error {
	if p.Markdown {
		out, err := RenderMarkdown(MarkdownReport(res), p.MarkdownStyle)
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, out)
		return err
	}

	if _, err := fmt.Fprintln(w, "CAGRs"); err != nil {
		return err
	}
	for _, l := range res.Lines {
		if _, err := fmt.Fprintf(w, "%s: %.2f%%\n", l.Summary.Name, l.Summary.CAGR); err != nil {
			return err
		}
	}

	if p.Table && len(res.Lines) > 0 {
		fmt.Fprintln(w)
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
		fmt.Fprintln(tw, "\tTotal\tCAGR\tMax DD\tVol\tYears\tFinal\t")
		for _, l := range res.Lines {
			s := l.Summary
			fmt.Fprintf(tw, "%s\t%.2f%%\t%.2f%%\t%.2f%%\t%.2f%%\t%.2f\t%s\t\n",
				s.Name, s.TotalReturn, s.CAGR, s.MaxDrawdown, s.Volatility, s.Years, Money(s.Final))
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}

	if res.Tracking != nil {
		fmt.Fprintln(w)
		if _, err := fmt.Fprintf(w, "Tracking difference (%s - %s): %+.2f pp/yr\n",
			res.Study.ETF, res.Study.SimName, *res.Tracking); err != nil {
			return err
		}
	}
	return nil
}

// Text returns what Print would write.
func (p *Presenter) Text(res *study.Result) string {
	var b strings.Builder
	_ = p.Print(&b, res)
	return b.String()
}

// Caption is a one-line description of res for chart attachments.
func Caption(res *study.Result) string {
	parts := make([]string, 0, len(res.Lines)+1)
	for _, l := range res.Lines {
		parts = append(parts, fmt.Sprintf("%s %.2f%%", l.Summary.Name, l.Summary.CAGR))
	}
	if len(res.Lines) > 0 {
		s := res.Lines[0].Summary
		parts = append(parts, s.Start.Format("2006-01-02")+" to "+s.End.Format("2006-01-02"))
	}
	return res.Study.Title + " • CAGR " + strings.Join(parts, " • ")
}
