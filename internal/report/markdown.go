package report

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"

	"levsim/internal/study"
)

// DefaultMarkdownStyle is the glamour style used when none is configured.
const DefaultMarkdownStyle = "dark"

// MarkdownReport formats res as a Markdown document with the same content as
// the plain text report.
func MarkdownReport(res *study.Result) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", res.Study.Title)
	if len(res.Lines) > 0 {
		s := res.Lines[0].Summary
		fmt.Fprintf(&b, "%s to %s (%.2f years)\n\n", s.Start.Format("2006-01-02"), s.End.Format("2006-01-02"), s.Years)
	}

	b.WriteString("## CAGRs\n\n")
	for _, l := range res.Lines {
		fmt.Fprintf(&b, "- **%s**: %.2f%%\n", l.Summary.Name, l.Summary.CAGR)
	}

	b.WriteString("\n## Summary\n\n")
	b.WriteString("| Series | Total | CAGR | Max DD | Vol | Final |\n")
	b.WriteString("|---|--:|--:|--:|--:|--:|\n")
	for _, l := range res.Lines {
		s := l.Summary
		fmt.Fprintf(&b, "| %s | %.2f%% | %.2f%% | %.2f%% | %.2f%% | %s |\n",
			s.Name, s.TotalReturn, s.CAGR, s.MaxDrawdown, s.Volatility, Money(s.Final))
	}

	if res.Tracking != nil {
		fmt.Fprintf(&b, "\nTracking difference (%s - %s): **%+.2f pp/yr**\n",
			res.Study.ETF, res.Study.SimName, *res.Tracking)
	}
	return b.String()
}

// RenderMarkdown renders md for a terminal using a built-in glamour style
// such as "dark", "light", "ascii" or "notty".
func RenderMarkdown(md, style string) (string, error) {
	if style == "" {
		style = DefaultMarkdownStyle
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return "", fmt.Errorf("markdown renderer: %w", err)
	}
	return r.Render(md)
}
