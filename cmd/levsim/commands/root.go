package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"levsim/internal/config"
	"levsim/internal/logger"
	"levsim/internal/report"
)

var (
	cfg config.Config
	log *logger.Logger

	// Global flags
	outputDir  string
	logLevel   string
	noCharts   bool
	publish    bool
	commentary bool
	format     string
	mdStyle    string
)

var rootCmd = &cobra.Command{
	Use:   "levsim",
	Short: "Leveraged ETF simulation and comparison",
	Long: `levsim compares leveraged ETFs with the index they track and with a
daily-rebalanced simulation built from that index.

It fetches adjusted closes from Yahoo Finance, prints CAGRs and a summary
table, and renders growth-of-$1 and drawdown charts.

Examples:
  levsim study
  levsim study tracking --publish
  levsim simulate --index SPY --etf UPRO --from 2009-06-25 --leverage 3 --expense 0.0091
  levsim serve --port 9095`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		cfg = config.Load()
		if logLevel != "" {
			cfg.LogLevel = logLevel
		}
		if outputDir != "" {
			cfg.OutputDir = outputDir
		}
		log = logger.New(cfg)
	},
}

// Execute runs the root command until it returns or the process is
// interrupted.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&outputDir, "output-dir", "o", "", "directory for chart PNGs (default $OUTPUT_DIR or ./charts)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "debug|info|warn|error (default $LOG_LEVEL)")
	rootCmd.PersistentFlags().BoolVar(&noCharts, "no-charts", false, "skip chart rendering")
	rootCmd.PersistentFlags().BoolVar(&publish, "publish", false, "send charts and report to $TELEGRAM_CHAT_ID")
	rootCmd.PersistentFlags().BoolVar(&commentary, "commentary", false, "append a short OpenAI note ($OPENAI_API_KEY)")
	rootCmd.PersistentFlags().StringVar(&format, "format", "text", "report format: text|markdown")
	rootCmd.PersistentFlags().StringVar(&mdStyle, "style", report.DefaultMarkdownStyle, "glamour style for --format markdown (dark|light|ascii|notty)")
}
