package commands

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"levsim/internal/scheduler"
	"levsim/internal/server"
	"levsim/internal/study"
	"levsim/internal/telegram"
)

var servePort string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve study reports and charts over HTTP",
	Long: `Start the HTTP server.

Endpoints:
  GET  /healthz
  GET  /api/studies
  GET  /api/studies/{name}
  GET  /api/studies/{name}/{growth|drawdown}.png
  POST /telegram/webhook   (when TELEGRAM_BOT_TOKEN and TELEGRAM_WEBHOOK_URL are set)

Every request fetches prices and recomputes the study.

With PUBLISH_SCHEDULE set (a cron expression such as "30 16 * * 1-5",
evaluated in PUBLISH_TIMEZONE), the studies in PUBLISH_STUDIES (default all)
are also posted to TELEGRAM_CHAT_ID on that schedule.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&servePort, "port", "", "listen port (default $PORT or 9095)")
}

func runServe(cmd *cobra.Command, args []string) error {
	if servePort != "" {
		cfg.Port = servePort
	}
	runner := newRunner()

	var (
		webhook http.HandlerFunc
		pub     *telegram.Publisher
	)
	if cfg.TelegramToken != "" && (cfg.TelegramWebhookURL != "" || cfg.PublishSchedule != "") {
		api, err := telegram.Connect(cfg.TelegramToken, log)
		if err != nil {
			return err
		}
		pub = telegram.NewPublisherWithSender(api, cfg.TelegramChatID, log)
		if cfg.TelegramWebhookURL != "" {
			if err := telegram.SetWebhook(api, cfg.TelegramWebhookURL); err != nil {
				return err
			}
			log.WithField("url", cfg.TelegramWebhookURL).Info("telegram: webhook set")
			webhook = telegram.NewBot(pub, runner, log).WebhookHandler
		}
	}

	if cfg.PublishSchedule != "" {
		sched, err := newPublishScheduler(runner, pub)
		if err != nil {
			return err
		}
		sched.Start()
		defer sched.Stop()
	}

	srv := server.New(":"+cfg.Port, server.NewRouter(runner, webhook, log), log)
	errc := make(chan error, 1)
	go func() { errc <- srv.Start() }()

	select {
	case err := <-errc:
		return err
	case <-cmd.Context().Done():
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}

func newPublishScheduler(runner *study.Runner, pub *telegram.Publisher) (*scheduler.Scheduler, error) {
	if pub == nil || cfg.TelegramChatID == 0 {
		return nil, fmt.Errorf("PUBLISH_SCHEDULE needs TELEGRAM_BOT_TOKEN and TELEGRAM_CHAT_ID")
	}
	loc, err := time.LoadLocation(cfg.PublishTimezone)
	if err != nil {
		return nil, fmt.Errorf("PUBLISH_TIMEZONE: %w", err)
	}
	studies, err := selectStudies(cfg.PublishStudies)
	if err != nil {
		return nil, err
	}

	sched := scheduler.New(loc, log)
	for _, s := range studies {
		job := &scheduler.PublishJob{Study: s, Spec: cfg.PublishSchedule, Runner: runner, Publisher: pub}
		if err := sched.AddJob(job); err != nil {
			return nil, err
		}
	}
	return sched, nil
}
