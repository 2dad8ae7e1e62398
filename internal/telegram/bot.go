package telegram

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"levsim/internal/logger"
	"levsim/internal/study"
)

var (
	// /study NAME
	reStudy   = regexp.MustCompile(`^/study(?:@[\w_]+)?\s+([A-Za-z0-9_-]+)$`)
	reStudies = regexp.MustCompile(`^/studies(?:@[\w_]+)?$`)
	reHelp    = regexp.MustCompile(`^/(help|start)(?:@[\w_]+)?$`)
)

// StudyRunner runs one study.
type StudyRunner interface {
	Run(ctx context.Context, s study.Study) (*study.Result, error)
}

// Bot answers study commands received through a webhook.
type Bot struct {
	pub     *Publisher
	runner  StudyRunner
	log     *logger.Logger
	timeout time.Duration
	// dispatch runs a handler after the webhook has been acknowledged.
	dispatch func(func())
}

func NewBot(pub *Publisher, runner StudyRunner, log *logger.Logger) *Bot {
	if log == nil {
		log = logger.Nop()
	}
	return &Bot{
		pub:      pub,
		runner:   runner,
		log:      log,
		timeout:  2 * time.Minute,
		dispatch: func(f func()) { go f() },
	}
}

// SetWebhook points the bot's updates at webhookURL.
func SetWebhook(api *tgbotapi.BotAPI, webhookURL string) error {
	webhook, err := tgbotapi.NewWebhook(webhookURL)
	if err != nil {
		return err
	}
	if _, err := api.Request(webhook); err != nil {
		return fmt.Errorf("telegram: set webhook: %w", err)
	}
	return nil
}

// WebhookHandler is registered at /telegram/webhook.
func (b *Bot) WebhookHandler(w http.ResponseWriter, r *http.Request) {
	var update tgbotapi.Update
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		http.Error(w, "bad update", http.StatusBadRequest)
		return
	}
	if m := update.Message; m != nil && m.Chat != nil {
		b.log.WithFields(map[string]interface{}{"chat_id": m.Chat.ID, "text": m.Text}).Debug("webhook: message")
		b.dispatch(func() {
			ctx, cancel := context.WithTimeout(context.Background(), b.timeout)
			defer cancel()
			b.HandleMessage(ctx, m)
		})
	} else {
		b.log.Debug("webhook: non-message update received")
	}
	w.WriteHeader(http.StatusOK)
}

// HandleMessage runs the command in m, if any, and replies to its chat.
func (b *Bot) HandleMessage(ctx context.Context, m *tgbotapi.Message) {
	chatID := m.Chat.ID
	txt := strings.TrimSpace(m.Text)
	switch {
	case reStudy.MatchString(txt):
		name := reStudy.FindStringSubmatch(txt)[1]
		s, ok := study.Lookup(name)
		if !ok {
			b.reply(ctx, chatID, fmt.Sprintf("Unknown study %q. Try /studies.", name))
			return
		}
		b.reply(ctx, chatID, "Running "+s.Name+"…")
		res, err := b.runner.Run(ctx, s)
		if err != nil {
			b.log.WithError(err).WithField("study", s.Name).Warn("telegram: study failed")
			b.reply(ctx, chatID, "Study failed: "+err.Error())
			return
		}
		if err := b.pub.PublishTo(ctx, chatID, res); err != nil {
			b.log.WithError(err).Warn("telegram: publish failed")
		}

	case reStudies.MatchString(txt):
		var lines []string
		for _, s := range study.Presets() {
			lines = append(lines, "- "+s.Name+": "+s.Title)
		}
		b.reply(ctx, chatID, "Studies\n\n"+strings.Join(lines, "\n"))

	case reHelp.MatchString(txt):
		b.reply(ctx, chatID, "Commands\n\n"+
			"- /studies - List the built-in studies\n"+
			"- /study NAME - Run a study and post its charts and CAGRs\n"+
			"\nPrices are Yahoo adjusted closes. Simulations rebalance daily.")
	}
}

func (b *Bot) reply(ctx context.Context, chatID int64, text string) {
	if err := b.pub.send(ctx, chatID, text, ""); err != nil {
		b.log.WithError(err).Warn("telegram: reply failed")
	}
}
