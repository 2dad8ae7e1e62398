package telegram

import (
	"context"
	"errors"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"levsim/internal/logger"
	"levsim/internal/report"
	"levsim/internal/study"
)

const (
	maxCaption = 1024
	maxMessage = 4096
)

var ErrNotConfigured = errors.New("telegram: bot token and chat id are required")

// Sender is the part of tgbotapi.BotAPI the publisher uses.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Publisher posts study charts and the text report to one chat.
type Publisher struct {
	api    Sender
	chatID int64
	pres   *report.Presenter
	log    *logger.Logger
}

// NewPublisher connects to the Bot API. Connecting validates the token.
func NewPublisher(token string, chatID int64, log *logger.Logger) (*Publisher, error) {
	if token == "" || chatID == 0 {
		return nil, ErrNotConfigured
	}
	api, err := Connect(token, log)
	if err != nil {
		return nil, err
	}
	return NewPublisherWithSender(api, chatID, log), nil
}

// Connect creates a Bot API client for token.
func Connect(token string, log *logger.Logger) (*tgbotapi.BotAPI, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram: %w", err)
	}
	if log != nil {
		log.WithField("bot", api.Self.UserName).Info("telegram: bot initialized")
	}
	return api, nil
}

func NewPublisherWithSender(api Sender, chatID int64, log *logger.Logger) *Publisher {
	if log == nil {
		log = logger.Nop()
	}
	return &Publisher{api: api, chatID: chatID, pres: report.NewPresenter(), log: log}
}

// Publish sends the growth and drawdown charts, then the report as a
// monospace message, to the configured chat.
func (p *Publisher) Publish(ctx context.Context, res *study.Result) error {
	return p.PublishTo(ctx, p.chatID, res)
}

// PublishTo is Publish for an explicit chat.
func (p *Publisher) PublishTo(ctx context.Context, chatID int64, res *study.Result) error {
	caption := truncate(report.Caption(res), maxCaption)
	charts := []struct {
		kind string
		img  []byte
	}{{"growth", res.GrowthChart}, {"drawdown", res.DrawdownChart}}
	for _, c := range charts {
		if c.img == nil {
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileBytes{
			Name:  res.Study.Name + "_" + c.kind + ".png",
			Bytes: c.img,
		})
		photo.Caption = caption
		if _, err := p.api.Send(photo); err != nil {
			return fmt.Errorf("telegram: send %s chart: %w", c.kind, err)
		}
	}
	return p.send(ctx, chatID, "```\n"+truncate(p.pres.Text(res), maxMessage-8)+"\n```", tgbotapi.ModeMarkdown)
}

// PublishText sends a plain message to the configured chat.
func (p *Publisher) PublishText(ctx context.Context, text string) error {
	return p.send(ctx, p.chatID, truncate(text, maxMessage), "")
}

func (p *Publisher) send(ctx context.Context, chatID int64, text, mode string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = mode
	if _, err := p.api.Send(msg); err != nil {
		return fmt.Errorf("telegram: send message: %w", err)
	}
	p.log.WithField("chat_id", chatID).Debug("telegram: message sent")
	return nil
}

// truncate cuts s to at most n runes.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
