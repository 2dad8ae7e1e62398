package commands

import (
	"context"
	"errors"
	"fmt"
	"io"

	"levsim/internal/finance"
	"levsim/internal/openai"
	"levsim/internal/report"
	"levsim/internal/study"
	"levsim/internal/telegram"
)

func newRunner() *study.Runner {
	provider := finance.NewYahooProvider(cfg.YahooBaseURL, cfg.YahooRatePerSec, log)
	var renderer finance.ChartRenderer
	if !noCharts {
		renderer = finance.NewGoChartsRenderer(cfg.ChartWidth, cfg.ChartHeight)
	}
	return study.NewRunner(provider, renderer, log)
}

// sinks holds the optional outputs enabled by flags.
type sinks struct {
	pres        *report.Presenter
	publisher   *telegram.Publisher
	commentator *openai.Commentator
}

func newPresenter() (*report.Presenter, error) {
	pres := report.NewPresenter()
	switch format {
	case "", "text":
	case "markdown", "md":
		pres.Markdown = true
		pres.MarkdownStyle = mdStyle
	default:
		return nil, fmt.Errorf("unknown --format %q (text|markdown)", format)
	}
	return pres, nil
}

func newSinks() (*sinks, error) {
	pres, err := newPresenter()
	if err != nil {
		return nil, err
	}
	s := &sinks{pres: pres}
	if publish {
		p, err := telegram.NewPublisher(cfg.TelegramToken, cfg.TelegramChatID, log)
		if err != nil {
			return nil, err
		}
		s.publisher = p
	}
	if commentary {
		if cfg.OpenAIKey == "" {
			return nil, errors.New("--commentary needs OPENAI_API_KEY")
		}
		s.commentator = openai.NewCommentator(cfg.OpenAIKey, cfg.OpenAIModel)
	}
	return s, nil
}

// emit prints res to w and feeds it to every enabled sink.
func (s *sinks) emit(ctx context.Context, w io.Writer, res *study.Result) error {
	if err := s.pres.Print(w, res); err != nil {
		return err
	}

	paths, err := res.WriteCharts(cfg.OutputDir)
	if err != nil {
		return fmt.Errorf("write charts: %w", err)
	}
	for _, p := range paths {
		log.WithField("path", p).Info("chart saved")
	}

	var note string
	if s.commentator != nil {
		note, err = s.commentator.Comment(ctx, res)
		if err != nil {
			log.WithError(err).Warn("commentary failed")
		} else {
			fmt.Fprintf(w, "\n%s\n", note)
		}
	}

	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, res); err != nil {
			return err
		}
		if note != "" {
			if err := s.publisher.PublishText(ctx, note); err != nil {
				return err
			}
		}
		log.WithField("study", res.Study.Name).Info("published to telegram")
	}
	return nil
}
