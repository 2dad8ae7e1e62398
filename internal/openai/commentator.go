package openai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	oa "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"levsim/internal/report"
	"levsim/internal/study"
)

const DefaultModel = "gpt-4"

const systemPrompt = `You are a concise quantitative analyst. You will receive the results of a leveraged ETF study: CAGRs, total returns, maximum drawdowns and annualized volatility for an index, a leveraged fund and/or a simulation of that fund built from the index with daily rebalancing.

Write a short plain-text note (at most 120 words, no markdown) covering:
- how leverage changed compound growth relative to the index
- volatility decay and the depth of drawdowns
- how closely the simulation tracks the actual fund, when both are present

Use only the numbers given. Do not give investment advice.`

// Commentator writes a short note about a study result with a chat model.
type Commentator struct {
	cli   oa.Client
	model string
	pres  *report.Presenter
}

func NewCommentator(apiKey, model string, opts ...option.RequestOption) *Commentator {
	if model == "" {
		model = DefaultModel
	}
	opts = append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)
	return &Commentator{
		cli:   oa.NewClient(opts...),
		model: model,
		pres:  report.NewPresenter(),
	}
}

func (c *Commentator) Comment(ctx context.Context, res *study.Result) (string, error) {
	userPrompt := fmt.Sprintf("Study: %s\nLeverage: %gx, expense ratio: %.2f%%\n\n%s",
		res.Study.Title, res.Study.Leverage, res.Study.ExpenseRatio*100, c.pres.Text(res))

	resp, err := c.cli.Chat.Completions.New(ctx, oa.ChatCompletionNewParams{
		Model: oa.ChatModel(c.model),
		Messages: []oa.ChatCompletionMessageParamUnion{
			oa.SystemMessage(systemPrompt),
			oa.UserMessage(userPrompt),
		},
		MaxTokens:   oa.Int(400),
		Temperature: oa.Float(0.2),
	})
	if err != nil {
		return "", fmt.Errorf("OpenAI API error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("no response from OpenAI")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
