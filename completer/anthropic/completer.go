package anthropic

import (
	"context"
	"fmt"
	"strings"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	anthropicopt "github.com/anthropics/anthropic-sdk-go/option"
	"github.com/w-h-a/insight/completer"
)

type anthropicCompleter struct {
	options completer.Options
	client  *anthropic.Client
}

func (c *anthropicCompleter) Complete(ctx context.Context, prompt string, temperature float32) (string, error) {
	req := anthropic.MessageNewParams{
		Model:       anthropic.Model(c.options.Model),
		MaxTokens:   1024,
		Temperature: anthropic.Float(float64(temperature)),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	}

	rsp, err := c.client.Messages.New(ctx, req)
	if err != nil {
		return "", fmt.Errorf("%w: anthropic model %s: %v", completer.ErrUnavailable, c.options.Model, err)
	}

	var b strings.Builder
	for _, content := range rsp.Content {
		if text, ok := content.AsAny().(anthropic.TextBlock); ok {
			b.WriteString(text.Text)
		}
	}

	result := b.String()
	if len(result) == 0 {
		return "", fmt.Errorf("%w: anthropic model %s: no response", completer.ErrUnavailable, c.options.Model)
	}

	return result, nil
}

func NewCompleter(opts ...completer.Option) completer.Completer {
	options := completer.NewOptions(opts...)

	c := &anthropicCompleter{
		options: options,
	}

	client := anthropic.NewClient(
		anthropicopt.WithAPIKey(options.ApiKey),
	)

	c.client = &client

	return c
}
