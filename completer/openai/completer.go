package openai

import (
	"context"
	"fmt"

	"github.com/sashabaranov/go-openai"
	"github.com/w-h-a/insight/completer"
)

type openAICompleter struct {
	options completer.Options
	client  *openai.Client
}

func (c *openAICompleter) Complete(ctx context.Context, prompt string, temperature float32) (string, error) {
	req := openai.ChatCompletionRequest{
		Model:       c.options.Model,
		Temperature: temperature,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
	}

	rsp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("%w: openai model %s: %v", completer.ErrUnavailable, c.options.Model, err)
	}

	if len(rsp.Choices) == 0 || len(rsp.Choices[0].Message.Content) == 0 {
		return "", fmt.Errorf("%w: openai model %s: no response", completer.ErrUnavailable, c.options.Model)
	}

	return rsp.Choices[0].Message.Content, nil
}

func NewCompleter(opts ...completer.Option) completer.Completer {
	options := completer.NewOptions(opts...)

	c := &openAICompleter{
		options: options,
	}

	client := openai.NewClient(options.ApiKey)

	c.client = client

	return c
}
