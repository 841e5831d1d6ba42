package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/w-h-a/insight/completer"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

type ollamaCompleter struct {
	options completer.Options
	client  *http.Client
}

type generateRequest struct {
	Model       string  `json:"model"`
	Prompt      string  `json:"prompt"`
	Temperature float32 `json:"temperature"`
	Stream      bool    `json:"stream"`
}

type generateResponse struct {
	Response string `json:"response"`
}

func (c *ollamaCompleter) Complete(ctx context.Context, prompt string, temperature float32) (string, error) {
	endpoint := fmt.Sprintf("%s/api/generate", strings.TrimRight(c.options.Location, "/"))

	bs, err := json.Marshal(generateRequest{
		Model:       c.options.Model,
		Prompt:      prompt,
		Temperature: temperature,
		Stream:      false,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		endpoint,
		bytes.NewReader(bs),
	)
	if err != nil {
		return "", err
	}

	req.Header.Add("Content-Type", "application/json")
	req.Header.Add("Accept", "application/json")

	rsp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: ollama at %s: %v", completer.ErrUnavailable, endpoint, err)
	}
	defer rsp.Body.Close()

	if rsp.StatusCode >= 400 {
		return "", fmt.Errorf("%w: ollama at %s: status %s", completer.ErrUnavailable, endpoint, rsp.Status)
	}

	var res generateResponse

	if err := json.NewDecoder(rsp.Body).Decode(&res); err != nil {
		return "", fmt.Errorf("%w: ollama at %s: non-json response: %v", completer.ErrUnavailable, endpoint, err)
	}

	result := strings.TrimSpace(res.Response)
	if len(result) == 0 {
		return "", fmt.Errorf("%w: ollama at %s: empty response", completer.ErrUnavailable, endpoint)
	}

	return result, nil
}

func NewCompleter(opts ...completer.Option) completer.Completer {
	options := completer.NewOptions(opts...)

	c := &ollamaCompleter{
		options: options,
	}

	client := &http.Client{
		Transport: otelhttp.NewTransport(http.DefaultTransport),
		Timeout:   options.Timeout,
	}

	c.client = client

	return c
}
