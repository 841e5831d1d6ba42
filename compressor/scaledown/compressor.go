package scaledown

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/w-h-a/insight/compressor"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

type scaledownCompressor struct {
	options compressor.Options
	client  *http.Client
}

func (c *scaledownCompressor) Compress(ctx context.Context, prompt string) (string, error) {
	endpoint := fmt.Sprintf("%s/compress/raw/", strings.TrimRight(c.options.Location, "/"))

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		endpoint,
		strings.NewReader(prompt),
	)
	if err != nil {
		return "", err
	}

	req.Header.Add("x-api-key", c.options.ApiKey)
	req.Header.Add("Content-Type", "text/plain")
	req.Header.Add("Accept", "text/plain")

	rsp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("scaledown at %s: %w", endpoint, err)
	}
	defer rsp.Body.Close()

	if rsp.StatusCode >= 400 {
		return "", fmt.Errorf("scaledown at %s: status %s", endpoint, rsp.Status)
	}

	bs, err := io.ReadAll(rsp.Body)
	if err != nil {
		return "", fmt.Errorf("scaledown at %s: %w", endpoint, err)
	}

	compressed := strings.TrimSpace(string(bs))
	if len(compressed) == 0 {
		return "", fmt.Errorf("scaledown at %s: empty response", endpoint)
	}

	return compressed, nil
}

func NewCompressor(opts ...compressor.Option) compressor.Compressor {
	options := compressor.NewOptions(opts...)

	c := &scaledownCompressor{
		options: options,
	}

	client := &http.Client{
		Transport: otelhttp.NewTransport(http.DefaultTransport),
		Timeout:   options.Timeout,
	}

	c.client = client

	return c
}
