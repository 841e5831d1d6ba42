package completer

import (
	"context"
	"time"
)

type Option func(*Options)

type Options struct {
	ApiKey   string
	Model    string
	Location string
	Timeout  time.Duration
	Context  context.Context
}

func WithApiKey(apiKey string) Option {
	return func(o *Options) {
		o.ApiKey = apiKey
	}
}

func WithModel(model string) Option {
	return func(o *Options) {
		o.Model = model
	}
}

func WithLocation(loc string) Option {
	return func(o *Options) {
		o.Location = loc
	}
}

func WithTimeout(timeout time.Duration) Option {
	return func(o *Options) {
		o.Timeout = timeout
	}
}

func NewOptions(opts ...Option) Options {
	options := Options{
		Timeout: 120 * time.Second,
		Context: context.Background(),
	}
	for _, opt := range opts {
		opt(&options)
	}
	return options
}
