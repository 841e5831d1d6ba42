package server

import "context"

type Option func(*Options)

type Options struct {
	Address string
	Context context.Context
}

func WithAddress(addr string) Option {
	return func(o *Options) {
		o.Address = addr
	}
}

func NewOptions(opts ...Option) Options {
	options := Options{
		Address: ":8080",
		Context: context.Background(),
	}

	for _, opt := range opts {
		opt(&options)
	}

	return options
}
