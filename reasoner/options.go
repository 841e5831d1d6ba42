package reasoner

import (
	"context"

	"github.com/w-h-a/insight/completer"
	"github.com/w-h-a/insight/compressor"
	"github.com/w-h-a/insight/embedder"
)

type Option func(*Options)

type Options struct {
	Completer           completer.Completer
	Compressor          compressor.Compressor
	Embedder            embedder.Embedder
	MaxNewInsights      int
	Temperature         float32
	SimilarityThreshold float64
	Context             context.Context
}

func WithCompleter(c completer.Completer) Option {
	return func(o *Options) {
		o.Completer = c
	}
}

func WithCompressor(c compressor.Compressor) Option {
	return func(o *Options) {
		o.Compressor = c
	}
}

func WithEmbedder(e embedder.Embedder) Option {
	return func(o *Options) {
		o.Embedder = e
	}
}

func WithMaxNewInsights(max int) Option {
	return func(o *Options) {
		o.MaxNewInsights = max
	}
}

func WithTemperature(t float32) Option {
	return func(o *Options) {
		o.Temperature = t
	}
}

func WithSimilarityThreshold(t float64) Option {
	return func(o *Options) {
		o.SimilarityThreshold = t
	}
}

func NewOptions(opts ...Option) Options {
	options := Options{
		MaxNewInsights:      8,
		Temperature:         0.2,
		SimilarityThreshold: 0.88,
		Context:             context.Background(),
	}

	for _, opt := range opts {
		opt(&options)
	}

	return options
}
