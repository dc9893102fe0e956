package ingest

import (
	"context"

	"github.com/w-h-a/tailor/embedder"
	"github.com/w-h-a/tailor/store"
)

type Option func(*Options)

type Options struct {
	Source   Source
	Embedder embedder.Embedder
	Store    store.VectorStore
	Owner    string
	MaxChars int
	Workers  int
	Context  context.Context
}

func WithSource(source Source) Option {
	return func(o *Options) {
		o.Source = source
	}
}

func WithEmbedder(e embedder.Embedder) Option {
	return func(o *Options) {
		o.Embedder = e
	}
}

func WithStore(s store.VectorStore) Option {
	return func(o *Options) {
		o.Store = s
	}
}

func WithOwner(owner string) Option {
	return func(o *Options) {
		o.Owner = owner
	}
}

func WithMaxChars(maxChars int) Option {
	return func(o *Options) {
		o.MaxChars = maxChars
	}
}

func WithWorkers(workers int) Option {
	return func(o *Options) {
		o.Workers = workers
	}
}

func NewOptions(opts ...Option) Options {
	options := Options{
		MaxChars: DefaultMaxChars,
		Workers:  4,
		Context:  context.Background(),
	}
	for _, opt := range opts {
		opt(&options)
	}
	return options
}
