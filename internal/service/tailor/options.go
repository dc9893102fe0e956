package tailor

import (
	"context"

	"github.com/w-h-a/tailor/embedder"
	"github.com/w-h-a/tailor/generator"
	"github.com/w-h-a/tailor/store"
)

type Option func(*Options)

type Options struct {
	Embedder embedder.Embedder
	// QueryEmbedder embeds search queries; it defaults to Embedder and
	// exists for providers whose models distinguish query from document
	// input.
	QueryEmbedder embedder.Embedder
	Store         store.VectorStore
	Generator     generator.Generator
	Context       context.Context
}

func WithEmbedder(e embedder.Embedder) Option {
	return func(o *Options) {
		o.Embedder = e
	}
}

func WithQueryEmbedder(e embedder.Embedder) Option {
	return func(o *Options) {
		o.QueryEmbedder = e
	}
}

func WithStore(s store.VectorStore) Option {
	return func(o *Options) {
		o.Store = s
	}
}

func WithGenerator(g generator.Generator) Option {
	return func(o *Options) {
		o.Generator = g
	}
}

func NewOptions(opts ...Option) Options {
	options := Options{
		Context: context.Background(),
	}
	for _, opt := range opts {
		opt(&options)
	}
	return options
}
