package embedder

import (
	"context"
	"net/http"
)

type Option func(*Options)

type Options struct {
	ApiKey    string
	Model     string
	Location  string
	InputType string
	Client    *http.Client
	Context   context.Context
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

// WithInputType distinguishes document embeddings from query embeddings
// for providers whose models are asymmetric.
func WithInputType(inputType string) Option {
	return func(o *Options) {
		o.InputType = inputType
	}
}

func WithClient(client *http.Client) Option {
	return func(o *Options) {
		o.Client = client
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
