package blob

import (
	"context"
	"net/http"
)

type Option func(*Options)

type Options struct {
	Location  string
	Container string
	SasToken  string
	Client    *http.Client
	Context   context.Context
}

func WithLocation(loc string) Option {
	return func(o *Options) {
		o.Location = loc
	}
}

func WithContainer(container string) Option {
	return func(o *Options) {
		o.Container = container
	}
}

func WithSasToken(token string) Option {
	return func(o *Options) {
		o.SasToken = token
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
