package store

import (
	"context"
	"net/http"
)

type Option func(*Options)

type Options struct {
	Location string
	Index    string
	ApiKey   string
	Client   *http.Client
	Context  context.Context
}

func WithLocation(loc string) Option {
	return func(o *Options) {
		o.Location = loc
	}
}

func WithIndex(index string) Option {
	return func(o *Options) {
		o.Index = index
	}
}

func WithApiKey(apiKey string) Option {
	return func(o *Options) {
		o.ApiKey = apiKey
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
