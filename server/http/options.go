package http

import (
	"context"

	"github.com/w-h-a/tailor/internal/service/tailor"
)

type Option func(*Options)

type Options struct {
	Address string
	Service *tailor.Service
	Context context.Context
}

func WithAddress(address string) Option {
	return func(o *Options) {
		o.Address = address
	}
}

func WithService(service *tailor.Service) Option {
	return func(o *Options) {
		o.Service = service
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
