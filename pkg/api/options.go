package api

import (
	"context"
	"log"
	"net/http"
)

// Options configures the handler.
type Options struct {
	// Guard runs before every request. A non-nil error rejects it with 403,
	// or with the status of an HTTPError.
	Guard func(*http.Request) error
	// OpenAPI produces the document served at /openapi.json. The route is
	// not registered when nil.
	OpenAPI func(context.Context) ([]byte, error)
	Logger  *log.Logger
}

type OptionFn func(*Options)

func NewOptions(fns ...OptionFn) Options {
	var opts Options
	for _, fn := range fns {
		if fn != nil {
			fn(&opts)
		}
	}
	return opts
}

func WithGuard(guard func(*http.Request) error) OptionFn {
	return func(o *Options) { o.Guard = guard }
}

func WithOpenAPI(document func(context.Context) ([]byte, error)) OptionFn {
	return func(o *Options) { o.OpenAPI = document }
}

func WithLogger(logger *log.Logger) OptionFn {
	return func(o *Options) { o.Logger = logger }
}
