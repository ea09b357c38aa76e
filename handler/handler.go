package handler

import (
	"errors"
	"net/http"

	"github.com/dmitrymomot/filevault/binder"
)

// HandlerFunc handles a request already bound into R.
//
//	getFile := func(ctx handler.Context, req fileRequest) handler.Response {
//		d, err := files.Get(ctx, auth.GetUserFromContext(ctx), req.ID)
//		if err != nil {
//			return handler.JSONError(err)
//		}
//		return handler.JSON(d)
//	}
//	r.Get("/files/{id}", handler.Wrap(getFile,
//		handler.WithBinders[fileRequest](binder.Path(chi.URLParam)),
//	))
type HandlerFunc[R any] func(ctx Context, req R) Response

// Response renders itself to the client.
type Response interface {
	Render(w http.ResponseWriter, r *http.Request) error
}

// Bind fills v from the request.
type Bind func(r *http.Request, v any) error

// ErrorHandler reports bind and render failures to the client.
type ErrorHandler func(ctx Context, err error)

// Decorator wraps a HandlerFunc. The first decorator passed to Wrap is the outermost.
type Decorator[R any] func(HandlerFunc[R]) HandlerFunc[R]

type wrapped[R any] struct {
	binders    []Bind
	onError    ErrorHandler
	decorators []Decorator[R]
}

// WrapOption configures Wrap.
type WrapOption[R any] func(*wrapped[R])

// WithBinders runs binders in order. A binder returning
// binder.ErrBinderNotApplicable is skipped.
func WithBinders[R any](binders ...Bind) WrapOption[R] {
	return func(w *wrapped[R]) { w.binders = append(w.binders, binders...) }
}

// WithErrorHandler replaces the default JSON error handler. Nil is ignored.
func WithErrorHandler[R any](h ErrorHandler) WrapOption[R] {
	return func(w *wrapped[R]) {
		if h != nil {
			w.onError = h
		}
	}
}

func WithDecorators[R any](decorators ...Decorator[R]) WrapOption[R] {
	return func(w *wrapped[R]) { w.decorators = append(w.decorators, decorators...) }
}

// Wrap turns h into an http.HandlerFunc: it binds R, calls h and renders
// the returned Response.
func Wrap[R any](h HandlerFunc[R], opts ...WrapOption[R]) http.HandlerFunc {
	cfg := &wrapped[R]{onError: NewErrorHandler(nil)}
	for _, opt := range opts {
		opt(cfg)
	}
	for i := len(cfg.decorators) - 1; i >= 0; i-- {
		h = cfg.decorators[i](h)
	}

	return func(w http.ResponseWriter, r *http.Request) {
		ctx := NewContext(w, r)

		var req R
		for _, bind := range cfg.binders {
			err := bind(r, &req)
			if err != nil && !errors.Is(err, binder.ErrBinderNotApplicable) {
				cfg.onError(ctx, err)
				return
			}
		}

		resp := h(ctx, req)
		if resp == nil {
			cfg.onError(ctx, ErrNilResponse)
			return
		}
		if err := resp.Render(w, r); err != nil {
			cfg.onError(ctx, err)
		}
	}
}
