package handler

import (
	"context"
	"net/http"
	"time"
)

// Context is a context.Context bound to one HTTP exchange. Services take it
// as a plain context.Context; handlers can reach the writer when a call
// has to set cookies.
type Context interface {
	context.Context
	Request() *http.Request
	ResponseWriter() http.ResponseWriter
}

// NewContext creates a Context for the request.
func NewContext(w http.ResponseWriter, r *http.Request) Context {
	return exchange{w: w, r: r}
}

type exchange struct {
	w http.ResponseWriter
	r *http.Request
}

func (e exchange) Request() *http.Request              { return e.r }
func (e exchange) ResponseWriter() http.ResponseWriter { return e.w }
func (e exchange) Deadline() (time.Time, bool)         { return e.r.Context().Deadline() }
func (e exchange) Done() <-chan struct{}               { return e.r.Context().Done() }
func (e exchange) Err() error                          { return e.r.Context().Err() }
func (e exchange) Value(key any) any                   { return e.r.Context().Value(key) }
