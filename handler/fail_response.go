package handler

import "net/http"

type failResponse struct {
	err     error
	handler ErrorHandler
}

func (f failResponse) Render(w http.ResponseWriter, r *http.Request) error {
	f.handler(NewContext(w, r), f.err)
	return nil
}

// Fail renders err through h, which both logs and writes it. A nil h uses
// NewErrorHandler with the default logger.
func Fail(err error, h ErrorHandler) Response {
	if h == nil {
		h = NewErrorHandler(nil)
	}
	return failResponse{err: err, handler: h}
}
