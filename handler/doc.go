// Package handler turns typed request handlers into http.HandlerFuncs.
//
// A HandlerFunc receives a request struct filled by binders (see package
// binder) and returns a Response. Errors from binding, from the handler via
// JSONError, and from rendering are all classified the same way:
// HTTPError keeps its status and key, ValidationError and
// validator.ValidationErrors become 422 with per-field details, binder
// failures become 400, 413 or 415, and anything else is a 500.
//
//	r.Patch("/files/{id}", handler.Wrap(renameFile,
//		handler.WithBinders[renameRequest](
//			binder.Path(chi.URLParam),
//			binder.JSON(),
//		),
//		handler.WithErrorHandler[renameRequest](errorHandler),
//	))
//
// Every body uses the JSONResponse envelope: {"data", "meta", "error"}.
package handler
