// Package binder fills request structs from HTTP requests.
//
// Each binder handles one source, selected by struct tag: JSON bodies,
// `query`, `path` and multipart `file`/`form` fields. A binder that has
// nothing to do for a request returns ErrBinderNotApplicable and the
// handler package moves on to the next one.
package binder
