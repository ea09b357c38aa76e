package binder

import "net/http"

// Query binds URL query parameters to fields tagged `query:"name"`.
// Slices accept repeated parameters or a comma-separated list.
func Query() func(r *http.Request, v any) error {
	return func(r *http.Request, v any) error {
		return bindToStruct(v, "query", r.URL.Query(), ErrInvalidQuery)
	}
}
