package binder

import (
	"fmt"
	"net/http"
	"net/url"
	"reflect"
)

// Path binds router path parameters to fields tagged `path:"name"`.
//
//	r.Get("/files/{id}", handler.Wrap(getFile,
//		handler.WithBinders[getFileRequest](binder.Path(chi.URLParam)),
//	))
func Path(extractor func(r *http.Request, key string) string) func(r *http.Request, v any) error {
	return func(r *http.Request, v any) error {
		if extractor == nil {
			return fmt.Errorf("%w: extractor function is nil", ErrInvalidPath)
		}

		rv, err := structValue(v)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidPath, err)
		}

		values := url.Values{}
		rt := rv.Type()
		for i := range rv.NumField() {
			name, skip := parseFieldTag(rt.Field(i), "path")
			if skip || !rv.Field(i).CanSet() {
				continue
			}
			if val := extractor(r, name); val != "" {
				if unescaped, err := url.PathUnescape(val); err == nil {
					val = unescaped
				}
				values.Set(name, val)
			}
		}
		return bindValues(rv, "path", values, ErrInvalidPath)
	}
}

func structValue(v any) (reflect.Value, error) {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return reflect.Value{}, fmt.Errorf("target must be a non-nil pointer")
	}
	rv = rv.Elem()
	if rv.Kind() != reflect.Struct {
		return reflect.Value{}, fmt.Errorf("target must be a pointer to struct")
	}
	return rv, nil
}
