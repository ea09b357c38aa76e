package binder

import (
	"fmt"
	"mime"
	"net/http"
	"net/url"
	"reflect"
	"strconv"
	"strings"
)

func mediaTypeOf(r *http.Request) string {
	ct := r.Header.Get("Content-Type")
	if ct == "" {
		return ""
	}
	mediaType, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return strings.TrimSpace(strings.SplitN(ct, ";", 2)[0])
	}
	return mediaType
}

func bindToStruct(v any, tag string, values url.Values, baseErr error) error {
	rv, err := structValue(v)
	if err != nil {
		return fmt.Errorf("%w: %v", baseErr, err)
	}
	return bindValues(rv, tag, values, baseErr)
}

func bindValues(rv reflect.Value, tag string, values url.Values, baseErr error) error {
	rt := rv.Type()
	for i := range rv.NumField() {
		field := rv.Field(i)
		sf := rt.Field(i)
		if !field.CanSet() {
			continue
		}
		name, skip := parseFieldTag(sf, tag)
		if skip {
			continue
		}
		vals, ok := values[name]
		if !ok || len(vals) == 0 {
			continue
		}
		if err := setFieldValue(field, sf.Type, vals); err != nil {
			return fmt.Errorf("%w: field %s: %v", baseErr, name, err)
		}
	}
	return nil
}

// parseFieldTag returns the parameter name for the field and whether to
// skip it. Fields without the tag are skipped.
func parseFieldTag(sf reflect.StructField, tag string) (string, bool) {
	raw, ok := sf.Tag.Lookup(tag)
	if !ok || raw == "-" {
		return "", true
	}
	name, _, _ := strings.Cut(raw, ",")
	if name == "" {
		name = sf.Name
	}
	return name, false
}

func setFieldValue(field reflect.Value, typ reflect.Type, vals []string) error {
	switch typ.Kind() {
	case reflect.Pointer:
		ptr := reflect.New(typ.Elem())
		if err := setFieldValue(ptr.Elem(), typ.Elem(), vals); err != nil {
			return err
		}
		field.Set(ptr)
		return nil
	case reflect.Slice:
		var items []string
		for _, v := range vals {
			for part := range strings.SplitSeq(v, ",") {
				if part = strings.TrimSpace(part); part != "" {
					items = append(items, part)
				}
			}
		}
		slice := reflect.MakeSlice(typ, len(items), len(items))
		for i, item := range items {
			if err := setScalar(slice.Index(i), typ.Elem().Kind(), item); err != nil {
				return err
			}
		}
		field.Set(slice)
		return nil
	default:
		return setScalar(field, typ.Kind(), vals[0])
	}
}

func setScalar(field reflect.Value, kind reflect.Kind, value string) error {
	switch kind {
	case reflect.String:
		field.SetString(value)
	case reflect.Bool:
		if value == "" {
			field.SetBool(false)
			return nil
		}
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid bool %q", value)
		}
		field.SetBool(b)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(value, 10, field.Type().Bits())
		if err != nil {
			return fmt.Errorf("invalid integer %q", value)
		}
		field.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(value, 10, field.Type().Bits())
		if err != nil {
			return fmt.Errorf("invalid unsigned integer %q", value)
		}
		field.SetUint(n)
	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(value, field.Type().Bits())
		if err != nil {
			return fmt.Errorf("invalid float %q", value)
		}
		field.SetFloat(f)
	default:
		return fmt.Errorf("unsupported field type %s", kind)
	}
	return nil
}
