package binder

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"path/filepath"
	"reflect"
)

// DefaultMaxMemory is how much of a multipart form is held in memory.
// Larger parts spill to temporary files.
const DefaultMaxMemory = 10 << 20

// FileUpload is an uploaded multipart file. The content is not read until Open.
type FileUpload struct {
	Filename string
	Size     int64
	Header   textproto.MIMEHeader

	header *multipart.FileHeader
}

// ContentType returns the declared part type, falling back to the extension.
func (f *FileUpload) ContentType() string {
	if ct := f.Header.Get("Content-Type"); ct != "" {
		if mediaType, _, err := mime.ParseMediaType(ct); err == nil {
			return mediaType
		}
	}
	return mime.TypeByExtension(filepath.Ext(f.Filename))
}

// Open returns a reader over the file content.
func (f *FileUpload) Open() (io.ReadCloser, error) {
	if f.header == nil {
		return nil, ErrMissingFile
	}
	return f.header.Open()
}

var fileUploadType = reflect.TypeFor[FileUpload]()

// File binds multipart files to FileUpload or *FileUpload fields tagged
// `file:"name"`, plus plain fields tagged `form:"name"`. The whole body is
// capped at maxBody bytes. Non-multipart requests are not applicable.
func File(maxBody int64) func(r *http.Request, v any) error {
	return func(r *http.Request, v any) error {
		if mediaTypeOf(r) != "multipart/form-data" {
			return ErrBinderNotApplicable
		}

		rv, err := structValue(v)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidMultipart, err)
		}

		if maxBody > 0 {
			r.Body = http.MaxBytesReader(nil, r.Body, maxBody)
		}
		if err := r.ParseMultipartForm(DefaultMaxMemory); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				return fmt.Errorf("%w: limit is %d bytes", ErrRequestTooLarge, tooLarge.Limit)
			}
			return fmt.Errorf("%w: %v", ErrInvalidMultipart, err)
		}

		if err := bindValues(rv, "form", r.MultipartForm.Value, ErrInvalidMultipart); err != nil {
			return err
		}

		rt := rv.Type()
		for i := range rv.NumField() {
			field := rv.Field(i)
			sf := rt.Field(i)
			name, skip := parseFieldTag(sf, "file")
			if skip || !field.CanSet() {
				continue
			}
			headers := r.MultipartForm.File[name]
			if len(headers) == 0 {
				continue
			}
			upload := FileUpload{
				Filename: headers[0].Filename,
				Size:     headers[0].Size,
				Header:   headers[0].Header,
				header:   headers[0],
			}
			switch sf.Type {
			case fileUploadType:
				field.Set(reflect.ValueOf(upload))
			case reflect.PointerTo(fileUploadType):
				field.Set(reflect.ValueOf(&upload))
			default:
				return fmt.Errorf("%w: field %s must be FileUpload or *FileUpload", ErrInvalidMultipart, sf.Name)
			}
		}
		return nil
	}
}
