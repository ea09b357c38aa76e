package file

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

const defaultContentType = "application/octet-stream"

// MaxUploadSize is the largest object accepted by ValidateSize (50 MiB).
const MaxUploadSize int64 = 50 << 20

// Object describes a stored blob.
type Object struct {
	Key         string
	Size        int64
	ContentType string
	URL         string
}

// Storage is a flat key/value blob store.
type Storage interface {
	// Put writes r under key. size may be -1 when unknown.
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (*Object, error)
	// Delete removes the blob stored under key. Returns ErrFileNotFound if it does not exist.
	Delete(ctx context.Context, key string) error
	// Exists reports whether a blob is stored under key.
	Exists(ctx context.Context, key string) (bool, error)
	// URL returns the public URL for key.
	URL(key string) string
}

// Type is the coarse category of a file derived from its extension.
type Type string

const (
	TypeImage    Type = "image"
	TypeDocument Type = "document"
	TypeVideo    Type = "video"
	TypeAudio    Type = "audio"
	TypeOther    Type = "other"
)

var extensionTypes = func() map[string]Type {
	m := make(map[string]Type)
	add := func(t Type, exts ...string) {
		for _, e := range exts {
			m[e] = t
		}
	}
	add(TypeImage, "jpg", "jpeg", "png", "gif", "bmp", "svg", "webp")
	add(TypeDocument,
		"pdf", "doc", "docx", "txt", "xls", "xlsx", "csv", "rtf", "ods", "ppt", "odp",
		"md", "html", "htm", "epub", "pages", "fig", "psd", "ai", "indd", "xd",
		"sketch", "afdesign", "afphoto",
	)
	add(TypeVideo, "mp4", "avi", "mov", "mkv", "webm")
	add(TypeAudio, "mp3", "wav", "ogg", "flac")
	return m
}()

// Extension returns the lowercase extension of name without the dot.
func Extension(name string) string {
	ext := path.Ext(name)
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// TypeOf returns the category for extension ext (with or without a leading dot).
func TypeOf(ext string) Type {
	if t, ok := extensionTypes[strings.ToLower(strings.TrimPrefix(ext, "."))]; ok {
		return t
	}
	return TypeOther
}

// Classify returns the category and extension of a file name.
//
// Example:
//
//	t, ext := file.Classify("Report.PDF") // TypeDocument, "pdf"
func Classify(name string) (Type, string) {
	ext := Extension(name)
	return TypeOf(ext), ext
}

// ValidateSize rejects empty files and files larger than maxBytes.
// A non-positive maxBytes means MaxUploadSize.
func ValidateSize(size, maxBytes int64) error {
	if maxBytes <= 0 {
		maxBytes = MaxUploadSize
	}
	if size == 0 {
		return ErrEmptyFile
	}
	if size > maxBytes {
		return fmt.Errorf("file size %d bytes exceeds %d bytes limit: %w", size, maxBytes, ErrFileTooLarge)
	}
	return nil
}

// sniffLimit is how many leading bytes are inspected by DetectContentType.
const sniffLimit = 3072

// DetectContentType sniffs the MIME type from the leading bytes of r.
// The returned reader yields the full original stream.
func DetectContentType(r io.Reader) (string, io.Reader, error) {
	head := make([]byte, sniffLimit)
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return "", nil, fmt.Errorf("%w: %v", ErrFailedToReadFile, err)
	}
	head = head[:n]
	return mimetype.Detect(head).String(), io.MultiReader(bytes.NewReader(head), r), nil
}

// ObjectKey builds the storage key for a file: "files/<id>/<name>".
func ObjectKey(id, name string) string {
	return path.Join("files", id, name)
}

func cleanKey(key string) (string, error) {
	key = strings.TrimPrefix(strings.ReplaceAll(key, "\\", "/"), "/")
	if key == "" || strings.Contains(key, "..") || strings.Contains(key, "\x00") {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return key, nil
}
