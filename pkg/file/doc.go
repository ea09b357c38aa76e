// Package file stores uploaded blobs and classifies files by extension.
//
// Two Storage implementations are provided: S3Storage for Amazon S3 and
// S3-compatible services (MinIO, R2) and LocalStorage for development.
// Both take flat keys such as "files/<id>/<name>" built with ObjectKey.
//
// Usage:
//
//	store, err := file.NewS3Storage(ctx, cfg)
//	if err != nil {
//	    return err
//	}
//	obj, err := store.Put(ctx, file.ObjectKey(id, name), r, size, contentType)
//
// Errors from S3 are classified into package sentinels (ErrFileNotFound,
// ErrAccessDenied, ErrServiceUnavailable...) so callers can use errors.Is.
package file
