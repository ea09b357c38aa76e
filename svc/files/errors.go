package files

import "errors"

var (
	ErrFileNotFound      = errors.New("file not found")
	ErrPermissionDenied  = errors.New("permission denied")
	ErrNoEmails          = errors.New("Please enter at least one email address")
	ErrCannotRemoveOwner = errors.New("Cannot remove the file owner")
	ErrVersionConflict   = errors.New("file version conflict")
	ErrConcurrentUpdate  = errors.New("file was modified concurrently, please retry")
	ErrInvalidRevocation = errors.New("invalid revocation request")
	ErrStoreNil          = errors.New("files: store is nil")
	ErrBlobStorageNil    = errors.New("files: blob storage is not configured")
)

// PermissionError is a denied action. The message is shown to users as is.
type PermissionError string

func (e PermissionError) Error() string { return string(e) }

func (e PermissionError) Is(target error) bool { return target == ErrPermissionDenied }

const (
	ErrShareDenied  PermissionError = "You don't have permission to share this file"
	ErrRemoveDenied PermissionError = "You don't have permission to remove users from this file"
	ErrToggleDenied PermissionError = "Only the file owner can change sharing permissions"
	ErrDeleteDenied PermissionError = "Only the file owner can delete this file"
)
