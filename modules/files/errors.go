package files

import (
	"errors"
	"net/http"

	"github.com/dmitrymomot/filevault/handler"
	"github.com/dmitrymomot/filevault/pkg/file"
	filesvc "github.com/dmitrymomot/filevault/svc/files"
	"github.com/dmitrymomot/filevault/svc/users"
)

var (
	ErrFileNotFound      = handler.NewHTTPError(http.StatusNotFound, "file_not_found")
	ErrUserNotFound      = handler.NewHTTPError(http.StatusNotFound, "user_not_found")
	ErrPermissionDenied  = handler.NewHTTPError(http.StatusForbidden, "permission_denied")
	ErrNoEmails          = handler.NewHTTPError(http.StatusBadRequest, "no_emails")
	ErrCannotRemoveOwner = handler.NewHTTPError(http.StatusUnprocessableEntity, "cannot_remove_owner")
	ErrConcurrentUpdate  = handler.NewHTTPError(http.StatusConflict, "concurrent_update")
	ErrFileTooLarge      = handler.NewHTTPError(http.StatusRequestEntityTooLarge, "file_too_large")
	ErrEmptyFile         = handler.NewHTTPError(http.StatusBadRequest, "empty_file")
)

// httpError maps file service errors to their HTTP form. The service's
// messages are user-facing, so they are passed through.
func httpError(err error) error {
	var target handler.HTTPError
	switch {
	case errors.Is(err, filesvc.ErrPermissionDenied):
		target = ErrPermissionDenied
	case errors.Is(err, filesvc.ErrFileNotFound):
		target = ErrFileNotFound
	case errors.Is(err, users.ErrUserNotFound):
		target = ErrUserNotFound
	case errors.Is(err, filesvc.ErrNoEmails):
		target = ErrNoEmails
	case errors.Is(err, filesvc.ErrCannotRemoveOwner):
		target = ErrCannotRemoveOwner
	case errors.Is(err, filesvc.ErrConcurrentUpdate):
		target = ErrConcurrentUpdate
	case errors.Is(err, file.ErrFileTooLarge):
		target = ErrFileTooLarge
	case errors.Is(err, file.ErrEmptyFile):
		target = ErrEmptyFile
	default:
		return err
	}
	return target.WithMessage(err.Error())
}
