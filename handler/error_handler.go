package handler

import (
	"errors"
	"log/slog"
	"maps"
	"net/http"

	"github.com/dmitrymomot/filevault/binder"
	"github.com/dmitrymomot/filevault/pkg/logger"
	"github.com/dmitrymomot/filevault/pkg/requestid"
	"github.com/dmitrymomot/filevault/pkg/validator"
)

// ErrorInfo is the classified form of an error.
type ErrorInfo struct {
	StatusCode int
	Detail     *ErrorDetail
	LogLevel   slog.Level
}

func classifyError(err error) ErrorInfo {
	info := ErrorInfo{
		StatusCode: http.StatusInternalServerError,
		Detail: &ErrorDetail{
			Code:    ErrInternalServerError.Key,
			Message: "An error occurred processing your request",
		},
	}

	var (
		httpErr HTTPError
		valErr  ValidationError
		rules   validator.ValidationErrors
	)
	switch {
	case errors.As(err, &valErr):
		info.StatusCode = http.StatusUnprocessableEntity
		info.Detail = &ErrorDetail{Code: "validation_error", Message: valErr.Error()}
		if len(valErr) > 0 {
			info.Detail.Details = make(map[string][]string, len(valErr))
			maps.Copy(info.Detail.Details, valErr)
		}
	case errors.As(err, &rules):
		info.StatusCode = http.StatusUnprocessableEntity
		info.Detail = &ErrorDetail{Code: "validation_error", Message: rules.Error(), Details: rules.Fields()}
	case errors.As(err, &httpErr):
		info.StatusCode = httpErr.Code
		msg := httpErr.Message
		if msg == "" {
			msg = http.StatusText(httpErr.Code)
		}
		info.Detail = &ErrorDetail{Code: httpErr.Key, Message: msg}
	case errors.Is(err, binder.ErrRequestTooLarge):
		info.StatusCode = http.StatusRequestEntityTooLarge
		info.Detail = &ErrorDetail{Code: ErrRequestEntityTooLarge.Key, Message: err.Error()}
	case errors.Is(err, binder.ErrUnsupportedMediaType), errors.Is(err, binder.ErrMissingContentType):
		info.StatusCode = http.StatusUnsupportedMediaType
		info.Detail = &ErrorDetail{Code: ErrUnsupportedMediaType.Key, Message: err.Error()}
	case errors.Is(err, binder.ErrInvalidJSON), errors.Is(err, binder.ErrInvalidQuery),
		errors.Is(err, binder.ErrInvalidPath), errors.Is(err, binder.ErrInvalidMultipart):
		info.StatusCode = http.StatusBadRequest
		info.Detail = &ErrorDetail{Code: ErrBadRequest.Key, Message: err.Error()}
	}

	info.LogLevel = slog.LevelError
	if info.StatusCode < http.StatusInternalServerError {
		info.LogLevel = slog.LevelWarn
	}
	return info
}

// NewErrorHandler renders errors as JSON envelopes and logs them, at warn
// level for client errors and error level otherwise.
func NewErrorHandler(log *slog.Logger) ErrorHandler {
	if log == nil {
		log = slog.Default()
	}

	return func(ctx Context, err error) {
		r := ctx.Request()
		info := classifyError(err)

		log.LogAttrs(r.Context(), info.LogLevel, "request error",
			logger.RequestID(requestid.FromContext(r.Context())),
			logger.Error(err),
			slog.Int("status_code", info.StatusCode),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			logger.Component("error_handler"),
		)

		resp := build(info.StatusCode, JSONResponse{Error: info.Detail}, nil)
		if renderErr := resp.Render(ctx.ResponseWriter(), r); renderErr != nil {
			log.Error("failed to render error response",
				logger.Error(renderErr),
				logger.Event("render_error"))
		}
	}
}
