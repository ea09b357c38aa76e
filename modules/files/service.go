// Package files serves the file API: listing, upload, sharing, rename,
// deletion, owner names, storage usage and repair.
package files

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/filevault/binder"
	"github.com/dmitrymomot/filevault/handler"
	"github.com/dmitrymomot/filevault/pkg/logger"
	filesvc "github.com/dmitrymomot/filevault/svc/files"
)

// multipartOverhead is added to the upload limit for the form envelope.
const multipartOverhead = 1 << 20

type Service struct {
	files        *filesvc.Service
	maxUpload    int64
	logger       *slog.Logger
	errorHandler handler.ErrorHandler
}

type Option func(*Service)

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMaxUploadSize caps multipart bodies. It should match the file
// service's FILES_MAX_UPLOAD_SIZE.
func WithMaxUploadSize(n int64) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxUpload = n
		}
	}
}

func NewService(svc *filesvc.Service, opts ...Option) *Service {
	s := &Service{
		files:     svc,
		maxUpload: filesvc.DefaultConfig().MaxUploadSize,
		logger:    logger.Noop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With(logger.Component("files_api"))
	s.errorHandler = handler.NewErrorHandler(s.logger)
	return s
}

// Handle returns a router serving only the file routes.
func (s *Service) Handle() http.Handler {
	r := chi.NewRouter()
	s.Register(r)
	return r
}

// Register adds the file routes to r. Every route needs a signed-in user.
func (s *Service) Register(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(RequireUser)
		s.routes(r)
	})
}

func (s *Service) routes(r chi.Router) {
	r.Route("/files", func(r chi.Router) {
		r.Get("/", handler.Wrap(s.list,
			handler.WithBinders[listRequest](binder.Query()),
			handler.WithErrorHandler[listRequest](s.errorHandler),
		))
		r.Post("/", handler.Wrap(s.upload,
			handler.WithBinders[uploadRequest](binder.File(s.maxUpload+multipartOverhead)),
			handler.WithErrorHandler[uploadRequest](s.errorHandler),
		))
		r.Post("/repair", handler.Wrap(s.repair,
			handler.WithErrorHandler[struct{}](s.errorHandler),
		))

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", handler.Wrap(s.get,
				handler.WithBinders[fileRequest](binder.Path(chi.URLParam)),
				handler.WithErrorHandler[fileRequest](s.errorHandler),
			))
			r.Patch("/", handler.Wrap(s.rename,
				handler.WithBinders[renameRequest](binder.Path(chi.URLParam), binder.JSON()),
				handler.WithErrorHandler[renameRequest](s.errorHandler),
			))
			r.Delete("/", handler.Wrap(s.delete,
				handler.WithBinders[fileRequest](binder.Path(chi.URLParam)),
				handler.WithErrorHandler[fileRequest](s.errorHandler),
			))
			r.Get("/owner", handler.Wrap(s.owner,
				handler.WithBinders[fileRequest](binder.Path(chi.URLParam)),
				handler.WithErrorHandler[fileRequest](s.errorHandler),
			))
			r.Post("/users", handler.Wrap(s.share,
				handler.WithBinders[shareRequest](binder.Path(chi.URLParam), binder.JSON()),
				handler.WithErrorHandler[shareRequest](s.errorHandler),
			))
			r.Delete("/users/{email}", handler.Wrap(s.removeUser,
				handler.WithBinders[removeUserRequest](binder.Path(chi.URLParam)),
				handler.WithErrorHandler[removeUserRequest](s.errorHandler),
			))
			r.Put("/reshare", handler.Wrap(s.toggleReshare,
				handler.WithBinders[reshareRequest](binder.Path(chi.URLParam), binder.JSON()),
				handler.WithErrorHandler[reshareRequest](s.errorHandler),
			))
		})
	})

	r.Get("/usage", handler.Wrap(s.usage,
		handler.WithErrorHandler[struct{}](s.errorHandler),
	))
}

func (s *Service) fail(err error) handler.Response {
	return handler.Fail(httpError(err), s.errorHandler)
}
