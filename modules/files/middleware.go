package files

import (
	"net/http"

	"github.com/dmitrymomot/filevault/handler"
	"github.com/dmitrymomot/filevault/svc/auth"
)

// RequireUser rejects requests without a resolved user with 401. It must run
// after auth.Resolver.Middleware.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if auth.GetUserFromContext(r.Context()) == nil {
			_ = handler.JSONError(handler.ErrUnauthorized).Render(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}
