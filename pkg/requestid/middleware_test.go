package requestid_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/filevault/pkg/requestid"
)

func TestMiddleware(t *testing.T) {
	t.Parallel()

	run := func(header string) (string, string) {
		var inCtx string
		h := requestid.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			inCtx = requestid.FromContext(r.Context())
		}))
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if header != "" {
			req.Header.Set(requestid.Header, header)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return inCtx, rec.Header().Get(requestid.Header)
	}

	t.Run("keeps valid inbound id", func(t *testing.T) {
		t.Parallel()
		ctxID, respID := run("abc-123_X")
		assert.Equal(t, "abc-123_X", ctxID)
		assert.Equal(t, "abc-123_X", respID)
	})

	t.Run("generates id when missing", func(t *testing.T) {
		t.Parallel()
		ctxID, respID := run("")
		require.NotEmpty(t, ctxID)
		assert.Equal(t, ctxID, respID)
	})

	t.Run("replaces malformed id", func(t *testing.T) {
		t.Parallel()
		ctxID, _ := run("bad id; drop")
		assert.NotEqual(t, "bad id; drop", ctxID)

		ctxID, _ = run(strings.Repeat("a", 200))
		assert.Len(t, ctxID, 36)
	})
}
