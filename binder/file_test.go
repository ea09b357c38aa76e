package binder_test

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/filevault/binder"
)

type uploadRequest struct {
	Title string             `form:"title"`
	File  *binder.FileUpload `file:"file"`
}

func multipartRequest(t *testing.T, filename string, content []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("title", "Quarterly"))
	if filename != "" {
		fw, err := mw.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = fw.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/files", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestFile(t *testing.T) {
	t.Parallel()

	t.Run("binds file and form fields", func(t *testing.T) {
		t.Parallel()
		req := multipartRequest(t, "report.pdf", []byte("%PDF-1.4 content"))

		var got uploadRequest
		require.NoError(t, binder.File(1<<20)(req, &got))
		assert.Equal(t, "Quarterly", got.Title)
		require.NotNil(t, got.File)
		assert.Equal(t, "report.pdf", got.File.Filename)
		assert.Equal(t, int64(16), got.File.Size)

		rc, err := got.File.Open()
		require.NoError(t, err)
		defer rc.Close()
		data, err := io.ReadAll(rc)
		require.NoError(t, err)
		assert.Equal(t, "%PDF-1.4 content", string(data))
	})

	t.Run("missing file leaves field nil", func(t *testing.T) {
		t.Parallel()
		req := multipartRequest(t, "", nil)
		var got uploadRequest
		require.NoError(t, binder.File(1<<20)(req, &got))
		assert.Nil(t, got.File)
	})

	t.Run("body over limit", func(t *testing.T) {
		t.Parallel()
		req := multipartRequest(t, "big.bin", bytes.Repeat([]byte("x"), 4096))
		var got uploadRequest
		assert.ErrorIs(t, binder.File(1024)(req, &got), binder.ErrRequestTooLarge)
	})

	t.Run("json request is not applicable", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest(http.MethodPost, "/files", bytes.NewBufferString(`{}`))
		req.Header.Set("Content-Type", "application/json")
		var got uploadRequest
		assert.ErrorIs(t, binder.File(1024)(req, &got), binder.ErrBinderNotApplicable)
	})
}
