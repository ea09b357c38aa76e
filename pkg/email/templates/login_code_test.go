package templates_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/filevault/pkg/email/templates"
)

func TestLoginCode(t *testing.T) {
	t.Parallel()

	t.Run("with name", func(t *testing.T) {
		t.Parallel()
		html, err := templates.Render(context.Background(), templates.LoginCode("Alice", "123456", 15*time.Minute))
		require.NoError(t, err)
		assert.Contains(t, html, "Hello Alice,")
		assert.Contains(t, html, "123456")
		assert.Contains(t, html, "15 minutes")
	})

	t.Run("escapes name", func(t *testing.T) {
		t.Parallel()
		html, err := templates.Render(context.Background(), templates.LoginCode("<b>x</b>", "1", time.Minute))
		require.NoError(t, err)
		assert.NotContains(t, html, "<b>x</b>")
		assert.Contains(t, html, "&lt;b&gt;")
	})

	t.Run("anonymous", func(t *testing.T) {
		t.Parallel()
		html, err := templates.Render(context.Background(), templates.LoginCode("", "654321", 15*time.Minute))
		require.NoError(t, err)
		assert.Contains(t, html, "<p>Hello,</p>")
	})
}
