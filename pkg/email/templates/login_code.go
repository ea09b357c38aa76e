package templates

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/a-h/templ"
)

// LoginCodeSubject is the subject line of the one-time code email.
const LoginCodeSubject = "Your FileVault verification code"

// LoginCode renders the one-time code email. name may be empty.
func LoginCode(name, code string, ttl time.Duration) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		greeting := "Hello,"
		if name != "" {
			greeting = "Hello " + name + ","
		}
		_, err := fmt.Fprintf(w, `<!doctype html>
<html><body style="font-family:sans-serif;color:#333">
<p>%s</p>
<p>Use the code below to sign in to FileVault:</p>
<p style="font-size:28px;font-weight:bold;letter-spacing:6px">%s</p>
<p>The code expires in %d minutes. If you did not request it, you can ignore this email.</p>
</body></html>`,
			templ.EscapeString(greeting),
			templ.EscapeString(code),
			int(ttl.Minutes()),
		)
		return err
	})
}
