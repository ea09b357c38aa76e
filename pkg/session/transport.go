package session

import (
	"net/http"
	"strings"
	"time"

	"github.com/dmitrymomot/filevault/pkg/cookie"
)

// Transport moves the session token between client and server.
type Transport interface {
	GetToken(r *http.Request) (string, error)
	SetToken(w http.ResponseWriter, token string, ttl time.Duration)
	ClearToken(w http.ResponseWriter)
}

// CookieTransport stores the token in a signed, HTTP-only cookie.
type CookieTransport struct {
	cookies *cookie.Manager
	name    string
}

// NewCookieTransport returns a cookie transport using cookie name.
func NewCookieTransport(cookies *cookie.Manager, name string) *CookieTransport {
	return &CookieTransport{cookies: cookies, name: name}
}

func (t *CookieTransport) GetToken(r *http.Request) (string, error) {
	token, err := t.cookies.GetSigned(r, t.name)
	if err != nil || token == "" {
		return "", ErrSessionNotFound
	}
	return token, nil
}

func (t *CookieTransport) SetToken(w http.ResponseWriter, token string, ttl time.Duration) {
	t.cookies.SetSigned(w, t.name, token, cookie.WithMaxAge(int(ttl.Seconds())))
}

func (t *CookieTransport) ClearToken(w http.ResponseWriter) {
	t.cookies.Delete(w, t.name)
}

// HeaderTransport reads "Authorization: Bearer <token>" for API clients.
// The token is returned to the client in the response body, so SetToken
// and ClearToken only emit a hint header.
type HeaderTransport struct{}

func (HeaderTransport) GetToken(r *http.Request) (string, error) {
	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok || strings.TrimSpace(token) == "" {
		return "", ErrSessionNotFound
	}
	return strings.TrimSpace(token), nil
}

func (HeaderTransport) SetToken(w http.ResponseWriter, token string, _ time.Duration) {
	w.Header().Set("X-Session-Token", token)
}

func (HeaderTransport) ClearToken(http.ResponseWriter) {}

// CompositeTransport reads from the first transport that has a token and
// writes to all of them.
type CompositeTransport []Transport

func (c CompositeTransport) GetToken(r *http.Request) (string, error) {
	for _, t := range c {
		if token, err := t.GetToken(r); err == nil {
			return token, nil
		}
	}
	return "", ErrSessionNotFound
}

func (c CompositeTransport) SetToken(w http.ResponseWriter, token string, ttl time.Duration) {
	for _, t := range c {
		t.SetToken(w, token, ttl)
	}
}

func (c CompositeTransport) ClearToken(w http.ResponseWriter) {
	for _, t := range c {
		t.ClearToken(w)
	}
}
