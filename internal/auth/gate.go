// Package auth implements the shared-password admin gate on top of a signed
// cookie session.
package auth

import (
	"context"
	"crypto/subtle"
	"log/slog"
	"net/http"

	"github.com/gorilla/sessions"

	"github.com/starford/vitrine/internal/metrics"
)

// Session keys.
const (
	SessionName     = "vitrine-session"
	sessionKeyAdmin = "admin"
)

// Flash kinds.
const (
	FlashOK    = "ok"
	FlashError = "error"
)

// Context is the per-request authentication state handed to admin handlers.
type Context struct {
	Authenticated bool
}

type ctxKey struct{}

// WithContext returns a copy of ctx carrying ac.
func WithContext(ctx context.Context, ac Context) context.Context {
	return context.WithValue(ctx, ctxKey{}, ac)
}

// FromContext returns the auth context stored by RequireAuth. The zero value
// (anonymous) is returned when none is present.
func FromContext(ctx context.Context) Context {
	ac, _ := ctx.Value(ctxKey{}).(Context)
	return ac
}

// Flash is a one-shot notification shown on the next rendered page.
type Flash struct {
	Kind    string
	Message string
}

// Gate checks the admin password and tracks the session flag.
type Gate struct {
	password string
	store    sessions.Store
}

// NewGate creates a gate for the given password backed by store.
func NewGate(password string, store sessions.Store) *Gate {
	return &Gate{password: password, store: store}
}

// NewCookieStore returns a cookie session store signed with secret.
// Sessions last for the browser session only.
func NewCookieStore(secret []byte, secure bool) *sessions.CookieStore {
	store := sessions.NewCookieStore(secret)
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   0,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	return store
}

// session returns the request session. A cookie that fails verification
// yields a fresh, anonymous session.
func (g *Gate) session(r *http.Request) *sessions.Session {
	s, err := g.store.Get(r, SessionName)
	if err != nil {
		slog.Debug("auth: discarding unreadable session", slog.String("error", err.Error()))
	}
	return s
}

// Login sets the admin flag iff password matches. It reports whether it did.
func (g *Gate) Login(w http.ResponseWriter, r *http.Request, password string) (bool, error) {
	if subtle.ConstantTimeCompare([]byte(password), []byte(g.password)) != 1 {
		metrics.LoginAttempts.WithLabelValues("failure").Inc()
		return false, nil
	}
	s := g.session(r)
	s.Values[sessionKeyAdmin] = true
	if err := s.Save(r, w); err != nil {
		return false, err
	}
	metrics.LoginAttempts.WithLabelValues("success").Inc()
	return true, nil
}

// Logout clears the admin flag.
func (g *Gate) Logout(w http.ResponseWriter, r *http.Request) error {
	s := g.session(r)
	delete(s.Values, sessionKeyAdmin)
	return s.Save(r, w)
}

// Resolve reads the auth context from the request session.
func (g *Gate) Resolve(r *http.Request) Context {
	admin, _ := g.session(r).Values[sessionKeyAdmin].(bool)
	return Context{Authenticated: admin}
}

// RequireAuth redirects anonymous requests to loginPath and stores the
// resolved auth context on authenticated ones.
func (g *Gate) RequireAuth(loginPath string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ac := g.Resolve(r)
			if !ac.Authenticated {
				http.Redirect(w, r, loginPath, http.StatusFound)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithContext(r.Context(), ac)))
		})
	}
}

// AddFlash queues a notification for the next page view.
func (g *Gate) AddFlash(w http.ResponseWriter, r *http.Request, kind, msg string) error {
	s := g.session(r)
	s.AddFlash(msg, kind)
	return s.Save(r, w)
}

// Flashes pops every queued notification. The session is only rewritten when
// there was something to pop.
func (g *Gate) Flashes(w http.ResponseWriter, r *http.Request) ([]Flash, error) {
	s := g.session(r)
	var out []Flash
	for _, kind := range []string{FlashError, FlashOK} {
		for _, v := range s.Flashes(kind) {
			if msg, ok := v.(string); ok {
				out = append(out, Flash{Kind: kind, Message: msg})
			}
		}
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out, s.Save(r, w)
}
