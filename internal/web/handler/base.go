package handler

import (
	"bytes"
	"context"
	"net/http"

	"psjudge_frontend/internal/app"
	"psjudge_frontend/internal/builder"
	"psjudge_frontend/internal/domain/repository"
	"psjudge_frontend/internal/web"
	"psjudge_frontend/internal/web/session"
	"psjudge_frontend/internal/web/templates"
)

// ActionFunc is one page action, invoked by the dispatcher. A returned error
// means the request cannot be completed; the dispatcher logs it and answers
// with a generic server error.
type ActionFunc func(ctx context.Context) error

// Handler resolves routing-table action names to actions.
type Handler interface {
	Action(name string) (ActionFunc, bool)
}

// Factory builds a fresh handler for one request.
type Factory func(appCtx *app.Context, w http.ResponseWriter, r *http.Request) Handler

// Factories maps routing-table handler names to their constructors.
func Factories() map[string]Factory {
	return map[string]Factory{
		"main": func(a *app.Context, w http.ResponseWriter, r *http.Request) Handler {
			return NewMainHandler(a, w, r)
		},
		"student": func(a *app.Context, w http.ResponseWriter, r *http.Request) Handler {
			return NewStudentHandler(a, w, r)
		},
		"judge": func(a *app.Context, w http.ResponseWriter, r *http.Request) Handler {
			return NewJudgeHandler(a, w, r)
		},
		"admin": func(a *app.Context, w http.ResponseWriter, r *http.Request) Handler {
			return NewAdminHandler(a, w, r)
		},
	}
}

// Base carries the per-request context shared by all page handlers: the
// process-wide application context, the request/response pair, and
// lazily-built accessors for the repository bundle and the session.
type Base struct {
	app  *app.Context
	w    http.ResponseWriter
	r    *http.Request
	repo *repository.Bundle
	sess *session.Session
}

func NewBase(appCtx *app.Context, w http.ResponseWriter, r *http.Request) Base {
	return Base{app: appCtx, w: w, r: r}
}

func (b *Base) Request() *http.Request {
	return b.r
}

// Repo returns the request's repository bundle, built on first access and
// cached for the request's lifetime. Actions that never touch the database
// never pay for it. A missing factory is a wiring bug, not a runtime
// condition, hence the panic.
func (b *Base) Repo() *repository.Bundle {
	if b.repo == nil {
		if b.app.NewRepos == nil {
			panic("handler: repository factory is not wired")
		}
		b.repo = b.app.NewRepos()
		if b.repo == nil {
			panic("handler: repository factory returned nil bundle")
		}
	}
	return b.repo
}

// Builder returns the process-scoped build backend client; the client is
// stateless, so unlike repositories it is shared rather than per-request.
func (b *Base) Builder() *builder.Client {
	return b.app.Builder
}

// Session returns the session decoded from the request cookie, an empty one
// if the visitor has none.
func (b *Base) Session() *session.Session {
	if b.sess == nil {
		b.sess = b.app.Sessions.FromRequest(b.r)
	}
	return b.sess
}

// SaveSession signs the session into the response cookie and makes it the
// request's current session.
func (b *Base) SaveSession(sess *session.Session) error {
	if err := b.app.Sessions.Save(b.w, sess); err != nil {
		return err
	}
	b.sess = sess
	return nil
}

// Render writes the named page as a 200 text/html response. The template
// executes into a buffer first so a rendering failure never leaks a half
// page. Nil data is a programmer error.
func (b *Base) Render(name string, data interface{}) error {
	if data == nil {
		panic("handler: render called with nil page data")
	}
	var buf bytes.Buffer
	if err := templates.Render(&buf, name, data); err != nil {
		return err
	}
	b.w.Header().Set("Content-Type", "text/html; charset=utf-8")
	b.w.WriteHeader(http.StatusOK)
	_, err := b.w.Write(buf.Bytes())
	return err
}

// Redirect sends the browser to url. Cache-Control defeats caching of the
// 301 across login-state changes.
func (b *Base) Redirect(url string) {
	b.w.Header().Set("Location", url)
	b.w.Header().Set("Cache-Control", "no-store")
	b.w.WriteHeader(http.StatusMovedPermanently)
}

// CheckAuth redirects unauthorized visitors to the login page and reports
// whether the action may proceed. Every authenticated action calls this
// first and early-returns on false; the base does not enforce the
// convention.
func (b *Base) CheckAuth() bool {
	if !b.Session().Authorized {
		b.Redirect(web.LoginURL)
		return false
	}
	return true
}
