// Package server assembles the portal's HTTP surface: the middleware chain,
// the routing-table dispatcher, and the static file fallback for everything
// the table does not know.
package server

import (
	"log"
	"net/http"
	"time"

	"psjudge_frontend/internal/app"
	"psjudge_frontend/internal/web"
	"psjudge_frontend/internal/web/handler"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

func New(appCtx *app.Context, staticDir string) http.Handler {
	r := chi.NewRouter()

	// Base Middlewares
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Compress(5))
	r.Use(chiMiddleware.Timeout(60 * time.Second))

	// Decode the session cookie into the request context.
	r.Use(appCtx.Sessions.Verifier())

	d := &dispatcher{
		app:       appCtx,
		router:    web.NewRouter(web.DefaultRoutes()),
		factories: handler.Factories(),
		static:    http.FileServer(http.Dir(staticDir)),
	}
	r.Handle("/*", d)

	return r
}

// dispatcher resolves a request path through the routing table, builds the
// named handler, and runs the named action. It is the single place where
// action errors turn into responses: full detail into the log, a generic
// server error to the client.
type dispatcher struct {
	app       *app.Context
	router    *web.Router
	factories map[string]handler.Factory
	static    http.Handler
}

func (d *dispatcher) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	route, ok := d.router.Find(r.URL.Path)
	if !ok {
		d.static.ServeHTTP(w, r)
		return
	}

	factory, ok := d.factories[route.Handler]
	if !ok {
		log.Printf("ERROR: route %q names unknown handler %q", r.URL.Path, route.Handler)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	h := factory(d.app, w, r)
	action, ok := h.Action(route.Action)
	if !ok {
		log.Printf("ERROR: route %q names unknown action %q of handler %q", r.URL.Path, route.Action, route.Handler)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	if err := action(r.Context()); err != nil {
		log.Printf("ERROR: internal error when handling %q: %v", r.URL.Path, err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}
