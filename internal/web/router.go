// Package web implements the public page and the admin surface of the CMS.
package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/vitrine/internal/auth"
	"github.com/starford/vitrine/internal/contentservice"
	"github.com/starford/vitrine/internal/media"
)

// Route paths used for redirects.
const (
	pathIndex     = "/"
	pathLogin     = "/admin/login"
	pathDashboard = "/admin"

	uploadsPrefix = "/media/uploads/"
	thumbsPrefix  = "/media/thumbs/"
)

// NewRouter creates a chi router with every page and form route mounted.
// events, if non-nil, is mounted at GET /admin/events behind the admin gate.
func NewRouter(svc *contentservice.Service, gate *auth.Gate, lib *media.Library, events http.Handler) chi.Router {
	h := NewHandler(svc, gate, lib)

	r := chi.NewRouter()

	// Public.
	r.Get(pathIndex, h.Index)
	r.Get("/content.json", h.ContentJSON)
	r.Get(uploadsPrefix+"{filename}", h.Upload)
	r.Get(thumbsPrefix+"{filename}", h.Thumb)

	r.Get(pathLogin, h.LoginForm)
	r.Post(pathLogin, h.Login)
	r.Get("/admin/logout", h.Logout)

	// Admin.
	r.Group(func(r chi.Router) {
		r.Use(gate.RequireAuth(pathLogin))
		r.Get(pathDashboard, h.Dashboard)
		r.Post("/admin/save", h.Save)
		r.Post("/admin/delete_image", h.DeleteImage)
		if events != nil {
			r.Get("/admin/events", events.ServeHTTP)
		}
	})

	return r
}
