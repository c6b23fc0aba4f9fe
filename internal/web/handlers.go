package web

import (
	"errors"
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"

	"github.com/starford/vitrine/internal/apperr"
	"github.com/starford/vitrine/internal/auth"
	"github.com/starford/vitrine/internal/contentservice"
	"github.com/starford/vitrine/internal/media"
	"github.com/starford/vitrine/internal/models"
)

// Flash texts shown to the administrator.
const (
	msgWrongPassword  = "סיסמה שגויה"
	msgSaved          = "ההגדרות נשמרו בהצלחה"
	msgImageDeleted   = "התמונה נמחקה"
	msgUnknownSection = "מקטע לא מוכר בטופס"
)

// Handler holds the page and form handlers.
type Handler struct {
	svc  *contentservice.Service
	gate *auth.Gate
	lib  *media.Library
}

// NewHandler creates a new Handler.
func NewHandler(svc *contentservice.Service, gate *auth.Gate, lib *media.Library) *Handler {
	return &Handler{svc: svc, gate: gate, lib: lib}
}

// Index handles GET /.
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	doc, err := h.svc.Document(r.Context())
	if err != nil {
		serverError(w, r, err)
		return
	}
	render(w, "index.html", indexPage{Doc: doc})
}

// ContentJSON handles GET /content.json.
func (h *Handler) ContentJSON(w http.ResponseWriter, r *http.Request) {
	doc, err := h.svc.Document(r.Context())
	if err != nil {
		serverError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

// LoginForm handles GET /admin/login.
func (h *Handler) LoginForm(w http.ResponseWriter, r *http.Request) {
	flashes, err := h.gate.Flashes(w, r)
	if err != nil {
		serverError(w, r, err)
		return
	}
	render(w, "admin_login.html", loginPage{Flashes: flashes})
}

// Login handles POST /admin/login.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	ok, err := h.gate.Login(w, r, r.PostFormValue("password"))
	if err != nil {
		serverError(w, r, err)
		return
	}
	if ok {
		http.Redirect(w, r, pathDashboard, http.StatusFound)
		return
	}
	h.flashRedirect(w, r, auth.FlashError, msgWrongPassword, pathLogin)
}

// Logout handles GET /admin/logout.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.gate.Logout(w, r); err != nil {
		serverError(w, r, err)
		return
	}
	http.Redirect(w, r, pathIndex, http.StatusFound)
}

// Dashboard handles GET /admin.
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	doc, err := h.svc.Document(r.Context())
	if err != nil {
		serverError(w, r, err)
		return
	}
	flashes, err := h.gate.Flashes(w, r)
	if err != nil {
		serverError(w, r, err)
		return
	}
	render(w, "admin_dashboard.html", dashboardPage{
		Doc:       doc,
		Flashes:   flashes,
		NavAligns: []string{models.NavAlignRight, models.NavAlignCenter, models.NavAlignLeft},
	})
}

// Save handles POST /admin/save.
func (h *Handler) Save(w http.ResponseWriter, r *http.Request) {
	form, err := parseSaveForm(w, r)
	if err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.Is(err, apperr.ErrUnknownSection):
			slog.Warn("save rejected", slog.String("error", err.Error()))
			h.flashRedirect(w, r, auth.FlashError, msgUnknownSection, pathDashboard)
		case errors.As(err, &tooLarge):
			http.Error(w, "request body too large", http.StatusRequestEntityTooLarge)
		default:
			http.Error(w, "invalid form", http.StatusBadRequest)
		}
		return
	}
	defer form.Close()

	if err := h.svc.Save(r.Context(), form.req); err != nil {
		serverError(w, r, err)
		return
	}
	h.flashRedirect(w, r, auth.FlashOK, msgSaved, pathDashboard)
}

// DeleteImage handles POST /admin/delete_image.
func (h *Handler) DeleteImage(w http.ResponseWriter, r *http.Request) {
	full := r.PostFormValue("full")
	thumb := r.PostFormValue("thumb")

	removed, err := h.svc.DeleteGalleryImage(r.Context(), full, thumb)
	if errors.Is(err, apperr.ErrInvalidFilename) {
		http.Error(w, "invalid filename", http.StatusBadRequest)
		return
	}
	if err != nil {
		serverError(w, r, err)
		return
	}
	if !removed {
		slog.Debug("delete_image: no gallery entry matched", slog.String("full", full))
	}
	h.flashRedirect(w, r, auth.FlashOK, msgImageDeleted, pathDashboard)
}

// Upload handles GET /media/uploads/{filename}.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	h.serveFile(w, r, h.lib.UploadPath)
}

// Thumb handles GET /media/thumbs/{filename}.
func (h *Handler) Thumb(w http.ResponseWriter, r *http.Request) {
	h.serveFile(w, r, h.lib.ThumbPath)
}

func (h *Handler) serveFile(w http.ResponseWriter, r *http.Request, resolve func(string) (string, error)) {
	abs, err := resolve(chi.URLParam(r, "filename"))
	if err != nil {
		http.Error(w, "invalid filename", http.StatusBadRequest)
		return
	}
	if fi, statErr := os.Stat(abs); statErr != nil || fi.IsDir() {
		http.NotFound(w, r)
		return
	}
	http.ServeFile(w, r, abs)
}

func (h *Handler) flashRedirect(w http.ResponseWriter, r *http.Request, kind, msg, to string) {
	if err := h.gate.AddFlash(w, r, kind, msg); err != nil {
		serverError(w, r, err)
		return
	}
	http.Redirect(w, r, to, http.StatusFound)
}

// serverError logs err and answers 500. Format and decode failures are
// reported by kind; everything else stays generic.
func serverError(w http.ResponseWriter, r *http.Request, err error) {
	slog.Error("request failed",
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.String("error", err.Error()))

	msg := "internal error"
	switch {
	case errors.Is(err, apperr.ErrFormat):
		msg = "content document is not valid JSON"
	case errors.Is(err, apperr.ErrDecode):
		msg = "uploaded image could not be decoded"
	}
	http.Error(w, msg, http.StatusInternalServerError)
}
