package web

import (
	"bytes"
	"embed"
	"encoding/json"
	"html/template"
	"log/slog"
	"net/http"
	"strings"

	"github.com/starford/vitrine/internal/auth"
	"github.com/starford/vitrine/internal/models"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.New("").Funcs(template.FuncMap{
	"uploadURL": func(name string) string { return uploadsPrefix + name },
	"thumbURL":  func(name string) string { return thumbsPrefix + name },
	"telURL":    func(phone string) template.URL { return template.URL("tel:" + dialable(phone, true)) },
	"waURL":     func(phone string) string { return "https://wa.me/" + dialable(phone, false) },
}).ParseFS(templateFS, "templates/*.html"))

// dialable keeps the digits of a phone number, and a leading + when plus is set.
func dialable(phone string, plus bool) string {
	var b strings.Builder
	for i, c := range strings.TrimSpace(phone) {
		switch {
		case c >= '0' && c <= '9':
			b.WriteRune(c)
		case c == '+' && i == 0 && plus:
			b.WriteRune(c)
		}
	}
	return b.String()
}

type indexPage struct {
	Doc *models.Document
}

type loginPage struct {
	Flashes []auth.Flash
}

type dashboardPage struct {
	Doc       *models.Document
	Flashes   []auth.Flash
	NavAligns []string
}

// render executes a template into a buffer so that a failure can still
// produce a clean 500.
func render(w http.ResponseWriter, name string, data any) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		slog.Error("template render failed", slog.String("template", name), slog.String("error", err.Error()))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		slog.Error("json encode failed", slog.String("error", err.Error()))
	}
}
