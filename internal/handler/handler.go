package handler

import (
	"database/sql"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/csrf"

	"github.com/ypk/neurostamp/internal/auth"
	"github.com/ypk/neurostamp/internal/config"
	"github.com/ypk/neurostamp/internal/keystore"
)

type Handler struct {
	DB        *sql.DB
	Cfg       *config.Config
	Keys      *keystore.Store
	templates map[string]*template.Template
}

func New(database *sql.DB, cfg *config.Config, keys *keystore.Store, templateFS fs.FS) *Handler {
	funcMap := template.FuncMap{
		"formatTime": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.Format("2006-01-02 15:04 UTC")
		},
		"shortenID": func(id string) string {
			if len(id) > 8 {
				return id[:8]
			}
			return id
		},
	}

	// Parse layout template as the base, then clone it per page.
	layoutTmpl := template.Must(
		template.New("layout.html").Funcs(funcMap).ParseFS(templateFS, "layout.html"),
	)
	templates := make(map[string]*template.Template)
	entries, err := fs.ReadDir(templateFS, ".")
	if err != nil {
		panic("read template dir: " + err.Error())
	}
	for _, e := range entries {
		name := e.Name()
		if name == "layout.html" || e.IsDir() {
			continue
		}
		t := template.Must(template.Must(layoutTmpl.Clone()).ParseFS(templateFS, name))
		templates[name] = t
	}

	return &Handler{
		DB:        database,
		Cfg:       cfg,
		Keys:      keys,
		templates: templates,
	}
}

type PageData struct {
	Title         string
	Authenticated bool
	UserName      string
	StampUID      string
	Flash         string
	Error         string
	CSRFField     template.HTML
	Data          interface{}
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, name string, data PageData) {
	t, ok := h.templates[name]
	if !ok {
		slog.Error("template not found", "name", name)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	data.CSRFField = csrf.TemplateField(r)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := t.ExecuteTemplate(w, "layout.html", data); err != nil {
		slog.Error("render template", "name", name, "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

func (h *Handler) renderAuth(w http.ResponseWriter, r *http.Request, name, title string, data interface{}) {
	h.render(w, r, name, PageData{
		Title:         title,
		Authenticated: true,
		UserName:      auth.NameFromContext(r.Context()),
		StampUID:      auth.StampUIDFromContext(r.Context()),
		Data:          data,
	})
}

func (h *Handler) authPage(r *http.Request, title string) PageData {
	return PageData{
		Title:         title,
		Authenticated: true,
		UserName:      auth.NameFromContext(r.Context()),
		StampUID:      auth.StampUIDFromContext(r.Context()),
	}
}
