package handler

import (
	"io/fs"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/csrf"
)

func (h *Handler) Routes(staticFS fs.FS, authRL *RateLimiter) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)

	r.Use(csrf.Protect(
		[]byte(h.Cfg.SessionSecret),
		csrf.Secure(strings.HasPrefix(h.Cfg.BaseURL, "https")),
		csrf.Path("/"),
		csrf.SameSite(csrf.SameSiteLaxMode),
	))

	r.Handle("/static/*", http.StripPrefix("/static/",
		http.FileServer(http.FS(staticFS))))

	// Public routes (rate-limited auth endpoints)
	r.Get("/", h.Home)
	r.Group(func(r chi.Router) {
		r.Use(authRL.Middleware)
		r.Get("/register", h.RegisterForm)
		r.Post("/register", h.RegisterSubmit)
		r.Get("/login", h.LoginForm)
		r.Post("/login", h.LoginSubmit)
	})

	// Authenticated routes
	r.Group(func(r chi.Router) {
		r.Use(h.RequireAuth)
		r.Post("/logout", h.Logout)
		r.Get("/stamp", h.StampForm)
		r.Post("/stamp", h.StampSubmit)
		r.Get("/verify", h.VerifyForm)
		r.Post("/verify", h.VerifySubmit)
		r.Get("/registry", h.RegistryView)
		r.Get("/stamped/{name}", h.StampedDownload)
	})

	return r
}
