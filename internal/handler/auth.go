package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ypk/neurostamp/internal/auth"
	"github.com/ypk/neurostamp/internal/db"
	"github.com/ypk/neurostamp/internal/model"
)

func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	data := PageData{Title: "NeuroStamp"}
	if sessionID, ok := auth.GetSessionID(r, h.Cfg.SessionSecret); ok {
		if session, err := db.GetSession(h.DB, sessionID); err == nil && session != nil && session.ExpiresAt.After(time.Now()) {
			data.Authenticated = true
		}
	}
	h.render(w, r, "index.html", data)
}

func (h *Handler) RegisterForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "register.html", PageData{Title: "Register"})
}

func (h *Handler) RegisterSubmit(w http.ResponseWriter, r *http.Request) {
	username := strings.TrimSpace(r.FormValue("username"))
	password := r.FormValue("password")

	if username == "" || password == "" {
		h.render(w, r, "register.html", PageData{Title: "Register", Error: "Username and password are required."})
		return
	}
	if len(password) < 8 {
		h.render(w, r, "register.html", PageData{Title: "Register", Error: "Password must be at least 8 characters."})
		return
	}

	existing, err := db.GetUserByUsername(h.DB, username)
	if err != nil {
		h.render(w, r, "register.html", PageData{Title: "Register", Error: "Internal error."})
		return
	}
	if existing != nil {
		h.render(w, r, "register.html", PageData{Title: "Register", Error: "That username is taken."})
		return
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		h.render(w, r, "register.html", PageData{Title: "Register", Error: "Internal error."})
		return
	}

	user := &model.User{
		ID:           uuid.New().String(),
		Username:     username,
		PasswordHash: hash,
		// Public stamp identity: short, stable, and opaque. This string is
		// what gets embedded into images and what keys the permutation.
		StampUID: strings.ReplaceAll(uuid.New().String(), "-", "")[:12],
	}
	if err := db.CreateUser(h.DB, user); err != nil {
		h.render(w, r, "register.html", PageData{Title: "Register", Error: "Could not create user."})
		return
	}

	h.startSession(w, r, user)
}

func (h *Handler) LoginForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "login.html", PageData{Title: "Login"})
}

func (h *Handler) LoginSubmit(w http.ResponseWriter, r *http.Request) {
	username := strings.TrimSpace(r.FormValue("username"))
	password := r.FormValue("password")

	user, err := db.GetUserByUsername(h.DB, username)
	if err != nil || user == nil || !auth.CheckPassword(user.PasswordHash, password) {
		h.render(w, r, "login.html", PageData{Title: "Login", Error: "Invalid username or password."})
		return
	}

	h.startSession(w, r, user)
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if sessionID, ok := auth.GetSessionID(r, h.Cfg.SessionSecret); ok {
		db.DeleteSession(h.DB, sessionID)
	}
	auth.ClearSessionCookie(w)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handler) startSession(w http.ResponseWriter, r *http.Request, user *model.User) {
	session := &model.Session{
		ID:        uuid.New().String(),
		UserID:    user.ID,
		ExpiresAt: time.Now().Add(auth.SessionMaxAge),
	}
	if err := db.CreateSession(h.DB, session); err != nil {
		h.render(w, r, "login.html", PageData{Title: "Login", Error: "Internal error."})
		return
	}
	auth.SetSessionCookie(w, session.ID, h.Cfg.SessionSecret)
	http.Redirect(w, r, "/stamp", http.StatusSeeOther)
}
