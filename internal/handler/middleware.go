package handler

import (
	"net/http"
	"time"

	"github.com/ypk/neurostamp/internal/auth"
	"github.com/ypk/neurostamp/internal/db"
)

func (h *Handler) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sessionID, ok := auth.GetSessionID(r, h.Cfg.SessionSecret)
		if !ok {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		session, err := db.GetSession(h.DB, sessionID)
		if err != nil || session == nil || session.ExpiresAt.Before(time.Now()) {
			auth.ClearSessionCookie(w)
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		user, err := db.GetUserByID(h.DB, session.UserID)
		if err != nil || user == nil {
			auth.ClearSessionCookie(w)
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}

		ctx := auth.ContextWithUser(r.Context(), user.ID, user.StampUID, user.Username)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
