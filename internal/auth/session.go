package auth

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"strings"
	"time"
)

const (
	CookieName    = "neurostamp_session"
	SessionMaxAge = 7 * 24 * time.Hour
)

type contextKey string

const (
	UserIDKey   contextKey = "user_id"
	StampUIDKey contextKey = "stamp_uid"
	NameKey     contextKey = "name"
)

func SetSessionCookie(w http.ResponseWriter, sessionID, secret string) {
	sig := sign(sessionID, secret)
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    sessionID + "." + sig,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(SessionMaxAge.Seconds()),
	})
}

func ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
}

func GetSessionID(r *http.Request, secret string) (string, bool) {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return "", false
	}
	parts := strings.SplitN(cookie.Value, ".", 2)
	if len(parts) != 2 {
		return "", false
	}
	sessionID, sig := parts[0], parts[1]
	expected := sign(sessionID, secret)
	if !hmac.Equal([]byte(expected), []byte(sig)) {
		return "", false
	}
	return sessionID, true
}

func UserFromContext(ctx context.Context) string {
	v, _ := ctx.Value(UserIDKey).(string)
	return v
}

func StampUIDFromContext(ctx context.Context) string {
	v, _ := ctx.Value(StampUIDKey).(string)
	return v
}

func NameFromContext(ctx context.Context) string {
	v, _ := ctx.Value(NameKey).(string)
	return v
}

func ContextWithUser(ctx context.Context, userID, stampUID, name string) context.Context {
	ctx = context.WithValue(ctx, UserIDKey, userID)
	ctx = context.WithValue(ctx, StampUIDKey, stampUID)
	ctx = context.WithValue(ctx, NameKey, name)
	return ctx
}

func sign(data, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(data))
	return hex.EncodeToString(mac.Sum(nil))
}
