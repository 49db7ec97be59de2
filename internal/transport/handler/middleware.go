package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/kkkatsube/picc/internal/session"
)

type ctxKey int

const userIDKey ctxKey = 0

// Authenticate resolves the bearer token and stores the user id on the
// request context. No token or an expired one is a uniform 401.
func (h *Handler) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			writeError(w, "Unauthenticated", http.StatusUnauthorized)
			return
		}

		userID, err := h.sessions.UserID(r.Context(), token)
		if err != nil {
			if errors.Is(err, session.ErrNoSession) {
				writeError(w, "Unauthenticated", http.StatusUnauthorized)
			} else {
				storageError(w, err)
			}
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userIDKey, userID)))
	})
}

func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(auth, prefix) {
		return ""
	}
	return strings.TrimSpace(auth[len(prefix):])
}

func userID(r *http.Request) int64 {
	id, _ := r.Context().Value(userIDKey).(int64)
	return id
}
