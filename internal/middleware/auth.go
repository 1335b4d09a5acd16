package middleware

import (
	"encoding/json"
	"net/http"

	"charityhub/internal/auth"
	"charityhub/internal/session"
)

// SessionCookieName is the cookie carrying the opaque session token.
const SessionCookieName = "charityhub_session"

// RequireAuth resolves the session cookie and populates the request identity.
// Requests without a live session get a 401 JSON body.
func RequireAuth(sessions *session.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ident, ok := ResolveIdentity(r, sessions)
			if !ok {
				unauthenticated(w)
				return
			}

			ctx := auth.WithIdentity(r.Context(), ident)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ResolveIdentity reads the session cookie and resolves it to an identity.
// Used directly by handlers that are reachable without authentication but
// still care who is calling (register, login, session info).
func ResolveIdentity(r *http.Request, sessions *session.Manager) (auth.Identity, bool) {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil || cookie.Value == "" {
		return auth.Identity{}, false
	}
	s := sessions.Resolve(cookie.Value)
	if s == nil {
		return auth.Identity{}, false
	}
	return auth.Identity{Username: s.Username, Role: s.Role}, true
}

func unauthenticated(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"error": "not authenticated"})
}
