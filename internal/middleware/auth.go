package middleware

import (
	"log"
	"net/http"

	"github.com/smartvoting/backend/internal/session"
)

// RequireAdmin redirects to the admin login page unless the session carries
// the admin flag.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !session.FromContext(r.Context()).Admin {
			log.Printf("[AUTH] Admin route %s without admin session from %s", r.URL.Path, r.RemoteAddr)
			http.Redirect(w, r, "/admin", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireVoter redirects to face verification unless a voter was bound to
// the session by a successful face match.
func RequireVoter(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !session.FromContext(r.Context()).HasVoter() {
			http.Redirect(w, r, "/face_verify", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}
