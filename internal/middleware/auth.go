package middleware

import (
	"net/http"

	"github.com/royalbikeclub/royalbike/internal/auth"
	"github.com/royalbikeclub/royalbike/internal/store"
)

// SessionCookieName is the cookie carrying the opaque session token.
const SessionCookieName = "royalbike_session"

// RequireAuth validates the session cookie against an authenticated session
// row and populates AuthContext. Awaiting-OTP sessions do not count: the
// identity is not trusted until the code is verified.
func RequireAuth(sessionStore *store.SessionStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(SessionCookieName)
			if err != nil || cookie.Value == "" {
				http.Redirect(w, r, "/login", http.StatusSeeOther)
				return
			}

			sess, err := sessionStore.GetByToken(cookie.Value)
			if err != nil || sess == nil || !sess.Authenticated() {
				http.Redirect(w, r, "/login", http.StatusSeeOther)
				return
			}

			ac := auth.AuthContext{
				UserID:    *sess.UserID,
				Email:     sess.Email,
				IsAdmin:   sess.IsAdmin,
				SessionID: sess.ID,
			}

			ctx := auth.WithAuth(r.Context(), ac)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin checks that the authenticated user carries the admin role. The
// role is resolved once at OTP verification and read only from the context here.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !auth.IsAdmin(r.Context()) {
			http.Error(w, "Access Denied", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}
