package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/aanand-mishra/student-records/internal/auth"
	"github.com/aanand-mishra/student-records/internal/http/handlers/session"
	"github.com/aanand-mishra/student-records/internal/utils/response"
)

type ctxKey struct{}

var errUnauthorized = errors.New("login required")

// RequireSession lets a request through only with a live session cookie.
// API callers get a 401 JSON error; the browser UI is sent to /login.
func RequireSession(sessions *auth.Sessions, api bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, ok := session.FromRequest(r, sessions)
			if !ok {
				slog.Debug("auth: no session", "path", r.URL.Path, "method", r.Method)
				if api {
					response.WriteJSON(w, http.StatusUnauthorized, response.GeneralError(errUnauthorized))
					return
				}
				http.Redirect(w, r, "/login", http.StatusSeeOther)
				return
			}

			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, sess)))
		})
	}
}

// SessionFrom returns the session RequireSession stored in ctx.
func SessionFrom(ctx context.Context) (auth.Session, bool) {
	sess, ok := ctx.Value(ctxKey{}).(auth.Session)
	return sess, ok
}
