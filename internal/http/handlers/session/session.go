// Package session handles logging in and out over the JSON API.
package session

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/aanand-mishra/student-records/internal/auth"
	"github.com/aanand-mishra/student-records/internal/logging"
	"github.com/aanand-mishra/student-records/internal/utils/response"
)

// CookieName is the cookie carrying the session ID for both the API and
// the browser UI.
const CookieName = "student_records_session"

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Login handles POST /api/login
//
// Request body (JSON):
//
//	{ "username": "dilah", "password": "april" }
//
// Success response (200 OK), with the session cookie set:
//
//	{ "status": "ok" }
//
// A wrong pair is a 401.
// ─────────────────────────────────────────────────────────────────────────────
func Login(sessions *auth.Sessions) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			if errors.Is(err, io.EOF) {
				err = errors.New("request body is empty")
			}
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
			return
		}

		sess, err := sessions.Login(req.Username, req.Password)
		if err != nil {
			logging.FromContext(r.Context()).Warn("login failed", slog.String("username", req.Username))
			response.WriteJSON(w, http.StatusUnauthorized, response.GeneralError(err))
			return
		}

		SetCookie(w, sess)
		response.WriteJSON(w, http.StatusOK, map[string]string{"status": response.StatusOK})
	}
}

// Logout handles POST /api/logout. It succeeds even without a session.
func Logout(sessions *auth.Sessions) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		End(w, r, sessions)
		response.WriteJSON(w, http.StatusOK, map[string]string{"status": response.StatusOK})
	}
}

// SetCookie hands sess to the client.
func SetCookie(w http.ResponseWriter, sess auth.Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    sess.ID,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// End forgets the request's session and clears its cookie.
func End(w http.ResponseWriter, r *http.Request, sessions *auth.Sessions) {
	if c, err := r.Cookie(CookieName); err == nil {
		sessions.Logout(c.Value)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
	})
}

// FromRequest returns the live session named by the request's cookie.
func FromRequest(r *http.Request, sessions *auth.Sessions) (auth.Session, bool) {
	c, err := r.Cookie(CookieName)
	if err != nil {
		return auth.Session{}, false
	}
	return sessions.Get(c.Value)
}
