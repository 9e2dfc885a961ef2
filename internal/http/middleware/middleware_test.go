package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aanand-mishra/student-records/internal/auth"
	"github.com/aanand-mishra/student-records/internal/http/handlers/session"
)

func newSessions(t *testing.T) *auth.Sessions {
	t.Helper()
	a, err := auth.NewAuthenticator("dilah", "april")
	require.NoError(t, err)
	return auth.NewSessions(a, time.Hour)
}

func protected(t *testing.T, sessions *auth.Sessions, api bool) http.Handler {
	return RequireSession(sessions, api)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, ok := SessionFrom(r.Context())
		require.True(t, ok)
		_, _ = w.Write([]byte(sess.Username))
	}))
}

func TestRequireSession(t *testing.T) {
	sessions := newSessions(t)
	sess, err := sessions.Login("dilah", "april")
	require.NoError(t, err)

	t.Run("api without cookie", func(t *testing.T) {
		rec := httptest.NewRecorder()
		protected(t, sessions, true).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/students", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "login required")
	})

	t.Run("page without cookie", func(t *testing.T) {
		rec := httptest.NewRecorder()
		protected(t, sessions, false).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/login", rec.Header().Get("Location"))
	})

	t.Run("unknown session", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/students", nil)
		req.AddCookie(&http.Cookie{Name: session.CookieName, Value: "not-a-session"})
		rec := httptest.NewRecorder()
		protected(t, sessions, true).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("live session", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/students", nil)
		req.AddCookie(&http.Cookie{Name: session.CookieName, Value: sess.ID})
		rec := httptest.NewRecorder()
		protected(t, sessions, true).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "dilah", rec.Body.String())
	})
}

func TestLogger_KeepsStatus(t *testing.T) {
	h := Logger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		w.WriteHeader(http.StatusOK)
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)
}

func TestSecurityHeaders(t *testing.T) {
	rec := httptest.NewRecorder()
	SecurityHeaders(http.NotFoundHandler()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
}
