package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CodeCrafters02/ITL-HRMS-2025-sub002/internal/session"
)

const testCookie = "sitedesk_session"

func sessionEcho() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, ok := SessionFromContext(r.Context())
		if !ok {
			_, _ = w.Write([]byte("anonymous"))
			return
		}
		_, _ = w.Write([]byte(sess.Username()))
	})
}

func storedSession(t *testing.T, store session.Store, role string) *session.Session {
	t.Helper()
	sess := session.Create("alice", "access", "refresh", role)
	require.NoError(t, store.Save(context.Background(), sess))
	return sess
}

func TestSessionMiddleware_Load(t *testing.T) {
	store := session.NewMemoryStore(time.Hour)
	sess := storedSession(t, store, "admin")
	mw := NewSessionMiddleware(store, testCookie, nil)
	handler := mw.Load(sessionEcho())

	tests := []struct {
		name   string
		cookie string
		want   string
	}{
		{name: "stored session", cookie: sess.ID(), want: "alice"},
		{name: "no cookie", want: "anonymous"},
		{name: "malformed id", cookie: "../../etc/passwd", want: "anonymous"},
		{name: "unknown id", cookie: "5b0c63bb-6d5b-4c55-9ab0-7a1a1bd2f3f1", want: "anonymous"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/admin", nil)
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: testCookie, Value: tt.cookie})
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Body.String())
		})
	}
}

func TestSessionMiddleware_RequireSession(t *testing.T) {
	mw := NewSessionMiddleware(session.NewMemoryStore(time.Hour), testCookie, nil)
	handler := mw.RequireSession(okHandler())

	t.Run("browser is redirected to sign in", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/services", nil))
		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/signin?next=%2Fadmin%2Fservices", rec.Header().Get("Location"))
	})

	t.Run("api caller gets 401 envelope", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/notifications/devices", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), `"UNAUTHORIZED"`)
	})

	t.Run("invalidated session is rejected", func(t *testing.T) {
		sess := session.Create("alice", "access", "refresh", "admin")
		sess.Invalidate()
		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		req = req.WithContext(WithSession(req.Context(), sess))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusSeeOther, rec.Code)
	})

	t.Run("authenticated passes", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		req = req.WithContext(WithSession(req.Context(), session.Create("alice", "a", "r", "admin")))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestSessionMiddleware_RequireRoles(t *testing.T) {
	mw := NewSessionMiddleware(session.NewMemoryStore(time.Hour), testCookie, nil)
	handler := mw.RequireRoles("master")(okHandler())

	serve := func(path, role string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req = req.WithContext(WithSession(req.Context(), session.Create("bob", "a", "r", role)))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusOK, serve("/master/companies", "MASTER").Code)

	rec := serve("/master/companies", "admin")
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/admin", rec.Header().Get("Location"))

	rec = serve("/api/v1/anything", "employee")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), `"FORBIDDEN"`)
}

func TestSignInURL(t *testing.T) {
	assert.Equal(t, "/signin", SignInURL(""))
	assert.Equal(t, "/signin", SignInURL("//evil.example/x"))
	assert.Equal(t, "/signin", SignInURL("https://evil.example/"))
	assert.Equal(t, "/signin?next=%2Fadmin%3Fpage%3D2", SignInURL("/admin?page=2"))
}
