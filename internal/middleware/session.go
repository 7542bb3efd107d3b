package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"github.com/CodeCrafters02/ITL-HRMS-2025-sub002/internal/model"
	"github.com/CodeCrafters02/ITL-HRMS-2025-sub002/internal/session"
)

type contextKey string

const sessionContextKey contextKey = "session"

// SignInPath is where unauthenticated browsers are sent.
const SignInPath = "/signin"

type SessionMiddleware struct {
	store  session.Store
	cookie string
	log    *slog.Logger
}

func NewSessionMiddleware(store session.Store, cookieName string, log *slog.Logger) *SessionMiddleware {
	if log == nil {
		log = slog.Default()
	}
	return &SessionMiddleware{store: store, cookie: cookieName, log: log.With("component", "session")}
}

// Load attaches the stored session named by the cookie. Requests without a
// usable cookie continue anonymously.
func (m *SessionMiddleware) Load(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(m.cookie)
		if err != nil || cookie.Value == "" {
			next.ServeHTTP(w, r)
			return
		}

		if _, err := uuid.Parse(cookie.Value); err != nil {
			next.ServeHTTP(w, r)
			return
		}

		sess, err := m.store.Get(r.Context(), cookie.Value)
		if err != nil {
			if !errors.Is(err, model.ErrSessionNotFound) {
				m.log.Warn("session lookup failed", "error", err)
			}
			next.ServeHTTP(w, r)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), sess)))
	})
}

// RequireSession rejects requests without an authenticated session: browsers are
// redirected to the sign-in page, API callers get a 401 envelope.
func (m *SessionMiddleware) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, ok := SessionFromContext(r.Context())
		if !ok || !sess.Authenticated() {
			if wantsJSON(r) {
				writeEnvelopeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required")
				return
			}
			http.Redirect(w, r, SignInURL(r.URL.RequestURI()), http.StatusSeeOther)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// RequireRoles must run after RequireSession. A browser with the wrong role is
// sent to its own landing page.
func (m *SessionMiddleware) RequireRoles(allowedRoles ...string) func(http.Handler) http.Handler {
	roleSet := map[string]struct{}{}
	for _, role := range allowedRoles {
		roleSet[strings.ToLower(strings.TrimSpace(role))] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, ok := SessionFromContext(r.Context())
			if !ok || !sess.Authenticated() {
				if wantsJSON(r) {
					writeEnvelopeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required")
					return
				}
				http.Redirect(w, r, SignInURL(r.URL.RequestURI()), http.StatusSeeOther)
				return
			}

			if _, exists := roleSet[strings.ToLower(sess.Role())]; !exists {
				if wantsJSON(r) {
					writeEnvelopeError(w, http.StatusForbidden, "FORBIDDEN", "insufficient permissions")
					return
				}
				landing := model.LandingPath(sess.Role())
				if landing == r.URL.Path {
					writePlain(w, http.StatusForbidden, "insufficient permissions")
					return
				}
				http.Redirect(w, r, landing, http.StatusSeeOther)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func WithSession(ctx context.Context, sess *session.Session) context.Context {
	return context.WithValue(ctx, sessionContextKey, sess)
}

func SessionFromContext(ctx context.Context) (*session.Session, bool) {
	sess, ok := ctx.Value(sessionContextKey).(*session.Session)
	return sess, ok && sess != nil
}

// SignInURL builds the sign-in redirect, remembering a local return path.
func SignInURL(next string) string {
	if next == "" || next == SignInPath || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") {
		return SignInPath
	}
	return SignInPath + "?next=" + url.QueryEscape(next)
}
