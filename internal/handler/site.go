package handler

import (
	"context"
	"errors"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/CodeCrafters02/ITL-HRMS-2025-sub002/internal/crud"
	"github.com/CodeCrafters02/ITL-HRMS-2025-sub002/internal/middleware"
	"github.com/CodeCrafters02/ITL-HRMS-2025-sub002/internal/model"
	"github.com/CodeCrafters02/ITL-HRMS-2025-sub002/internal/session"
	"github.com/CodeCrafters02/ITL-HRMS-2025-sub002/internal/view"
)

type CookieConfig struct {
	Name   string
	Secure bool
	TTL    time.Duration
}

type SiteOptions struct {
	Views     *view.Renderer
	Store     session.Store
	States    *crud.States
	Cookie    CookieConfig
	MaxUpload int64
	Logger    *slog.Logger
}

// Site carries what every HTML handler needs.
type Site struct {
	views     *view.Renderer
	store     session.Store
	states    *crud.States
	cookie    CookieConfig
	maxUpload int64
	log       *slog.Logger
}

func NewSite(opts SiteOptions) *Site {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	maxUpload := opts.MaxUpload
	if maxUpload <= 0 {
		maxUpload = 20 << 20
	}
	return &Site{
		views:     opts.Views,
		store:     opts.Store,
		states:    opts.States,
		cookie:    opts.Cookie,
		maxUpload: maxUpload,
		log:       log.With("component", "handler"),
	}
}

// page builds the common template data. A pending flash toast is consumed.
func (s *Site) page(r *http.Request, title string, nav []view.NavItem, content any) view.Page {
	p := view.Page{Title: title, Path: r.URL.Path, Nav: markActive(nav, r.URL.Path), Content: content}

	sess, ok := middleware.SessionFromContext(r.Context())
	if !ok || !sess.Authenticated() {
		return p
	}

	p.User = &view.User{Username: sess.Username(), Role: sess.Role()}
	if flash := sess.TakeFlash(); flash != nil {
		p.Toast = &view.Toast{Level: flash.Level, Message: flash.Message}
		if err := s.store.Save(r.Context(), sess); err != nil {
			s.log.Warn("save session after flash", "error", err)
		}
	}
	return p
}

func (s *Site) render(w http.ResponseWriter, r *http.Request, status int, name string, p view.Page) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if err := s.views.Render(w, name, p); err != nil {
		s.log.Error("render page", "page", name, "error", err, "request_id", middleware.RequestID(r.Context()))
	}
}

func (s *Site) renderError(w http.ResponseWriter, r *http.Request, status int, heading, message string) {
	s.render(w, r, status, "error", view.Page{
		Title:   heading,
		Content: view.ErrorPage{Status: status, Heading: heading, Message: message},
	})
}

func (s *Site) NotFound(w http.ResponseWriter, r *http.Request) {
	s.renderError(w, r, http.StatusNotFound, "Page not found", "The page you are looking for does not exist.")
}

// flash queues a toast for the next page the session renders.
func (s *Site) flash(ctx context.Context, sess *session.Session, level, message string) {
	sess.SetFlash(level, message)
	if err := s.store.Save(ctx, sess); err != nil {
		s.log.Warn("save flash", "error", err)
	}
}

// signInAgain ends a session the backend no longer accepts.
func (s *Site) signInAgain(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	if sess != nil {
		s.states.Drop(sess.ID())
		if err := s.store.Delete(r.Context(), sess.ID()); err != nil && !errors.Is(err, model.ErrSessionNotFound) {
			s.log.Warn("delete expired session", "error", err)
		}
	}
	s.clearCookie(w)

	next := r.URL.RequestURI()
	if r.Method != http.MethodGet {
		next = r.URL.Path
	}
	http.Redirect(w, r, middleware.SignInURL(next), http.StatusSeeOther)
}

func (s *Site) setCookie(w http.ResponseWriter, id string) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.cookie.Name,
		Value:    id,
		Path:     "/",
		MaxAge:   int(s.cookie.TTL.Seconds()),
		HttpOnly: true,
		Secure:   s.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *Site) clearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.cookie.Name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func currentSession(r *http.Request) *session.Session {
	sess, _ := middleware.SessionFromContext(r.Context())
	return sess
}

// markActive highlights the most specific entry matching path.
func markActive(nav []view.NavItem, path string) []view.NavItem {
	out := make([]view.NavItem, len(nav))
	best := -1
	for i, item := range nav {
		out[i] = item
		out[i].Active = false
		if item.Href == path || (item.Href != "/" && strings.HasPrefix(path, item.Href+"/")) {
			if best < 0 || len(item.Href) > len(nav[best].Href) {
				best = i
			}
		}
	}
	if best >= 0 {
		out[best].Active = true
	}
	return out
}

// localRedirect returns next when it is a path on this site, otherwise fallback.
func localRedirect(next, fallback string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return fallback
	}
	if u, err := url.Parse(next); err != nil || u.Host != "" {
		return fallback
	}
	return next
}

type formValues struct {
	url.Values
}

// parseForm reads an urlencoded or multipart body bounded by the upload limit.
func (s *Site) parseForm(w http.ResponseWriter, r *http.Request) (formValues, *multipart.Form, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(8 << 20); err != nil {
			return formValues{}, nil, err
		}
		return formValues{r.PostForm}, r.MultipartForm, nil
	}

	if err := r.ParseForm(); err != nil {
		return formValues{}, nil, err
	}
	return formValues{r.PostForm}, nil, nil
}

func formReadMessage(err error) string {
	if isPayloadTooLarge(err) {
		return "The upload is larger than the allowed size"
	}
	return "The form could not be read, please try again"
}

func isPayloadTooLarge(err error) bool {
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		return true
	}

	return strings.Contains(strings.ToLower(err.Error()), "request body too large")
}

func (f formValues) str(name string) string {
	return strings.TrimSpace(f.Get(name))
}

func (f formValues) boolean(name string) bool {
	switch strings.ToLower(f.Get(name)) {
	case "true", "on", "1", "yes":
		return true
	default:
		return false
	}
}

// int64 returns 0 for a blank or malformed value, which fails "required".
func (f formValues) int64(name string) int64 {
	n, err := strconv.ParseInt(strings.TrimSpace(f.Get(name)), 10, 64)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

func itoa(n int64) string {
	if n == 0 {
		return ""
	}
	return strconv.FormatInt(n, 10)
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
