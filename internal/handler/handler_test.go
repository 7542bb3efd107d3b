package handler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/CodeCrafters02/ITL-HRMS-2025-sub002/internal/apiclient"
	"github.com/CodeCrafters02/ITL-HRMS-2025-sub002/internal/assets"
	"github.com/CodeCrafters02/ITL-HRMS-2025-sub002/internal/crud"
	"github.com/CodeCrafters02/ITL-HRMS-2025-sub002/internal/event"
	"github.com/CodeCrafters02/ITL-HRMS-2025-sub002/internal/middleware"
	"github.com/CodeCrafters02/ITL-HRMS-2025-sub002/internal/resource"
	"github.com/CodeCrafters02/ITL-HRMS-2025-sub002/internal/session"
	"github.com/CodeCrafters02/ITL-HRMS-2025-sub002/internal/view"
	"github.com/CodeCrafters02/ITL-HRMS-2025-sub002/internal/websocket"
)

const (
	testCookie = "sitedesk_session"
	pushSecret = "s3cret"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

type apiCall struct {
	Method      string
	Path        string
	Query       string
	Auth        string
	ContentType string
	Body        []byte
}

type reply struct {
	status int
	body   string
}

// fakeAPI records every backend request and answers from a table keyed by
// "METHOD /path/". Unknown routes get a 404.
type fakeAPI struct {
	mu     sync.Mutex
	calls  []apiCall
	routes map[string]reply
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	f.mu.Lock()
	f.calls = append(f.calls, apiCall{
		Method:      r.Method,
		Path:        r.URL.Path,
		Query:       r.URL.RawQuery,
		Auth:        r.Header.Get("Authorization"),
		ContentType: r.Header.Get("Content-Type"),
		Body:        body,
	})
	rep, ok := f.routes[r.Method+" "+r.URL.Path]
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"detail":"Not found."}`)
		return
	}
	w.WriteHeader(rep.status)
	_, _ = io.WriteString(w, rep.body)
}

func (f *fakeAPI) on(method, path string, status int, body any) {
	raw, ok := body.(string)
	if !ok {
		data, err := json.Marshal(body)
		if err != nil {
			panic(err)
		}
		raw = string(data)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.routes == nil {
		f.routes = map[string]reply{}
	}
	f.routes[method+" "+path] = reply{status: status, body: raw}
}

func (f *fakeAPI) all() []apiCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]apiCall(nil), f.calls...)
}

func (f *fakeAPI) count(method, path string) int {
	n := 0
	for _, c := range f.all() {
		if c.Method == method && c.Path == path {
			n++
		}
	}
	return n
}

// instantSource serves every asset immediately.
type instantSource struct{}

func (instantSource) Fetch(_ context.Context, ref string) ([]byte, error) {
	return []byte("/* " + ref + " */"), nil
}

type harness struct {
	t      *testing.T
	api    *fakeAPI
	store  *session.MemoryStore
	states *crud.States
	bus    *event.InMemoryBus
	loader *assets.Loader
	router http.Handler
}

type harnessOptions struct {
	manifest assets.Manifest
	source   assets.Source
}

func newHarness(t *testing.T, opts ...harnessOptions) *harness {
	t.Helper()

	var opt harnessOptions
	if len(opts) > 0 {
		opt = opts[0]
	}
	if opt.source == nil {
		opt.source = instantSource{}
	}

	api := &fakeAPI{}
	backend := httptest.NewServer(api)
	t.Cleanup(backend.Close)

	store := session.NewMemoryStore(time.Hour)
	client := apiclient.New(apiclient.Options{BaseURL: backend.URL, Store: store, Logger: discard})
	catalogue := resource.NewCatalogue(client)

	views, err := view.New()
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	loader := assets.NewLoader(opt.manifest, opt.source, discard, nil)
	loader.Start(ctx)

	bus := event.NewBus(discard)
	hub := websocket.NewHub(bus, discard, nil)
	go hub.Run(ctx)

	states := crud.NewStates()
	site := NewSite(SiteOptions{
		Views:     views,
		Store:     store,
		States:    states,
		Cookie:    CookieConfig{Name: testCookie, TTL: time.Hour},
		MaxUpload: 1 << 20,
		Logger:    discard,
	})

	public := NewPublicHandler(site, catalogue, loader)
	auth := NewAuthHandler(site, client)
	dash := NewDashboardHandler(site, catalogue)
	admin := NewAdminHandler(site, catalogue, bus)
	notes := NewNotificationHandler(catalogue, bus, hub, []string{"*"}, discard)
	sessions := middleware.NewSessionMiddleware(store, testCookie, discard)

	none := func(next http.Handler) http.Handler { return next }

	r := chi.NewRouter()
	r.Use(sessions.Load)
	r.NotFound(site.NotFound)
	r.Get(StylesPath, public.Styles)
	r.Get(ScriptsPath, public.Scripts)

	r.Group(func(pr chi.Router) {
		pr.Use(public.Gate)
		pr.Get("/", public.Home)
		pr.Get("/services", public.Services)
		pr.Get("/services/{id}", public.ServiceDetail)
		pr.Get("/products", public.Products)
		pr.Get("/products/{id}", public.ProductDetail)
		pr.Get("/contact", public.ContactForm)
		pr.Post("/contact", public.Contact)
		pr.Get("/book-demo", public.BookDemoForm)
		pr.Post("/book-demo", public.BookDemo)
	})

	r.Get("/signin", auth.SignInForm)
	r.Post("/signin", auth.SignIn)
	r.Get("/signup", auth.SignUpForm)
	r.Post("/signup", auth.SignUp)
	r.Post("/logout", auth.Logout)

	r.Group(func(d chi.Router) {
		d.Use(sessions.RequireSession)
		d.Route("/admin", func(a chi.Router) {
			a.Get("/", dash.Admin)
			for _, s := range admin.Website() {
				s.Mount(a, none, none)
			}
			admin.Users.Mount(a, none, none)
		})
		d.Route("/master", func(m chi.Router) {
			admin.Companies.Mount(m, none, none)
		})
		d.Get("/master-dashboard", dash.Master)
		d.Get("/employee", dash.Employee)
	})

	r.With(sessions.RequireSession).Post("/api/v1/notifications/devices", notes.RegisterDevice)
	r.With(middleware.RequireSecret(pushSecret)).Post("/api/v1/notifications/push", notes.Push)

	return &harness{t: t, api: api, store: store, states: states, bus: bus, loader: loader, router: r}
}

// signIn stores a session for role and returns its cookie.
func (h *harness) signIn(role string) (*http.Cookie, *session.Session) {
	h.t.Helper()
	sess := session.Create("alice", "access-token", "refresh-token", role)
	require.NoError(h.t, h.store.Save(context.Background(), sess))
	return &http.Cookie{Name: testCookie, Value: sess.ID()}, sess
}

func (h *harness) get(path string, cookie *http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	return h.serve(req, cookie)
}

func (h *harness) postForm(path string, form url.Values, cookie *http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return h.serve(req, cookie)
}

func (h *harness) postJSON(path, body string, cookie *http.Cookie, header ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	return h.serve(req, cookie)
}

func (h *harness) serve(req *http.Request, cookie *http.Cookie) *httptest.ResponseRecorder {
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, req)
	return rec
}
