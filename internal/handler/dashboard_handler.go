package handler

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"golang.org/x/sync/errgroup"

	"github.com/CodeCrafters02/ITL-HRMS-2025-sub002/internal/apiclient"
	"github.com/CodeCrafters02/ITL-HRMS-2025-sub002/internal/model"
	"github.com/CodeCrafters02/ITL-HRMS-2025-sub002/internal/resource"
	"github.com/CodeCrafters02/ITL-HRMS-2025-sub002/internal/session"
	"github.com/CodeCrafters02/ITL-HRMS-2025-sub002/internal/view"
)

type DashboardHandler struct {
	site      *Site
	catalogue *resource.Catalogue
}

func NewDashboardHandler(site *Site, catalogue *resource.Catalogue) *DashboardHandler {
	return &DashboardHandler{site: site, catalogue: catalogue}
}

// counter fetches one collection and reports its size.
type counter struct {
	label string
	href  string
	count func(ctx context.Context, sess *session.Session) (int, error)
}

// lister is any backend collection that can be listed.
type lister[T any] interface {
	List(ctx context.Context, sess *session.Session, query url.Values) ([]T, error)
}

func countOf[T any](l lister[T]) func(context.Context, *session.Session) (int, error) {
	return func(ctx context.Context, sess *session.Session) (int, error) {
		items, err := l.List(ctx, sess, nil)
		return len(items), err
	}
}

func (h *DashboardHandler) Admin(w http.ResponseWriter, r *http.Request) {
	c := h.catalogue
	h.serve(w, r, "Admin dashboard", []counter{
		{"Users", "/admin/users", countOf[model.User](c.Users)},
		{"Services", "/admin/services", countOf[model.Service](c.Services)},
		{"Sub-services", "/admin/subservices", countOf[model.SubService](c.SubServices)},
		{"Products", "/admin/products", countOf[model.Product](c.Products)},
		{"Contact requests", "/admin/contact-requests", countOf[model.ContactRequest](c.ContactRequests)},
		{"Demo requests", "/admin/demo-requests", countOf[model.DemoRequest](c.DemoRequests)},
	})
}

func (h *DashboardHandler) Master(w http.ResponseWriter, r *http.Request) {
	c := h.catalogue
	h.serve(w, r, "Master dashboard", []counter{
		{"Companies", "/master/companies", countOf[model.Company](c.Companies)},
		{"Users", "/admin/users", countOf[model.User](c.Users)},
	})
}

func (h *DashboardHandler) Employee(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, "Employee dashboard", nil)
}

// serve fetches every counter concurrently. A failed count shows as a dash;
// an expired session ends the request with a sign-in redirect.
func (h *DashboardHandler) serve(w http.ResponseWriter, r *http.Request, title string, counters []counter) {
	sess := currentSession(r)

	values := make([]string, len(counters))
	g, ctx := errgroup.WithContext(r.Context())
	for i, ct := range counters {
		g.Go(func() error {
			n, err := ct.count(ctx, sess)
			if err != nil {
				if apiclient.IsSessionExpired(err) {
					return err
				}
				h.site.log.Warn("dashboard count failed", "stat", ct.label, "error", err)
				values[i] = "–"
				return nil
			}
			values[i] = strconv.Itoa(n)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		h.site.signInAgain(w, r, sess)
		return
	}

	content := view.Dashboard{Greeting: "Welcome back, " + sess.Username() + "."}
	for i, ct := range counters {
		content.Stats = append(content.Stats, view.Stat{Label: ct.label, Value: values[i], Href: ct.href})
	}
	nav := dashboardNav(sess.Role())
	if len(nav) > 1 {
		content.Links = nav[1:]
	}

	h.site.render(w, r, http.StatusOK, "dashboard", h.site.page(r, title, nav, content))
}
