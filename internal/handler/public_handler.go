package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/CodeCrafters02/ITL-HRMS-2025-sub002/internal/assets"
	"github.com/CodeCrafters02/ITL-HRMS-2025-sub002/internal/model"
	"github.com/CodeCrafters02/ITL-HRMS-2025-sub002/internal/resource"
	"github.com/CodeCrafters02/ITL-HRMS-2025-sub002/internal/view"
	"github.com/CodeCrafters02/ITL-HRMS-2025-sub002/pkg/apierror"
)

const (
	StylesPath  = "/assets/site.css"
	ScriptsPath = "/assets/site.js"

	placeholderRefresh = 1
)

// PublicHandler serves the marketing site. Backend calls are anonymous.
type PublicHandler struct {
	site      *Site
	catalogue *resource.Catalogue
	assets    *assets.Loader
}

func NewPublicHandler(site *Site, catalogue *resource.Catalogue, loader *assets.Loader) *PublicHandler {
	return &PublicHandler{site: site, catalogue: catalogue, assets: loader}
}

// Gate serves a blank, self-refreshing placeholder for page reads until every
// stylesheet has signalled. Form submissions always reach their handler.
func (h *PublicHandler) Gate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		pageRead := r.Method == http.MethodGet || r.Method == http.MethodHead
		if pageRead && !h.assets.Ready() {
			h.site.render(w, r, http.StatusOK, "placeholder", view.Page{
				Content: view.Placeholder{RefreshSeconds: placeholderRefresh},
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (h *PublicHandler) Styles(w http.ResponseWriter, r *http.Request) {
	h.serveBundle(w, r, "text/css; charset=utf-8", h.assets.Styles.Bundle())
}

func (h *PublicHandler) Scripts(w http.ResponseWriter, r *http.Request) {
	h.serveBundle(w, r, "text/javascript; charset=utf-8", h.assets.Scripts.Bundle())
}

func (h *PublicHandler) serveBundle(w http.ResponseWriter, _ *http.Request, contentType string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func (h *PublicHandler) Home(w http.ResponseWriter, r *http.Request) {
	content := view.Listing{Heading: "What we do"}

	services, err := h.catalogue.Services.List(r.Context(), nil, nil)
	if err != nil {
		h.site.log.Warn("load services for home", "error", err)
		content.Error = "Our services could not be loaded right now."
	}
	for _, s := range activeServices(services) {
		content.Cards = append(content.Cards, serviceCard(s, nil))
	}

	h.render(w, r, "home", "", "We design, build and run software for teams that need to ship.", content)
}

func (h *PublicHandler) About(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "about", "About", "Who we are and how we work.", nil)
}

func (h *PublicHandler) Privacy(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "privacy", "Privacy Policy", "", nil)
}

func (h *PublicHandler) Terms(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "terms", "Terms of Service", "", nil)
}

func (h *PublicHandler) Services(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	content := view.Listing{
		Heading: "Services",
		Intro:   "From discovery to operations, pick the help you need.",
	}

	services, err := h.catalogue.Services.List(ctx, nil, nil)
	if err != nil {
		h.site.log.Warn("load services", "error", err)
		content.Error = apierror.UserMessage(err)
		h.render(w, r, "listing", "Services", content.Intro, content)
		return
	}

	subs, err := h.catalogue.SubServices.List(ctx, nil, nil)
	if err != nil {
		h.site.log.Warn("load subservices", "error", err)
	}
	byService := groupSubServices(subs)

	for _, s := range activeServices(services) {
		content.Cards = append(content.Cards, serviceCard(s, byService[s.ID]))
	}

	h.render(w, r, "listing", "Services", content.Intro, content)
}

func (h *PublicHandler) ServiceDetail(w http.ResponseWriter, r *http.Request) {
	id, ok := itemID(r)
	if !ok {
		h.site.NotFound(w, r)
		return
	}

	ctx := r.Context()
	service, err := h.catalogue.Services.Get(ctx, nil, id)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	content := view.Detail{
		Heading:     service.Name,
		Description: service.Description,
		Back:        view.NavItem{Label: "All services", Href: "/services"},
	}

	subs, err := h.catalogue.SubServices.List(ctx, nil, nil)
	if err != nil {
		h.site.log.Warn("load subservices", "service_id", id, "error", err)
	}
	for _, sub := range groupSubServices(subs)[id] {
		content.Items = append(content.Items, view.Card{Title: sub.Name, Description: sub.Description})
	}

	products, err := h.catalogue.Products.List(ctx, nil, nil)
	if err != nil {
		h.site.log.Warn("load products", "service_id", id, "error", err)
	}
	for _, p := range products {
		if p.IsActive && p.ServiceDetails != nil && p.ServiceDetails.ID == id {
			content.Items = append(content.Items, productCard(p))
		}
	}

	h.render(w, r, "detail", service.Name, service.Description, content)
}

func (h *PublicHandler) Products(w http.ResponseWriter, r *http.Request) {
	content := view.Listing{
		Heading: "Products",
		Intro:   "A selection of platforms we built with our clients.",
	}

	products, err := h.catalogue.Products.List(r.Context(), nil, nil)
	if err != nil {
		h.site.log.Warn("load products", "error", err)
		content.Error = apierror.UserMessage(err)
	}
	for _, p := range products {
		if p.IsActive {
			content.Cards = append(content.Cards, productCard(p))
		}
	}

	h.render(w, r, "listing", "Products", content.Intro, content)
}

func (h *PublicHandler) ProductDetail(w http.ResponseWriter, r *http.Request) {
	id, ok := itemID(r)
	if !ok {
		h.site.NotFound(w, r)
		return
	}

	product, err := h.catalogue.Products.Get(r.Context(), nil, id)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	content := view.Detail{
		Heading:     product.Name,
		Description: product.Description,
		Images:      product.ImageURLs(),
		Back:        view.NavItem{Label: "All products", Href: "/products"},
	}
	if product.Client != "" {
		content.Subtitle = "Built for " + product.Client
	}

	h.render(w, r, "detail", product.Name, product.Description, content)
}

func (h *PublicHandler) ContactForm(w http.ResponseWriter, r *http.Request) {
	h.renderContact(w, r, http.StatusOK, model.ContactForm{}, nil)
}

func (h *PublicHandler) Contact(w http.ResponseWriter, r *http.Request) {
	values, _, err := h.site.parseForm(w, r)
	if err != nil {
		h.renderContact(w, r, http.StatusBadRequest, model.ContactForm{}, map[string]string{"": formReadMessage(err)})
		return
	}

	form := model.ContactForm{
		Name:          values.str("name"),
		Email:         values.str("email"),
		ContactNumber: values.str("contact_number"),
		Message:       values.str("message"),
	}
	if errs := fieldErrors(form); len(errs) > 0 {
		h.renderContact(w, r, http.StatusUnprocessableEntity, form, errs)
		return
	}

	if _, err := h.catalogue.ContactRequests.Submit(r.Context(), form); err != nil {
		h.renderContact(w, r, backendStatus(err), form, map[string]string{"": apierror.UserMessage(err)})
		return
	}

	http.Redirect(w, r, "/contact?sent=1", http.StatusSeeOther)
}

func (h *PublicHandler) renderContact(w http.ResponseWriter, r *http.Request, status int, form model.ContactForm, errs map[string]string) {
	content := view.PublicForm{
		Heading: "Contact us",
		Intro:   "Tell us about your project and we will reply within one business day.",
		Sent:    r.Method == http.MethodGet && r.URL.Query().Get("sent") == "1",
		Form: applyErrors(view.Form{
			ID:     "contact",
			Action: "/contact",
			Submit: "Send message",
			Fields: []view.Field{
				{Name: "name", Label: "Name", Type: "text", Value: form.Name, Required: true},
				{Name: "email", Label: "Email", Type: "email", Value: form.Email, Required: true},
				{Name: "contact_number", Label: "Contact number", Type: "tel", Value: form.ContactNumber, Required: true},
				{Name: "message", Label: "Message", Type: "textarea", Value: form.Message, Required: true},
			},
		}, errs),
	}

	h.renderStatus(w, r, status, "public_form", "Contact", content.Intro, content)
}

func (h *PublicHandler) BookDemoForm(w http.ResponseWriter, r *http.Request) {
	h.renderDemo(w, r, http.StatusOK, model.DemoForm{}, nil)
}

func (h *PublicHandler) BookDemo(w http.ResponseWriter, r *http.Request) {
	values, _, err := h.site.parseForm(w, r)
	if err != nil {
		h.renderDemo(w, r, http.StatusBadRequest, model.DemoForm{}, map[string]string{"": formReadMessage(err)})
		return
	}

	form := model.DemoForm{
		Name:              values.str("name"),
		Email:             values.str("email"),
		ContactNumber:     values.str("contact_number"),
		ServiceID:         values.int64("service_id"),
		PreferredDatetime: values.str("preferred_datetime"),
		Message:           values.str("message"),
	}
	if errs := fieldErrors(form); len(errs) > 0 {
		h.renderDemo(w, r, http.StatusUnprocessableEntity, form, errs)
		return
	}

	if _, err := h.catalogue.DemoRequests.Submit(r.Context(), form); err != nil {
		h.renderDemo(w, r, backendStatus(err), form, map[string]string{"": apierror.UserMessage(err)})
		return
	}

	http.Redirect(w, r, "/book-demo?sent=1", http.StatusSeeOther)
}

func (h *PublicHandler) renderDemo(w http.ResponseWriter, r *http.Request, status int, form model.DemoForm, errs map[string]string) {
	services, err := h.catalogue.Services.List(r.Context(), nil, nil)
	if err != nil {
		h.site.log.Warn("load services for demo form", "error", err)
	}

	content := view.PublicForm{
		Heading: "Book a demo",
		Intro:   "Pick a service and a time that suits you. We will confirm by email.",
		Sent:    r.Method == http.MethodGet && r.URL.Query().Get("sent") == "1",
		Form: applyErrors(view.Form{
			ID:     "book-demo",
			Action: "/book-demo",
			Submit: "Book demo",
			Fields: []view.Field{
				{Name: "name", Label: "Name", Type: "text", Value: form.Name, Required: true},
				{Name: "email", Label: "Email", Type: "email", Value: form.Email, Required: true},
				{Name: "contact_number", Label: "Contact number", Type: "tel", Value: form.ContactNumber, Required: true},
				{Name: "service_id", Label: "Service", Type: "select", Required: true, Options: serviceOptions(activeServices(services), itoa(form.ServiceID))},
				{Name: "preferred_datetime", Label: "Preferred date and time", Type: "datetime-local", Value: form.PreferredDatetime, Required: true},
				{Name: "message", Label: "Message", Type: "textarea", Value: form.Message},
			},
		}, errs),
	}

	h.renderStatus(w, r, status, "public_form", "Book a demo", content.Intro, content)
}

func (h *PublicHandler) render(w http.ResponseWriter, r *http.Request, name, title, description string, content any) {
	h.renderStatus(w, r, http.StatusOK, name, title, description, content)
}

func (h *PublicHandler) renderStatus(w http.ResponseWriter, r *http.Request, status int, name, title, description string, content any) {
	p := h.site.page(r, title, publicNav, content)
	p.Description = description
	p.Assets = &view.Assets{StyleURL: StylesPath, ScriptURL: ScriptsPath}
	h.site.render(w, r, status, name, p)
}

// fail renders a missing entity as 404 and anything else as a backend error page.
func (h *PublicHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, model.ErrNotFound) {
		h.site.NotFound(w, r)
		return
	}
	if !errors.Is(err, context.Canceled) {
		h.site.log.Warn("public page backend error", "path", r.URL.Path, "error", err)
	}
	h.site.renderError(w, r, http.StatusBadGateway, "Something went wrong", apierror.UserMessage(err))
}

func applyErrors(form view.Form, errs map[string]string) view.Form {
	form.Error = errs[""]
	for i := range form.Fields {
		form.Fields[i].Error = errs[form.Fields[i].Name]
	}
	return form
}

func activeServices(services []model.Service) []model.Service {
	out := make([]model.Service, 0, len(services))
	for _, s := range services {
		if s.IsActive {
			out = append(out, s)
		}
	}
	return out
}

func groupSubServices(subs []model.SubService) map[int64][]model.SubService {
	out := make(map[int64][]model.SubService)
	for _, sub := range subs {
		if sub.ServiceDetails != nil {
			out[sub.ServiceDetails.ID] = append(out[sub.ServiceDetails.ID], sub)
		}
	}
	return out
}

func serviceCard(s model.Service, subs []model.SubService) view.Card {
	card := view.Card{
		Title:       s.Name,
		Description: s.Description,
		Href:        "/services/" + strconv.FormatInt(s.ID, 10),
	}
	for _, sub := range subs {
		card.Items = append(card.Items, sub.Name)
	}
	return card
}

func productCard(p model.Product) view.Card {
	card := view.Card{
		Title:       p.Name,
		Subtitle:    p.Client,
		Description: p.Description,
		Href:        "/products/" + strconv.FormatInt(p.ID, 10),
	}
	if urls := p.ImageURLs(); len(urls) > 0 {
		card.Image = urls[0]
	}
	return card
}
