package handler

import (
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/CodeCrafters02/ITL-HRMS-2025-sub002/internal/apiclient"
	"github.com/CodeCrafters02/ITL-HRMS-2025-sub002/internal/crud"
	"github.com/CodeCrafters02/ITL-HRMS-2025-sub002/internal/event"
	"github.com/CodeCrafters02/ITL-HRMS-2025-sub002/internal/export"
	"github.com/CodeCrafters02/ITL-HRMS-2025-sub002/internal/session"
	"github.com/CodeCrafters02/ITL-HRMS-2025-sub002/internal/view"
	"github.com/CodeCrafters02/ITL-HRMS-2025-sub002/pkg/apierror"
)

// Screen is a management table the router mounts under its parent route.
type Screen interface {
	Mount(r chi.Router, pages, downloads func(http.Handler) http.Handler)
}

// lookups holds select options per form field name.
type lookups map[string][]view.Option

// screen describes one backend collection as a table with modal forms. T is the
// entity, F the form DTO. A nil Create, Update or Delete hides that action.
type screen[T any, F any] struct {
	key      string
	title    string
	singular string
	columns  []string
	empty    string

	row      func(T) (int64, []string)
	label    func(T) string
	list     func(ctx context.Context, sess *session.Session) ([]T, error)
	fields   func(form F, opts lookups) []view.Field
	fromItem func(T) F
	parse    func(values formValues, files *multipart.Form) (F, []apiclient.File, map[string]string)
	lookups  func(ctx context.Context, sess *session.Session) (lookups, error)

	create func(ctx context.Context, sess *session.Session, form F, files []apiclient.File) (*T, error)
	update func(ctx context.Context, sess *session.Session, id int64, form F, files []apiclient.File) (*T, error)
	remove func(ctx context.Context, sess *session.Session, id int64) error
	sheet  func(items []T) export.Sheet

	multipart bool
}

// CRUDHandler serves one screen: GET list, POST create, POST update, a delete
// confirmation and, for exportable screens, an .xlsx download.
type CRUDHandler[T any, F any] struct {
	site   *Site
	bus    event.Bus
	base   string
	screen screen[T, F]
}

func newCRUDHandler[T any, F any](site *Site, bus event.Bus, parent string, s screen[T, F]) *CRUDHandler[T, F] {
	return &CRUDHandler[T, F]{site: site, bus: bus, base: strings.TrimRight(parent, "/") + "/" + s.key, screen: s}
}

func (h *CRUDHandler[T, F]) Path() string {
	return h.base
}

func (h *CRUDHandler[T, F]) Mount(r chi.Router, pages, downloads func(http.Handler) http.Handler) {
	r.Route("/"+h.screen.key, func(sr chi.Router) {
		if h.screen.sheet != nil {
			sr.With(downloads).Get("/export.xlsx", h.Export)
		}

		sr.Group(func(pr chi.Router) {
			pr.Use(pages)
			pr.Get("/", h.List)
			if h.screen.create != nil {
				pr.Post("/", h.Create)
			}
			if h.screen.update != nil {
				pr.Post("/{id}", h.Update)
			}
			if h.screen.remove != nil {
				pr.Get("/{id}/delete", h.ConfirmDelete)
				pr.Post("/{id}/delete", h.Delete)
			}
		})
	})
}

func (h *CRUDHandler[T, F]) List(w http.ResponseWriter, r *http.Request) {
	sess := currentSession(r)

	current := h.state(sess).Current(r.Context(), h.loader(sess))
	if apiclient.IsSessionExpired(current.Err) {
		h.site.signInAgain(w, r, sess)
		return
	}

	opts, err := h.options(r.Context(), sess, false)
	if apiclient.IsSessionExpired(err) {
		h.site.signInAgain(w, r, sess)
		return
	}

	h.renderTable(w, r, http.StatusOK, sess, current, opts, nil, 0, nil)
}

func (h *CRUDHandler[T, F]) Create(w http.ResponseWriter, r *http.Request) {
	sess := currentSession(r)

	form, files, errs := h.readForm(w, r)
	if len(errs) > 0 {
		h.rerender(w, r, sess, http.StatusUnprocessableEntity, 0, form, errs)
		return
	}

	item, err := h.screen.create(r.Context(), sess, form, files)
	if err != nil {
		if apiclient.IsSessionExpired(err) {
			h.site.signInAgain(w, r, sess)
			return
		}
		h.rerender(w, r, sess, backendStatus(err), 0, form, map[string]string{"": apierror.UserMessage(err)})
		return
	}

	h.state(sess).Prepend(*item)
	h.announce(r.Context(), sess, event.TypeItemCreated, *item, "created")
	http.Redirect(w, r, h.base, http.StatusSeeOther)
}

func (h *CRUDHandler[T, F]) Update(w http.ResponseWriter, r *http.Request) {
	sess := currentSession(r)

	id, ok := itemID(r)
	if !ok {
		h.site.NotFound(w, r)
		return
	}

	form, files, errs := h.readForm(w, r)
	if len(errs) > 0 {
		h.rerender(w, r, sess, http.StatusUnprocessableEntity, id, form, errs)
		return
	}

	item, err := h.screen.update(r.Context(), sess, id, form, files)
	if err != nil {
		if apiclient.IsSessionExpired(err) {
			h.site.signInAgain(w, r, sess)
			return
		}
		h.rerender(w, r, sess, backendStatus(err), id, form, map[string]string{"": apierror.UserMessage(err)})
		return
	}

	h.state(sess).Invalidate()
	h.announce(r.Context(), sess, event.TypeItemUpdated, *item, "updated")
	http.Redirect(w, r, h.base, http.StatusSeeOther)
}

func (h *CRUDHandler[T, F]) ConfirmDelete(w http.ResponseWriter, r *http.Request) {
	sess := currentSession(r)

	id, ok := itemID(r)
	if !ok {
		h.site.NotFound(w, r)
		return
	}

	name := "#" + strconv.FormatInt(id, 10)
	for _, item := range h.state(sess).Snapshot().Items {
		if itemID, _ := h.screen.row(item); itemID == id {
			name = h.screen.label(item)
			break
		}
	}

	content := view.ConfirmDelete{
		Resource: h.screen.singular,
		Name:     name,
		Action:   h.itemPath(id) + "/delete",
		Cancel:   h.base,
	}
	h.site.render(w, r, http.StatusOK, "confirm_delete", h.site.page(r, "Delete "+h.screen.singular, dashboardNav(sess.Role()), content))
}

// Delete issues the backend DELETE only when the confirmation was accepted.
func (h *CRUDHandler[T, F]) Delete(w http.ResponseWriter, r *http.Request) {
	sess := currentSession(r)

	id, ok := itemID(r)
	if !ok {
		h.site.NotFound(w, r)
		return
	}

	if err := r.ParseForm(); err != nil || r.PostForm.Get("confirm") != "yes" {
		http.Redirect(w, r, h.base, http.StatusSeeOther)
		return
	}

	if err := h.screen.remove(r.Context(), sess, id); err != nil {
		if apiclient.IsSessionExpired(err) {
			h.site.signInAgain(w, r, sess)
			return
		}
		h.site.flash(r.Context(), sess, "error", apierror.UserMessage(err))
		http.Redirect(w, r, h.base, http.StatusSeeOther)
		return
	}

	h.state(sess).Invalidate()
	h.site.flash(r.Context(), sess, "success", capitalize(h.screen.singular)+" deleted")
	event.Broadcast(h.bus, event.TypeItemDeleted, sess.ID(), event.Toast{
		Level:    "info",
		Title:    sess.Username(),
		Message:  fmt.Sprintf("%s #%d deleted", capitalize(h.screen.singular), id),
		Resource: h.screen.key,
		ItemID:   id,
	})
	http.Redirect(w, r, h.base, http.StatusSeeOther)
}

func (h *CRUDHandler[T, F]) Export(w http.ResponseWriter, r *http.Request) {
	sess := currentSession(r)

	items, err := h.screen.list(r.Context(), sess)
	if err != nil {
		if apiclient.IsSessionExpired(err) {
			h.site.signInAgain(w, r, sess)
			return
		}
		h.site.flash(r.Context(), sess, "error", apierror.UserMessage(err))
		http.Redirect(w, r, h.base, http.StatusSeeOther)
		return
	}

	filename := fmt.Sprintf("%s-%s.xlsx", h.screen.key, time.Now().UTC().Format("20060102"))
	w.Header().Set("Content-Type", export.ContentTypeXLSX)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	if err := export.WriteXLSX(w, h.screen.sheet(items)); err != nil {
		h.site.log.Error("export failed", "resource", h.screen.key, "error", err)
	}
}

// readForm parses and validates the submitted form. Errors keyed by "" belong
// to the form as a whole.
func (h *CRUDHandler[T, F]) readForm(w http.ResponseWriter, r *http.Request) (F, []apiclient.File, map[string]string) {
	values, files, err := h.site.parseForm(w, r)
	if err != nil {
		var zero F
		return zero, nil, map[string]string{"": formReadMessage(err)}
	}

	form, uploads, errs := h.screen.parse(values, files)
	if len(errs) > 0 {
		return form, nil, errs
	}

	return form, uploads, fieldErrors(form)
}

// rerender shows the list again with one dialog reopened. It uses the page
// state and options already held, so no backend call is made.
func (h *CRUDHandler[T, F]) rerender(w http.ResponseWriter, r *http.Request, sess *session.Session, status int, id int64, form F, errs map[string]string) {
	opts, _ := h.options(r.Context(), sess, true)

	var dialog *view.Form
	if id == 0 {
		dialog = h.form("add-"+h.screen.key, "Add "+h.screen.singular, h.base, form, opts, errs)
	} else {
		dialog = h.form(fmt.Sprintf("edit-%d", id), "Edit "+h.screen.singular, h.itemPath(id), form, opts, errs)
	}
	dialog.Open = true

	if id == 0 {
		h.renderTable(w, r, status, sess, h.state(sess).Snapshot(), opts, dialog, 0, nil)
		return
	}
	h.renderTable(w, r, status, sess, h.state(sess).Snapshot(), opts, nil, id, dialog)
}

func (h *CRUDHandler[T, F]) renderTable(w http.ResponseWriter, r *http.Request, status int, sess *session.Session, v crud.View[T], opts lookups, add *view.Form, editID int64, edit *view.Form) {
	table := view.Table{
		Resource: h.screen.singular,
		Status:   string(v.Status),
		Columns:  h.screen.columns,
		Empty:    h.screen.empty,
		Rows:     make([]view.Row, 0, len(v.Items)),
	}
	if v.Err != nil {
		table.Error = apierror.UserMessage(v.Err)
	}
	if h.screen.sheet != nil {
		table.ExportPath = h.base + "/export.xlsx"
	}

	for _, item := range v.Items {
		id, cells := h.screen.row(item)
		row := view.Row{ID: id, Cells: cells}
		if h.screen.update != nil {
			if edit != nil && id == editID {
				row.Edit = edit
			} else {
				row.Edit = h.form(fmt.Sprintf("edit-%d", id), "Edit "+h.screen.singular, h.itemPath(id), h.screen.fromItem(item), opts, nil)
			}
		}
		if h.screen.remove != nil {
			row.DeletePath = h.itemPath(id) + "/delete"
		}
		table.Rows = append(table.Rows, row)
	}

	if h.screen.create != nil {
		if add != nil {
			table.Add = add
		} else {
			var blank F
			table.Add = h.form("add-"+h.screen.key, "Add "+h.screen.singular, h.base, blank, opts, nil)
		}
	}

	h.site.render(w, r, status, "table", h.site.page(r, h.screen.title, dashboardNav(sess.Role()), table))
}

func (h *CRUDHandler[T, F]) form(id, title, action string, values F, opts lookups, errs map[string]string) *view.Form {
	fields := h.screen.fields(values, opts)
	for i := range fields {
		if msg, ok := errs[fields[i].Name]; ok {
			fields[i].Error = msg
		}
	}

	return &view.Form{
		ID:        id,
		Title:     title,
		Action:    action,
		Submit:    "Save",
		Multipart: h.screen.multipart,
		Error:     errs[""],
		Fields:    fields,
	}
}

// options returns select options for the forms. cached skips the backend and
// serves the last fetched set.
func (h *CRUDHandler[T, F]) options(ctx context.Context, sess *session.Session, cached bool) (lookups, error) {
	if h.screen.lookups == nil {
		return nil, nil
	}

	state := crud.PageFor[lookups](h.site.states, sess.ID(), h.screen.key+"#options")
	var v crud.View[lookups]
	if cached {
		v = state.Snapshot()
	} else {
		v = state.Load(ctx, func(ctx context.Context) ([]lookups, error) {
			opts, err := h.screen.lookups(ctx, sess)
			if err != nil {
				return nil, err
			}
			return []lookups{opts}, nil
		})
	}

	if v.Err != nil {
		h.site.log.Warn("load form options", "resource", h.screen.key, "error", v.Err)
		return nil, v.Err
	}
	if len(v.Items) == 0 {
		return nil, nil
	}
	return v.Items[0], nil
}

func (h *CRUDHandler[T, F]) announce(ctx context.Context, sess *session.Session, typ event.Type, item T, verb string) {
	id, _ := h.screen.row(item)
	h.site.flash(ctx, sess, "success", capitalize(h.screen.singular)+" "+verb)
	event.Broadcast(h.bus, typ, sess.ID(), event.Toast{
		Level:    "info",
		Title:    sess.Username(),
		Message:  fmt.Sprintf("%s %s %s", capitalize(h.screen.singular), h.screen.label(item), verb),
		Resource: h.screen.key,
		ItemID:   id,
	})
}

func (h *CRUDHandler[T, F]) state(sess *session.Session) *crud.Page[T] {
	return crud.PageFor[T](h.site.states, sess.ID(), h.screen.key)
}

func (h *CRUDHandler[T, F]) loader(sess *session.Session) crud.Loader[T] {
	return func(ctx context.Context) ([]T, error) {
		return h.screen.list(ctx, sess)
	}
}

func (h *CRUDHandler[T, F]) itemPath(id int64) string {
	return h.base + "/" + strconv.FormatInt(id, 10)
}

func itemID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil && id > 0
}

// backendStatus picks the status for a form re-rendered after a backend error.
func backendStatus(err error) int {
	status, _ := classifyError(err)
	if status >= 500 {
		return http.StatusBadGateway
	}
	return status
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
