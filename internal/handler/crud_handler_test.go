package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CodeCrafters02/ITL-HRMS-2025-sub002/internal/event"
	"github.com/CodeCrafters02/ITL-HRMS-2025-sub002/internal/export"
	"github.com/CodeCrafters02/ITL-HRMS-2025-sub002/internal/model"
	"github.com/CodeCrafters02/ITL-HRMS-2025-sub002/internal/session"
)

const servicesAPI = "/website/service/"

func TestCRUD_ListRendersOneRowPerItem(t *testing.T) {
	h := newHarness(t)
	cookie, _ := h.signIn(model.RoleAdmin)

	h.api.on(http.MethodGet, servicesAPI, http.StatusOK, []model.Service{
		{ID: 1, Name: "Cloud", Description: "Migrations", IsActive: true},
		{ID: 2, Name: "R&D <Labs>", IsActive: false},
		{ID: 3, Name: "Data", Description: "Pipelines", IsActive: true},
	})

	rec := h.get("/admin/services", cookie)
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Equal(t, 3, strings.Count(body, "<tr data-id="))
	assert.Contains(t, body, "<td>Cloud</td>")
	assert.Contains(t, body, "<td>Migrations</td>")
	assert.Contains(t, body, "<td>R&amp;D &lt;Labs&gt;</td>")
	assert.Contains(t, body, `id="edit-2"`)
	assert.Contains(t, body, `href="/admin/services/3/delete"`)
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
}

func TestCRUD_ListFailureShowsBackendMessage(t *testing.T) {
	h := newHarness(t)
	cookie, _ := h.signIn(model.RoleAdmin)

	h.api.on(http.MethodGet, servicesAPI, http.StatusForbidden, `{"detail":"You do not have permission to perform this action."}`)

	rec := h.get("/admin/services", cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "You do not have permission to perform this action.")
	assert.NotContains(t, rec.Body.String(), "<table")
}

func TestCRUD_CreateWithEmptyRequiredFieldMakesNoBackendCall(t *testing.T) {
	h := newHarness(t)
	cookie, _ := h.signIn(model.RoleAdmin)
	h.api.on(http.MethodGet, servicesAPI, http.StatusOK, []model.Service{{ID: 1, Name: "Cloud"}})

	require.Equal(t, http.StatusOK, h.get("/admin/services", cookie).Code)
	before := len(h.api.all())

	rec := h.postForm("/admin/services", url.Values{"name": {"  "}, "description": {"draft"}}, cookie)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Len(t, h.api.all(), before)

	body := rec.Body.String()
	assert.Contains(t, body, "This field is required")
	assert.Contains(t, body, `<dialog id="add-services" open data-open-on-load>`)
	assert.Contains(t, body, ">draft</textarea>")
	assert.Contains(t, body, "<td>Cloud</td>")
}

func TestCRUD_CreatedItemIsListedFirstWithoutRefetch(t *testing.T) {
	h := newHarness(t)
	cookie, _ := h.signIn(model.RoleAdmin)

	h.api.on(http.MethodGet, servicesAPI, http.StatusOK, []model.Service{{ID: 1, Name: "Cloud", IsActive: true}})
	h.api.on(http.MethodPost, servicesAPI, http.StatusCreated, model.Service{ID: 42, Name: "Consulting", IsActive: true})

	require.Equal(t, http.StatusOK, h.get("/admin/services", cookie).Code)

	rec := h.postForm("/admin/services", url.Values{"name": {"Consulting"}, "is_active": {"true"}}, cookie)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/admin/services", rec.Header().Get("Location"))

	var posted map[string]any
	calls := h.api.all()
	last := calls[len(calls)-1]
	require.Equal(t, http.MethodPost, last.Method)
	assert.Equal(t, "Bearer access-token", last.Auth)
	require.NoError(t, json.Unmarshal(last.Body, &posted))
	assert.Equal(t, map[string]any{"name": "Consulting", "description": "", "is_active": true}, posted)

	rec = h.get("/admin/services", cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, h.api.count(http.MethodGet, servicesAPI))

	body := rec.Body.String()
	first := strings.Index(body, `<tr data-id="42">`)
	second := strings.Index(body, `<tr data-id="1">`)
	require.GreaterOrEqual(t, first, 0)
	assert.Less(t, first, second)
	assert.Contains(t, body, "Service created")

	// The next visit reloads from the backend.
	h.get("/admin/services", cookie)
	assert.Equal(t, 2, h.api.count(http.MethodGet, servicesAPI))
}

func TestCRUD_CreateBroadcastsToOtherSessions(t *testing.T) {
	h := newHarness(t)
	cookie, sess := h.signIn(model.RoleAdmin)
	h.api.on(http.MethodPost, servicesAPI, http.StatusCreated, model.Service{ID: 42, Name: "Consulting"})

	events, unsubscribe := h.bus.Subscribe()
	defer unsubscribe()

	rec := h.postForm("/admin/services", url.Values{"name": {"Consulting"}}, cookie)
	require.Equal(t, http.StatusSeeOther, rec.Code)

	e := <-events
	assert.Equal(t, event.TypeItemCreated, e.Type)
	assert.Equal(t, sess.ID(), e.Origin)
	assert.Equal(t, "Service Consulting created", e.Toast.Message)
	assert.Equal(t, int64(42), e.Toast.ItemID)
}

func TestCRUD_BackendRejectionIsShownVerbatim(t *testing.T) {
	h := newHarness(t)
	cookie, _ := h.signIn(model.RoleAdmin)
	h.api.on(http.MethodPost, servicesAPI, http.StatusBadRequest, `{"name":["service with this name already exists."]}`)

	rec := h.postForm("/admin/services", url.Values{"name": {"Cloud"}}, cookie)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "service with this name already exists.")
	assert.Contains(t, rec.Body.String(), `value="Cloud"`)
}

func TestCRUD_UpdateSendsPutAndReloads(t *testing.T) {
	h := newHarness(t)
	cookie, _ := h.signIn(model.RoleAdmin)
	h.api.on(http.MethodGet, servicesAPI, http.StatusOK, []model.Service{{ID: 3, Name: "Cloud"}})
	h.api.on(http.MethodPut, servicesAPI+"3/", http.StatusOK, model.Service{ID: 3, Name: "Cloud ops"})

	rec := h.postForm("/admin/services/3", url.Values{"name": {"Cloud ops"}, "is_active": {"true"}}, cookie)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, 1, h.api.count(http.MethodPut, servicesAPI+"3/"))

	h.get("/admin/services", cookie)
	assert.Equal(t, 1, h.api.count(http.MethodGet, servicesAPI))
}

func TestCRUD_DeleteIssuesExactlyOneDeleteAfterConfirmation(t *testing.T) {
	h := newHarness(t)
	cookie, _ := h.signIn(model.RoleAdmin)
	h.api.on(http.MethodGet, servicesAPI, http.StatusOK, []model.Service{{ID: 3, Name: "Cloud"}, {ID: 4, Name: "Data"}})
	h.api.on(http.MethodDelete, servicesAPI+"4/", http.StatusNoContent, "")

	h.get("/admin/services", cookie)

	rec := h.get("/admin/services/4/delete", cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<strong>Data</strong>")
	assert.Contains(t, rec.Body.String(), `action="/admin/services/4/delete"`)

	rec = h.postForm("/admin/services/4/delete", url.Values{}, cookie)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Zero(t, h.api.count(http.MethodDelete, servicesAPI+"4/"))

	rec = h.postForm("/admin/services/4/delete", url.Values{"confirm": {"yes"}}, cookie)
	require.Equal(t, http.StatusSeeOther, rec.Code)

	deletes := 0
	for _, c := range h.api.all() {
		if c.Method == http.MethodDelete {
			deletes++
			assert.Equal(t, servicesAPI+"4/", c.Path)
		}
	}
	assert.Equal(t, 1, deletes)

	h.api.on(http.MethodGet, servicesAPI, http.StatusOK, []model.Service{{ID: 3, Name: "Cloud"}})
	body := h.get("/admin/services", cookie).Body.String()
	assert.Contains(t, body, "Service deleted")
	assert.Equal(t, 1, strings.Count(body, "<tr data-id="))
}

func TestCRUD_RefreshFailureEndsSession(t *testing.T) {
	h := newHarness(t)
	cookie, sess := h.signIn(model.RoleAdmin)
	h.api.on(http.MethodGet, servicesAPI, http.StatusUnauthorized, `{"detail":"Given token not valid for any token type"}`)
	h.api.on(http.MethodPost, "/api/token/refresh/", http.StatusUnauthorized, `{"detail":"Token is invalid or expired"}`)

	rec := h.get("/admin/services", cookie)

	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/signin?next=%2Fadmin%2Fservices", rec.Header().Get("Location"))
	assert.Equal(t, 1, h.api.count(http.MethodPost, "/api/token/refresh/"))

	_, err := h.store.Get(context.Background(), sess.ID())
	assert.ErrorIs(t, err, model.ErrSessionNotFound)

	var cleared bool
	for _, c := range rec.Result().Cookies() {
		if c.Name == testCookie && c.MaxAge < 0 {
			cleared = true
		}
	}
	assert.True(t, cleared)
}

func TestCRUD_RefreshedTokenIsReplayed(t *testing.T) {
	h := newHarness(t)
	cookie, sess := h.signIn(model.RoleAdmin)
	h.api.on(http.MethodGet, servicesAPI, http.StatusUnauthorized, `{"detail":"expired"}`)
	h.api.on(http.MethodPost, "/api/token/refresh/", http.StatusOK, model.RefreshResult{Access: "fresh-token"})

	h.get("/admin/services", cookie)

	stored, err := h.store.Get(context.Background(), sess.ID())
	require.NoError(t, err)
	assert.Equal(t, "fresh-token", stored.AccessToken())

	calls := h.api.all()
	last := calls[len(calls)-1]
	assert.Equal(t, "Bearer fresh-token", last.Auth)
	assert.Equal(t, 1, h.api.count(http.MethodPost, "/api/token/refresh/"))
}

func TestCRUD_RequiresSession(t *testing.T) {
	h := newHarness(t)

	rec := h.get("/admin/services", nil)

	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/signin?next=%2Fadmin%2Fservices", rec.Header().Get("Location"))
	assert.Empty(t, h.api.all())
}

func TestCRUD_ReadOnlyScreenHasNoFormsAndExports(t *testing.T) {
	h := newHarness(t)
	cookie, _ := h.signIn(model.RoleAdmin)
	h.api.on(http.MethodGet, "/website/contactrequest/", http.StatusOK, []model.ContactRequest{
		{ID: 1, Name: "Asha", Email: "asha@example.com", ContactNumber: "555-0100", Message: "Call me"},
	})

	rec := h.get("/admin/contact-requests", cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "<td>asha@example.com</td>")
	assert.NotContains(t, body, "<dialog")
	assert.Contains(t, body, `href="/admin/contact-requests/export.xlsx"`)

	rec = h.postForm("/admin/contact-requests", url.Values{"name": {"x"}}, cookie)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	rec = h.get("/admin/contact-requests/export.xlsx", cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, export.ContentTypeXLSX, rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "contact-requests-")
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("PK")))
}

func TestCRUD_SubServiceFormOffersServices(t *testing.T) {
	h := newHarness(t)
	cookie, _ := h.signIn(model.RoleAdmin)
	h.api.on(http.MethodGet, servicesAPI, http.StatusOK, []model.Service{{ID: 7, Name: "Cloud"}})
	h.api.on(http.MethodGet, "/website/subservice/", http.StatusOK, []model.SubService{
		{ID: 1, Name: "Migrations", ServiceDetails: &model.Service{ID: 7, Name: "Cloud"}},
	})

	rec := h.get("/admin/subservices", cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `<option value="7" selected>Cloud</option>`)
	assert.Contains(t, rec.Body.String(), `<option value="7">Cloud</option>`)

	before := len(h.api.all())
	rec = h.postForm("/admin/subservices", url.Values{"name": {"Backups"}}, cookie)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Len(t, h.api.all(), before)
	assert.Contains(t, rec.Body.String(), `<option value="7">Cloud</option>`)
}

func TestCRUD_ProductUploadRejectsNonImages(t *testing.T) {
	h := newHarness(t)
	cookie, _ := h.signIn(model.RoleAdmin)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("name", "Ledger"))
	part, err := mw.CreateFormFile("images", "notes.txt")
	require.NoError(t, err)
	_, _ = part.Write([]byte("plain text, not a picture"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/admin/products", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := h.serve(req, cookie)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "notes.txt: only JPEG, PNG, GIF, WebP and BMP images are accepted")
	assert.Zero(t, h.api.count(http.MethodPost, "/website/product/"))
}

func TestCRUD_UnknownIDIsNotFound(t *testing.T) {
	h := newHarness(t)
	cookie, _ := h.signIn(model.RoleAdmin)

	rec := h.postForm("/admin/services/abc", url.Values{"name": {"x"}}, cookie)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Empty(t, h.api.all())
}

func TestCRUD_UsersAreScopedToTheirCreator(t *testing.T) {
	h := newHarness(t)

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"user_id": 7}).SignedString([]byte("k"))
	require.NoError(t, err)
	sess := session.Create("alice", token, "refresh-token", model.RoleAdmin)
	require.NoError(t, h.store.Save(context.Background(), sess))
	cookie := &http.Cookie{Name: testCookie, Value: sess.ID()}

	const usersAPI = "/app/usermanagement/"
	h.api.on(http.MethodGet, usersAPI, http.StatusOK, []model.User{{ID: 1, Username: "carol", Email: "c@x.io", Role: model.RoleEmployee}})
	h.api.on(http.MethodPost, usersAPI, http.StatusCreated, model.User{ID: 2, Username: "bob", Email: "b@x.io", Role: model.RoleEmployee})

	rec := h.get("/admin/users", cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<td>carol</td>")

	rec = h.postForm("/admin/users", url.Values{"username": {"bob"}, "email": {"b@x.io"}, "role": {"employee"}}, cookie)
	require.Equal(t, http.StatusSeeOther, rec.Code)

	var list, create *apiCall
	for _, c := range h.api.all() {
		switch {
		case c.Method == http.MethodGet && c.Path == usersAPI:
			list = &c
		case c.Method == http.MethodPost && c.Path == usersAPI:
			create = &c
		}
	}
	require.NotNil(t, list)
	require.NotNil(t, create)
	assert.Equal(t, "created_by=7", list.Query)

	var posted map[string]any
	require.NoError(t, json.Unmarshal(create.Body, &posted))
	assert.Equal(t, float64(7), posted["created_by"])
	assert.Equal(t, "bob", posted["username"])
}

func TestCRUD_UsersWithoutUserIDClaimAreUnfiltered(t *testing.T) {
	h := newHarness(t)
	cookie, _ := h.signIn(model.RoleAdmin)
	h.api.on(http.MethodGet, "/app/usermanagement/", http.StatusOK, []model.User{})

	require.Equal(t, http.StatusOK, h.get("/admin/users", cookie).Code)

	calls := h.api.all()
	require.Len(t, calls, 1)
	assert.Empty(t, calls[0].Query)
}
