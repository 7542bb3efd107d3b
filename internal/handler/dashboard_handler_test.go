package handler

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CodeCrafters02/ITL-HRMS-2025-sub002/internal/model"
	"github.com/CodeCrafters02/ITL-HRMS-2025-sub002/internal/resource"
)

func stat(value, label string) string {
	return `<span class="value">` + value + `</span><span class="label">` + label + `</span>`
}

func TestAdminDashboard_CountsEveryCollection(t *testing.T) {
	h := newHarness(t)
	cookie, _ := h.signIn(model.RoleAdmin)
	h.api.on(http.MethodGet, resource.UsersPath, http.StatusOK, []model.User{{ID: 1}, {ID: 2}})
	h.api.on(http.MethodGet, resource.ServicesPath, http.StatusOK, `{"count":3,"results":[{"id":1},{"id":2},{"id":3}]}`)
	h.api.on(http.MethodGet, resource.SubServicesPath, http.StatusOK, []model.SubService{})
	h.api.on(http.MethodGet, resource.ProductsPath, http.StatusOK, []model.Product{{ID: 1}})
	h.api.on(http.MethodGet, resource.ContactRequestsPath, http.StatusInternalServerError, `{"detail":"boom"}`)
	h.api.on(http.MethodGet, resource.DemoRequestsPath, http.StatusOK, []model.DemoRequest{{ID: 1}, {ID: 2}, {ID: 3}, {ID: 4}})

	rec := h.get("/admin", cookie)

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Welcome back, alice.")
	assert.Contains(t, body, stat("2", "Users"))
	assert.Contains(t, body, stat("3", "Services"))
	assert.Contains(t, body, stat("0", "Sub-services"))
	assert.Contains(t, body, stat("1", "Products"))
	assert.Contains(t, body, stat("–", "Contact requests"))
	assert.Contains(t, body, stat("4", "Demo requests"))
	assert.Len(t, h.api.all(), 6)
}

func TestMasterDashboard(t *testing.T) {
	h := newHarness(t)
	cookie, _ := h.signIn(model.RoleMaster)
	h.api.on(http.MethodGet, resource.CompaniesPath, http.StatusOK, []model.Company{{ID: 1}})
	h.api.on(http.MethodGet, resource.UsersPath, http.StatusOK, []model.User{{ID: 1}, {ID: 2}})

	rec := h.get("/master-dashboard", cookie)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), stat("1", "Companies"))
	assert.Contains(t, rec.Body.String(), stat("2", "Users"))
}

func TestEmployeeDashboard_MakesNoBackendCalls(t *testing.T) {
	h := newHarness(t)
	cookie, _ := h.signIn(model.RoleEmployee)

	rec := h.get("/employee", cookie)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Employee dashboard")
	assert.Empty(t, h.api.all())
}

func TestDashboard_ExpiredSessionSignsOut(t *testing.T) {
	h := newHarness(t)
	cookie, _ := h.signIn(model.RoleMaster)
	h.api.on(http.MethodGet, resource.CompaniesPath, http.StatusUnauthorized, `{"detail":"Given token not valid for any token type"}`)
	h.api.on(http.MethodGet, resource.UsersPath, http.StatusUnauthorized, `{"detail":"Given token not valid for any token type"}`)
	h.api.on(http.MethodPost, "/api/token/refresh/", http.StatusUnauthorized, `{"detail":"Token is invalid or expired"}`)

	rec := h.get("/master-dashboard", cookie)

	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Contains(t, rec.Header().Get("Location"), "/signin")
	assert.Zero(t, h.store.Len())
}
