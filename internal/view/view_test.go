package view

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func render(t *testing.T, page string, data Page) string {
	t.Helper()
	r, err := New()
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, r.Render(&buf, page, data))
	return buf.String()
}

func TestNew_ParsesEveryPage(t *testing.T) {
	r, err := New()
	require.NoError(t, err)

	for _, page := range []string{"home", "about", "listing", "detail", "privacy", "terms", "public_form", "placeholder", "auth_form", "dashboard", "table", "confirm_delete", "error"} {
		assert.True(t, r.Has(page), page)
	}
}

func TestRender_UnknownPage(t *testing.T) {
	r, err := New()
	require.NoError(t, err)

	err = r.Render(&bytes.Buffer{}, "missing", Page{})
	assert.ErrorContains(t, err, `unknown page "missing"`)
}

func TestRender_TableRowsAndDialogs(t *testing.T) {
	table := Table{
		Resource: "service",
		Status:   "loaded",
		Columns:  []string{"Name", "Active"},
		Add:      &Form{ID: "add-service", Title: "Add service", Action: "/admin/services"},
		Rows: []Row{
			{ID: 1, Cells: []string{"Consulting", "Yes"}, Edit: &Form{ID: "edit-1", Action: "/admin/services/1"}, DeletePath: "/admin/services/1/delete"},
			{ID: 2, Cells: []string{"<b>Cloud</b>", "No"}, Edit: &Form{ID: "edit-2", Action: "/admin/services/2"}, DeletePath: "/admin/services/2/delete"},
		},
	}

	out := render(t, "table", Page{Title: "Services", Content: table})

	assert.Equal(t, 2, strings.Count(out, "<tr data-id="))
	assert.Contains(t, out, "Consulting")
	assert.Contains(t, out, "&lt;b&gt;Cloud&lt;/b&gt;")
	assert.Contains(t, out, `<dialog id="edit-2"`)
	assert.Contains(t, out, `<dialog id="add-service"`)
	assert.Contains(t, out, `href="/admin/services/1/delete"`)
}

func TestRender_TableStates(t *testing.T) {
	out := render(t, "table", Page{Content: Table{Status: "failed", Error: "request failed"}})
	assert.Contains(t, out, "request failed")
	assert.NotContains(t, out, "<table")

	out = render(t, "table", Page{Content: Table{Status: "loaded", Columns: []string{"Name"}, Empty: "No services yet."}})
	assert.Contains(t, out, "No services yet.")
}

func TestRender_OpenDialogKeepsFieldErrors(t *testing.T) {
	form := &Form{
		ID:     "add-service",
		Action: "/admin/services",
		Open:   true,
		Fields: []Field{{Name: "name", Label: "Name", Type: "text", Required: true, Error: "This field is required"}},
	}

	out := render(t, "table", Page{Content: Table{Status: "loaded", Add: form}})
	assert.Contains(t, out, "data-open-on-load")
	assert.Contains(t, out, "This field is required")
}

func TestRender_Placeholder(t *testing.T) {
	out := render(t, "placeholder", Page{Content: Placeholder{RefreshSeconds: 1}})
	assert.Contains(t, out, `http-equiv="refresh" content="1"`)
	assert.Contains(t, out, "<body></body>")
}

func TestRender_SiteLayout(t *testing.T) {
	out := render(t, "listing", Page{
		Title:  "Services",
		Nav:    []NavItem{{Label: "Services", Href: "/services", Active: true}},
		Assets: &Assets{StyleURL: "/assets/site.css?v=1", ScriptURL: "/assets/site.js?v=1"},
		User:   &User{Username: "alice", Role: "admin"},
		Content: Listing{
			Heading: "Our services",
			Cards:   []Card{{Title: "Consulting", Href: "/services/1"}},
		},
	})

	assert.Contains(t, out, "<title>Services | Innovyx Tech Labs</title>")
	assert.Contains(t, out, `href="/assets/site.css?v=1"`)
	assert.Contains(t, out, `src="/assets/site.js?v=1"`)
	assert.Contains(t, out, `href="/admin"`)
	assert.Contains(t, out, `aria-current="page"`)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate(10, "short"))
	assert.Equal(t, "abc…", truncate(3, "abcdef"))
}
