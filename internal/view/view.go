package view

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"path"
	"strings"
	"time"

	"github.com/CodeCrafters02/ITL-HRMS-2025-sub002/internal/model"
)

// SiteName is shown in titles, the header and the footer.
const SiteName = "Innovyx Tech Labs"

//go:embed templates
var files embed.FS

// Renderer holds one parsed template set per page, each sharing the layouts and
// partials.
type Renderer struct {
	pages map[string]*template.Template
}

var funcs = template.FuncMap{
	"year":     func() int { return time.Now().Year() },
	"truncate": truncate,
	"join":     strings.Join,
	"siteName": func() string { return SiteName },
	"landing":  model.LandingPath,
}

func New() (*Renderer, error) {
	base, err := template.New("base").Funcs(funcs).ParseFS(files, "templates/layouts/*.html", "templates/partials/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse layouts: %w", err)
	}

	entries, err := fs.Glob(files, "templates/pages/*.html")
	if err != nil {
		return nil, fmt.Errorf("list pages: %w", err)
	}

	pages := make(map[string]*template.Template, len(entries))
	for _, entry := range entries {
		clone, err := base.Clone()
		if err != nil {
			return nil, fmt.Errorf("clone layouts: %w", err)
		}
		if _, err := clone.ParseFS(files, entry); err != nil {
			return nil, fmt.Errorf("parse %s: %w", entry, err)
		}
		pages[strings.TrimSuffix(path.Base(entry), ".html")] = clone
	}

	return &Renderer{pages: pages}, nil
}

// Render executes page into w. Output is buffered so a failing template never
// produces a half-written page.
func (r *Renderer) Render(w io.Writer, page string, data any) error {
	tmpl, ok := r.pages[page]
	if !ok {
		return fmt.Errorf("unknown page %q", page)
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "page", data); err != nil {
		return fmt.Errorf("render %s: %w", page, err)
	}

	_, err := buf.WriteTo(w)
	return err
}

func (r *Renderer) Has(page string) bool {
	_, ok := r.pages[page]
	return ok
}

func truncate(n int, s string) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return strings.TrimSpace(string(runes[:n])) + "…"
}
