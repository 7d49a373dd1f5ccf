package web

import (
	"bytes"
	"fmt"
	"html/template"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/stretchr/testify/mock"
)

// Renderer is the seam between handlers and the templating collaborator.
// Handlers select a page and hand over its data; how the page becomes
// HTML is not their concern.
type Renderer interface {
	Render(w http.ResponseWriter, statusCode int, page string, data any) error
}

type TemplateRenderer struct {
	cache map[string]*template.Template
}

// NewTemplateRenderer parses every page under dir/pages together with the
// shared base layout and caches the result keyed by page name.
func NewTemplateRenderer(dir string) (*TemplateRenderer, error) {
	tmplCache := make(map[string]*template.Template)

	pages, err := filepath.Glob(filepath.Join(dir, "pages", "*.tmpl"))
	if err != nil {
		return nil, err
	}

	for _, page := range pages {
		name := strings.TrimSuffix(filepath.Base(page), ".tmpl")
		patterns := []string{
			filepath.Join(dir, "base.tmpl"),
			page,
		}

		ts, err := template.New(name).ParseFiles(patterns...)
		if err != nil {
			return nil, err
		}

		tmplCache[name] = ts
	}

	return &TemplateRenderer{cache: tmplCache}, nil
}

func (tr *TemplateRenderer) Render(w http.ResponseWriter, statusCode int, page string, data any) error {
	tmpl, ok := tr.cache[page]
	if !ok {
		return fmt.Errorf("template %q not in cache", page)
	}

	// render to a buffer first so a template error never produces a
	// half-written response
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "base", data); err != nil {
		return err
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(statusCode)
	_, err := buf.WriteTo(w)
	return err
}

type MockRenderer struct {
	mock.Mock
}

func (m *MockRenderer) Render(w http.ResponseWriter, statusCode int, page string, data any) error {
	args := m.Called(w, statusCode, page, data)
	return args.Error(0)
}
