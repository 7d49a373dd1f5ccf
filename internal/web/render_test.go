package web

import (
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func writeTemplates(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	base := `{{define "base"}}<html>{{template "content" .}}</html>{{end}}`
	err := os.WriteFile(filepath.Join(dir, "base.tmpl"), []byte(base), 0o644)
	assert.NoError(t, err)

	assert.NoError(t, os.Mkdir(filepath.Join(dir, "pages"), 0o755))
	page := `{{define "content"}}<h1>{{.Title}}</h1>{{end}}`
	err = os.WriteFile(filepath.Join(dir, "pages", "home.tmpl"), []byte(page), 0o644)
	assert.NoError(t, err)

	return dir
}

func TestTemplateRenderer(t *testing.T) {
	dir := writeTemplates(t)

	tr, err := NewTemplateRenderer(dir)
	assert.NoError(t, err, "expected templates to parse")

	rr := httptest.NewRecorder()
	err = tr.Render(rr, 200, "home", struct{ Title string }{Title: "hello"})
	assert.NoError(t, err, "expected render to succeed")
	assert.Equal(t, 200, rr.Code)
	assert.Equal(t, "text/html; charset=utf-8", rr.Header().Get("Content-Type"))
	assert.Contains(t, rr.Body.String(), "<h1>hello</h1>")
}

func TestTemplateRenderer_UnknownPage(t *testing.T) {
	dir := writeTemplates(t)

	tr, err := NewTemplateRenderer(dir)
	assert.NoError(t, err)

	rr := httptest.NewRecorder()
	err = tr.Render(rr, 200, "missing", nil)
	assert.Error(t, err, "expected unknown page to fail")
	assert.Zero(t, rr.Body.Len(), "expected nothing written on error")
}
