package web

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/yuin/goldmark"

	"github.com/hpungsan/lectio/internal/errors"
	"github.com/hpungsan/lectio/internal/ops"
	"github.com/hpungsan/lectio/internal/search"
)

// PageData contains common fields used across all page templates.
type PageData struct {
	Title   string
	Version string
	Nav     string // active nav item: "books", "search", "status"
	State   ops.State
}

// BooksPageData is the template data for the book list.
type BooksPageData struct {
	PageData
	Books []ops.BookItem
}

// BookPageData is the template data for a single book's chapter index.
type BookPageData struct {
	PageData
	Book *ops.BookOutput
}

// ChapterPageData is the template data for the reading view.
type ChapterPageData struct {
	PageData
	Chapter      *ops.ChapterOutput
	RenderedHTML template.HTML
}

// SearchItem is one highlighted search hit.
type SearchItem struct {
	search.Result
	Highlighted template.HTML
}

// SearchPageData is the template data for the search page.
type SearchPageData struct {
	PageData
	Query      string
	HasQuery   bool
	Items      []SearchItem
	Pagination search.Pagination
	Message    string
	PrevURL    string
	NextURL    string
}

// StatusPageData is the template data for the cache status page.
type StatusPageData struct {
	PageData
	Status *ops.StatusOutput
}

// ErrorPageData is the template data for the error page.
type ErrorPageData struct {
	PageData
	StatusCode int
	Code       string
	Message    string
}

// Renderer manages template parsing and rendering.
type Renderer struct {
	templates map[string]*template.Template
	version   string
	logger    *slog.Logger
}

// NewRenderer creates a Renderer by parsing templates from the given FS.
func NewRenderer(templateFS fs.FS, version string, logger *slog.Logger) *Renderer {
	if logger == nil {
		logger = slog.Default()
	}
	funcMap := template.FuncMap{
		"add":   func(a, b int) int { return a + b },
		"sub":   func(a, b int) int { return a - b },
		"comma": func(n int) string { return humanize.Comma(int64(n)) },
	}

	// Parse layout as the base template
	layoutTmpl := template.Must(template.New("layout").Funcs(funcMap).ParseFS(templateFS, "layout.html"))

	pages := map[string]string{
		"books":   "books.html",
		"book":    "book.html",
		"chapter": "chapter.html",
		"search":  "search.html",
		"status":  "status.html",
		"error":   "error.html",
	}

	templates := make(map[string]*template.Template, len(pages))
	for name, file := range pages {
		t := template.Must(layoutTmpl.Clone())
		template.Must(t.ParseFS(templateFS, file))
		templates[name] = t
	}

	return &Renderer{
		templates: templates,
		version:   version,
		logger:    logger,
	}
}

// renderPage renders a named page template with the given data and HTTP 200 status.
func (r *Renderer) renderPage(w http.ResponseWriter, name string, data any) {
	r.renderPageStatus(w, http.StatusOK, name, data)
}

// renderPageStatus renders a named page template with the given data and HTTP status code.
func (r *Renderer) renderPageStatus(w http.ResponseWriter, status int, name string, data any) {
	t, ok := r.templates[name]
	if !ok {
		r.logger.Error("template not found", "name", name)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		r.logger.Error("template execution failed", "name", name, "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

// renderError renders an error response with content negotiation.
func (r *Renderer) renderError(w http.ResponseWriter, req *http.Request, state ops.State, err error) {
	var lErr *errors.LectioError
	if !stderrors.As(err, &lErr) {
		lErr = errors.NewInternal(err)
	}
	status := lErr.Status
	if status == 0 {
		status = http.StatusInternalServerError
	}

	if wantsJSON(req) {
		renderJSON(w, status, map[string]any{
			"error": map[string]any{
				"code":    string(lErr.Code),
				"message": lErr.Message,
				"status":  status,
			},
		})
		return
	}

	r.renderPageStatus(w, status, "error", ErrorPageData{
		PageData: PageData{
			Title:   fmt.Sprintf("Error %d", status),
			Version: r.version,
			State:   state,
		},
		StatusCode: status,
		Code:       string(lErr.Code),
		Message:    lErr.Message,
	})
}

// wantsJSON reports whether the client asked for a JSON response.
func wantsJSON(req *http.Request) bool {
	return strings.Contains(req.Header.Get("Accept"), "application/json")
}

// renderJSON writes a JSON response.
func renderJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// renderMarkdown converts markdown text to HTML using goldmark.
// Raw HTML in the source is dropped by goldmark's default renderer.
func renderMarkdown(md string) template.HTML {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(md), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(md))
	}
	return template.HTML(buf.String())
}
