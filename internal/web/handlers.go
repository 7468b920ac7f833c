package web

import (
	"fmt"
	"html/template"
	"net"
	"net/http"
	"net/url"
	"strconv"

	"github.com/hpungsan/lectio/internal/errors"
	"github.com/hpungsan/lectio/internal/ops"
	"github.com/hpungsan/lectio/internal/search"
)

// Handlers contains HTTP route handlers for the web UI.
type Handlers struct {
	lib      *ops.Library
	renderer *Renderer
}

func (h *Handlers) page(title, nav string) PageData {
	return PageData{
		Title:   title,
		Version: h.renderer.version,
		Nav:     nav,
		State:   h.lib.State(),
	}
}

func (h *Handlers) fail(w http.ResponseWriter, r *http.Request, err error) {
	h.renderer.renderError(w, r, h.lib.State(), err)
}

// HandleBooks handles GET / — the book list in title order.
func (h *Handlers) HandleBooks(w http.ResponseWriter, r *http.Request) {
	out, err := h.lib.Books(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, out)
		return
	}
	h.renderer.renderPage(w, "books", BooksPageData{
		PageData: h.page("Books", "books"),
		Books:    out.Books,
	})
}

// HandleBook handles GET /books/{book} — the chapter index of one book.
func (h *Handlers) HandleBook(w http.ResponseWriter, r *http.Request) {
	out, err := h.lib.Book(r.Context(), r.PathValue("book"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, out)
		return
	}
	h.renderer.renderPage(w, "book", BookPageData{
		PageData: h.page(out.Name, "books"),
		Book:     out,
	})
}

// HandleChapter handles GET /books/{book}/{chapter} — the reading view.
func (h *Handlers) HandleChapter(w http.ResponseWriter, r *http.Request) {
	out, err := h.lib.Chapter(r.Context(), ops.ChapterInput{
		Book:     r.PathValue("book"),
		Chapter:  r.PathValue("chapter"),
		Markdown: !wantsJSON(r),
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, out)
		return
	}
	h.renderer.renderPage(w, "chapter", ChapterPageData{
		PageData:     h.page(fmt.Sprintf("%s %s", out.Book.Name, out.Chapter), "books"),
		Chapter:      out,
		RenderedHTML: renderMarkdown(out.Markdown),
	})
}

// HandleSearch handles GET /search?q=&page= — substring search over verse text.
func (h *Handlers) HandleSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	data := SearchPageData{
		PageData: h.page("Search", "search"),
		Query:    query,
		HasQuery: query != "",
	}

	if query == "" && !wantsJSON(r) {
		h.renderer.renderPage(w, "search", data)
		return
	}

	out, err := h.lib.Search(r.Context(), ops.SearchInput{
		Query: query,
		Page:  search.ParsePage(r.URL.Query().Get("page")),
		View:  searchView(r),
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, out)
		return
	}

	data.PageData.State = out.State
	data.Pagination = out.Pagination
	data.Message = out.Message
	if out.Superseded {
		data.Message = "A newer search replaced this one."
	}
	data.Items = make([]SearchItem, len(out.Items))
	for i, item := range out.Items {
		data.Items[i] = SearchItem{
			Result:      item,
			Highlighted: template.HTML(search.Highlight(item.Text, out.Query)),
		}
	}
	if out.Pagination.HasPrev {
		data.PrevURL = searchURL(query, out.Pagination.Page-1)
	}
	if out.Pagination.HasNext {
		data.NextURL = searchURL(query, out.Pagination.Page+1)
	}

	h.renderer.renderPage(w, "search", data)
}

// HandleRandom handles GET /random — redirects to a random verse.
func (h *Handlers) HandleRandom(w http.ResponseWriter, r *http.Request) {
	out, err := h.lib.Random(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, out)
		return
	}
	target := fmt.Sprintf("/books/%s/%s#v%d", url.PathEscape(out.Book), url.PathEscape(out.Chapter), out.Verse)
	http.Redirect(w, r, target, http.StatusFound)
}

// HandleStatus handles GET /status — cache freshness and stored entries.
func (h *Handlers) HandleStatus(w http.ResponseWriter, r *http.Request) {
	out, err := h.lib.Status(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, out)
		return
	}
	h.renderer.renderPage(w, "status", StatusPageData{
		PageData: h.page("Status", "status"),
		Status:   out,
	})
}

// HandleRefresh handles POST /refresh — forces a metadata fetch.
func (h *Handlers) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	out, err := h.lib.Refresh(r.Context())
	// With data still loaded, the status page shows the error banner above it
	if err != nil && (wantsJSON(r) || out.Titles == 0) {
		h.fail(w, r, err)
		return
	}
	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, out)
		return
	}
	http.Redirect(w, r, "/status", http.StatusSeeOther)
}

// HandleClear handles POST /clear — wipes the cache. Requires confirm=true.
func (h *Handlers) HandleClear(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.fail(w, r, errors.NewInvalidRequest("invalid form data"))
		return
	}
	if r.FormValue("confirm") != "true" {
		h.fail(w, r, errors.NewInvalidRequest("confirm parameter must be \"true\""))
		return
	}

	out, err := h.lib.ClearCache(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, out)
		return
	}
	http.Redirect(w, r, "/status", http.StatusSeeOther)
}

// searchURL builds the link for one page of a query.
func searchURL(query string, page int) string {
	v := url.Values{}
	v.Set("q", query)
	v.Set("page", strconv.Itoa(page))
	return "/search?" + v.Encode()
}

// searchView scopes "latest search wins" to one client, so two browsers
// searching at once do not cancel each other.
func searchView(r *http.Request) string {
	if v := r.URL.Query().Get("view"); v != "" {
		return "web:" + v
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return "web:" + host
}
