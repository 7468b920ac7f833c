package mcp

import (
	"context"
	"encoding/json"
	stderrors "errors"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/hpungsan/lectio/internal/errors"
	"github.com/hpungsan/lectio/internal/ops"
)

// DefaultView is the search slot used when a caller does not name one.
const DefaultView = "mcp"

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	lib *ops.Library
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(lib *ops.Library) *Handlers {
	return &Handlers{lib: lib}
}

// Request types for each tool

// ChapterRequest represents the arguments for bible_chapter.
type ChapterRequest struct {
	Book     string `json:"book"`
	Chapter  string `json:"chapter"`
	Markdown bool   `json:"markdown,omitempty"`
}

// SearchRequest represents the arguments for bible_search.
type SearchRequest struct {
	Query string `json:"query"`
	Page  int    `json:"page,omitempty"`
	View  string `json:"view,omitempty"`
}

// ExportRequest represents the arguments for bible_export.
type ExportRequest struct {
	Book    string `json:"book"`
	Chapter string `json:"chapter,omitempty"`
	Path    string `json:"path,omitempty"`
}

// Handler implementations

// HandleBooks handles the bible_books tool call.
func (h *Handlers) HandleBooks(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := h.lib.Books(ctx)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleChapter handles the bible_chapter tool call.
func (h *Handlers) HandleChapter(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ChapterRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := h.lib.Chapter(ctx, ops.ChapterInput{
		Book:     input.Book,
		Chapter:  input.Chapter,
		Markdown: input.Markdown,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleSearch handles the bible_search tool call.
func (h *Handlers) HandleSearch(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[SearchRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	view := input.View
	if view == "" {
		view = DefaultView
	}
	result, err := h.lib.Search(ctx, ops.SearchInput{
		Query: input.Query,
		Page:  input.Page,
		View:  view,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleRandom handles the bible_random tool call.
func (h *Handlers) HandleRandom(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := h.lib.Random(ctx)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleExport handles the bible_export tool call.
func (h *Handlers) HandleExport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ExportRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := h.lib.Export(ctx, ops.ExportInput{
		Book:    input.Book,
		Chapter: input.Chapter,
		Path:    input.Path,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleRefresh handles the cache_refresh tool call.
func (h *Handlers) HandleRefresh(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := h.lib.Refresh(ctx)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleClear handles the cache_clear tool call.
func (h *Handlers) HandleClear(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := h.lib.ClearCache(ctx)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleStatus handles the cache_status tool call.
func (h *Handlers) HandleStatus(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := h.lib.Status(ctx)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// Result helpers

// errorResult creates an MCP error result from any error.
// Uses IsError: true so MCP clients recognize failures properly.
// Internal error details are not exposed to avoid leaking file paths or SQL errors.
func errorResult(err error) *mcp.CallToolResult {
	var payload map[string]any

	var lErr *errors.LectioError
	if stderrors.As(err, &lErr) {
		message := lErr.Message
		// Keep wrapper context such as "refresh: ..." added above the typed error
		if err != error(lErr) && lErr.Code != errors.ErrInternal {
			message = err.Error()
		}
		errorObj := map[string]any{
			"code":    lErr.Code,
			"message": message,
			"status":  lErr.Status,
		}
		if lErr.Code != errors.ErrInternal && lErr.Details != nil {
			errorObj["details"] = lErr.Details
		}
		payload = map[string]any{"error": errorObj}
	} else {
		payload = map[string]any{
			"error": map[string]any{
				"code":    "INTERNAL",
				"message": "an internal error occurred",
				"status":  500,
			},
		}
	}

	content, _ := json.Marshal(payload)
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(content)}},
		IsError: true,
	}
}

// successResult creates an MCP success result from any data.
func successResult(data any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(data)
}
