package mcp

import "github.com/mark3labs/mcp-go/mcp"

var booksToolDef = mcp.NewTool("bible_books",
	mcp.WithDescription("List every book in canonical order with its name, author, date and chapter count."),
)

var chapterToolDef = mcp.NewTool("bible_chapter",
	mcp.WithDescription("Read one chapter. Verses come in reading order with their section headings; prev/next give the neighbouring chapter numbers."),
	mcp.WithString("book",
		mcp.Required(),
		mcp.Description("Book id as listed by bible_books (e.g. \"1\" for the first book)"),
	),
	mcp.WithString("chapter",
		mcp.Required(),
		mcp.Description("Chapter id (e.g. \"3\")"),
	),
	mcp.WithBoolean("markdown",
		mcp.Description("Also return the chapter rendered as markdown"),
	),
)

var searchToolDef = mcp.NewTool("bible_search",
	mcp.WithDescription("Case-insensitive substring search over verse text. Results are in canonical order, 100 per page."),
	mcp.WithString("query",
		mcp.Required(),
		mcp.Description("Text to look for; surrounding whitespace is ignored"),
	),
	mcp.WithNumber("page",
		mcp.Description("1-based page number; out-of-range values are clamped"),
	),
	mcp.WithString("view",
		mcp.Description("Caller-chosen result slot; a newer search in the same slot supersedes an older one"),
	),
)

var randomToolDef = mcp.NewTool("bible_random",
	mcp.WithDescription("Pick a random verse."),
)

var exportToolDef = mcp.NewTool("bible_export",
	mcp.WithDescription("Export a chapter, or a whole book, as a markdown file under ~/.lectio/exports or an allowed path."),
	mcp.WithString("book",
		mcp.Required(),
		mcp.Description("Book id"),
	),
	mcp.WithString("chapter",
		mcp.Description("Chapter id; omit to export the whole book"),
	),
	mcp.WithString("path",
		mcp.Description("Destination .md file; defaults to a timestamped file in ~/.lectio/exports"),
	),
)

var refreshToolDef = mcp.NewTool("cache_refresh",
	mcp.WithDescription("Fetch book titles and headings from the network regardless of cache age. Falls back to the offline copy on failure."),
)

var clearToolDef = mcp.NewTool("cache_clear",
	mcp.WithDescription("Delete every cached dataset and reset the session."),
)

var statusToolDef = mcp.NewTool("cache_status",
	mcp.WithDescription("Report when the cache was last written, whether it is still fresh, and the size of each stored dataset."),
)
