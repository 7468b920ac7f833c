package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/hpungsan/lectio/internal/errors"
	"github.com/hpungsan/lectio/internal/ops"
	"github.com/hpungsan/lectio/internal/web"
)

// cliView is the search slot used by the CLI.
const cliView = "cli"

// newCLIApp creates the CLI application with all commands.
func newCLIApp(lib *ops.Library, logger *slog.Logger) *cli.App {
	app := &cli.App{
		Name:    "lectio",
		Usage:   "Offline Bible reader with cached search",
		Version: Version,
		Commands: []*cli.Command{
			booksCmd(lib),
			bookCmd(lib),
			readCmd(lib),
			searchCmd(lib),
			randomCmd(lib),
			syncCmd(lib),
			refreshCmd(lib),
			statusCmd(lib),
			clearCmd(lib),
			exportCmd(lib),
			serveCmd(lib, logger),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// booksCmd creates the books command.
func booksCmd(lib *ops.Library) *cli.Command {
	return &cli.Command{
		Name:  "books",
		Usage: "List every book in canonical order",
		Action: func(c *cli.Context) error {
			output, err := lib.Books(c.Context)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c.App.Writer, output)
		},
	}
}

// bookCmd creates the book command.
func bookCmd(lib *ops.Library) *cli.Command {
	return &cli.Command{
		Name:      "book",
		Usage:     "Show one book and the chapters available for it",
		ArgsUsage: "<book>",
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return outputError(errors.NewInvalidRequest("book is required"))
			}
			output, err := lib.Book(c.Context, c.Args().First())
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c.App.Writer, output)
		},
	}
}

// readCmd creates the read command.
func readCmd(lib *ops.Library) *cli.Command {
	return &cli.Command{
		Name:      "read",
		Usage:     "Read a chapter",
		ArgsUsage: "<book> <chapter>",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "markdown", Aliases: []string{"m"}, Usage: "Print the chapter as markdown instead of JSON"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() < 2 {
				return outputError(errors.NewInvalidRequest("book and chapter are required"))
			}
			output, err := lib.Chapter(c.Context, ops.ChapterInput{
				Book:     c.Args().Get(0),
				Chapter:  c.Args().Get(1),
				Markdown: c.Bool("markdown"),
			})
			if err != nil {
				return outputError(err)
			}
			if c.Bool("markdown") {
				_, err := io.WriteString(c.App.Writer, output.Markdown)
				return err
			}
			return outputJSON(c.App.Writer, output)
		},
	}
}

// searchCmd creates the search command.
func searchCmd(lib *ops.Library) *cli.Command {
	return &cli.Command{
		Name:      "search",
		Usage:     "Case-insensitive substring search over verse text",
		ArgsUsage: "<query>",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "page", Aliases: []string{"p"}, Value: 1, Usage: "1-based result page"},
		},
		Action: func(c *cli.Context) error {
			output, err := lib.Search(c.Context, ops.SearchInput{
				Query: strings.Join(c.Args().Slice(), " "),
				Page:  c.Int("page"),
				View:  cliView,
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c.App.Writer, output)
		},
	}
}

// randomCmd creates the random command.
func randomCmd(lib *ops.Library) *cli.Command {
	return &cli.Command{
		Name:  "random",
		Usage: "Print a random verse",
		Action: func(c *cli.Context) error {
			output, err := lib.Random(c.Context)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c.App.Writer, output)
		},
	}
}

// syncCmd creates the sync command.
func syncCmd(lib *ops.Library) *cli.Command {
	return &cli.Command{
		Name:  "sync",
		Usage: "Load titles, headings and verses, fetching whatever is not cached or fresh",
		Action: func(c *cli.Context) error {
			if _, err := lib.Load(c.Context); err != nil {
				return outputError(err)
			}
			if err := lib.LoadBody(c.Context); err != nil {
				return outputError(err)
			}
			return outputJSON(c.App.Writer, lib.State())
		},
	}
}

// refreshCmd creates the refresh command.
func refreshCmd(lib *ops.Library) *cli.Command {
	return &cli.Command{
		Name:  "refresh",
		Usage: "Fetch titles and headings from the network regardless of cache age",
		Action: func(c *cli.Context) error {
			output, err := lib.Refresh(c.Context)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c.App.Writer, output)
		},
	}
}

// statusCmd creates the status command.
func statusCmd(lib *ops.Library) *cli.Command {
	return &cli.Command{
		Name:  "status",
		Usage: "Show cache age, freshness and stored entries",
		Action: func(c *cli.Context) error {
			output, err := lib.Status(c.Context)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c.App.Writer, output)
		},
	}
}

// clearCmd creates the clear command.
func clearCmd(lib *ops.Library) *cli.Command {
	return &cli.Command{
		Name:  "clear",
		Usage: "Delete every cached dataset",
		Action: func(c *cli.Context) error {
			output, err := lib.ClearCache(c.Context)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c.App.Writer, output)
		},
	}
}

// exportCmd creates the export command.
func exportCmd(lib *ops.Library) *cli.Command {
	return &cli.Command{
		Name:      "export",
		Usage:     "Export a chapter, or a whole book, as markdown",
		ArgsUsage: "<book> [chapter]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "path", Usage: "Output .md path (default: ~/.lectio/exports/<book>[-<chapter>]-<timestamp>.md)"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return outputError(errors.NewInvalidRequest("book is required"))
			}
			output, err := lib.Export(c.Context, ops.ExportInput{
				Book:    c.Args().Get(0),
				Chapter: c.Args().Get(1),
				Path:    c.String("path"),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c.App.Writer, output)
		},
	}
}

// serveCmd creates the serve command.
func serveCmd(lib *ops.Library, logger *slog.Logger) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the reader web UI",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "bind", Value: "127.0.0.1", Usage: "Address to bind"},
			&cli.IntFlag{Name: "port", Value: 8080, Usage: "Port to listen on"},
		},
		Action: func(c *cli.Context) error {
			port := c.Int("port")
			if port < 1 || port > 65535 {
				return outputError(errors.NewInvalidRequest(fmt.Sprintf("invalid port %d", port)))
			}
			srv := web.NewServer(lib, Version, c.String("bind"), port, logger)
			return web.Run(srv, logger)
		},
	}
}

// Helper functions

// outputJSON marshals result to w as indented JSON.
func outputJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError formats error for CLI.
func outputError(err error) error {
	if lErr, ok := errors.As(err); ok {
		return cli.Exit(fmt.Sprintf("[%s] %s", lErr.Code, lErr.Message), 1)
	}
	return cli.Exit(err.Error(), 1)
}
