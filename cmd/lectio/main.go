package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/hpungsan/lectio/internal/config"
	"github.com/hpungsan/lectio/internal/db"
	"github.com/hpungsan/lectio/internal/loader"
	"github.com/hpungsan/lectio/internal/logging"
	"github.com/hpungsan/lectio/internal/mcp"
	"github.com/hpungsan/lectio/internal/ops"
)

// Version is set via -ldflags at build time.
var Version = "dev"

// cliCommands contains known CLI subcommands.
var cliCommands = map[string]bool{
	"books": true, "book": true, "read": true, "search": true, "random": true,
	"sync": true, "refresh": true, "status": true, "clear": true,
	"export": true, "serve": true,
	"help": true,
}

// isCLIMode determines if we should run CLI vs MCP server.
func isCLIMode() bool {
	if len(os.Args) < 2 {
		return false // No args → MCP server
	}
	arg := os.Args[1]
	// Known subcommand → CLI
	if cliCommands[arg] {
		return true
	}
	// --help or --version → CLI
	if arg == "--help" || arg == "-h" || arg == "--version" || arg == "-v" {
		return true
	}
	return false // Default → MCP server
}

// isHelpOrVersion returns true if the user is requesting help or version info.
func isHelpOrVersion() bool {
	if len(os.Args) < 2 {
		return false
	}
	arg := os.Args[1]
	return arg == "--help" || arg == "-h" || arg == "--version" || arg == "-v" || arg == "help"
}

// isTerminal returns true if stdin is a terminal (not piped).
func isTerminal() bool {
	stat, _ := os.Stdin.Stat()
	return (stat.Mode() & os.ModeCharDevice) != 0
}

// printBanner displays a friendly banner when run interactively without args.
func printBanner() {
	fmt.Println(`
   _           _   _
  | | ___  ___| |_(_) ___
  | |/ _ \/ __| __| |/ _ \
  | |  __/ (__| |_| | (_) |
  |_|\___|\___|\__|_|\___/

  Offline Bible reader with cached search

  Usage: lectio <command> [options]
         lectio --help

  MCP server mode requires piped input.`)
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
	os.Exit(1)
}

func main() {
	// No args + interactive terminal → show banner and exit
	if len(os.Args) < 2 && isTerminal() {
		printBanner()
		return
	}

	// Handle --help/--version before store init (no store needed)
	if isHelpOrVersion() {
		app := newCLIApp(nil, nil)
		if err := app.Run(os.Args); err != nil {
			fatalf("%v", err)
		}
		return
	}

	// A missing .env is normal
	_ = godotenv.Load()

	baseDir, err := ops.DefaultBaseDir()
	if err != nil {
		fatalf("could not determine home directory: %v", err)
	}

	cwd, err := os.Getwd()
	if err != nil {
		fatalf("could not determine working directory: %v", err)
	}

	cfg, err := config.LoadWithRepo(baseDir, cwd)
	if err != nil {
		fatalf("failed to load config: %v", err)
	}

	// stdout is reserved for MCP traffic and CLI JSON
	logger := logging.Init(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	warnUnknownDisabled(logger, cfg)

	store := db.NewStore(baseDir, cfg)
	if err := store.Open(); err != nil {
		fatalf("failed to initialize database: %v", err)
	}
	defer store.Close()

	ld := loader.New(store, loader.NewHTTPSource(cfg), loader.NewPolicy(cfg.CacheExpiry()),
		loader.WithLogger(logger))
	lib := ops.NewLibrary(ld, store, cfg, baseDir, ops.WithLogger(logger))

	// CLI mode: known subcommand
	if isCLIMode() {
		app := newCLIApp(lib, logger)
		if err := app.Run(os.Args); err != nil {
			store.Close()
			fatalf("%v", err)
		}
		return
	}

	// Unknown argument + terminal → show error (don't start MCP server)
	if len(os.Args) >= 2 && isTerminal() {
		fmt.Fprintf(os.Stderr, "error: unknown command %q\n", os.Args[1])
		fmt.Fprintf(os.Stderr, "Run 'lectio --help' for usage.\n")
		store.Close()
		os.Exit(1)
	}

	// MCP server mode (default)
	if err := mcp.Run(lib, cfg, Version); err != nil {
		store.Close()
		fatalf("%v", err)
	}
}

// warnUnknownDisabled logs disabled_tools / disabled_types entries that match nothing.
func warnUnknownDisabled(logger *slog.Logger, cfg *config.Config) {
	if unknown := mcp.ValidateDisabledTools(cfg.DisabledTools); len(unknown) > 0 {
		logger.Warn("unknown tools in disabled_tools", "tools", unknown)
	}
	if unknown := mcp.ValidateDisabledTypes(cfg.DisabledTypes); len(unknown) > 0 {
		logger.Warn("unknown types in disabled_types", "types", unknown, "known", mcp.KnownTypes)
	}
}
