package main

import (
	"context"
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"go.uber.org/zap"

	"github.com/empowerguard/moodjournal/internal/config"
	"github.com/empowerguard/moodjournal/internal/db"
	"github.com/empowerguard/moodjournal/internal/inference"
	"github.com/empowerguard/moodjournal/internal/logging"
	"github.com/empowerguard/moodjournal/internal/mcp"
)

// Version is set via -ldflags at build time.
var Version = "dev"

// cliCommands contains known CLI subcommands.
var cliCommands = map[string]bool{
	"write": true, "fetch": true, "list": true, "search": true, "delete": true,
	"stats": true, "trend": true, "analyze": true, "normalize": true,
	"export": true, "import": true, "serve": true,
	"help": true,
}

// isCLIMode determines if we should run CLI vs MCP server.
func isCLIMode() bool {
	if len(os.Args) < 2 {
		return false
	}
	arg := os.Args[1]
	if cliCommands[arg] {
		return true
	}
	return arg == "--help" || arg == "-h" || arg == "--version" || arg == "-v"
}

// isHelpOrVersion returns true if the user is requesting help or version info.
func isHelpOrVersion() bool {
	if len(os.Args) < 2 {
		return false
	}
	arg := os.Args[1]
	return arg == "--help" || arg == "-h" || arg == "--version" || arg == "-v" || arg == "help"
}

// isTerminal reports whether stdin is an interactive terminal.
func isTerminal() bool {
	fd := os.Stdin.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func printBanner() {
	fmt.Println(`
  moodjournal: journal entries with tone analysis

  Usage: moodjournal <command> [options]
         moodjournal --help

  MCP server mode requires piped input.`)
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// run dispatches to the banner, the CLI or the MCP server. Deferred cleanup
// of the logger and database runs before main exits.
func run() error {
	if len(os.Args) < 2 && isTerminal() {
		printBanner()
		return nil
	}

	// Help and version need no database.
	if isHelpOrVersion() {
		return newCLIApp(nil, nil, nil, zap.NewNop()).Run(os.Args)
	}

	if len(os.Args) >= 2 && !isCLIMode() && isTerminal() {
		return fmt.Errorf("unknown command %q\nRun 'moodjournal --help' for usage", os.Args[1])
	}

	baseDir, err := config.DefaultBaseDir()
	if err != nil {
		return err
	}

	cwd, _ := os.Getwd()
	cfg, err := config.LoadWithRepo(baseDir, cwd)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logger, err := logging.New(logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat})
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	if unknown := mcp.ValidateDisabledTools(cfg.DisabledTools); len(unknown) > 0 {
		logger.Warn("ignoring unknown disabled_tools", zap.Strings("tools", unknown))
	}
	if unknown := mcp.ValidateDisabledTypes(cfg.DisabledTypes); len(unknown) > 0 {
		logger.Warn("ignoring unknown disabled_types", zap.Strings("types", unknown))
	}

	database, err := db.Init(baseDir)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer database.Close()
	db.ConfigurePool(database, cfg)

	service, err := inference.NewService(context.Background(), cfg.InferenceOptions(nil))
	if err != nil {
		// Entries are still saved with the "unknown" tone.
		logger.Warn("inference provider unavailable, tone analysis disabled",
			zap.String("provider", cfg.Provider), zap.Error(err))
		service = inference.Disabled
	}
	analyzer := inference.NewPipeline(service, logger.Named("inference"))

	if isCLIMode() {
		return newCLIApp(database, cfg, analyzer, logger).Run(os.Args)
	}

	logger.Debug("starting MCP server on stdio", zap.String("version", Version))
	return mcp.Run(database, cfg, analyzer, Version)
}
