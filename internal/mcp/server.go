package mcp

import (
	"context"
	"database/sql"
	"slices"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/empowerguard/moodjournal/internal/config"
	"github.com/empowerguard/moodjournal/internal/ops"
)

// KnownTypes are the tool-name prefixes accepted in disabled_types.
var KnownTypes = []string{"journal", "tone"}

type toolHandler func(*Handlers, context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error)

type tool struct {
	def    mcp.Tool
	handle toolHandler
}

// tools is kept sorted by name.
var tools = []tool{
	{deleteToolDef, (*Handlers).HandleDelete},
	{exportToolDef, (*Handlers).HandleExport},
	{fetchToolDef, (*Handlers).HandleFetch},
	{importToolDef, (*Handlers).HandleImport},
	{listToolDef, (*Handlers).HandleList},
	{searchToolDef, (*Handlers).HandleSearch},
	{statsToolDef, (*Handlers).HandleStats},
	{writeToolDef, (*Handlers).HandleWrite},
	{analyzeToolDef, (*Handlers).HandleAnalyze},
	{normalizeToolDef, (*Handlers).HandleNormalize},
}

// AllToolNames returns every tool name in sorted order.
func AllToolNames() []string {
	names := make([]string, len(tools))
	for i, t := range tools {
		names[i] = t.def.Name
	}
	return names
}

// ValidateDisabledTools returns the entries of names that are not tools.
func ValidateDisabledTools(names []string) []string {
	return unknownNames(names, AllToolNames())
}

// ValidateDisabledTypes returns the entries of names that are not tool types.
func ValidateDisabledTypes(names []string) []string {
	return unknownNames(names, KnownTypes)
}

func unknownNames(names, known []string) []string {
	unknown := []string{}
	for _, name := range names {
		if !slices.Contains(known, name) {
			unknown = append(unknown, name)
		}
	}
	return unknown
}

// GetTypeForTool returns the type prefix of a tool name, "journal" for
// "journal_write". Names without an underscore have no type.
func GetTypeForTool(toolName string) string {
	prefix, _, found := strings.Cut(toolName, "_")
	if !found {
		return ""
	}
	return prefix
}

// ExpandTypesToTools returns the names of all tools whose type is in types.
func ExpandTypesToTools(types []string) []string {
	if len(types) == 0 {
		return nil
	}
	var names []string
	for _, name := range AllToolNames() {
		if slices.Contains(types, GetTypeForTool(name)) {
			names = append(names, name)
		}
	}
	return names
}

// NewServer creates an MCP server exposing the journal and tone tools, minus
// those named in disabled_tools or belonging to a disabled_types entry.
func NewServer(db *sql.DB, cfg *config.Config, analyzer ops.Analyzer, version string) *server.MCPServer {
	s := server.NewMCPServer("moodjournal", version, server.WithToolCapabilities(true))
	h := NewHandlers(db, cfg, analyzer)

	disabled := append(ExpandTypesToTools(cfg.DisabledTypes), cfg.DisabledTools...)
	for _, t := range tools {
		if slices.Contains(disabled, t.def.Name) {
			continue
		}
		s.AddTool(t.def, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return t.handle(h, ctx, req)
		})
	}
	return s
}

// Run serves the MCP tools over stdio until stdin closes.
func Run(db *sql.DB, cfg *config.Config, analyzer ops.Analyzer, version string) error {
	return server.ServeStdio(NewServer(db, cfg, analyzer, version))
}
