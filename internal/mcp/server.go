package mcp

import (
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/hpungsan/cardsmith/internal/llm"
	"github.com/hpungsan/cardsmith/internal/prompts"
	"github.com/hpungsan/cardsmith/internal/session"
)

// toolEntry pairs a tool definition with a handler factory.
type toolEntry struct {
	def     mcp.Tool
	handler func(*Handlers) server.ToolHandlerFunc
}

// toolRegistry maps tool names to their definitions and handler factories.
var toolRegistry = map[string]toolEntry{
	"card_styles": {
		def:     stylesToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleStyles },
	},
	"card_generate": {
		def:     generateToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleGenerate },
	},
	"card_history": {
		def:     historyToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleHistory },
	},
	"card_current": {
		def:     currentToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleCurrent },
	},
}

// AllToolNames returns a list of all tool names.
func AllToolNames() []string {
	names := make([]string, 0, len(toolRegistry))
	for name := range toolRegistry {
		names = append(names, name)
	}
	return names
}

// Deps are what the tool server generates with.
type Deps struct {
	Catalog   *prompts.Catalog
	Generator llm.Generator
	Logger    *slog.Logger
	Version   string
}

// NewServer creates an MCP server with the card tools registered. The
// server owns a single session for its lifetime.
func NewServer(d Deps) *server.MCPServer {
	s := server.NewMCPServer(
		"cardsmith",
		d.Version,
		server.WithToolCapabilities(true),
	)

	opts := []session.Option{}
	if d.Logger != nil {
		opts = append(opts, session.WithLogger(d.Logger))
	}
	h := NewHandlers(session.New("mcp", opts...), d.Catalog, d.Generator)

	for _, entry := range toolRegistry {
		s.AddTool(entry.def, entry.handler(h))
	}
	return s
}

// Run serves the card tools over stdio until stdin closes.
func Run(d Deps) error {
	if d.Logger != nil {
		d.Logger.Info("mcp server starting", "tools", len(toolRegistry))
	}
	return server.ServeStdio(NewServer(d))
}
