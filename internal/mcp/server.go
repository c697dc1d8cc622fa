package mcp

import (
	"github.com/mark3labs/mcp-go/server"

	"github.com/ziadkadry99/promptforge/internal/library"
	"github.com/ziadkadry99/promptforge/internal/refine"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Server wraps an MCP server that exposes the prompt library and the
// refinement operations to agents over stdio.
type Server struct {
	lib    *library.Store
	engine *refine.Engine
	mcp    *server.MCPServer
}

// NewServer creates a new MCP server with the given dependencies.
func NewServer(lib *library.Store, engine *refine.Engine) *Server {
	s := &Server{
		lib:    lib,
		engine: engine,
	}

	s.mcp = server.NewMCPServer(
		"promptforge",
		Version,
		server.WithToolCapabilities(false),
	)

	s.registerTools()

	return s
}

func (s *Server) registerTools() {
	s.mcp.AddTool(listPromptsTool, s.handleListPrompts)
	s.mcp.AddTool(getPromptTool, s.handleGetPrompt)
	s.mcp.AddTool(savePromptTool, s.handleSavePrompt)
	s.mcp.AddTool(refinePromptTool, s.handleRefinePrompt)
}

// Serve starts the MCP server on stdio. Stdout is used for MCP protocol
// messages; all logging must go to stderr.
func (s *Server) Serve() error {
	return server.ServeStdio(s.mcp)
}
