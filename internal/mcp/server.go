// Package mcp exposes document listing and search as Model Context Protocol
// tools over stdio.
package mcp

import (
	"context"
	"io"
	"os"

	"github.com/mark3labs/mcp-go/server"

	"docsift/internal/service"
)

const (
	// ServerName is the MCP server name
	ServerName = "docsift"
	// ServerVersion is the current server version
	ServerVersion = "1.0.0"
)

// Server wraps the MCP server with application dependencies
type Server struct {
	mcp        *server.MCPServer
	docService service.DocumentService
}

// NewServer creates a new MCP server backed by docService.
func NewServer(docService service.DocumentService) *Server {
	s := &Server{
		mcp:        server.NewMCPServer(ServerName, ServerVersion),
		docService: docService,
	}
	s.registerTools()
	return s
}

// Serve runs the MCP server on stdio until ctx is cancelled or stdin closes.
func (s *Server) Serve(ctx context.Context) error {
	return s.serve(ctx, os.Stdin, os.Stdout)
}

func (s *Server) serve(ctx context.Context, in io.Reader, out io.Writer) error {
	return server.NewStdioServer(s.mcp).Listen(ctx, in, out)
}

// registerTools registers all MCP tools
func (s *Server) registerTools() {
	s.mcp.AddTool(listDocumentsTool(), s.handleListDocuments)
	s.mcp.AddTool(getDocumentTool(), s.handleGetDocument)
	s.mcp.AddTool(searchDocumentTool(), s.handleSearchDocument)
}
