package mcp

import (
	"context"
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/server"

	"github.com/codemarks/codemarks/internal/config"
	"github.com/codemarks/codemarks/internal/engine"
	"github.com/codemarks/codemarks/internal/watcher"
)

const (
	// ServerName is the MCP server name
	ServerName = "codemarks"
	// ServerVersion is the current server version
	ServerVersion = "1.0.0"
)

// Server wraps the MCP server with the annotation engine
type Server struct {
	mcp     *server.MCPServer
	engine  *engine.Engine
	watcher *watcher.Watcher
	root    string
}

// NewServer creates an MCP server rooted at the given workspace directory.
// When watch is true, file-system changes keep the index current between
// tool calls.
func NewServer(root string, watch bool) (*Server, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("cannot access workspace root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("workspace root %s is not a directory", root)
	}

	cfg, err := config.Load(root)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	eng := engine.New(root, cfg)

	s := &Server{
		mcp:    server.NewMCPServer(ServerName, ServerVersion),
		engine: eng,
		root:   root,
	}

	if watch {
		w, err := watcher.New(root, cfg.Scan, eng)
		if err != nil {
			return nil, fmt.Errorf("failed to create watcher: %w", err)
		}
		if err := w.Start(); err != nil {
			return nil, fmt.Errorf("failed to start watcher: %w", err)
		}
		s.watcher = w
	}

	s.registerTools()
	return s, nil
}

// Serve starts the MCP server on stdio and blocks until shutdown.
func (s *Server) Serve(ctx context.Context) error {
	defer s.Close()
	return server.ServeStdio(s.mcp)
}

// Close releases the watcher and disposes the engine.
func (s *Server) Close() {
	if s.watcher != nil {
		_ = s.watcher.Stop()
	}
	s.engine.Dispose()
}

// registerTools registers all MCP tools
func (s *Server) registerTools() {
	s.mcp.AddTool(scanWorkspaceTool(), s.handleScanWorkspace)
	s.mcp.AddTool(queryAnnotationsTool(), s.handleQueryAnnotations)
	s.mcp.AddTool(setScopeTool(), s.handleSetScope)
	s.mcp.AddTool(getStatusTool(), s.handleGetStatus)
}
