package mcp

import (
	"context"
	"io"
	"log/slog"

	"github.com/mark3labs/mcp-go/server"

	"github.com/stormlab/shipsdb/internal/config"
	"github.com/stormlab/shipsdb/internal/ingest"
	"github.com/stormlab/shipsdb/internal/query"
	"github.com/stormlab/shipsdb/internal/storage"
)

const (
	// ServerName is the MCP server name
	ServerName = "shipsdb"
	// ServerVersion is the current server version
	ServerVersion = "1.0.0"
)

// Server wraps the MCP server with application dependencies
type Server struct {
	mcp     *server.MCPServer
	cfg     *config.Config
	store   *storage.Store
	runner  *ingest.Runner
	querier *query.Querier
	logger  *slog.Logger
}

// NewServer creates a new MCP server instance wired to an open store.
func NewServer(cfg *config.Config, store *storage.Store, runner *ingest.Runner, querier *query.Querier, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	mcpServer := server.NewMCPServer(
		ServerName,
		ServerVersion,
	)

	s := &Server{
		mcp:     mcpServer,
		cfg:     cfg,
		store:   store,
		runner:  runner,
		querier: querier,
		logger:  logger,
	}
	s.registerTools()
	return s
}

// Serve starts the MCP server on stdio and blocks until shutdown
func (s *Server) Serve(ctx context.Context) error {
	defer func() { _ = s.store.Close() }()
	s.logger.Info("serving MCP on stdio", "server", ServerName, "version", ServerVersion)
	return server.ServeStdio(s.mcp)
}

// registerTools registers all MCP tools
func (s *Server) registerTools() {
	s.mcp.AddTool(ingestDiagnosticsTool(), s.handleIngestDiagnostics)
	s.mcp.AddTool(getStormObsTool(), s.handleGetStormObs)
	s.mcp.AddTool(describeParametersTool(), s.handleDescribeParameters)
	s.mcp.AddTool(getStatusTool(), s.handleGetStatus)
}
