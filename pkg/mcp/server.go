// Package mcp exposes workflow inspection and cost estimation as MCP tools so
// agents can browse saved workflows, render their descriptions, and request
// cost reports over the stdio transport.
package mcp

import (
	"context"
	"log/slog"
	"os"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/bluehawk13/cost-ai-navigator/internal/estimate"
	"github.com/bluehawk13/cost-ai-navigator/internal/export"
	"github.com/bluehawk13/cost-ai-navigator/internal/store"
)

// NavServerDeps holds the dependencies for creating a NavServer.
type NavServerDeps struct {
	Store     store.Store
	Estimator *estimate.Estimator
	Querier   *export.Querier
	Logger    *slog.Logger
}

// NavServer wraps an MCP server with cost-navigator tool handlers.
type NavServer struct {
	store     store.Store
	estimator *estimate.Estimator
	querier   *export.Querier
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// NewNavServer creates a NavServer with all tools registered.
func NewNavServer(deps NavServerDeps) *NavServer {
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}
	querier := deps.Querier
	if querier == nil {
		querier = export.NewQuerier()
	}

	s := &NavServer{
		store:     deps.Store,
		estimator: deps.Estimator,
		querier:   querier,
		logger:    logger,
	}

	mcpSrv := server.NewMCPServer(
		"costnav",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithRecovery(),
		server.WithInstructions("Costnav manages AI workflow graphs and their cost estimates. Use costnav.list to browse a user's saved workflows, costnav.describe to render a workflow as structured text, costnav.estimate to get a cost report, and costnav.query to run a jq expression over a workflow's export document."),
	)

	mcpSrv.AddTools(s.tools()...)
	s.mcpServer = mcpSrv
	return s
}

// Serve starts the stdio transport and blocks until ctx is cancelled or stdin closes.
func (s *NavServer) Serve(ctx context.Context) error {
	stdio := server.NewStdioServer(s.mcpServer)
	return stdio.Listen(ctx, os.Stdin, os.Stdout)
}

// MCPServer returns the underlying MCPServer for testing or custom transports.
func (s *NavServer) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// tools returns the registered MCP tools as ServerTool entries.
func (s *NavServer) tools() []server.ServerTool {
	return []server.ServerTool{
		{Tool: listTool(), Handler: s.handleList},
		{Tool: describeTool(), Handler: s.handleDescribe},
		{Tool: estimateTool(), Handler: s.handleEstimate},
		{Tool: queryTool(), Handler: s.handleQuery},
	}
}

// --- Tool definitions ---

func listTool() mcp.Tool {
	return mcp.NewTool("costnav.list",
		mcp.WithDescription("List a user's saved workflows"),
		mcp.WithString("user_id", mcp.Required(), mcp.Description("Owner of the workflows")),
		mcp.WithString("name_contains", mcp.Description("Filter by name substring")),
	)
}

func describeTool() mcp.Tool {
	return mcp.NewTool("costnav.describe",
		mcp.WithDescription("Render a workflow as a structured text description"),
		mcp.WithString("user_id", mcp.Required(), mcp.Description("Owner of the workflow")),
		mcp.WithString("workflow_id", mcp.Required(), mcp.Description("ID of the workflow to describe")),
	)
}

func estimateTool() mcp.Tool {
	return mcp.NewTool("costnav.estimate",
		mcp.WithDescription("Produce a cost estimate for a saved workflow"),
		mcp.WithString("user_id", mcp.Required(), mcp.Description("Owner of the workflow")),
		mcp.WithString("workflow_id", mcp.Required(), mcp.Description("ID of the workflow to estimate")),
	)
}

func queryTool() mcp.Tool {
	return mcp.NewTool("costnav.query",
		mcp.WithDescription("Run a jq expression over a workflow's export document"),
		mcp.WithString("user_id", mcp.Required(), mcp.Description("Owner of the workflow")),
		mcp.WithString("workflow_id", mcp.Required(), mcp.Description("ID of the workflow to query")),
		mcp.WithString("expression", mcp.Required(), mcp.Description("jq expression, e.g. .nodes[].data.label")),
	)
}
