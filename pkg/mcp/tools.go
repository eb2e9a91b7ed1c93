package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/bluehawk13/cost-ai-navigator/internal/describe"
	"github.com/bluehawk13/cost-ai-navigator/internal/export"
	"github.com/bluehawk13/cost-ai-navigator/internal/store"
)

// handleList returns the user's saved workflows.
func (s *NavServer) handleList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	userID, err := req.RequireString("user_id")
	if err != nil {
		return mcp.NewToolResultError("user_id is required"), nil
	}
	filter := store.WorkflowFilter{NameContains: req.GetString("name_contains", "")}

	workflows, listErr := s.store.ListWorkflows(ctx, userID, filter)
	if listErr != nil {
		return mcp.NewToolResultError(fmt.Sprintf("list workflows failed: %v", listErr)), nil
	}
	return marshalResult(workflows)
}

// handleDescribe renders a stored workflow to its text description.
func (s *NavServer) handleDescribe(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	userID, workflowID, errResult := requireIdentity(req)
	if errResult != nil {
		return errResult, nil
	}

	snap, err := s.store.GetWorkflow(ctx, userID, workflowID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("workflow lookup failed: %v", err)), nil
	}
	return mcp.NewToolResultText(describe.Describe(snap.Nodes, snap.Edges)), nil
}

// handleEstimate produces a cost report for a stored workflow.
func (s *NavServer) handleEstimate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	userID, workflowID, errResult := requireIdentity(req)
	if errResult != nil {
		return errResult, nil
	}

	snap, err := s.store.GetWorkflow(ctx, userID, workflowID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("workflow lookup failed: %v", err)), nil
	}

	resp, err := s.estimator.Estimate(ctx, userID, snap.Nodes, snap.Edges)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("estimation failed: %v", err)), nil
	}
	return marshalResult(resp)
}

// handleQuery runs a jq expression over a workflow's export document.
func (s *NavServer) handleQuery(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	userID, workflowID, errResult := requireIdentity(req)
	if errResult != nil {
		return errResult, nil
	}
	expression, err := req.RequireString("expression")
	if err != nil {
		return mcp.NewToolResultError("expression is required"), nil
	}

	snap, err := s.store.GetWorkflow(ctx, userID, workflowID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("workflow lookup failed: %v", err)), nil
	}

	doc := export.BuildDocument(snap.Workflow.Name, snap.Workflow.Description, snap.Nodes, snap.Edges)
	result, err := s.querier.Query(ctx, doc, expression)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("query failed: %v", err)), nil
	}
	return marshalResult(map[string]any{"result": result})
}

// requireIdentity extracts the user_id and workflow_id arguments shared by
// the per-workflow tools.
func requireIdentity(req mcp.CallToolRequest) (string, string, *mcp.CallToolResult) {
	userID, err := req.RequireString("user_id")
	if err != nil {
		return "", "", mcp.NewToolResultError("user_id is required")
	}
	workflowID, err := req.RequireString("workflow_id")
	if err != nil {
		return "", "", mcp.NewToolResultError("workflow_id is required")
	}
	return userID, workflowID, nil
}

func marshalResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal result: %v", err)), nil
	}
	return mcp.NewToolResultJSON(json.RawMessage(data))
}
