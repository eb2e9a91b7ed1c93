package mcp

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bluehawk13/cost-ai-navigator/internal/estimate"
	"github.com/bluehawk13/cost-ai-navigator/internal/store"
	"github.com/bluehawk13/cost-ai-navigator/pkg/schema"
)

func newTestNavServer(t *testing.T) (*NavServer, *store.Workflow) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "mcp.db")
	st, err := store.NewLibSQLStore("file:" + dbPath)
	require.NoError(t, err)
	require.NoError(t, st.Migrate(context.Background()))
	t.Cleanup(func() { _ = st.Close() })

	wf, err := st.SaveWorkflow(context.Background(), "user-1", &store.WorkflowDraft{
		Name: "MCP Pipeline",
		Nodes: []*schema.Node{
			{ID: "n1", Type: schema.NodeTypeAIModel, Subtype: "llm", Label: "LLM",
				Config: map[string]any{"model": "gpt-4o"}},
			{ID: "n2", Type: schema.NodeTypeOutput, Subtype: "dashboard", Label: "Out",
				Config: map[string]any{}},
		},
		Edges: []*schema.Edge{{ID: "e1", Source: "n1", Target: "n2"}},
	})
	require.NoError(t, err)

	return NewNavServer(NavServerDeps{
		Store:     st,
		Estimator: estimate.New(nil, nil),
	}), wf
}

func toolRequest(toolName string, args map[string]any) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      toolName,
			Arguments: args,
		},
	}
}

func textContent(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, result.Content)
	tc, ok := mcp.AsTextContent(result.Content[0])
	require.True(t, ok)
	return tc.Text
}

func TestListTool(t *testing.T) {
	s, _ := newTestNavServer(t)

	result, err := s.handleList(context.Background(), toolRequest("costnav.list",
		map[string]any{"user_id": "user-1"}))
	require.NoError(t, err)
	require.False(t, result.IsError)

	var workflows []store.Workflow
	require.NoError(t, json.Unmarshal([]byte(textContent(t, result)), &workflows))
	require.Len(t, workflows, 1)
	assert.Equal(t, "MCP Pipeline", workflows[0].Name)
}

func TestListTool_MissingUserID(t *testing.T) {
	s, _ := newTestNavServer(t)
	result, err := s.handleList(context.Background(), toolRequest("costnav.list", map[string]any{}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestDescribeTool(t *testing.T) {
	s, wf := newTestNavServer(t)

	result, err := s.handleDescribe(context.Background(), toolRequest("costnav.describe",
		map[string]any{"user_id": "user-1", "workflow_id": wf.ID}))
	require.NoError(t, err)
	require.False(t, result.IsError)
	assert.Contains(t, textContent(t, result), "WORKFLOW ARCHITECTURE OVERVIEW")
}

func TestDescribeTool_WrongOwner(t *testing.T) {
	s, wf := newTestNavServer(t)

	result, err := s.handleDescribe(context.Background(), toolRequest("costnav.describe",
		map[string]any{"user_id": "someone-else", "workflow_id": wf.ID}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestEstimateTool(t *testing.T) {
	s, wf := newTestNavServer(t)

	result, err := s.handleEstimate(context.Background(), toolRequest("costnav.estimate",
		map[string]any{"user_id": "user-1", "workflow_id": wf.ID}))
	require.NoError(t, err)
	require.False(t, result.IsError)

	var resp schema.CostEstimationResponse
	require.NoError(t, json.Unmarshal([]byte(textContent(t, result)), &resp))
	assert.Len(t, resp.NodeBreakdown, 2)
}

func TestQueryTool(t *testing.T) {
	s, wf := newTestNavServer(t)

	result, err := s.handleQuery(context.Background(), toolRequest("costnav.query",
		map[string]any{"user_id": "user-1", "workflow_id": wf.ID, "expression": ".nodes | length"}))
	require.NoError(t, err)
	require.False(t, result.IsError)

	var out map[string]any
	require.NoError(t, json.Unmarshal([]byte(textContent(t, result)), &out))
	assert.Equal(t, float64(2), out["result"])
}

func TestQueryTool_BadExpression(t *testing.T) {
	s, wf := newTestNavServer(t)

	result, err := s.handleQuery(context.Background(), toolRequest("costnav.query",
		map[string]any{"user_id": "user-1", "workflow_id": wf.ID, "expression": ".nodes["}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
}
