package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bluehawk13/cost-ai-navigator/internal/chat"
	"github.com/bluehawk13/cost-ai-navigator/internal/estimate"
	"github.com/bluehawk13/cost-ai-navigator/internal/store"
	"github.com/bluehawk13/cost-ai-navigator/internal/validation"
	"github.com/bluehawk13/cost-ai-navigator/pkg/schema"
)

type echoAgent struct{}

func (echoAgent) Send(_ context.Context, _, _, message string) (string, error) {
	return "echo: " + message, nil
}

func newTestServer(t *testing.T) (http.Handler, store.Store) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "api.db")
	st, err := store.NewLibSQLStore("file:" + dbPath)
	require.NoError(t, err)
	require.NoError(t, st.Migrate(context.Background()))
	t.Cleanup(func() { _ = st.Close() })

	validator, err := validation.NewDocumentValidator()
	require.NoError(t, err)

	srv := New(Deps{
		Store:     st,
		Chat:      chat.New(st, echoAgent{}, nil),
		Estimator: estimate.New(nil, nil),
		Validator: validator,
	})
	return srv.Handler(), st
}

func doJSON(t *testing.T, h http.Handler, method, path, user string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if user != "" {
		req.Header.Set("X-User-ID", user)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func testDraft(name string) *store.WorkflowDraft {
	return &store.WorkflowDraft{
		Name: name,
		Nodes: []*schema.Node{
			{ID: "n1", Type: schema.NodeTypeAIModel, Subtype: "llm", Provider: "openai",
				Label: "LLM", Config: map[string]any{"model": "gpt-4o"}},
			{ID: "n2", Type: schema.NodeTypeOutput, Subtype: "dashboard", Label: "Out",
				Config: map[string]any{}},
		},
		Edges: []*schema.Edge{{ID: "e1", Source: "n1", Target: "n2"}},
	}
}

func TestMissingUserHeaderRejected(t *testing.T) {
	h, _ := newTestServer(t)
	rec := doJSON(t, h, http.MethodGet, "/api/workflows", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHealthzNeedsNoAuth(t *testing.T) {
	h, _ := newTestServer(t)
	rec := doJSON(t, h, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestNodeTypesCatalog(t *testing.T) {
	h, _ := newTestServer(t)
	rec := doJSON(t, h, http.MethodGet, "/api/node-types", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var entries []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entries))
	assert.NotEmpty(t, entries)
}

func TestWorkflowLifecycle(t *testing.T) {
	h, _ := newTestServer(t)

	rec := doJSON(t, h, http.MethodPost, "/api/workflows", "user-1", testDraft("Pipeline"))
	require.Equal(t, http.StatusCreated, rec.Code)

	var wf store.Workflow
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &wf))
	require.NotEmpty(t, wf.ID)
	assert.Equal(t, "Pipeline", wf.Name)

	rec = doJSON(t, h, http.MethodGet, "/api/workflows", "user-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list []store.Workflow
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Len(t, list, 1)

	rec = doJSON(t, h, http.MethodGet, "/api/workflows/"+wf.ID, "user-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var snap store.WorkflowSnapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	assert.Len(t, snap.Nodes, 2)
	assert.Len(t, snap.Edges, 1)

	rec = doJSON(t, h, http.MethodDelete, "/api/workflows/"+wf.ID, "user-1", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, h, http.MethodGet, "/api/workflows/"+wf.ID, "user-1", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSaveWorkflowRejectsDanglingEdge(t *testing.T) {
	h, _ := newTestServer(t)

	draft := testDraft("Broken")
	draft.Edges = append(draft.Edges, &schema.Edge{ID: "e2", Source: "n1", Target: "ghost"})

	rec := doJSON(t, h, http.MethodPost, "/api/workflows", "user-1", draft)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestWorkflowOwnerIsolation(t *testing.T) {
	h, _ := newTestServer(t)

	rec := doJSON(t, h, http.MethodPost, "/api/workflows", "user-1", testDraft("Mine"))
	require.Equal(t, http.StatusCreated, rec.Code)
	var wf store.Workflow
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &wf))

	rec = doJSON(t, h, http.MethodGet, "/api/workflows/"+wf.ID, "user-2", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDescribeWorkflow(t *testing.T) {
	h, _ := newTestServer(t)

	rec := doJSON(t, h, http.MethodPost, "/api/workflows", "user-1", testDraft("Described"))
	require.Equal(t, http.StatusCreated, rec.Code)
	var wf store.Workflow
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &wf))

	rec = doJSON(t, h, http.MethodGet, "/api/workflows/"+wf.ID+"/describe", "user-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/plain")
	assert.Contains(t, rec.Body.String(), "WORKFLOW ARCHITECTURE OVERVIEW")
}

func TestEstimateWorkflow(t *testing.T) {
	h, _ := newTestServer(t)

	rec := doJSON(t, h, http.MethodPost, "/api/workflows", "user-1", testDraft("Estimated"))
	require.Equal(t, http.StatusCreated, rec.Code)
	var wf store.Workflow
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &wf))

	rec = doJSON(t, h, http.MethodPost, "/api/workflows/"+wf.ID+"/estimate", "user-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp schema.CostEstimationResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.NodeBreakdown, 2)
	assert.Positive(t, resp.TotalCost)
}

func TestEstimateAdHocGraph(t *testing.T) {
	h, _ := newTestServer(t)

	body := map[string]any{
		"nodes": testDraft("x").Nodes,
		"edges": testDraft("x").Edges,
	}
	rec := doJSON(t, h, http.MethodPost, "/api/estimates", "user-1", body)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp schema.CostEstimationResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.NodeBreakdown, 2)
}

func TestExportWorkflowJSONAndQuery(t *testing.T) {
	h, _ := newTestServer(t)

	rec := doJSON(t, h, http.MethodPost, "/api/workflows", "user-1", testDraft("Exported"))
	require.Equal(t, http.StatusCreated, rec.Code)
	var wf store.Workflow
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &wf))

	rec = doJSON(t, h, http.MethodGet, "/api/workflows/"+wf.ID+"/export", "user-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var doc schema.ExportDocument
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	assert.Len(t, doc.Nodes, 2)
	assert.Equal(t, "Exported", doc.Metadata.Name)

	rec = doJSON(t, h, http.MethodGet, "/api/workflows/"+wf.ID+"/export?query=.nodes%7Clength", "user-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var result map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, float64(2), result["result"])
}

func TestExportWorkflowPDF(t *testing.T) {
	h, _ := newTestServer(t)

	rec := doJSON(t, h, http.MethodPost, "/api/workflows", "user-1", testDraft("Printable"))
	require.Equal(t, http.StatusCreated, rec.Code)
	var wf store.Workflow
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &wf))

	rec = doJSON(t, h, http.MethodGet, "/api/workflows/"+wf.ID+"/export.pdf", "user-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")))
}

func TestImportWorkflow(t *testing.T) {
	h, _ := newTestServer(t)

	doc := schema.ExportDocument{
		Nodes: []schema.ExportNode{{
			ID: "n1", Type: schema.NodeTypeLogic, Position: schema.Position{X: 10, Y: 20},
			Data: schema.ExportNodeData{Label: "Gate", Subtype: "condition", Config: map[string]any{}},
		}},
		Edges:    []schema.Edge{},
		Metadata: schema.ExportMetadata{Name: "Imported WF", Version: "1.0", CreatedAt: "2026-08-01T00:00:00Z"},
	}

	rec := doJSON(t, h, http.MethodPost, "/api/workflows/import", "user-1", doc)
	require.Equal(t, http.StatusCreated, rec.Code)

	var wf store.Workflow
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &wf))
	assert.Equal(t, "Imported WF", wf.Name)
	assert.Equal(t, 1, wf.Metadata.NodeCount)
}

func TestImportWorkflowRejectsInvalidDocument(t *testing.T) {
	h, _ := newTestServer(t)

	doc := schema.ExportDocument{
		Nodes:    []schema.ExportNode{},
		Edges:    []schema.Edge{{ID: "e1", Source: "a", Target: "b"}},
		Metadata: schema.ExportMetadata{Name: "Bad", Version: "1.0", CreatedAt: "2026-08-01T00:00:00Z"},
	}
	rec := doJSON(t, h, http.MethodPost, "/api/workflows/import", "user-1", doc)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestChatSessionFlow(t *testing.T) {
	h, _ := newTestServer(t)

	rec := doJSON(t, h, http.MethodPost, "/api/sessions", "user-1", nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	var sess store.ChatSession
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sess))

	rec = doJSON(t, h, http.MethodPost, fmt.Sprintf("/api/sessions/%s/messages", sess.ID), "user-1",
		map[string]string{"content": "Analyze my AI costs"})
	require.Equal(t, http.StatusOK, rec.Code)

	var sent struct {
		Message store.Message `json:"message"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sent))
	assert.Equal(t, "echo: Analyze my AI costs", sent.Message.Content)

	rec = doJSON(t, h, http.MethodGet, fmt.Sprintf("/api/sessions/%s/messages", sess.ID), "user-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var msgs []store.Message
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &msgs))
	assert.Len(t, msgs, 2)

	rec = doJSON(t, h, http.MethodGet, "/api/sessions", "user-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var sessions []store.ChatSession
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sessions))
	require.Len(t, sessions, 1)
	assert.Equal(t, "Analyze my AI costs", sessions[0].Title)

	rec = doJSON(t, h, http.MethodDelete, "/api/sessions/"+sess.ID, "user-1", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestProfileRoundTrip(t *testing.T) {
	h, _ := newTestServer(t)

	rec := doJSON(t, h, http.MethodGet, "/api/profile", "user-1", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, h, http.MethodPut, "/api/profile", "user-1",
		map[string]string{"email": "dev@example.com", "full_name": "Dev"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, h, http.MethodGet, "/api/profile", "user-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var p store.Profile
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	assert.Equal(t, "dev@example.com", p.Email)
	assert.Equal(t, "user-1", p.ID)
}
