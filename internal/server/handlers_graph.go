package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/bluehawk13/cost-ai-navigator/internal/graph"
	"github.com/bluehawk13/cost-ai-navigator/internal/logging"
	"github.com/bluehawk13/cost-ai-navigator/internal/store"
	"github.com/bluehawk13/cost-ai-navigator/pkg/schema"
)

// Graph-edit endpoints. Each one loads the stored workflow into the in-memory
// graph model, applies a single edit, and persists the result, so clients
// without their own canvas state can still build workflows incrementally.

func (s *Server) handleAddNode(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	id := r.PathValue("id")
	ctx := logging.WithWorkflowID(logging.WithUserID(r.Context(), uid), id)

	var body struct {
		Type     schema.NodeType `json:"type"`
		Subtype  string          `json:"subtype"`
		Label    string          `json:"label"`
		Provider string          `json:"provider"`
	}
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodySize)).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid JSON: %v", err))
		return
	}
	if body.Type == "" || body.Subtype == "" {
		writeError(w, http.StatusBadRequest, "type and subtype are required")
		return
	}

	snap, err := s.deps.Store.GetWorkflow(ctx, uid, id)
	if err != nil {
		writeNavError(w, err)
		return
	}

	g := graph.Load(snap.Nodes, snap.Edges)
	node := g.AddNode(body.Type, body.Subtype, body.Label, body.Provider)

	if err := s.saveGraph(ctx, uid, snap, g); err != nil {
		writeNavError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, node)
}

func (s *Server) handleUpdateNode(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	id := r.PathValue("id")
	ctx := logging.WithWorkflowID(logging.WithUserID(r.Context(), uid), id)

	var body struct {
		Config      map[string]any `json:"config"`
		Description *string        `json:"description"`
	}
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodySize)).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid JSON: %v", err))
		return
	}

	snap, err := s.deps.Store.GetWorkflow(ctx, uid, id)
	if err != nil {
		writeNavError(w, err)
		return
	}

	g := graph.Load(snap.Nodes, snap.Edges)
	nodeID := r.PathValue("nodeId")
	if err := g.UpdateNodeConfig(nodeID, body.Config, body.Description); err != nil {
		writeNavError(w, err)
		return
	}

	if err := s.saveGraph(ctx, uid, snap, g); err != nil {
		writeNavError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, g.Node(nodeID))
}

func (s *Server) handleRemoveNode(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	id := r.PathValue("id")
	ctx := logging.WithWorkflowID(logging.WithUserID(r.Context(), uid), id)

	snap, err := s.deps.Store.GetWorkflow(ctx, uid, id)
	if err != nil {
		writeNavError(w, err)
		return
	}

	g := graph.Load(snap.Nodes, snap.Edges)
	g.RemoveNode(r.PathValue("nodeId"))
	if !g.Dirty() {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	if err := s.saveGraph(ctx, uid, snap, g); err != nil {
		writeNavError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleConnect(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	id := r.PathValue("id")
	ctx := logging.WithWorkflowID(logging.WithUserID(r.Context(), uid), id)

	var body struct {
		Source       string `json:"source"`
		Target       string `json:"target"`
		SourceHandle string `json:"sourceHandle"`
		TargetHandle string `json:"targetHandle"`
	}
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodySize)).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid JSON: %v", err))
		return
	}

	snap, err := s.deps.Store.GetWorkflow(ctx, uid, id)
	if err != nil {
		writeNavError(w, err)
		return
	}

	g := graph.Load(snap.Nodes, snap.Edges)
	if g.Node(body.Source) == nil || g.Node(body.Target) == nil {
		writeError(w, http.StatusBadRequest, "source and target must reference existing nodes")
		return
	}
	edge := g.Connect(body.Source, body.Target, body.SourceHandle, body.TargetHandle)

	if err := s.saveGraph(ctx, uid, snap, g); err != nil {
		writeNavError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, edge)
}

func (s *Server) handleRemoveEdge(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	id := r.PathValue("id")
	ctx := logging.WithWorkflowID(logging.WithUserID(r.Context(), uid), id)

	snap, err := s.deps.Store.GetWorkflow(ctx, uid, id)
	if err != nil {
		writeNavError(w, err)
		return
	}

	g := graph.Load(snap.Nodes, snap.Edges)
	g.RemoveEdge(r.PathValue("edgeId"))
	if !g.Dirty() {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	if err := s.saveGraph(ctx, uid, snap, g); err != nil {
		writeNavError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// saveGraph persists the edited graph back under the workflow's existing
// identity and name.
func (s *Server) saveGraph(ctx context.Context, uid string, snap *store.WorkflowSnapshot, g *graph.Graph) error {
	draft := &store.WorkflowDraft{
		ID:          snap.Workflow.ID,
		Name:        snap.Workflow.Name,
		Description: snap.Workflow.Description,
		Version:     snap.Workflow.Version,
		Nodes:       g.Nodes(),
		Edges:       g.Edges(),
	}
	if _, err := s.deps.Store.SaveWorkflow(ctx, uid, draft); err != nil {
		return err
	}
	g.MarkSaved()
	return nil
}
