package server

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/bluehawk13/cost-ai-navigator/internal/chat"
	"github.com/bluehawk13/cost-ai-navigator/internal/describe"
	"github.com/bluehawk13/cost-ai-navigator/internal/export"
	"github.com/bluehawk13/cost-ai-navigator/internal/logging"
	"github.com/bluehawk13/cost-ai-navigator/internal/registry"
	"github.com/bluehawk13/cost-ai-navigator/internal/store"
	"github.com/bluehawk13/cost-ai-navigator/internal/validation"
	"github.com/bluehawk13/cost-ai-navigator/pkg/schema"
)

// maxBodySize caps request bodies. Import documents are the largest payload.
const maxBodySize = 4 << 20

func (s *Server) handleNodeTypes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, registry.Catalog())
}

// --- Workflows ---

func (s *Server) handleSaveWorkflow(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	ctx := logging.WithUserID(r.Context(), uid)

	var draft store.WorkflowDraft
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodySize)).Decode(&draft); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid JSON: %v", err))
		return
	}

	if err := validation.ValidateGraph(draft.Nodes, draft.Edges).ToError(); err != nil {
		writeNavError(w, err)
		return
	}

	wf, err := s.deps.Store.SaveWorkflow(ctx, uid, &draft)
	if err != nil {
		s.deps.Logger.ErrorContext(ctx, "workflow save failed", "error", err)
		writeNavError(w, err)
		return
	}

	status := http.StatusOK
	if draft.ID == "" {
		status = http.StatusCreated
	}
	writeJSON(w, status, wf)
}

func (s *Server) handleListWorkflows(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	filter := store.WorkflowFilter{
		NameContains: r.URL.Query().Get("name"),
		Limit:        queryInt(r, "limit", 0),
		Offset:       queryInt(r, "offset", 0),
	}
	workflows, err := s.deps.Store.ListWorkflows(r.Context(), uid, filter)
	if err != nil {
		writeNavError(w, err)
		return
	}
	if workflows == nil {
		workflows = []*store.Workflow{}
	}
	writeJSON(w, http.StatusOK, workflows)
}

func (s *Server) handleGetWorkflow(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	snap, err := s.deps.Store.GetWorkflow(r.Context(), uid, r.PathValue("id"))
	if err != nil {
		writeNavError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleDeleteWorkflow(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	if err := s.deps.Store.DeleteWorkflow(r.Context(), uid, r.PathValue("id")); err != nil {
		writeNavError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleImportWorkflow validates an uploaded export document and saves it as
// a new workflow for the caller.
func (s *Server) handleImportWorkflow(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	ctx := logging.WithUserID(r.Context(), uid)

	data, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		writeError(w, http.StatusBadRequest, "read request body")
		return
	}

	var doc schema.ExportDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid JSON: %v", err))
		return
	}
	if s.deps.Validator != nil {
		if err := s.deps.Validator.ValidateDocument(&doc); err != nil {
			writeNavError(w, err)
			return
		}
	}

	nodes, edges, err := export.Import(data)
	if err != nil {
		writeNavError(w, err)
		return
	}

	wf, err := s.deps.Store.SaveWorkflow(ctx, uid, &store.WorkflowDraft{
		Name:        doc.Metadata.Name,
		Description: doc.Metadata.Description,
		Nodes:       nodes,
		Edges:       edges,
	})
	if err != nil {
		writeNavError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, wf)
}

// --- Derived views ---

func (s *Server) handleDescribeWorkflow(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	snap, err := s.deps.Store.GetWorkflow(r.Context(), uid, r.PathValue("id"))
	if err != nil {
		writeNavError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprint(w, describe.Describe(snap.Nodes, snap.Edges))
}

func (s *Server) handleEstimateWorkflow(w http.ResponseWriter, r *http.Request) {
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

	resp, err := s.deps.Estimator.Estimate(ctx, uid, snap.Nodes, snap.Edges)
	if err != nil {
		writeNavError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleEstimateGraph estimates an unsaved graph posted in the request body.
func (s *Server) handleEstimateGraph(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	ctx := logging.WithUserID(r.Context(), uid)

	var body struct {
		Nodes []*schema.Node `json:"nodes"`
		Edges []*schema.Edge `json:"edges"`
	}
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodySize)).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid JSON: %v", err))
		return
	}

	resp, err := s.deps.Estimator.Estimate(ctx, uid, body.Nodes, body.Edges)
	if err != nil {
		writeNavError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleExportWorkflow(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	snap, err := s.deps.Store.GetWorkflow(r.Context(), uid, r.PathValue("id"))
	if err != nil {
		writeNavError(w, err)
		return
	}

	doc := export.BuildDocument(snap.Workflow.Name, snap.Workflow.Description, snap.Nodes, snap.Edges)

	// An optional jq expression projects the document instead of downloading it.
	if expr := r.URL.Query().Get("query"); expr != "" {
		result, err := s.deps.Querier.Query(r.Context(), doc, expr)
		if err != nil {
			writeNavError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"result": result})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", snap.Workflow.Name+".json"))
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		s.deps.Logger.ErrorContext(r.Context(), "export encode failed", "error", err)
	}
}

func (s *Server) handleExportWorkflowPDF(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	snap, err := s.deps.Store.GetWorkflow(r.Context(), uid, r.PathValue("id"))
	if err != nil {
		writeNavError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", snap.Workflow.Name+".pdf"))
	if err := export.PDF(w, snap.Workflow.Name, snap.Nodes, snap.Edges); err != nil {
		s.deps.Logger.ErrorContext(r.Context(), "pdf render failed", "error", err)
	}
}

// --- Chat ---

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	sess, err := s.deps.Chat.CreateSession(r.Context(), uid)
	if err != nil {
		writeNavError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, sess)
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	sessions, err := s.deps.Chat.ListSessions(r.Context(), uid)
	if err != nil {
		writeNavError(w, err)
		return
	}
	if sessions == nil {
		sessions = []*store.ChatSession{}
	}
	writeJSON(w, http.StatusOK, sessions)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	if err := s.deps.Chat.DeleteSession(r.Context(), uid, r.PathValue("id")); err != nil {
		writeNavError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListMessages(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	msgs, err := s.deps.Chat.History(r.Context(), uid, r.PathValue("id"))
	if err != nil {
		writeNavError(w, err)
		return
	}
	if msgs == nil {
		msgs = []*store.Message{}
	}
	writeJSON(w, http.StatusOK, msgs)
}

func (s *Server) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	sessionID := r.PathValue("id")
	ctx := logging.WithSessionID(logging.WithUserID(r.Context(), uid), sessionID)

	var body struct {
		Content string `json:"content"`
	}
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodySize)).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid JSON: %v", err))
		return
	}

	reply, err := s.deps.Chat.Send(ctx, uid, sessionID, body.Content)
	if err != nil {
		writeNavError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": reply,
		"tables":  chat.DetectTables(reply.Content),
	})
}

// --- Profile ---

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	p, err := s.deps.Store.GetProfile(r.Context(), uid)
	if err != nil {
		writeNavError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handlePutProfile(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	var p store.Profile
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodySize)).Decode(&p); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid JSON: %v", err))
		return
	}
	p.ID = uid
	if p.Email == "" {
		writeError(w, http.StatusBadRequest, "email is required")
		return
	}

	if err := s.deps.Store.UpsertProfile(r.Context(), &p); err != nil {
		writeNavError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}
