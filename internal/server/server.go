// Package server exposes the HTTP API: workflow CRUD, cost estimation,
// description and export endpoints, chat sessions, and the node-type palette.
package server

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/bluehawk13/cost-ai-navigator/internal/chat"
	"github.com/bluehawk13/cost-ai-navigator/internal/estimate"
	"github.com/bluehawk13/cost-ai-navigator/internal/export"
	"github.com/bluehawk13/cost-ai-navigator/internal/store"
	"github.com/bluehawk13/cost-ai-navigator/internal/validation"
)

// Deps holds the dependencies for the API server. Every handler receives its
// collaborators through this struct; there is no ambient client state.
type Deps struct {
	Store     store.Store
	Chat      *chat.Service
	Estimator *estimate.Estimator
	Querier   *export.Querier
	Validator *validation.DocumentValidator
	Logger    *slog.Logger
}

// Server serves the JSON API.
type Server struct {
	deps Deps
}

// New creates an API server.
func New(deps Deps) *Server {
	if deps.Logger == nil {
		deps.Logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}
	if deps.Querier == nil {
		deps.Querier = export.NewQuerier()
	}
	return &Server{deps: deps}
}

// Handler returns the HTTP handler for all API routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /api/node-types", s.handleNodeTypes)

	// Workflows.
	mux.HandleFunc("POST /api/workflows", s.handleSaveWorkflow)
	mux.HandleFunc("GET /api/workflows", s.handleListWorkflows)
	mux.HandleFunc("GET /api/workflows/{id}", s.handleGetWorkflow)
	mux.HandleFunc("DELETE /api/workflows/{id}", s.handleDeleteWorkflow)
	mux.HandleFunc("POST /api/workflows/import", s.handleImportWorkflow)

	// Incremental graph edits.
	mux.HandleFunc("POST /api/workflows/{id}/nodes", s.handleAddNode)
	mux.HandleFunc("PATCH /api/workflows/{id}/nodes/{nodeId}", s.handleUpdateNode)
	mux.HandleFunc("DELETE /api/workflows/{id}/nodes/{nodeId}", s.handleRemoveNode)
	mux.HandleFunc("POST /api/workflows/{id}/edges", s.handleConnect)
	mux.HandleFunc("DELETE /api/workflows/{id}/edges/{edgeId}", s.handleRemoveEdge)

	// Derived views over a stored workflow.
	mux.HandleFunc("GET /api/workflows/{id}/describe", s.handleDescribeWorkflow)
	mux.HandleFunc("POST /api/workflows/{id}/estimate", s.handleEstimateWorkflow)
	mux.HandleFunc("GET /api/workflows/{id}/export", s.handleExportWorkflow)
	mux.HandleFunc("GET /api/workflows/{id}/export.pdf", s.handleExportWorkflowPDF)

	// Ad-hoc estimation of an unsaved graph.
	mux.HandleFunc("POST /api/estimates", s.handleEstimateGraph)

	// Chat.
	mux.HandleFunc("POST /api/sessions", s.handleCreateSession)
	mux.HandleFunc("GET /api/sessions", s.handleListSessions)
	mux.HandleFunc("DELETE /api/sessions/{id}", s.handleDeleteSession)
	mux.HandleFunc("GET /api/sessions/{id}/messages", s.handleListMessages)
	mux.HandleFunc("POST /api/sessions/{id}/messages", s.handleSendMessage)

	// Profile.
	mux.HandleFunc("GET /api/profile", s.handleGetProfile)
	mux.HandleFunc("PUT /api/profile", s.handlePutProfile)

	return mux
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
