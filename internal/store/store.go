package store

import (
	"context"
	"time"
)

// Store defines the persistence layer contract.
// All implementations must be safe for concurrent use. Every owner-scoped
// method takes the owner identity explicitly; there is no ambient client.
type Store interface {
	// Profiles
	UpsertProfile(ctx context.Context, p *Profile) error
	GetProfile(ctx context.Context, id string) (*Profile, error)

	// Workflows
	SaveWorkflow(ctx context.Context, ownerID string, draft *WorkflowDraft) (*Workflow, error)
	GetWorkflow(ctx context.Context, ownerID, id string) (*WorkflowSnapshot, error)
	ListWorkflows(ctx context.Context, ownerID string, filter WorkflowFilter) ([]*Workflow, error)
	DeleteWorkflow(ctx context.Context, ownerID, id string) error

	// Chat sessions and messages
	CreateSession(ctx context.Context, s *ChatSession) error
	GetSession(ctx context.Context, ownerID, id string) (*ChatSession, error)
	ListSessions(ctx context.Context, ownerID string, filter SessionFilter) ([]*ChatSession, error)
	UpdateSessionTitle(ctx context.Context, ownerID, id, title string) error
	DeleteSession(ctx context.Context, ownerID, id string) error
	AppendMessage(ctx context.Context, m *Message) error
	ListMessages(ctx context.Context, sessionID string) ([]*Message, error)
	CountMessages(ctx context.Context, sessionID string, sender Sender) (int, error)

	// Retention
	PruneSessions(ctx context.Context, olderThan time.Time) (int64, error)

	// Maintenance
	Migrate(ctx context.Context) error
	Vacuum(ctx context.Context) error

	// Lifecycle
	Close() error
}
