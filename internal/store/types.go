package store

import (
	"time"

	"github.com/bluehawk13/cost-ai-navigator/pkg/schema"
)

// Profile mirrors the hosted auth provider's user record.
type Profile struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name,omitempty"`
	AvatarURL string    `json:"avatar_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Workflow is the persisted workflow row. Name is unique per owner; the
// metadata counts are maintained by the save routine, not by a constraint.
type Workflow struct {
	ID          string           `json:"id"`
	OwnerID     string           `json:"user_id"`
	Name        string           `json:"name"`
	Description string           `json:"description,omitempty"`
	Version     string           `json:"version"`
	Metadata    WorkflowMetadata `json:"metadata"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// WorkflowMetadata summarizes a workflow's persisted child rows.
type WorkflowMetadata struct {
	NodeCount int `json:"nodeCount"`
	EdgeCount int `json:"edgeCount"`
}

// WorkflowDraft is the input to SaveWorkflow. ID is empty for a first save
// and set for an update of an existing workflow.
type WorkflowDraft struct {
	ID          string         `json:"id,omitempty"`
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Version     string         `json:"version,omitempty"`
	Nodes       []*schema.Node `json:"nodes"`
	Edges       []*schema.Edge `json:"edges"`
}

// WorkflowSnapshot is a loaded workflow with its reassembled graph.
type WorkflowSnapshot struct {
	Workflow *Workflow      `json:"workflow"`
	Nodes    []*schema.Node `json:"nodes"`
	Edges    []*schema.Edge `json:"edges"`
}

// WorkflowFilter specifies criteria for listing workflows.
type WorkflowFilter struct {
	NameContains string `json:"name_contains,omitempty"`
	Limit        int    `json:"limit,omitempty"`
	Offset       int    `json:"offset,omitempty"`
}

// Sender identifies who authored a chat message.
type Sender string

const (
	SenderUser      Sender = "user"
	SenderAssistant Sender = "assistant"
)

// ChatSession is a persisted conversation thread.
type ChatSession struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"user_id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Message is one entry in a chat session.
type Message struct {
	ID        string    `json:"id"`
	SessionID string    `json:"session_id"`
	Content   string    `json:"content"`
	Sender    Sender    `json:"sender"`
	CreatedAt time.Time `json:"created_at"`
}

// SessionFilter specifies criteria for listing chat sessions.
type SessionFilter struct {
	Limit int `json:"limit,omitempty"`
}

// NodeRow is the relational representation of one graph node: position split
// into scalar columns, config serialized into a JSON column.
type NodeRow struct {
	WorkflowID  string
	NodeID      string
	NodeType    string
	Subtype     string
	Provider    string
	Label       string
	Description string
	PositionX   float64
	PositionY   float64
	ConfigJSON  string
	SortOrder   int
}

// EdgeRow is the relational representation of one graph edge.
type EdgeRow struct {
	WorkflowID   string
	EdgeID       string
	SourceNodeID string
	TargetNodeID string
	SourceHandle string
	TargetHandle string
	SortOrder    int
}
