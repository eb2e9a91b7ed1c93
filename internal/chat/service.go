// Package chat implements the conversation layer: session lifecycle, message
// persistence, and relaying user messages to the remote agent.
package chat

import (
	"context"
	"log/slog"

	"github.com/bluehawk13/cost-ai-navigator/internal/store"
	"github.com/bluehawk13/cost-ai-navigator/pkg/schema"
)

// titleMaxLen caps the auto-derived session title length, in runes.
const titleMaxLen = 50

// AgentClient is the remote-call surface the chat service needs.
type AgentClient interface {
	Send(ctx context.Context, userID, sessionID, message string) (string, error)
}

// Service coordinates the chat session store and the remote agent.
type Service struct {
	store  store.Store
	agent  AgentClient
	logger *slog.Logger
}

// New creates a chat Service.
func New(st store.Store, agent AgentClient, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: st, agent: agent, logger: logger}
}

// CreateSession starts a new, untitled session for the user.
func (s *Service) CreateSession(ctx context.Context, ownerID string) (*store.ChatSession, error) {
	sess := &store.ChatSession{OwnerID: ownerID, Title: "New Chat"}
	if err := s.store.CreateSession(ctx, sess); err != nil {
		return nil, schema.NewError(schema.ErrCodeStore, "create chat session").WithCause(err)
	}
	return sess, nil
}

// ListSessions returns the user's sessions, most recently active first.
func (s *Service) ListSessions(ctx context.Context, ownerID string) ([]*store.ChatSession, error) {
	return s.store.ListSessions(ctx, ownerID, store.SessionFilter{})
}

// DeleteSession removes a session and its messages.
func (s *Service) DeleteSession(ctx context.Context, ownerID, sessionID string) error {
	return s.store.DeleteSession(ctx, ownerID, sessionID)
}

// History returns all messages in a session, oldest first. The session must
// belong to the caller.
func (s *Service) History(ctx context.Context, ownerID, sessionID string) ([]*store.Message, error) {
	if _, err := s.store.GetSession(ctx, ownerID, sessionID); err != nil {
		return nil, err
	}
	return s.store.ListMessages(ctx, sessionID)
}

// Send persists the user's message, relays it to the agent, and persists the
// reply. On the first user message in a session the session title is derived
// from that message; title derivation is best-effort and never fails the send.
func (s *Service) Send(ctx context.Context, ownerID, sessionID, content string) (*store.Message, error) {
	if content == "" {
		return nil, schema.NewError(schema.ErrCodeValidation, "message content is required")
	}
	if _, err := s.store.GetSession(ctx, ownerID, sessionID); err != nil {
		return nil, err
	}

	priorUserMessages, err := s.store.CountMessages(ctx, sessionID, store.SenderUser)
	if err != nil {
		return nil, schema.NewError(schema.ErrCodeStore, "count session messages").WithCause(err)
	}

	if err := s.store.AppendMessage(ctx, &store.Message{
		SessionID: sessionID,
		Content:   content,
		Sender:    store.SenderUser,
	}); err != nil {
		return nil, schema.NewError(schema.ErrCodeStore, "persist user message").WithCause(err)
	}

	if priorUserMessages == 0 {
		if err := s.store.UpdateSessionTitle(ctx, ownerID, sessionID, deriveTitle(content)); err != nil {
			s.logger.WarnContext(ctx, "session title update failed",
				slog.String("session_id", sessionID),
				slog.String("error", err.Error()))
		}
	}

	reply, err := s.agent.Send(ctx, ownerID, sessionID, content)
	if err != nil {
		return nil, err
	}

	assistant := &store.Message{
		SessionID: sessionID,
		Content:   reply,
		Sender:    store.SenderAssistant,
	}
	if err := s.store.AppendMessage(ctx, assistant); err != nil {
		return nil, schema.NewError(schema.ErrCodeStore, "persist assistant message").WithCause(err)
	}
	return assistant, nil
}

// deriveTitle truncates the message to titleMaxLen runes.
func deriveTitle(content string) string {
	runes := []rune(content)
	if len(runes) <= titleMaxLen {
		return content
	}
	return string(runes[:titleMaxLen])
}
