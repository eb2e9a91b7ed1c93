// Package agent implements the HTTP client for the remote chat/estimation
// endpoint. The endpoint speaks a fixed envelope: a JSON request identifying
// the user, agent and session plus a free-text message, and a JSON response
// wrapping a single string reply.
package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/bluehawk13/cost-ai-navigator/pkg/schema"
)

const defaultTimeout = 60 * time.Second

// request is the wire envelope for outbound messages.
type request struct {
	UserID    string `json:"user_id"`
	AgentID   string `json:"agent_id"`
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

// response is the wire envelope for replies. Response is either markdown
// chat text or a JSON-encoded document, depending on what was asked.
type response struct {
	Response string `json:"response"`
}

// Client talks to the remote agent endpoint. The zero value is not usable;
// construct with New.
type Client struct {
	endpoint   string
	apiKey     string
	agentID    string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// New creates a Client for the given endpoint and credentials.
func New(endpoint, apiKey, agentID string, opts ...Option) *Client {
	c := &Client{
		endpoint:   endpoint,
		apiKey:     apiKey,
		agentID:    agentID,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Send posts a message on behalf of the user and returns the agent's reply
// text. The context governs the whole round trip.
func (c *Client) Send(ctx context.Context, userID, sessionID, message string) (string, error) {
	body, err := json.Marshal(request{
		UserID:    userID,
		AgentID:   c.agentID,
		SessionID: sessionID,
		Message:   message,
	})
	if err != nil {
		return "", schema.NewError(schema.ErrCodeRemote, "marshal agent request").WithCause(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", schema.NewError(schema.ErrCodeRemote, "build agent request").WithCause(err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", schema.NewError(schema.ErrCodeRemote, "call agent endpoint").WithCause(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return "", schema.NewError(schema.ErrCodeRemote, "read agent response").WithCause(err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", schema.NewErrorf(schema.ErrCodeRemote, "agent endpoint returned %d", resp.StatusCode).
			WithDetails(map[string]any{"body": string(raw)})
	}

	var envelope response
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return "", schema.NewError(schema.ErrCodeParse, "decode agent response").WithCause(err)
	}
	if envelope.Response == "" {
		return "", schema.NewError(schema.ErrCodeParse, "agent response missing reply text")
	}
	return envelope.Response, nil
}

// String implements fmt.Stringer without leaking the API key.
func (c *Client) String() string {
	return fmt.Sprintf("agent.Client{endpoint: %s, agent: %s}", c.endpoint, c.agentID)
}
