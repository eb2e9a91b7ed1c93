// Package estimate produces cost reports for workflow graphs. The primary
// path renders the graph to text and asks the remote agent for an estimate;
// when the remote call or its parsing fails, a locally generated mock report
// with the same shape is substituted so callers always get a usable result.
package estimate

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/bluehawk13/cost-ai-navigator/internal/describe"
	"github.com/bluehawk13/cost-ai-navigator/pkg/schema"
)

// AgentClient is the remote-call surface the estimator needs.
type AgentClient interface {
	Send(ctx context.Context, userID, sessionID, message string) (string, error)
}

// Estimator turns workflow graphs into cost reports.
type Estimator struct {
	agent  AgentClient
	logger *slog.Logger
}

// New creates an Estimator. A nil agent disables the remote path entirely;
// every call then falls through to the mock generator.
func New(agent AgentClient, logger *slog.Logger) *Estimator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Estimator{agent: agent, logger: logger}
}

// Estimate produces a cost report for the graph. Remote failures are logged
// and masked by a mock report; the only errors surfaced to the caller are
// context cancellation.
func (e *Estimator) Estimate(ctx context.Context, userID string, nodes []*schema.Node, edges []*schema.Edge) (*schema.CostEstimationResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if e.agent != nil {
		resp, err := e.remote(ctx, userID, nodes, edges)
		if err == nil {
			return resp, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		e.logger.WarnContext(ctx, "remote estimation failed, using mock",
			slog.String("user_id", userID),
			slog.Int("nodes", len(nodes)),
			slog.String("error", err.Error()))
	}

	return Mock(nodes), nil
}

func (e *Estimator) remote(ctx context.Context, userID string, nodes []*schema.Node, edges []*schema.Edge) (*schema.CostEstimationResponse, error) {
	prompt := describe.Describe(nodes, edges)
	reply, err := e.agent.Send(ctx, userID, uuid.New().String(), prompt)
	if err != nil {
		return nil, err
	}

	var resp schema.CostEstimationResponse
	if err := json.Unmarshal([]byte(stripFences(reply)), &resp); err != nil {
		return nil, schema.NewError(schema.ErrCodeParse, "decode cost estimation reply").WithCause(err)
	}
	if len(resp.NodeBreakdown) == 0 && len(nodes) > 0 {
		return nil, schema.NewError(schema.ErrCodeParse, "cost estimation reply has no node breakdown")
	}
	return &resp, nil
}

// stripFences removes a surrounding markdown code fence, if present. Agents
// often wrap JSON replies in ```json blocks.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.Index(s, "\n"); i >= 0 {
		s = s[i+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
