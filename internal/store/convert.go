package store

import (
	"encoding/json"

	"github.com/bluehawk13/cost-ai-navigator/pkg/schema"
)

// nodeToRow converts an in-memory graph node into its relational shape:
// the position pair becomes two scalar columns and the config map becomes
// a JSON column. sortOrder preserves input array order across a round-trip.
func nodeToRow(workflowID string, sortOrder int, n *schema.Node) (*NodeRow, error) {
	cfg := n.Config
	if cfg == nil {
		cfg = map[string]any{}
	}
	cfgJSON, err := json.Marshal(cfg)
	if err != nil {
		return nil, schema.NewError(schema.ErrCodeStore, "marshal node config").WithNode(n.ID).WithCause(err)
	}
	return &NodeRow{
		WorkflowID:  workflowID,
		NodeID:      n.ID,
		NodeType:    string(n.Type),
		Subtype:     n.Subtype,
		Provider:    n.Provider,
		Label:       n.Label,
		Description: n.Description,
		PositionX:   n.Position.X,
		PositionY:   n.Position.Y,
		ConfigJSON:  string(cfgJSON),
		SortOrder:   sortOrder,
	}, nil
}

// rowToNode reassembles a graph node from its relational shape.
func rowToNode(r *NodeRow) (*schema.Node, error) {
	var cfg map[string]any
	if r.ConfigJSON != "" {
		if err := json.Unmarshal([]byte(r.ConfigJSON), &cfg); err != nil {
			return nil, schema.NewError(schema.ErrCodeStore, "unmarshal node config").WithNode(r.NodeID).WithCause(err)
		}
	}
	if cfg == nil {
		cfg = map[string]any{}
	}
	return &schema.Node{
		ID:          r.NodeID,
		Type:        schema.NodeType(r.NodeType),
		Subtype:     r.Subtype,
		Provider:    r.Provider,
		Label:       r.Label,
		Description: r.Description,
		Position:    schema.Position{X: r.PositionX, Y: r.PositionY},
		Config:      cfg,
	}, nil
}

func edgeToRow(workflowID string, sortOrder int, e *schema.Edge) *EdgeRow {
	return &EdgeRow{
		WorkflowID:   workflowID,
		EdgeID:       e.ID,
		SourceNodeID: e.Source,
		TargetNodeID: e.Target,
		SourceHandle: e.SourceHandle,
		TargetHandle: e.TargetHandle,
		SortOrder:    sortOrder,
	}
}

func rowToEdge(r *EdgeRow) *schema.Edge {
	return &schema.Edge{
		ID:           r.EdgeID,
		Source:       r.SourceNodeID,
		Target:       r.TargetNodeID,
		SourceHandle: r.SourceHandle,
		TargetHandle: r.TargetHandle,
	}
}
