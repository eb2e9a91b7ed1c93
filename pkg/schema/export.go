package schema

// ExportDocument is the downloadable JSON representation of a workflow graph.
// Importing a document sets its nodes and edges as the new graph.
type ExportDocument struct {
	Nodes    []ExportNode   `json:"nodes"`
	Edges    []Edge         `json:"edges"`
	Metadata ExportMetadata `json:"metadata"`
}

// ExportNode mirrors the canvas node shape: identity and position at the top
// level, everything else under a data payload.
type ExportNode struct {
	ID       string         `json:"id"`
	Type     NodeType       `json:"type"`
	Position Position       `json:"position"`
	Data     ExportNodeData `json:"data"`
}

// ExportNodeData carries the editable content of an exported node.
type ExportNodeData struct {
	Label       string         `json:"label"`
	Subtype     string         `json:"subtype"`
	Provider    string         `json:"provider,omitempty"`
	Config      map[string]any `json:"config"`
	Description string         `json:"description,omitempty"`
}

// ExportMetadata describes the exported workflow.
type ExportMetadata struct {
	Name        string `json:"name"`
	Version     string `json:"version"`
	CreatedAt   string `json:"createdAt"`
	Description string `json:"description,omitempty"`
}

// ToExportNode converts a graph node into its export representation.
func ToExportNode(n *Node) ExportNode {
	return ExportNode{
		ID:       n.ID,
		Type:     n.Type,
		Position: n.Position,
		Data: ExportNodeData{
			Label:       n.Label,
			Subtype:     n.Subtype,
			Provider:    n.Provider,
			Config:      n.Config,
			Description: n.Description,
		},
	}
}

// FromExportNode converts an exported node back into a graph node.
func FromExportNode(en ExportNode) *Node {
	cfg := en.Data.Config
	if cfg == nil {
		cfg = map[string]any{}
	}
	return &Node{
		ID:          en.ID,
		Type:        en.Type,
		Subtype:     en.Data.Subtype,
		Provider:    en.Data.Provider,
		Label:       en.Data.Label,
		Position:    en.Position,
		Config:      cfg,
		Description: en.Data.Description,
	}
}
