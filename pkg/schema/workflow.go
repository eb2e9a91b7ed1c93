package schema

// NodeType enumerates the kinds of components that can appear on the canvas.
type NodeType string

const (
	NodeTypeDataSource  NodeType = "dataSource"
	NodeTypeAIModel     NodeType = "aiModel"
	NodeTypeDatabase    NodeType = "database"
	NodeTypeLogic       NodeType = "logic"
	NodeTypeOutput      NodeType = "output"
	NodeTypeCloud       NodeType = "cloud"
	NodeTypeCompute     NodeType = "compute"
	NodeTypeIntegration NodeType = "integration"
)

// NodeTypes lists all known node types in display order.
var NodeTypes = []NodeType{
	NodeTypeDataSource,
	NodeTypeAIModel,
	NodeTypeDatabase,
	NodeTypeLogic,
	NodeTypeOutput,
	NodeTypeCloud,
	NodeTypeCompute,
	NodeTypeIntegration,
}

// Position is a node's location on the canvas.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Node is one typed, configurable vertex in a workflow graph.
// Config is an open map whose shape depends on (type, subtype, provider);
// its keys are seeded from the registry defaults at creation time.
type Node struct {
	ID          string         `json:"id"`
	Type        NodeType       `json:"type"`
	Subtype     string         `json:"subtype"`
	Provider    string         `json:"provider,omitempty"`
	Label       string         `json:"label"`
	Position    Position       `json:"position"`
	Config      map[string]any `json:"config"`
	Description string         `json:"description,omitempty"`
}

// Edge is a directed connection between two node ids, optionally naming
// which handle on each node it attaches to.
type Edge struct {
	ID           string `json:"id"`
	Source       string `json:"source"`
	Target       string `json:"target"`
	SourceHandle string `json:"sourceHandle,omitempty"`
	TargetHandle string `json:"targetHandle,omitempty"`
}
