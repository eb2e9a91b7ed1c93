// Package export renders workflow graphs into downloadable artifacts:
// a structured JSON document, a jq-queryable view of that document, and a
// paginated PDF with a diagram page followed by per-node configuration pages.
package export

import (
	"encoding/json"
	"time"

	"github.com/bluehawk13/cost-ai-navigator/pkg/schema"
)

const exportVersion = "1.0"

// BuildDocument assembles the export document for a graph.
func BuildDocument(name, description string, nodes []*schema.Node, edges []*schema.Edge) *schema.ExportDocument {
	doc := &schema.ExportDocument{
		Nodes: make([]schema.ExportNode, 0, len(nodes)),
		Edges: make([]schema.Edge, 0, len(edges)),
		Metadata: schema.ExportMetadata{
			Name:        name,
			Version:     exportVersion,
			CreatedAt:   time.Now().UTC().Format(time.RFC3339),
			Description: description,
		},
	}
	for _, n := range nodes {
		doc.Nodes = append(doc.Nodes, schema.ToExportNode(n))
	}
	for _, e := range edges {
		doc.Edges = append(doc.Edges, *e)
	}
	return doc
}

// JSON serializes the export document with indentation for download.
func JSON(name, description string, nodes []*schema.Node, edges []*schema.Edge) ([]byte, error) {
	data, err := json.MarshalIndent(BuildDocument(name, description, nodes, edges), "", "  ")
	if err != nil {
		return nil, schema.NewError(schema.ErrCodeExport, "marshal export document").WithCause(err)
	}
	return data, nil
}

// Import parses an export document and returns its graph content. The
// document's node and edge lists replace the caller's current graph.
func Import(data []byte) ([]*schema.Node, []*schema.Edge, error) {
	var doc schema.ExportDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, nil, schema.NewError(schema.ErrCodeParse, "parse import file").WithCause(err)
	}

	nodes := make([]*schema.Node, 0, len(doc.Nodes))
	for _, en := range doc.Nodes {
		nodes = append(nodes, schema.FromExportNode(en))
	}
	edges := make([]*schema.Edge, 0, len(doc.Edges))
	for i := range doc.Edges {
		e := doc.Edges[i]
		edges = append(edges, &e)
	}
	return nodes, edges, nil
}
