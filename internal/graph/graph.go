// Package graph holds the in-memory, mutable workflow graph edited through
// the builder UI. It is the working copy between loads and saves: every
// mutation flips a dirty flag that the UI uses to gate navigation away from
// unsaved changes. A Graph is owned by a single request or session and is not
// safe for concurrent use.
package graph

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/bluehawk13/cost-ai-navigator/internal/registry"
	"github.com/bluehawk13/cost-ai-navigator/pkg/schema"
)

// Graph is a mutable collection of nodes and edges.
type Graph struct {
	nodes []*schema.Node
	edges []*schema.Edge
	dirty bool

	now  func() time.Time
	rand *rand.Rand
	seq  int64
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{
		now:  time.Now,
		rand: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Load replaces the graph contents with the given nodes and edges and clears
// the dirty flag. Used after a successful load or import.
func Load(nodes []*schema.Node, edges []*schema.Edge) *Graph {
	g := New()
	g.nodes = append(g.nodes, nodes...)
	g.edges = append(g.edges, edges...)
	return g
}

// AddNode creates a node from a palette entry: a time-based unique id, a
// randomized initial canvas position, and config seeded from the registry
// defaults for (nodeType, subtype, provider).
func (g *Graph) AddNode(nodeType schema.NodeType, subtype, label, provider string) *schema.Node {
	g.seq++
	n := &schema.Node{
		ID:       fmt.Sprintf("node-%d-%d", g.now().UnixMilli(), g.seq),
		Type:     nodeType,
		Subtype:  subtype,
		Provider: provider,
		Label:    label,
		Position: schema.Position{
			X: 100 + g.rand.Float64()*400,
			Y: 100 + g.rand.Float64()*300,
		},
		Config: registry.Defaults(nodeType, subtype, provider),
	}
	g.nodes = append(g.nodes, n)
	g.dirty = true
	return n
}

// UpdateNodeConfig shallow-merges partial into the node's config and, if
// description is non-nil, replaces the node's description.
func (g *Graph) UpdateNodeConfig(nodeID string, partial map[string]any, description *string) error {
	n := g.Node(nodeID)
	if n == nil {
		return schema.NewErrorf(schema.ErrCodeNotFound, "node %q not found", nodeID)
	}
	if n.Config == nil {
		n.Config = map[string]any{}
	}
	for k, v := range partial {
		n.Config[k] = v
	}
	if description != nil {
		n.Description = *description
	}
	g.dirty = true
	return nil
}

// Connect appends an edge unconditionally. No cycle detection, duplicate
// detection, or type-compatibility check is performed here; dangling
// references are caught later by validation at save and import time.
func (g *Graph) Connect(source, target, sourceHandle, targetHandle string) *schema.Edge {
	g.seq++
	e := &schema.Edge{
		ID:           fmt.Sprintf("edge-%d-%d", g.now().UnixMilli(), g.seq),
		Source:       source,
		Target:       target,
		SourceHandle: sourceHandle,
		TargetHandle: targetHandle,
	}
	g.edges = append(g.edges, e)
	g.dirty = true
	return e
}

// RemoveNode deletes the node and every edge touching it.
func (g *Graph) RemoveNode(nodeID string) {
	kept := g.nodes[:0]
	removed := false
	for _, n := range g.nodes {
		if n.ID == nodeID {
			removed = true
			continue
		}
		kept = append(kept, n)
	}
	g.nodes = kept
	if !removed {
		return
	}

	keptEdges := g.edges[:0]
	for _, e := range g.edges {
		if e.Source == nodeID || e.Target == nodeID {
			continue
		}
		keptEdges = append(keptEdges, e)
	}
	g.edges = keptEdges
	g.dirty = true
}

// RemoveEdge deletes the edge with the given id, if present.
func (g *Graph) RemoveEdge(edgeID string) {
	kept := g.edges[:0]
	for _, e := range g.edges {
		if e.ID == edgeID {
			g.dirty = true
			continue
		}
		kept = append(kept, e)
	}
	g.edges = kept
}

// Node returns the node with the given id, or nil.
func (g *Graph) Node(id string) *schema.Node {
	for _, n := range g.nodes {
		if n.ID == id {
			return n
		}
	}
	return nil
}

// Nodes returns the node list in insertion order.
func (g *Graph) Nodes() []*schema.Node { return g.nodes }

// Edges returns the edge list in insertion order.
func (g *Graph) Edges() []*schema.Edge { return g.edges }

// Dirty reports whether the graph has unsaved changes.
func (g *Graph) Dirty() bool { return g.dirty }

// MarkSaved clears the dirty flag after a successful save.
func (g *Graph) MarkSaved() { g.dirty = false }
