package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bluehawk13/cost-ai-navigator/internal/registry"
	"github.com/bluehawk13/cost-ai-navigator/pkg/schema"
)

func TestAddNode_SeedsRegistryDefaults(t *testing.T) {
	g := New()

	specs := []struct {
		t        schema.NodeType
		subtype  string
		provider string
	}{
		{schema.NodeTypeAIModel, "llm", "anthropic"},
		{schema.NodeTypeDatabase, "vector", "pinecone"},
		{schema.NodeTypeLogic, "condition", ""},
		{schema.NodeTypeOutput, "dashboard", ""},
	}
	for _, s := range specs {
		g.AddNode(s.t, s.subtype, "label", s.provider)
	}

	require.Len(t, g.Nodes(), len(specs))
	for i, n := range g.Nodes() {
		assert.Equal(t, registry.Defaults(specs[i].t, specs[i].subtype, specs[i].provider), n.Config)
	}
}

func TestAddNode_UniqueIDs(t *testing.T) {
	g := New()
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		n := g.AddNode(schema.NodeTypeLogic, "filter", "f", "")
		require.False(t, seen[n.ID], "duplicate id %s", n.ID)
		seen[n.ID] = true
	}
}

func TestAddNode_PositionWithinCanvasBand(t *testing.T) {
	g := New()
	for i := 0; i < 20; i++ {
		n := g.AddNode(schema.NodeTypeCompute, "vm", "vm", "")
		assert.GreaterOrEqual(t, n.Position.X, 100.0)
		assert.Less(t, n.Position.X, 500.0)
		assert.GreaterOrEqual(t, n.Position.Y, 100.0)
		assert.Less(t, n.Position.Y, 400.0)
	}
}

func TestUpdateNodeConfig_ShallowMerge(t *testing.T) {
	g := New()
	n := g.AddNode(schema.NodeTypeAIModel, "llm", "model", "openai")
	g.MarkSaved()

	desc := "summarizes support tickets"
	require.NoError(t, g.UpdateNodeConfig(n.ID, map[string]any{
		"max_tokens": 2048,
		"extra":      "value",
	}, &desc))

	assert.Equal(t, 2048, n.Config["max_tokens"])
	assert.Equal(t, "value", n.Config["extra"])
	assert.Equal(t, "gpt-4o", n.Config["model"], "untouched keys survive")
	assert.Equal(t, desc, n.Description)
	assert.True(t, g.Dirty())
}

func TestUpdateNodeConfig_NilDescriptionKeepsOld(t *testing.T) {
	g := New()
	n := g.AddNode(schema.NodeTypeAIModel, "llm", "model", "openai")
	n.Description = "original"

	require.NoError(t, g.UpdateNodeConfig(n.ID, map[string]any{"temperature": 0.1}, nil))
	assert.Equal(t, "original", n.Description)
}

func TestUpdateNodeConfig_UnknownNode(t *testing.T) {
	g := New()
	err := g.UpdateNodeConfig("missing", map[string]any{"a": 1}, nil)
	require.Error(t, err)
	navErr, ok := err.(*schema.NavError)
	require.True(t, ok)
	assert.Equal(t, schema.ErrCodeNotFound, navErr.Code)
}

func TestConnect_AppendsUnconditionally(t *testing.T) {
	g := New()
	a := g.AddNode(schema.NodeTypeDataSource, "api", "in", "")
	b := g.AddNode(schema.NodeTypeOutput, "dashboard", "out", "")

	e1 := g.Connect(a.ID, b.ID, "out", "in")
	e2 := g.Connect(a.ID, b.ID, "out", "in") // duplicate allowed
	e3 := g.Connect(a.ID, "ghost", "", "")   // dangling allowed here

	assert.Len(t, g.Edges(), 3)
	assert.NotEqual(t, e1.ID, e2.ID)
	assert.Equal(t, "ghost", e3.Target)
}

func TestRemoveNode_DropsAdjacentEdges(t *testing.T) {
	g := New()
	a := g.AddNode(schema.NodeTypeDataSource, "api", "a", "")
	b := g.AddNode(schema.NodeTypeLogic, "transform", "b", "")
	c := g.AddNode(schema.NodeTypeOutput, "report", "c", "")
	g.Connect(a.ID, b.ID, "", "")
	g.Connect(b.ID, c.ID, "", "")
	g.Connect(a.ID, c.ID, "", "")

	g.RemoveNode(b.ID)

	assert.Len(t, g.Nodes(), 2)
	require.Len(t, g.Edges(), 1)
	assert.Equal(t, a.ID, g.Edges()[0].Source)
	assert.Equal(t, c.ID, g.Edges()[0].Target)
}

func TestRemoveEdge(t *testing.T) {
	g := New()
	a := g.AddNode(schema.NodeTypeDataSource, "api", "a", "")
	b := g.AddNode(schema.NodeTypeOutput, "alert", "b", "")
	e := g.Connect(a.ID, b.ID, "", "")
	g.MarkSaved()

	g.RemoveEdge(e.ID)
	assert.Empty(t, g.Edges())
	assert.True(t, g.Dirty())

	g.MarkSaved()
	g.RemoveEdge("missing")
	assert.False(t, g.Dirty())
}

func TestDirtyLifecycle(t *testing.T) {
	g := New()
	assert.False(t, g.Dirty())

	g.AddNode(schema.NodeTypeLogic, "condition", "if", "")
	assert.True(t, g.Dirty())

	g.MarkSaved()
	assert.False(t, g.Dirty())
}
