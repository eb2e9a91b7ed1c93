package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bluehawk13/cost-ai-navigator/pkg/schema"
)

func TestPDF_RendersDocument(t *testing.T) {
	nodes, edges := exportGraph()

	var buf bytes.Buffer
	require.NoError(t, PDF(&buf, "Ticket Pipeline", nodes, edges))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF")))
	assert.Greater(t, buf.Len(), 1000)
}

func TestPDF_EmptyGraph(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, PDF(&buf, "Empty", nil, nil))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF")))
}

func TestPDF_DanglingEdgeSkipped(t *testing.T) {
	nodes := []*schema.Node{{ID: "n1", Type: schema.NodeTypeLogic, Label: "Only"}}
	edges := []*schema.Edge{{ID: "e1", Source: "n1", Target: "ghost"}}

	var buf bytes.Buffer
	require.NoError(t, PDF(&buf, "Partial", nodes, edges))
	assert.Positive(t, buf.Len())
}

func TestScalePositions_SingleNodeCentered(t *testing.T) {
	centers := scalePositions([]*schema.Node{{ID: "n1", Position: schema.Position{X: 42, Y: 42}}})
	c := centers["n1"]
	assert.InDelta(t, pageWidth/2, c.x, 1.0)
	assert.Greater(t, c.y, diagramTop)
	assert.Less(t, c.y, diagramBottom)
}

func TestScalePositions_PreservesRelativeOrder(t *testing.T) {
	centers := scalePositions([]*schema.Node{
		{ID: "left", Position: schema.Position{X: 0, Y: 0}},
		{ID: "right", Position: schema.Position{X: 1000, Y: 500}},
	})
	assert.Less(t, centers["left"].x, centers["right"].x)
	assert.Less(t, centers["left"].y, centers["right"].y)
}
