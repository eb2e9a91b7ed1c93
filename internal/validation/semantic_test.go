package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bluehawk13/cost-ai-navigator/pkg/schema"
)

func TestValidateGraph_Valid(t *testing.T) {
	nodes := []*schema.Node{
		{ID: "n1", Type: schema.NodeTypeDataSource},
		{ID: "n2", Type: schema.NodeTypeOutput},
	}
	edges := []*schema.Edge{{ID: "e1", Source: "n1", Target: "n2"}}

	result := ValidateGraph(nodes, edges)
	assert.True(t, result.Valid())
	assert.NoError(t, result.ToError())
}

func TestValidateGraph_DanglingEdge(t *testing.T) {
	nodes := []*schema.Node{{ID: "n1", Type: schema.NodeTypeLogic}}
	edges := []*schema.Edge{{ID: "e1", Source: "n1", Target: "ghost"}}

	result := ValidateGraph(nodes, edges)
	require.False(t, result.Valid())
	assert.Contains(t, result.Errors[0].Message, `edge "e1"`)
	assert.Contains(t, result.Errors[0].Message, `"ghost"`)
}

func TestValidateGraph_DuplicateNodeID(t *testing.T) {
	nodes := []*schema.Node{
		{ID: "n1", Type: schema.NodeTypeLogic},
		{ID: "n1", Type: schema.NodeTypeOutput},
	}
	result := ValidateGraph(nodes, nil)
	require.False(t, result.Valid())
	assert.Contains(t, result.Errors[0].Message, "duplicate node id")
}

func TestValidateGraph_DuplicateEdgeID(t *testing.T) {
	nodes := []*schema.Node{
		{ID: "n1", Type: schema.NodeTypeLogic},
		{ID: "n2", Type: schema.NodeTypeOutput},
	}
	edges := []*schema.Edge{
		{ID: "e1", Source: "n1", Target: "n2"},
		{ID: "e1", Source: "n2", Target: "n1"},
	}
	result := ValidateGraph(nodes, edges)
	require.False(t, result.Valid())
}

func TestValidateGraph_EmptyNodeID(t *testing.T) {
	result := ValidateGraph([]*schema.Node{{Type: schema.NodeTypeLogic}}, nil)
	require.False(t, result.Valid())
}

func TestValidateGraph_LogicConditionSyntax(t *testing.T) {
	tests := []struct {
		name      string
		condition any
		valid     bool
	}{
		{"valid comparison", `cost > 100 && provider == "aws"`, true},
		{"valid with undefined vars", `usage.tokens * rate < budget`, true},
		{"syntax error", `cost > > 100`, false},
		{"unbalanced paren", `(cost > 100`, false},
		{"empty string skipped", "", true},
		{"non-string skipped", float64(42), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nodes := []*schema.Node{{
				ID:     "n1",
				Type:   schema.NodeTypeLogic,
				Config: map[string]any{"condition": tt.condition},
			}}
			result := ValidateGraph(nodes, nil)
			assert.Equal(t, tt.valid, result.Valid())
		})
	}
}

func TestValidateGraph_ConditionOnlyCheckedForLogicNodes(t *testing.T) {
	nodes := []*schema.Node{{
		ID:     "n1",
		Type:   schema.NodeTypeAIModel,
		Config: map[string]any{"condition": "not ((an expression"},
	}}
	assert.True(t, ValidateGraph(nodes, nil).Valid())
}
