package validation

import (
	"fmt"

	"github.com/expr-lang/expr"

	"github.com/bluehawk13/cost-ai-navigator/pkg/schema"
)

// ValidateGraph performs semantic checks on a workflow graph.
// Checks: duplicate node ids, edges referencing missing nodes, duplicate edge
// ids, and logic-node condition expressions compiling.
func ValidateGraph(nodes []*schema.Node, edges []*schema.Edge) *schema.ValidationResult {
	result := &schema.ValidationResult{}

	nodeIDs := make(map[string]bool, len(nodes))
	for i, n := range nodes {
		path := fmt.Sprintf("nodes[%d]", i)
		if n.ID == "" {
			result.AddError(path+".id", schema.ErrCodeValidation, "node id is empty")
			continue
		}
		if nodeIDs[n.ID] {
			result.AddError(path+".id", schema.ErrCodeValidation,
				fmt.Sprintf("duplicate node id %q", n.ID))
		}
		nodeIDs[n.ID] = true

		if n.Type == schema.NodeTypeLogic {
			validateLogicCondition(n, path, result)
		}
	}

	edgeIDs := make(map[string]bool, len(edges))
	for i, e := range edges {
		path := fmt.Sprintf("edges[%d]", i)
		if edgeIDs[e.ID] {
			result.AddError(path+".id", schema.ErrCodeValidation,
				fmt.Sprintf("duplicate edge id %q", e.ID))
		}
		edgeIDs[e.ID] = true

		if !nodeIDs[e.Source] {
			result.AddError(path+".source", schema.ErrCodeValidation,
				fmt.Sprintf("edge %q references non-existent source node %q", e.ID, e.Source))
		}
		if !nodeIDs[e.Target] {
			result.AddError(path+".target", schema.ErrCodeValidation,
				fmt.Sprintf("edge %q references non-existent target node %q", e.ID, e.Target))
		}
	}

	return result
}

// validateLogicCondition compile-checks a logic node's condition expression
// when one is configured. Conditions reference upstream data at run time, so
// undefined variables are allowed; only syntax errors are rejected.
func validateLogicCondition(n *schema.Node, path string, result *schema.ValidationResult) {
	raw, ok := n.Config["condition"]
	if !ok {
		return
	}
	condition, ok := raw.(string)
	if !ok || condition == "" {
		return
	}

	_, err := expr.Compile(condition, expr.AllowUndefinedVariables())
	if err != nil {
		result.AddError(path+".config.condition", schema.ErrCodeValidation,
			fmt.Sprintf("invalid condition expression: %s", err.Error()))
	}
}
