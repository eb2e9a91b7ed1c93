package estimate

import (
	"math"
	"math/rand"
	"time"

	"github.com/bluehawk13/cost-ai-navigator/pkg/schema"
)

// costBand is the pseudo-random monthly cost range for one node type.
type costBand struct {
	min, max float64
}

var costBands = map[schema.NodeType]costBand{
	schema.NodeTypeAIModel:     {50, 500},
	schema.NodeTypeDatabase:    {25, 300},
	schema.NodeTypeCloud:       {20, 250},
	schema.NodeTypeCompute:     {30, 400},
	schema.NodeTypeDataSource:  {5, 50},
	schema.NodeTypeLogic:       {1, 10},
	schema.NodeTypeOutput:      {5, 40},
	schema.NodeTypeIntegration: {10, 100},
}

var defaultBand = costBand{10, 100}

// Mock synthesizes a cost report without contacting any remote service.
// Each node gets a pseudo-random cost within a type-dependent band; AI-model
// nodes scale with their configured max_tokens. The shape matches what the
// remote agent returns so callers cannot tell the two apart.
func Mock(nodes []*schema.Node) *schema.CostEstimationResponse {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	resp := &schema.CostEstimationResponse{
		CostUnit:       "USD",
		EstimationType: schema.EstimationMonthly,
		NodeBreakdown:  make([]schema.NodeCost, 0, len(nodes)),
		Timestamp:      time.Now().UTC(),
	}

	var total float64
	for _, n := range nodes {
		cost := round2(nodeCost(rng, n))
		total += cost

		breakdown := splitCost(n.Type, cost)
		resp.NodeBreakdown = append(resp.NodeBreakdown, schema.NodeCost{
			NodeID:        n.ID,
			NodeName:      mockLabel(n),
			NodeType:      n.Type,
			Provider:      n.Provider,
			Service:       n.Subtype,
			EstimatedCost: cost,
			CostUnit:      "USD",
			Breakdown:     breakdown,
		})

		resp.Summary.TotalCompute += breakdown.Compute
		resp.Summary.TotalStorage += breakdown.Storage
		resp.Summary.TotalNetwork += breakdown.Network
		resp.Summary.TotalAPICalls += breakdown.APICalls
		resp.Summary.TotalTokens += breakdown.Tokens
	}
	resp.TotalCost = round2(total)
	resp.Summary.TotalCompute = round2(resp.Summary.TotalCompute)
	resp.Summary.TotalStorage = round2(resp.Summary.TotalStorage)
	resp.Summary.TotalNetwork = round2(resp.Summary.TotalNetwork)
	resp.Summary.TotalAPICalls = round2(resp.Summary.TotalAPICalls)
	resp.Summary.TotalTokens = round2(resp.Summary.TotalTokens)

	resp.OptimizationSuggestions = mockSuggestions(nodes)
	return resp
}

func nodeCost(rng *rand.Rand, n *schema.Node) float64 {
	band, ok := costBands[n.Type]
	if !ok {
		band = defaultBand
	}
	cost := band.min + rng.Float64()*(band.max-band.min)

	if n.Type == schema.NodeTypeAIModel {
		if mt, ok := n.Config["max_tokens"].(float64); ok && mt > 0 {
			cost *= mt / 4096
		}
	}
	return cost
}

// splitCost distributes a node's cost across breakdown dimensions with
// fixed per-type proportions.
func splitCost(t schema.NodeType, cost float64) schema.CostBreakdown {
	switch t {
	case schema.NodeTypeAIModel:
		return schema.CostBreakdown{
			Tokens:   round2(cost * 0.8),
			APICalls: round2(cost * 0.2),
		}
	case schema.NodeTypeDatabase:
		return schema.CostBreakdown{
			Storage: round2(cost * 0.6),
			Compute: round2(cost * 0.3),
			Network: round2(cost * 0.1),
		}
	case schema.NodeTypeCloud:
		return schema.CostBreakdown{
			Storage: round2(cost * 0.4),
			Compute: round2(cost * 0.4),
			Network: round2(cost * 0.2),
		}
	case schema.NodeTypeCompute:
		return schema.CostBreakdown{
			Compute: round2(cost * 0.9),
			Network: round2(cost * 0.1),
		}
	default:
		return schema.CostBreakdown{
			Compute:  round2(cost * 0.5),
			Network:  round2(cost * 0.3),
			APICalls: round2(cost * 0.2),
		}
	}
}

// mockSuggestions fabricates two fixed-shape suggestions referencing the
// first two nodes, fewer if the graph is smaller.
func mockSuggestions(nodes []*schema.Node) []schema.OptimizationSuggestion {
	suggestions := []schema.OptimizationSuggestion{}
	if len(nodes) > 0 {
		suggestions = append(suggestions, schema.OptimizationSuggestion{
			NodeID:              nodes[0].ID,
			Suggestion:          "Consider a smaller instance size or a lower service tier for " + mockLabel(nodes[0]),
			PotentialSavings:    15.50,
			AlternativeProvider: "aws",
		})
	}
	if len(nodes) > 1 {
		suggestions = append(suggestions, schema.OptimizationSuggestion{
			NodeID:             nodes[1].ID,
			Suggestion:         "Enable usage-based billing and request batching for " + mockLabel(nodes[1]),
			PotentialSavings:   22.75,
			AlternativeService: "serverless",
		})
	}
	return suggestions
}

func mockLabel(n *schema.Node) string {
	if n.Label != "" {
		return n.Label
	}
	return n.ID
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
