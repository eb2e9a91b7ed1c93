package estimate

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bluehawk13/cost-ai-navigator/pkg/schema"
)

func TestMock_BreakdownPerNodeAndTotal(t *testing.T) {
	nodes := sampleNodes()
	resp := Mock(nodes)

	require.Len(t, resp.NodeBreakdown, len(nodes))
	var sum float64
	for i, nc := range resp.NodeBreakdown {
		assert.Equal(t, nodes[i].ID, nc.NodeID)
		assert.Equal(t, nodes[i].Type, nc.NodeType)
		assert.Positive(t, nc.EstimatedCost)
		sum += nc.EstimatedCost
	}
	assert.InDelta(t, math.Round(sum*100)/100, resp.TotalCost, 0.001)
	assert.Equal(t, "USD", resp.CostUnit)
	assert.Equal(t, schema.EstimationMonthly, resp.EstimationType)
	assert.False(t, resp.Timestamp.IsZero())
}

func TestMock_CostsWithinTypeBands(t *testing.T) {
	nodes := []*schema.Node{
		{ID: "logic", Type: schema.NodeTypeLogic, Config: map[string]any{}},
		{ID: "db", Type: schema.NodeTypeDatabase, Config: map[string]any{}},
	}
	for i := 0; i < 50; i++ {
		resp := Mock(nodes)
		logicCost := resp.NodeBreakdown[0].EstimatedCost
		dbCost := resp.NodeBreakdown[1].EstimatedCost
		assert.GreaterOrEqual(t, logicCost, 1.0)
		assert.LessOrEqual(t, logicCost, 10.0)
		assert.GreaterOrEqual(t, dbCost, 25.0)
		assert.LessOrEqual(t, dbCost, 300.0)
	}
}

func TestMock_AIModelScalesWithMaxTokens(t *testing.T) {
	small := []*schema.Node{{ID: "n", Type: schema.NodeTypeAIModel,
		Config: map[string]any{"max_tokens": float64(1024)}}}
	large := []*schema.Node{{ID: "n", Type: schema.NodeTypeAIModel,
		Config: map[string]any{"max_tokens": float64(32768)}}}

	// Bands overlap per draw, so compare averages over many samples.
	var smallAvg, largeAvg float64
	const rounds = 200
	for i := 0; i < rounds; i++ {
		smallAvg += Mock(small).TotalCost
		largeAvg += Mock(large).TotalCost
	}
	assert.Greater(t, largeAvg/rounds, smallAvg/rounds)
}

func TestMock_TwoSuggestionsForFirstTwoNodes(t *testing.T) {
	nodes := sampleNodes()
	resp := Mock(nodes)

	require.Len(t, resp.OptimizationSuggestions, 2)
	assert.Equal(t, nodes[0].ID, resp.OptimizationSuggestions[0].NodeID)
	assert.Equal(t, nodes[1].ID, resp.OptimizationSuggestions[1].NodeID)
	assert.Positive(t, resp.OptimizationSuggestions[0].PotentialSavings)
}

func TestMock_SuggestionCountTracksGraphSize(t *testing.T) {
	one := Mock([]*schema.Node{{ID: "n1", Type: schema.NodeTypeLogic}})
	assert.Len(t, one.OptimizationSuggestions, 1)

	none := Mock(nil)
	assert.Empty(t, none.OptimizationSuggestions)
	assert.Zero(t, none.TotalCost)
	assert.Empty(t, none.NodeBreakdown)
}

func TestMock_SummaryAggregatesBreakdowns(t *testing.T) {
	resp := Mock(sampleNodes())

	var tokens, storage float64
	for _, nc := range resp.NodeBreakdown {
		tokens += nc.Breakdown.Tokens
		storage += nc.Breakdown.Storage
	}
	assert.InDelta(t, math.Round(tokens*100)/100, resp.Summary.TotalTokens, 0.001)
	assert.InDelta(t, math.Round(storage*100)/100, resp.Summary.TotalStorage, 0.001)
}
