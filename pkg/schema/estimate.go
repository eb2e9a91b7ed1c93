package schema

import "time"

// EstimationType enumerates the billing basis of a cost estimate.
type EstimationType string

const (
	EstimationMonthly    EstimationType = "monthly"
	EstimationPerRequest EstimationType = "per_request"
	EstimationHourly     EstimationType = "hourly"
)

// CostEstimationResponse is the fixed-shape cost report produced for a
// workflow, either by the remote agent or by the local mock generator.
// It is produced fresh on every request and never persisted.
type CostEstimationResponse struct {
	TotalCost               float64                  `json:"totalCost"`
	CostUnit                string                   `json:"costUnit"`
	EstimationType          EstimationType           `json:"estimationType"`
	NodeBreakdown           []NodeCost               `json:"nodeBreakdown"`
	Summary                 CostSummary              `json:"summary"`
	OptimizationSuggestions []OptimizationSuggestion `json:"optimizationSuggestions"`
	Timestamp               time.Time                `json:"timestamp"`
}

// NodeCost is the per-node slice of a cost estimate.
type NodeCost struct {
	NodeID        string        `json:"nodeId"`
	NodeName      string        `json:"nodeName"`
	NodeType      NodeType      `json:"nodeType"`
	Provider      string        `json:"provider,omitempty"`
	Service       string        `json:"service,omitempty"`
	EstimatedCost float64       `json:"estimatedCost"`
	CostUnit      string        `json:"costUnit"`
	Breakdown     CostBreakdown `json:"breakdown"`
}

// CostBreakdown splits a node's estimated cost by resource dimension.
// Zero-valued dimensions are omitted from the wire format.
type CostBreakdown struct {
	Compute  float64 `json:"compute,omitempty"`
	Storage  float64 `json:"storage,omitempty"`
	Network  float64 `json:"network,omitempty"`
	APICalls float64 `json:"api_calls,omitempty"`
	Tokens   float64 `json:"tokens,omitempty"`
}

// CostSummary aggregates breakdown dimensions across all nodes.
type CostSummary struct {
	TotalCompute  float64 `json:"totalCompute"`
	TotalStorage  float64 `json:"totalStorage"`
	TotalNetwork  float64 `json:"totalNetwork"`
	TotalAPICalls float64 `json:"totalApiCalls"`
	TotalTokens   float64 `json:"totalTokens"`
}

// OptimizationSuggestion is a single cost-reduction recommendation.
type OptimizationSuggestion struct {
	NodeID              string  `json:"nodeId"`
	Suggestion          string  `json:"suggestion"`
	PotentialSavings    float64 `json:"potentialSavings"`
	AlternativeProvider string  `json:"alternativeProvider,omitempty"`
	AlternativeService  string  `json:"alternativeService,omitempty"`
}
