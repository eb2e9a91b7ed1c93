// Package describe renders a workflow graph into a structured natural-language
// document. The output is consumed as a prompt by the cost-estimation agent
// and is never parsed back, but it must be deterministic: identical inputs
// produce byte-identical text.
package describe

import (
	"fmt"
	"sort"
	"strings"

	"github.com/bluehawk13/cost-ai-navigator/pkg/schema"
)

// emptyWorkflow is returned for a graph with no nodes and no edges.
const emptyWorkflow = "Empty workflow with no components."

// Describe renders the graph into the estimation prompt document.
// It is a pure function of its inputs.
func Describe(nodes []*schema.Node, edges []*schema.Edge) string {
	if len(nodes) == 0 && len(edges) == 0 {
		return emptyWorkflow
	}

	byID := make(map[string]*schema.Node, len(nodes))
	for _, n := range nodes {
		byID[n.ID] = n
	}

	var b strings.Builder
	writeHeader(&b, len(nodes), len(edges))
	writeConnections(&b, edges, byID)
	writeNodeGroups(&b, nodes)
	writeTopology(&b, nodes, edges)
	writeInstructions(&b)
	return b.String()
}

func writeHeader(b *strings.Builder, nodeCount, edgeCount int) {
	b.WriteString("WORKFLOW ARCHITECTURE OVERVIEW\n")
	b.WriteString("==============================\n\n")
	fmt.Fprintf(b, "This workflow consists of %d components connected by %d data flows.\n", nodeCount, edgeCount)
	fmt.Fprintf(b, "Complexity: %s\n\n", complexity(edgeCount))
}

func complexity(edgeCount int) string {
	switch {
	case edgeCount > 5:
		return "High"
	case edgeCount > 2:
		return "Medium"
	default:
		return "Low"
	}
}

func writeConnections(b *strings.Builder, edges []*schema.Edge, byID map[string]*schema.Node) {
	if len(edges) == 0 {
		return
	}
	b.WriteString("CONNECTIONS\n")
	b.WriteString("-----------\n")
	for _, e := range edges {
		src := endpointLabel(byID, e.Source)
		dst := endpointLabel(byID, e.Target)
		fmt.Fprintf(b, "- %s -> %s", src, dst)
		if e.SourceHandle != "" || e.TargetHandle != "" {
			fmt.Fprintf(b, " (via %s -> %s)", handleOr(e.SourceHandle), handleOr(e.TargetHandle))
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
}

func endpointLabel(byID map[string]*schema.Node, id string) string {
	if n, ok := byID[id]; ok {
		return fmt.Sprintf("%s [%s]", nodeLabel(n), n.Type)
	}
	return fmt.Sprintf("%s [unknown]", id)
}

func handleOr(h string) string {
	if h == "" {
		return "default"
	}
	return h
}

func nodeLabel(n *schema.Node) string {
	if n.Label != "" {
		return n.Label
	}
	return n.ID
}

// writeNodeGroups emits one section per node type, in order of first
// occurrence in the input list, with a detail block per node.
func writeNodeGroups(b *strings.Builder, nodes []*schema.Node) {
	var order []schema.NodeType
	groups := map[schema.NodeType][]*schema.Node{}
	for _, n := range nodes {
		if _, seen := groups[n.Type]; !seen {
			order = append(order, n.Type)
		}
		groups[n.Type] = append(groups[n.Type], n)
	}

	for _, t := range order {
		fmt.Fprintf(b, "%s COMPONENTS\n", strings.ToUpper(string(t)))
		b.WriteString(strings.Repeat("-", len(string(t))+11) + "\n")
		for _, n := range groups[t] {
			writeNodeDetail(b, n)
		}
	}
}

func writeNodeDetail(b *strings.Builder, n *schema.Node) {
	fmt.Fprintf(b, "\nComponent: %s (id: %s)\n", nodeLabel(n), n.ID)
	if summary := typeSummary(n); summary != "" {
		fmt.Fprintf(b, "Summary: %s\n", summary)
	}
	if n.Description != "" {
		fmt.Fprintf(b, "Notes: %s\n", n.Description)
	}
	fmt.Fprintf(b, "Position: (%.0f, %.0f)\n", n.Position.X, n.Position.Y)
	writeConfig(b, n.Config)
	b.WriteString("\n")
}

// typeSummary builds the per-type human-readable summary line from well-known
// config keys, skipping any that are absent.
func typeSummary(n *schema.Node) string {
	var parts []string
	add := func(format string, key string) {
		if v, ok := n.Config[key]; ok {
			parts = append(parts, fmt.Sprintf(format, formatValue(v)))
		}
	}

	switch n.Type {
	case schema.NodeTypeAIModel:
		if n.Provider != "" {
			parts = append(parts, fmt.Sprintf("provider %s", n.Provider))
		}
		add("model %s", "model")
		add("max tokens %s", "max_tokens")
		add("temperature %s", "temperature")
		add("cost per 1K tokens $%s", "cost_per_1k_tokens")
		add("cost per hour $%s", "cost_per_hour")
	case schema.NodeTypeDatabase:
		add("tier %s", "tier")
		add("region %s", "region")
		add("instance %s", "instance_type")
		add("storage %s GB", "storage_gb")
		add("max connections %s", "max_connections")
		if n.Subtype == "vectorDatabase" {
			add("dimension %s", "dimension")
			add("pods %s", "pods")
		}
	case schema.NodeTypeCloud:
		if n.Provider != "" {
			parts = append(parts, fmt.Sprintf("provider %s", n.Provider))
		}
		add("service %s", "service")
		add("region %s", "region")
		add("memory %s MB", "memory_mb")
		add("storage class %s", "storage_class")
	case schema.NodeTypeCompute:
		add("instance %s", "instance_type")
		add("vCPUs %s", "vcpus")
		add("memory %s GB", "memory_gb")
		add("cost per hour $%s", "cost_per_hour")
	case schema.NodeTypeDataSource:
		add("source %s", "source_type")
		add("format %s", "format")
		add("refresh %s", "refresh_interval")
	case schema.NodeTypeLogic:
		add("operation %s", "operation")
		add("condition %s", "condition")
	case schema.NodeTypeOutput:
		add("destination %s", "destination")
		add("format %s", "format")
	case schema.NodeTypeIntegration:
		add("service %s", "service")
		add("auth %s", "auth_type")
	}

	if len(parts) == 0 {
		return fmt.Sprintf("%s/%s component", n.Type, n.Subtype)
	}
	return strings.Join(parts, ", ")
}

// writeConfig dumps every config key/value pair, keys sorted for determinism.
func writeConfig(b *strings.Builder, config map[string]any) {
	if len(config) == 0 {
		return
	}
	keys := make([]string, 0, len(config))
	for k := range config {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	b.WriteString("Configuration:\n")
	for _, k := range keys {
		fmt.Fprintf(b, "  %s: %s\n", k, formatValue(config[k]))
	}
}

func formatValue(v any) string {
	switch x := v.(type) {
	case float64:
		if x == float64(int64(x)) {
			return fmt.Sprintf("%d", int64(x))
		}
		return fmt.Sprintf("%g", x)
	case string:
		return x
	default:
		return fmt.Sprintf("%v", x)
	}
}

// writeTopology classifies nodes by edge adjacency and summarizes each set.
func writeTopology(b *strings.Builder, nodes []*schema.Node, edges []*schema.Edge) {
	if len(edges) == 0 {
		return
	}

	hasIn := map[string]bool{}
	hasOut := map[string]bool{}
	for _, e := range edges {
		hasOut[e.Source] = true
		hasIn[e.Target] = true
	}

	var sources, sinks, processing []string
	for _, n := range nodes {
		in, out := hasIn[n.ID], hasOut[n.ID]
		switch {
		case out && !in:
			sources = append(sources, nodeLabel(n))
		case in && !out:
			sinks = append(sinks, nodeLabel(n))
		case in && out:
			processing = append(processing, nodeLabel(n))
		}
	}

	b.WriteString("DATA FLOW TOPOLOGY\n")
	b.WriteString("------------------\n")
	writeSet(b, "Entry points", sources)
	writeSet(b, "Processing stages", processing)
	writeSet(b, "Terminal outputs", sinks)
	b.WriteString("\n")
}

func writeSet(b *strings.Builder, name string, labels []string) {
	if len(labels) == 0 {
		fmt.Fprintf(b, "%s: none\n", name)
		return
	}
	fmt.Fprintf(b, "%s: %s\n", name, strings.Join(labels, ", "))
}

// writeInstructions appends the constant estimation directive and usage
// assumptions. These are not derived from the graph.
func writeInstructions(b *strings.Builder) {
	b.WriteString(`COST ESTIMATION REQUEST
-----------------------
Analyze the architecture above and produce a detailed monthly cost estimate.
For each component, estimate its individual monthly cost and break it down
into compute, storage, network, API calls, and token usage where applicable.
Identify the most expensive components and suggest cheaper alternatives
(different providers, instance sizes, or service tiers) with estimated savings.

Usage assumptions (apply uniformly unless the configuration says otherwise):
- 10,000 executions/month
- 1GB of data processed per execution
- Standard business-hours traffic pattern
- US-based deployment regions
`)
}
