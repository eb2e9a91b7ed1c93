// Package registry maps a (type, subtype, provider) triple to the default
// configuration a freshly created node starts with. It is a static lookup
// table: no validation is performed against the pairing, and an unknown
// combination yields an empty config.
package registry

import (
	"encoding/json"

	"github.com/bluehawk13/cost-ai-navigator/pkg/schema"
)

// Defaults returns the default config map for the given triple. The result is
// a fresh map on every call so callers can mutate it freely. Unknown
// combinations return an empty, non-nil map.
func Defaults(nodeType schema.NodeType, subtype, provider string) map[string]any {
	build, ok := builders[key{nodeType, subtype}]
	if !ok {
		return map[string]any{}
	}
	return flatten(build(provider))
}

// Entry describes one palette entry exposed to the UI.
type Entry struct {
	Type      schema.NodeType `json:"type"`
	Subtype   string          `json:"subtype"`
	Label     string          `json:"label"`
	Providers []string        `json:"providers,omitempty"`
}

// Catalog returns all known palette entries in display order.
func Catalog() []Entry {
	out := make([]Entry, len(catalog))
	copy(out, catalog)
	return out
}

type key struct {
	t schema.NodeType
	s string
}

// Each node kind has a concrete default-config record. The open config map
// stored on a node is produced by flattening one of these through JSON, so
// the key set per (type, subtype) is fixed at compile time.

type aiModelDefaults struct {
	Provider        string  `json:"provider"`
	Model           string  `json:"model"`
	MaxTokens       int     `json:"max_tokens"`
	Temperature     float64 `json:"temperature"`
	CostPer1KTokens float64 `json:"cost_per_1k_tokens"`
}

type embeddingDefaults struct {
	Provider        string  `json:"provider"`
	Model           string  `json:"model"`
	Dimensions      int     `json:"dimensions"`
	CostPer1KTokens float64 `json:"cost_per_1k_tokens"`
}

type sqlDatabaseDefaults struct {
	Provider       string `json:"provider"`
	Tier           string `json:"tier"`
	Region         string `json:"region"`
	InstanceType   string `json:"instance_type"`
	StorageGB      int    `json:"storage_gb"`
	MaxConnections int    `json:"max_connections"`
}

type vectorDatabaseDefaults struct {
	Provider  string `json:"provider"`
	Tier      string `json:"tier"`
	Region    string `json:"region"`
	Dimension int    `json:"dimension"`
	Pods      int    `json:"pods"`
	Metric    string `json:"metric"`
}

type cacheDefaults struct {
	Provider string `json:"provider"`
	Tier     string `json:"tier"`
	Region   string `json:"region"`
	MemoryMB int    `json:"memory_mb"`
	Eviction string `json:"eviction_policy"`
}

type cloudStorageDefaults struct {
	Provider     string `json:"provider"`
	Service      string `json:"service"`
	Region       string `json:"region"`
	StorageClass string `json:"storage_class"`
}

type cloudFunctionDefaults struct {
	Provider  string `json:"provider"`
	Service   string `json:"service"`
	Region    string `json:"region"`
	MemoryMB  int    `json:"memory_mb"`
	TimeoutS  int    `json:"timeout_seconds"`
	Runtime   string `json:"runtime"`
}

type computeDefaults struct {
	InstanceType string  `json:"instance_type"`
	VCPUs        int     `json:"vcpus"`
	MemoryGB     int     `json:"memory_gb"`
	HourlyCost   float64 `json:"hourly_cost"`
	AutoScale    bool    `json:"auto_scale"`
}

type dataSourceDefaults struct {
	SourceKind string `json:"source_kind"`
	Format     string `json:"format"`
	Endpoint   string `json:"endpoint"`
	AuthType   string `json:"auth_type"`
}

type logicDefaults struct {
	Operation string `json:"operation"`
	Condition string `json:"condition"`
}

type outputDefaults struct {
	Destination string `json:"destination"`
	Format      string `json:"format"`
	Schedule    string `json:"schedule"`
}

type integrationDefaults struct {
	Service   string `json:"service"`
	Channel   string `json:"channel"`
	RateLimit int    `json:"rate_limit_per_minute"`
}

var builders = map[key]func(provider string) any{
	{schema.NodeTypeAIModel, "llm"}: func(provider string) any {
		d := aiModelDefaults{Provider: "openai", Model: "gpt-4o", MaxTokens: 4096, Temperature: 0.7, CostPer1KTokens: 0.005}
		switch provider {
		case "anthropic":
			d = aiModelDefaults{Provider: "anthropic", Model: "claude-sonnet-4-0", MaxTokens: 8192, Temperature: 0.7, CostPer1KTokens: 0.003}
		case "google":
			d = aiModelDefaults{Provider: "google", Model: "gemini-1.5-pro", MaxTokens: 8192, Temperature: 0.7, CostPer1KTokens: 0.0035}
		case "meta":
			d = aiModelDefaults{Provider: "meta", Model: "llama-3-70b", MaxTokens: 4096, Temperature: 0.7, CostPer1KTokens: 0.0009}
		}
		return d
	},
	{schema.NodeTypeAIModel, "embedding"}: func(provider string) any {
		d := embeddingDefaults{Provider: "openai", Model: "text-embedding-3-small", Dimensions: 1536, CostPer1KTokens: 0.00002}
		if provider == "google" {
			d = embeddingDefaults{Provider: "google", Model: "text-embedding-004", Dimensions: 768, CostPer1KTokens: 0.000025}
		}
		return d
	},
	{schema.NodeTypeDatabase, "sql"}: func(provider string) any {
		d := sqlDatabaseDefaults{Provider: "supabase", Tier: "pro", Region: "us-east-1", InstanceType: "small", StorageGB: 8, MaxConnections: 60}
		if provider == "planetscale" {
			d = sqlDatabaseDefaults{Provider: "planetscale", Tier: "scaler", Region: "us-east-1", InstanceType: "PS-10", StorageGB: 10, MaxConnections: 100}
		}
		return d
	},
	{schema.NodeTypeDatabase, "vector"}: func(provider string) any {
		d := vectorDatabaseDefaults{Provider: "pinecone", Tier: "standard", Region: "us-east-1", Dimension: 1536, Pods: 1, Metric: "cosine"}
		if provider == "weaviate" {
			d = vectorDatabaseDefaults{Provider: "weaviate", Tier: "standard", Region: "us-east-1", Dimension: 768, Pods: 1, Metric: "cosine"}
		}
		return d
	},
	{schema.NodeTypeDatabase, "cache"}: func(string) any {
		return cacheDefaults{Provider: "upstash", Tier: "pay-as-you-go", Region: "us-east-1", MemoryMB: 256, Eviction: "lru"}
	},
	{schema.NodeTypeCloud, "storage"}: func(provider string) any {
		d := cloudStorageDefaults{Provider: "aws", Service: "S3", Region: "us-east-1", StorageClass: "standard"}
		switch provider {
		case "gcp":
			d = cloudStorageDefaults{Provider: "gcp", Service: "Cloud Storage", Region: "us-central1", StorageClass: "standard"}
		case "azure":
			d = cloudStorageDefaults{Provider: "azure", Service: "Blob Storage", Region: "eastus", StorageClass: "hot"}
		}
		return d
	},
	{schema.NodeTypeCloud, "function"}: func(provider string) any {
		d := cloudFunctionDefaults{Provider: "aws", Service: "Lambda", Region: "us-east-1", MemoryMB: 512, TimeoutS: 30, Runtime: "nodejs20.x"}
		switch provider {
		case "gcp":
			d = cloudFunctionDefaults{Provider: "gcp", Service: "Cloud Functions", Region: "us-central1", MemoryMB: 512, TimeoutS: 60, Runtime: "nodejs20"}
		case "azure":
			d = cloudFunctionDefaults{Provider: "azure", Service: "Functions", Region: "eastus", MemoryMB: 512, TimeoutS: 30, Runtime: "node"}
		}
		return d
	},
	{schema.NodeTypeCompute, "vm"}: func(string) any {
		return computeDefaults{InstanceType: "t3.medium", VCPUs: 2, MemoryGB: 4, HourlyCost: 0.0416, AutoScale: false}
	},
	{schema.NodeTypeCompute, "container"}: func(string) any {
		return computeDefaults{InstanceType: "fargate-1vcpu-2gb", VCPUs: 1, MemoryGB: 2, HourlyCost: 0.04937, AutoScale: true}
	},
	{schema.NodeTypeDataSource, "api"}: func(string) any {
		return dataSourceDefaults{SourceKind: "rest", Format: "json", Endpoint: "", AuthType: "bearer"}
	},
	{schema.NodeTypeDataSource, "file"}: func(string) any {
		return dataSourceDefaults{SourceKind: "upload", Format: "csv", Endpoint: "", AuthType: "none"}
	},
	{schema.NodeTypeDataSource, "stream"}: func(string) any {
		return dataSourceDefaults{SourceKind: "stream", Format: "json", Endpoint: "", AuthType: "api_key"}
	},
	{schema.NodeTypeLogic, "condition"}: func(string) any {
		return logicDefaults{Operation: "branch", Condition: "true"}
	},
	{schema.NodeTypeLogic, "transform"}: func(string) any {
		return logicDefaults{Operation: "map", Condition: ""}
	},
	{schema.NodeTypeLogic, "filter"}: func(string) any {
		return logicDefaults{Operation: "filter", Condition: "true"}
	},
	{schema.NodeTypeOutput, "dashboard"}: func(string) any {
		return outputDefaults{Destination: "dashboard", Format: "chart", Schedule: "realtime"}
	},
	{schema.NodeTypeOutput, "report"}: func(string) any {
		return outputDefaults{Destination: "email", Format: "pdf", Schedule: "weekly"}
	},
	{schema.NodeTypeOutput, "alert"}: func(string) any {
		return outputDefaults{Destination: "webhook", Format: "json", Schedule: "on_event"}
	},
	{schema.NodeTypeIntegration, "slack"}: func(string) any {
		return integrationDefaults{Service: "slack", Channel: "#general", RateLimit: 60}
	},
	{schema.NodeTypeIntegration, "email"}: func(string) any {
		return integrationDefaults{Service: "sendgrid", Channel: "", RateLimit: 100}
	},
}

var catalog = []Entry{
	{Type: schema.NodeTypeDataSource, Subtype: "api", Label: "API Source"},
	{Type: schema.NodeTypeDataSource, Subtype: "file", Label: "File Upload"},
	{Type: schema.NodeTypeDataSource, Subtype: "stream", Label: "Event Stream"},
	{Type: schema.NodeTypeAIModel, Subtype: "llm", Label: "Language Model", Providers: []string{"openai", "anthropic", "google", "meta"}},
	{Type: schema.NodeTypeAIModel, Subtype: "embedding", Label: "Embedding Model", Providers: []string{"openai", "google"}},
	{Type: schema.NodeTypeDatabase, Subtype: "sql", Label: "SQL Database", Providers: []string{"supabase", "planetscale"}},
	{Type: schema.NodeTypeDatabase, Subtype: "vector", Label: "Vector Database", Providers: []string{"pinecone", "weaviate"}},
	{Type: schema.NodeTypeDatabase, Subtype: "cache", Label: "Cache"},
	{Type: schema.NodeTypeLogic, Subtype: "condition", Label: "Condition"},
	{Type: schema.NodeTypeLogic, Subtype: "transform", Label: "Transform"},
	{Type: schema.NodeTypeLogic, Subtype: "filter", Label: "Filter"},
	{Type: schema.NodeTypeOutput, Subtype: "dashboard", Label: "Dashboard"},
	{Type: schema.NodeTypeOutput, Subtype: "report", Label: "Report"},
	{Type: schema.NodeTypeOutput, Subtype: "alert", Label: "Alert"},
	{Type: schema.NodeTypeCloud, Subtype: "storage", Label: "Object Storage", Providers: []string{"aws", "gcp", "azure"}},
	{Type: schema.NodeTypeCloud, Subtype: "function", Label: "Serverless Function", Providers: []string{"aws", "gcp", "azure"}},
	{Type: schema.NodeTypeCompute, Subtype: "vm", Label: "Virtual Machine"},
	{Type: schema.NodeTypeCompute, Subtype: "container", Label: "Container"},
	{Type: schema.NodeTypeIntegration, Subtype: "slack", Label: "Slack"},
	{Type: schema.NodeTypeIntegration, Subtype: "email", Label: "Email"},
}

// flatten round-trips a typed defaults record through JSON into an open map.
func flatten(v any) map[string]any {
	b, err := json.Marshal(v)
	if err != nil {
		return map[string]any{}
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return map[string]any{}
	}
	return m
}
