package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bluehawk13/cost-ai-navigator/pkg/schema"
)

func TestDefaults_AIModel(t *testing.T) {
	cfg := Defaults(schema.NodeTypeAIModel, "llm", "openai")
	assert.Equal(t, "openai", cfg["provider"])
	assert.Equal(t, "gpt-4o", cfg["model"])
	assert.Equal(t, float64(4096), cfg["max_tokens"])
	assert.Equal(t, 0.7, cfg["temperature"])
	assert.Equal(t, 0.005, cfg["cost_per_1k_tokens"])
}

func TestDefaults_ProviderVariants(t *testing.T) {
	tests := []struct {
		provider string
		model    string
	}{
		{"openai", "gpt-4o"},
		{"anthropic", "claude-sonnet-4-0"},
		{"google", "gemini-1.5-pro"},
		{"meta", "llama-3-70b"},
	}
	for _, tt := range tests {
		t.Run(tt.provider, func(t *testing.T) {
			cfg := Defaults(schema.NodeTypeAIModel, "llm", tt.provider)
			assert.Equal(t, tt.provider, cfg["provider"])
			assert.Equal(t, tt.model, cfg["model"])
		})
	}
}

func TestDefaults_VectorDatabase(t *testing.T) {
	cfg := Defaults(schema.NodeTypeDatabase, "vector", "pinecone")
	assert.Equal(t, "pinecone", cfg["provider"])
	assert.Equal(t, float64(1536), cfg["dimension"])
	assert.Equal(t, float64(1), cfg["pods"])
	assert.Equal(t, "cosine", cfg["metric"])
}

func TestDefaults_UnknownProviderFallsBack(t *testing.T) {
	cfg := Defaults(schema.NodeTypeCloud, "storage", "unknown-cloud")
	assert.Equal(t, "aws", cfg["provider"])
	assert.Equal(t, "S3", cfg["service"])
}

func TestDefaults_UnknownCombinationIsEmpty(t *testing.T) {
	cfg := Defaults(schema.NodeTypeLogic, "no-such-subtype", "")
	require.NotNil(t, cfg)
	assert.Empty(t, cfg)

	cfg = Defaults("bogusType", "api", "")
	require.NotNil(t, cfg)
	assert.Empty(t, cfg)
}

func TestDefaults_ReturnsFreshMap(t *testing.T) {
	a := Defaults(schema.NodeTypeLogic, "condition", "")
	a["operation"] = "mutated"
	b := Defaults(schema.NodeTypeLogic, "condition", "")
	assert.Equal(t, "branch", b["operation"])
}

func TestCatalog(t *testing.T) {
	entries := Catalog()
	require.NotEmpty(t, entries)

	// Every catalog entry must resolve to a non-empty default config.
	for _, e := range entries {
		provider := ""
		if len(e.Providers) > 0 {
			provider = e.Providers[0]
		}
		cfg := Defaults(e.Type, e.Subtype, provider)
		assert.NotEmpty(t, cfg, "catalog entry %s/%s has no defaults", e.Type, e.Subtype)
	}
}
