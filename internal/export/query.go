package export

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/itchyny/gojq"

	"github.com/bluehawk13/cost-ai-navigator/pkg/schema"
)

// Querier evaluates jq expressions against export documents, letting API
// callers extract slices of a workflow (node labels, config values, edge
// lists) without downloading the full file.
// Thread-safe: compiled *Code objects are cached and reused across goroutines.
type Querier struct {
	mu    sync.RWMutex
	cache map[string]*gojq.Code
}

// NewQuerier creates a jq query evaluator.
func NewQuerier() *Querier {
	return &Querier{cache: make(map[string]*gojq.Code)}
}

// Query evaluates the jq expression against the export document. The document
// is round-tripped through JSON so the expression sees plain maps and floats.
//
// jq expressions can produce multiple outputs. When there is exactly one
// output it is returned directly; multiple outputs are collected into []any.
func (q *Querier) Query(ctx context.Context, doc *schema.ExportDocument, expression string) (any, error) {
	if expression == "" {
		return nil, schema.NewError(schema.ErrCodeValidation, "empty jq expression")
	}

	code, err := q.getOrCompile(expression)
	if err != nil {
		return nil, err
	}

	input, err := toJSONValue(doc)
	if err != nil {
		return nil, err
	}

	iter := code.RunWithContext(ctx, input)

	var results []any
	for {
		val, ok := iter.Next()
		if !ok {
			break
		}
		if err, isErr := val.(error); isErr {
			return nil, schema.NewErrorf(schema.ErrCodeExport,
				"jq evaluation failed for %q: %s", expression, err.Error()).
				WithCause(err).
				WithDetails(map[string]any{"expression": expression})
		}
		results = append(results, val)
	}

	switch len(results) {
	case 0:
		return nil, nil
	case 1:
		return results[0], nil
	default:
		return results, nil
	}
}

// getOrCompile returns a cached compiled code or compiles and caches a new one.
func (q *Querier) getOrCompile(expression string) (*gojq.Code, error) {
	q.mu.RLock()
	if code, ok := q.cache[expression]; ok {
		q.mu.RUnlock()
		return code, nil
	}
	q.mu.RUnlock()

	q.mu.Lock()
	defer q.mu.Unlock()

	// Double-check after acquiring write lock.
	if code, ok := q.cache[expression]; ok {
		return code, nil
	}

	query, err := gojq.Parse(expression)
	if err != nil {
		return nil, schema.NewErrorf(schema.ErrCodeValidation,
			"jq parse error in %q: %s", expression, err.Error()).
			WithCause(err).
			WithDetails(map[string]any{"expression": expression})
	}

	code, err := gojq.Compile(query,
		// Sandbox: return empty env to block $ENV and env access.
		gojq.WithEnvironLoader(func() []string { return nil }),
	)
	if err != nil {
		return nil, schema.NewErrorf(schema.ErrCodeValidation,
			"jq compile error in %q: %s", expression, err.Error()).
			WithCause(err).
			WithDetails(map[string]any{"expression": expression})
	}

	q.cache[expression] = code
	return code, nil
}

// toJSONValue converts the document into the map/slice/float shapes jq expects.
func toJSONValue(doc *schema.ExportDocument) (any, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, schema.NewError(schema.ErrCodeExport, "marshal document for query").WithCause(err)
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, schema.NewError(schema.ErrCodeExport, "normalize document for query").WithCause(err)
	}
	return v, nil
}
