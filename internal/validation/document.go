// Package validation checks workflow graphs and import documents before they
// enter the system: structural validation against a JSON Schema, plus
// semantic checks the schema cannot express (referential integrity between
// edges and nodes, logic-node condition syntax).
package validation

import (
	"encoding/json"
	"fmt"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/bluehawk13/cost-ai-navigator/pkg/schema"
)

// documentSchemaJSON is the JSON Schema for imported export documents.
// Embedded as a constant to avoid filesystem dependencies.
const documentSchemaJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "$id": "https://costnav.dev/schemas/export-document.json",
  "type": "object",
  "required": ["nodes", "edges", "metadata"],
  "properties": {
    "nodes": {
      "type": "array",
      "items": { "$ref": "#/$defs/node" }
    },
    "edges": {
      "type": "array",
      "items": { "$ref": "#/$defs/edge" }
    },
    "metadata": {
      "type": "object",
      "required": ["name", "version", "createdAt"],
      "properties": {
        "name": { "type": "string", "minLength": 1 },
        "version": { "type": "string" },
        "createdAt": { "type": "string" },
        "description": { "type": "string" }
      }
    }
  },
  "$defs": {
    "node": {
      "type": "object",
      "required": ["id", "type", "position", "data"],
      "properties": {
        "id": { "type": "string", "minLength": 1 },
        "type": {
          "type": "string",
          "enum": ["dataSource", "aiModel", "database", "logic", "output", "cloud", "compute", "integration"]
        },
        "position": {
          "type": "object",
          "required": ["x", "y"],
          "properties": {
            "x": { "type": "number" },
            "y": { "type": "number" }
          }
        },
        "data": {
          "type": "object",
          "required": ["label", "subtype"],
          "properties": {
            "label": { "type": "string" },
            "subtype": { "type": "string" },
            "provider": { "type": "string" },
            "config": { "type": "object" },
            "description": { "type": "string" }
          }
        }
      }
    },
    "edge": {
      "type": "object",
      "required": ["id", "source", "target"],
      "properties": {
        "id": { "type": "string", "minLength": 1 },
        "source": { "type": "string", "minLength": 1 },
        "target": { "type": "string", "minLength": 1 },
        "sourceHandle": { "type": "string" },
        "targetHandle": { "type": "string" }
      }
    }
  }
}`

// DocumentValidator validates export documents against the embedded JSON
// Schema. It is safe for concurrent use.
type DocumentValidator struct {
	documentSchema *jsonschema.Schema
}

// NewDocumentValidator compiles the document schema.
func NewDocumentValidator() (*DocumentValidator, error) {
	c := jsonschema.NewCompiler()
	c.AssertFormat()

	schemaDoc, err := jsonschema.UnmarshalJSON(strings.NewReader(documentSchemaJSON))
	if err != nil {
		return nil, fmt.Errorf("unmarshal document schema: %w", err)
	}
	if err := c.AddResource("https://costnav.dev/schemas/export-document.json", schemaDoc); err != nil {
		return nil, fmt.Errorf("add document schema resource: %w", err)
	}

	compiled, err := c.Compile("https://costnav.dev/schemas/export-document.json")
	if err != nil {
		return nil, fmt.Errorf("compile document schema: %w", err)
	}
	return &DocumentValidator{documentSchema: compiled}, nil
}

// ValidateDocument checks an export document structurally and semantically.
func (v *DocumentValidator) ValidateDocument(doc *schema.ExportDocument) error {
	if doc == nil {
		return schema.NewError(schema.ErrCodeValidation, "document is nil")
	}

	instance, err := toJSONValue(doc)
	if err != nil {
		return schema.NewError(schema.ErrCodeValidation, "failed to serialize document").WithCause(err)
	}
	if err := v.documentSchema.Validate(instance); err != nil {
		return toNavError(err)
	}

	nodes := make([]*schema.Node, 0, len(doc.Nodes))
	for _, en := range doc.Nodes {
		nodes = append(nodes, schema.FromExportNode(en))
	}
	edges := make([]*schema.Edge, 0, len(doc.Edges))
	for i := range doc.Edges {
		edges = append(edges, &doc.Edges[i])
	}
	return ValidateGraph(nodes, edges).ToError()
}

// toJSONValue round-trips a Go value through JSON encoding/decoding so that
// numeric values become json.Number (required by the jsonschema library).
func toJSONValue(v any) (any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return jsonschema.UnmarshalJSON(strings.NewReader(string(b)))
}

// toNavError converts a jsonschema.ValidationError into a NavError with
// location-annotated violation messages.
func toNavError(err error) *schema.NavError {
	verr, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return schema.NewError(schema.ErrCodeValidation, err.Error())
	}

	violations := collectViolations(verr)
	if len(violations) == 0 {
		return schema.NewError(schema.ErrCodeValidation, verr.Error())
	}
	if len(violations) == 1 {
		return schema.NewError(schema.ErrCodeValidation, violations[0]).
			WithDetails(map[string]any{"violations": violations})
	}

	msg := fmt.Sprintf("validation failed with %d errors", len(violations))
	return schema.NewError(schema.ErrCodeValidation, msg).
		WithDetails(map[string]any{"violations": violations})
}

// collectViolations walks a ValidationError tree and collects leaf error
// messages with their instance locations.
func collectViolations(verr *jsonschema.ValidationError) []string {
	if len(verr.Causes) == 0 {
		loc := "/"
		if len(verr.InstanceLocation) > 0 {
			loc = "/" + strings.Join(verr.InstanceLocation, "/")
		}
		return []string{fmt.Sprintf("%s: %s", loc, verr.Error())}
	}

	var violations []string
	for _, cause := range verr.Causes {
		violations = append(violations, collectViolations(cause)...)
	}
	return violations
}
