// pkg/catalog/schema.go
package catalog

import (
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

// documentSchema is the JSON schema a catalog file must satisfy before the
// semantic checks in Validate run.
var documentSchema = map[string]interface{}{
	"type":     "object",
	"required": []interface{}{"version", "tasks"},
	"properties": map[string]interface{}{
		"version":     map[string]interface{}{"type": "string"},
		"lastUpdated": map[string]interface{}{"type": "string"},
		"tasks": map[string]interface{}{
			"type":     "array",
			"minItems": 1,
			"items": map[string]interface{}{
				"type":     "object",
				"required": []interface{}{"category", "displayName"},
				"properties": map[string]interface{}{
					"category":       map[string]interface{}{"type": "string", "minLength": 1},
					"displayName":    map[string]interface{}{"type": "string", "minLength": 1},
					"baseHours":      map[string]interface{}{"type": "number", "minimum": 0},
					"hoursPerM2":     map[string]interface{}{"type": "number", "minimum": 0},
					"requiresArea":   map[string]interface{}{"type": "boolean"},
					"fallbackAreaM2": map[string]interface{}{"type": "number", "minimum": 0},
					"materials": map[string]interface{}{
						"type": "array",
						"items": map[string]interface{}{
							"type":     "object",
							"required": []interface{}{"sku"},
							"properties": map[string]interface{}{
								"sku":         map[string]interface{}{"type": "string", "minLength": 1},
								"qty":         map[string]interface{}{"type": "number", "minimum": 0},
								"perArea":     map[string]interface{}{"type": "boolean"},
								"fallbackQty": map[string]interface{}{"type": "number", "minimum": 0},
							},
						},
					},
				},
			},
		},
	},
}

// ValidateDocument checks raw catalog JSON against the schema.
func ValidateDocument(data []byte) error {
	schemaLoader := gojsonschema.NewGoLoader(documentSchema)
	documentLoader := gojsonschema.NewBytesLoader(data)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("schema validation error: %w", err)
	}
	if !result.Valid() {
		errs := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			errs[i] = desc.String()
		}
		return fmt.Errorf("catalog schema violations: %v", errs)
	}
	return nil
}
