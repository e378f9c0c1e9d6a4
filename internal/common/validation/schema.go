// internal/common/validation/schema.go
package validation

import (
	"encoding/json"
	"fmt"

	"github.com/xeipuuv/gojsonschema"

	"renoquote/internal/models"
)

// quoteSchema pins the output contract: the stable field names downstream
// consumers parse. A violation is an engine bug, never bad transcript input.
var quoteSchema = map[string]interface{}{
	"type": "object",
	"required": []interface{}{
		"system", "quote_id", "client", "currency", "zones", "summary",
	},
	"properties": map[string]interface{}{
		"system":   map[string]interface{}{"type": "string", "minLength": 1},
		"quote_id": map[string]interface{}{"type": "string", "minLength": 1},
		"client": map[string]interface{}{
			"type":     "object",
			"required": []interface{}{"raw_transcript", "location"},
			"properties": map[string]interface{}{
				"raw_transcript": map[string]interface{}{"type": "string"},
				"location":       map[string]interface{}{"type": "string"},
			},
		},
		"currency": map[string]interface{}{"type": "string", "enum": []interface{}{"EUR"}},
		"zones": map[string]interface{}{
			"type": "array",
			"items": map[string]interface{}{
				"type":     "object",
				"required": []interface{}{"zone_name", "tasks"},
				"properties": map[string]interface{}{
					"zone_name": map[string]interface{}{"type": "string"},
					"tasks": map[string]interface{}{
						"type":  "array",
						"items": taskSchema,
					},
				},
			},
		},
		"summary": map[string]interface{}{
			"type": "object",
			"required": []interface{}{
				"total_labor_cost", "total_material_cost", "total_vat",
				"total_price", "estimated_duration_hours", "confidence_score",
				"suspicious_input",
			},
			"properties": map[string]interface{}{
				"total_labor_cost":         map[string]interface{}{"type": "number", "minimum": 0},
				"total_material_cost":      map[string]interface{}{"type": "number", "minimum": 0},
				"total_vat":                map[string]interface{}{"type": "number", "minimum": 0},
				"total_price":              map[string]interface{}{"type": "number", "minimum": 0},
				"estimated_duration_hours": map[string]interface{}{"type": "number", "minimum": 0},
				"confidence_score":         map[string]interface{}{"type": "number", "minimum": 0, "maximum": 1},
				"suspicious_input":         map[string]interface{}{"type": "boolean"},
			},
		},
	},
}

var taskSchema = map[string]interface{}{
	"type": "object",
	"required": []interface{}{
		"task_name", "area_m2", "labor", "materials",
		"estimated_duration_hours", "vat_rate", "margin_pct",
		"price_ex_vat", "vat_amount", "total_price", "confidence",
	},
	"properties": map[string]interface{}{
		"task_name": map[string]interface{}{"type": "string", "minLength": 1},
		"area_m2":   map[string]interface{}{"type": []interface{}{"number", "null"}},
		"labor": map[string]interface{}{
			"type":     "object",
			"required": []interface{}{"hours", "hourly_rate", "cost"},
			"properties": map[string]interface{}{
				"hours":       map[string]interface{}{"type": "number", "minimum": 0},
				"hourly_rate": map[string]interface{}{"type": "number", "minimum": 0},
				"cost":        map[string]interface{}{"type": "number", "minimum": 0},
			},
		},
		"materials": map[string]interface{}{
			"type": "array",
			"items": map[string]interface{}{
				"type":     "object",
				"required": []interface{}{"name", "qty", "unit_cost", "total"},
				"properties": map[string]interface{}{
					"name":      map[string]interface{}{"type": "string", "minLength": 1},
					"qty":       map[string]interface{}{"type": "number"},
					"unit_cost": map[string]interface{}{"type": "number"},
					"total":     map[string]interface{}{"type": "number"},
				},
			},
		},
		"estimated_duration_hours": map[string]interface{}{"type": "number", "minimum": 0},
		"vat_rate":                 map[string]interface{}{"type": "number", "minimum": 0, "maximum": 1},
		"margin_pct":               map[string]interface{}{"type": "number", "minimum": 0, "maximum": 1},
		"price_ex_vat":             map[string]interface{}{"type": "number", "minimum": 0},
		"vat_amount":               map[string]interface{}{"type": "number", "minimum": 0},
		"total_price":              map[string]interface{}{"type": "number", "minimum": 0},
		"confidence":               map[string]interface{}{"type": "number", "minimum": 0, "maximum": 1},
	},
}

// ValidateQuoteDocument checks marshaled quote JSON against the schema.
func ValidateQuoteDocument(data []byte) error {
	schemaLoader := gojsonschema.NewGoLoader(quoteSchema)
	documentLoader := gojsonschema.NewBytesLoader(data)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("validation error: %w", err)
	}
	if !result.Valid() {
		errs := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			errs[i] = desc.String()
		}
		return fmt.Errorf("quote validation failed: %v", errs)
	}
	return nil
}

// ValidateQuote marshals and validates a quote in one step.
func ValidateQuote(q *models.Quote) error {
	data, err := json.Marshal(q)
	if err != nil {
		return fmt.Errorf("marshal quote: %w", err)
	}
	return ValidateQuoteDocument(data)
}
