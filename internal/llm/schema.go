package llm

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/quadtech/invoice-extractor/constants"
)

// BuildInvoiceJSONSchema returns a JSON-Schema (draft 2020-12 subset) for the
// canonical invoice record, as a generic map. Validation is advisory: the
// normalizer repairs anything the model got wrong, but a clean validation
// result lets the pipeline skip the needs-review flag.
func BuildInvoiceJSONSchema() map[string]any {
	isoDate := map[string]any{"type": "string", "pattern": `^(\d{4}-\d{2}-\d{2})?$`}
	str := map[string]any{"type": "string"}

	attribute := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"id":    map[string]any{"type": "integer"},
			"name":  str,
			"value": str,
		},
	}
	component := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"id":         map[string]any{"type": "integer"},
			"name":       str,
			"attributes": map[string]any{"type": "array", "items": attribute},
		},
	}
	docTypes := make([]any, 0, len(constants.KnownDocumentTypes)+1)
	docTypes = append(docTypes, "")
	for _, dt := range constants.KnownDocumentTypes {
		docTypes = append(docTypes, string(dt))
	}
	document := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"date": isoDate,
			"type": map[string]any{"type": "string", "enum": docTypes},
			"path": str,
		},
	}

	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"inventory_arrival_date": isoDate,
			"stock_number":           str,
			"vin":                    str,
			"condition":              str,
			"model_year":             str,
			"make":                   str,
			"model":                  str,
			"body_type":              str,
			"body_line":              str,
			"body_manufacturer":      str,
			"body_model":             str,
			"distributor":            str,
			"distributor_location":   str,
			"invoice_date":           isoDate,
			"components":             map[string]any{"type": "array", "items": component},
			"documents":              map[string]any{"type": "array", "items": document},
		},
		"required": []string{"components", "documents"},
	}
}

// ValidateJSONAgainstSchema validates "data" against "schemaMap".
func ValidateJSONAgainstSchema(schemaMap map[string]any, data []byte) error {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", bytes.NewReader(b)); err != nil {
		return fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("schema.json")
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal data: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("json does not match schema: %w", err)
	}
	return nil
}
