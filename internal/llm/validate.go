package llm

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

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

// ParseDocumentStructure validates the raw response against the fixed output
// schema and decodes it. Validation is all-or-nothing: any missing field,
// wrong type, or wrong top-level shape fails the whole response. No lenient
// or per-row fallback exists for this contract.
func ParseDocumentStructure(raw []byte) (*DocumentStructure, error) {
	if err := ValidateJSONAgainstSchema(BuildDocumentJSONSchema(), raw); err != nil {
		return nil, err
	}
	var doc DocumentStructure
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode document structure: %w", err)
	}
	if doc.ExtractedData == nil {
		doc.ExtractedData = []ExtractedPair{}
	}
	return &doc, nil
}
