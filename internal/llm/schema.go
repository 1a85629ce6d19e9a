package llm

// BuildDocumentJSONSchema returns the output contract as a JSON-Schema
// (draft 2020-12 subset) generic map. It is embedded into the system prompt
// and used locally to validate the response. The shape is fixed: exactly one
// top-level key holding an array of {Key, Value, Comment} string objects, no
// extra fields anywhere, no optional fields.
func BuildDocumentJSONSchema() map[string]any {
	pair := map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"Key": map[string]any{
				"type":        "string",
				"description": "The determined key/label for the data point.",
			},
			"Value": map[string]any{
				"type":        "string",
				"description": "The exact original phrasing or fact from the PDF.",
			},
			"Comment": map[string]any{
				"type":        "string",
				"description": "Residual text from the source or supplementary context. MUST be '' if Key/Value is sufficient.",
			},
		},
		"required": []string{"Key", "Value", "Comment"},
	}

	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			TopLevelField: map[string]any{
				"type":        "array",
				"items":       pair,
				"description": "This array MUST contain ALL extracted Key:Value:Comment pairs.",
			},
		},
		"required": []string{TopLevelField},
	}
}
