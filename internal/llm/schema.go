package llm

// BuildRecordsJSONSchema returns the JSON-Schema (draft 2020-12 subset) that
// the extraction response must satisfy: exactly one array of objects carrying
// product, price, and optional notes. Price tolerates both a JSON number and
// a numeric string, because models alternate between the two.
func BuildRecordsJSONSchema() map[string]any {
	item := map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"product": map[string]any{"type": "string", "minLength": 1},
			"price": map[string]any{
				"oneOf": []any{
					map[string]any{"type": "number"},
					map[string]any{"type": "string", "pattern": `^-?\d+(\.\d+)?$`},
				},
			},
			"notes": map[string]any{"type": "string"},
		},
		"required": []string{"product", "price"},
	}
	return map[string]any{
		"type":     "array",
		"items":    item,
		"minItems": 1,
	}
}
