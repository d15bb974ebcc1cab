package extract

// BuildNoteJSONSchema returns a JSON-Schema (draft 2020-12 subset) as a
// generic map. We derive the service's response_schema constraint from it and
// also use it locally to validate what comes back.
func BuildNoteJSONSchema() map[string]any {
	item := map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"item": map[string]any{"type": "string", "minLength": 1},
			"rate": rateProp(),
		},
		"required": []string{"item", "rate"},
	}

	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"items":      map[string]any{"type": "array", "items": item},
			"headerText": map[string]any{"type": "string"},
			"footerText": map[string]any{"type": "string"},
		},
		"required": []string{"items"},
	}
}

func rateProp() map[string]any {
	return map[string]any{
		"type":    "string",
		"pattern": `^\d+(\.\d{1,2})?$`, // decimal string, no currency symbols
	}
}
