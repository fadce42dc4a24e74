package docindex

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// indexSchema describes the persisted Index document.
var indexSchema = map[string]any{
	"type":     "object",
	"required": []any{"file", "type", "summary", "chunks", "entries"},
	"properties": map[string]any{
		"file":    map[string]any{"type": "string"},
		"type":    map[string]any{"type": "string", "enum": []any{"csv", "json", "text", "docx", "pdf"}},
		"summary": map[string]any{"type": "string"},
		"chunks": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type":     "object",
				"required": []any{"id", "text", "word_count"},
				"properties": map[string]any{
					"id":         map[string]any{"type": "integer", "minimum": 0},
					"text":       map[string]any{"type": "string"},
					"word_count": map[string]any{"type": "integer", "minimum": 0},
				},
			},
		},
		"entries": map[string]any{
			"type":  "array",
			"items": map[string]any{"type": "string"},
		},
	},
}

var indexSchemaLoader = gojsonschema.NewGoLoader(indexSchema)

// validateIndexJSON checks data against the Index schema.
func validateIndexJSON(path string, data []byte) error {
	result, err := gojsonschema.Validate(indexSchemaLoader, gojsonschema.NewBytesLoader(data))
	if err != nil {
		return &ParseError{Path: path, Err: fmt.Errorf("schema validation error: %w", err)}
	}
	if result.Valid() {
		return nil
	}
	var details []string
	for _, desc := range result.Errors() {
		details = append(details, desc.String())
	}
	return &ParseError{Path: path, Err: fmt.Errorf("index failed validation: %s", strings.Join(details, "; "))}
}
