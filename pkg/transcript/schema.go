package transcript

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// metadataSchema describes the JSON saved next to each transcript.
var metadataSchema = map[string]any{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type":    "object",
	"properties": map[string]any{
		"title":       map[string]any{"type": "string", "minLength": 1},
		"video_id":    map[string]any{"type": "string"},
		"url":         map[string]any{"type": "string"},
		"channel":     map[string]any{"type": "string"},
		"description": map[string]any{"type": "string"},
		"upload_date": map[string]any{"type": "string"},
		"duration":    map[string]any{"type": "integer", "minimum": 0},
		"view_count":  map[string]any{"type": "integer", "minimum": 0},
		"saved_at":    map[string]any{"type": "string"},
	},
	"required": []any{"title"},
}

func validateMetadata(metadata map[string]any) error {
	schemaLoader := gojsonschema.NewGoLoader(metadataSchema)
	dataLoader := gojsonschema.NewGoLoader(metadata)

	result, err := gojsonschema.Validate(schemaLoader, dataLoader)
	if err != nil {
		return err
	}

	if !result.Valid() {
		var problems []string
		for _, desc := range result.Errors() {
			problems = append(problems, desc.String())
		}

		return fmt.Errorf("validation errors: %s", strings.Join(problems, "; "))
	}

	return nil
}
