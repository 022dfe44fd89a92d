// Package schemas validates classification-provider JSON against closed
// schemas at the boundary, before any field is trusted by the pipeline.
package schemas

import (
	"embed"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed *.json
var schemaFiles embed.FS

// Schema file names for each LLM response shape.
const (
	RolesResponse    = "roles_response.json"
	CodingResponse   = "coding_response.json"
	FeedbackResponse = "feedback_response.json"
)

// FieldError represents a single validation error at a specific field
type FieldError struct {
	Field   string
	Message string
}

// ValidationError represents a schema validation failure with field paths
type ValidationError struct {
	Schema string
	Errors []FieldError
}

func (ve *ValidationError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "response failed %s validation:\n", ve.Schema)
	for i, err := range ve.Errors {
		fmt.Fprintf(&sb, "  %d. %s: %s\n", i+1, err.Field, err.Message)
	}
	return sb.String()
}

// Validate checks a raw JSON document against one of the embedded schemas.
// Returns a *ValidationError describing every violated field on failure.
func Validate(schemaName, document string) error {
	schemaBytes, err := schemaFiles.ReadFile(schemaName)
	if err != nil {
		return fmt.Errorf("failed to load schema %s: %w", schemaName, err)
	}

	schemaLoader := gojsonschema.NewBytesLoader(schemaBytes)
	documentLoader := gojsonschema.NewStringLoader(document)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("failed to validate against %s: %w", schemaName, err)
	}

	if !result.Valid() {
		ve := &ValidationError{Schema: schemaName}
		for _, e := range result.Errors() {
			ve.Errors = append(ve.Errors, FieldError{
				Field:   e.Field(),
				Message: e.Description(),
			})
		}
		return ve
	}

	return nil
}
