package validation

import (
	"embed"
	"fmt"
	"path"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed schemas/*.json
var schemaFS embed.FS

// Schema names, one per JSON request body.
const (
	SchemaNotesToNumbers = "notes_to_numbers"
	SchemaCoachExercise  = "coach_exercise"
	SchemaSongRequest    = "song_request"
	SchemaTTS            = "tts"
)

type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// fieldMessages are the client facing texts for type errors on known fields.
var fieldMessages = map[string]string{
	"notes":            "notes must be a list",
	"expected_numbers": "expected_numbers must be a list",
	"lyrics_lines":     "lyrics_lines must be a list of strings",
	"query":            "query must be a string",
	"text":             "text must be a string",
	"voice_enabled":    "voice_enabled must be a boolean",
}

// Validator holds the compiled request schemas.
type Validator struct {
	schemas map[string]*gojsonschema.Schema
}

// New compiles every embedded schema.
func New() (*Validator, error) {
	entries, err := schemaFS.ReadDir("schemas")
	if err != nil {
		return nil, fmt.Errorf("read schemas: %w", err)
	}

	v := &Validator{schemas: make(map[string]*gojsonschema.Schema, len(entries))}
	for _, entry := range entries {
		raw, err := schemaFS.ReadFile(path.Join("schemas", entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("read schema %s: %w", entry.Name(), err)
		}
		schema, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(raw))
		if err != nil {
			return nil, fmt.Errorf("compile schema %s: %w", entry.Name(), err)
		}
		v.schemas[strings.TrimSuffix(entry.Name(), ".json")] = schema
	}
	return v, nil
}

// MustNew is New for program start and tests.
func MustNew() *Validator {
	v, err := New()
	if err != nil {
		panic(err)
	}
	return v
}

// Validate checks doc against the named schema.
func (v *Validator) Validate(name string, doc map[string]interface{}) (*ValidationResult, error) {
	schema, ok := v.schemas[name]
	if !ok {
		return nil, fmt.Errorf("unknown schema %q", name)
	}

	result, err := schema.Validate(gojsonschema.NewGoLoader(doc))
	if err != nil {
		return nil, fmt.Errorf("validation error: %w", err)
	}

	out := &ValidationResult{Valid: result.Valid()}
	for _, desc := range result.Errors() {
		out.Errors = append(out.Errors, ValidationError{
			Field:   desc.Field(),
			Message: messageFor(desc),
			Code:    desc.Type(),
		})
	}
	return out, nil
}

func messageFor(desc gojsonschema.ResultError) string {
	field := desc.Field()
	if desc.Type() == "invalid_type" {
		if msg, ok := fieldMessages[field]; ok {
			return msg
		}
	}
	if strings.HasPrefix(field, "notes.") {
		return "each note must be an object with a numeric midi value between 0 and 127"
	}
	return fmt.Sprintf("%s: %s", field, desc.Description())
}

// FirstMessage returns the message of the first error, or "" when valid.
func (vr *ValidationResult) FirstMessage() string {
	if vr == nil || len(vr.Errors) == 0 {
		return ""
	}
	return vr.Errors[0].Message
}

// HasErrors checks if validation has errors for specific field
func (vr *ValidationResult) HasErrors(field string) bool {
	for _, err := range vr.Errors {
		if err.Field == field || strings.HasPrefix(err.Field, field+".") {
			return true
		}
	}
	return false
}
