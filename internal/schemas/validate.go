// Package schemas validates request payloads and data files against JSON Schemas.
package schemas

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed job_list.schema.json
var jobListSchema string

// JobList checks the jobs field of a resume matching request: a non-empty
// array of objects, each with a string array under "skills".
var JobList = MustCompile("job_list", jobListSchema)

// FieldError is one violation at a JSON path. The root is reported as "(root)".
type FieldError struct {
	Field   string
	Message string
}

// ValidationError lists every violation found in a document.
type ValidationError struct {
	Schema string
	Errors []FieldError
}

func (ve *ValidationError) Error() string {
	parts := make([]string, 0, len(ve.Errors))
	for _, fe := range ve.Errors {
		parts = append(parts, fe.Field+": "+fe.Message)
	}
	name := ve.Schema
	if name == "" {
		name = "document"
	}
	return fmt.Sprintf("%s failed validation: %s", name, strings.Join(parts, "; "))
}

// Summary returns the first violation on one line, for API responses.
func (ve *ValidationError) Summary() string {
	if len(ve.Errors) == 0 {
		return "validation failed"
	}
	first := ve.Errors[0]
	if len(ve.Errors) == 1 {
		return fmt.Sprintf("%s: %s", first.Field, first.Message)
	}
	return fmt.Sprintf("%s: %s (and %d more)", first.Field, first.Message, len(ve.Errors)-1)
}

// CompileError reports a schema that gojsonschema could not load.
type CompileError struct {
	Schema string
	Cause  error
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("failed to compile schema %s: %v", e.Schema, e.Cause)
}

func (e *CompileError) Unwrap() error {
	return e.Cause
}

// Schema is a compiled JSON Schema. It is safe for concurrent use.
type Schema struct {
	name   string
	schema *gojsonschema.Schema
}

// Compile parses a schema once so documents can be validated without reloading it.
func Compile(name, content string) (*Schema, error) {
	s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(content))
	if err != nil {
		return nil, &CompileError{Schema: name, Cause: err}
	}
	return &Schema{name: name, schema: s}, nil
}

// MustCompile is Compile for embedded schemas; it panics on error.
func MustCompile(name, content string) *Schema {
	s, err := Compile(name, content)
	if err != nil {
		panic(err)
	}
	return s
}

// Name returns the name the schema was compiled with.
func (s *Schema) Name() string {
	return s.name
}

// Validate checks data against the schema. Malformed JSON and schema
// violations are both returned as a *ValidationError.
func (s *Schema) Validate(data []byte) error {
	if !json.Valid(data) {
		return &ValidationError{Schema: s.name, Errors: []FieldError{{Field: "(root)", Message: "document is not valid JSON"}}}
	}

	result, err := s.schema.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return fmt.Errorf("validating against %s: %w", s.name, err)
	}
	if result.Valid() {
		return nil
	}

	verr := &ValidationError{Schema: s.name, Errors: make([]FieldError, 0, len(result.Errors()))}
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		verr.Errors = append(verr.Errors, FieldError{Field: field, Message: desc.Description()})
	}
	return verr
}
