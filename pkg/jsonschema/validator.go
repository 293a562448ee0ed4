// Package jsonschema validates JSON documents against JSON Schemas.
package jsonschema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// ValidationErrors represents a collection of validation errors
type ValidationErrors []error

// Error implements the error interface for ValidationErrors
func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return ""
	}

	var sb strings.Builder
	for i, err := range ve {
		if i > 0 {
			sb.WriteString("; ")
		}
		sb.WriteString(err.Error())
	}
	return sb.String()
}

// Schema is a compiled JSON Schema
type Schema struct {
	name   string
	schema *jsonschema.Schema
}

// Compile compiles schemaStr. name is used as the schema resource URL and in
// error messages.
func Compile(name, schemaStr string) (*Schema, error) {
	compiler := jsonschema.NewCompiler()

	if err := compiler.AddResource(name, strings.NewReader(schemaStr)); err != nil {
		return nil, fmt.Errorf("invalid schema %s: %w", name, err)
	}

	schema, err := compiler.Compile(name)
	if err != nil {
		return nil, fmt.Errorf("invalid schema %s: %w", name, err)
	}

	return &Schema{name: name, schema: schema}, nil
}

// MustCompile is like Compile but panics on error. Meant for schemas
// embedded in the binary.
func MustCompile(name, schemaStr string) *Schema {
	s, err := Compile(name, schemaStr)
	if err != nil {
		panic(err)
	}
	return s
}

// Validate parses data and validates it against the schema. A nil return
// means the document is valid; invalid documents yield ValidationErrors.
func (s *Schema) Validate(data []byte) error {
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()

	var doc interface{}
	if err := decoder.Decode(&doc); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}

	return s.ValidateValue(doc)
}

// ValidateValue validates an already decoded document.
func (s *Schema) ValidateValue(doc interface{}) error {
	err := s.schema.Validate(doc)
	if err == nil {
		return nil
	}

	var validationErr *jsonschema.ValidationError
	if errors.As(err, &validationErr) {
		return extractValidationErrors(validationErr)
	}
	return ValidationErrors{err}
}

// Validate validates a JSON string against a JSON Schema in one go.
// It returns false with a nil error when the document does not match, and
// an error when either the schema or the document cannot be parsed.
func Validate(jsonStr, schemaStr string) (bool, error) {
	schema, err := Compile("schema.json", schemaStr)
	if err != nil {
		return false, err
	}

	err = schema.Validate([]byte(jsonStr))
	var validationErrs ValidationErrors
	switch {
	case err == nil:
		return true, nil
	case errors.As(err, &validationErrs):
		return false, nil
	default:
		return false, err
	}
}

// extractValidationErrors flattens a validation error tree into its leaves
func extractValidationErrors(err *jsonschema.ValidationError) ValidationErrors {
	if len(err.Causes) == 0 {
		location := err.InstanceLocation
		if location == "" {
			location = "/"
		}
		return ValidationErrors{fmt.Errorf("validation error at %s: %s", location, err.Message)}
	}

	var errs ValidationErrors
	for _, cause := range err.Causes {
		errs = append(errs, extractValidationErrors(cause)...)
	}
	return errs
}
