package schema

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/kaptinlin/jsonschema"
)

// Schema is a JSON Schema document as a plain map, the form the parameter
// builder produces from an action's declared parameter specs.
type Schema map[string]any

// Result is the evaluation outcome of a compiled schema.
type Result = jsonschema.EvaluationResult

// Compile turns the document into a compiled validator. A nil schema
// compiles to nil, meaning nothing to enforce.
func (s *Schema) Compile() (*jsonschema.Schema, error) {
	if s == nil {
		return nil, nil
	}
	raw, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}
	compiled, err := jsonschema.NewCompiler().Compile(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}
	return compiled, nil
}

// Validate evaluates value against the schema. Types are strict: the
// schema never coerces, so a mismatched input fails here instead of being
// silently stringified downstream.
func (s *Schema) Validate(_ context.Context, value any) (*Result, error) {
	compiled, err := s.Compile()
	if err != nil {
		return nil, err
	}
	if compiled == nil {
		return nil, nil
	}
	result := compiled.Validate(value)
	if !result.Valid {
		return nil, fmt.Errorf("parameter validation failed: %v", result.Errors)
	}
	return result, nil
}
