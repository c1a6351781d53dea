package schema

import (
	"context"

	"github.com/go-playground/validator/v10"
)

// Validator is one write-time check over an action configuration.
type Validator interface {
	Validate(ctx context.Context) error
}

// CompositeValidator runs a fixed sequence of checks, stopping at the
// first failure so the caller sees one actionable error at a time.
type CompositeValidator struct {
	validators []Validator
}

func NewCompositeValidator(validators ...Validator) *CompositeValidator {
	return &CompositeValidator{validators: validators}
}

func (v *CompositeValidator) Validate(ctx context.Context) error {
	for _, validator := range v.validators {
		if err := validator.Validate(ctx); err != nil {
			return err
		}
	}
	return nil
}

// StructValidator applies the struct tags declared on a configuration
// value (required fields, URL shape, ranges).
type StructValidator struct {
	validate *validator.Validate
	value    any
}

func NewStructValidator(value any) *StructValidator {
	return &StructValidator{
		validate: validator.New(),
		value:    value,
	}
}

func (v *StructValidator) Validate(_ context.Context) error {
	return v.validate.Struct(v.value)
}
