package domain

import (
	"encoding/json"
	"fmt"

	"github.com/formhive/formhive/internal/utils"
)

// FieldDefinition is the raw marker set of one schema property. Pointer
// fields distinguish "absent" from zero values; presence is load-bearing for
// validation-object construction.
type FieldDefinition struct {
	Title            *string  `json:"title,omitempty"`
	Type             *string  `json:"type,omitempty"`
	Format           *string  `json:"format,omitempty"`
	Enum             []any    `json:"enum,omitempty"`
	EnumNames        []any    `json:"enumNames,omitempty"`
	MultipleOf       any      `json:"multipleOf,omitempty"`
	Minimum          *float64 `json:"minimum,omitempty"`
	Maximum          *float64 `json:"maximum,omitempty"`
	MinLength        *int     `json:"minLength,omitempty"`
	MaxLength        *int     `json:"maxLength,omitempty"`
	Pattern          *string  `json:"pattern,omitempty"`
	CustomValidation *string  `json:"customValidation,omitempty"`
	Default          any      `json:"default,omitempty"`
	Placeholder      *string  `json:"placeholder,omitempty"`
	Description      *string  `json:"description,omitempty"`
}

// Schema is a form's parsed schema document. Property order is preserved.
type Schema struct {
	Properties utils.OrderedKVMap[FieldDefinition] `json:"properties"`
	Required   []string                            `json:"required,omitempty"`
}

// ParseSchema decodes a raw schema document. Duplicate property keys are a
// validation error.
func ParseSchema(raw json.RawMessage) (*Schema, error) {
	var schema Schema
	if err := json.Unmarshal(raw, &schema); err != nil {
		return nil, ValidationError{Message: fmt.Sprintf("invalid form schema: %v", err)}
	}
	return &schema, nil
}

// Validate checks the schema invariants: the required list must be a subset
// of the property keys.
func (s *Schema) Validate() error {
	for _, req := range s.Required {
		if _, ok := s.Properties[req]; !ok {
			return ValidationError{Message: fmt.Sprintf("required field %q is not defined in the schema", req)}
		}
	}
	return nil
}

// FieldIDs returns the property keys in their stored order.
func (s *Schema) FieldIDs() []string {
	return s.Properties.Keys()
}
