// Package validation provides schema-driven request validation: pure
// field predicates, a type dispatch table, value transformation and a
// recursive schema walker. Schemas are static configuration built by
// the route layer; walking is fail-fast and has no state between calls.
package validation

import (
	"fmt"

	"github.com/openshelf/openshelf/pkg/apperr"
)

// TypeTag identifies the expected shape/semantics of a field.
// The set is closed; dispatch over an unknown tag is a schema-author
// error and is reported as an UnsupportedType failure at runtime.
type TypeTag string

const (
	TypeEmail     TypeTag = "email"
	TypePassword  TypeTag = "password"
	TypePureName  TypeTag = "pure_name"
	TypeAlphaName TypeTag = "alpha_name"
	TypePhone     TypeTag = "phone"
	TypeJSON      TypeTag = "json"
	TypeInteger   TypeTag = "integer"
	TypeNumber    TypeTag = "number"
	TypeString    TypeTag = "string"
	TypeArray     TypeTag = "array"
	TypeDateTime  TypeTag = "datetime"
	TypeObject    TypeTag = "object"
	TypeBoolean   TypeTag = "boolean"
	TypeCustom    TypeTag = "custom"
)

// Field describes one payload field: its key, expected type,
// requiredness and optional nested/array/custom rules.
type Field struct {
	// Name is the payload key. Must be non-empty and unique within a schema.
	Name string

	// Type selects the validator and transformer for the value.
	Type TypeTag

	// Required makes an absent (or null) value a validation failure.
	Required bool

	// ArrayType is the element type when Type is TypeArray. When it is
	// TypeObject, Schema describes each element.
	ArrayType TypeTag

	// Schema holds nested field descriptors when Type is TypeObject or
	// ArrayType is TypeObject.
	Schema Schema

	// Format is the predicate for TypeCustom fields. Returning
	// (false, nil) fails with Message (or "Invalid <field>"); a non-nil
	// error is surfaced verbatim, preserving its status code.
	Format func(value any) (bool, error)

	// Validate is an extra guard invoked after type validation. A
	// non-nil error aborts the walk with that error.
	Validate func(value any) error

	// Message overrides the default failure message for TypeCustom.
	Message string
}

// Schema is an ordered field list. Fields are evaluated left to right
// and the first failure stops the walk.
type Schema []Field

// Check verifies the schema's structural invariants. It is intended
// for construction-time assertions on statically declared schemas.
func (s Schema) Check() error {
	seen := make(map[string]bool, len(s))
	for _, f := range s {
		if f.Name == "" {
			return fmt.Errorf("schema field with empty name")
		}
		if seen[f.Name] {
			return fmt.Errorf("duplicate schema field %q", f.Name)
		}
		seen[f.Name] = true

		if f.Type == TypeCustom && f.Format == nil {
			return fmt.Errorf("custom field %q without format predicate", f.Name)
		}
		if f.Type == TypeArray && f.ArrayType == TypeObject && f.Schema == nil {
			return fmt.Errorf("array-of-objects field %q without nested schema", f.Name)
		}
		if f.Schema != nil {
			if err := f.Schema.Check(); err != nil {
				return fmt.Errorf("nested schema of %q: %w", f.Name, err)
			}
		}
	}
	return nil
}

// MustCheck panics if the schema violates its invariants. Used for
// package-level schema declarations.
func (s Schema) MustCheck() Schema {
	if err := s.Check(); err != nil {
		panic(err)
	}
	return s
}

// requiredError reports an absent required field.
func requiredError(field string) *apperr.Error {
	return apperr.Newf(400, "%s is required", field)
}

// unsupportedTypeError reports a schema referencing an unknown tag.
func unsupportedTypeError(field string) *apperr.Error {
	return apperr.Newf(400, "Unsupported validation type for %s", field)
}
