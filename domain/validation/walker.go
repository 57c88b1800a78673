package validation

import (
	"github.com/openshelf/openshelf/pkg/apperr"
)

// Walk validates payload against schema and returns a transformed
// copy. Evaluation is fail-fast in schema order: the first failing
// field aborts the walk and its error is returned with a nil map.
//
// The input payload is never mutated. Keys absent from the schema are
// carried through untouched; validated keys carry their canonical
// (transformed) values in the result.
func Walk(schema Schema, payload map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(payload))
	for k, v := range payload {
		out[k] = v
	}

	for _, f := range schema {
		value, present := payload[f.Name]
		if !present || value == nil {
			if f.Required {
				return nil, requiredError(f.Name)
			}
			continue
		}

		checked, err := walkField(f, value)
		if err != nil {
			return nil, err
		}
		out[f.Name] = checked
	}
	return out, nil
}

// WalkParams validates URL/query parameters: requiredness, custom
// predicates and canonicalization only, since every parameter arrives
// as a string and type predicates would reject untyped input.
func WalkParams(schema Schema, params map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(params))
	for k, v := range params {
		out[k] = v
	}

	for _, f := range schema {
		value, present := params[f.Name]
		if !present || value == nil || value == "" {
			if f.Required {
				return nil, requiredError(f.Name)
			}
			continue
		}
		if f.Type == TypeCustom {
			v, err := walkCustom(f, value)
			if err != nil {
				return nil, err
			}
			out[f.Name] = v
			continue
		}
		canonical := transform(f.Type, value)
		if f.Validate != nil {
			if err := f.Validate(canonical); err != nil {
				return nil, apperr.From(err)
			}
		}
		out[f.Name] = canonical
	}
	return out, nil
}

// walkField checks one present value against its descriptor and
// returns the canonical value.
func walkField(f Field, value any) (any, error) {
	if f.Type == TypeCustom {
		v, err := walkCustom(f, value)
		if err != nil {
			return nil, err
		}
		value = v
	} else {
		if err := validateType(f.Type, f.Name, value); err != nil {
			return nil, err
		}

		switch {
		case f.Type == TypeObject && f.Schema != nil:
			nested, err := Walk(f.Schema, value.(map[string]any))
			if err != nil {
				return nil, err
			}
			value = nested
		case f.Type == TypeArray && f.ArrayType != "":
			elems, err := walkArray(f, value)
			if err != nil {
				return nil, err
			}
			value = elems
		}
	}

	// Guards see the canonical value, so a numeric guard works the
	// same whether the client sent "3" or 3.
	value = transform(f.Type, value)
	if f.Validate != nil {
		if err := f.Validate(value); err != nil {
			return nil, apperr.From(err)
		}
	}
	return value, nil
}

// walkCustom runs the field's format predicate. A predicate error is
// surfaced verbatim so custom rules control their own status code and
// message; a plain false uses the field's message override.
func walkCustom(f Field, value any) (any, error) {
	if f.Format == nil {
		return nil, unsupportedTypeError(f.Name)
	}
	ok, err := f.Format(value)
	if err != nil {
		return nil, apperr.From(err)
	}
	if !ok {
		if f.Message != "" {
			return nil, apperr.New(400, f.Message)
		}
		return nil, apperr.Newf(400, "Invalid %s", f.Name)
	}
	return value, nil
}

// walkArray validates every element against the field's element type,
// recursing into the nested schema for object elements. The first bad
// element aborts the walk.
func walkArray(f Field, value any) (any, error) {
	items, ok := value.([]any)
	if !ok {
		return nil, apperr.New(400, "Provide a valid array")
	}

	out := make([]any, len(items))
	for i, item := range items {
		if f.ArrayType == TypeObject && f.Schema != nil {
			obj, ok := item.(map[string]any)
			if !ok {
				return nil, apperr.New(400, "Provide a valid object")
			}
			nested, err := Walk(f.Schema, obj)
			if err != nil {
				return nil, err
			}
			out[i] = nested
			continue
		}

		if err := validateType(f.ArrayType, f.Name, item); err != nil {
			return nil, err
		}
		out[i] = transform(f.ArrayType, item)
	}
	return out, nil
}
