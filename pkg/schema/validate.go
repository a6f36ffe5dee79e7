package schema

import "sort"

// Schema is a map of field names to their expected types.
type Schema map[string]Type

// Validate checks if data conforms to the schema.
// Returns an *AggregateError with all validation failures found, sorted by key.
func Validate(schema Schema, data map[string]any) error {
	if len(schema) == 0 {
		return nil
	}

	keys := make([]string, 0, len(schema))
	for k := range schema {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var errs []error
	for _, fieldName := range keys {
		fieldType := schema[fieldName]
		value, exists := data[fieldName]
		if !exists {
			if _, optional := fieldType.(*OptionalType); optional {
				continue
			}
			errs = append(errs, &ValidationError{
				Key:    fieldName,
				Reason: "required",
			})
			continue
		}

		// An explicit null counts as absent for optional fields.
		if value == nil {
			if _, optional := fieldType.(*OptionalType); optional {
				continue
			}
		}

		if err := fieldType.Validate(value); err != nil {
			errs = append(errs, &ValidationError{
				Key:    fieldName,
				Reason: err.Error(),
				Value:  value,
			})
		}
	}

	if len(errs) > 0 {
		return &AggregateError{Errors: errs}
	}
	return nil
}
