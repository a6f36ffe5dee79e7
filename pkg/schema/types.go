package schema

import (
	"fmt"
	"reflect"
)

// Type defines the contract for field validation.
type Type interface {
	// Name returns the human-readable name of the type (e.g., "string", "int").
	Name() string
	// Validate checks if a value conforms to this type.
	Validate(value any) error
}

// StringType validates string values.
type StringType struct{}

func (t *StringType) Name() string { return "string" }

func (t *StringType) Validate(value any) error {
	if _, ok := value.(string); !ok {
		return fmt.Errorf("expected string, got %T", value)
	}
	return nil
}

// IntType validates integer values.
type IntType struct{}

func (t *IntType) Name() string { return "int" }

func (t *IntType) Validate(value any) error {
	switch v := value.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return nil
	case float32:
		if v == float32(int64(v)) {
			return nil
		}
		return fmt.Errorf("expected int, got float (not a whole number)")
	case float64:
		// JSON numbers decode as float64
		if v == float64(int64(v)) {
			return nil
		}
		return fmt.Errorf("expected int, got float (not a whole number)")
	default:
		return fmt.Errorf("expected int, got %T", value)
	}
}

// FloatType validates floating-point values.
type FloatType struct{}

func (t *FloatType) Name() string { return "float" }

func (t *FloatType) Validate(value any) error {
	switch value.(type) {
	case float32, float64, int, int8, int16, int32, int64:
		return nil
	default:
		return fmt.Errorf("expected float, got %T", value)
	}
}

// BoolType validates boolean values.
type BoolType struct{}

func (t *BoolType) Name() string { return "bool" }

func (t *BoolType) Validate(value any) error {
	if _, ok := value.(bool); !ok {
		return fmt.Errorf("expected bool, got %T", value)
	}
	return nil
}

// SliceType validates slices of a specific element type.
// A non-zero length constrains the number of elements.
type SliceType struct {
	elemType Type
	length   int
}

func (t *SliceType) Name() string {
	if t.length > 0 {
		return fmt.Sprintf("[%d]%s", t.length, t.elemType.Name())
	}
	return fmt.Sprintf("[%s]", t.elemType.Name())
}

func (t *SliceType) Validate(value any) error {
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return fmt.Errorf("expected slice, got %T", value)
	}
	if t.length > 0 && rv.Len() != t.length {
		return fmt.Errorf("expected %d elements, got %d", t.length, rv.Len())
	}

	for i := 0; i < rv.Len(); i++ {
		elem := rv.Index(i).Interface()
		if err := t.elemType.Validate(elem); err != nil {
			return fmt.Errorf("element %d: %w", i, err)
		}
	}
	return nil
}

// MapType validates string-keyed maps with arbitrary values.
type MapType struct{}

func (t *MapType) Name() string { return "map" }

func (t *MapType) Validate(value any) error {
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Map {
		return fmt.Errorf("expected map, got %T", value)
	}
	if rv.Type().Key().Kind() != reflect.String && rv.Type().Key().Kind() != reflect.Interface {
		return fmt.Errorf("expected string keys, got %s", rv.Type().Key())
	}
	return nil
}

// OptionalType marks a field that may be absent.
type OptionalType struct {
	Type
}

func (t *OptionalType) Name() string { return t.Type.Name() + "?" }

// CustomType applies a user-defined validation function.
type CustomType struct {
	name     string
	validate func(any) error
}

func (t *CustomType) Name() string { return t.name }

func (t *CustomType) Validate(value any) error {
	return t.validate(value)
}

// String creates a string type validator.
func String() Type { return &StringType{} }

// Int creates an integer type validator.
func Int() Type { return &IntType{} }

// Float creates a float type validator.
func Float() Type { return &FloatType{} }

// Bool creates a boolean type validator.
func Bool() Type { return &BoolType{} }

// Map creates a validator for string-keyed maps.
func Map() Type { return &MapType{} }

// Slice creates a slice type validator for elements of the given type.
func Slice(elemType Type) Type {
	return &SliceType{elemType: elemType}
}

// Pair creates a validator for exactly two elements of the given type, e.g. [width, height].
func Pair(elemType Type) Type {
	return &SliceType{elemType: elemType, length: 2}
}

// Optional allows the field to be absent. A present value must still match t.
func Optional(t Type) Type {
	return &OptionalType{Type: t}
}

// Custom creates a custom type validator with a user-defined function.
func Custom(name string, validate func(any) error) Type {
	return &CustomType{name: name, validate: validate}
}
