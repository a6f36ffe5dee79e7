// Package schema type-checks loosely typed parameter objects.
//
// Hosts hand trial parameters around as map[string]any (decoded from JSON,
// YAML or TOML). A Schema maps parameter names to expected types so that a
// wrongly typed value is reported by name before any decoding happens:
//
//	params := schema.Schema{
//	    "stimuli":      schema.Slice(schema.String()),
//	    "timing_cycle": schema.Optional(schema.Int()),
//	    "canvas_size":  schema.Optional(schema.Pair(schema.Int())),
//	}
//
//	if err := schema.Validate(params, data); err != nil {
//	    for _, fe := range schema.ValidationErrors(err) {
//	        // ...
//	    }
//	}
//
// Fields wrapped in Optional may be absent; every other field is required.
// Keys present in data but unknown to the schema are ignored.
//
// The package has no dependencies beyond the standard library.
package schema
