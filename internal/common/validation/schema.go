package validation

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// Schema is a JSON-schema document expressed as Go values.
type Schema map[string]interface{}

type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// Summary joins every error into one line, "" when valid.
func (r *ValidationResult) Summary() string {
	if r == nil || r.Valid {
		return ""
	}
	parts := make([]string, 0, len(r.Errors))
	for _, e := range r.Errors {
		parts = append(parts, fmt.Sprintf("%s: %s", e.Field, e.Message))
	}
	return strings.Join(parts, "; ")
}

// Validate checks document (any JSON-marshalable value) against schema.
// The error return is reserved for a schema that cannot be compiled.
func Validate(schema Schema, document interface{}) (*ValidationResult, error) {
	result, err := gojsonschema.Validate(
		gojsonschema.NewGoLoader(map[string]interface{}(schema)),
		gojsonschema.NewGoLoader(document),
	)
	if err != nil {
		return nil, fmt.Errorf("schema validation: %w", err)
	}
	return toResult(result), nil
}

// ValidateJSON checks a raw JSON document against schema.
func ValidateJSON(schema Schema, raw string) (*ValidationResult, error) {
	result, err := gojsonschema.Validate(
		gojsonschema.NewGoLoader(map[string]interface{}(schema)),
		gojsonschema.NewStringLoader(raw),
	)
	if err != nil {
		return nil, fmt.Errorf("schema validation: %w", err)
	}
	return toResult(result), nil
}

func toResult(result *gojsonschema.Result) *ValidationResult {
	out := &ValidationResult{Valid: result.Valid()}
	for _, e := range result.Errors() {
		out.Errors = append(out.Errors, ValidationError{
			Field:   e.Field(),
			Message: e.Description(),
			Code:    strings.ToUpper(e.Type()),
		})
	}
	return out
}

// String builds a string property, optionally constrained to values.
func String(values ...string) map[string]interface{} {
	p := map[string]interface{}{"type": "string"}
	if len(values) > 0 {
		enum := make([]interface{}, len(values))
		for i, v := range values {
			enum[i] = v
		}
		p["enum"] = enum
	}
	return p
}

// NonEmptyString builds a string property that rejects "" and whitespace.
func NonEmptyString() map[string]interface{} {
	return map[string]interface{}{"type": "string", "minLength": 1, "pattern": `\S`}
}

// Integer builds an integer property with an inclusive lower bound.
func Integer(minimum int) map[string]interface{} {
	return map[string]interface{}{"type": "integer", "minimum": minimum}
}

// Object builds an object schema.
func Object(properties map[string]interface{}, required ...string) Schema {
	s := Schema{"type": "object", "properties": properties}
	if len(required) > 0 {
		req := make([]interface{}, len(required))
		for i, r := range required {
			req[i] = r
		}
		s["required"] = req
	}
	return s
}
