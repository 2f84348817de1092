// Package input turns raw console lines into typed record values.
//
// Every value the user types goes through an explicit parser; nothing
// is ever evaluated. A malformed number is a recoverable ErrInvalidInput,
// and field values are checked against the schema's validator rules.
package input

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/aanand-mishra/records/internal/types"
)

// ErrInvalidInput marks text that could not be parsed into the expected type.
var ErrInvalidInput = errors.New("invalid input")

var validate = validator.New()

// ParseInt parses a base-10 integer, ignoring surrounding whitespace.
func ParseInt(raw string) (int64, error) {
	s := strings.TrimSpace(raw)
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a whole number", ErrInvalidInput, s)
	}
	return n, nil
}

// ParseField converts raw into the Go type for field's Kind.
func ParseField(field types.Field, raw string) (any, error) {
	switch field.Kind {
	case types.KindInt:
		s := strings.TrimSpace(raw)
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %s must be a whole number, got %q", ErrInvalidInput, field.Label, s)
		}
		return n, nil
	default:
		return strings.TrimSpace(raw), nil
	}
}

// FieldError holds the validator failures for one field.
type FieldError struct {
	Field string
	Errs  validator.ValidationErrors
}

// ValidationError lists failing fields in schema order.
type ValidationError []FieldError

func (v ValidationError) Error() string {
	names := make([]string, 0, len(v))
	for _, fe := range v {
		names = append(names, fe.Field)
	}
	return "validation failed: " + strings.Join(names, ", ")
}

// Validate checks fields against each schema field's Rules tag.
// Fields without rules, or absent from the map, are not checked.
func Validate(schema types.Schema, fields map[string]any) error {
	rules := make(map[string]any)
	data := make(map[string]any)
	for _, f := range schema.Fields {
		v, ok := fields[f.Name]
		if !ok || f.Rules == "" {
			continue
		}
		rules[f.Name] = f.Rules
		data[f.Name] = v
	}

	failed := validate.ValidateMap(data, rules)
	if len(failed) == 0 {
		return nil
	}

	var verr ValidationError
	for _, f := range schema.Fields {
		raw, ok := failed[f.Name]
		if !ok {
			continue
		}
		var errs validator.ValidationErrors
		if err, isErr := raw.(error); isErr && errors.As(err, &errs) {
			verr = append(verr, FieldError{Field: f.Name, Errs: errs})
		}
	}
	if len(verr) == 0 {
		return nil
	}
	return verr
}
