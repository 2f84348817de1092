// Package types holds all shared data structures (models) used across
// the application. Keeping them in one place prevents import cycles:
// the console, storage backends, and input parsing can all import types
// without depending on each other.
package types

import (
	"errors"
	"fmt"
)

// Schema errors. Storage backends return these (wrapped with the field
// name) when a record does not match its schema.
var (
	ErrUnknownField = errors.New("unknown field")
	ErrMissingField = errors.New("missing field")
	ErrFieldType    = errors.New("wrong field type")
)

// Kind is the scalar type of a record field.
type Kind int

const (
	KindString Kind = iota
	KindInt
)

// String returns the lowercase kind name used in error messages.
func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInt:
		return "int"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Field describes one attribute of a record.
//
// Rules is a go-playground/validator tag ("required", "min=0", ...)
// applied to user input before it reaches the store.
type Field struct {
	Name  string
	Label string
	Kind  Kind
	Rules string
}

// Filter is a named threshold query: a record matches when every listed
// numeric field is >= the threshold the user enters for it.
type Filter struct {
	Label  string
	Fields []string
}

// Schema describes one kind of record (student, employee, ...).
type Schema struct {
	// Name is the lowercase noun used in messages: "student".
	Name string
	// Title is the capitalised form: "Student".
	Title string
	// Table names the SQL table holding these records. Schemas that share
	// a Name must not share a Table.
	Table string

	// KeyField / KeyLabel name the identifying column, e.g. roll / "roll number".
	KeyField string
	KeyLabel string

	// DisplayField is the field reported back after a delete.
	DisplayField string

	Fields  []Field
	Filters []Filter
}

// TableName returns Table, or the plural of Name when Table is unset.
func (s Schema) TableName() string {
	if s.Table != "" {
		return s.Table
	}
	return s.Name + "s"
}

// Field looks up an attribute field by name.
func (s Schema) Field(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// FieldNames returns the attribute field names in schema order.
func (s Schema) FieldNames() []string {
	names := make([]string, 0, len(s.Fields))
	for _, f := range s.Fields {
		names = append(names, f.Name)
	}
	return names
}

// Check verifies that every entry in fields is a known field holding a
// value of the right kind. When complete is true every schema field must
// also be present.
func (s Schema) Check(fields map[string]any, complete bool) error {
	for name, v := range fields {
		f, ok := s.Field(name)
		if !ok {
			return fmt.Errorf("%w: %s", ErrUnknownField, name)
		}
		switch f.Kind {
		case KindInt:
			if _, ok := v.(int64); !ok {
				return fmt.Errorf("%w: %s must be %s, got %T", ErrFieldType, name, f.Kind, v)
			}
		case KindString:
			if _, ok := v.(string); !ok {
				return fmt.Errorf("%w: %s must be %s, got %T", ErrFieldType, name, f.Kind, v)
			}
		}
	}

	if complete {
		for _, f := range s.Fields {
			if _, ok := fields[f.Name]; !ok {
				return fmt.Errorf("%w: %s", ErrMissingField, f.Name)
			}
		}
	}
	return nil
}

// DisplayName returns the value of the display field, or the key when the
// display field is empty.
func (s Schema) DisplayName(r Record) string {
	if v, ok := r.Fields[s.DisplayField]; ok {
		if name := fmt.Sprint(v); name != "" {
			return name
		}
	}
	return fmt.Sprint(r.Key)
}

// Record is one entity in the store: its key plus attribute values.
// Values are string or int64 depending on the field's Kind.
type Record struct {
	Key    int64
	Fields map[string]any
}

// Clone returns a copy whose Fields map can be mutated independently.
func (r Record) Clone() Record {
	fields := make(map[string]any, len(r.Fields))
	for k, v := range r.Fields {
		fields[k] = v
	}
	return Record{Key: r.Key, Fields: fields}
}

// Int returns an int field value.
func (r Record) Int(name string) (int64, bool) {
	v, ok := r.Fields[name].(int64)
	return v, ok
}

// String returns a string field value.
func (r Record) String(name string) (string, bool) {
	v, ok := r.Fields[name].(string)
	return v, ok
}

// Predicate selects records for a filtered read.
type Predicate func(Record) bool

// Threshold is a lower bound on one numeric field.
type Threshold struct {
	Field string
	Min   int64
}

// AtLeast matches records whose fields are all >= their thresholds.
// A record missing a field (or holding a non-int value) never matches.
func AtLeast(thresholds ...Threshold) Predicate {
	return func(r Record) bool {
		for _, t := range thresholds {
			v, ok := r.Int(t.Field)
			if !ok || v < t.Min {
				return false
			}
		}
		return true
	}
}
