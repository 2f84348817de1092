// Package schemas defines the built-in record schemas and the data each
// one is seeded with at startup.
package schemas

import (
	"fmt"
	"sort"

	"github.com/aanand-mishra/records/internal/types"
)

// Student is the default schema: one overall mark per student.
func Student() types.Schema {
	return types.Schema{
		Name:         "student",
		Title:        "Student",
		Table:        "students",
		KeyField:     "roll",
		KeyLabel:     "roll number",
		DisplayField: "name",
		Fields: []types.Field{
			{Name: "name", Label: "name", Kind: types.KindString, Rules: "required"},
			{Name: "marks", Label: "marks", Kind: types.KindInt, Rules: "min=0,max=100"},
			{Name: "fees", Label: "fees paid", Kind: types.KindInt, Rules: "min=0"},
		},
		Filters: []types.Filter{
			{Label: "fees", Fields: []string{"fees"}},
			{Label: "marks", Fields: []string{"marks"}},
		},
	}
}

// Marksheet is the student schema with one mark per subject.
func Marksheet() types.Schema {
	return types.Schema{
		Name:         "student",
		Title:        "Student",
		Table:        "marksheets",
		KeyField:     "roll",
		KeyLabel:     "roll number",
		DisplayField: "name",
		Fields: []types.Field{
			{Name: "name", Label: "name", Kind: types.KindString, Rules: "required"},
			{Name: "marks1", Label: "marks1", Kind: types.KindInt, Rules: "min=0,max=100"},
			{Name: "marks2", Label: "marks2", Kind: types.KindInt, Rules: "min=0,max=100"},
			{Name: "marks3", Label: "marks3", Kind: types.KindInt, Rules: "min=0,max=100"},
			{Name: "fees", Label: "fees paid", Kind: types.KindInt, Rules: "min=0"},
		},
		Filters: []types.Filter{
			{Label: "fees", Fields: []string{"fees"}},
			{Label: "marks", Fields: []string{"marks1", "marks2", "marks3"}},
		},
	}
}

// Employee keys staff by employee id.
func Employee() types.Schema {
	return types.Schema{
		Name:         "employee",
		Title:        "Employee",
		Table:        "employees",
		KeyField:     "id",
		KeyLabel:     "employee id",
		DisplayField: "name",
		Fields: []types.Field{
			{Name: "name", Label: "name", Kind: types.KindString, Rules: "required"},
			{Name: "address", Label: "address", Kind: types.KindString, Rules: "required"},
			{Name: "salary", Label: "salary", Kind: types.KindInt, Rules: "min=0"},
		},
		Filters: []types.Filter{
			{Label: "salary", Fields: []string{"salary"}},
		},
	}
}

type builtin struct {
	schema func() types.Schema
	seed   func() []types.Record
}

var builtins = map[string]builtin{
	"student":   {Student, studentSeed},
	"marksheet": {Marksheet, marksheetSeed},
	"employee":  {Employee, employeeSeed},
}

// Names lists the built-in schema names, sorted.
func Names() []string {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Lookup returns the named schema and its seed records.
func Lookup(name string) (types.Schema, []types.Record, error) {
	b, ok := builtins[name]
	if !ok {
		return types.Schema{}, nil, fmt.Errorf("unknown schema %q (available: %v)", name, Names())
	}
	return b.schema(), b.seed(), nil
}

func studentSeed() []types.Record {
	row := func(roll int64, name string, marks, fees int64) types.Record {
		return types.Record{Key: roll, Fields: map[string]any{
			"name": name, "marks": marks, "fees": fees,
		}}
	}
	return []types.Record{
		row(101, "Jay", 88, 20000),
		row(102, "Tom", 80, 15000),
		row(103, "Devid", 77, 25000),
		row(104, "Abhi", 83, 28000),
		row(105, "Chandu", 84, 20000),
	}
}

func marksheetSeed() []types.Record {
	row := func(roll int64, name string, m1, m2, m3, fees int64) types.Record {
		return types.Record{Key: roll, Fields: map[string]any{
			"name": name, "marks1": m1, "marks2": m2, "marks3": m3, "fees": fees,
		}}
	}
	return []types.Record{
		row(101, "Jay", 88, 74, 84, 20000),
		row(102, "Tom", 80, 94, 84, 15000),
		row(103, "Devid", 77, 84, 64, 25000),
		row(104, "Abhi", 83, 56, 74, 28000),
		row(105, "Chandu", 84, 85, 76, 20000),
	}
}

func employeeSeed() []types.Record {
	return []types.Record{
		{Key: 101, Fields: map[string]any{"name": "Jay", "address": "Talegoan", "salary": int64(20000)}},
	}
}
