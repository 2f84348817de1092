package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func testSchema() Schema {
	return Schema{
		Name:         "student",
		Title:        "Student",
		KeyField:     "roll",
		KeyLabel:     "roll number",
		DisplayField: "name",
		Fields: []Field{
			{Name: "name", Label: "name", Kind: KindString},
			{Name: "fees", Label: "fees", Kind: KindInt},
		},
	}
}

func TestSchemaCheck(t *testing.T) {
	s := testSchema()

	t.Run("complete record", func(t *testing.T) {
		err := s.Check(map[string]any{"name": "Jay", "fees": int64(20000)}, true)
		assert.NoError(t, err)
	})

	t.Run("missing field", func(t *testing.T) {
		err := s.Check(map[string]any{"name": "Jay"}, true)
		assert.ErrorIs(t, err, ErrMissingField)
	})

	t.Run("partial update allowed", func(t *testing.T) {
		err := s.Check(map[string]any{"name": "Jay"}, false)
		assert.NoError(t, err)
	})

	t.Run("unknown field", func(t *testing.T) {
		err := s.Check(map[string]any{"salary": int64(1)}, false)
		assert.ErrorIs(t, err, ErrUnknownField)
	})

	t.Run("wrong kind", func(t *testing.T) {
		err := s.Check(map[string]any{"fees": "lots"}, false)
		assert.ErrorIs(t, err, ErrFieldType)
	})
}

func TestDisplayName(t *testing.T) {
	s := testSchema()
	assert.Equal(t, "Jay", s.DisplayName(Record{Key: 101, Fields: map[string]any{"name": "Jay"}}))
	assert.Equal(t, "101", s.DisplayName(Record{Key: 101, Fields: map[string]any{"name": ""}}))
}

func TestRecordClone(t *testing.T) {
	r := Record{Key: 1, Fields: map[string]any{"name": "Jay"}}
	c := r.Clone()
	c.Fields["name"] = "Tom"
	assert.Equal(t, "Jay", r.Fields["name"])
}

func TestAtLeast(t *testing.T) {
	r := Record{Key: 101, Fields: map[string]any{
		"marks1": int64(88), "marks2": int64(74), "name": "Jay",
	}}

	assert.True(t, AtLeast(Threshold{"marks1", 88})(r))
	assert.True(t, AtLeast(Threshold{"marks1", 80}, Threshold{"marks2", 70})(r))
	assert.False(t, AtLeast(Threshold{"marks1", 80}, Threshold{"marks2", 75})(r))
	assert.False(t, AtLeast(Threshold{"marks3", 0})(r), "missing field never matches")
	assert.False(t, AtLeast(Threshold{"name", 0})(r), "string field never matches")
	assert.True(t, AtLeast()(r), "no thresholds matches everything")
}

func TestTableName(t *testing.T) {
	s := testSchema()
	assert.Equal(t, "students", s.TableName())

	s.Table = "marksheets"
	assert.Equal(t, "marksheets", s.TableName())
}
