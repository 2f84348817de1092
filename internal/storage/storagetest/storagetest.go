// Package storagetest is a conformance suite for storage.Storage
// implementations. Each backend's tests call Run with a constructor.
package storagetest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aanand-mishra/records/internal/storage"
	"github.com/aanand-mishra/records/internal/types"
)

// Factory returns an empty store for schema. The suite closes it.
type Factory func(t *testing.T, schema types.Schema) storage.Storage

// Schema is the schema the suite stores records under.
func Schema() types.Schema {
	return types.Schema{
		Name:         "student",
		Title:        "Student",
		KeyField:     "roll",
		KeyLabel:     "roll number",
		DisplayField: "name",
		Fields: []types.Field{
			{Name: "name", Label: "name", Kind: types.KindString},
			{Name: "marks", Label: "marks", Kind: types.KindInt},
			{Name: "fees", Label: "fees", Kind: types.KindInt},
		},
	}
}

// Student builds a record of Schema().
func Student(roll int64, name string, marks, fees int64) types.Record {
	return types.Record{Key: roll, Fields: map[string]any{
		"name": name, "marks": marks, "fees": fees,
	}}
}

func seeded(t *testing.T, newStore Factory) storage.Storage {
	t.Helper()
	s := newStore(t, Schema())
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, storage.Seed(s, []types.Record{
		Student(101, "Jay", 88, 20000),
		Student(102, "Tom", 80, 15000),
		Student(103, "Devid", 77, 25000),
	}))
	return s
}

func keys(t *testing.T, s storage.Storage) []int64 {
	t.Helper()
	records, err := storage.Collect(s.All())
	require.NoError(t, err)

	out := make([]int64, 0, len(records))
	for _, r := range records {
		out = append(out, r.Key)
	}
	return out
}

func length(t *testing.T, s storage.Storage) int {
	t.Helper()
	n, err := s.Len()
	require.NoError(t, err)
	return n
}

// Run exercises the full Storage contract against newStore.
func Run(t *testing.T, newStore Factory) {
	t.Run("empty store", func(t *testing.T) {
		s := newStore(t, Schema())
		t.Cleanup(func() { _ = s.Close() })

		assert.Equal(t, 0, length(t, s))
		assert.Empty(t, keys(t, s))
	})

	t.Run("create then read all", func(t *testing.T) {
		s := seeded(t, newStore)
		rec := Student(104, "Abhi", 83, 28000)
		require.NoError(t, s.Create(rec))

		all, err := storage.Collect(s.All())
		require.NoError(t, err)
		require.Len(t, all, 4)
		assert.Equal(t, rec, all[3])
		assert.Equal(t, []int64{101, 102, 103, 104}, keys(t, s))
	})

	t.Run("create on existing key overwrites in place", func(t *testing.T) {
		s := seeded(t, newStore)
		require.NoError(t, s.Create(Student(101, "Jayesh", 90, 21000)))

		got, err := s.Get(101)
		require.NoError(t, err)
		assert.Equal(t, Student(101, "Jayesh", 90, 21000), got)
		assert.Equal(t, 3, length(t, s))
		assert.Equal(t, []int64{101, 102, 103}, keys(t, s))
	})

	t.Run("create rejects partial record", func(t *testing.T) {
		s := seeded(t, newStore)
		err := s.Create(types.Record{Key: 200, Fields: map[string]any{"name": "Half"}})
		assert.ErrorIs(t, err, types.ErrMissingField)
		assert.Equal(t, 3, length(t, s))
	})

	t.Run("read all is restartable", func(t *testing.T) {
		s := seeded(t, newStore)
		assert.Equal(t, keys(t, s), keys(t, s))
	})

	t.Run("read all stops early", func(t *testing.T) {
		s := seeded(t, newStore)
		var seen []int64
		for rec, err := range s.All() {
			require.NoError(t, err)
			seen = append(seen, rec.Key)
			if len(seen) == 2 {
				break
			}
		}
		assert.Equal(t, []int64{101, 102}, seen)
	})

	t.Run("returned records are copies", func(t *testing.T) {
		s := seeded(t, newStore)
		got, err := s.Get(101)
		require.NoError(t, err)
		got.Fields["name"] = "Changed"

		again, err := s.Get(101)
		require.NoError(t, err)
		assert.Equal(t, "Jay", again.Fields["name"])
	})

	t.Run("get missing key", func(t *testing.T) {
		s := seeded(t, newStore)
		_, err := s.Get(999)
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("update existing key", func(t *testing.T) {
		s := seeded(t, newStore)
		ok, err := s.Update(102, map[string]any{"name": "Thomas", "marks": int64(81), "fees": int64(16000)})
		require.NoError(t, err)
		assert.True(t, ok)

		got, err := s.Get(102)
		require.NoError(t, err)
		assert.Equal(t, Student(102, "Thomas", 81, 16000), got)
		assert.Equal(t, []int64{101, 102, 103}, keys(t, s))
	})

	t.Run("update overwrites only named fields", func(t *testing.T) {
		s := seeded(t, newStore)
		ok, err := s.Update(103, map[string]any{"fees": int64(1)})
		require.NoError(t, err)
		assert.True(t, ok)

		got, err := s.Get(103)
		require.NoError(t, err)
		assert.Equal(t, Student(103, "Devid", 77, 1), got)
	})

	t.Run("update missing key is a no-op", func(t *testing.T) {
		s := seeded(t, newStore)
		before, err := storage.Collect(s.All())
		require.NoError(t, err)

		ok, err := s.Update(999, map[string]any{"name": "Ghost"})
		require.NoError(t, err)
		assert.False(t, ok)

		after, err := storage.Collect(s.All())
		require.NoError(t, err)
		assert.Equal(t, before, after)
	})

	t.Run("update rejects unknown field", func(t *testing.T) {
		s := seeded(t, newStore)
		_, err := s.Update(101, map[string]any{"salary": int64(5)})
		assert.ErrorIs(t, err, types.ErrUnknownField)
	})

	t.Run("delete existing key", func(t *testing.T) {
		s := seeded(t, newStore)
		name, err := s.Delete(102)
		require.NoError(t, err)
		assert.Equal(t, "Tom", name)
		assert.Equal(t, 2, length(t, s))
		assert.Equal(t, []int64{101, 103}, keys(t, s))
	})

	t.Run("delete missing key", func(t *testing.T) {
		s := seeded(t, newStore)
		before, err := storage.Collect(s.All())
		require.NoError(t, err)

		_, err = s.Delete(999)
		assert.ErrorIs(t, err, storage.ErrNotFound)

		after, err := storage.Collect(s.All())
		require.NoError(t, err)
		assert.Equal(t, before, after)
	})

	t.Run("re-create after delete appends", func(t *testing.T) {
		s := seeded(t, newStore)
		_, err := s.Delete(101)
		require.NoError(t, err)
		require.NoError(t, s.Create(Student(101, "Jay", 88, 20000)))
		assert.Equal(t, []int64{102, 103, 101}, keys(t, s))
	})

	t.Run("filter by threshold", func(t *testing.T) {
		s := newStore(t, Schema())
		t.Cleanup(func() { _ = s.Close() })
		require.NoError(t, storage.Seed(s, []types.Record{
			Student(101, "Jay", 88, 20000),
			Student(102, "Tom", 80, 15000),
		}))

		got, err := storage.Collect(storage.Filter(s, types.AtLeast(types.Threshold{Field: "fees", Min: 20000})))
		require.NoError(t, err)
		assert.Equal(t, []types.Record{Student(101, "Jay", 88, 20000)}, got)
	})

	t.Run("filter keeps relative order", func(t *testing.T) {
		s := seeded(t, newStore)
		got, err := storage.Collect(storage.Filter(s, types.AtLeast(types.Threshold{Field: "fees", Min: 20000})))
		require.NoError(t, err)
		assert.Equal(t, []types.Record{
			Student(101, "Jay", 88, 20000),
			Student(103, "Devid", 77, 25000),
		}, got)
	})

	t.Run("sorted by field", func(t *testing.T) {
		s := seeded(t, newStore)

		asc, err := storage.Sorted(s, Schema(), "marks", false)
		require.NoError(t, err)
		assert.Equal(t, []int64{103, 102, 101}, recordKeys(asc))

		desc, err := storage.Sorted(s, Schema(), "name", true)
		require.NoError(t, err)
		assert.Equal(t, []int64{102, 101, 103}, recordKeys(desc))
	})
}

func recordKeys(records []types.Record) []int64 {
	out := make([]int64, 0, len(records))
	for _, r := range records {
		out = append(out, r.Key)
	}
	return out
}
