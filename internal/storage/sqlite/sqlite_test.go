package sqlite

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aanand-mishra/records/internal/config"
	"github.com/aanand-mishra/records/internal/schemas"
	"github.com/aanand-mishra/records/internal/storage"
	"github.com/aanand-mishra/records/internal/storage/storagetest"
	"github.com/aanand-mishra/records/internal/types"
)

func memoryConfig() *config.Config {
	return &config.Config{Storage: config.Storage{Backend: "sqlite", Path: ":memory:"}}
}

func TestSQLite(t *testing.T) {
	storagetest.Run(t, func(t *testing.T, schema types.Schema) storage.Storage {
		s, err := New(memoryConfig(), schema)
		require.NoError(t, err)
		return s
	})
}

func TestNewIsIdempotent(t *testing.T) {
	cfg := &config.Config{Storage: config.Storage{
		Backend: "sqlite",
		Path:    filepath.Join(t.TempDir(), "records.db"),
	}}

	first, err := New(cfg, storagetest.Schema())
	require.NoError(t, err)
	require.NoError(t, first.Create(storagetest.Student(101, "Jay", 88, 20000)))
	require.NoError(t, first.Close())

	second, err := New(cfg, storagetest.Schema())
	require.NoError(t, err)
	t.Cleanup(func() { _ = second.Close() })

	got, err := second.Get(101)
	require.NoError(t, err)
	assert.Equal(t, storagetest.Student(101, "Jay", 88, 20000), got)
}

func TestUpdateWithoutFields(t *testing.T) {
	s, err := New(memoryConfig(), storagetest.Schema())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.Create(storagetest.Student(101, "Jay", 88, 20000)))

	ok, err := s.Update(101, nil)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.Update(102, nil)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSchemasShareDatabaseFile(t *testing.T) {
	cfg := &config.Config{Storage: config.Storage{
		Backend: "sqlite",
		Path:    filepath.Join(t.TempDir(), "records.db"),
	}}

	for _, name := range []string{"student", "marksheet", "employee"} {
		schema, seed, err := schemas.Lookup(name)
		require.NoError(t, err)

		s, err := New(cfg, schema)
		require.NoError(t, err, name)
		require.NoError(t, storage.Seed(s, seed), name)

		n, err := s.Len()
		require.NoError(t, err)
		assert.Equal(t, len(seed), n, name)
		require.NoError(t, s.Close())
	}

	// Reopening the first schema finds its rows untouched.
	s, err := New(cfg, schemas.Student())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	got, err := s.Get(101)
	require.NoError(t, err)
	assert.Equal(t, int64(88), got.Fields["marks"])
}
