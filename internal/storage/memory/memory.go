// Package memory provides an in-process implementation of the
// storage.Storage interface backed by a B-tree.
//
// Records live in a github.com/google/btree tree ordered by an
// insertion sequence number, so ascending the tree yields insertion
// order. A map from record key to sequence number gives O(1) lookup of
// a record's position.
//
// Reads iterate over tree.Clone(), a lazy copy-on-write snapshot: the
// store can be mutated while a sequence is being ranged over without
// disturbing it.
package memory

import (
	"fmt"
	"iter"

	"github.com/google/btree"

	"github.com/aanand-mishra/records/internal/storage"
	"github.com/aanand-mishra/records/internal/types"
)

// DefaultDegree is used when New is given a degree below 2.
const DefaultDegree = 32

type entry struct {
	seq uint64
	rec types.Record
}

func lessBySeq(a, b entry) bool {
	return a.seq < b.seq
}

// Memory is not safe for concurrent use; the console owns it exclusively.
type Memory struct {
	schema types.Schema
	tree   *btree.BTreeG[entry]
	index  map[int64]uint64
	next   uint64
}

// New returns an empty store for records of the given schema.
func New(schema types.Schema, degree int) *Memory {
	if degree < 2 {
		degree = DefaultDegree
	}
	return &Memory{
		schema: schema,
		tree:   btree.NewG(degree, lessBySeq),
		index:  make(map[int64]uint64),
	}
}

// Create stores a copy of rec. A new key is appended after every
// existing record; an existing key keeps its position.
func (m *Memory) Create(rec types.Record) error {
	if err := m.schema.Check(rec.Fields, true); err != nil {
		return fmt.Errorf("memory.Create: %w", err)
	}

	seq, ok := m.index[rec.Key]
	if !ok {
		seq = m.next
		m.next++
		m.index[rec.Key] = seq
	}

	// Entries are never mutated in place; snapshots still hold the old one.
	m.tree.ReplaceOrInsert(entry{seq: seq, rec: rec.Clone()})
	return nil
}

// Get returns a copy of the record at key, or ErrNotFound.
func (m *Memory) Get(key int64) (types.Record, error) {
	e, ok := m.lookup(key)
	if !ok {
		return types.Record{}, fmt.Errorf("%w: %s %d", storage.ErrNotFound, m.schema.KeyLabel, key)
	}
	return e.rec.Clone(), nil
}

// All ranges over a snapshot taken when iteration starts, so writes
// made during the loop are not observed by it.
func (m *Memory) All() iter.Seq2[types.Record, error] {
	return func(yield func(types.Record, error) bool) {
		snapshot := m.tree.Clone()
		snapshot.Ascend(func(e entry) bool {
			return yield(e.rec.Clone(), nil)
		})
	}
}

// Update merges fields into the record at key.
func (m *Memory) Update(key int64, fields map[string]any) (bool, error) {
	e, ok := m.lookup(key)
	if !ok {
		return false, nil
	}
	if err := m.schema.Check(fields, false); err != nil {
		return false, fmt.Errorf("memory.Update: %w", err)
	}

	rec := e.rec.Clone()
	for name, v := range fields {
		rec.Fields[name] = v
	}
	m.tree.ReplaceOrInsert(entry{seq: e.seq, rec: rec})
	return true, nil
}

// Delete removes the record at key and returns its display name.
func (m *Memory) Delete(key int64) (string, error) {
	e, ok := m.lookup(key)
	if !ok {
		return "", fmt.Errorf("%w: %s %d", storage.ErrNotFound, m.schema.KeyLabel, key)
	}

	m.tree.Delete(e)
	delete(m.index, key)
	return m.schema.DisplayName(e.rec), nil
}

// Len reports the number of stored records.
func (m *Memory) Len() (int, error) {
	return m.tree.Len(), nil
}

// Close is a no-op.
func (m *Memory) Close() error {
	return nil
}

func (m *Memory) lookup(key int64) (entry, bool) {
	seq, ok := m.index[key]
	if !ok {
		return entry{}, false
	}
	return m.tree.Get(entry{seq: seq})
}
