// Package storage defines the Storage interface (the RecordStore
// contract that every backend must satisfy) plus the read helpers
// (filtering, sorting, seeding) built on top of it.
//
// The console only knows about this interface. Switching from the
// B-tree backend to SQLite is a config change, not a code change.
package storage

import (
	"cmp"
	"errors"
	"fmt"
	"iter"
	"slices"

	"github.com/aanand-mishra/records/internal/types"
)

// ErrNotFound is returned (wrapped) when an operation addresses a key
// that is not in the store.
var ErrNotFound = errors.New("record not found")

// Storage is the RecordStore contract.
//
// Records are kept in insertion order. Re-creating an existing key
// replaces its fields but keeps its original position.
type Storage interface {
	// Create inserts rec at rec.Key, overwriting any record already there.
	// The record must carry every schema field.
	Create(rec types.Record) error

	// Get returns the record stored at key, or ErrNotFound.
	Get(key int64) (types.Record, error)

	// All returns a lazy sequence of every record in insertion order.
	// The sequence can be ranged over any number of times.
	All() iter.Seq2[types.Record, error]

	// Update overwrites the named fields of the record at key. It reports
	// false, with no error, when key is absent.
	Update(key int64, fields map[string]any) (bool, error)

	// Delete removes the record at key and returns its display name, or
	// ErrNotFound when key is absent.
	Delete(key int64) (string, error)

	// Len reports the number of records.
	Len() (int, error)

	Close() error
}

// Filter returns the records of s matching pred, lazily and in the same
// relative order as s.All().
func Filter(s Storage, pred types.Predicate) iter.Seq2[types.Record, error] {
	return func(yield func(types.Record, error) bool) {
		for rec, err := range s.All() {
			if err != nil {
				yield(types.Record{}, err)
				return
			}
			if pred(rec) && !yield(rec, nil) {
				return
			}
		}
	}
}

// Collect drains seq into a slice, stopping at the first error.
func Collect(seq iter.Seq2[types.Record, error]) ([]types.Record, error) {
	records := make([]types.Record, 0)
	for rec, err := range seq {
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

// Sorted returns every record ordered by the given field. Records with
// equal values keep their insertion order.
func Sorted(s Storage, schema types.Schema, field string, desc bool) ([]types.Record, error) {
	f, ok := schema.Field(field)
	if !ok {
		return nil, fmt.Errorf("%w: %s", types.ErrUnknownField, field)
	}

	records, err := Collect(s.All())
	if err != nil {
		return nil, err
	}

	compare := func(a, b types.Record) int {
		var c int
		switch f.Kind {
		case types.KindInt:
			x, _ := a.Int(field)
			y, _ := b.Int(field)
			c = cmp.Compare(x, y)
		default:
			x, _ := a.String(field)
			y, _ := b.String(field)
			c = cmp.Compare(x, y)
		}
		if desc {
			return -c
		}
		return c
	}

	slices.SortStableFunc(records, compare)
	return records, nil
}

// Seed creates every record in order.
func Seed(s Storage, records []types.Record) error {
	for _, rec := range records {
		if err := s.Create(rec); err != nil {
			return fmt.Errorf("seed record %d: %w", rec.Key, err)
		}
	}
	return nil
}
