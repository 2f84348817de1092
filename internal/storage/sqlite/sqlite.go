// Package sqlite provides a SQLite-backed implementation of the
// storage.Storage interface using Go's standard database/sql package.
//
// The table is generated from the record schema: one column per field,
// a UNIQUE record_key column, and a seq column whose AUTOINCREMENT value
// records insertion order. The default data source is ":memory:", so the
// database lives exactly as long as the process.
//
// The blank import below registers the sqlite3 driver with database/sql.
package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"iter"
	"strings"

	"github.com/aanand-mishra/records/internal/config"
	"github.com/aanand-mishra/records/internal/storage"
	"github.com/aanand-mishra/records/internal/types"

	// Blank import: side-effect only (registers the "sqlite3" driver).
	_ "github.com/mattn/go-sqlite3"
)

// SQLite is the concrete implementation of storage.Storage.
type SQLite struct {
	Db *sql.DB

	schema types.Schema
	table  string
	// columns is the quoted SELECT list: record_key then schema fields.
	columns string
}

// New opens the database at cfg.Storage.Path, creates the table for
// schema if it does not already exist, and returns a ready-to-use *SQLite.
func New(cfg *config.Config, schema types.Schema) (*SQLite, error) {
	db, err := sql.Open("sqlite3", cfg.Storage.Path)
	if err != nil {
		return nil, fmt.Errorf("sqlite.New: open db: %w", err)
	}

	// Every connection to ":memory:" is a separate database, so the pool
	// is pinned to one connection. A sequence from All must therefore be
	// fully consumed (or abandoned) before the next call.
	db.SetMaxOpenConns(1)

	s := &SQLite{
		Db:     db,
		schema: schema,
		table:  quote(schema.TableName()),
	}

	cols := []string{quote("record_key")}
	defs := []string{
		quote("seq") + " INTEGER PRIMARY KEY AUTOINCREMENT",
		quote("record_key") + " INTEGER NOT NULL UNIQUE",
	}
	for _, f := range schema.Fields {
		cols = append(cols, quote(f.Name))
		defs = append(defs, quote(f.Name)+" "+columnType(f.Kind)+" NOT NULL")
	}
	s.columns = strings.Join(cols, ", ")

	// CREATE TABLE IF NOT EXISTS is idempotent and safe to run on every startup.
	_, err = db.Exec(fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n\t%s\n)", s.table, strings.Join(defs, ",\n\t")))
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite.New: create table: %w", err)
	}

	return s, nil
}

// Create upserts a row. On conflict the existing row keeps its seq,
// which preserves the record's original insertion position.
func (s *SQLite) Create(rec types.Record) error {
	if err := s.schema.Check(rec.Fields, true); err != nil {
		return fmt.Errorf("Create: %w", err)
	}

	placeholders := make([]string, 0, len(s.schema.Fields)+1)
	updates := make([]string, 0, len(s.schema.Fields))
	args := make([]any, 0, len(s.schema.Fields)+1)

	placeholders = append(placeholders, "?")
	args = append(args, rec.Key)
	for _, f := range s.schema.Fields {
		placeholders = append(placeholders, "?")
		updates = append(updates, fmt.Sprintf("%s = excluded.%s", quote(f.Name), quote(f.Name)))
		args = append(args, rec.Fields[f.Name])
	}

	query := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s) ON CONFLICT(%s) DO UPDATE SET %s",
		s.table, s.columns, strings.Join(placeholders, ", "), quote("record_key"), strings.Join(updates, ", "),
	)

	stmt, err := s.Db.Prepare(query)
	if err != nil {
		return fmt.Errorf("Create: prepare: %w", err)
	}
	defer stmt.Close()

	if _, err := stmt.Exec(args...); err != nil {
		return fmt.Errorf("Create: exec: %w", err)
	}
	return nil
}

// Get returns the row stored at key, or ErrNotFound.
func (s *SQLite) Get(key int64) (types.Record, error) {
	stmt, err := s.Db.Prepare(fmt.Sprintf(
		"SELECT %s FROM %s WHERE %s = ? LIMIT 1", s.columns, s.table, quote("record_key"),
	))
	if err != nil {
		return types.Record{}, fmt.Errorf("Get: prepare: %w", err)
	}
	defer stmt.Close()

	rec, err := s.scan(stmt.QueryRow(key))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Record{}, fmt.Errorf("%w: %s %d", storage.ErrNotFound, s.schema.KeyLabel, key)
		}
		return types.Record{}, fmt.Errorf("Get: scan: %w", err)
	}
	return rec, nil
}

// All streams rows ordered by seq. The cursor is opened when ranging
// starts and closed when the loop ends, so each range re-runs the query.
func (s *SQLite) All() iter.Seq2[types.Record, error] {
	return func(yield func(types.Record, error) bool) {
		rows, err := s.Db.Query(fmt.Sprintf(
			"SELECT %s FROM %s ORDER BY %s", s.columns, s.table, quote("seq"),
		))
		if err != nil {
			yield(types.Record{}, fmt.Errorf("All: query: %w", err))
			return
		}
		defer rows.Close()

		for rows.Next() {
			rec, err := s.scan(rows)
			if err != nil {
				yield(types.Record{}, fmt.Errorf("All: scan row: %w", err))
				return
			}
			if !yield(rec, nil) {
				return
			}
		}

		if err := rows.Err(); err != nil {
			yield(types.Record{}, fmt.Errorf("All: rows iteration: %w", err))
		}
	}
}

// Update sets only the named fields. Zero affected rows means the key
// was absent, which is reported as (false, nil).
func (s *SQLite) Update(key int64, fields map[string]any) (bool, error) {
	if err := s.schema.Check(fields, false); err != nil {
		return false, fmt.Errorf("Update: %w", err)
	}
	if len(fields) == 0 {
		_, err := s.Get(key)
		if errors.Is(err, storage.ErrNotFound) {
			return false, nil
		}
		return err == nil, err
	}

	// Iterate in schema order so the statement text is deterministic.
	sets := make([]string, 0, len(fields))
	args := make([]any, 0, len(fields)+1)
	for _, f := range s.schema.Fields {
		v, ok := fields[f.Name]
		if !ok {
			continue
		}
		sets = append(sets, quote(f.Name)+" = ?")
		args = append(args, v)
	}
	args = append(args, key)

	stmt, err := s.Db.Prepare(fmt.Sprintf(
		"UPDATE %s SET %s WHERE %s = ?", s.table, strings.Join(sets, ", "), quote("record_key"),
	))
	if err != nil {
		return false, fmt.Errorf("Update: prepare: %w", err)
	}
	defer stmt.Close()

	result, err := stmt.Exec(args...)
	if err != nil {
		return false, fmt.Errorf("Update: exec: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("Update: rows affected: %w", err)
	}
	return n > 0, nil
}

// Delete removes the row at key and returns the display name it held.
func (s *SQLite) Delete(key int64) (string, error) {
	rec, err := s.Get(key)
	if err != nil {
		return "", err
	}

	stmt, err := s.Db.Prepare(fmt.Sprintf("DELETE FROM %s WHERE %s = ?", s.table, quote("record_key")))
	if err != nil {
		return "", fmt.Errorf("Delete: prepare: %w", err)
	}
	defer stmt.Close()

	if _, err := stmt.Exec(key); err != nil {
		return "", fmt.Errorf("Delete: exec: %w", err)
	}
	return s.schema.DisplayName(rec), nil
}

// Len counts the rows in the table.
func (s *SQLite) Len() (int, error) {
	var n int
	if err := s.Db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", s.table)).Scan(&n); err != nil {
		return 0, fmt.Errorf("Len: %w", err)
	}
	return n, nil
}

// Close closes the underlying database.
func (s *SQLite) Close() error {
	return s.Db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

// scan reads one row in s.columns order into a Record.
func (s *SQLite) scan(row scanner) (types.Record, error) {
	var key int64
	dest := make([]any, 0, len(s.schema.Fields)+1)
	dest = append(dest, &key)

	values := make([]any, len(s.schema.Fields))
	for i, f := range s.schema.Fields {
		switch f.Kind {
		case types.KindInt:
			values[i] = new(int64)
		default:
			values[i] = new(string)
		}
		dest = append(dest, values[i])
	}

	if err := row.Scan(dest...); err != nil {
		return types.Record{}, err
	}

	fields := make(map[string]any, len(s.schema.Fields))
	for i, f := range s.schema.Fields {
		switch v := values[i].(type) {
		case *int64:
			fields[f.Name] = *v
		case *string:
			fields[f.Name] = *v
		}
	}
	return types.Record{Key: key, Fields: fields}, nil
}

func columnType(k types.Kind) string {
	if k == types.KindInt {
		return "INTEGER"
	}
	return "TEXT"
}

func quote(ident string) string {
	return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"`
}
