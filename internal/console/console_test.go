package console

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aanand-mishra/records/internal/schemas"
	"github.com/aanand-mishra/records/internal/storage"
	"github.com/aanand-mishra/records/internal/storage/memory"
	"github.com/aanand-mishra/records/internal/types"
)

type session struct {
	store  storage.Storage
	schema types.Schema
	out    bytes.Buffer
}

func newSession(t *testing.T, schemaName string, seed bool) *session {
	t.Helper()
	schema, records, err := schemas.Lookup(schemaName)
	require.NoError(t, err)

	s := &session{store: memory.New(schema, memory.DefaultDegree), schema: schema}
	if seed {
		require.NoError(t, storage.Seed(s.store, records))
	}
	return s
}

func (s *session) run(t *testing.T, policy DuplicatePolicy, lines ...string) string {
	t.Helper()
	in := strings.NewReader(strings.Join(lines, "\n") + "\n")
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	c := New(in, &s.out, s.store, s.schema, log, policy)
	require.NoError(t, c.Run())
	return s.out.String()
}

func (s *session) length(t *testing.T) int {
	t.Helper()
	n, err := s.store.Len()
	require.NoError(t, err)
	return n
}

func cell(v string) string {
	return "|" + center(v) + "|"
}

func TestCenter(t *testing.T) {
	assert.Equal(t, "  roll number  ", center("roll number"))
	assert.Equal(t, "      Jay      ", center("Jay"))
	assert.Equal(t, "     20000     ", center("20000"))
	assert.Equal(t, "      88       ", center("88"))
	assert.Equal(t, "a-very-long-name-here", center("a-very-long-name-here"))
	assert.Equal(t, 65, ruleWidth(4))
}

func TestMenu(t *testing.T) {
	s := newSession(t, "student", true)
	out := s.run(t, Reject, "n")

	assert.Contains(t, out, "Welcome to Student Management System")
	assert.Contains(t, out, "1) Create new student record")
	assert.Contains(t, out, "5) Display student records by fees")
	assert.Contains(t, out, "6) Display student records by marks")
	assert.Contains(t, out, "7) Display student records sorted by field")
	assert.Contains(t, out, "Enter your choice [1-7] : ")
}

func TestReadAll(t *testing.T) {
	s := newSession(t, "student", true)
	out := s.run(t, Reject, "2", "n")

	assert.Contains(t, out, strings.Repeat("-", 65)+"\n")
	assert.Contains(t, out, "|  roll number  |     name      |     marks     |   fees paid   |")
	assert.Contains(t, out, "|      101      |      Jay      |      88       |     20000     |")

	jay := strings.Index(out, cell("Jay"))
	chandu := strings.Index(out, cell("Chandu"))
	require.NotEqual(t, -1, jay)
	assert.Less(t, jay, chandu, "rows print in insertion order")
}

func TestCreate(t *testing.T) {
	s := newSession(t, "student", true)
	out := s.run(t, Reject, "1", "106", "Ram", "90", "30000", "n")

	assert.Contains(t, out, "Student Ram added successfully in db...")
	assert.Contains(t, out, strings.Repeat("*", 65))

	got, err := s.store.Get(106)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"name": "Ram", "marks": int64(90), "fees": int64(30000)}, got.Fields)
}

func TestCreateOnEmptyStore(t *testing.T) {
	s := newSession(t, "employee", false)
	out := s.run(t, Reject, "1", "7", "Asha", "Pune", "45000", "n")

	assert.Contains(t, out, "Employee Asha added successfully in db...")
	assert.Equal(t, 1, s.length(t))
}

func TestCreateDuplicateRejected(t *testing.T) {
	s := newSession(t, "student", true)
	out := s.run(t, Reject, "1", "101", "n")

	assert.Contains(t, out, "Student roll number 101 already exists...")
	got, err := s.store.Get(101)
	require.NoError(t, err)
	assert.Equal(t, "Jay", got.Fields["name"])
}

func TestCreateDuplicateUpsert(t *testing.T) {
	s := newSession(t, "student", true)
	out := s.run(t, Upsert, "1", "101", "Jayesh", "90", "1", "n")

	assert.Contains(t, out, "Student Jayesh added successfully in db...")
	assert.Equal(t, 5, s.length(t))

	got, err := s.store.Get(101)
	require.NoError(t, err)
	assert.Equal(t, "Jayesh", got.Fields["name"])
}

func TestCreateInvalidNumber(t *testing.T) {
	s := newSession(t, "student", true)
	out := s.run(t, Reject, "1", "106", "Ram", "ninety", "n")

	assert.Contains(t, out, `Invalid input: marks must be a whole number, got "ninety"`)
	assert.Equal(t, 5, s.length(t))
}

func TestCreateValidation(t *testing.T) {
	s := newSession(t, "student", true)
	out := s.run(t, Reject, "1", "106", "", "150", "-5", "n")

	assert.Contains(t, out, "Field name is required, field marks must be at most 100, field fees must be at least 0")
	assert.Equal(t, 5, s.length(t))
}

func TestUpdate(t *testing.T) {
	s := newSession(t, "student", true)
	out := s.run(t, Reject, "3", "102", "Thomas", "81", "16000", "n")

	assert.Contains(t, out, "Student Thomas updated successfully in db....")

	got, err := s.store.Get(102)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"name": "Thomas", "marks": int64(81), "fees": int64(16000)}, got.Fields)
}

func TestUpdateMissingKeyIsSilent(t *testing.T) {
	s := newSession(t, "student", true)
	before, err := storage.Collect(s.store.All())
	require.NoError(t, err)

	out := s.run(t, Reject, "3", "999", "n")

	assert.NotContains(t, out, "updated successfully")
	assert.NotContains(t, out, "Invalid")
	after, err := storage.Collect(s.store.All())
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestDelete(t *testing.T) {
	s := newSession(t, "student", true)
	out := s.run(t, Reject, "4", "102", "n")

	assert.Contains(t, out, "Student Tom deleted successfully from database...")
	assert.Equal(t, 4, s.length(t))
}

func TestDeleteMissingKey(t *testing.T) {
	s := newSession(t, "employee", true)
	out := s.run(t, Reject, "4", "999", "n")

	assert.Contains(t, out, "Invalid employee employee id...")
	assert.Equal(t, 1, s.length(t))
}

func TestFilterByFees(t *testing.T) {
	s := newSession(t, "student", true)
	out := s.run(t, Reject, "5", "20000", "n")

	for _, name := range []string{"Jay", "Devid", "Abhi", "Chandu"} {
		assert.Contains(t, out, cell(name))
	}
	assert.NotContains(t, out, cell("Tom"))
}

func TestFilterAllMarks(t *testing.T) {
	s := newSession(t, "marksheet", true)
	out := s.run(t, Reject, "6", "80", "80", "80", "n")

	assert.Contains(t, out, "Enter minimum student marks2 to display : ")
	assert.Contains(t, out, cell("Tom"))
	for _, name := range []string{"Jay", "Devid", "Abhi", "Chandu"} {
		assert.NotContains(t, out, cell(name))
	}
}

func TestFilterNoMatches(t *testing.T) {
	s := newSession(t, "employee", true)
	out := s.run(t, Reject, "5", "1000000", "n")

	assert.Contains(t, out, "No matching employee records...")
}

func TestSorted(t *testing.T) {
	s := newSession(t, "student", true)
	out := s.run(t, Reject, "7", "fees", "y", "n")

	abhi := strings.Index(out, cell("Abhi"))
	devid := strings.Index(out, cell("Devid"))
	tom := strings.Index(out, cell("Tom"))
	require.NotEqual(t, -1, abhi)
	assert.Less(t, abhi, devid)
	assert.Less(t, devid, tom)
}

func TestSortedUnknownField(t *testing.T) {
	s := newSession(t, "student", true)
	out := s.run(t, Reject, "7", "salary", "n")

	assert.Contains(t, out, `Unknown field "salary"...`)
}

func TestEmptyStoreGuards(t *testing.T) {
	for _, choice := range []string{"2", "3", "4", "5", "6", "7"} {
		t.Run(choice, func(t *testing.T) {
			s := newSession(t, "student", false)
			out := s.run(t, Reject, choice, "n")
			assert.Contains(t, out, "No student records in database...")
		})
	}
}

func TestInvalidChoiceAndInput(t *testing.T) {
	s := newSession(t, "student", true)
	out := s.run(t, Reject, "9", "y", "abc", "y", "0", "n")

	assert.Equal(t, 2, strings.Count(out, "Invalid choice..."))
	assert.Contains(t, out, `Invalid input: "abc" is not a whole number`)
	assert.Equal(t, 3, strings.Count(out, "Welcome to Student Management System"))
}

func TestContinue(t *testing.T) {
	s := newSession(t, "student", true)
	out := s.run(t, Reject, "4", "101", "Y", "4", "102", "no")

	assert.Contains(t, out, "Student Jay deleted successfully from database...")
	assert.Contains(t, out, "Student Tom deleted successfully from database...")
	assert.Equal(t, 3, s.length(t))
}

func TestEndOfInput(t *testing.T) {
	schema, _, err := schemas.Lookup("student")
	require.NoError(t, err)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	for _, script := range []string{"", "1\n106\nRam\n", "2\n"} {
		store := memory.New(schema, memory.DefaultDegree)
		var out bytes.Buffer
		c := New(strings.NewReader(script), &out, store, schema, log, Reject)
		assert.NoError(t, c.Run(), "script %q", script)
	}
}

func TestCreateLongName(t *testing.T) {
	s := newSession(t, "student", false)
	name := strings.Repeat("x", 70000)
	out := s.run(t, Reject, "1", "106", name, "90", "1", "y", "2", "n")

	assert.Contains(t, out, "Student "+name+" added successfully in db...")
	assert.Contains(t, out, name)
	assert.Equal(t, 1, s.length(t))

	rec, err := s.store.Get(106)
	require.NoError(t, err)
	assert.Equal(t, name, rec.Fields["name"])
}

func TestCarriageReturnLineEndings(t *testing.T) {
	s := newSession(t, "student", true)
	out := s.run(t, Reject, "4\r", "101\r", "n\r")

	assert.Contains(t, out, "Student Jay deleted successfully from database...")
	assert.Equal(t, 4, s.length(t))
}

func TestReadFailure(t *testing.T) {
	schema, _, err := schemas.Lookup("student")
	require.NoError(t, err)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	boom := errors.New("device unplugged")

	cases := map[string]io.Reader{
		"menu":      iotest.ErrReader(boom),
		"operation": io.MultiReader(strings.NewReader("1\n106\n"), iotest.ErrReader(boom)),
		"continue":  io.MultiReader(strings.NewReader("2\n"), iotest.ErrReader(boom)),
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			store := memory.New(schema, memory.DefaultDegree)
			require.NoError(t, store.Create(types.Record{Key: 101, Fields: map[string]any{
				"name": "Jay", "marks": int64(88), "fees": int64(20000),
			}}))
			var out bytes.Buffer

			err := New(in, &out, store, schema, log, Reject).Run()
			require.Error(t, err)
			assert.ErrorIs(t, err, boom)
			assert.Equal(t, 1, strings.Count(out.String(), "Welcome to"))
		})
	}
}
