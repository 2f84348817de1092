// Package console implements the interactive management loop.
//
// LOOP SHAPE:
//  1. Print the numbered menu
//  2. Read one line and parse it as a menu choice
//  3. Run exactly one operation against the store
//  4. Ask whether to continue; anything but "y" ends the session
//
// The Console owns its store. Nothing here is safe for concurrent use,
// and nothing needs to be: there is one user and one line of input at a
// time.
package console

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/aanand-mishra/records/internal/input"
	"github.com/aanand-mishra/records/internal/storage"
	"github.com/aanand-mishra/records/internal/types"
	"github.com/aanand-mishra/records/internal/utils/response"
)

// DuplicatePolicy decides what creating a record at an existing key does.
type DuplicatePolicy string

const (
	// Reject reports the existing key and leaves the store unchanged.
	Reject DuplicatePolicy = "reject"
	// Upsert silently overwrites the existing record.
	Upsert DuplicatePolicy = "upsert"
)

var (
	errEndOfInput = errors.New("end of input")
	// errReadInput wraps failures of the underlying reader. The session
	// cannot continue past one.
	errReadInput = errors.New("read input")
)

type action struct {
	label string
	// needsRecords guards the action behind a non-empty store.
	needsRecords bool
	run          func() error
}

// Console is one interactive session over a single store.
type Console struct {
	in         *bufio.Reader
	out        io.Writer
	store      storage.Storage
	schema     types.Schema
	log        *slog.Logger
	duplicates DuplicatePolicy
	actions    []action
}

// New wires a console reading commands from in and writing to out.
func New(in io.Reader, out io.Writer, store storage.Storage, schema types.Schema, log *slog.Logger, duplicates DuplicatePolicy) *Console {
	c := &Console{
		in:         bufio.NewReader(in),
		out:        out,
		store:      store,
		schema:     schema,
		log:        log,
		duplicates: duplicates,
	}

	c.actions = []action{
		{label: fmt.Sprintf("Create new %s record", schema.Name), run: c.create},
		{label: fmt.Sprintf("Read %s records", schema.Name), needsRecords: true, run: c.readAll},
		{label: fmt.Sprintf("Update %s record", schema.Name), needsRecords: true, run: c.update},
		{label: fmt.Sprintf("Delete %s record", schema.Name), needsRecords: true, run: c.delete},
	}
	for _, f := range schema.Filters {
		c.actions = append(c.actions, action{
			label:        fmt.Sprintf("Display %s records by %s", schema.Name, f.Label),
			needsRecords: true,
			run:          func() error { return c.filter(f) },
		})
	}
	c.actions = append(c.actions, action{
		label:        fmt.Sprintf("Display %s records sorted by field", schema.Name),
		needsRecords: true,
		run:          c.sorted,
	})

	return c
}

// Run drives the loop until the user declines to continue or input ends.
// It returns an error only when reading input fails.
func (c *Console) Run() error {
	for {
		c.dashboard()

		line, err := c.prompt(fmt.Sprintf("Enter your choice [1-%d] : ", len(c.actions)))
		if err != nil {
			return c.finish(err)
		}
		if err := c.dispatch(line); err != nil {
			return c.finish(err)
		}

		answer, err := c.prompt("Do you want to continue [y/n] : ")
		if err != nil {
			return c.finish(err)
		}
		if !strings.EqualFold(strings.TrimSpace(answer), "y") {
			c.log.Debug("session ended by user")
			return nil
		}
	}
}

func (c *Console) finish(err error) error {
	if errors.Is(err, errEndOfInput) {
		fmt.Fprintln(c.out)
		c.log.Debug("session ended at end of input")
		return nil
	}
	return err
}

func (c *Console) dashboard() {
	fmt.Fprintf(c.out, "\t\tWelcome to %s Management System\n\n", c.schema.Title)
	fmt.Fprintln(c.out, "\t\t\tmenu")
	for i, a := range c.actions {
		fmt.Fprintf(c.out, "\t\t\t%d) %s\n", i+1, a.label)
	}
	fmt.Fprintln(c.out)
}

// prompt prints text and reads one line of any length, without its
// line terminator. A final line lacking a newline is still returned;
// the read after it reports errEndOfInput.
func (c *Console) prompt(text string) (string, error) {
	fmt.Fprint(c.out, text)

	line, err := c.in.ReadString('\n')
	switch {
	case err == nil:
	case errors.Is(err, io.EOF):
		if line == "" {
			return "", errEndOfInput
		}
	default:
		return "", fmt.Errorf("%w: %w", errReadInput, err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (c *Console) reply(r response.Response) {
	if err := response.Write(c.out, r); err != nil {
		c.log.Error("failed to write response", slog.String("error", err.Error()))
	}
}

// dispatch runs the chosen action. Only input failures are returned;
// everything else is reported to the user and the loop carries on.
func (c *Console) dispatch(line string) error {
	choice, err := input.ParseInt(line)
	if err != nil {
		c.reply(response.GeneralError(err))
		return nil
	}
	if choice < 1 || choice > int64(len(c.actions)) {
		c.log.Debug("invalid menu choice", slog.Int64("choice", choice))
		c.reply(response.Errorf("Invalid choice..."))
		return nil
	}

	a := c.actions[choice-1]
	c.log.Debug("dispatching", slog.String("action", a.label))

	if a.needsRecords {
		n, err := c.store.Len()
		if err != nil {
			return c.report(err)
		}
		if n == 0 {
			c.reply(response.Errorf("No %s records in database...", c.schema.Name))
			return nil
		}
	}

	return c.report(a.run())
}

// report turns an operation error into a user-facing message.
func (c *Console) report(err error) error {
	var verr input.ValidationError

	switch {
	case err == nil:
		return nil
	case errors.Is(err, errEndOfInput), errors.Is(err, errReadInput):
		return err
	case errors.As(err, &verr):
		c.reply(response.ValidationError(verr))
	case errors.Is(err, input.ErrInvalidInput):
		c.reply(response.GeneralError(err))
	case errors.Is(err, storage.ErrNotFound):
		c.reply(response.Errorf("Invalid %s %s...", c.schema.Name, c.schema.KeyLabel))
	default:
		c.log.Error("operation failed", slog.String("error", err.Error()))
		c.reply(response.GeneralError(err))
	}
	return nil
}

func (c *Console) rule(ch string) {
	fmt.Fprintln(c.out, strings.Repeat(ch, ruleWidth(len(c.schema.Fields)+1)))
	fmt.Fprintln(c.out)
}
