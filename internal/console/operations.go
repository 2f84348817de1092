package console

import (
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"strings"

	"github.com/aanand-mishra/records/internal/input"
	"github.com/aanand-mishra/records/internal/storage"
	"github.com/aanand-mishra/records/internal/types"
	"github.com/aanand-mishra/records/internal/utils/response"
)

func (c *Console) readKey(text string) (int64, error) {
	line, err := c.prompt(text)
	if err != nil {
		return 0, err
	}
	return input.ParseInt(line)
}

// readFields prompts for every attribute field in schema order.
func (c *Console) readFields() (map[string]any, error) {
	fields := make(map[string]any, len(c.schema.Fields))
	for _, f := range c.schema.Fields {
		line, err := c.prompt(fmt.Sprintf("Enter %s %s : ", c.schema.Name, f.Label))
		if err != nil {
			return nil, err
		}
		v, err := input.ParseField(f, line)
		if err != nil {
			return nil, err
		}
		fields[f.Name] = v
	}

	if err := input.Validate(c.schema, fields); err != nil {
		return nil, err
	}
	return fields, nil
}

func (c *Console) create() error {
	key, err := c.readKey(fmt.Sprintf("Enter %s %s : ", c.schema.Name, c.schema.KeyLabel))
	if err != nil {
		return err
	}

	if c.duplicates != Upsert {
		_, err := c.store.Get(key)
		if err == nil {
			c.reply(response.Errorf("%s %s %d already exists...", c.schema.Title, c.schema.KeyLabel, key))
			return nil
		}
		if !errors.Is(err, storage.ErrNotFound) {
			return err
		}
	}

	fields, err := c.readFields()
	if err != nil {
		return err
	}

	rec := types.Record{Key: key, Fields: fields}
	if err := c.store.Create(rec); err != nil {
		return err
	}

	c.log.Info("record created",
		slog.String("schema", c.schema.Name),
		slog.Int64("key", key))

	c.reply(response.OK("%s %s added successfully in db...", c.schema.Title, c.schema.DisplayName(rec)))
	c.rule("*")
	return nil
}

func (c *Console) readAll() error {
	return c.table(c.store.All())
}

func (c *Console) update() error {
	key, err := c.readKey(fmt.Sprintf("Enter %s %s to update : ", c.schema.Name, c.schema.KeyLabel))
	if err != nil {
		return err
	}

	// An absent key is not an error for update: nothing is asked and
	// nothing is reported.
	if _, err := c.store.Get(key); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			c.log.Debug("update skipped: key absent", slog.Int64("key", key))
			return nil
		}
		return err
	}

	fields, err := c.readFields()
	if err != nil {
		return err
	}

	ok, err := c.store.Update(key, fields)
	if err != nil || !ok {
		return err
	}

	c.log.Info("record updated",
		slog.String("schema", c.schema.Name),
		slog.Int64("key", key))

	c.reply(response.OK("%s %s updated successfully in db....", c.schema.Title, c.schema.DisplayName(types.Record{Key: key, Fields: fields})))
	c.rule("*")
	return nil
}

func (c *Console) delete() error {
	key, err := c.readKey(fmt.Sprintf("Enter %s %s to delete : ", c.schema.Name, c.schema.KeyLabel))
	if err != nil {
		return err
	}

	name, err := c.store.Delete(key)
	if err != nil {
		return err
	}

	c.log.Info("record deleted",
		slog.String("schema", c.schema.Name),
		slog.Int64("key", key))

	c.reply(response.OK("%s %s deleted successfully from database...", c.schema.Title, name))
	return nil
}

func (c *Console) filter(f types.Filter) error {
	thresholds := make([]types.Threshold, 0, len(f.Fields))
	for _, name := range f.Fields {
		label := name
		if field, ok := c.schema.Field(name); ok {
			label = field.Label
		}

		floor, err := c.readKey(fmt.Sprintf("Enter minimum %s %s to display : ", c.schema.Name, label))
		if err != nil {
			return err
		}
		thresholds = append(thresholds, types.Threshold{Field: name, Min: floor})
	}

	return c.table(storage.Filter(c.store, types.AtLeast(thresholds...)))
}

func (c *Console) sorted() error {
	names := c.schema.FieldNames()
	line, err := c.prompt(fmt.Sprintf("Enter field to sort by [%s] : ", strings.Join(names, ", ")))
	if err != nil {
		return err
	}

	field := strings.TrimSpace(line)
	if _, ok := c.schema.Field(field); !ok {
		c.reply(response.Errorf("Unknown field %q...", field))
		return nil
	}

	answer, err := c.prompt("Sort in descending order [y/n] : ")
	if err != nil {
		return err
	}
	desc := strings.EqualFold(strings.TrimSpace(answer), "y")

	records, err := storage.Sorted(c.store, c.schema, field, desc)
	if err != nil {
		return err
	}
	return c.table(sliceSeq(records))
}

func (c *Console) table(seq iter.Seq2[types.Record, error]) error {
	rows, err := writeTable(c.out, c.schema, seq)
	if err != nil {
		return err
	}
	if rows == 0 {
		c.reply(response.Errorf("No matching %s records...", c.schema.Name))
	}
	return nil
}
