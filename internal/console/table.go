package console

import (
	"fmt"
	"io"
	"iter"
	"strings"

	"github.com/aanand-mishra/records/internal/types"
)

// cellWidth is the width of every table column, excluding the border.
const cellWidth = 15

// ruleWidth is the length of a separator line for a table of cols columns.
func ruleWidth(cols int) int {
	return cols*(cellWidth+1) + 1
}

// center pads s to cellWidth, putting any odd space on the right.
// Longer values are printed in full.
func center(s string) string {
	n := len([]rune(s))
	if n >= cellWidth {
		return s
	}
	left := (cellWidth - n) / 2
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", cellWidth-n-left)
}

func writeRow(w io.Writer, cells []string) {
	var b strings.Builder
	b.WriteByte('|')
	for _, c := range cells {
		b.WriteString(center(c))
		b.WriteByte('|')
	}
	fmt.Fprintln(w, b.String())
}

// writeTable prints a header and one framed row per record, pulling
// records from seq as it goes. It returns the number of rows written.
func writeTable(w io.Writer, schema types.Schema, seq iter.Seq2[types.Record, error]) (int, error) {
	cols := len(schema.Fields) + 1
	rule := strings.Repeat("-", ruleWidth(cols))

	header := make([]string, 0, cols)
	header = append(header, schema.KeyLabel)
	for _, f := range schema.Fields {
		header = append(header, f.Label)
	}

	fmt.Fprintln(w, rule)
	writeRow(w, header)
	fmt.Fprintln(w, rule)

	rows := 0
	for rec, err := range seq {
		if err != nil {
			return rows, err
		}

		cells := make([]string, 0, cols)
		cells = append(cells, fmt.Sprint(rec.Key))
		for _, f := range schema.Fields {
			cells = append(cells, fmt.Sprint(rec.Fields[f.Name]))
		}
		writeRow(w, cells)
		fmt.Fprintln(w, rule)
		rows++
	}
	return rows, nil
}

func sliceSeq(records []types.Record) iter.Seq2[types.Record, error] {
	return func(yield func(types.Record, error) bool) {
		for _, r := range records {
			if !yield(r, nil) {
				return
			}
		}
	}
}
