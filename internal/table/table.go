// Package table implements the tabular data model shared by the fetch,
// filter, and interpretation stages.
//
// Government datasets arrive messy: mixed-type JSON values, inconsistent
// column casing, and the occasional export where every row's fields are
// tab-joined into a single column. This package normalizes all of that into a
// plain string table before any LLM sees it.
package table

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Table is an ordered, string-valued table.
// All values are strings; numeric interpretation happens at the point of use
// (see NumericSummary and Filter).
type Table struct {
	Columns []string
	Rows    [][]string
}

// NumRows returns the row count.
func (t *Table) NumRows() int { return len(t.Rows) }

// NumCols returns the column count.
func (t *Table) NumCols() int { return len(t.Columns) }

// ColumnIndex returns the index of the named column, or -1.
// Matching is case-insensitive because normalization may not have run yet.
func (t *Table) ColumnIndex(name string) int {
	for i, col := range t.Columns {
		if strings.EqualFold(col, name) {
			return i
		}
	}
	return -1
}

// Clone returns a deep copy.
func (t *Table) Clone() *Table {
	out := &Table{
		Columns: append([]string(nil), t.Columns...),
		Rows:    make([][]string, len(t.Rows)),
	}
	for i, row := range t.Rows {
		out.Rows[i] = append([]string(nil), row...)
	}
	return out
}

// FromRecords builds a table from JSON records in the given column order.
// Missing keys become empty cells; extra keys are ignored.
func FromRecords(columns []string, records []map[string]any) *Table {
	t := &Table{Columns: append([]string(nil), columns...)}
	for _, rec := range records {
		row := make([]string, len(columns))
		for i, col := range columns {
			row[i] = cellString(rec[col])
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

// cellString renders a JSON value as a table cell.
func cellString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(x)
	case float64:
		// Integral floats print without a decimal point, so years and counts
		// read naturally in prompts.
		if x == float64(int64(x)) {
			return strconv.FormatInt(int64(x), 10)
		}
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	default:
		return fmt.Sprint(x)
	}
}

// ReadCSV parses CSV data into a table. The first row is the header.
func ReadCSV(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1 // tolerate ragged rows
	cr.LazyQuotes = true

	all, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsing CSV: %w", err)
	}
	if len(all) == 0 {
		return &Table{}, nil
	}

	t := &Table{Columns: all[0]}
	for _, row := range all[1:] {
		t.Rows = append(t.Rows, squareRow(row, len(t.Columns)))
	}
	return t, nil
}

// NormalizeColumns rewrites column names to a canonical form: trimmed,
// lowercased, spaces and hyphens replaced with underscores.
func (t *Table) NormalizeColumns() {
	for i, col := range t.Columns {
		t.Columns[i] = NormalizeName(col)
	}
}

// NormalizeName canonicalizes one column name.
func NormalizeName(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, "-", "_")
	return s
}

// ExpandTabSeparated repairs datasets whose rows arrive with all fields
// tab-joined into one column. The damaged column's header usually carries the
// real names joined with underscores. At most one column is expanded.
func (t *Table) ExpandTabSeparated() bool {
	colIdx := t.findTabColumn()
	if colIdx < 0 {
		return false
	}

	// Widest part count across rows decides the expansion width. Rows may be
	// ragged (HTML exports drop trailing cells), so short rows are squared to
	// the header first.
	width := 0
	for _, row := range t.Rows {
		if colIdx >= len(row) {
			continue
		}
		if n := len(strings.Split(row[colIdx], "\t")); n > width {
			width = n
		}
	}
	if width < 2 {
		return false
	}

	newNames := expandedNames(t.Columns[colIdx], width, t.Columns)

	columns := make([]string, 0, len(t.Columns)+width-1)
	columns = append(columns, t.Columns[:colIdx]...)
	columns = append(columns, newNames...)
	columns = append(columns, t.Columns[colIdx+1:]...)

	for ri, row := range t.Rows {
		row = squareRow(row, len(t.Columns))

		vals := strings.Split(row[colIdx], "\t")
		if len(vals) < width {
			padded := make([]string, width)
			copy(padded, vals)
			vals = padded
		} else if len(vals) > width {
			vals = vals[:width]
		}
		for i, v := range vals {
			vals[i] = strings.TrimSpace(v)
		}

		newRow := make([]string, 0, len(columns))
		newRow = append(newRow, row[:colIdx]...)
		newRow = append(newRow, vals...)
		newRow = append(newRow, row[colIdx+1:]...)
		t.Rows[ri] = newRow
	}
	t.Columns = columns
	return true
}

// squareRow pads or truncates a row to the given width.
func squareRow(row []string, width int) []string {
	switch {
	case len(row) < width:
		padded := make([]string, width)
		copy(padded, row)
		return padded
	case len(row) > width:
		return row[:width]
	default:
		return row
	}
}

// findTabColumn returns the first column whose values embed tabs, or -1.
func (t *Table) findTabColumn() int {
	if len(t.Rows) == 0 {
		return -1
	}
	sample := min(len(t.Rows), 20)
	for ci := range t.Columns {
		hits := 0
		for _, row := range t.Rows[:sample] {
			if ci < len(row) && strings.Contains(row[ci], "\t") {
				hits++
			}
		}
		// Majority of sampled rows affected: this is structural, not a stray
		// tab in one cell.
		if hits*2 > sample {
			return ci
		}
	}
	return -1
}

// expandedNames recovers column names for an expanded tab column. The joined
// header is split on underscores when the piece count matches; otherwise
// positional names are used. Names colliding with existing columns get a
// numeric suffix.
func expandedNames(joined string, width int, existing []string) []string {
	names := make([]string, width)

	pieces := strings.Split(joined, "_")
	if len(pieces) == width {
		copy(names, pieces)
	} else {
		for i := range names {
			names[i] = fmt.Sprintf("col_%d", i+1)
		}
	}

	taken := map[string]bool{}
	for _, c := range existing {
		if c != joined {
			taken[c] = true
		}
	}
	for i, name := range names {
		if name == "" {
			name = fmt.Sprintf("col_%d", i+1)
		}
		candidate := name
		for n := 2; taken[candidate]; n++ {
			candidate = fmt.Sprintf("%s_%d", name, n)
		}
		taken[candidate] = true
		names[i] = candidate
	}
	return names
}
