package table

import (
	"fmt"
	"strings"
)

// Row is one record; positions follow Table.Columns.
type Row []Value

// Table is an in-memory, fully materialized tabular dataset.
// Stages treat tables as immutable and return new ones.
type Table struct {
	Name    string
	Columns []string
	Rows    []Row

	index map[string]int
}

// New creates an empty table with the given columns
func New(name string, columns []string) *Table {
	t := &Table{
		Name:    name,
		Columns: append([]string(nil), columns...),
	}
	t.reindex()
	return t
}

func (t *Table) reindex() {
	t.index = make(map[string]int, len(t.Columns))
	for i, c := range t.Columns {
		if _, dup := t.index[c]; !dup {
			t.index[c] = i
		}
	}
}

// Len returns the number of rows
func (t *Table) Len() int { return len(t.Rows) }

// Col returns the position of a column, or -1
func (t *Table) Col(name string) int {
	if t.index == nil {
		t.reindex()
	}
	if i, ok := t.index[name]; ok {
		return i
	}
	return -1
}

// Has reports whether the column exists
func (t *Table) Has(name string) bool { return t.Col(name) >= 0 }

// Append adds a row. Short rows are padded with missing values.
func (t *Table) Append(values ...Value) {
	row := make(Row, len(t.Columns))
	copy(row, values)
	t.Rows = append(t.Rows, row)
}

// Get returns the value at row r for the named column; unknown columns are missing.
func (t *Table) Get(r int, column string) Value {
	c := t.Col(column)
	if c < 0 || c >= len(t.Rows[r]) {
		return Missing()
	}
	return t.Rows[r][c]
}

// Clone returns a deep copy
func (t *Table) Clone() *Table {
	out := New(t.Name, t.Columns)
	out.Rows = make([]Row, len(t.Rows))
	for i, r := range t.Rows {
		out.Rows[i] = append(Row(nil), r...)
	}
	return out
}

// Filter returns a new table holding the rows for which keep returns true.
func (t *Table) Filter(keep func(r int) bool) *Table {
	out := New(t.Name, t.Columns)
	for i, r := range t.Rows {
		if keep(i) {
			out.Rows = append(out.Rows, append(Row(nil), r...))
		}
	}
	return out
}


// WithColumn returns a copy with the column set from fn, appending it when absent.
func (t *Table) WithColumn(name string, fn func(r int) Value) *Table {
	out := t.Clone()
	c := out.Col(name)
	if c < 0 {
		out.Columns = append(out.Columns, name)
		out.reindex()
		c = len(out.Columns) - 1
		for i := range out.Rows {
			out.Rows[i] = append(out.Rows[i], Missing())
		}
	}
	for i := range out.Rows {
		out.Rows[i][c] = fn(i)
	}
	return out
}

// DropColumns returns a copy without the named columns (case-insensitive).
func (t *Table) DropColumns(names ...string) *Table {
	drop := make(map[string]bool, len(names))
	for _, n := range names {
		drop[strings.ToLower(n)] = true
	}
	var keep []int
	var cols []string
	for i, c := range t.Columns {
		if !drop[strings.ToLower(c)] {
			keep = append(keep, i)
			cols = append(cols, c)
		}
	}
	out := New(t.Name, cols)
	out.Rows = make([]Row, len(t.Rows))
	for i, r := range t.Rows {
		row := make(Row, len(keep))
		for j, c := range keep {
			if c < len(r) {
				row[j] = r[c]
			}
		}
		out.Rows[i] = row
	}
	return out
}

// Rename returns a copy with columns renamed by fn
func (t *Table) Rename(fn func(string) string) *Table {
	out := t.Clone()
	for i, c := range out.Columns {
		out.Columns[i] = fn(c)
	}
	out.reindex()
	return out
}


// MissingColumns returns the names of required columns absent from the table.
func (t *Table) MissingColumns(required ...string) []string {
	var missing []string
	for _, c := range required {
		if !t.Has(c) {
			missing = append(missing, c)
		}
	}
	return missing
}

// Equal reports whether two tables have identical columns and cells
func (t *Table) Equal(o *Table) bool {
	if len(t.Columns) != len(o.Columns) || len(t.Rows) != len(o.Rows) {
		return false
	}
	for i := range t.Columns {
		if t.Columns[i] != o.Columns[i] {
			return false
		}
	}
	for i := range t.Rows {
		if len(t.Rows[i]) != len(o.Rows[i]) {
			return false
		}
		for j := range t.Rows[i] {
			if !t.Rows[i][j].Equal(o.Rows[i][j]) {
				return false
			}
		}
	}
	return true
}

// FromRecords builds a table from a header row followed by data rows,
// as returned by excelize GetRows or csv.ReadAll.
func FromRecords(name string, records [][]string) (*Table, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("%s: no header row", name)
	}
	header := make([]string, len(records[0]))
	for i, h := range records[0] {
		header[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	}
	t := New(name, header)
	for _, rec := range records[1:] {
		if isBlank(rec) {
			continue
		}
		row := make(Row, len(header))
		for i := 0; i < len(header) && i < len(rec); i++ {
			row[i] = Parse(rec[i])
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

func isBlank(rec []string) bool {
	for _, c := range rec {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// Records returns the table as a header row plus text rows
func (t *Table) Records() [][]string {
	out := make([][]string, 0, len(t.Rows)+1)
	out = append(out, append([]string(nil), t.Columns...))
	for _, r := range t.Rows {
		rec := make([]string, len(t.Columns))
		for i := range rec {
			if i < len(r) {
				rec[i] = r[i].Text()
			}
		}
		out = append(out, rec)
	}
	return out
}
