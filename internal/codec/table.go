package codec

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/dom/crusadetome/internal/domain"
)

// Table is the row/column form of a list of records, as an editable grid
// presents it. Cells are nil, string, bool or a number.
type Table struct {
	Columns []string `json:"columns"`
	Rows    [][]any  `json:"rows"`
}

func (t Table) Len() int {
	return len(t.Rows)
}

// ColumnIndex returns the position of a column, or -1.
func (t Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Cell returns the value at row/column, or nil when either is missing.
func (t Table) Cell(row int, column string) any {
	col := t.ColumnIndex(column)
	if row < 0 || row >= len(t.Rows) || col < 0 || col >= len(t.Rows[row]) {
		return nil
	}
	return t.Rows[row][col]
}

// Insert places row before position at (at == Len appends). The row is
// padded with nil or cut to the column count.
func (t *Table) Insert(at int, row []any) error {
	if at < 0 || at > len(t.Rows) {
		return fmt.Errorf("insert at %d of %d rows: %w", at, len(t.Rows), domain.ErrRowIndex)
	}
	fitted := make([]any, len(t.Columns))
	copy(fitted, row)

	t.Rows = append(t.Rows, nil)
	copy(t.Rows[at+1:], t.Rows[at:])
	t.Rows[at] = fitted
	return nil
}

func (t *Table) Append(row []any) {
	_ = t.Insert(len(t.Rows), row)
}

func (t *Table) Delete(at int) error {
	if at < 0 || at >= len(t.Rows) {
		return fmt.Errorf("delete at %d of %d rows: %w", at, len(t.Rows), domain.ErrRowIndex)
	}
	t.Rows = append(t.Rows[:at], t.Rows[at+1:]...)
	return nil
}

type ColumnKind string

const (
	KindText ColumnKind = "text"
	KindInt  ColumnKind = "int"
	KindBool ColumnKind = "bool"
)

// Column binds a table column to a field of row type T.
type Column[T any] struct {
	Name string
	Kind ColumnKind
	get  func(*T) any
	set  func(*T, any)
}

// RowSchema is the ordered column set of a row type.
type RowSchema[T any] struct {
	columns []Column[T]
}

func NewRowSchema[T any](columns ...Column[T]) RowSchema[T] {
	return RowSchema[T]{columns: columns}
}

// Columns returns the declared column names in order.
func (s RowSchema[T]) Columns() []string {
	names := make([]string, len(s.columns))
	for i, c := range s.columns {
		names[i] = c.Name
	}
	return names
}

// Empty returns a table with every declared column and no rows.
func (s RowSchema[T]) Empty() Table {
	return Table{Columns: s.Columns(), Rows: [][]any{}}
}

// TableToRows reads one record per table row. Columns are matched by name;
// a declared column missing from the table leaves the field at its zero
// value and undeclared columns are ignored.
func TableToRows[T any](s RowSchema[T], t Table) []T {
	index := make([]int, len(s.columns))
	for i, c := range s.columns {
		index[i] = t.ColumnIndex(c.Name)
	}

	rows := make([]T, 0, len(t.Rows))
	for _, cells := range t.Rows {
		var row T
		for i, c := range s.columns {
			if idx := index[i]; idx >= 0 && idx < len(cells) {
				c.set(&row, cells[idx])
			}
		}
		rows = append(rows, row)
	}
	return rows
}

// RowsToTable lays records out under the declared columns. Every declared
// column is present even when no row has a value for it.
func RowsToTable[T any](s RowSchema[T], rows []T) Table {
	t := Table{Columns: s.Columns(), Rows: make([][]any, 0, len(rows))}
	for i := range rows {
		cells := make([]any, len(s.columns))
		for j, c := range s.columns {
			cells[j] = c.get(&rows[i])
		}
		t.Rows = append(t.Rows, cells)
	}
	return t
}

func TextColumn[T any](name string, field func(*T) *string) Column[T] {
	return Column[T]{
		Name: name,
		Kind: KindText,
		get:  func(row *T) any { return *field(row) },
		set:  func(row *T, v any) { *field(row) = textCell(v) },
	}
}

func IntColumn[T any](name string, field func(*T) **int) Column[T] {
	return Column[T]{
		Name: name,
		Kind: KindInt,
		get: func(row *T) any {
			if p := *field(row); p != nil {
				return *p
			}
			return nil
		},
		set: func(row *T, v any) { *field(row) = intCell(v) },
	}
}

func BoolColumn[T any](name string, field func(*T) *bool) Column[T] {
	return Column[T]{
		Name: name,
		Kind: KindBool,
		get:  func(row *T) any { return *field(row) },
		set:  func(row *T, v any) { *field(row) = boolCell(v) },
	}
}

func textCell(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case json.Number:
		return x.String()
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int:
		return strconv.Itoa(x)
	case bool:
		return strconv.FormatBool(x)
	}
	return ""
}

func intCell(v any) *int {
	switch x := v.(type) {
	case int:
		return domain.Int(x)
	case int64:
		return domain.Int(int(x))
	case float64:
		return floatInt(x)
	case json.Number:
		if n, err := x.Int64(); err == nil {
			return domain.Int(int(n))
		}
		if f, err := x.Float64(); err == nil {
			return intCell(f)
		}
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(x)); err == nil {
			return domain.Int(n)
		}
	case *int:
		if x != nil {
			return domain.Int(*x)
		}
	}
	return nil
}

// floatInt truncates x toward zero. NaN, infinities and values outside the
// int range are absent rather than wrapped.
func floatInt(x float64) *int {
	if math.IsNaN(x) || x < math.MinInt || x >= math.MaxInt {
		return nil
	}
	return domain.Int(int(x))
}

func boolCell(v any) bool {
	switch x := v.(type) {
	case bool:
		return x
	case string:
		b, _ := strconv.ParseBool(strings.TrimSpace(x))
		return b
	case float64:
		return x != 0
	case int:
		return x != 0
	}
	return false
}
