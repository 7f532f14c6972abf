package korm

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"unicode/utf8"

	"github.com/IgniparousTempest/korm/internal/coder"
	"github.com/IgniparousTempest/korm/internal/errs"
	"github.com/IgniparousTempest/korm/internal/typeinfo"
)

// Row is a generic result row: values keyed by column label, in the order
// the columns were returned.
type Row struct {
	columns []string
	values  map[string]any
}

// NewRow builds a row from column labels and values. When a label repeats,
// the first value is kept.
func NewRow(columns []string, values []any) Row {
	r := Row{values: make(map[string]any, len(columns))}
	for i, name := range columns {
		if _, ok := r.values[name]; ok {
			continue
		}
		r.columns = append(r.columns, name)
		if i < len(values) {
			r.values[name] = values[i]
		} else {
			r.values[name] = nil
		}
	}
	return r
}

// Columns returns the column labels in order.
func (r Row) Columns() []string {
	return append([]string(nil), r.columns...)
}

// Len returns the number of columns.
func (r Row) Len() int {
	return len(r.columns)
}

// Get returns the value of a column. NULL is nil.
func (r Row) Get(name string) (any, bool) {
	v, ok := r.values[name]
	return v, ok
}

// Lookup returns the value of the column ref. Rows are keyed by label only:
// the table of ref is ignored, so when a join returns two columns with the
// same name, both resolve to the first of them. Select such columns
// explicitly under distinct names to read the second one.
func (r Row) Lookup(ref ColumnRef) (any, bool) {
	return r.Get(ref.Name())
}

// RowValue returns the value of col in row converted to the type of the
// column. Like [Row.Lookup] it matches by column name only.
func RowValue[R any, V any](row Row, col Column[R, V]) (V, error) {
	var zero V
	raw, ok := row.Lookup(col)
	if !ok {
		return zero, fmt.Errorf("row has no column %q", col.Name())
	}
	t := reflect.TypeOf((*V)(nil)).Elem()
	if raw == nil {
		if t.Kind() == reflect.Pointer {
			return zero, nil
		}
		return zero, &errs.DecodeError{
			Column: col.Name(),
			Type:   typeinfo.PrettyTypeName(t),
			Err:    errors.New("NULL value for non-nullable type"),
		}
	}
	c, err := coder.Default().Resolve(t)
	if err != nil {
		return zero, err
	}
	v, err := c.Decode(raw)
	if err != nil {
		return zero, &errs.DecodeError{Column: col.Name(), Type: typeinfo.PrettyTypeName(t), Err: err}
	}
	if t.Kind() == reflect.Pointer {
		p := reflect.New(t.Elem())
		p.Elem().Set(v)
		v = p
	}
	return v.Interface().(V), nil
}

// Table is the result of a generic query.
type Table []Row

// String renders the table with columns 8 characters wide.
func (t Table) String() string {
	return t.Format(8)
}

// Format renders the table as a text grid with a header row. Each cell is
// padded to width characters, or cut short and ended with "..." when longer.
// An empty table renders as an empty string.
func (t Table) Format(width int) string {
	if len(t) == 0 {
		return ""
	}
	if width < 3 {
		width = 3
	}
	columns := t[0].columns

	var sb strings.Builder
	sb.WriteString("|")
	for _, name := range columns {
		sb.WriteString(pad(name, width))
		sb.WriteString("|")
	}
	sb.WriteString("\n|")
	for range columns {
		sb.WriteString(strings.Repeat("-", width))
		sb.WriteString("|")
	}
	for _, row := range t {
		sb.WriteString("\n|")
		for _, name := range columns {
			sb.WriteString(pad(cellText(row.values[name]), width))
			sb.WriteString("|")
		}
	}
	return sb.String()
}

func cellText(v any) string {
	switch v := v.(type) {
	case nil:
		return "NULL"
	case []byte:
		return fmt.Sprintf("%x", v)
	}
	return fmt.Sprint(v)
}

func pad(s string, width int) string {
	n := utf8.RuneCountInString(s)
	if n > width {
		return string([]rune(s)[:width-3]) + "..."
	}
	return s + strings.Repeat(" ", width-n)
}
