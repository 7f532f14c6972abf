package korm

import (
	"fmt"
	"reflect"

	"github.com/IgniparousTempest/korm/internal/query"
	"github.com/IgniparousTempest/korm/internal/typeinfo"
)

// ColumnRef identifies a column of a table.
type ColumnRef interface {
	// Table is the name of the table the column belongs to.
	Table() string
	// Name is the column name.
	Name() string
	// QualifiedName is the quoted table and column, e.g. "Student"."age".
	QualifiedName() string
}

// Column is a typed reference to the column of record type R whose field
// has type V. Its methods build conditions and updaters, so values compared
// against a column are checked by the compiler.
type Column[R any, V any] struct {
	table string
	name  string
}

// NewColumn returns a reference to the column name of record type R. It
// fails if R cannot be mapped to a table, has no such column, or the field
// behind the column is not of type V.
func NewColumn[R any, V any](name string) (Column[R, V], error) {
	rt := reflect.TypeOf((*R)(nil)).Elem()
	info, err := typeinfo.TypeInfo(rt)
	if err != nil {
		return Column[R, V]{}, err
	}
	c, ok := info.Column(name)
	if !ok {
		return Column[R, V]{}, fmt.Errorf("type %s has no column %q", typeinfo.PrettyTypeName(rt), name)
	}
	vt := reflect.TypeOf((*V)(nil)).Elem()
	if ft := info.FieldType(c); ft != vt {
		return Column[R, V]{}, fmt.Errorf("column %q of %s has type %s, not %s",
			name, typeinfo.PrettyTypeName(rt), ft, vt)
	}
	return Column[R, V]{table: info.Table, name: name}, nil
}

// Col is the same as [NewColumn] except that it panics on error. It is
// meant for package level column declarations.
func Col[R any, V any](name string) Column[R, V] {
	c, err := NewColumn[R, V](name)
	if err != nil {
		panic(err)
	}
	return c
}

func (c Column[R, V]) Table() string {
	return c.table
}

func (c Column[R, V]) Name() string {
	return c.name
}

func (c Column[R, V]) QualifiedName() string {
	return query.Qualify(c.table, c.name)
}

func (c Column[R, V]) compare(op string, v V) Condition {
	return NewCondition(c.QualifiedName()+" "+op+" ?", v)
}

// Eq matches rows where the column equals v. A nil pointer matches NULL.
func (c Column[R, V]) Eq(v V) Condition {
	if isNil(v) {
		return c.IsNull()
	}
	return c.compare("=", v)
}

// Neq matches rows where the column differs from v. A nil pointer matches
// any value that is not NULL.
func (c Column[R, V]) Neq(v V) Condition {
	if isNil(v) {
		return c.NotNull()
	}
	return c.compare("!=", v)
}

func (c Column[R, V]) Lt(v V) Condition {
	return c.compare("<", v)
}

func (c Column[R, V]) Lte(v V) Condition {
	return c.compare("<=", v)
}

func (c Column[R, V]) Gt(v V) Condition {
	return c.compare(">", v)
}

func (c Column[R, V]) Gte(v V) Condition {
	return c.compare(">=", v)
}

// Like matches the column against an SQL LIKE pattern.
func (c Column[R, V]) Like(pattern string) Condition {
	return NewCondition(c.QualifiedName()+" LIKE ?", pattern)
}

// Glob matches the column against a case sensitive GLOB pattern.
func (c Column[R, V]) Glob(pattern string) Condition {
	return NewCondition(c.QualifiedName()+" GLOB ?", pattern)
}

// Between matches values in the closed range [lo, hi].
func (c Column[R, V]) Between(lo, hi V) Condition {
	return NewCondition(c.QualifiedName()+" BETWEEN ? AND ?", lo, hi)
}

func (c Column[R, V]) IsNull() Condition {
	return NewCondition(c.QualifiedName() + " IS NULL")
}

func (c Column[R, V]) NotNull() Condition {
	return NewCondition(c.QualifiedName() + " IS NOT NULL")
}

// EqColumn matches rows where the column equals another column, as used in
// join conditions.
func (c Column[R, V]) EqColumn(other ColumnRef) Condition {
	return NewCondition(c.QualifiedName() + " = " + other.QualifiedName())
}

// Set assigns v to the column. A nil pointer assigns NULL.
func (c Column[R, V]) Set(v V) Updater {
	if isNil(v) {
		return c.SetNull()
	}
	return Updater{sql: query.QuoteIdent(c.name) + " = ?", values: []any{v}}
}

// SetNull assigns NULL to the column.
func (c Column[R, V]) SetNull() Updater {
	return Updater{sql: query.QuoteIdent(c.name) + " = NULL"}
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.Pointer && rv.IsNil()
}
