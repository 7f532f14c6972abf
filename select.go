package korm

import (
	"reflect"
	"strings"

	"github.com/IgniparousTempest/korm/internal/query"
	"github.com/IgniparousTempest/korm/internal/typeinfo"
)

// TableRef names the table of a record type in a generic select.
type TableRef struct {
	name string
}

// TableOf returns the table of record type T. It panics if T cannot be
// mapped to a table.
func TableOf[T any]() TableRef {
	info, err := typeinfo.TypeInfo(reflect.TypeOf((*T)(nil)).Elem())
	if err != nil {
		panic(err)
	}
	return TableRef{name: info.Table}
}

// Name returns the table name.
func (t TableRef) Name() string {
	return t.name
}

// Projection is the column list of a select that still needs a FROM clause.
type Projection struct {
	sql string
}

// Select starts a select of the given columns.
func Select(first ColumnRef, rest ...ColumnRef) Projection {
	names := make([]string, 0, 1+len(rest))
	for _, c := range append([]ColumnRef{first}, rest...) {
		names = append(names, c.QualifiedName())
	}
	return Projection{sql: "SELECT " + strings.Join(names, ", ")}
}

// SelectAll starts a select of every column.
func SelectAll() Projection {
	return Projection{sql: "SELECT *"}
}

// From completes the projection with the table to read from.
func (p Projection) From(t TableRef) SelectStatement {
	return SelectStatement{sql: p.sql + " FROM " + query.QuoteIdent(t.name)}
}

// SelectStatement is a generic select that can be run with [DB.Query].
// Rows come back as a [Table] rather than as records.
type SelectStatement struct {
	sql    string
	values []any
}

// JoinClause is an INNER JOIN waiting for its ON condition.
type JoinClause struct {
	sql    string
	values []any
}

// InnerJoin joins the table t.
func (s SelectStatement) InnerJoin(t TableRef) JoinClause {
	return JoinClause{sql: s.sql + " INNER JOIN " + query.QuoteIdent(t.name), values: s.values}
}

// On sets the join condition.
func (j JoinClause) On(c Condition) SelectStatement {
	return SelectStatement{
		sql:    j.sql + " ON " + c.sql,
		values: concatValues(j.values, c.values),
	}
}

// Where restricts the select to the rows matching c. The values of c are
// bound after those already in the statement. The result can only be run.
func (s SelectStatement) Where(c Condition) FilteredSelect {
	if c.IsZero() {
		return FilteredSelect{sql: s.sql, values: s.values}
	}
	return FilteredSelect{
		sql:    s.sql + " WHERE " + c.sql,
		values: concatValues(s.values, c.values),
	}
}

// SQL returns the text of the statement.
func (s SelectStatement) SQL() string {
	return s.sql
}

// Values returns the placeholder values in order.
func (s SelectStatement) Values() []any {
	return copyValues(s.values)
}

func (s SelectStatement) parts() (string, []any) {
	return s.sql, s.values
}

// FilteredSelect is a generic select with a WHERE clause. It cannot be
// joined or filtered further.
type FilteredSelect struct {
	sql    string
	values []any
}

// SQL returns the text of the statement.
func (s FilteredSelect) SQL() string {
	return s.sql
}

// Values returns the placeholder values in order.
func (s FilteredSelect) Values() []any {
	return copyValues(s.values)
}

func (s FilteredSelect) parts() (string, []any) {
	return s.sql, s.values
}

// Selection is a generic select that can be run with [DB.Query]: a
// [SelectStatement] or a [FilteredSelect].
type Selection interface {
	SQL() string
	Values() []any
	parts() (string, []any)
}
