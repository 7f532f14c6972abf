package query

import (
	"bytes"
	"strings"
)

// QuoteIdent quotes an SQL identifier. Embedded double quotes are doubled.
func QuoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// Qualify returns the quoted column name prefixed with its quoted table.
func Qualify(table, column string) string {
	return QuoteIdent(table) + "." + QuoteIdent(column)
}

// sqlBuilder is used to generate SQL string piece by piece using the struct
// methods.
type sqlBuilder struct {
	buf bytes.Buffer
}

// writeColumnList writes the quoted column names in brackets.
func (b *sqlBuilder) writeColumnList(columns []string) {
	b.buf.WriteString("(")
	b.writeCommaSeparatedList(columns, func(_ int, column string) string {
		return QuoteIdent(column)
	})
	b.buf.WriteString(")")
}

// writeInsert writes the column list and placeholders of an INSERT
// statement.
func (b *sqlBuilder) writeInsert(columns []string) {
	if len(columns) == 0 {
		b.buf.WriteString(" DEFAULT VALUES")
		return
	}
	b.buf.WriteString(" ")
	b.writeColumnList(columns)
	b.buf.WriteString(" VALUES (")
	b.writeCommaSeparatedList(columns, func(int, string) string {
		return "?"
	})
	b.buf.WriteString(")")
}

// writeWhere writes a WHERE clause when the condition is not empty.
func (b *sqlBuilder) writeWhere(where Clause) {
	if where.IsZero() {
		return
	}
	b.buf.WriteString(" WHERE ")
	b.buf.WriteString(where.SQL)
}

// writeCommaSeparatedList writes out the provided list using the writer to
// write each element into the SQL.
func (b *sqlBuilder) writeCommaSeparatedList(list []string, writer func(i int, s string) string) {
	for i, s := range list {
		if i != 0 {
			b.buf.WriteString(", ")
		}
		b.buf.WriteString(writer(i, s))
	}
}

// write writes the SQL to the sqlBuilder.
func (b *sqlBuilder) write(sql ...string) {
	for _, s := range sql {
		b.buf.WriteString(s)
	}
}

// getSQL returns the generated SQL string
func (b *sqlBuilder) getSQL() string {
	return b.buf.String()
}
