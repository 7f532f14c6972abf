package korm

import (
	"github.com/IgniparousTempest/korm/internal/query"
)

// Condition is a parameterised SQL predicate. Conditions are immutable:
// combining two returns a new one. The zero Condition is empty and matches
// every row where it is optional.
type Condition struct {
	sql    string
	values []any
}

// NewCondition builds a condition from raw SQL with one value per
// placeholder.
func NewCondition(sql string, values ...any) Condition {
	return Condition{sql: sql, values: copyValues(values)}
}

// SQL returns the text of the condition.
func (c Condition) SQL() string {
	return c.sql
}

// Values returns the placeholder values in order.
func (c Condition) Values() []any {
	return copyValues(c.values)
}

// IsZero reports whether the condition is empty.
func (c Condition) IsZero() bool {
	return c.sql == ""
}

// And joins the two conditions with AND. The combination is purely textual;
// use [Bracket] to group.
func (c Condition) And(other Condition) Condition {
	return c.join(" AND ", other)
}

// Or joins the two conditions with OR. The combination is purely textual;
// use [Bracket] to group.
func (c Condition) Or(other Condition) Condition {
	return c.join(" OR ", other)
}

func (c Condition) join(op string, other Condition) Condition {
	switch {
	case c.IsZero():
		return other
	case other.IsZero():
		return c
	}
	return Condition{
		sql:    c.sql + op + other.sql,
		values: concatValues(c.values, other.values),
	}
}

// Bracket wraps a condition in parentheses.
func Bracket(c Condition) Condition {
	if c.IsZero() {
		return c
	}
	return Condition{sql: "(" + c.sql + ")", values: c.values}
}

func (c Condition) clause() query.Clause {
	return query.Clause{SQL: c.sql, Values: c.values}
}

// Updater is a list of column assignments, optionally restricted to the rows
// matching a condition. Build one with [Column.Set].
type Updater struct {
	sql    string
	values []any
	cond   *Condition
}

// And appends the assignments of other. If both carry a condition, the one
// of other is kept.
func (u Updater) And(other Updater) Updater {
	joined := Updater{cond: u.cond}
	if other.cond != nil {
		joined.cond = other.cond
	}
	switch {
	case u.sql == "":
		joined.sql = other.sql
	case other.sql == "":
		joined.sql = u.sql
	default:
		joined.sql = u.sql + ", " + other.sql
	}
	joined.values = concatValues(u.values, other.values)
	return joined
}

// OnCondition restricts the update to the rows matching c, replacing any
// condition already attached.
func (u Updater) OnCondition(c Condition) Updater {
	u.cond = &c
	return u
}

// SQL returns the text of the assignments.
func (u Updater) SQL() string {
	return u.sql
}

// Values returns the values of the assignments in order.
func (u Updater) Values() []any {
	return copyValues(u.values)
}

// Condition returns the attached condition, if any.
func (u Updater) Condition() (Condition, bool) {
	if u.cond == nil {
		return Condition{}, false
	}
	return *u.cond, true
}

func (u Updater) clauses() (set, where query.Clause) {
	set = query.Clause{SQL: u.sql, Values: u.values}
	if u.cond != nil {
		where = u.cond.clause()
	}
	return set, where
}

func copyValues(values []any) []any {
	if len(values) == 0 {
		return nil
	}
	return append([]any(nil), values...)
}

func concatValues(a, b []any) []any {
	if len(a)+len(b) == 0 {
		return nil
	}
	out := make([]any, 0, len(a)+len(b))
	out = append(out, a...)
	return append(out, b...)
}
