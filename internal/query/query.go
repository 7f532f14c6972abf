// Package query compiles the statements korm runs against SQLite. Every
// function is stateless: it takes the reflected record type, the values to
// bind and the coder registry, and returns SQL with positional arguments.
package query

import (
	"fmt"
	"reflect"

	"github.com/IgniparousTempest/korm/internal/coder"
	"github.com/IgniparousTempest/korm/internal/errs"
	"github.com/IgniparousTempest/korm/internal/typeinfo"
)

// Statement is a compiled SQL statement with its encoded arguments.
type Statement struct {
	SQL  string
	Args []any
}

// Clause is an SQL fragment, such as a condition or a list of assignments,
// together with the unencoded values of its placeholders in order.
type Clause struct {
	SQL    string
	Values []any
}

// IsZero reports whether the clause is empty.
func (c Clause) IsZero() bool {
	return c.SQL == ""
}

// CreateTable returns the statement creating the table of info. record is
// an instance of the type, used to read the targets of foreign keys.
func CreateTable(info *typeinfo.Info, record reflect.Value, reg *coder.Registry) (Statement, error) {
	b := sqlBuilder{}
	b.write("CREATE TABLE IF NOT EXISTS ", QuoteIdent(info.Table), " (")
	for i, c := range info.Columns {
		cd, err := reg.Resolve(c.Type)
		if err != nil {
			return Statement{}, err
		}
		if i != 0 {
			b.write(", ")
		}
		b.write(QuoteIdent(c.Name), " ", cd.StorageType)
		if !c.Nullable {
			b.write(" NOT NULL")
		}
	}

	if primaries := info.Keys(typeinfo.RolePrimary, typeinfo.RolePrimaryAuto); len(primaries) > 0 {
		b.write(", PRIMARY KEY")
		b.writeColumnList(columnNames(primaries))
	}

	if foreigns := info.Keys(typeinfo.RoleForeign); len(foreigns) > 0 {
		table, targets, err := foreignTargets(info, record, foreigns)
		if err != nil {
			return Statement{}, &errs.SchemaError{Type: typeinfo.PrettyTypeName(info.Type), Err: err}
		}
		b.write(", FOREIGN KEY")
		b.writeColumnList(columnNames(foreigns))
		b.write(" REFERENCES ", QuoteIdent(table))
		b.writeColumnList(targets)
		b.write(" ON UPDATE CASCADE")
	}
	b.write(")")

	return Statement{SQL: b.getSQL()}, nil
}

// foreignTargets reads the referenced table and columns from the foreign
// key fields of record. All of them must point at the same table.
func foreignTargets(info *typeinfo.Info, record reflect.Value, foreigns []typeinfo.Column) (string, []string, error) {
	record = reflect.Indirect(record)
	var table string
	targets := make([]string, 0, len(foreigns))
	for _, c := range foreigns {
		fv := reflect.Indirect(record.Field(c.Index))
		var ref typeinfo.Reference
		if fv.IsValid() {
			ref, _ = fv.Interface().(typeinfo.Reference)
		}
		if ref == nil {
			return "", nil, fmt.Errorf("foreign key %q has no reference to create the table from", c.Name)
		}
		t, col := ref.Target()
		if t == "" || col == "" {
			return "", nil, fmt.Errorf("foreign key %q has no reference to create the table from", c.Name)
		}
		if table == "" {
			table = t
		} else if t != table {
			return "", nil, fmt.Errorf("composite foreign keys need to reference the same table, got %q and %q", table, t)
		}
		targets = append(targets, col)
	}
	return table, targets, nil
}

// Insert returns the statement inserting record. Auto primary keys that
// have not been assigned are left for the database to fill in.
func Insert(info *typeinfo.Info, record reflect.Value, reg *coder.Registry) (Statement, error) {
	record = reflect.Indirect(record)
	var columns []string
	var args []any
	for _, c := range info.Columns {
		if info.IsUnsetAutoKey(record, c) {
			continue
		}
		arg, err := reg.Encode(record.Field(c.Index).Interface())
		if err != nil {
			return Statement{}, err
		}
		columns = append(columns, c.Name)
		args = append(args, arg)
	}

	b := sqlBuilder{}
	b.write("INSERT INTO ", QuoteIdent(info.Table))
	b.writeInsert(columns)
	return Statement{SQL: b.getSQL(), Args: args}, nil
}

// Select returns the statement reading every column of the rows matching
// where. An empty where selects all rows.
func Select(info *typeinfo.Info, where Clause, reg *coder.Registry) (Statement, error) {
	args, err := EncodeValues(reg, where.Values)
	if err != nil {
		return Statement{}, err
	}
	b := sqlBuilder{}
	b.write("SELECT * FROM ", QuoteIdent(info.Table))
	b.writeWhere(where)
	return Statement{SQL: b.getSQL(), Args: args}, nil
}

// Update returns the statement applying the assignments in set to the rows
// matching where. The values of set are bound before those of where.
func Update(info *typeinfo.Info, set, where Clause, reg *coder.Registry) (Statement, error) {
	if set.IsZero() {
		return Statement{}, fmt.Errorf("cannot update %s with no assignments", info.Table)
	}
	args, err := EncodeValues(reg, append(append([]any{}, set.Values...), where.Values...))
	if err != nil {
		return Statement{}, err
	}
	b := sqlBuilder{}
	b.write("UPDATE ", QuoteIdent(info.Table), " SET ", set.SQL)
	b.writeWhere(where)
	return Statement{SQL: b.getSQL(), Args: args}, nil
}

// Delete returns the statement deleting the rows matching where.
func Delete(info *typeinfo.Info, where Clause, reg *coder.Registry) (Statement, error) {
	if where.IsZero() {
		return Statement{}, fmt.Errorf("cannot delete from %s without a condition", info.Table)
	}
	args, err := EncodeValues(reg, where.Values)
	if err != nil {
		return Statement{}, err
	}
	b := sqlBuilder{}
	b.write("DELETE FROM ", QuoteIdent(info.Table))
	b.writeWhere(where)
	return Statement{SQL: b.getSQL(), Args: args}, nil
}

// DropTable returns the statement dropping the table of info.
func DropTable(info *typeinfo.Info) Statement {
	return Statement{SQL: "DROP TABLE IF EXISTS " + QuoteIdent(info.Table)}
}

// EncodeValues encodes placeholder values for binding.
func EncodeValues(reg *coder.Registry, values []any) ([]any, error) {
	if len(values) == 0 {
		return nil, nil
	}
	args := make([]any, len(values))
	for i, v := range values {
		arg, err := reg.Encode(v)
		if err != nil {
			return nil, err
		}
		args[i] = arg
	}
	return args, nil
}

func columnNames(columns []typeinfo.Column) []string {
	names := make([]string, len(columns))
	for i, c := range columns {
		names[i] = c.Name
	}
	return names
}
