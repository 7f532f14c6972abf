package korm

import (
	"context"
	"database/sql"
	"errors"
	"reflect"

	"github.com/rs/zerolog"

	"github.com/IgniparousTempest/korm/internal/coder"
	"github.com/IgniparousTempest/korm/internal/query"
	"github.com/IgniparousTempest/korm/internal/record"
	"github.com/IgniparousTempest/korm/internal/typeinfo"
)

// DB maps records onto the tables of a SQLite database. A DB is not safe for
// concurrent use; callers sharing one must synchronise.
type DB struct {
	// sqldb is the underlying database/sql DB object.
	sqldb *sql.DB
	// coders resolves the storage of every column and argument.
	coders *coder.Registry
	log    zerolog.Logger
}

// Option configures a [DB].
type Option func(*DB)

// WithLogger makes the DB log the statements it runs at debug level and the
// failures it returns at error level.
func WithLogger(log zerolog.Logger) Option {
	return func(db *DB) {
		db.log = log
	}
}

// NewDB creates a new [DB] from a [sql.DB] opened with the sqlite3 driver.
func NewDB(sqldb *sql.DB, opts ...Option) *DB {
	if sqldb == nil {
		return nil
	}
	db := &DB{
		sqldb:  sqldb,
		coders: coder.Default(),
		log:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(db)
	}
	return db
}

// PlainDB returns the underlying database object.
func (db *DB) PlainDB() *sql.DB {
	return db.sqldb
}

// Close closes the underlying database.
func (db *DB) Close() error {
	return db.sqldb.Close()
}

// CreateTable creates the table of record type T if it does not exist.
// record supplies the targets of any foreign keys. Calling [Insert] creates
// missing tables, so calling CreateTable is only needed to create a table
// up front.
func CreateTable[T any](ctx context.Context, db *DB, record T) error {
	info, err := infoOf[T]()
	if err != nil {
		return err
	}
	return db.createTable(orBackground(ctx), info, reflect.ValueOf(record))
}

func (db *DB) createTable(ctx context.Context, info *typeinfo.Info, record reflect.Value) error {
	stmt, err := query.CreateTable(info, record, db.coders)
	if err != nil {
		return err
	}
	if _, err := db.exec(ctx, stmt); err != nil {
		return db.fail("cannot create table", stmt, err)
	}
	return nil
}

// Insert inserts record and returns a copy of it. If the record holds an
// unassigned [PrimaryKeyAuto], the copy holds the key the database chose.
// The table is created if it does not exist.
func Insert[T any](ctx context.Context, db *DB, record T) (T, error) {
	var zero T
	ctx = orBackground(ctx)
	info, err := infoOf[T]()
	if err != nil {
		return zero, err
	}
	rv := reflect.ValueOf(&record).Elem()
	stmt, err := query.Insert(info, rv, db.coders)
	if err != nil {
		return zero, err
	}

	res, err := db.exec(ctx, stmt)
	if isMissingTable(err, info.Table) {
		db.log.Debug().Str("table", info.Table).Msg("creating missing table before insert")
		if err := db.createTable(ctx, info, rv); err != nil {
			return zero, err
		}
		res, err = db.exec(ctx, stmt)
	}
	if err != nil {
		return zero, db.fail("cannot insert row", stmt, err)
	}

	if c, ok := info.AutoKey(); ok && info.IsUnsetAutoKey(rv, c) {
		id, err := res.LastInsertId()
		if err != nil {
			return zero, db.fail("cannot read generated key", stmt, err)
		}
		if err := rv.Field(c.Index).Addr().Interface().(sql.Scanner).Scan(id); err != nil {
			return zero, err
		}
	}
	return record, nil
}

// Find returns the records of type T matching where. The zero [Condition]
// matches every record. A table that does not exist holds no records.
func Find[T any](ctx context.Context, db *DB, where Condition) ([]T, error) {
	ctx = orBackground(ctx)
	info, err := infoOf[T]()
	if err != nil {
		return nil, err
	}
	stmt, err := query.Select(info, where.clause(), db.coders)
	if err != nil {
		return nil, err
	}

	results := []T{}
	err = db.query(ctx, stmt, func(rows *sql.Rows) error {
		columns, err := rows.Columns()
		if err != nil {
			return err
		}
		for rows.Next() {
			values, err := scanRow(rows, len(columns))
			if err != nil {
				return err
			}
			v, err := record.Decode(info, db.coders, columns, values)
			if err != nil {
				return err
			}
			results = append(results, v.Interface().(T))
		}
		return nil
	})
	if isMissingTable(err, info.Table) {
		db.log.Debug().Str("table", info.Table).Msg("find on missing table")
		return []T{}, nil
	}
	if err != nil {
		return nil, db.fail("cannot find rows", stmt, err)
	}
	return results, nil
}

// FindAll returns every record of type T.
func FindAll[T any](ctx context.Context, db *DB) ([]T, error) {
	return Find[T](ctx, db, Condition{})
}

// Update applies u to the records of type T matching its condition, or to
// every record if it has none, and returns the number of rows changed. A
// table that does not exist has nothing to update.
func Update[T any](ctx context.Context, db *DB, u Updater) (int64, error) {
	ctx = orBackground(ctx)
	info, err := infoOf[T]()
	if err != nil {
		return 0, err
	}
	set, where := u.clauses()
	stmt, err := query.Update(info, set, where, db.coders)
	if err != nil {
		return 0, err
	}
	return db.execAffected(ctx, info, "cannot update rows", stmt)
}

// Delete removes the records of type T matching where and returns the
// number of rows removed. A table that does not exist has nothing to
// delete.
func Delete[T any](ctx context.Context, db *DB, where Condition) (int64, error) {
	ctx = orBackground(ctx)
	info, err := infoOf[T]()
	if err != nil {
		return 0, err
	}
	stmt, err := query.Delete(info, where.clause(), db.coders)
	if err != nil {
		return 0, err
	}
	return db.execAffected(ctx, info, "cannot delete rows", stmt)
}

// Drop drops the table of record type T if it exists.
func Drop[T any](ctx context.Context, db *DB) error {
	info, err := infoOf[T]()
	if err != nil {
		return err
	}
	stmt := query.DropTable(info)
	if _, err := db.exec(orBackground(ctx), stmt); err != nil {
		return db.fail("cannot drop table", stmt, err)
	}
	return nil
}

// Exec runs raw SQL and returns the number of rows affected.
func (db *DB) Exec(ctx context.Context, rawSQL string, args ...any) (int64, error) {
	stmt, err := db.rawStatement(rawSQL, args)
	if err != nil {
		return 0, err
	}
	res, err := db.exec(orBackground(ctx), stmt)
	if err != nil {
		return 0, db.fail("cannot run raw SQL", stmt, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, db.fail("cannot run raw SQL", stmt, err)
	}
	return n, nil
}

// QueryRaw runs a raw query and passes the rows to handle. The rows are
// closed once handle returns. handle must not use db.
func (db *DB) QueryRaw(ctx context.Context, rawSQL string, handle func(*sql.Rows) error, args ...any) error {
	stmt, err := db.rawStatement(rawSQL, args)
	if err != nil {
		return err
	}
	if err := db.query(orBackground(ctx), stmt, handle); err != nil {
		return db.fail("cannot run raw query", stmt, err)
	}
	return nil
}

// QueryTable runs a raw query and returns its rows as a [Table].
func (db *DB) QueryTable(ctx context.Context, rawSQL string, args ...any) (Table, error) {
	stmt, err := db.rawStatement(rawSQL, args)
	if err != nil {
		return nil, err
	}
	table, err := db.queryTable(orBackground(ctx), stmt)
	if err != nil {
		return nil, db.fail("cannot run raw query", stmt, err)
	}
	return table, nil
}

// Query runs a generic select. Selecting from a table that does not exist
// gives an empty result.
func (db *DB) Query(ctx context.Context, s Selection) (Table, error) {
	text, values := s.parts()
	args, err := query.EncodeValues(db.coders, values)
	if err != nil {
		return nil, err
	}
	stmt := query.Statement{SQL: text, Args: args}
	table, err := db.queryTable(orBackground(ctx), stmt)
	if missing, ok := missingTable(err); ok {
		db.log.Debug().Str("table", missing).Msg("query on missing table")
		return Table{}, nil
	}
	if err != nil {
		return nil, db.fail("cannot run query", stmt, err)
	}
	return table, nil
}

func (db *DB) queryTable(ctx context.Context, stmt query.Statement) (Table, error) {
	table := Table{}
	err := db.query(ctx, stmt, func(rows *sql.Rows) error {
		columns, err := rows.Columns()
		if err != nil {
			return err
		}
		types, err := rows.ColumnTypes()
		if err != nil {
			return err
		}
		declTypes := make([]string, len(types))
		for i, t := range types {
			declTypes[i] = t.DatabaseTypeName()
		}
		for rows.Next() {
			values, err := scanRow(rows, len(columns))
			if err != nil {
				return err
			}
			decoded, err := record.DecodeGeneric(columns, declTypes, values)
			if err != nil {
				return err
			}
			table = append(table, NewRow(columns, decoded))
		}
		return nil
	})
	return table, err
}

func (db *DB) rawStatement(rawSQL string, args []any) (query.Statement, error) {
	encoded, err := query.EncodeValues(db.coders, args)
	if err != nil {
		return query.Statement{}, err
	}
	return query.Statement{SQL: rawSQL, Args: encoded}, nil
}

// execAffected runs stmt and returns the rows it affected. A missing table
// affects nothing.
func (db *DB) execAffected(ctx context.Context, info *typeinfo.Info, msg string, stmt query.Statement) (int64, error) {
	res, err := db.exec(ctx, stmt)
	if isMissingTable(err, info.Table) {
		db.log.Debug().Str("table", info.Table).Msg("statement on missing table")
		return 0, nil
	}
	if err != nil {
		return 0, db.fail(msg, stmt, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, db.fail(msg, stmt, err)
	}
	return n, nil
}

func (db *DB) exec(ctx context.Context, stmt query.Statement) (sql.Result, error) {
	db.log.Debug().Str("sql", stmt.SQL).Int("args", len(stmt.Args)).Msg("exec")
	return db.sqldb.ExecContext(ctx, stmt.SQL, stmt.Args...)
}

// query runs stmt and hands the rows to handle. The rows are always closed.
func (db *DB) query(ctx context.Context, stmt query.Statement, handle func(*sql.Rows) error) error {
	db.log.Debug().Str("sql", stmt.SQL).Int("args", len(stmt.Args)).Msg("query")
	rows, err := db.sqldb.QueryContext(ctx, stmt.SQL, stmt.Args...)
	if err != nil {
		return err
	}
	defer rows.Close()
	if err := handle(rows); err != nil {
		return err
	}
	return rows.Err()
}

// fail logs err and returns it. Errors korm raises itself are returned as
// they are; failures of the database are wrapped in a *DatabaseError.
func (db *DB) fail(msg string, stmt query.Statement, err error) error {
	db.log.Error().Err(err).Str("sql", stmt.SQL).Msg(msg)
	var (
		decodeErr      *DecodeError
		unsupportedErr *UnsupportedDataTypeError
		databaseErr    *DatabaseError
	)
	if errors.As(err, &decodeErr) || errors.As(err, &unsupportedErr) || errors.As(err, &databaseErr) {
		return err
	}
	return &DatabaseError{Msg: msg, SQL: stmt.SQL, Err: err}
}

func scanRow(rows *sql.Rows, n int) ([]any, error) {
	values := make([]any, n)
	ptrs := make([]any, n)
	for i := range values {
		ptrs[i] = &values[i]
	}
	if err := rows.Scan(ptrs...); err != nil {
		return nil, err
	}
	return values, nil
}

// infoOf returns the reflected information of record type T.
func infoOf[T any]() (*typeinfo.Info, error) {
	t := reflect.TypeOf((*T)(nil)).Elem()
	if t.Kind() == reflect.Pointer {
		return nil, &SchemaError{Type: typeinfo.PrettyTypeName(t), Err: errors.New("record type must be a struct, not a pointer")}
	}
	return typeinfo.TypeInfo(t)
}

func orBackground(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}
