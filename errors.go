package korm

import (
	"errors"
	"strings"

	"github.com/mattn/go-sqlite3"

	"github.com/IgniparousTempest/korm/internal/errs"
)

type (
	// SchemaError is returned when a record type cannot be mapped to a
	// table.
	SchemaError = errs.SchemaError
	// UnsupportedDataTypeError is returned when no coder exists for a Go
	// type.
	UnsupportedDataTypeError = errs.UnsupportedDataTypeError
	// DatabaseError wraps a failure reported by SQLite with the SQL that
	// caused it.
	DatabaseError = errs.DatabaseError
	// DecodeError is returned when a stored value cannot be converted into
	// the destination type.
	DecodeError = errs.DecodeError
)

const noSuchTable = "no such table: "

// IsMissingTable reports whether err was caused by a statement naming a
// table that does not exist.
func IsMissingTable(err error) bool {
	_, ok := missingTable(err)
	return ok
}

// missingTable returns the table SQLite reported as missing.
func missingTable(err error) (string, bool) {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) || sqliteErr.Code != sqlite3.ErrError {
		return "", false
	}
	msg := sqliteErr.Error()
	i := strings.Index(msg, noSuchTable)
	if i < 0 {
		return "", false
	}
	return msg[i+len(noSuchTable):], true
}

// isMissingTable reports whether err says that table does not exist.
func isMissingTable(err error, table string) bool {
	missing, ok := missingTable(err)
	return ok && missing == table
}
