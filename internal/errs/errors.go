// Package errs holds the error types shared by the korm internals. The root
// package re-exports each of them so callers can match with errors.As without
// importing anything from internal/.
package errs

import (
	"fmt"
	"strings"
)

// SchemaError is returned when a record type cannot be mapped to a table.
type SchemaError struct {
	// Type is the name of the Go type being reflected.
	Type string
	Err  error
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("cannot map type %s to a table: %s", e.Type, e.Err)
}

func (e *SchemaError) Unwrap() error {
	return e.Err
}

// UnsupportedDataTypeError is returned when no coder exists for a Go type.
type UnsupportedDataTypeError struct {
	Type string
}

func (e *UnsupportedDataTypeError) Error() string {
	return fmt.Sprintf("unsupported data type %s: no coder registered", e.Type)
}

// DatabaseError wraps a failure reported by the storage backend together
// with the SQL that caused it.
type DatabaseError struct {
	Msg string
	SQL string
	Err error
}

func (e *DatabaseError) Error() string {
	var buf strings.Builder
	buf.WriteString(e.Msg)
	if e.Err != nil {
		buf.WriteString(": ")
		buf.WriteString(e.Err.Error())
	}
	if e.SQL != "" {
		buf.WriteString(" (sql: ")
		buf.WriteString(fmt.Sprintf("%q", e.SQL))
		buf.WriteString(")")
	}
	return buf.String()
}

func (e *DatabaseError) Unwrap() error {
	return e.Err
}

// DecodeError is returned when a stored value cannot be converted into the
// destination Go type.
type DecodeError struct {
	Column string
	Type   string
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("cannot decode column %q into %s: %s", e.Column, e.Type, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
