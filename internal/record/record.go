// Package record turns rows read from SQLite back into Go values, either
// typed records or generic rows keyed by column label.
package record

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/IgniparousTempest/korm/internal/coder"
	"github.com/IgniparousTempest/korm/internal/errs"
	"github.com/IgniparousTempest/korm/internal/typeinfo"
)

// Decode builds a record of the type described by info from a row. columns
// holds the row's column labels and values the matching driver values.
// Every column of the type must be present; extra columns are ignored.
func Decode(info *typeinfo.Info, reg *coder.Registry, columns []string, values []any) (reflect.Value, error) {
	if len(columns) != len(values) {
		return reflect.Value{}, fmt.Errorf("internal error: %d column labels for %d values", len(columns), len(values))
	}
	index := make(map[string]int, len(columns))
	for i, name := range columns {
		if _, ok := index[name]; !ok {
			index[name] = i
		}
	}

	fields := make(map[string]reflect.Value, len(info.Columns))
	for _, c := range info.Columns {
		i, ok := index[c.Name]
		if !ok {
			return reflect.Value{}, decodeError(c, info, errors.New("column missing from result"))
		}
		src := values[i]
		if src == nil {
			if !c.Nullable {
				return reflect.Value{}, decodeError(c, info, fmt.Errorf("NULL value for non-nullable field %s", c.FieldName))
			}
			fields[c.Name] = reflect.Value{}
			continue
		}
		cd, err := reg.Resolve(c.Type)
		if err != nil {
			return reflect.Value{}, err
		}
		v, err := cd.Decode(src)
		if err != nil {
			return reflect.Value{}, decodeError(c, info, err)
		}
		if c.Nullable {
			p := reflect.New(c.Type)
			p.Elem().Set(v)
			v = p
		}
		fields[c.Name] = v
	}
	return info.New(fields)
}

func decodeError(c typeinfo.Column, info *typeinfo.Info, err error) error {
	return &errs.DecodeError{
		Column: c.Name,
		Type:   typeinfo.PrettyTypeName(info.FieldType(c)),
		Err:    err,
	}
}

// DecodeGeneric converts the driver values of a row into the Go types
// implied by the declared column types. Integer types become int64, floating
// point types float64 and character types string. An empty declared type,
// as reported for expressions, keeps the value the driver produced. NULL
// stays nil.
func DecodeGeneric(columns, declTypes []string, values []any) ([]any, error) {
	if len(columns) != len(values) || len(declTypes) != len(values) {
		return nil, fmt.Errorf("internal error: %d column labels and %d types for %d values",
			len(columns), len(declTypes), len(values))
	}
	out := make([]any, len(values))
	for i, src := range values {
		if src == nil {
			continue
		}
		v, err := decodeDeclared(declTypes[i], src)
		if err != nil {
			return nil, &errs.DecodeError{Column: columns[i], Type: declTypes[i], Err: err}
		}
		out[i] = v
	}
	return out, nil
}

func decodeDeclared(declType string, src any) (any, error) {
	var dst reflect.Value
	switch storageClass(declType) {
	case "":
		if b, ok := src.([]byte); ok {
			return append([]byte(nil), b...), nil
		}
		return src, nil
	case coder.Integer:
		dst = reflect.New(reflect.TypeOf(int64(0))).Elem()
	case coder.Real:
		dst = reflect.New(reflect.TypeOf(float64(0))).Elem()
	case coder.Text:
		dst = reflect.New(reflect.TypeOf("")).Elem()
	default:
		return nil, fmt.Errorf("unknown SQL type %q", declType)
	}
	if err := coder.Assign(dst, src); err != nil {
		return nil, err
	}
	return dst.Interface(), nil
}

// storageClass maps a declared column type onto the storage type korm
// decodes it as. It returns "" for an empty declared type and "?" for types
// it does not know.
func storageClass(declType string) string {
	t := strings.ToUpper(strings.TrimSpace(declType))
	if i := strings.IndexByte(t, '('); i >= 0 {
		t = strings.TrimSpace(t[:i])
	}
	switch t {
	case "":
		return ""
	case "INT", "INTEGER":
		return coder.Integer
	case "FLOAT", "REAL", "DOUBLE":
		return coder.Real
	case "VARCHAR", "TEXT", "CHAR":
		return coder.Text
	}
	return "?"
}
