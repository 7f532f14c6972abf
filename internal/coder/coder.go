// Package coder maps Go types to SQLite storage types and converts values
// between the two representations.
package coder

import (
	"database/sql"
	"database/sql/driver"
	"fmt"
	"reflect"
	"sync"

	"github.com/IgniparousTempest/korm/internal/errs"
	"github.com/IgniparousTempest/korm/internal/typeinfo"
)

// Kind is the semantic type of a column, independent of how it is stored.
type Kind int

const (
	KindBool Kind = iota
	KindInt
	KindFloat
	KindText
	KindPrimaryKey
	KindPrimaryKeyAuto
	KindForeignKey
	KindCustom
)

func (k Kind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindText:
		return "text"
	case KindPrimaryKey:
		return "primary key"
	case KindPrimaryKeyAuto:
		return "primary key auto"
	case KindForeignKey:
		return "foreign key"
	case KindCustom:
		return "custom"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Storage types understood by SQLite.
const (
	Integer = "INTEGER"
	Real    = "REAL"
	Text    = "TEXT"
	Blob    = "BLOB"
)

// EncodeFunc turns a non-nil value of the coder's type into a driver value.
type EncodeFunc func(v reflect.Value) (any, error)

// DecodeFunc turns a non-NULL driver value into a value of the coder's type.
type DecodeFunc func(src any) (reflect.Value, error)

// Coder holds the storage type of a Go type together with its conversions.
type Coder struct {
	Kind        Kind
	Type        reflect.Type
	StorageType string

	encode EncodeFunc
	decode DecodeFunc
}

// Encode converts v, which must have the coder's type, into a value that can
// be bound as a statement argument.
func (c Coder) Encode(v reflect.Value) (any, error) {
	return c.encode(v)
}

// Decode converts a non-NULL value read from the database into the coder's
// type.
func (c Coder) Decode(src any) (reflect.Value, error) {
	v, err := c.decode(src)
	if err != nil {
		return reflect.Value{}, err
	}
	if v.Type() != c.Type {
		if !v.Type().ConvertibleTo(c.Type) {
			return reflect.Value{}, fmt.Errorf("decoder returned %s, need %s", v.Type(), c.Type)
		}
		v = v.Convert(c.Type)
	}
	return v, nil
}

// Registry resolves coders for Go types. Custom registrations take
// precedence over the built-in coders.
type Registry struct {
	mu     sync.RWMutex
	custom map[reflect.Type]Coder
}

// NewRegistry returns an empty registry that knows only the built-in coders.
func NewRegistry() *Registry {
	return &Registry{custom: make(map[reflect.Type]Coder)}
}

var (
	defaultRegistry *Registry
	once            sync.Once
)

// Default returns the process wide registry.
func Default() *Registry {
	once.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

// Register installs a custom coder for t. A later registration for the same
// type replaces an earlier one.
func (r *Registry) Register(t reflect.Type, storageType string, encode EncodeFunc, decode DecodeFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.custom[t] = Coder{
		Kind:        KindCustom,
		Type:        t,
		StorageType: storageType,
		encode:      encode,
		decode:      decode,
	}
}

// Resolve returns the coder for t. Pointer types resolve to the coder of
// their element type.
func (r *Registry) Resolve(t reflect.Type) (Coder, error) {
	if t == nil {
		return Coder{}, &errs.UnsupportedDataTypeError{Type: "nil"}
	}
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	r.mu.RLock()
	c, ok := r.custom[t]
	r.mu.RUnlock()
	if ok {
		return c, nil
	}

	if t.Implements(keyInterface) {
		return r.keyCoder(t)
	}
	if c, ok := builtin(t); ok {
		return c, nil
	}
	return Coder{}, &errs.UnsupportedDataTypeError{Type: typeinfo.PrettyTypeName(t)}
}

// Encode converts an arbitrary value into a driver value. nil and nil
// pointers encode as NULL.
func (r *Registry) Encode(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil, nil
		}
		rv = rv.Elem()
	}
	c, err := r.Resolve(rv.Type())
	if err != nil {
		return nil, err
	}
	return c.Encode(rv)
}

var (
	keyInterface     = reflect.TypeOf((*typeinfo.Key)(nil)).Elem()
	valuerInterface  = reflect.TypeOf((*driver.Valuer)(nil)).Elem()
	scannerInterface = reflect.TypeOf((*sql.Scanner)(nil)).Elem()
)

// keyCoder builds the coder of a key wrapper type. Keys are stored as the
// value they wrap and convert themselves through driver.Valuer and
// sql.Scanner.
func (r *Registry) keyCoder(t reflect.Type) (Coder, error) {
	key := reflect.Zero(t).Interface().(typeinfo.Key)

	var kind Kind
	switch key.KeyRole() {
	case typeinfo.RolePrimary:
		kind = KindPrimaryKey
	case typeinfo.RolePrimaryAuto:
		kind = KindPrimaryKeyAuto
	case typeinfo.RoleForeign:
		kind = KindForeignKey
	default:
		return Coder{}, &errs.UnsupportedDataTypeError{Type: typeinfo.PrettyTypeName(t)}
	}
	if !t.Implements(valuerInterface) || !reflect.PointerTo(t).Implements(scannerInterface) {
		return Coder{}, &errs.UnsupportedDataTypeError{Type: typeinfo.PrettyTypeName(t)}
	}

	storageType := Integer
	if kind != KindPrimaryKeyAuto {
		inner, err := r.Resolve(key.KeyType())
		if err != nil {
			return Coder{}, err
		}
		storageType = inner.StorageType
	}

	return Coder{
		Kind:        kind,
		Type:        t,
		StorageType: storageType,
		encode: func(v reflect.Value) (any, error) {
			return v.Interface().(driver.Valuer).Value()
		},
		decode: func(src any) (reflect.Value, error) {
			p := reflect.New(t)
			if err := p.Interface().(sql.Scanner).Scan(src); err != nil {
				return reflect.Value{}, err
			}
			return p.Elem(), nil
		},
	}, nil
}

// builtin returns the coder for the basic kinds.
func builtin(t reflect.Type) (Coder, bool) {
	c := Coder{Type: t}
	switch t.Kind() {
	case reflect.Bool:
		c.Kind, c.StorageType = KindBool, Integer
		c.encode = func(v reflect.Value) (any, error) {
			if v.Bool() {
				return int64(1), nil
			}
			return int64(0), nil
		}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		c.Kind, c.StorageType = KindInt, Integer
		c.encode = func(v reflect.Value) (any, error) {
			return v.Int(), nil
		}
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		c.Kind, c.StorageType = KindInt, Integer
		c.encode = func(v reflect.Value) (any, error) {
			u := v.Uint()
			if u > 1<<63-1 {
				return nil, fmt.Errorf("value %d overflows INTEGER", u)
			}
			return int64(u), nil
		}
	case reflect.Float32, reflect.Float64:
		c.Kind, c.StorageType = KindFloat, Real
		c.encode = func(v reflect.Value) (any, error) {
			return v.Float(), nil
		}
	case reflect.String:
		c.Kind, c.StorageType = KindText, Text
		c.encode = func(v reflect.Value) (any, error) {
			return v.String(), nil
		}
	default:
		return Coder{}, false
	}
	c.decode = func(src any) (reflect.Value, error) {
		dst := reflect.New(t).Elem()
		if err := Assign(dst, src); err != nil {
			return reflect.Value{}, err
		}
		return dst, nil
	}
	return c, true
}
