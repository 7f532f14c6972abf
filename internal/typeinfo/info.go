package typeinfo

import (
	"reflect"

	"github.com/pkg/errors"
)

// Role is the part a column plays in the keys of its table.
type Role int

const (
	RoleNone Role = iota
	RolePrimary
	RolePrimaryAuto
	RoleForeign
)

func (r Role) String() string {
	switch r {
	case RolePrimary:
		return "primary"
	case RolePrimaryAuto:
		return "primary-auto"
	case RoleForeign:
		return "foreign"
	default:
		return "none"
	}
}

// Key is implemented by the key wrapper types. A field whose type implements
// Key takes the role it reports.
type Key interface {
	KeyRole() Role
	// KeyType is the type of the wrapped key value, which decides the
	// storage type of the column.
	KeyType() reflect.Type
}

// AutoKey is implemented by keys that the store assigns on insert.
type AutoKey interface {
	Key
	IsSet() bool
}

// Reference is implemented by foreign keys that know the column they point
// at.
type Reference interface {
	Target() (table, column string)
}

var (
	keyInterface     = reflect.TypeOf((*Key)(nil)).Elem()
	autoKeyInterface = reflect.TypeOf((*AutoKey)(nil)).Elem()
)

// Column describes a single column of a record type.
type Column struct {
	// Name is the column name taken from the "db" tag.
	Name string

	// FieldName is the name of the struct field.
	FieldName string

	// Index of the field in the struct.
	Index int

	// Type is the semantic type of the column: the field type with a single
	// level of pointer removed.
	Type reflect.Type

	// Nullable is true when the field is a pointer and may hold NULL.
	Nullable bool

	Role Role
}

// Info represents reflected information about a record type.
type Info struct {
	Type reflect.Type

	// Table is the name of the table the type maps to.
	Table string

	// Columns in ascending name order.
	Columns []Column

	byName map[string]int
}

// Column returns the column with the given name.
func (info *Info) Column(name string) (Column, bool) {
	i, ok := info.byName[name]
	if !ok {
		return Column{}, false
	}
	return info.Columns[i], true
}

// FieldType returns the declared Go type of the field behind a column.
func (info *Info) FieldType(c Column) reflect.Type {
	return info.Type.Field(c.Index).Type
}

// AutoKey returns the auto primary key column, if the type has one.
func (info *Info) AutoKey() (Column, bool) {
	for _, c := range info.Columns {
		if c.Role == RolePrimaryAuto {
			return c, true
		}
	}
	return Column{}, false
}

// Keys returns the columns with the given role, in column order.
func (info *Info) Keys(roles ...Role) []Column {
	var cols []Column
	for _, c := range info.Columns {
		for _, r := range roles {
			if c.Role == r {
				cols = append(cols, c)
				break
			}
		}
	}
	return cols
}

// IsUnsetAutoKey reports whether the column holds an auto primary key that
// the store has not assigned yet.
func (info *Info) IsUnsetAutoKey(record reflect.Value, c Column) bool {
	if c.Role != RolePrimaryAuto {
		return false
	}
	fv := reflect.Indirect(record).Field(c.Index)
	if !fv.Type().Implements(autoKeyInterface) {
		return false
	}
	return !fv.Interface().(AutoKey).IsSet()
}

// New builds a record from a column name to value map. values must contain
// exactly the columns of the type, each holding a value assignable to the
// field behind it. The returned value is addressable.
func (info *Info) New(values map[string]reflect.Value) (reflect.Value, error) {
	if len(values) != len(info.Columns) {
		return reflect.Value{}, errors.Errorf("need %d column values for %s, got %d",
			len(info.Columns), info.Type.Name(), len(values))
	}
	record := reflect.New(info.Type).Elem()
	for name, v := range values {
		c, ok := info.Column(name)
		if !ok {
			return reflect.Value{}, errors.Errorf("type %s has no column %q", info.Type.Name(), name)
		}
		field := record.Field(c.Index)
		if !v.IsValid() {
			continue
		}
		if !v.Type().AssignableTo(field.Type()) {
			return reflect.Value{}, errors.Errorf("cannot assign %s to column %q of type %s",
				v.Type(), name, field.Type())
		}
		field.Set(v)
	}
	return record, nil
}
