package typeinfo

import (
	"reflect"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/pkg/errors"

	"github.com/IgniparousTempest/korm/internal/errs"
)

var cacheMutex sync.RWMutex
var cache = make(map[reflect.Type]*Info)

// GetTypeInfo returns the Info of the type of value, generating and caching
// as required. Pointers are dereferenced.
func GetTypeInfo(value any) (*Info, error) {
	if value == (any)(nil) {
		return nil, &errs.SchemaError{Type: "nil", Err: errors.New("cannot reflect nil value")}
	}
	return TypeInfo(reflect.TypeOf(value))
}

// TypeInfo returns the Info of a record type, generating and caching as
// required. Pointers are dereferenced.
func TypeInfo(t reflect.Type) (*Info, error) {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	cacheMutex.RLock()
	info, found := cache[t]
	cacheMutex.RUnlock()
	if found {
		return info, nil
	}

	// Concurrent first lookups may generate the same Info more than once.
	info, err := generate(t)
	if err != nil {
		return nil, &errs.SchemaError{Type: PrettyTypeName(t), Err: err}
	}

	cacheMutex.Lock()
	cache[t] = info
	cacheMutex.Unlock()

	return info, nil
}

// generate produces and returns reflection information for a record type.
func generate(t reflect.Type) (*Info, error) {
	if t.Kind() != reflect.Struct {
		return nil, errors.Errorf("need struct, got %s", t.Kind())
	}
	if t.Name() == "" {
		return nil, errors.New("cannot use anonymous struct")
	}

	info := Info{
		Type:   t,
		Table:  tableName(t),
		byName: make(map[string]int),
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		// Fields without a "db" tag are not columns.
		tag := field.Tag.Get("db")
		if tag == "" {
			continue
		}
		name, err := parseTag(tag)
		if err != nil {
			return nil, errors.Wrapf(err, "field %s", field.Name)
		}
		if !field.IsExported() {
			return nil, errors.Errorf("field %s with db tag %q is not exported", field.Name, name)
		}
		if _, ok := info.byName[name]; ok {
			return nil, errors.Errorf("db tag %q appears on more than one field", name)
		}

		c := Column{
			Name:      name,
			FieldName: field.Name,
			Index:     i,
			Type:      field.Type,
		}
		if c.Type.Kind() == reflect.Pointer {
			c.Type = c.Type.Elem()
			c.Nullable = true
		}
		if c.Type.Implements(keyInterface) {
			c.Role = reflect.Zero(c.Type).Interface().(Key).KeyRole()
		}
		if c.Nullable && (c.Role == RolePrimary || c.Role == RolePrimaryAuto) {
			return nil, errors.Errorf("primary key column %q cannot be nullable", name)
		}

		info.byName[name] = len(info.Columns)
		info.Columns = append(info.Columns, c)
	}

	if len(info.Columns) == 0 {
		return nil, errors.New("no exported fields with a db tag")
	}

	sort.Slice(info.Columns, func(i, j int) bool {
		return info.Columns[i].Name < info.Columns[j].Name
	})
	for i, c := range info.Columns {
		info.byName[c.Name] = i
	}

	autos := len(info.Keys(RolePrimaryAuto))
	if autos > 1 {
		return nil, errors.New("more than one auto primary key")
	}
	if autos == 1 && len(info.Keys(RolePrimary)) > 0 {
		return nil, errors.New("auto primary key cannot be combined with other primary keys")
	}

	return &info, nil
}

// tabler is implemented by record types that choose their own table name.
type tabler interface {
	TableName() string
}

var tablerInterface = reflect.TypeOf((*tabler)(nil)).Elem()

// tableName returns the table name of a struct type: its simple name without
// generic instantiation arguments, unless the type implements tabler.
func tableName(t reflect.Type) string {
	if t.Implements(tablerInterface) {
		if name := reflect.Zero(t).Interface().(tabler).TableName(); name != "" {
			return name
		}
	}
	name := t.Name()
	if i := strings.IndexByte(name, '['); i >= 0 {
		name = name[:i]
	}
	return name
}

// This expression matches the column names that can appear unquoted in the
// SQL we generate.
var validColNameRx = regexp.MustCompile(`^([a-zA-Z_])+([a-zA-Z_0-9])*$`)

// parseTag parses the input tag string and returns the column name. The
// "omitempty" option is accepted and has no effect.
func parseTag(tag string) (string, error) {
	options := strings.Split(tag, ",")

	// Refuse to parse if there are more than 2 items.
	if len(options) > 2 {
		return "", errors.New("too many options in 'db' tag")
	}
	if len(options) == 2 && strings.ToLower(options[1]) != "omitempty" {
		return "", errors.Errorf("unexpected tag value %q", options[1])
	}

	name := options[0]
	if len(name) == 0 {
		return "", errors.New("empty db tag")
	}
	if !validColNameRx.MatchString(name) {
		return "", errors.Errorf("invalid column name %q in 'db' tag", name)
	}

	return name, nil
}

// PrettyTypeName returns a printable name for a type.
func PrettyTypeName(t reflect.Type) string {
	if t == nil {
		return "nil"
	}
	return t.String()
}
