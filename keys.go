package korm

import (
	"database/sql/driver"
	"fmt"
	"reflect"

	"github.com/IgniparousTempest/korm/internal/coder"
	"github.com/IgniparousTempest/korm/internal/typeinfo"
)

// KeyType is the set of types a [PrimaryKey] or [ForeignKey] may wrap.
type KeyType interface {
	~int | ~int32 | ~int64 | ~float32 | ~float64 | ~string
}

// Role is the part a column plays in the keys of its table.
type Role = typeinfo.Role

const (
	RoleNone        = typeinfo.RoleNone
	RolePrimary     = typeinfo.RolePrimary
	RolePrimaryAuto = typeinfo.RolePrimaryAuto
	RoleForeign     = typeinfo.RoleForeign
)

// PrimaryKey marks a column as part of the primary key of its table. The key
// is chosen by the caller; several PrimaryKey fields form a composite key.
//
//	type Enrolment struct {
//		Course  korm.PrimaryKey[string] `db:"course"`
//		Student korm.PrimaryKey[int]    `db:"student"`
//	}
type PrimaryKey[T KeyType] struct {
	Key T
}

func (PrimaryKey[T]) KeyRole() Role {
	return typeinfo.RolePrimary
}

func (PrimaryKey[T]) KeyType() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// Value implements [driver.Valuer].
func (k PrimaryKey[T]) Value() (driver.Value, error) {
	return coder.Default().Encode(k.Key)
}

// Scan implements [sql.Scanner].
func (k *PrimaryKey[T]) Scan(src any) error {
	return scanKey(&k.Key, src)
}

func (k PrimaryKey[T]) String() string {
	return fmt.Sprintf("PK(%v)", k.Key)
}

// PrimaryKeyAuto is an integer primary key assigned by the database when the
// record is inserted. A table may have at most one, and no other primary
// key alongside it.
type PrimaryKeyAuto struct {
	id  int64
	set bool
}

// AutoKey returns a key that has not been assigned yet. Inserting a record
// holding it lets the database choose the key.
func AutoKey() PrimaryKeyAuto {
	return PrimaryKeyAuto{}
}

// AutoKeyOf returns an assigned key.
func AutoKeyOf(id int64) PrimaryKeyAuto {
	return PrimaryKeyAuto{id: id, set: true}
}

// ID returns the key and whether it has been assigned.
func (k PrimaryKeyAuto) ID() (int64, bool) {
	return k.id, k.set
}

// IsSet reports whether the key has been assigned.
func (k PrimaryKeyAuto) IsSet() bool {
	return k.set
}

// Int64 returns the key, or 0 if it has not been assigned.
func (k PrimaryKeyAuto) Int64() int64 {
	return k.id
}

func (PrimaryKeyAuto) KeyRole() Role {
	return typeinfo.RolePrimaryAuto
}

func (PrimaryKeyAuto) KeyType() reflect.Type {
	return reflect.TypeOf(int64(0))
}

// Value implements [driver.Valuer]. An unassigned key is NULL.
func (k PrimaryKeyAuto) Value() (driver.Value, error) {
	if !k.set {
		return nil, nil
	}
	return k.id, nil
}

// Scan implements [sql.Scanner].
func (k *PrimaryKeyAuto) Scan(src any) error {
	if src == nil {
		*k = PrimaryKeyAuto{}
		return nil
	}
	var id int64
	if err := scanKey(&id, src); err != nil {
		return err
	}
	*k = AutoKeyOf(id)
	return nil
}

func (k PrimaryKeyAuto) String() string {
	if !k.set {
		return "PK(unset)"
	}
	return fmt.Sprintf("PK(%d)", k.id)
}

// ForeignKey marks a column as referencing a column of another table. Only
// a foreign key built with [References] knows its target, which is what
// CREATE TABLE needs; keys read back from the database carry only Key.
type ForeignKey[T KeyType] struct {
	Key T

	table, column string
}

// References returns a foreign key holding key that points at col.
func References[T KeyType](col ColumnRef, key T) ForeignKey[T] {
	return ForeignKey[T]{Key: key, table: col.Table(), column: col.Name()}
}

// Target returns the referenced table and column. Both are empty if the key
// was not built with [References].
func (k ForeignKey[T]) Target() (table, column string) {
	return k.table, k.column
}

// Equal reports whether both foreign keys hold the same key, whatever they
// point at.
func (k ForeignKey[T]) Equal(other ForeignKey[T]) bool {
	return k.Key == other.Key
}

func (ForeignKey[T]) KeyRole() Role {
	return typeinfo.RoleForeign
}

func (ForeignKey[T]) KeyType() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// Value implements [driver.Valuer].
func (k ForeignKey[T]) Value() (driver.Value, error) {
	return coder.Default().Encode(k.Key)
}

// Scan implements [sql.Scanner].
func (k *ForeignKey[T]) Scan(src any) error {
	return scanKey(&k.Key, src)
}

func (k ForeignKey[T]) String() string {
	return fmt.Sprintf("FK(%v)", k.Key)
}

// scanKey decodes src into the value dst points at using the coder
// registered for its type.
func scanKey(dst any, src any) error {
	v := reflect.ValueOf(dst).Elem()
	if src == nil {
		return fmt.Errorf("cannot scan NULL into key of type %s", v.Type())
	}
	c, err := coder.Default().Resolve(v.Type())
	if err != nil {
		return err
	}
	decoded, err := c.Decode(src)
	if err != nil {
		return err
	}
	v.Set(decoded)
	return nil
}
