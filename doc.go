/*
Package korm stores Go structs in SQLite tables and reads them back.

A record type is a struct whose exported fields carry a `db` tag naming
their column. The table is named after the type. Pointer fields are
nullable, every other column is NOT NULL. Columns are laid out in
ascending order of their names.

	type Student struct {
		ID         korm.PrimaryKeyAuto `db:"studentId"`
		FirstName  string              `db:"firstName"`
		Surname    string              `db:"surname"`
		MaidenName *string             `db:"maidenName"`
		Age        int                 `db:"age"`
	}

# Keys

[PrimaryKey] wraps a key chosen by the caller; several of them form a
composite key. [PrimaryKeyAuto] is assigned by the database on insert: build
records with [AutoKey] and read the key back from the copy [Insert] returns.
[ForeignKey] references a column of another table. Build it with
[References] so that the table can be created with its constraint:

	var departmentID = korm.Col[Department, korm.PrimaryKey[int]]("departmentId")

	s := StudentFK{Department: korm.References(departmentID, 3)}

# Conditions

Typed column references build conditions and updates. The compiler checks
that the values compared against a column have the column's type.

	var (
		age       = korm.Col[Student, int]("age")
		firstName = korm.Col[Student, string]("firstName")
	)

	students, err := korm.Find[Student](ctx, db, age.Gte(18).And(firstName.Eq("Ann")))

AND and OR are joined as written, without implied grouping; use [Bracket]
to group. Every value is passed as a statement argument, never spliced into
the SQL.

# Tables that do not exist

[Find], [Update] and [Delete] treat a table that does not exist as empty.
[Insert] creates it and retries once.

# Custom types

Types other than bool, the integer and float kinds and string need a coder.
[RegisterCoder] adds one for any type, and [RegisterMsgpackCoder] stores a
type as a msgpack BLOB. Registration is process wide and also decides the
column type used by CREATE TABLE.

# Generic queries

[Select] and [SelectAll] build queries across tables. Their rows come back
as a [Table] of [Row] values:

	stmt := korm.SelectAll().
		From(korm.TableOf[StudentFK]()).
		InnerJoin(korm.TableOf[Department]()).
		On(studentDepartment.EqColumn(departmentID)).
		Where(departmentTitle.Eq("Physics"))
	table, err := db.Query(ctx, stmt)

Where ends the statement: it cannot be joined or filtered again.
*/
package korm
