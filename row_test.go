package korm_test

import (
	"errors"

	. "gopkg.in/check.v1"

	"github.com/IgniparousTempest/korm"
)

type RowSuite struct{}

var _ = Suite(&RowSuite{})

func (s *RowSuite) TestNewRow(c *C) {
	row := korm.NewRow([]string{"name", "age", "name", "extra"}, []any{"Ann", int64(3), "Bob"})
	c.Assert(row.Columns(), DeepEquals, []string{"name", "age", "extra"})
	c.Assert(row.Len(), Equals, 3)

	v, ok := row.Get("name")
	c.Assert(ok, Equals, true)
	c.Assert(v, Equals, "Ann")

	v, ok = row.Get("extra")
	c.Assert(ok, Equals, true)
	c.Assert(v, IsNil)

	_, ok = row.Get("missing")
	c.Assert(ok, Equals, false)
}

func (s *RowSuite) TestRowValue(c *C) {
	row := korm.NewRow(
		[]string{"firstName", "age", "graduated", "height", "maidenName"},
		[]any{"Ann", int64(19), int64(1), 1.5, nil},
	)

	name, err := korm.RowValue(row, studentFirstName)
	c.Assert(err, IsNil)
	c.Assert(name, Equals, "Ann")

	age, err := korm.RowValue(row, studentAge)
	c.Assert(err, IsNil)
	c.Assert(age, Equals, 19)

	graduated, err := korm.RowValue(row, studentGraduated)
	c.Assert(err, IsNil)
	c.Assert(graduated, Equals, true)

	height, err := korm.RowValue(row, korm.Col[Student, *float64]("height"))
	c.Assert(err, IsNil)
	c.Assert(*height, Equals, 1.5)

	maiden, err := korm.RowValue(row, studentMaidenName)
	c.Assert(err, IsNil)
	c.Assert(maiden, IsNil)

	_, err = korm.RowValue(row, studentSurname)
	c.Assert(err, ErrorMatches, `row has no column "surname"`)

	nulls := korm.NewRow([]string{"age", "firstName"}, []any{nil, int64(7)})
	_, err = korm.RowValue(nulls, studentAge)
	var decodeErr *korm.DecodeError
	c.Assert(errors.As(err, &decodeErr), Equals, true)
	c.Assert(decodeErr.Column, Equals, "age")

	firstName, err := korm.RowValue(nulls, studentFirstName)
	c.Assert(err, IsNil)
	c.Assert(firstName, Equals, "7")
}

func (s *RowSuite) TestLookupByLabel(c *C) {
	// A join of two tables sharing a column name reports the label twice.
	row := korm.NewRow([]string{"departmentId", "name", "departmentId", "title"}, []any{int64(1), "Ann", int64(2), "Physics"})
	c.Assert(row.Columns(), DeepEquals, []string{"departmentId", "name", "title"})

	v, ok := row.Lookup(departmentID)
	c.Assert(ok, Equals, true)
	c.Assert(v, Equals, int64(1))
	v, ok = row.Lookup(studentFKDepartment)
	c.Assert(ok, Equals, true)
	c.Assert(v, Equals, int64(1))

	id, err := korm.RowValue(row, departmentID)
	c.Assert(err, IsNil)
	c.Assert(id, Equals, korm.PrimaryKey[int]{Key: 1})
}

func (s *RowSuite) TestTableFormat(c *C) {
	table := korm.Table{
		korm.NewRow([]string{"id", "name", "data"}, []any{int64(1), "Ann", []byte{0xca, 0xfe}}),
		korm.NewRow([]string{"id", "name", "data"}, []any{int64(2), "Bartholomew", nil}),
	}

	c.Assert(table.String(), Equals, ""+
		"|id      |name    |data    |\n"+
		"|--------|--------|--------|\n"+
		"|1       |Ann     |cafe    |\n"+
		"|2       |Barth...|NULL    |")

	c.Assert(table.Format(4), Equals, ""+
		"|id  |name|data|\n"+
		"|----|----|----|\n"+
		"|1   |Ann |cafe|\n"+
		"|2   |B...|NULL|")

	c.Assert(table.Format(1), Equals, ""+
		"|id |...|...|\n"+
		"|---|---|---|\n"+
		"|1  |Ann|...|\n"+
		"|2  |...|...|")

	c.Assert(korm.Table{}.String(), Equals, "")
}

func (s *RowSuite) TestTableFormatRunes(c *C) {
	table := korm.Table{korm.NewRow([]string{"名前"}, []any{"Zoë Ångström"})}
	c.Assert(table.Format(6), Equals, ""+
		"|名前    |\n"+
		"|------|\n"+
		"|Zoë...|")
}
